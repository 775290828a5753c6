package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/interpreter"
	"github.com/mmynk/splitr/internal/middleware"
	"github.com/mmynk/splitr/internal/service"
)

const (
	maxCommandLength = 500
	maxCommandBody   = 64 << 10
)

const (
	msgUnauthorized  = "Unauthorized. Please log in to add expenses."
	msgInvalid       = "Invalid command provided"
	msgEmpty         = "Command cannot be empty"
	msgTooLong       = "Command too long. Please keep it under 500 characters."
	msgUnderstand    = `Could not understand the command. Try: "John paid ₹500 for dinner with Alice and me"`
	msgNetwork       = "Network error. Please check your Ollama server and connection."
	msgTooLarge      = "Amount is too large. Please enter a reasonable amount."
	msgProcessFailed = "Failed to process command. Please try again."
)

type commandRequest struct {
	Command json.RawMessage `json:"command"`
}

type commandData struct {
	ExpenseID       string   `json:"expenseId"`
	Amount          float64  `json:"amount"`
	Reason          string   `json:"reason"`
	Members         []string `json:"members"`
	Payer           string   `json:"payer"`
	TotalMembers    int      `json:"totalMembers"`
	SplitAmount     float64  `json:"splitAmount"`
	AmountPerPerson float64  `json:"amountPerPerson"`
}

type commandResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    commandData `json:"data"`
}

// processCommand turns a free-text sentence into an equal-split expense.
func (s *Server) processCommand(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalid)
		return
	}
	var command string
	if err := json.Unmarshal(req.Command, &command); err != nil || command == "" {
		writeError(w, http.StatusBadRequest, msgInvalid)
		return
	}
	if strings.TrimSpace(command) == "" {
		writeError(w, http.StatusBadRequest, msgEmpty)
		return
	}
	if utf8.RuneCountInString(command) > maxCommandLength {
		writeError(w, http.StatusBadRequest, msgTooLong)
		return
	}

	s.log.Info("Processing command", "user_id", userID, "length", len(command))

	cmd, err := s.deps.Interpreter.Interpret(r.Context(), command)
	if err != nil {
		switch {
		case errors.Is(err, interpreter.ErrMalformed):
			s.log.Warn("Command not understood", "user_id", userID, "error", err)
			writeError(w, http.StatusBadRequest, msgUnderstand)
		case errors.Is(err, interpreter.ErrUnavailable):
			s.log.Error("Interpreter unavailable", "error", err)
			writeError(w, http.StatusServiceUnavailable, msgNetwork)
		default:
			s.log.Error("Interpreter failed", "error", err)
			writeError(w, http.StatusInternalServerError, msgProcessFailed)
		}
		return
	}
	if cmd.Amount.GreaterThan(service.MaxCommandAmount) {
		writeError(w, http.StatusBadRequest, msgTooLarge)
		return
	}

	result, err := s.deps.Commands.CreateFromCommand(r.Context(), userID, cmd)
	if err != nil {
		switch errs.Kind(err) {
		case errs.ErrValidation, errs.ErrNotFound:
			s.log.Warn("Command rejected", "user_id", userID, "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.log.Error("Command failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, msgProcessFailed)
		}
		return
	}

	toJSON(w, http.StatusOK, s.commandResponse(cmd, result))
}

func (s *Server) commandResponse(cmd *interpreter.Command, result *service.CommandResult) commandResponse {
	// The acting user is always credited; the interpreted name is only echoed.
	payer := strings.TrimSpace(cmd.Payer)
	if payer == "" || strings.EqualFold(payer, interpreter.PayerMe) {
		payer = "You"
	}
	people := len(result.Members) + 1
	message := fmt.Sprintf("%s paid %s%s for %s split among %d people (%s%s each)",
		payer,
		s.deps.Currency, result.Expense.Amount.String(),
		result.Expense.Description,
		people,
		s.deps.Currency, result.Share.String(),
	)

	members := cmd.Members
	if members == nil {
		members = []string{}
	}
	share := result.Share.InexactFloat64()
	return commandResponse{
		Success: true,
		Message: message,
		Data: commandData{
			ExpenseID:       result.Expense.ID,
			Amount:          result.Expense.Amount.InexactFloat64(),
			Reason:          result.Expense.Description,
			Members:         members,
			Payer:           cmd.Payer,
			TotalMembers:    len(result.Expense.Splits),
			SplitAmount:     share,
			AmountPerPerson: share,
		},
	}
}

type commandInfo struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints commandInfoRoutes `json:"endpoints"`
}

type commandInfoRoutes struct {
	POST     string   `json:"POST"`
	Examples []string `json:"examples"`
}

func (s *Server) commandInfo(w http.ResponseWriter, r *http.Request) {
	c := s.deps.Currency
	toJSON(w, http.StatusOK, commandInfo{
		Message: "Expense command API",
		Status:  "active",
		Endpoints: commandInfoRoutes{
			POST: "Process natural language expense commands",
			Examples: []string{
				"John paid " + c + "1200 for groceries split between Alice, Bob and me",
				"Add " + c + "500 for dinner with Sarah and me",
				"Alice spent " + c + "300 for coffee shared with Mike and me",
			},
		},
	})
}
