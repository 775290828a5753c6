// Package interpreter turns a free-text expense command into structured
// fields by asking a local Ollama model.
package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/metrics"
)

// Payer value meaning "the acting user paid".
const PayerMe = "me"

var (
	// ErrUnavailable means the model could not be reached or answered with
	// a non-2xx status.
	ErrUnavailable = errors.New("interpreter unavailable")
	// ErrMalformed means the model answered but the answer could not be
	// turned into a valid command.
	ErrMalformed = errors.New("could not understand command")
)

// Command is the structured form of an expense command.
type Command struct {
	Amount decimal.Decimal
	Reason string
	// Payer is PayerMe or a free-form name.
	Payer string
	// Members are the names the expense is shared with, excluding the payer.
	Members []string
}

// Interpreter parses free-text expense commands.
type Interpreter interface {
	Interpret(ctx context.Context, command string) (*Command, error)
}

// Config configures an OllamaClient.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OllamaClient asks an Ollama server for a single non-streamed completion.
type OllamaClient struct {
	model  string
	client *api.Client
}

var _ Interpreter = (*OllamaClient)(nil)

// NewOllamaClient creates a client. Zero config fields fall back to a local
// server running mistral with a 30s timeout.
func NewOllamaClient(cfg Config) (*OllamaClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid interpreter url %q: %w", cfg.BaseURL, err)
	}
	return &OllamaClient{
		model:  cfg.Model,
		client: api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
	}, nil
}

// jsonFormat asks the model to answer with a JSON object.
var jsonFormat = json.RawMessage(`"json"`)

// Interpret sends command to the model and validates the answer.
// Every returned error wraps errs.ErrExternalService and one of
// ErrUnavailable or ErrMalformed.
func (c *OllamaClient) Interpret(ctx context.Context, command string) (*Command, error) {
	start := time.Now()
	cmd, err := c.interpret(ctx, command)
	metrics.InterpreterDuration.Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case errors.Is(err, ErrUnavailable):
		outcome = "unavailable"
	case err != nil:
		outcome = "malformed"
	}
	metrics.InterpreterRequests.WithLabelValues(outcome).Inc()
	return cmd, err
}

func (c *OllamaClient) interpret(ctx context.Context, command string) (*Command, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: buildPrompt(command),
		Stream: &stream,
		Format: jsonFormat,
	}

	var answer strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		answer.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		var status api.StatusError
		if errors.As(err, &status) {
			return nil, unavailable("model returned status %d: %s", status.StatusCode, status.ErrorMessage)
		}
		return nil, unavailable("request failed: %v", err)
	}
	return Parse(answer.String())
}

// Parse extracts and validates the command object from a model answer.
// The answer may surround the JSON object with other text.
func Parse(answer string) (*Command, error) {
	answer = strings.TrimSpace(answer)
	open := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if open < 0 || end < open {
		return nil, malformed("no JSON found in model response")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(answer[open:end+1]), &raw); err != nil {
		return nil, malformed("invalid JSON in model response: %v", err)
	}

	cmd := &Command{Payer: PayerMe}

	amount, ok := raw["amount"]
	if !ok || !isNumber(amount) {
		return nil, malformed("invalid amount parsed from command")
	}
	d, err := decimal.NewFromString(string(amount))
	if err != nil || !d.IsPositive() {
		return nil, malformed("invalid amount parsed from command")
	}
	cmd.Amount = d

	if err := json.Unmarshal(raw["reason"], &cmd.Reason); err != nil || strings.TrimSpace(cmd.Reason) == "" {
		return nil, malformed("invalid reason parsed from command")
	}
	cmd.Reason = strings.TrimSpace(cmd.Reason)

	members, ok := raw["members"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(members), []byte("[")) {
		return nil, malformed("invalid members array parsed from command")
	}
	if err := json.Unmarshal(members, &cmd.Members); err != nil {
		return nil, malformed("invalid members array parsed from command")
	}

	var payer string
	if err := json.Unmarshal(raw["payer"], &payer); err == nil && strings.TrimSpace(payer) != "" {
		cmd.Payer = strings.TrimSpace(payer)
	}
	return cmd, nil
}

func isNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %w: "+format, append([]any{errs.ErrExternalService, ErrUnavailable}, args...)...)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %w: "+format, append([]any{errs.ErrExternalService, ErrMalformed}, args...)...)
}
