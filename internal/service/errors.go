package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/auth"
	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/middleware"
)

var errInternal = errors.New("internal error")

// connectCode maps a domain error kind to its Connect status code.
func connectCode(err error) connect.Code {
	switch errs.Kind(err) {
	case errs.ErrValidation:
		return connect.CodeInvalidArgument
	case errs.ErrNotFound:
		return connect.CodeNotFound
	case errs.ErrForbidden:
		return connect.CodePermissionDenied
	case errs.ErrExternalService:
		return connect.CodeUnavailable
	case errs.ErrConsistency:
		return connect.CodeAborted
	default:
		return connect.CodeInternal
	}
}

// toConnectError logs err and converts it for the wire. Domain errors keep
// their message; anything else is reported as a bare internal error.
func toConnectError(op string, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	code := connectCode(err)
	if code == connect.CodeInternal {
		slog.Error(op+" failed", "error", err)
		return connect.NewError(code, errInternal)
	}
	slog.Warn(op+" failed", "code", code.String(), "error", err)
	return connect.NewError(code, err)
}

// actingUser returns the authenticated user ID or an Unauthenticated error.
func actingUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// parseAmount converts a wire amount to a positive two-decimal value.
func parseAmount(v float64, field string) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(v)
	if !d.IsPositive() {
		return decimal.Zero, errs.Validation("%s must be greater than 0", field)
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, errs.Validation("%s must have at most two decimal places", field)
	}
	return d, nil
}
