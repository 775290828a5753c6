package auth

import (
	"context"

	"github.com/mmynk/splitr/internal/models"
)

// Authenticator verifies who is acting. The service layer only depends on
// this interface so the credential scheme can change without touching it.
type Authenticator interface {
	// Register creates a user account. The credential format depends on the
	// implementation.
	Register(ctx context.Context, email, name, credential string) (*models.User, error)

	// Authenticate returns the user the credentials belong to.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the implementation's rules.
	ValidateCredential(credential string) error
}
