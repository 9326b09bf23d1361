package domain

import (
	"context"
	"errors"
	"fmt"
)

type Service interface {
	// Get returns the stored user with its plan, or ErrNotFound.
	Get(ctx context.Context, id string) (User, error)
	// GetOrProvision returns the caller's record, creating it with plan and
	// credit defaults on first sight. Concurrent first logins converge on a
	// single stored row.
	GetOrProvision(ctx context.Context, identity Identity) (User, error)
}

var (
	ErrNotFound        = errors.New("not_found")
	ErrInvalidIdentity = errors.New("invalid_identity")
)

// ProvisioningError wraps a failure to insert or re-read a newly provisioned
// user.
type ProvisioningError struct {
	Op  string
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision user: %s: %v", e.Op, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}
