// Package repository holds the translations shared by the backend repositories.
package repository

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/domain"
)

// BackendError maps a store failure onto the domain taxonomy:
// unreadable replies become ErrDecodeFailure, everything else ErrBackendUnavailable.
// The original error stays in the chain for logs.
func BackendError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrDecodeFailure):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, db.ErrMalformedResponse):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrDecodeFailure, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, err)
	}
}
