package ufotracker

import (
	"errors"

	"github.com/kailas-cloud/ufotracker/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrInvalidSighting    = domain.ErrInvalidSighting
	ErrInvalidQuery       = domain.ErrInvalidQuery
	ErrInvalidDate        = domain.ErrInvalidDate
	ErrBackendUnavailable = domain.ErrBackendUnavailable
	ErrDecodeFailure      = domain.ErrDecodeFailure
)

// ErrNoCatalog is returned by sighting operations on a client built without WithCatalog.
var ErrNoCatalog = errors.New("ufotracker: catalog not configured (use WithCatalog)")
