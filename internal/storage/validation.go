// Package storage provides the persistence layer for reconciliation runs and
// match suggestions.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerlab/reconcile/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrEmptySlice    = errors.New("slice cannot be empty")
	ErrInvalidStatus = errors.New("invalid suggestion status")
	ErrNotPending    = errors.New("suggestion is no longer pending")
	ErrNotFound      = errors.New("suggestion not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateStatus ensures a status is one of the known review states.
func validateStatus(status model.SuggestionStatus) error {
	switch status {
	case model.StatusPending, model.StatusApproved, model.StatusRejected:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}
