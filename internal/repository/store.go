package repository

import (
	"context"
	"errors"

	"bacheliers/internal/models"
)

var ErrNotFound = errors.New("registration not found")

// RegistrationStore is the record store behind the registration state machine.
// Partial writes are field-level merges; the store stamps updated_at on every write.
type RegistrationStore interface {
	Get(ctx context.Context, identity string) (*models.Registration, error)
	FindByCorrelation(ctx context.Context, correlationID string) (*models.Registration, error)
	// Merge creates the record when absent, otherwise merges fields into it.
	Merge(ctx context.Context, identity string, fields models.Fields) error
	// Update merges fields into an existing record and fails with ErrNotFound when absent.
	Update(ctx context.Context, identity string, fields models.Fields) error
	// Transact re-reads the record and writes the fields returned by fn atomically.
	// Returning no fields leaves the record untouched.
	Transact(ctx context.Context, identity string, fn func(r *models.Registration) (models.Fields, error)) error
}

// PaymentEventLog keeps one entry per gateway webhook delivery.
type PaymentEventLog interface {
	Record(ctx context.Context, e *models.PaymentEvent) error
}
