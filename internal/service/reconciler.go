package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bacheliers/internal/domain"
	"bacheliers/internal/models"
	"bacheliers/internal/repository"
	"bacheliers/pkg/payment"
)

// ReconcileResult describes the transition a notification applied.
type ReconcileResult struct {
	Identity      string
	PaymentStatus string
}

// Reconciler applies gateway notifications to registrations.
type Reconciler struct {
	store    repository.RegistrationStore
	events   repository.PaymentEventLog
	notifier *NotificationService
}

func NewReconciler(store repository.RegistrationStore, events repository.PaymentEventLog, notifier *NotificationService) *Reconciler {
	return &Reconciler{store: store, events: events, notifier: notifier}
}

// Reconcile moves the matching registration to a terminal payment status and then notifies the
// attendee. The status write is committed before any notification is attempted.
func (r *Reconciler) Reconcile(ctx context.Context, n payment.Notification) (*ReconcileResult, error) {
	if n.TransactionRef == "" || n.StatusCode == "" || n.CorrelationID == "" {
		return nil, ErrInvalidNotification
	}
	identity, err := r.locate(ctx, n.CorrelationID)
	if err != nil {
		return nil, err
	}

	status := domain.PaymentStatusFromGateway(n.StatusCode)
	gatewayID := n.GatewayTransactionID
	if gatewayID == "" {
		gatewayID = n.TransactionRef
	}
	var updated models.Registration
	err = r.store.Transact(ctx, identity, func(reg *models.Registration) (models.Fields, error) {
		updated = *reg
		updated.PaymentStatus = status
		updated.GatewayTransactionID = gatewayID
		return models.Fields{
			models.FieldPaymentStatus:        status,
			models.FieldGatewayTransactionID: gatewayID,
		}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	log.Printf("[WEBHOOK] identity=%s ref=%s gateway_status=%s -> %s", identity, n.TransactionRef, n.StatusCode, status)

	if r.notifier != nil {
		r.notifier.NotifyPaymentStatus(ctx, &updated, n.StatusCode, n.TransactionRef)
	}
	return &ReconcileResult{Identity: identity, PaymentStatus: status}, nil
}

// locate resolves the record by the correlation token issued at initiation, falling back to
// treating the value as the record key.
func (r *Reconciler) locate(ctx context.Context, correlationID string) (string, error) {
	reg, err := r.store.FindByCorrelation(ctx, correlationID)
	if err == nil {
		return reg.Identity, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("find by correlation: %w", err)
	}
	reg, err = r.store.Get(ctx, correlationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("[WEBHOOK] no registration for correlation=%s", correlationID)
			return "", err
		}
		return "", fmt.Errorf("load registration: %w", err)
	}
	return reg.Identity, nil
}

// LogDelivery appends one webhook delivery to the event log. Failures are only logged.
func (r *Reconciler) LogDelivery(ctx context.Context, e *models.PaymentEvent) {
	if r.events == nil {
		return
	}
	if err := r.events.Record(ctx, e); err != nil {
		log.Printf("[WEBHOOK] could not record delivery event: %v", err)
	}
}
