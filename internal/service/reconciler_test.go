package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bacheliers/config"
	"bacheliers/internal/domain"
	"bacheliers/internal/models"
	"bacheliers/internal/repository"
	"bacheliers/pkg/payment"
)

type reconcileFixture struct {
	store  *spyStore
	mailer *fakeMailer
	hub    *fakeHub
	rec    *Reconciler
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	f := &reconcileFixture{store: newSpyStore(), mailer: &fakeMailer{}, hub: &fakeHub{}}
	ctx := context.Background()
	regs := NewRegistrationService(f.store)
	if _, err := regs.StartRegistration(ctx, "U1", validInfo()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := regs.CompleteRegistration(ctx, "U1", validChoice()); err != nil {
		t.Fatalf("complete: %v", err)
	}
	f.rec = NewReconciler(f.store, repository.NewMemoryEventLog(), NewNotificationService(f.mailer, f.hub, "https://tickets.example/t"))
	return f
}

func TestReconcileConfirmed(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	res, err := f.rec.Reconcile(ctx, payment.Notification{TransactionRef: "AT123", StatusCode: "00", CorrelationID: "U1"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Identity != "U1" || res.PaymentStatus != domain.PaymentConfirmed {
		t.Fatalf("unexpected result %+v", res)
	}
	r, _ := f.store.Get(ctx, "U1")
	if r.PaymentStatus != domain.PaymentConfirmed || r.GatewayTransactionID != "AT123" || r.TransactionRef != "AT123" {
		t.Fatalf("unexpected record %+v", r)
	}
	sent := f.mailer.Sent()
	if len(sent) != 1 || sent[0].To != "ada@example.com" || !strings.Contains(sent[0].Subject, "CONFIRMÉ") {
		t.Fatalf("expected one confirmation e-mail, got %+v", sent)
	}
	if !strings.Contains(sent[0].HTML, "https://tickets.example/t") {
		t.Fatal("confirmation e-mail must link the ticket")
	}
	if len(f.hub.pushes) != 1 || f.hub.pushes[0].Identity != "U1" {
		t.Fatalf("expected one status push, got %+v", f.hub.pushes)
	}
	ev := f.hub.pushes[0].Payload.(StatusEvent)
	if ev.PaymentStatus != domain.PaymentConfirmed || !ev.Celebrate {
		t.Fatalf("unexpected push %+v", ev)
	}
}

func TestReconcileRejected(t *testing.T) {
	f := newReconcileFixture(t)
	res, err := f.rec.Reconcile(context.Background(), payment.Notification{TransactionRef: "AT123", StatusCode: "FAILED", CorrelationID: "U1", GatewayTransactionID: "GW-9"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.PaymentStatus != domain.PaymentRejected {
		t.Fatalf("expected rejected, got %s", res.PaymentStatus)
	}
	r, _ := f.store.Get(context.Background(), "U1")
	if r.GatewayTransactionID != "GW-9" || r.TransactionRef != "AT123" {
		t.Fatalf("expected both references kept, got %+v", r)
	}
	sent := f.mailer.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0].Subject, "Problème") {
		t.Fatalf("expected one rejection e-mail, got %+v", sent)
	}
	if !strings.Contains(sent[0].HTML, "FAILED") || !strings.Contains(sent[0].HTML, "AT123") {
		t.Fatalf("rejection e-mail must echo status and reference: %s", sent[0].HTML)
	}
}

func TestReconcileReplayIsStable(t *testing.T) {
	f := newReconcileFixture(t)
	n := payment.Notification{TransactionRef: "AT123", StatusCode: "SUCCESS", CorrelationID: "U1"}
	for i := 0; i < 2; i++ {
		res, err := f.rec.Reconcile(context.Background(), n)
		if err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
		if res.PaymentStatus != domain.PaymentConfirmed {
			t.Fatalf("delivery %d: expected confirmed, got %s", i, res.PaymentStatus)
		}
	}
}

func TestReconcileByCorrelationToken(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()
	f.store.Update(ctx, "U1", models.Fields{models.FieldCorrelationID: "3f1c-token"})

	res, err := f.rec.Reconcile(ctx, payment.Notification{TransactionRef: "AT123", StatusCode: "paid", CorrelationID: "3f1c-token"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Identity != "U1" || res.PaymentStatus != domain.PaymentConfirmed {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestReconcileMissingFields(t *testing.T) {
	tests := map[string]payment.Notification{
		"no ref":         {StatusCode: "00", CorrelationID: "U1"},
		"no status":      {TransactionRef: "AT123", CorrelationID: "U1"},
		"no correlation": {TransactionRef: "AT123", StatusCode: "00"},
	}
	for name, n := range tests {
		t.Run(name, func(t *testing.T) {
			f := newReconcileFixture(t)
			before := f.store.Writes()
			if _, err := f.rec.Reconcile(context.Background(), n); !errors.Is(err, ErrInvalidNotification) {
				t.Fatalf("expected ErrInvalidNotification, got %v", err)
			}
			if f.store.Writes() != before {
				t.Fatal("store must be untouched")
			}
			if len(f.mailer.Sent()) != 0 {
				t.Fatal("no e-mail expected")
			}
		})
	}
}

func TestReconcileUnknownRecord(t *testing.T) {
	f := newReconcileFixture(t)
	before := f.store.Writes()
	_, err := f.rec.Reconcile(context.Background(), payment.Notification{TransactionRef: "AT9", StatusCode: "00", CorrelationID: "ghost"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if f.store.Writes() != before || len(f.mailer.Sent()) != 0 {
		t.Fatal("unknown record must not mutate or notify")
	}
}

func TestReconcileMailFailureKeepsStatus(t *testing.T) {
	f := newReconcileFixture(t)
	f.mailer.fail = true
	res, err := f.rec.Reconcile(context.Background(), payment.Notification{TransactionRef: "AT123", StatusCode: "00", CorrelationID: "U1"})
	if err != nil {
		t.Fatalf("mail failure must not fail the reconcile: %v", err)
	}
	r, _ := f.store.Get(context.Background(), "U1")
	if res.PaymentStatus != domain.PaymentConfirmed || r.PaymentStatus != domain.PaymentConfirmed {
		t.Fatal("status must be committed despite the e-mail failure")
	}
}

func TestReconcileStoreError(t *testing.T) {
	f := newReconcileFixture(t)
	f.store.failNext = errStoreDown
	_, err := f.rec.Reconcile(context.Background(), payment.Notification{TransactionRef: "AT123", StatusCode: "00", CorrelationID: "U1"})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(f.mailer.Sent()) != 0 {
		t.Fatal("no e-mail on store failure")
	}
}

func TestSendPreliminary(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, nil, "")
	if res := svc.SendPreliminary(context.Background(), "ada@example.com", "Ada"); !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	sent := mailer.Sent()
	if len(sent) != 1 || sent[0].Subject != SubjectPreliminary || !strings.Contains(sent[0].HTML, "Bonjour Ada") {
		t.Fatalf("unexpected e-mail %+v", sent)
	}

	mailer.fail = true
	if res := svc.SendPreliminary(context.Background(), "ada@example.com", "Ada"); res.Success || res.Reason == "" {
		t.Fatalf("expected failure with reason, got %+v", res)
	}
}

func TestSMTPMailerWithoutCredentials(t *testing.T) {
	m := NewSMTPMailer(&config.MailConfig{Host: "127.0.0.1", Port: 1})
	res := m.Send(context.Background(), "ada@example.com", "s", "<p>x</p>")
	if res.Success || res.Reason == "" {
		t.Fatalf("expected canonical failure, got %+v", res)
	}
}
