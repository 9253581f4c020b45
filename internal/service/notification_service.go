package service

import (
	"context"
	"log"

	"bacheliers/internal/domain"
	"bacheliers/internal/models"
)

// StatusPublisher pushes a payload to every live connection of one identity.
type StatusPublisher interface {
	BroadcastToUser(identity string, payload interface{})
}

// StatusEvent is pushed on the status stream after a payment status change.
type StatusEvent struct {
	Type               string `json:"type"`
	RegistrationStatus string `json:"registration_status"`
	PaymentStatus      string `json:"payment_status"`
	TransactionRef     string `json:"transaction_ref"`
	Celebrate          bool   `json:"celebrate"`
}

// NotificationService sends the attendee-facing e-mails and status pushes.
// Every method is best effort: failures are logged, never returned to the state machine.
type NotificationService struct {
	mailer    Mailer
	hub       StatusPublisher
	ticketURL string
}

func NewNotificationService(mailer Mailer, hub StatusPublisher, ticketURL string) *NotificationService {
	return &NotificationService{mailer: mailer, hub: hub, ticketURL: ticketURL}
}

// SendPreliminary sends the "personal info received" e-mail. Its result is returned because
// the preliminary endpoint reports send failures to the caller.
func (s *NotificationService) SendPreliminary(ctx context.Context, to, firstName string) SendResult {
	html, err := renderEmail(preliminaryTmpl, emailData{FirstName: firstName})
	if err != nil {
		return SendResult{Reason: err.Error()}
	}
	return s.mailer.Send(ctx, to, SubjectPreliminary, html)
}

// NotifyPaymentStatus tells the attendee about a terminal payment status.
func (s *NotificationService) NotifyPaymentStatus(ctx context.Context, r *models.Registration, gatewayStatus, transactionRef string) {
	s.push(r)
	if r.Email == "" {
		log.Printf("[NOTIFY] no e-mail on record identity=%s, skipping", r.Identity)
		return
	}
	data := emailData{
		FirstName:      r.Name,
		TicketType:     r.TicketType,
		TicketURL:      s.ticketURL,
		GatewayStatus:  gatewayStatus,
		TransactionRef: transactionRef,
	}
	subject, tmpl := SubjectRejected, rejectedTmpl
	if r.PaymentStatus == domain.PaymentConfirmed {
		subject, tmpl = SubjectConfirmed, confirmedTmpl
	}
	html, err := renderEmail(tmpl, data)
	if err != nil {
		log.Printf("[NOTIFY] %v", err)
		return
	}
	if res := s.mailer.Send(ctx, r.Email, subject, html); !res.Success {
		log.Printf("[NOTIFY] payment e-mail to identity=%s failed: %s", r.Identity, res.Reason)
	}
}

func (s *NotificationService) push(r *models.Registration) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToUser(r.Identity, StatusEvent{
		Type:               "payment_status",
		RegistrationStatus: r.RegistrationStatus,
		PaymentStatus:      r.PaymentStatus,
		TransactionRef:     r.TransactionRef,
		Celebrate:          r.PaymentStatus == domain.PaymentConfirmed,
	})
}
