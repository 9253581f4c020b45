package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"bacheliers/config"
	"bacheliers/internal/domain"
	"bacheliers/internal/models"
	"bacheliers/internal/repository"
	"bacheliers/pkg/payment"

	"github.com/google/uuid"
)

// PaymentInitiation is the final form as posted by the browser.
type PaymentInitiation struct {
	UserID            string `json:"user_id"`
	Name              string `json:"name" validate:"required"`
	Surname           string `json:"surname" validate:"required"`
	Class             string `json:"class"`
	Phone             string `json:"phone" validate:"required,phone"`
	Email             string `json:"email" validate:"required,email"`
	Category          string `json:"category" validate:"required,oneof=Interne Externe"`
	InvitedBy         string `json:"invited_by" validate:"required_if=Category Externe"`
	Amount            int64  `json:"amount" validate:"gt=0"`
	TransactionRef    string `json:"transaction_ref" validate:"required"`
	AgreementAccepted bool   `json:"agreement_accepted" validate:"required"`
	Remarks           string `json:"remarks"`
}

func (in *PaymentInitiation) normalize() {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Class = strings.TrimSpace(in.Class)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Category = strings.TrimSpace(in.Category)
	in.InvitedBy = strings.TrimSpace(in.InvitedBy)
	in.TransactionRef = strings.TrimSpace(in.TransactionRef)
	in.Remarks = strings.TrimSpace(in.Remarks)
}

func (in *PaymentInitiation) validate() error {
	verr := validateStruct(in)
	if tariff, ok := domain.TariffFor(in.Category); ok && in.Amount > 0 && in.Amount != tariff.Amount {
		verr.add("amount", fmt.Sprintf("must equal the %s tariff (%d)", tariff.Category, tariff.Amount))
	}
	return verr.orNil()
}

func (in *PaymentInitiation) ticketChoice() TicketChoice {
	return TicketChoice{
		Category:          in.Category,
		InvitedBy:         in.InvitedBy,
		TransactionRef:    in.TransactionRef,
		AgreementAccepted: in.AgreementAccepted,
		Remarks:           in.Remarks,
	}
}

// InitiationResult is returned to the browser for accepted and rejected initiations alike.
type InitiationResult struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message"`
	RedirectURL   string                 `json:"redirect_url,omitempty"`
	PaymentStatus string                 `json:"payment_status"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
}

const (
	msgInitiationAccepted = "Demande de paiement soumise. Veuillez confirmer la transaction sur votre téléphone Mobile Money."
	msgInitiationInternal = "Erreur interne du serveur lors du traitement du paiement. Veuillez réessayer."
)

type PaymentService struct {
	store            repository.RegistrationStore
	provider         payment.Provider
	cfg              *config.PaymentConfig
	newCorrelationID func() string
}

func NewPaymentService(store repository.RegistrationStore, provider payment.Provider, cfg *config.PaymentConfig) *PaymentService {
	return &PaymentService{
		store:            store,
		provider:         provider,
		cfg:              cfg,
		newCorrelationID: uuid.NewString,
	}
}

// Initiate completes the registration, asks the gateway to collect the tariff amount and
// records the outcome. On an internal failure the returned result is still meant for the caller.
func (s *PaymentService) Initiate(ctx context.Context, identity string, in PaymentInitiation) (*InitiationResult, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.UserID != "" && in.UserID != identity {
		return nil, ErrIdentityMismatch
	}

	choice := in.ticketChoice()
	tariff, _ := domain.TariffFor(choice.Category)
	correlationID := s.newCorrelationID()
	gateway := s.provider.Name()

	fields := completionFields(choice)
	fields[models.FieldName] = in.Name
	fields[models.FieldSurname] = in.Surname
	fields[models.FieldPhone] = in.Phone
	fields[models.FieldEmail] = in.Email
	if in.Class != "" {
		fields[models.FieldClass] = in.Class
	}
	fields[models.FieldCorrelationID] = correlationID
	fields[models.FieldGateway] = gateway
	fields[models.FieldGatewayTransactionID] = ""
	if err := s.store.Update(ctx, identity, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return internalFailure(), fmt.Errorf("save payment details: %w", err)
	}
	log.Printf("[PAYMENT] registration completed identity=%s ref=%s correlation=%s", identity, choice.TransactionRef, correlationID)

	resp, err := s.provider.InitiatePayment(ctx, payment.PaymentRequest{
		Identity:          identity,
		Amount:            tariff.Amount,
		Currency:          s.currency(),
		TransactionRef:    choice.TransactionRef,
		CorrelationID:     correlationID,
		Description:       fmt.Sprintf("Billet Bal des Bacheliers pour %s %s (Référence: %s)", in.Surname, in.Name, choice.TransactionRef),
		CustomerPhone:     in.Phone,
		CustomerFirstName: in.Name,
		CustomerLastName:  in.Surname,
		CustomerEmail:     in.Email,
		NotifyURL:         s.cfg.WebhookURL(gateway),
		ReturnURL:         strings.ReplaceAll(s.cfg.ReturnURL, "{ID}", identity),
	})
	if err != nil {
		s.markFailed(ctx, identity, domain.PaymentFailedInternalError)
		return internalFailure(), fmt.Errorf("%s initiate: %w", gateway, err)
	}

	if !resp.Accepted {
		log.Printf("[PAYMENT] %s rejected identity=%s code=%s message=%s", gateway, identity, resp.Code, resp.Message)
		if err := s.store.Update(ctx, identity, models.Fields{models.FieldPaymentStatus: domain.PaymentFailedInitiation}); err != nil {
			s.markFailed(ctx, identity, domain.PaymentFailedInternalError)
			return internalFailure(), fmt.Errorf("record rejected initiation: %w", err)
		}
		msg := resp.Message
		if msg == "" {
			msg = "Erreur inconnue de la passerelle."
		}
		return &InitiationResult{
			Success:       false,
			Message:       "Échec d'initialisation du paiement: " + msg,
			PaymentStatus: domain.PaymentRejected,
			CorrelationID: correlationID,
			Details:       resp.Details,
		}, nil
	}

	log.Printf("[PAYMENT] %s accepted identity=%s ref=%s", gateway, identity, choice.TransactionRef)
	return &InitiationResult{
		Success:       true,
		Message:       msgInitiationAccepted,
		RedirectURL:   resp.CheckoutURL,
		PaymentStatus: domain.PaymentPending,
		CorrelationID: correlationID,
	}, nil
}

func (s *PaymentService) currency() string {
	if s.cfg.Currency != "" {
		return s.cfg.Currency
	}
	return domain.Currency
}

// markFailed records a terminal failure status; a second failure here is only logged.
func (s *PaymentService) markFailed(ctx context.Context, identity, status string) {
	if err := s.store.Update(ctx, identity, models.Fields{models.FieldPaymentStatus: status}); err != nil {
		log.Printf("[PAYMENT] could not record %s for identity=%s: %v", status, identity, err)
	}
}

func internalFailure() *InitiationResult {
	return &InitiationResult{
		Success:       false,
		Message:       msgInitiationInternal,
		PaymentStatus: domain.PaymentRejected,
	}
}
