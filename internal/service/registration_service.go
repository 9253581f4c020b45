package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"bacheliers/internal/domain"
	"bacheliers/internal/models"
	"bacheliers/internal/repository"
)

// PersonalInfo is the first form: who is coming.
type PersonalInfo struct {
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname" validate:"required"`
	Class   string `json:"class" validate:"required"`
	Phone   string `json:"phone" validate:"required,phone"`
	Email   string `json:"email" validate:"required,email"`
}

func (p *PersonalInfo) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
	p.Class = strings.TrimSpace(p.Class)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
}

// TicketChoice is the final form: ticket category, Mobile Money reference and agreement.
type TicketChoice struct {
	Category          string `json:"category" validate:"required,oneof=Interne Externe"`
	InvitedBy         string `json:"invited_by" validate:"required_if=Category Externe"`
	TransactionRef    string `json:"transaction_ref" validate:"required"`
	AgreementAccepted bool   `json:"agreement_accepted" validate:"required"`
	Remarks           string `json:"remarks"`
}

func (t *TicketChoice) normalize() {
	t.Category = strings.TrimSpace(t.Category)
	t.InvitedBy = strings.TrimSpace(t.InvitedBy)
	t.TransactionRef = strings.TrimSpace(t.TransactionRef)
	t.Remarks = strings.TrimSpace(t.Remarks)
}

// StatusView is the combined progress shown to the attendee.
type StatusView struct {
	RegistrationStatus string `json:"registration_status"`
	PaymentStatus      string `json:"payment_status"`
	TicketType         string `json:"ticket_type"`
	AmountDue          int64  `json:"amount_due"`
	TransactionRef     string `json:"transaction_ref"`
}

func statusView(r *models.Registration) *StatusView {
	return &StatusView{
		RegistrationStatus: r.RegistrationStatus,
		PaymentStatus:      r.PaymentStatus,
		TicketType:         r.TicketType,
		AmountDue:          r.AmountDue,
		TransactionRef:     r.TransactionRef,
	}
}

type RegistrationService struct {
	store repository.RegistrationStore
}

func NewRegistrationService(store repository.RegistrationStore) *RegistrationService {
	return &RegistrationService{store: store}
}

// StartRegistration creates or refreshes the record with the attendee's personal info.
// A completed registration keeps its status; only the personal fields are overwritten.
func (s *RegistrationService) StartRegistration(ctx context.Context, identity string, info PersonalInfo) (*StatusView, error) {
	info.normalize()
	verr := validateStruct(&info)
	if strings.TrimSpace(identity) == "" {
		verr.add("identity", "is required")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	fields := models.Fields{
		models.FieldName:    info.Name,
		models.FieldSurname: info.Surname,
		models.FieldClass:   info.Class,
		models.FieldPhone:   info.Phone,
		models.FieldEmail:   info.Email,
	}
	current, err := s.store.Get(ctx, identity)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fields[models.FieldRegistrationStatus] = domain.RegistrationPartial
		fields[models.FieldPaymentStatus] = domain.PaymentNotSubmitted
	case err != nil:
		return nil, fmt.Errorf("load registration: %w", err)
	case domain.RegistrationRank(current.RegistrationStatus) < domain.RegistrationRank(domain.RegistrationPartial):
		fields[models.FieldRegistrationStatus] = domain.RegistrationPartial
	}

	if err := s.store.Merge(ctx, identity, fields); err != nil {
		return nil, fmt.Errorf("save registration: %w", err)
	}
	log.Printf("[REGISTRATION] personal info saved identity=%s", identity)
	return s.ReadStatus(ctx, identity)
}

// CompleteRegistration records the ticket choice and moves the record to
// completed_registration with a pending payment.
func (s *RegistrationService) CompleteRegistration(ctx context.Context, identity string, choice TicketChoice) (*StatusView, error) {
	choice.normalize()
	if err := validateStruct(&choice).orNil(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, identity, completionFields(choice)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("complete registration: %w", err)
	}
	log.Printf("[REGISTRATION] completed identity=%s category=%s ref=%s", identity, choice.Category, choice.TransactionRef)
	return s.ReadStatus(ctx, identity)
}

// completionFields derives ticket type and amount from the tariff. choice must be validated.
func completionFields(choice TicketChoice) models.Fields {
	tariff, _ := domain.TariffFor(choice.Category)
	fields := models.Fields{
		models.FieldCategory:           tariff.Category,
		models.FieldInvitedBy:          nil,
		models.FieldTicketType:         tariff.TicketType(),
		models.FieldAmountDue:          tariff.Amount,
		models.FieldTransactionRef:     choice.TransactionRef,
		models.FieldAgreementAccepted:  choice.AgreementAccepted,
		models.FieldRemarks:            choice.Remarks,
		models.FieldRegistrationStatus: domain.RegistrationCompleted,
		models.FieldPaymentStatus:      domain.PaymentPending,
	}
	if tariff.Category == domain.CategoryExternal {
		invited := choice.InvitedBy
		fields[models.FieldInvitedBy] = &invited
	}
	return fields
}

func (s *RegistrationService) ReadStatus(ctx context.Context, identity string) (*StatusView, error) {
	r, err := s.GetRegistration(ctx, identity)
	if err != nil {
		return nil, err
	}
	return statusView(r), nil
}

// GetRegistration returns the full record, used to pre-fill the forms.
func (s *RegistrationService) GetRegistration(ctx context.Context, identity string) (*models.Registration, error) {
	r, err := s.store.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load registration: %w", err)
	}
	return r, nil
}
