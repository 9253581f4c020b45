package payment

import (
	"context"
	"log"
)

// StubProvider accepts every request without calling out; for development.
type StubProvider struct{}

func (s *StubProvider) Name() string { return "stub" }

func (s *StubProvider) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	log.Printf("[STUB] accept transaction_ref=%s correlation=%s amount=%d", req.TransactionRef, req.CorrelationID, req.Amount)
	return &PaymentResponse{
		Accepted: true,
		Code:     "201",
		Message:  "stub accepted",
	}, nil
}
