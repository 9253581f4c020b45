package payment

import (
	"context"
)

type PaymentRequest struct {
	Identity string
	// Amount is in whole currency units (XAF has no minor unit).
	Amount         int64
	Currency       string
	TransactionRef string
	// CorrelationID is the opaque token the gateway echoes back in its notification.
	CorrelationID     string
	Description       string
	CustomerPhone     string
	CustomerFirstName string
	CustomerLastName  string
	CustomerEmail     string
	NotifyURL         string
	ReturnURL         string
}

// PaymentResponse is the gateway's synchronous verdict. Accepted=false is a business
// rejection; transport failures are returned as errors instead.
type PaymentResponse struct {
	Accepted    bool
	Code        string
	Message     string
	CheckoutURL string
	Details     map[string]interface{}
}

type Provider interface {
	Name() string
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
}
