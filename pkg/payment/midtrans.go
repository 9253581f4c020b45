package payment

import (
	"context"
	"fmt"
	"log"
	"strconv"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransProvider creates Snap transactions. The notification URL is configured on the
// Midtrans dashboard; the correlation token travels in custom_field1.
type MidtransProvider struct {
	client snap.Client
}

func NewMidtransProvider(serverKey string, production bool) *MidtransProvider {
	p := &MidtransProvider{}
	if production {
		p.client.New(serverKey, midtrans.Production)
	} else {
		p.client.New(serverKey, midtrans.Sandbox)
	}
	return p
}

func (p *MidtransProvider) Name() string { return "midtrans" }

func (p *MidtransProvider) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sreq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.TransactionRef,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerFirstName,
			LName: req.CustomerLastName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.TransactionRef,
				Price: req.Amount,
				Qty:   1,
				Name:  truncate(req.Description, 50),
			},
		},
		CustomField1: req.CorrelationID,
	}
	log.Printf("[MIDTRANS] create snap transaction order_id=%s amount=%d", req.TransactionRef, req.Amount)
	resp, merr := p.client.CreateTransaction(sreq)
	if merr != nil {
		if merr.StatusCode >= 400 && merr.StatusCode < 500 {
			return &PaymentResponse{
				Accepted: false,
				Code:     strconv.Itoa(merr.StatusCode),
				Message:  merr.Message,
				Details:  map[string]interface{}{"status_code": merr.StatusCode, "message": merr.Message},
			}, nil
		}
		return nil, fmt.Errorf("midtrans: %s", merr.Message)
	}
	if resp == nil || resp.Token == "" {
		return &PaymentResponse{Accepted: false, Message: "empty snap token"}, nil
	}
	return &PaymentResponse{
		Accepted:    true,
		Code:        "201",
		CheckoutURL: resp.RedirectURL,
		Details:     map[string]interface{}{"token": resp.Token},
	}, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
