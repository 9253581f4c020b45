package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const cinetPayAccepted = "201"

// CinetPayProvider initiates Mobile Money payments through a CinetPay-style checkout API.
type CinetPayProvider struct {
	APIURL string
	APIKey string
	SiteID string
	client *http.Client
}

func NewCinetPayProvider(apiURL, apiKey, siteID string) *CinetPayProvider {
	if apiURL == "" {
		apiURL = "https://api-checkout.cinetpay.com/v2/payment"
	}
	if siteID == "" {
		siteID = apiKey
	}
	return &CinetPayProvider{
		APIURL: apiURL,
		APIKey: apiKey,
		SiteID: siteID,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *CinetPayProvider) Name() string { return "cinetpay" }

type cinetPayReq struct {
	APIKey              string `json:"apikey"`
	SiteID              string `json:"site_id"`
	TransactionID       string `json:"transaction_id"`
	Currency            string `json:"currency"`
	Amount              int64  `json:"amount"`
	Description         string `json:"description"`
	CustomerPhoneNumber string `json:"customer_phone_number"`
	CustomerName        string `json:"customer_name,omitempty"`
	CustomerSurname     string `json:"customer_surname,omitempty"`
	CustomerEmail       string `json:"customer_email,omitempty"`
	NotifyURL           string `json:"notify_url"`
	ReturnURL           string `json:"return_url"`
	Metadata            string `json:"metadata"`
}

type cinetPayResp struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
	Data        struct {
		PaymentToken string `json:"payment_token"`
		PaymentURL   string `json:"payment_url"`
	} `json:"data"`
}

func (p *CinetPayProvider) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	payload := cinetPayReq{
		APIKey:              p.APIKey,
		SiteID:              p.SiteID,
		TransactionID:       req.TransactionRef,
		Currency:            req.Currency,
		Amount:              req.Amount,
		Description:         req.Description,
		CustomerPhoneNumber: req.CustomerPhone,
		CustomerName:        req.CustomerLastName,
		CustomerSurname:     req.CustomerFirstName,
		CustomerEmail:       req.CustomerEmail,
		NotifyURL:           req.NotifyURL,
		ReturnURL:           req.ReturnURL,
		Metadata:            req.CorrelationID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	log.Printf("[CINETPAY] POST %s transaction_id=%s amount=%d %s", p.APIURL, req.TransactionRef, req.Amount, req.Currency)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	log.Printf("[CINETPAY] response status=%d body=%s", resp.StatusCode, string(respBody))
	var out cinetPayResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("cinetpay: decode response (status %d): %w", resp.StatusCode, err)
	}
	var details map[string]interface{}
	_ = json.Unmarshal(respBody, &details)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300 && out.Code == cinetPayAccepted
	msg := out.Message
	if msg == "" {
		msg = out.Description
	}
	return &PaymentResponse{
		Accepted:    ok,
		Code:        out.Code,
		Message:     msg,
		CheckoutURL: out.Data.PaymentURL,
		Details:     details,
	}, nil
}
