package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCinetPayInitiateAccepted(t *testing.T) {
	var got cinetPayReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"201","message":"CREATED","data":{"payment_token":"tok","payment_url":"https://checkout.example/pay/tok"}}`))
	}))
	defer srv.Close()

	p := NewCinetPayProvider(srv.URL, "key-1", "")
	resp, err := p.InitiatePayment(context.Background(), PaymentRequest{
		Amount:         10000,
		Currency:       "XAF",
		TransactionRef: "AT123",
		CorrelationID:  "corr-1",
		CustomerPhone:  "077123456",
		NotifyURL:      "https://api.example/api/v1/payment/webhook/cinetpay",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if !resp.Accepted || resp.CheckoutURL != "https://checkout.example/pay/tok" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got.SiteID != "key-1" {
		t.Fatalf("expected site id to fall back to the api key, got %q", got.SiteID)
	}
	if got.TransactionID != "AT123" || got.Amount != 10000 || got.Metadata != "corr-1" || got.Currency != "XAF" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestCinetPayInitiateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"608","message":"MINIMUM_REQUIRED_FIELDS"}`))
	}))
	defer srv.Close()

	resp, err := NewCinetPayProvider(srv.URL, "k", "s").InitiatePayment(context.Background(), PaymentRequest{TransactionRef: "AT1"})
	if err != nil {
		t.Fatalf("a gateway rejection is not a transport error: %v", err)
	}
	if resp.Accepted {
		t.Fatal("expected rejection")
	}
	if resp.Message != "MINIMUM_REQUIRED_FIELDS" || resp.Details["code"] != "608" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestCinetPayInitiateUndecodableResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	if _, err := NewCinetPayProvider(srv.URL, "k", "s").InitiatePayment(context.Background(), PaymentRequest{}); err == nil {
		t.Fatal("expected error for non-json response")
	}
}

func TestCinetPayInitiateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewCinetPayProvider(url, "k", "s").InitiatePayment(context.Background(), PaymentRequest{}); err == nil {
		t.Fatal("expected transport error")
	}
}
