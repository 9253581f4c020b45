package payment

import (
	"errors"
	"testing"
)

func TestWebhookAdapterFor(t *testing.T) {
	for _, name := range []string{"generic", "stub", "cinetpay", "MIDTRANS", " cinetpay "} {
		if _, ok := WebhookAdapterFor(name); !ok {
			t.Fatalf("expected adapter for %q", name)
		}
	}
	if _, ok := WebhookAdapterFor("paypal"); ok {
		t.Fatal("expected no adapter for unknown gateway")
	}
}

func TestGenericAdapterParse(t *testing.T) {
	n, err := GenericAdapter{}.Parse([]byte(`{"transaction_ref":"AT123","status":"00","correlation_id":"U1"}`), "application/json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n.TransactionRef != "AT123" || n.StatusCode != "00" || n.CorrelationID != "U1" {
		t.Fatalf("unexpected notification %+v", n)
	}
	if n.GatewayTransactionID != "AT123" {
		t.Fatalf("expected gateway id to default to the reference, got %q", n.GatewayTransactionID)
	}

	n, err = GenericAdapter{}.Parse([]byte(`{"status":"00"}`), "application/json")
	if err != nil {
		t.Fatalf("missing fields must not be a parse error: %v", err)
	}
	if n.TransactionRef != "" || n.CorrelationID != "" {
		t.Fatalf("expected empty fields, got %+v", n)
	}

	if _, err := (GenericAdapter{}).Parse([]byte(`not json`), "application/json"); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestCinetPayAdapterParseForm(t *testing.T) {
	body := []byte("cpm_trans_id=AT123&cpm_result=00&cpm_custom=tok-1&cpm_payid=CP999")
	n, err := CinetPayAdapter{}.Parse(body, "application/x-www-form-urlencoded; charset=utf-8")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Notification{Gateway: "cinetpay", TransactionRef: "AT123", StatusCode: "00", CorrelationID: "tok-1", GatewayTransactionID: "CP999"}
	if *n != want {
		t.Fatalf("expected %+v, got %+v", want, *n)
	}
}

func TestCinetPayAdapterParseJSON(t *testing.T) {
	n, err := CinetPayAdapter{}.Parse([]byte(`{"cpm_trans_id":"AT9","cpm_result":"627","cpm_custom":"tok-2"}`), "application/json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n.StatusCode != "627" || n.GatewayTransactionID != "AT9" || n.CorrelationID != "tok-2" {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestMidtransAdapterParse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  string
		interim bool
	}{
		{"settlement", `{"order_id":"AT1","transaction_status":"settlement","custom_field1":"tok"}`, "SUCCESS", false},
		{"capture accepted", `{"order_id":"AT1","transaction_status":"capture","fraud_status":"accept"}`, "SUCCESS", false},
		{"capture challenged", `{"order_id":"AT1","transaction_status":"capture","fraud_status":"challenge"}`, "", true},
		{"pending", `{"order_id":"AT1","transaction_status":"pending"}`, "", true},
		{"deny", `{"order_id":"AT1","transaction_status":"deny"}`, "deny", false},
		{"expire", `{"order_id":"AT1","transaction_status":"expire"}`, "expire", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := MidtransAdapter{}.Parse([]byte(tt.body), "application/json")
			if tt.interim {
				if !errors.Is(err, ErrNonTerminal) {
					t.Fatalf("expected ErrNonTerminal, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if n.StatusCode != tt.status {
				t.Fatalf("expected status %q, got %q", tt.status, n.StatusCode)
			}
			if n.TransactionRef != "AT1" {
				t.Fatalf("expected order id as reference, got %q", n.TransactionRef)
			}
		})
	}
}
