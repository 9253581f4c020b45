package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNonTerminal marks an interim notification (e.g. Midtrans "pending") that must be
// acknowledged without touching the record.
var ErrNonTerminal = errors.New("payment: notification is not terminal")

// Notification is the normalized shape every gateway webhook is reduced to.
type Notification struct {
	Gateway              string `json:"gateway"`
	TransactionRef       string `json:"transaction_ref"`
	StatusCode           string `json:"status_code"`
	CorrelationID        string `json:"correlation_id"`
	GatewayTransactionID string `json:"gateway_transaction_id"`
}

// WebhookAdapter decodes one gateway's notification body. Missing fields are left empty;
// only an undecodable body is an error.
type WebhookAdapter interface {
	Name() string
	Parse(body []byte, contentType string) (*Notification, error)
}

var adapters = map[string]WebhookAdapter{
	"generic":  GenericAdapter{},
	"stub":     GenericAdapter{},
	"cinetpay": CinetPayAdapter{},
	"midtrans": MidtransAdapter{},
}

// WebhookAdapterFor selects the adapter registered under a gateway tag.
func WebhookAdapterFor(gateway string) (WebhookAdapter, bool) {
	a, ok := adapters[strings.ToLower(strings.TrimSpace(gateway))]
	return a, ok
}

// GenericAdapter reads {transaction_ref, status, correlation_id, gateway_transaction_id}.
type GenericAdapter struct{}

func (GenericAdapter) Name() string { return "generic" }

func (GenericAdapter) Parse(body []byte, contentType string) (*Notification, error) {
	var p struct {
		TransactionRef       string `json:"transaction_ref"`
		Status               string `json:"status"`
		CorrelationID        string `json:"correlation_id"`
		GatewayTransactionID string `json:"gateway_transaction_id"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("generic webhook: %w", err)
	}
	n := &Notification{
		Gateway:              "generic",
		TransactionRef:       strings.TrimSpace(p.TransactionRef),
		StatusCode:           strings.TrimSpace(p.Status),
		CorrelationID:        strings.TrimSpace(p.CorrelationID),
		GatewayTransactionID: strings.TrimSpace(p.GatewayTransactionID),
	}
	if n.GatewayTransactionID == "" {
		n.GatewayTransactionID = n.TransactionRef
	}
	return n, nil
}

// CinetPayAdapter reads cpm_* fields, sent either as a form or as JSON.
type CinetPayAdapter struct{}

func (CinetPayAdapter) Name() string { return "cinetpay" }

func (CinetPayAdapter) Parse(body []byte, contentType string) (*Notification, error) {
	fields := map[string]string{}
	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("cinetpay webhook: %w", err)
		}
		for k := range values {
			fields[k] = values.Get(k)
		}
	} else {
		var raw map[string]interface{}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("cinetpay webhook: %w", err)
		}
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				fields[k] = val
			case float64:
				fields[k] = fmt.Sprintf("%.0f", val)
			}
		}
	}
	n := &Notification{
		Gateway:              "cinetpay",
		TransactionRef:       strings.TrimSpace(fields["cpm_trans_id"]),
		StatusCode:           strings.TrimSpace(fields["cpm_result"]),
		CorrelationID:        strings.TrimSpace(fields["cpm_custom"]),
		GatewayTransactionID: strings.TrimSpace(fields["cpm_payid"]),
	}
	if n.GatewayTransactionID == "" {
		n.GatewayTransactionID = n.TransactionRef
	}
	return n, nil
}

// MidtransAdapter reduces Midtrans HTTP notifications. settlement and accepted captures
// become SUCCESS; pending and challenged captures are not terminal.
type MidtransAdapter struct{}

func (MidtransAdapter) Name() string { return "midtrans" }

func (MidtransAdapter) Parse(body []byte, contentType string) (*Notification, error) {
	var p struct {
		OrderID           string `json:"order_id"`
		TransactionID     string `json:"transaction_id"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
		CustomField1      string `json:"custom_field1"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("midtrans webhook: %w", err)
	}
	n := &Notification{
		Gateway:              "midtrans",
		TransactionRef:       strings.TrimSpace(p.OrderID),
		CorrelationID:        strings.TrimSpace(p.CustomField1),
		GatewayTransactionID: strings.TrimSpace(p.TransactionID),
	}
	ts := strings.ToLower(strings.TrimSpace(p.TransactionStatus))
	switch ts {
	case "settlement":
		n.StatusCode = "SUCCESS"
	case "capture":
		switch strings.ToLower(p.FraudStatus) {
		case "accept", "":
			n.StatusCode = "SUCCESS"
		case "challenge":
			return n, ErrNonTerminal
		default:
			n.StatusCode = "capture_" + strings.ToLower(p.FraudStatus)
		}
	case "pending":
		return n, ErrNonTerminal
	default:
		n.StatusCode = ts
	}
	return n, nil
}
