package domain

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	RegistrationUninitiated = "uninitiated"
	RegistrationPartial     = "partially_registered"
	RegistrationCompleted   = "completed_registration"
)

const (
	PaymentNotSubmitted        = "not_submitted"
	PaymentPending             = "pending"
	PaymentConfirmed           = "confirmed"
	PaymentRejected            = "rejected"
	PaymentFailedInitiation    = "failed_initiation"
	PaymentFailedInternalError = "failed_internal_error"
)

const (
	CategoryInternal = "Interne"
	CategoryExternal = "Externe"
)

const Currency = "XAF"

// Tariff is one row of the fixed ticket price table.
type Tariff struct {
	Category string
	Amount   int64
	Label    string
}

var tariffs = map[string]Tariff{
	CategoryInternal: {Category: CategoryInternal, Amount: 10000, Label: "Billet Interne (Élève Raponda Walker)"},
	CategoryExternal: {Category: CategoryExternal, Amount: 15000, Label: "Billet Externe"},
}

// TariffFor returns the tariff for a category; ok is false for unknown categories.
func TariffFor(category string) (Tariff, bool) {
	t, ok := tariffs[category]
	return t, ok
}

// TicketType renders the label stored on the record, e.g. "Billet Externe - 15 000 F CFA".
// The French digit grouping separator is written as a plain space.
func (t Tariff) TicketType() string {
	p := message.NewPrinter(language.French)
	return groupSeparator.Replace(p.Sprintf("%s - %d F CFA", t.Label, t.Amount))
}

var groupSeparator = strings.NewReplacer("\u202f", " ", "\u00a0", " ")

// gatewaySuccess is the closed set of gateway tokens that confirm a payment.
var gatewaySuccess = map[string]struct{}{
	"00":        {},
	"SUCCESS":   {},
	"COMPLETED": {},
	"paid":      {},
}

// PaymentStatusFromGateway maps a gateway status token to a terminal payment status.
// Any token outside the success set is a rejection.
func PaymentStatusFromGateway(token string) string {
	if _, ok := gatewaySuccess[token]; ok {
		return PaymentConfirmed
	}
	return PaymentRejected
}

// RegistrationRank orders registration statuses so they never move backwards.
func RegistrationRank(status string) int {
	switch status {
	case RegistrationPartial:
		return 1
	case RegistrationCompleted:
		return 2
	default:
		return 0
	}
}
