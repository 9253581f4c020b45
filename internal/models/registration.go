package models

import "time"

// Field keys shared by every store backend (Firestore field, SQL column, JSON key).
const (
	FieldIdentity             = "identity"
	FieldName                 = "name"
	FieldSurname              = "surname"
	FieldClass                = "class"
	FieldPhone                = "phone"
	FieldEmail                = "email"
	FieldCategory             = "category"
	FieldInvitedBy            = "invited_by"
	FieldTicketType           = "ticket_type"
	FieldAmountDue            = "amount_due"
	FieldTransactionRef       = "transaction_ref"
	FieldGatewayTransactionID = "gateway_transaction_id"
	FieldCorrelationID        = "correlation_id"
	FieldGateway              = "gateway"
	FieldAgreementAccepted    = "agreement_accepted"
	FieldRemarks              = "remarks"
	FieldRegistrationStatus   = "registration_status"
	FieldPaymentStatus        = "payment_status"
	FieldCreatedAt            = "created_at"
	FieldUpdatedAt            = "updated_at"
)

// Fields is a field-level partial update keyed by the Field* constants.
type Fields map[string]interface{}

// Registration is the persisted registration document keyed by user identity.
type Registration struct {
	ID                   uint      `gorm:"primaryKey" json:"-" firestore:"-"`
	Identity             string    `gorm:"column:identity;size:128;not null;uniqueIndex" json:"identity" firestore:"identity"`
	Name                 string    `gorm:"column:name;size:255" json:"name" firestore:"name"`
	Surname              string    `gorm:"column:surname;size:255" json:"surname" firestore:"surname"`
	Class                string    `gorm:"column:class;size:100" json:"class" firestore:"class"`
	Phone                string    `gorm:"column:phone;size:20" json:"phone" firestore:"phone"`
	Email                string    `gorm:"column:email;size:255;index" json:"email" firestore:"email"`
	Category             string    `gorm:"column:category;size:20" json:"category" firestore:"category"`
	InvitedBy            *string   `gorm:"column:invited_by;size:255" json:"invited_by" firestore:"invited_by"`
	TicketType           string    `gorm:"column:ticket_type;size:255" json:"ticket_type" firestore:"ticket_type"`
	AmountDue            int64     `gorm:"column:amount_due" json:"amount_due" firestore:"amount_due"`
	TransactionRef       string    `gorm:"column:transaction_ref;size:255;index" json:"transaction_ref" firestore:"transaction_ref"`
	GatewayTransactionID string    `gorm:"column:gateway_transaction_id;size:255" json:"gateway_transaction_id" firestore:"gateway_transaction_id"`
	CorrelationID        string    `gorm:"column:correlation_id;size:64;index" json:"correlation_id" firestore:"correlation_id"`
	Gateway              string    `gorm:"column:gateway;size:30" json:"gateway" firestore:"gateway"`
	AgreementAccepted    bool      `gorm:"column:agreement_accepted" json:"agreement_accepted" firestore:"agreement_accepted"`
	Remarks              string    `gorm:"column:remarks;type:text" json:"remarks" firestore:"remarks"`
	RegistrationStatus   string    `gorm:"column:registration_status;size:30;index" json:"registration_status" firestore:"registration_status"`
	PaymentStatus        string    `gorm:"column:payment_status;size:30;index" json:"payment_status" firestore:"payment_status"`
	CreatedAt            time.Time `gorm:"column:created_at" json:"created_at" firestore:"created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at" json:"updated_at" firestore:"updated_at"`
}

func (Registration) TableName() string {
	return "registrations"
}
