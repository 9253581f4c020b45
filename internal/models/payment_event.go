package models

import "time"

const (
	EventReceived  = "received"
	EventProcessed = "processed"
	EventIgnored   = "ignored"
	EventFailed    = "failed"
)

// PaymentEvent records one gateway webhook delivery and what the reconciler did with it.
type PaymentEvent struct {
	ID             uint      `gorm:"primaryKey" json:"id" firestore:"-"`
	Gateway        string    `gorm:"size:30;not null;index" json:"gateway" firestore:"gateway"`
	Identity       string    `gorm:"size:128;index" json:"identity" firestore:"identity"`
	CorrelationID  string    `gorm:"size:64;index" json:"correlation_id" firestore:"correlation_id"`
	TransactionRef string    `gorm:"size:255;index" json:"transaction_ref" firestore:"transaction_ref"`
	StatusCode     string    `gorm:"size:50" json:"status_code" firestore:"status_code"`
	Outcome        string    `gorm:"size:20;not null;index" json:"outcome" firestore:"outcome"`
	PaymentStatus  string    `gorm:"size:30" json:"payment_status" firestore:"payment_status"`
	Error          string    `gorm:"type:text" json:"error,omitempty" firestore:"error"`
	Payload        string    `gorm:"type:text" json:"payload" firestore:"payload"`
	IP             string    `gorm:"size:45" json:"ip" firestore:"ip"`
	UserAgent      string    `gorm:"size:512" json:"user_agent" firestore:"user_agent"`
	CreatedAt      time.Time `json:"created_at" firestore:"created_at"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}
