package domain

import "time"

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentUPI          PaymentMethod = "upi"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentBankTransfer:
		return true
	}
	return false
}

type PaymentStatus string

const (
	// PaymentCompleted is the only status ever written: amounts are
	// recorded as asserted by the caller, there is no gateway
	// capture flow behind this ledger.
	PaymentCompleted PaymentStatus = "completed"
)

// Payment is an append-only ledger row. Rows are never updated or
// deleted, and intentionally survive deletion of their repair order.
type Payment struct {
	ID            int64         `json:"id"`
	RepairOrderID int64         `json:"repair_order_id"`
	Amount        float64       `json:"amount"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	PaidAt        time.Time     `json:"paid_at"`
	CreatedAt     time.Time     `json:"created_at"`
}
