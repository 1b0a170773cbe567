package payment

import "time"

type CreatePaymentRequest struct {
	RepairOrderID int64      `json:"repair_order_id" binding:"required"`
	Amount        float64    `json:"amount" binding:"required"`
	Method        string     `json:"method" binding:"required"`
	TransactionID string     `json:"transaction_id"`
	Notes         string     `json:"notes"`
	PaidAt        *time.Time `json:"paid_at"`
}
