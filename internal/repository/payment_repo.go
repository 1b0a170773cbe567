package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"repairdesk/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type paymentModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	RepairOrderID int64     `gorm:"column:repair_order_id;index"`
	Amount        float64   `gorm:"column:amount"`
	Method        string    `gorm:"column:method"`
	Status        string    `gorm:"column:status"`
	TransactionID *string   `gorm:"column:transaction_id"`
	Notes         *string   `gorm:"column:notes"`
	PaidAt        time.Time `gorm:"column:paid_at"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (paymentModel) TableName() string { return "payments" }

func toDomainPayment(m paymentModel) domain.Payment {
	var txID, notes string
	if m.TransactionID != nil {
		txID = *m.TransactionID
	}
	if m.Notes != nil {
		notes = *m.Notes
	}

	return domain.Payment{
		ID:            m.ID,
		RepairOrderID: m.RepairOrderID,
		Amount:        m.Amount,
		Method:        domain.PaymentMethod(m.Method),
		Status:        domain.PaymentStatus(m.Status),
		TransactionID: txID,
		Notes:         notes,
		PaidAt:        m.PaidAt,
		CreatedAt:     m.CreatedAt,
	}
}

// CreateForOrder inserts a payment after verifying the order exists,
// both inside one transaction.
func (r *PaymentRepository) CreateForOrder(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order repairOrderModel
		if err := tx.First(&order, p.RepairOrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		var txID, notes *string
		if p.TransactionID != "" {
			v := p.TransactionID
			txID = &v
		}
		if p.Notes != "" {
			v := p.Notes
			notes = &v
		}

		m := paymentModel{
			RepairOrderID: p.RepairOrderID,
			Amount:        p.Amount,
			Method:        string(p.Method),
			Status:        string(p.Status),
			TransactionID: txID,
			Notes:         notes,
			PaidAt:        p.PaidAt,
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		*p = toDomainPayment(m)
		return nil
	})
}

func (r *PaymentRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Payment, error) {
	return r.list(ctx, r.db.WithContext(ctx), limit, offset)
}

// ListByRepairOrder deliberately works for deleted orders too:
// payments outlive their order.
func (r *PaymentRepository) ListByRepairOrder(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("repair_order_id = ?", orderID), -1, 0)
}

func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.Payment, error) {
	q := r.db.WithContext(ctx).
		Where("repair_order_id IN (?)",
			r.db.Model(&repairOrderModel{}).Select("id").Where("customer_id = ?", customerID))
	return r.list(ctx, q, limit, offset)
}

func (r *PaymentRepository) ListByTechnician(ctx context.Context, technicianID int64, limit, offset int) ([]domain.Payment, error) {
	q := r.db.WithContext(ctx).
		Where("repair_order_id IN (?)",
			r.db.Model(&repairOrderModel{}).Select("id").Where("technician_id = ?", technicianID))
	return r.list(ctx, q, limit, offset)
}

func (r *PaymentRepository) list(ctx context.Context, q *gorm.DB, limit, offset int) ([]domain.Payment, error) {
	var rows []paymentModel
	tx := q.Order("paid_at DESC").Limit(limit).Offset(offset).Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Payment, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainPayment(m))
	}
	return out, nil
}
