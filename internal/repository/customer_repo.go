package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"repairdesk/internal/domain"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

type customerModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex"`
	Address   *string   `gorm:"column:address"`
	Notes     *string   `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (customerModel) TableName() string { return "customers" }

func toDomainCustomer(m customerModel) *domain.Customer {
	var address, notes string
	if m.Address != nil {
		address = *m.Address
	}
	if m.Notes != nil {
		notes = *m.Notes
	}

	return &domain.Customer{
		ID:        m.ID,
		UserID:    m.UserID,
		Address:   address,
		Notes:     notes,
		CreatedAt: m.CreatedAt,
	}
}

// FindOrCreateByUserID resolves the customer row for a user, creating
// an empty one when missing. The insert is an upsert on the unique
// user_id index, so two concurrent first-time calls still end up with
// a single row.
func (r *CustomerRepository) FindOrCreateByUserID(ctx context.Context, userID int64) (*domain.Customer, error) {
	m := customerModel{UserID: userID}
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}

	// DoNothing leaves m.ID zero when the row already existed.
	var out customerModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, err
	}
	return toDomainCustomer(out), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var m customerModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainCustomer(m), nil
}

func (r *CustomerRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Customer, error) {
	var m customerModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainCustomer(m), nil
}

func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	var rows []customerModel
	tx := r.db.WithContext(ctx).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Customer, 0, len(rows))
	for _, m := range rows {
		c := toDomainCustomer(m)

		var um userModel
		if err := r.db.WithContext(ctx).First(&um, m.UserID).Error; err == nil {
			c.User = toDomainUser(um)
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	updates := map[string]any{}
	if c.Address != "" {
		updates["address"] = c.Address
	}
	if c.Notes != "" {
		updates["notes"] = c.Notes
	}
	if len(updates) == 0 {
		return nil
	}

	tx := r.db.WithContext(ctx).Model(&customerModel{}).
		Where("id = ?", c.ID).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
