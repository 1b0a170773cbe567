package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"repairdesk/internal/domain"
)

var (
	ErrOrderNotFound     = errors.New("repair order not found")
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrPartNotFound      = errors.New("repair part not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type RepairRepository struct {
	db *gorm.DB
}

func NewRepairRepository(db *gorm.DB) *RepairRepository {
	return &RepairRepository{db: db}
}

type repairOrderModel struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	CustomerID       int64      `gorm:"column:customer_id;index"`
	TechnicianID     *int64     `gorm:"column:technician_id"`
	DeviceType       string     `gorm:"column:device_type"`
	Brand            string     `gorm:"column:brand"`
	Model            string     `gorm:"column:model"`
	SerialNumber     *string    `gorm:"column:serial_number"`
	IssueDescription string     `gorm:"column:issue_description"`
	DiagnosisNotes   *string    `gorm:"column:diagnosis_notes"`
	Status           string     `gorm:"column:status"`
	Priority         string     `gorm:"column:priority"`
	EstimatedCost    *float64   `gorm:"column:estimated_cost"`
	ActualCost       *float64   `gorm:"column:actual_cost"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (repairOrderModel) TableName() string { return "repair_orders" }

type repairPartModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	RepairOrderID int64     `gorm:"column:repair_order_id;index"`
	InventoryID   int64     `gorm:"column:inventory_id;index"`
	Quantity      int       `gorm:"column:quantity"`
	UnitPrice     float64   `gorm:"column:unit_price"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (repairPartModel) TableName() string { return "repair_parts" }

type repairAttachmentModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	RepairOrderID int64     `gorm:"column:repair_order_id;index"`
	Filename      string    `gorm:"column:filename"`
	OriginalName  string    `gorm:"column:original_name"`
	MimeType      string    `gorm:"column:mime_type"`
	Size          int64     `gorm:"column:size"`
	UploadedBy    int64     `gorm:"column:uploaded_by"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (repairAttachmentModel) TableName() string { return "repair_attachments" }

func toDomainOrder(m repairOrderModel) *domain.RepairOrder {
	var serial, diagnosis string
	if m.SerialNumber != nil {
		serial = *m.SerialNumber
	}
	if m.DiagnosisNotes != nil {
		diagnosis = *m.DiagnosisNotes
	}

	return &domain.RepairOrder{
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		TechnicianID:     m.TechnicianID,
		DeviceType:       m.DeviceType,
		Brand:            m.Brand,
		Model:            m.Model,
		SerialNumber:     serial,
		IssueDescription: m.IssueDescription,
		DiagnosisNotes:   diagnosis,
		Status:           domain.RepairStatus(m.Status),
		Priority:         domain.RepairPriority(m.Priority),
		EstimatedCost:    m.EstimatedCost,
		ActualCost:       m.ActualCost,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toOrderModel(o *domain.RepairOrder) repairOrderModel {
	var serial, diagnosis *string
	if o.SerialNumber != "" {
		v := o.SerialNumber
		serial = &v
	}
	if o.DiagnosisNotes != "" {
		v := o.DiagnosisNotes
		diagnosis = &v
	}

	return repairOrderModel{
		ID:               o.ID,
		CustomerID:       o.CustomerID,
		TechnicianID:     o.TechnicianID,
		DeviceType:       o.DeviceType,
		Brand:            o.Brand,
		Model:            o.Model,
		SerialNumber:     serial,
		IssueDescription: o.IssueDescription,
		DiagnosisNotes:   diagnosis,
		Status:           string(o.Status),
		Priority:         string(o.Priority),
		EstimatedCost:    o.EstimatedCost,
		ActualCost:       o.ActualCost,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func toDomainPart(m repairPartModel) domain.RepairPart {
	return domain.RepairPart{
		ID:            m.ID,
		RepairOrderID: m.RepairOrderID,
		InventoryID:   m.InventoryID,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		CreatedAt:     m.CreatedAt,
	}
}

func toDomainAttachment(m repairAttachmentModel) domain.RepairAttachment {
	return domain.RepairAttachment{
		ID:            m.ID,
		RepairOrderID: m.RepairOrderID,
		Filename:      m.Filename,
		OriginalName:  m.OriginalName,
		MimeType:      m.MimeType,
		Size:          m.Size,
		UploadedBy:    m.UploadedBy,
		CreatedAt:     m.CreatedAt,
	}
}

func (r *RepairRepository) Create(ctx context.Context, o *domain.RepairOrder) error {
	m := toOrderModel(o)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*o = *toDomainOrder(m)
	return nil
}

func (r *RepairRepository) GetByID(ctx context.Context, id int64) (*domain.RepairOrder, error) {
	var m repairOrderModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return toDomainOrder(m), nil
}

// GetDetailed loads an order with its parts (including inventory
// snapshots) and attachments.
func (r *RepairRepository) GetDetailed(ctx context.Context, id int64) (*domain.RepairOrder, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	parts, err := r.ListParts(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Parts = parts

	atts, err := r.ListAttachments(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Attachments = atts

	return o, nil
}

func (r *RepairRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.RepairOrder, error) {
	return r.list(ctx, r.db.WithContext(ctx), limit, offset)
}

func (r *RepairRepository) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.RepairOrder, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("customer_id = ?", customerID), limit, offset)
}

func (r *RepairRepository) ListByTechnician(ctx context.Context, technicianID int64, limit, offset int) ([]domain.RepairOrder, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("technician_id = ?", technicianID), limit, offset)
}

func (r *RepairRepository) list(ctx context.Context, q *gorm.DB, limit, offset int) ([]domain.RepairOrder, error) {
	var rows []repairOrderModel
	tx := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.RepairOrder, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainOrder(m))
	}
	return out, nil
}

// Update merges a partial field set onto the order row.
func (r *RepairRepository) Update(ctx context.Context, id int64, updates map[string]any) (*domain.RepairOrder, error) {
	tx := r.db.WithContext(ctx).Model(&repairOrderModel{}).
		Where("id = ?", id).
		Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the order and cascades its parts and attachment
// rows. Payments are left in place: they are an audit trail with a
// lifetime independent of the order.
func (r *RepairRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m repairOrderModel
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if err := tx.Where("repair_order_id = ?", id).Delete(&repairPartModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("repair_order_id = ?", id).Delete(&repairAttachmentModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&repairOrderModel{}, id).Error
	})
}

// AddPart attaches a quantity of an inventory item to an order inside
// one transaction: order lookup, item lookup, stock decrement, part
// insert. The decrement is conditional on sufficient stock, so two
// concurrent calls can never drive the quantity negative.
func (r *RepairRepository) AddPart(ctx context.Context, orderID, inventoryID int64, quantity int, unitPrice *float64) (*domain.RepairPart, error) {
	var part repairPartModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order repairOrderModel
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		var item inventoryModel
		if err := tx.First(&item, inventoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		res := tx.Model(&inventoryModel{}).
			Where("id = ? AND quantity >= ?", inventoryID, quantity).
			Update("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		price := item.SellingPrice
		if unitPrice != nil {
			price = *unitPrice
		}

		part = repairPartModel{
			RepairOrderID: orderID,
			InventoryID:   inventoryID,
			Quantity:      quantity,
			UnitPrice:     price,
		}
		return tx.Create(&part).Error
	})
	if err != nil {
		return nil, err
	}

	out := toDomainPart(part)
	return &out, nil
}

// RemovePart detaches a part from an order, restoring its quantity to
// inventory. A missing inventory row (hard-deleted item) is
// tolerated: the restore is skipped and the part row still goes away.
func (r *RepairRepository) RemovePart(ctx context.Context, orderID, partID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var part repairPartModel
		if err := tx.Where("id = ? AND repair_order_id = ?", partID, orderID).First(&part).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartNotFound
			}
			return err
		}

		if err := tx.Model(&inventoryModel{}).
			Where("id = ?", part.InventoryID).
			Update("quantity", gorm.Expr("quantity + ?", part.Quantity)).Error; err != nil {
			return err
		}

		return tx.Delete(&repairPartModel{}, part.ID).Error
	})
}

func (r *RepairRepository) ListParts(ctx context.Context, orderID int64) ([]domain.RepairPart, error) {
	var rows []repairPartModel
	tx := r.db.WithContext(ctx).
		Where("repair_order_id = ?", orderID).
		Order("id").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.RepairPart, 0, len(rows))
	for _, m := range rows {
		p := toDomainPart(m)

		var item inventoryModel
		if err := r.db.WithContext(ctx).First(&item, m.InventoryID).Error; err == nil {
			p.Item = toDomainInventory(item)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *RepairRepository) AddAttachment(ctx context.Context, a *domain.RepairAttachment) error {
	m := repairAttachmentModel{
		RepairOrderID: a.RepairOrderID,
		Filename:      a.Filename,
		OriginalName:  a.OriginalName,
		MimeType:      a.MimeType,
		Size:          a.Size,
		UploadedBy:    a.UploadedBy,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*a = toDomainAttachment(m)
	return nil
}

func (r *RepairRepository) ListAttachments(ctx context.Context, orderID int64) ([]domain.RepairAttachment, error) {
	var rows []repairAttachmentModel
	tx := r.db.WithContext(ctx).
		Where("repair_order_id = ?", orderID).
		Order("id").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.RepairAttachment, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainAttachment(m))
	}
	return out, nil
}

func (r *RepairRepository) GetAttachment(ctx context.Context, orderID, attachmentID int64) (*domain.RepairAttachment, error) {
	var m repairAttachmentModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND repair_order_id = ?", attachmentID, orderID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	out := toDomainAttachment(m)
	return &out, nil
}

func (r *RepairRepository) DeleteAttachment(ctx context.Context, orderID, attachmentID int64) error {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND repair_order_id = ?", attachmentID, orderID).
		Delete(&repairAttachmentModel{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
