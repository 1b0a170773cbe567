package domain

import "time"

type RepairStatus string

const (
	RepairPending       RepairStatus = "pending"
	RepairInProgress    RepairStatus = "in_progress"
	RepairAwaitingParts RepairStatus = "awaiting_parts"
	RepairCompleted     RepairStatus = "completed"
	RepairDelivered     RepairStatus = "delivered"
	RepairCancelled     RepairStatus = "cancelled"
)

func (s RepairStatus) Valid() bool {
	switch s {
	case RepairPending, RepairInProgress, RepairAwaitingParts,
		RepairCompleted, RepairDelivered, RepairCancelled:
		return true
	}
	return false
}

type RepairPriority string

const (
	PriorityLow    RepairPriority = "low"
	PriorityMedium RepairPriority = "medium"
	PriorityHigh   RepairPriority = "high"
	PriorityUrgent RepairPriority = "urgent"
)

func (p RepairPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type RepairOrder struct {
	ID               int64          `json:"id"`
	CustomerID       int64          `json:"customer_id"`
	TechnicianID     *int64         `json:"technician_id,omitempty"`
	DeviceType       string         `json:"device_type"`
	Brand            string         `json:"brand"`
	Model            string         `json:"model"`
	SerialNumber     string         `json:"serial_number,omitempty"`
	IssueDescription string         `json:"issue_description"`
	DiagnosisNotes   string         `json:"diagnosis_notes,omitempty"`
	Status           RepairStatus   `json:"status"`
	Priority         RepairPriority `json:"priority"`
	EstimatedCost    *float64       `json:"estimated_cost,omitempty"`
	ActualCost       *float64       `json:"actual_cost,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Customer    *Customer          `json:"customer,omitempty"`
	Parts       []RepairPart       `json:"parts,omitempty"`
	Attachments []RepairAttachment `json:"attachments,omitempty"`
}

// RepairPart records a quantity of an inventory item consumed by a
// repair order. UnitPrice is a snapshot of the selling price at the
// time the part was attached.
type RepairPart struct {
	ID            int64          `json:"id"`
	RepairOrderID int64          `json:"repair_order_id"`
	InventoryID   int64          `json:"inventory_id"`
	Quantity      int            `json:"quantity"`
	UnitPrice     float64        `json:"unit_price"`
	CreatedAt     time.Time      `json:"created_at"`
	Item          *InventoryItem `json:"item,omitempty"`
}

type RepairAttachment struct {
	ID            int64     `json:"id"`
	RepairOrderID int64     `json:"repair_order_id"`
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"original_name"`
	MimeType      string    `json:"mime_type"`
	Size          int64     `json:"size"`
	UploadedBy    int64     `json:"uploaded_by"`
	CreatedAt     time.Time `json:"created_at"`
}
