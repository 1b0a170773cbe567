package repair

type CreateRepairRequest struct {
	DeviceType       string   `form:"device_type" binding:"required"`
	Brand            string   `form:"brand" binding:"required"`
	Model            string   `form:"model" binding:"required"`
	SerialNumber     string   `form:"serial_number"`
	IssueDescription string   `form:"issue_description" binding:"required"`
	Priority         string   `form:"priority"`
	CustomerID       int64    `form:"customer_id"`
	EstimatedCost    *float64 `form:"estimated_cost"`
}

// UpdateRepairRequest is a partial merge onto the order row. Any
// field left nil is untouched.
type UpdateRepairRequest struct {
	DeviceType       *string  `json:"device_type"`
	Brand            *string  `json:"brand"`
	Model            *string  `json:"model"`
	SerialNumber     *string  `json:"serial_number"`
	IssueDescription *string  `json:"issue_description"`
	DiagnosisNotes   *string  `json:"diagnosis_notes"`
	Status           *string  `json:"status"`
	Priority         *string  `json:"priority"`
	EstimatedCost    *float64 `json:"estimated_cost"`
	ActualCost       *float64 `json:"actual_cost"`
}

type AssignTechnicianRequest struct {
	TechnicianID int64 `json:"technician_id" binding:"required"`
}

type AddPartRequest struct {
	InventoryID int64    `json:"inventory_id" binding:"required"`
	Quantity    int      `json:"quantity" binding:"required"`
	UnitPrice   *float64 `json:"unit_price"`
}
