package repository

// AllModels lists every persisted model for schema migration.
func AllModels() []any {
	return []any{
		&userModel{},
		&customerModel{},
		&inventoryModel{},
		&repairOrderModel{},
		&repairPartModel{},
		&repairAttachmentModel{},
		&paymentModel{},
	}
}
