package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"repairdesk/internal/config"
	"repairdesk/internal/database"
	"repairdesk/internal/domain"
	"repairdesk/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DSN)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM repair_attachments")
	db.Exec("DELETE FROM repair_parts")
	db.Exec("DELETE FROM repair_orders")
	db.Exec("DELETE FROM inventory_items")
	db.Exec("DELETE FROM customers")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	customers := repository.NewCustomerRepository(db)
	inventory := repository.NewInventoryRepository(db)
	repairs := repository.NewRepairRepository(db)
	payments := repository.NewPaymentRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")

	admin := &domain.User{
		Email:      "admin@repairdesk.local",
		FirstName:  "Ava",
		LastName:   "Admin",
		Role:       domain.RoleAdmin,
		IsActive:   true,
		IsVerified: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal("admin: ", err)
	}

	tech := &domain.User{
		Email:      "tech@repairdesk.local",
		FirstName:  "Tomas",
		LastName:   "Reyes",
		Phone:      "+1 555 010 2001",
		Role:       domain.RoleTechnician,
		IsActive:   true,
		IsVerified: true,
	}
	if err := users.Create(ctx, tech); err != nil {
		log.Fatal("technician: ", err)
	}

	clientEmails := []string{"mira@example.com", "dev@example.com", "lena@example.com"}
	clientNames := [][2]string{{"Mira", "Osei"}, {"Dev", "Patel"}, {"Lena", "Kovach"}}
	clients := make([]*domain.User, 0, len(clientEmails))
	for i, email := range clientEmails {
		u := &domain.User{
			Email:      email,
			FirstName:  clientNames[i][0],
			LastName:   clientNames[i][1],
			Role:       domain.RoleCustomer,
			IsActive:   true,
			IsVerified: true,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatal("customer user: ", err)
		}
		clients = append(clients, u)
	}

	// Customer profiles are normally created lazily on first access;
	// seed them up front so repair orders have owners.
	custIDs := make([]int64, 0, len(clients))
	for _, u := range clients {
		c, err := customers.FindOrCreateByUserID(ctx, u.ID)
		if err != nil {
			log.Fatal("customer profile: ", err)
		}
		custIDs = append(custIDs, c.ID)
	}

	// ================== INVENTORY ==================
	log.Println("Creating inventory...")
	items := []*domain.InventoryItem{
		{PartNumber: "SCR-IP13-OEM", Name: "iPhone 13 display assembly", Quantity: 12, UnitCost: 74.50, SellingPrice: 129.00, IsActive: true},
		{PartNumber: "BAT-S21-4000", Name: "Galaxy S21 battery 4000mAh", Quantity: 25, UnitCost: 14.20, SellingPrice: 39.00, IsActive: true},
		{PartNumber: "PORT-USBC-G2", Name: "USB-C charging port flex", Quantity: 40, UnitCost: 4.80, SellingPrice: 18.00, IsActive: true},
		{PartNumber: "FAN-LAP-80MM", Name: "80mm laptop cooling fan", Quantity: 9, UnitCost: 6.30, SellingPrice: 22.00, IsActive: true},
	}
	for _, it := range items {
		if err := inventory.Create(ctx, it); err != nil {
			log.Fatal("inventory: ", err)
		}
	}

	// ================== REPAIR ORDERS ==================
	log.Println("Creating repair orders...")
	est1 := 140.0
	o1 := &domain.RepairOrder{
		CustomerID:    custIDs[0],
		TechnicianID:  &tech.ID,
		DeviceType:    "smartphone",
		Brand:         "Apple",
		Model:         "iPhone 13",
		SerialNumber:  "F2LXK1ABCD",
		IssueDescription:     "Cracked screen, touch still works",
		Status:        domain.RepairInProgress,
		Priority:      domain.PriorityHigh,
		EstimatedCost: &est1,
	}
	if err := repairs.Create(ctx, o1); err != nil {
		log.Fatal("order 1: ", err)
	}
	if _, err := repairs.AddPart(ctx, o1.ID, items[0].ID, 1, nil); err != nil {
		log.Fatal("order 1 part: ", err)
	}

	o2 := &domain.RepairOrder{
		CustomerID: custIDs[1],
		DeviceType: "laptop",
		Brand:      "Lenovo",
		Model:      "ThinkPad T14",
		IssueDescription:  "Overheats and shuts down under load",
		Status:     domain.RepairPending,
		Priority:   domain.PriorityMedium,
	}
	if err := repairs.Create(ctx, o2); err != nil {
		log.Fatal("order 2: ", err)
	}

	actual := 168.0
	o3 := &domain.RepairOrder{
		CustomerID:   custIDs[2],
		TechnicianID: &tech.ID,
		DeviceType:   "smartphone",
		Brand:        "Samsung",
		Model:        "Galaxy S21",
		IssueDescription:    "Battery drains within 2 hours",
		Status:       domain.RepairCompleted,
		Priority:     domain.PriorityLow,
		ActualCost:   &actual,
	}
	if err := repairs.Create(ctx, o3); err != nil {
		log.Fatal("order 3: ", err)
	}
	if _, err := repairs.AddPart(ctx, o3.ID, items[1].ID, 1, nil); err != nil {
		log.Fatal("order 3 part: ", err)
	}

	// ================== PAYMENTS ==================
	log.Println("Creating payments...")
	now := time.Now()
	if err := payments.CreateForOrder(ctx, &domain.Payment{
		RepairOrderID: o3.ID,
		Amount:        100.00,
		Method:        domain.PaymentCard,
		Status:        domain.PaymentCompleted,
		PaidAt:        now.Add(-48 * time.Hour),
		Notes:         "Deposit",
	}); err != nil {
		log.Fatal("payment 1: ", err)
	}
	if err := payments.CreateForOrder(ctx, &domain.Payment{
		RepairOrderID: o3.ID,
		Amount:        107.00,
		Method:        domain.PaymentCash,
		Status:        domain.PaymentCompleted,
		PaidAt:        now,
		Notes:         "Balance on pickup",
	}); err != nil {
		log.Fatal("payment 2: ", err)
	}

	log.Println("Seed completed!")
	log.Println("Accounts (passwordless, request an OTP to log in):")
	log.Println("  admin@repairdesk.local (admin)")
	log.Println("  tech@repairdesk.local (technician)")
	log.Println("  mira@example.com, dev@example.com, lena@example.com (customers)")
}
