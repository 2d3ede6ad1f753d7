package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"bloodlink/internal/config"
	"bloodlink/internal/database"
	"bloodlink/internal/domain"
	"bloodlink/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// schema bloodlink PostgreSQL 表结构
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS donors (
		donor_id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name               TEXT NOT NULL,
		age                INT NOT NULL CHECK (age BETWEEN 18 AND 65),
		gender             TEXT NOT NULL CHECK (gender IN ('Male', 'Female', 'Other')),
		blood_group        TEXT NOT NULL,
		contact            TEXT NOT NULL,
		location           TEXT NOT NULL,
		email              TEXT NOT NULL UNIQUE,
		password_hash      TEXT NOT NULL,
		verified           BOOLEAN NOT NULL DEFAULT TRUE,
		last_donation_date DATE,
		medical_history    TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS requests (
		request_id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		requester_name    TEXT NOT NULL,
		requester_contact TEXT NOT NULL,
		requester_email   TEXT NOT NULL,
		blood_group       TEXT NOT NULL,
		location          TEXT NOT NULL,
		urgency           TEXT NOT NULL CHECK (urgency IN ('Critical', 'High', 'Medium', 'Low')),
		hospital          TEXT NOT NULL,
		required_date     DATE NOT NULL,
		units_needed      INT NOT NULL CHECK (units_needed BETWEEN 1 AND 10),
		status            TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'fulfilled', 'cancelled')),
		notes             TEXT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS inventory (
		unit_id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		blood_group     TEXT NOT NULL,
		donor_id        UUID REFERENCES donors(donor_id),
		collection_date DATE NOT NULL,
		expiry_date     DATE NOT NULL,
		status          TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'reserved', 'used', 'expired')),
		location        TEXT NOT NULL,
		notes           TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS donations (
		donation_id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		donor_id               UUID NOT NULL REFERENCES donors(donor_id),
		donation_date          DATE NOT NULL,
		blood_group            TEXT NOT NULL,
		units_donated          INT NOT NULL CHECK (units_donated BETWEEN 1 AND 3),
		location               TEXT NOT NULL,
		medical_checkup_passed BOOLEAN NOT NULL DEFAULT TRUE,
		notes                  TEXT,
		created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS admins (
		admin_id      UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_donors_blood_group ON donors (blood_group)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests (status)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_email ON requests (requester_email)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_group_status ON inventory (blood_group, status)`,
	`CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations (donor_id)`,
}

var dropStatements = []string{
	`DROP TABLE IF EXISTS donations`,
	`DROP TABLE IF EXISTS inventory`,
	`DROP TABLE IF EXISTS requests`,
	`DROP TABLE IF EXISTS donors`,
	`DROP TABLE IF EXISTS admins`,
}

type seedDonor struct {
	name       string
	age        int
	gender     string
	bloodGroup domain.BloodType
	contact    string
	location   string
	email      string
	// 距今天数；-1 表示从未捐献
	lastDonationDaysAgo int
}

// 每个血型至少一名示例捐献者（对齐原始演示数据的分布）
var seedDonors = []seedDonor{
	{"John Doe", 28, domain.GenderMale, domain.OPos, "+1-555-0101", "New York", "john.doe@email.com", 78},
	{"Michael Brown", 35, domain.GenderMale, domain.OPos, "+1-555-0201", "Los Angeles", "michael.brown@email.com", 62},
	{"David Brown", 29, domain.GenderMale, domain.ONeg, "+1-555-0105", "Phoenix", "david.brown@email.com", 31},
	{"Jane Smith", 32, domain.GenderFemale, domain.APos, "+1-555-0102", "Los Angeles", "jane.smith@email.com", 43},
	{"Lisa Davis", 26, domain.GenderFemale, domain.ANeg, "+1-555-0106", "Philadelphia", "lisa.davis@email.com", 17},
	{"Mark Thompson", 31, domain.GenderMale, domain.BPos, "+1-555-0107", "Fort Worth", "mark.thompson@email.com", -1},
	{"Mike Johnson", 25, domain.GenderMale, domain.BNeg, "+1-555-0103", "Chicago", "mike.johnson@email.com", 31},
	{"Sarah Wilson", 35, domain.GenderFemale, domain.ABPos, "+1-555-0104", "Houston", "sarah.wilson@email.com", 124},
	{"Jennifer Green", 33, domain.GenderFemale, domain.ABNeg, "+1-555-0108", "El Paso", "jennifer.green@email.com", 45},
	{"Robert Wilson", 32, domain.GenderMale, domain.OPos, "+1-555-0401", "Houston", "robert.wilson@email.com", -1},
}

type seedUnit struct {
	bloodGroup domain.BloodType
	// 采集日距今天数
	collectedDaysAgo int
	location         string
	donorEmail       string
}

var seedUnits = []seedUnit{
	{domain.OPos, 3, "New York Blood Center", "john.doe@email.com"},
	{domain.OPos, 10, "LA Medical Center", "michael.brown@email.com"},
	{domain.ONeg, 2, "Phoenix Blood Bank", "david.brown@email.com"},
	{domain.APos, 5, "LA Medical Center", "jane.smith@email.com"},
	{domain.ANeg, 8, "Philadelphia Medical Center", "lisa.davis@email.com"},
	{domain.BNeg, 4, "Chicago General Hospital", "mike.johnson@email.com"},
	{domain.ABPos, 6, "Houston Medical Center", "sarah.wilson@email.com"},
	{domain.ABNeg, 1, "El Paso Blood Bank", "jennifer.green@email.com"},
	// 临期库存（7 天内到期）
	{domain.OPos, domain.ShelfLifeDays - 3, "New York Blood Center", ""},
}

func main() {
	reset := flag.Bool("reset", false, "drop existing tables before creating the schema")
	seed := flag.Bool("seed", true, "insert demo donors, inventory and a default admin")
	flag.Parse()

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	if *reset {
		fmt.Println("Dropping existing tables...")
		for _, stmt := range dropStatements {
			if _, err := db.Exec(stmt); err != nil {
				log.Fatalf("Drop failed: %v", err)
			}
		}
	}

	fmt.Println("Creating schema...")
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Schema statement failed: %v", err)
		}
	}
	fmt.Println("Schema ready.")

	if !*seed {
		return
	}

	ctx := context.Background()
	donorsRepo := repository.NewPostgresDonorsRepo(db)
	inventoryRepo := repository.NewPostgresInventoryRepo(db)
	adminsRepo := repository.NewPostgresAdminsRepo(db)

	fmt.Println("Seeding default admin (admin / admin123)...")
	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Hash admin password: %v", err)
	}
	if _, err := adminsRepo.CreateAdmin(ctx, &domain.Admin{
		Username:     "admin",
		PasswordHash: string(adminHash),
	}); err != nil {
		log.Fatalf("Seed admin: %v", err)
	}

	fmt.Println("Seeding demo donors (password123)...")
	donorHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Hash donor password: %v", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	donorIDs := map[string]string{}
	for _, sd := range seedDonors {
		exists, err := donorsRepo.EmailExists(ctx, sd.email)
		if err != nil {
			log.Fatalf("Check donor %s: %v", sd.email, err)
		}
		if exists {
			continue
		}
		donor := &domain.Donor{
			Name:         sd.name,
			Age:          sd.age,
			Gender:       sd.gender,
			BloodGroup:   sd.bloodGroup,
			Contact:      sd.contact,
			Location:     sd.location,
			Email:        sd.email,
			PasswordHash: string(donorHash),
			Verified:     true,
		}
		if sd.lastDonationDaysAgo >= 0 {
			last := today.AddDate(0, 0, -sd.lastDonationDaysAgo)
			donor.LastDonationDate = &last
		}
		id, err := donorsRepo.CreateDonor(ctx, donor)
		if err != nil {
			log.Fatalf("Seed donor %s: %v", sd.email, err)
		}
		donorIDs[sd.email] = id
	}

	fmt.Println("Seeding demo inventory...")
	for _, su := range seedUnits {
		collection := today.AddDate(0, 0, -su.collectedDaysAgo)
		unit := &domain.InventoryUnit{
			BloodGroup:     su.bloodGroup,
			CollectionDate: collection,
			ExpiryDate:     domain.ComputeExpiryDate(collection),
			Status:         domain.UnitAvailable,
			Location:       su.location,
		}
		if id, ok := donorIDs[su.donorEmail]; ok {
			unit.DonorID = sql.NullString{String: id, Valid: true}
		}
		if _, err := inventoryRepo.CreateUnit(ctx, unit); err != nil {
			log.Fatalf("Seed unit (%s, %s): %v", su.bloodGroup, su.location, err)
		}
	}

	fmt.Println("Done.")
	fmt.Println("Admin login: admin / admin123 (change in production)")
}
