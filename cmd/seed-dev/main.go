// seed-dev loads a small development fixture set: a handful of members,
// providers, and billable services, so a local terminal can submit
// transactions right away.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-dev
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/models"
	"github.com/mkbenefits/benefits_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	members := []models.Member{
		{Number: 7, FirstName: "Aye", LastName: "Chan", Email: "aye.chan@example.com", IsActive: utils.NewTrue()},
		{Number: 12, FirstName: "Min", LastName: "Thu", Email: "min.thu@example.com", IsActive: utils.NewTrue()},
		{Number: 31, FirstName: "Su", LastName: "Hlaing", IsActive: utils.NewTrue()},
		// Lapsed coverage, for exercising inactive-member handling.
		{Number: 64, FirstName: "Ko", LastName: "Naing", IsActive: utils.NewFalse()},
	}
	providers := []models.Provider{
		{Number: 42, Name: "Downtown Family Clinic", Specialty: "General Practice", IsActive: utils.NewTrue()},
		{Number: 77, Name: "Riverside Dental", Specialty: "Dentistry", IsActive: utils.NewTrue()},
	}
	services := []models.ProviderService{
		{Code: 100, Name: "Office Visit", Fee: decimal.NewFromInt(45), IsActive: utils.NewTrue()},
		{Code: 210, Name: "Dental Cleaning", Fee: decimal.NewFromInt(80), IsActive: utils.NewTrue()},
		{Code: 305, Name: "Lab Panel", Description: "Standard blood panel", Fee: decimal.NewFromFloat(62.50), IsActive: utils.NewTrue()},
	}

	// Idempotent: rerunning updates the existing rows by business key.
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		UpdateAll: true,
	}).Create(&members).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed members: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		UpdateAll: true,
	}).Create(&providers).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed providers: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}).Create(&services).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed services: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded %d members, %d providers, %d services\n", len(members), len(providers), len(services))
}
