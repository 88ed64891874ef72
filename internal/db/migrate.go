package db

import (
	"antidote/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/postgres" // Postgres driver for GORM
	"gorm.io/gorm"            // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Clinic{},
		&domain.ClinicDevice{},
		&domain.Doctor{},
		&domain.Procedure{},
		&domain.Package{},
		&domain.Lead{},
		&domain.CreditTransaction{},
		&domain.TopupOrder{},
		&domain.Dispute{},
		&domain.Thread{},
		&domain.Reply{},
	)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed.")
}
