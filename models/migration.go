package models

import (
	"log"

	"github.com/mkbenefits/benefits_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Member{}, &Provider{}, &ProviderService{},
		&Transaction{},
		&NotificationOutboxRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
