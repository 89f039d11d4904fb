package models

import (
	"log"

	"bitbucket.org/mmdatafocus/helpdesk_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Branch{}, &User{},
		&DailyRecord{}, &UtilityReading{},
		&ElectricityMeter{}, &ElectricityReading{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
