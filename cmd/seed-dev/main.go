package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/helpdesk_backend/config"
	"bitbucket.org/mmdatafocus/helpdesk_backend/models"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Seeds one branch with two electricity meters and a week of readings.
// Local development only.
func main() {
	days := flag.Int("days", 7, "Number of daily records to seed")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	ctx := context.Background()

	branch, err := models.CreateBranch(ctx, &models.NewBranch{
		Name:     "Dev Branch " + uuid.NewString()[:8],
		Timezone: "Asia/Jakarta",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create branch: %v\n", err)
		os.Exit(1)
	}

	user, err := models.CreateUser(ctx, &models.NewUser{
		BranchId: branch.ID,
		Username: "dev-" + uuid.NewString()[:8],
		Name:     "Dev Seeder",
		Password: "default123",
		Role:     models.UserRoleStaff,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
		os.Exit(1)
	}

	mainMeter, err := models.CreateElectricityMeter(ctx, &models.NewElectricityMeter{
		BranchId:      branch.ID,
		MeterName:     "Main",
		MeterNumber:   "PLN-001",
		Location:      "Front",
		PowerCapacity: "33000VA",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create meter: %v\n", err)
		os.Exit(1)
	}
	kitchenMeter, err := models.CreateElectricityMeter(ctx, &models.NewElectricityMeter{
		BranchId:      branch.ID,
		MeterName:     "Kitchen",
		MeterNumber:   "PLN-002",
		Location:      "Back",
		PowerCapacity: "11000VA",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create meter: %v\n", err)
		os.Exit(1)
	}

	db := config.GetDB()
	gasValue := decimal.NewFromInt(1000)
	waterValue := decimal.NewFromInt(500)
	wbpValue := decimal.NewFromInt(20000)
	lwbpValue := decimal.NewFromInt(48000)

	for day := 0; day < *days; day++ {
		record := models.DailyRecord{
			BranchId:       branch.ID,
			UserId:         user.ID,
			TotalCustomers: 80 + day,
		}
		// Backdate directly so the seeded week is spread over real days
		// (CreateDailyRecord's one-per-day check would reject same-day seeds).
		if err := db.WithContext(ctx).Create(&record).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create daily record: %v\n", err)
			os.Exit(1)
		}
		createdAt := record.CreatedAt.AddDate(0, 0, day - *days)
		if err := db.WithContext(ctx).Model(&record).Update("created_at", createdAt).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to backdate daily record: %v\n", err)
			os.Exit(1)
		}

		gasValue = gasValue.Add(decimal.NewFromFloat(12.5))
		waterValue = waterValue.Add(decimal.NewFromFloat(3.75))
		wbpValue = wbpValue.Add(decimal.NewFromInt(150))
		lwbpValue = lwbpValue.Add(decimal.NewFromInt(420))

		kitchen := "Kitchen"
		tap1 := "Tap1"
		tap2 := "Tap2"
		readings := []*models.NewUtilityReading{
			{
				DailyRecordId: record.ID,
				Category:      models.UtilityCategoryGas,
				Location:      &kitchen,
				MeterValue:    utils.DecimalPtr(gasValue),
				StoveType:     "industrial",
				GasType:       "LPG",
			},
			{
				DailyRecordId: record.ID,
				Category:      models.UtilityCategoryWater,
				Location:      &tap1,
				MeterValue:    utils.DecimalPtr(waterValue),
			},
			{
				DailyRecordId: record.ID,
				Category:      models.UtilityCategoryWater,
				Location:      &tap2,
				MeterValue:    utils.DecimalPtr(waterValue.Mul(decimal.NewFromInt(2))),
			},
		}
		for _, reading := range readings {
			if _, err := models.CreateUtilityReading(ctx, reading); err != nil {
				fmt.Fprintf(os.Stderr, "failed to create utility reading: %v\n", err)
				os.Exit(1)
			}
		}

		for _, meter := range []*models.ElectricityMeter{mainMeter, kitchenMeter} {
			input := &models.NewElectricityReading{
				DailyRecordId:      record.ID,
				ElectricityMeterId: meter.ID,
				MeterValueWbp:      utils.DecimalPtr(wbpValue),
				MeterValueLwbp:     utils.DecimalPtr(lwbpValue),
			}
			if _, err := models.CreateElectricityReading(ctx, input); err != nil {
				fmt.Fprintf(os.Stderr, "failed to create electricity reading: %v\n", err)
				os.Exit(1)
			}
		}
	}

	fmt.Printf("seeded branch=%d user=%d meters=[%d %d] days=%d\n", branch.ID, user.ID, mainMeter.ID, kitchenMeter.ID, *days)
}
