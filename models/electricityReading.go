package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/helpdesk_backend/config"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
	"github.com/shopspring/decimal"
)

// ElectricityReading is one meter's reading for one daily record. WBP and
// LWBP are the peak / off-peak tariff registers; either may be absent.
type ElectricityReading struct {
	ID                 int               `gorm:"primary_key" json:"id"`
	DailyRecordId      int               `gorm:"not null;uniqueIndex:idx_er_record_meter,priority:1" json:"daily_record_id"`
	DailyRecord        *DailyRecord      `gorm:"foreignKey:DailyRecordId" json:"daily_record"`
	ElectricityMeterId int               `gorm:"not null;uniqueIndex:idx_er_record_meter,priority:2" json:"electricity_meter_id"`
	ElectricityMeter   *ElectricityMeter `gorm:"foreignKey:ElectricityMeterId" json:"electricity_meter"`

	MeterValueWbp  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"meter_value_wbp"`
	MeterValueLwbp *decimal.Decimal `gorm:"type:decimal(12,2)" json:"meter_value_lwbp"`

	PhotoWbpPath  string    `json:"photo_wbp_path"`
	PhotoLwbpPath string    `json:"photo_lwbp_path"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewElectricityReading struct {
	DailyRecordId      int              `json:"daily_record_id" binding:"required"`
	ElectricityMeterId int              `json:"electricity_meter_id" binding:"required"`
	MeterValueWbp      *decimal.Decimal `json:"meter_value_wbp"`
	MeterValueLwbp     *decimal.Decimal `json:"meter_value_lwbp"`
	PhotoWbpPath       string           `json:"photo_wbp_path"`
	PhotoLwbpPath      string           `json:"photo_lwbp_path"`
}

func (input *NewElectricityReading) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[DailyRecord](ctx, input.DailyRecordId); err != nil {
		return errors.New("daily record not found")
	}
	if err := utils.ValidateResourceId[ElectricityMeter](ctx, input.ElectricityMeterId); err != nil {
		return errors.New("electricity meter not found")
	}

	count, err := utils.ResourceCountWhere[ElectricityReading](ctx,
		"daily_record_id = ? AND electricity_meter_id = ?",
		input.DailyRecordId, input.ElectricityMeterId)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("reading already exists for this meter and daily record")
	}
	return nil
}

func CreateElectricityReading(ctx context.Context, input *NewElectricityReading) (*ElectricityReading, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	reading := ElectricityReading{
		DailyRecordId:      input.DailyRecordId,
		ElectricityMeterId: input.ElectricityMeterId,
		MeterValueWbp:      input.MeterValueWbp,
		MeterValueLwbp:     input.MeterValueLwbp,
		PhotoWbpPath:       input.PhotoWbpPath,
		PhotoLwbpPath:      input.PhotoLwbpPath,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&reading).Error
	if err != nil {
		return nil, err
	}

	return &reading, nil
}
