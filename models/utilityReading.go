package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/helpdesk_backend/config"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
	"github.com/shopspring/decimal"
)

// UtilityReading is the general per-day reading row. Gas and water always use
// it; electricity uses it only on branches that have not been migrated to the
// electricity_meters table (the legacy single-meter path).
type UtilityReading struct {
	ID            int             `gorm:"primary_key" json:"id"`
	DailyRecordId int             `gorm:"index;not null" json:"daily_record_id"`
	DailyRecord   *DailyRecord    `gorm:"foreignKey:DailyRecordId" json:"daily_record"`
	Category      UtilityCategory `gorm:"type:enum('gas','water','electricity');index;not null" json:"category"`
	SubType       string          `gorm:"size:100" json:"sub_type"`

	// Location distinguishes physical points sharing a category (several water
	// taps). Null means the reading did not specify one.
	Location   *string          `gorm:"size:100" json:"location"`
	MeterValue *decimal.Decimal `gorm:"type:decimal(12,2)" json:"meter_value"`

	// gas only
	StoveType string `gorm:"size:100" json:"stove_type"`
	GasType   string `gorm:"size:100" json:"gas_type"`

	// electricity only (legacy path)
	MeterValueWbp  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"meter_value_wbp"`
	MeterValueLwbp *decimal.Decimal `gorm:"type:decimal(12,2)" json:"meter_value_lwbp"`

	PhotoPath string    `json:"photo_path"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUtilityReading struct {
	DailyRecordId  int              `json:"daily_record_id" binding:"required"`
	Category       UtilityCategory  `json:"category" binding:"required"`
	SubType        string           `json:"sub_type"`
	Location       *string          `json:"location"`
	MeterValue     *decimal.Decimal `json:"meter_value"`
	StoveType      string           `json:"stove_type"`
	GasType        string           `json:"gas_type"`
	MeterValueWbp  *decimal.Decimal `json:"meter_value_wbp"`
	MeterValueLwbp *decimal.Decimal `json:"meter_value_lwbp"`
	PhotoPath      string           `json:"photo_path"`
}

func (input *NewUtilityReading) validate(ctx context.Context) error {
	if !input.Category.IsValid() {
		return errors.New("invalid utility category")
	}
	if err := utils.ValidateResourceId[DailyRecord](ctx, input.DailyRecordId); err != nil {
		return errors.New("daily record not found")
	}
	return nil
}

func CreateUtilityReading(ctx context.Context, input *NewUtilityReading) (*UtilityReading, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	reading := UtilityReading{
		DailyRecordId:  input.DailyRecordId,
		Category:       input.Category,
		SubType:        input.SubType,
		Location:       input.Location,
		MeterValue:     input.MeterValue,
		StoveType:      input.StoveType,
		GasType:        input.GasType,
		MeterValueWbp:  input.MeterValueWbp,
		MeterValueLwbp: input.MeterValueLwbp,
		PhotoPath:      input.PhotoPath,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&reading).Error
	if err != nil {
		return nil, err
	}

	return &reading, nil
}
