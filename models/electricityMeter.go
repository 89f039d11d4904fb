package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/helpdesk_backend/config"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
)

// ElectricityMeter is a named physical meter belonging to a branch. Branches
// migrated to per-meter tracking record one ElectricityReading per meter per
// day instead of a single legacy UtilityReading row.
type ElectricityMeter struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BranchId      int       `gorm:"index;not null" json:"branch_id"`
	Branch        *Branch   `gorm:"foreignKey:BranchId" json:"branch"`
	MeterName     string    `gorm:"size:100;not null" json:"meter_name"`
	MeterNumber   string    `gorm:"size:100" json:"meter_number"`
	Location      string    `gorm:"size:100" json:"location"`
	PowerCapacity string    `gorm:"size:50" json:"power_capacity"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewElectricityMeter struct {
	BranchId      int    `json:"branch_id" binding:"required"`
	MeterName     string `json:"meter_name" binding:"required"`
	MeterNumber   string `json:"meter_number"`
	Location      string `json:"location"`
	PowerCapacity string `json:"power_capacity"`
}

func (input *NewElectricityMeter) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[ElectricityMeter](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateResourceId[Branch](ctx, input.BranchId); err != nil {
		return errors.New("branch not found")
	}
	return nil
}

func CreateElectricityMeter(ctx context.Context, input *NewElectricityMeter) (*ElectricityMeter, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	meter := ElectricityMeter{
		BranchId:      input.BranchId,
		MeterName:     input.MeterName,
		MeterNumber:   input.MeterNumber,
		Location:      input.Location,
		PowerCapacity: input.PowerCapacity,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&meter).Error
	if err != nil {
		return nil, err
	}

	return &meter, nil
}

func UpdateElectricityMeter(ctx context.Context, id int, input *NewElectricityMeter) (*ElectricityMeter, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	meter, err := utils.FetchSingleModel[ElectricityMeter](ctx, id)
	if err != nil {
		return nil, err
	}

	meter.MeterName = input.MeterName
	meter.MeterNumber = input.MeterNumber
	meter.Location = input.Location
	meter.PowerCapacity = input.PowerCapacity

	db := config.GetDB()
	err = db.WithContext(ctx).Save(meter).Error
	if err != nil {
		return nil, err
	}

	return meter, nil
}

func DeactivateElectricityMeter(ctx context.Context, id int) error {

	meter, err := utils.FetchSingleModel[ElectricityMeter](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	return db.WithContext(ctx).Model(meter).Update("is_active", false).Error
}

func ListElectricityMeters(ctx context.Context, branchId int) ([]*ElectricityMeter, error) {
	return utils.FetchAllModels[ElectricityMeter](ctx, branchId)
}
