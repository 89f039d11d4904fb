package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/helpdesk_backend/config"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
)

// DailyRecord is one branch's end-of-day entry. Its CreatedAt doubles as the
// record's effective date; utility readings hang off it.
type DailyRecord struct {
	ID             int     `gorm:"primary_key" json:"id"`
	BranchId       int     `gorm:"index:idx_dr_branch_date,priority:1;not null" json:"branch_id"`
	Branch         *Branch `gorm:"foreignKey:BranchId" json:"branch"`
	UserId         int     `gorm:"index" json:"user_id"`
	User           *User   `gorm:"foreignKey:UserId" json:"user"`
	TotalCustomers int     `gorm:"default:0" json:"total_customers"`

	UtilityReadings     []UtilityReading     `gorm:"foreignKey:DailyRecordId" json:"utility_readings"`
	ElectricityReadings []ElectricityReading `gorm:"foreignKey:DailyRecordId" json:"electricity_readings"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_dr_branch_date,priority:2" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDailyRecord struct {
	BranchId       int `json:"branch_id" binding:"required"`
	UserId         int `json:"user_id" binding:"required"`
	TotalCustomers int `json:"total_customers"`
}

func (input *NewDailyRecord) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Branch](ctx, input.BranchId); err != nil {
		return errors.New("branch not found")
	}
	if err := utils.ValidateResourceId[User](ctx, input.UserId); err != nil {
		return errors.New("user not found")
	}

	// At most one record per branch per calendar day (branch-local).
	timezone := BranchTimezone(ctx, input.BranchId)
	today := MyDateString(time.Now().UTC())
	startOfDay := today
	endOfDay := today
	if err := startOfDay.StartOfDayUTCTime(timezone); err != nil {
		return err
	}
	if err := endOfDay.EndOfDayUTCTime(timezone); err != nil {
		return err
	}
	count, err := utils.ResourceCountWhere[DailyRecord](ctx,
		"branch_id = ? AND created_at BETWEEN ? AND ?",
		input.BranchId, startOfDay.Time(), endOfDay.Time())
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("daily record already exists for this branch today")
	}
	return nil
}

func CreateDailyRecord(ctx context.Context, input *NewDailyRecord) (*DailyRecord, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	record := DailyRecord{
		BranchId:       input.BranchId,
		UserId:         input.UserId,
		TotalCustomers: input.TotalCustomers,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// UpdateDailyRecordCustomers is the only mutation allowed after creation.
func UpdateDailyRecordCustomers(ctx context.Context, id int, totalCustomers int) (*DailyRecord, error) {

	record, err := utils.FetchSingleModel[DailyRecord](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(record).Update("total_customers", totalCustomers).Error
	if err != nil {
		return nil, err
	}
	record.TotalCustomers = totalCustomers

	return record, nil
}

// ListDailyRecords returns one branch's records inside [fromDate, toDate],
// ascending by effective date, with everything the reconciliation fold needs
// preloaded up front.
func ListDailyRecords(ctx context.Context, branchId int, fromDate time.Time, toDate time.Time, userId *int) ([]*DailyRecord, error) {

	db := config.GetDB()
	query := db.WithContext(ctx).
		Where("branch_id = ?", branchId).
		Where("created_at BETWEEN ? AND ?", fromDate, toDate).
		Preload("User").
		Preload("Branch").
		Preload("UtilityReadings").
		Preload("ElectricityReadings").
		Preload("ElectricityReadings.ElectricityMeter").
		Order("created_at ASC")
	if userId != nil && *userId > 0 {
		query = query.Where("user_id = ?", *userId)
	}

	var records []*DailyRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
