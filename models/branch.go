package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/helpdesk_backend/config"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
)

type Branch struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	City      string    `gorm:"size:100" json:"city"`
	Timezone  string    `gorm:"size:64" json:"timezone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBranch struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewBranch) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Branch](ctx, id); err != nil {
			return err
		}
	}
	// name
	if err := utils.ValidateUnique[Branch](ctx, "name", input.Name, id); err != nil {
		return err
	}
	// phone
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidateUnique[Branch](ctx, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateBranch(ctx context.Context, input *NewBranch) (*Branch, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	branch := Branch{
		Name:     input.Name,
		Phone:    input.Phone,
		Address:  input.Address,
		City:     input.City,
		Timezone: input.Timezone,
		IsActive: utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&branch).Error
	if err != nil {
		return nil, err
	}

	return &branch, nil
}

func UpdateBranch(ctx context.Context, id int, input *NewBranch) (*Branch, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	branch, err := utils.FetchSingleModel[Branch](ctx, id)
	if err != nil {
		return nil, err
	}

	branch.Name = input.Name
	branch.Phone = input.Phone
	branch.Address = input.Address
	branch.City = input.City
	branch.Timezone = input.Timezone

	db := config.GetDB()
	err = db.WithContext(ctx).Save(branch).Error
	if err != nil {
		return nil, err
	}

	return branch, nil
}

func GetBranch(ctx context.Context, id int) (*Branch, error) {
	return utils.FetchSingleModel[Branch](ctx, id)
}

// BranchTimezone returns the branch's timezone, or "" when the branch cannot
// be loaded (callers fall back to the default zone).
func BranchTimezone(ctx context.Context, id int) string {
	branch, err := GetBranch(ctx, id)
	if err != nil {
		return ""
	}
	return branch.Timezone
}
