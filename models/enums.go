package models

import (
	"errors"
	"fmt"
	"time"
)

type UtilityCategory string

const (
	UtilityCategoryGas         UtilityCategory = "gas"
	UtilityCategoryWater       UtilityCategory = "water"
	UtilityCategoryElectricity UtilityCategory = "electricity"
)

func (c UtilityCategory) IsValid() bool {
	switch c {
	case UtilityCategoryGas, UtilityCategoryWater, UtilityCategoryElectricity:
		return true
	}
	return false
}

func ParseUtilityCategory(s string) (UtilityCategory, error) {
	category := UtilityCategory(s)
	if !category.IsValid() {
		return "", errors.New("invalid utility category")
	}
	return category, nil
}

type UserRole string

const (
	UserRoleAdmin      UserRole = "A"
	UserRoleOwner      UserRole = "O"
	UserRoleTechnician UserRole = "T"
	UserRoleStaff      UserRole = "C"
)

type MyDateString time.Time

// ParseMyDateString accepts "2006-01-02T15:04:05" or a bare "2006-01-02".
func ParseMyDateString(str string) (MyDateString, error) {
	localTime, err := time.Parse("2006-01-02T15:04:05", str)
	if err != nil {
		localTime, err = time.Parse("2006-01-02", str)
		if err != nil {
			return MyDateString{}, errors.New("error parsing datetime")
		}
	}
	return MyDateString(localTime), nil
}

func (t MyDateString) Time() time.Time {
	return time.Time(t)
}

func (t *MyDateString) StartOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "Asia/Jakarta"
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		fmt.Println("Error loading location:", err)
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		0, 0, 0, 0,
		location,
	)

	utcTime := localTimeInZone.In(time.UTC)
	*t = MyDateString(utcTime)

	return nil
}

func (t *MyDateString) EndOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "Asia/Jakarta"
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		fmt.Println("Error loading location:", err)
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		23, 59, 59, 999,
		location,
	)

	utcTime := localTimeInZone.In(time.UTC)
	*t = MyDateString(utcTime)

	return nil
}
