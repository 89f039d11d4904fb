package workflow

import (
	"context"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/helpdesk_backend/models"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// utilityReadingRow is a UtilityReading joined with its daily record's
// effective date.
type utilityReadingRow struct {
	models.UtilityReading `gorm:"embedded"`
	RecordDate            time.Time
}

type electricityReadingRow struct {
	models.ElectricityReading `gorm:"embedded"`
	RecordDate                time.Time
}

// ResolvePreviousClosings seeds the carry-forward baseline from the most
// recent readings strictly before startDate, per category and sub-key, so
// the first in-range record opens against real history instead of zero.
//
// Missing branch or start date is a deliberate no-op: the report simply has
// no history, which is not an error.
func ResolvePreviousClosings(ctx context.Context, tx *gorm.DB, branchId int, startDate time.Time, userId *int) (*PreviousClosings, error) {

	state := NewPreviousClosings()
	if branchId <= 0 || startDate.IsZero() {
		return state, nil
	}

	priorReadings := func(category models.UtilityCategory) *gorm.DB {
		query := tx.WithContext(ctx).Model(&models.UtilityReading{}).
			Select("utility_readings.*, daily_records.created_at AS record_date").
			Joins("JOIN daily_records ON daily_records.id = utility_readings.daily_record_id").
			Where("daily_records.branch_id = ?", branchId).
			Where("daily_records.created_at < ?", startDate).
			Where("utility_readings.category = ?", category)
		if userId != nil && *userId > 0 {
			query = query.Where("daily_records.user_id = ?", *userId)
		}
		return query
	}

	// gas: single line per branch, newest reading wins outright
	var gasRows []utilityReadingRow
	err := priorReadings(models.UtilityCategoryGas).
		Order("daily_records.created_at DESC, utility_readings.id DESC").
		Limit(1).
		Scan(&gasRows).Error
	if err != nil {
		return nil, err
	}
	if len(gasRows) > 0 && gasRows[0].MeterValue != nil {
		state.Gas = &GasBaseline{
			Value:    utils.RoundPtrTo2(gasRows[0].MeterValue),
			Location: utils.DereferencePtr(gasRows[0].Location, ""),
		}
	}

	// water: each location has its own independent lookback window
	var waterRows []utilityReadingRow
	err = priorReadings(models.UtilityCategoryWater).Scan(&waterRows).Error
	if err != nil {
		return nil, err
	}
	for key, row := range latestWaterPerLocation(waterRows) {
		if row.MeterValue != nil {
			state.Water[key] = utils.RoundPtrTo2(row.MeterValue)
		}
	}

	// electricity: per physical meter (legacy rows have no lookback here;
	// their first in-range reading opens at 0)
	electricityQuery := tx.WithContext(ctx).Model(&models.ElectricityReading{}).
		Select("electricity_readings.*, daily_records.created_at AS record_date").
		Joins("JOIN daily_records ON daily_records.id = electricity_readings.daily_record_id").
		Where("daily_records.branch_id = ?", branchId).
		Where("daily_records.created_at < ?", startDate)
	if userId != nil && *userId > 0 {
		electricityQuery = electricityQuery.Where("daily_records.user_id = ?", *userId)
	}
	var electricityRows []electricityReadingRow
	err = electricityQuery.Scan(&electricityRows).Error
	if err != nil {
		return nil, err
	}
	for meterId, row := range latestElectricityPerMeter(electricityRows) {
		wbp := decimal.Zero
		if row.MeterValueWbp != nil {
			wbp = utils.RoundTo2(*row.MeterValueWbp)
		}
		lwbp := decimal.Zero
		if row.MeterValueLwbp != nil {
			lwbp = utils.RoundTo2(*row.MeterValueLwbp)
		}
		state.Electricity[strconv.Itoa(meterId)] = &ElectricityBaseline{
			Wbp:  &wbp,
			Lwbp: &lwbp,
		}
	}

	return state, nil
}

// utilityEffectiveDate is the best-available timestamp for ordering a
// reading's owning day: joined record date, then the loaded relation, then
// the reading's own timestamp.
func utilityEffectiveDate(row utilityReadingRow) time.Time {
	if !row.RecordDate.IsZero() {
		return row.RecordDate
	}
	if row.DailyRecord != nil && !row.DailyRecord.CreatedAt.IsZero() {
		return row.DailyRecord.CreatedAt
	}
	return row.CreatedAt
}

func electricityEffectiveDate(row electricityReadingRow) time.Time {
	if !row.RecordDate.IsZero() {
		return row.RecordDate
	}
	if row.DailyRecord != nil && !row.DailyRecord.CreatedAt.IsZero() {
		return row.DailyRecord.CreatedAt
	}
	return row.CreatedAt
}

func latestWaterPerLocation(rows []utilityReadingRow) map[string]utilityReadingRow {
	latest := map[string]utilityReadingRow{}
	for _, row := range rows {
		key := waterLocationKey(row.Location)
		current, ok := latest[key]
		if !ok {
			latest[key] = row
			continue
		}
		rowDate := utilityEffectiveDate(row)
		currentDate := utilityEffectiveDate(current)
		if rowDate.After(currentDate) || (rowDate.Equal(currentDate) && row.ID > current.ID) {
			latest[key] = row
		}
	}
	return latest
}

func latestElectricityPerMeter(rows []electricityReadingRow) map[int]electricityReadingRow {
	latest := map[int]electricityReadingRow{}
	for _, row := range rows {
		current, ok := latest[row.ElectricityMeterId]
		if !ok {
			latest[row.ElectricityMeterId] = row
			continue
		}
		rowDate := electricityEffectiveDate(row)
		currentDate := electricityEffectiveDate(current)
		if rowDate.After(currentDate) || (rowDate.Equal(currentDate) && row.ID > current.ID) {
			latest[row.ElectricityMeterId] = row
		}
	}
	return latest
}
