package workflow

import (
	"sort"
	"strconv"

	"bitbucket.org/mmdatafocus/helpdesk_backend/models"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
	"github.com/shopspring/decimal"
)

// DefaultLocationKey is the bucket for readings that did not specify a
// location. An explicit location string equal to this sentinel shares the
// same lineage; see the collision test before relying on that.
const DefaultLocationKey = "default"

// GasBaseline is the last-seen gas closing. Gas assumes a single line per
// branch, so the baseline also remembers which location produced it: a
// location change starts a new lineage.
type GasBaseline struct {
	Value    *decimal.Decimal
	Location string
}

// ElectricityBaseline carries the last WBP/LWBP closings for one meter
// lineage. A nil side means the register was not recorded last time; that
// "unknown" propagates forward.
type ElectricityBaseline struct {
	Wbp  *decimal.Decimal
	Lwbp *decimal.Decimal
}

// PreviousClosings is the carry-forward state threaded through one branch's
// daily records in chronological order. It is owned by exactly one fold at a
// time; ReconcileDailyRecord mutates it in place.
type PreviousClosings struct {
	Gas         *GasBaseline
	Water       map[string]*decimal.Decimal
	Electricity map[string]*ElectricityBaseline
}

func NewPreviousClosings() *PreviousClosings {
	return &PreviousClosings{
		Water:       map[string]*decimal.Decimal{},
		Electricity: map[string]*ElectricityBaseline{},
	}
}

// DailyUsageResult is one record's reconciled output, per category.
type DailyUsageResult struct {
	Gas         *models.GasUsage
	Water       []models.WaterUsage
	Electricity []models.ElectricityUsage
}

// ReconcileDailyRecord turns one daily record's raw readings into
// opening/closing/usage triples and advances the carry-forward state.
// Records MUST be fed in ascending effective-date order; ordering is the
// caller's responsibility.
func ReconcileDailyRecord(record *models.DailyRecord, state *PreviousClosings) *DailyUsageResult {
	return &DailyUsageResult{
		Gas:         reconcileGas(record, state),
		Water:       reconcileWater(record, state),
		Electricity: reconcileElectricity(record, state),
	}
}

func waterLocationKey(location *string) string {
	if location == nil {
		return DefaultLocationKey
	}
	return *location
}

/* gas */

func reconcileGas(record *models.DailyRecord, state *PreviousClosings) *models.GasUsage {

	var reading *models.UtilityReading
	for i := range record.UtilityReadings {
		if record.UtilityReadings[i].Category == models.UtilityCategoryGas {
			reading = &record.UtilityReadings[i]
			break
		}
	}
	// no gas reading today: baseline stays untouched
	if reading == nil {
		return nil
	}

	location := utils.DereferencePtr(reading.Location, "")
	closing := utils.RoundPtrTo2(reading.MeterValue)

	// A location mismatch means a new gas line, not a fault: open at 0.
	opening := decimal.Zero
	if state.Gas != nil && state.Gas.Location == location && state.Gas.Value != nil {
		opening = *state.Gas.Value
	}

	var usage *decimal.Decimal
	if closing != nil {
		u := utils.RoundTo2(closing.Sub(opening))
		usage = &u
	}

	// The baseline follows the current reading even on a mismatch, so the new
	// location owns the lineage from here on.
	state.Gas = &GasBaseline{Value: closing, Location: location}

	return &models.GasUsage{
		Location: reading.Location,
		SubType:  reading.SubType,
		Opening:  opening,
		Closing:  closing,
		Usage:    usage,
	}
}

/* water */

func reconcileWater(record *models.DailyRecord, state *PreviousClosings) []models.WaterUsage {

	var readings []*models.UtilityReading
	for i := range record.UtilityReadings {
		if record.UtilityReadings[i].Category == models.UtilityCategoryWater {
			readings = append(readings, &record.UtilityReadings[i])
		}
	}
	if len(readings) == 0 {
		return nil
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return waterLocationKey(readings[i].Location) < waterLocationKey(readings[j].Location)
	})

	results := make([]models.WaterUsage, 0, len(readings))
	for _, reading := range readings {
		key := waterLocationKey(reading.Location)

		opening := decimal.Zero
		if prev := state.Water[key]; prev != nil {
			opening = *prev
		}
		closing := utils.RoundPtrTo2(reading.MeterValue)

		var usage *decimal.Decimal
		if closing != nil {
			u := utils.RoundTo2(closing.Sub(opening))
			usage = &u
		}

		state.Water[key] = closing

		results = append(results, models.WaterUsage{
			Location: key,
			Opening:  opening,
			Closing:  closing,
			Usage:    usage,
		})
	}
	return results
}

/* electricity */

// electricitySource is the per-record reading source, resolved once: meter
// rows when the branch has been migrated, legacy single-row fields otherwise.
type electricitySource struct {
	meterReadings  []*models.ElectricityReading
	legacyReadings []*models.UtilityReading
}

func resolveElectricitySource(record *models.DailyRecord) electricitySource {
	if len(record.ElectricityReadings) > 0 {
		readings := make([]*models.ElectricityReading, 0, len(record.ElectricityReadings))
		for i := range record.ElectricityReadings {
			readings = append(readings, &record.ElectricityReadings[i])
		}
		return electricitySource{meterReadings: readings}
	}

	var legacy []*models.UtilityReading
	for i := range record.UtilityReadings {
		if record.UtilityReadings[i].Category == models.UtilityCategoryElectricity {
			legacy = append(legacy, &record.UtilityReadings[i])
		}
	}
	return electricitySource{legacyReadings: legacy}
}

func meterSortKey(reading *models.ElectricityReading) string {
	meter := reading.ElectricityMeter
	if meter == nil {
		return DefaultLocationKey
	}
	if meter.Location != "" {
		return meter.Location
	}
	if meter.MeterName != "" {
		return meter.MeterName
	}
	return DefaultLocationKey
}

func reconcileElectricity(record *models.DailyRecord, state *PreviousClosings) []models.ElectricityUsage {

	source := resolveElectricitySource(record)

	if len(source.meterReadings) > 0 {
		readings := source.meterReadings
		sort.SliceStable(readings, func(i, j int) bool {
			return meterSortKey(readings[i]) < meterSortKey(readings[j])
		})

		results := make([]models.ElectricityUsage, 0, len(readings))
		for _, reading := range readings {
			key := strconv.Itoa(reading.ElectricityMeterId)
			usage := applyElectricityBaseline(state, key,
				utils.RoundPtrTo2(reading.MeterValueWbp),
				utils.RoundPtrTo2(reading.MeterValueLwbp))

			meterId := reading.ElectricityMeterId
			usage.MeterId = &meterId
			if meter := reading.ElectricityMeter; meter != nil {
				usage.MeterName = meter.MeterName
				usage.MeterLocation = meter.Location
			}
			results = append(results, usage)
		}
		return results
	}

	if len(source.legacyReadings) == 0 {
		return nil
	}

	// Legacy single-meter rows: same arithmetic, lineage keyed by location.
	// Historical records cannot be retro-migrated, so this path stays.
	legacy := source.legacyReadings
	sort.SliceStable(legacy, func(i, j int) bool {
		return waterLocationKey(legacy[i].Location) < waterLocationKey(legacy[j].Location)
	})

	results := make([]models.ElectricityUsage, 0, len(legacy))
	for _, reading := range legacy {
		key := waterLocationKey(reading.Location)
		usage := applyElectricityBaseline(state, key,
			utils.RoundPtrTo2(reading.MeterValueWbp),
			utils.RoundPtrTo2(reading.MeterValueLwbp))
		usage.Legacy = true
		usage.MeterLocation = key
		results = append(results, usage)
	}
	return results
}

// applyElectricityBaseline does the shared opening/closing/usage arithmetic
// for one lineage key and advances the baseline.
func applyElectricityBaseline(state *PreviousClosings, key string, wbpClosing, lwbpClosing *decimal.Decimal) models.ElectricityUsage {

	wbpOpening := decimal.Zero
	lwbpOpening := decimal.Zero
	if prev := state.Electricity[key]; prev != nil {
		if prev.Wbp != nil {
			wbpOpening = *prev.Wbp
		}
		if prev.Lwbp != nil {
			lwbpOpening = *prev.Lwbp
		}
	}

	// Usage only when the register was actually read this period. A missing
	// closing must not turn the whole opening into "usage".
	var wbpUsage, lwbpUsage *decimal.Decimal
	if wbpClosing != nil {
		u := utils.RoundTo2(wbpClosing.Sub(wbpOpening))
		wbpUsage = &u
	}
	if lwbpClosing != nil {
		u := utils.RoundTo2(lwbpClosing.Sub(lwbpOpening))
		lwbpUsage = &u
	}

	var totalUsage *decimal.Decimal
	if wbpUsage != nil || lwbpUsage != nil {
		total := decimal.Zero
		if wbpUsage != nil {
			total = total.Add(*wbpUsage)
		}
		if lwbpUsage != nil {
			total = total.Add(*lwbpUsage)
		}
		total = utils.RoundTo2(total)
		totalUsage = &total
	}

	state.Electricity[key] = &ElectricityBaseline{Wbp: wbpClosing, Lwbp: lwbpClosing}

	return models.ElectricityUsage{
		MeterKey:    key,
		WbpOpening:  wbpOpening,
		WbpClosing:  wbpClosing,
		WbpUsage:    wbpUsage,
		LwbpOpening: lwbpOpening,
		LwbpClosing: lwbpClosing,
		LwbpUsage:   lwbpUsage,
		TotalUsage:  totalUsage,
	}
}

/* row assembly */

// AssembleUsageRow combines one record's reconciled results into a report
// row. An empty category filter includes all three sections. Pure
// transformation, no state involved.
func AssembleUsageRow(record *models.DailyRecord, result *DailyUsageResult, categories []models.UtilityCategory) *models.UtilityUsageRow {

	row := &models.UtilityUsageRow{
		DailyRecordId:  record.ID,
		Timestamp:      record.CreatedAt,
		Date:           record.CreatedAt.Format("2006-01-02"),
		TotalCustomers: record.TotalCustomers,
	}
	if record.User != nil {
		row.UserName = record.User.Name
	}
	if record.Branch != nil {
		row.BranchName = record.Branch.Name
	}

	include := func(c models.UtilityCategory) bool {
		if len(categories) == 0 {
			return true
		}
		for _, want := range categories {
			if want == c {
				return true
			}
		}
		return false
	}

	if include(models.UtilityCategoryGas) {
		row.Gas = result.Gas
	}
	if include(models.UtilityCategoryWater) {
		row.Water = result.Water
	}
	if include(models.UtilityCategoryElectricity) {
		row.Electricity = result.Electricity
	}
	return row
}
