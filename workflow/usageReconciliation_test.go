package workflow

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/helpdesk_backend/models"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. The fold and its sub-
// algorithms are pure; records are built in memory exactly as the bulk
// fetch would deliver them (pre-loaded, ascending).

var testDay0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func dayRecord(day int, readings ...models.UtilityReading) *models.DailyRecord {
	return &models.DailyRecord{
		ID:              day + 1,
		CreatedAt:       testDay0.AddDate(0, 0, day),
		UtilityReadings: readings,
	}
}

func gasReading(location *string, value *decimal.Decimal) models.UtilityReading {
	return models.UtilityReading{
		Category:   models.UtilityCategoryGas,
		Location:   location,
		MeterValue: value,
	}
}

func waterReading(location *string, value *decimal.Decimal) models.UtilityReading {
	return models.UtilityReading{
		Category:   models.UtilityCategoryWater,
		Location:   location,
		MeterValue: value,
	}
}

func legacyElectricityReading(location *string, wbp, lwbp *decimal.Decimal) models.UtilityReading {
	return models.UtilityReading{
		Category:       models.UtilityCategoryElectricity,
		Location:       location,
		MeterValueWbp:  wbp,
		MeterValueLwbp: lwbp,
	}
}

func meterReading(meterId int, meter *models.ElectricityMeter, wbp, lwbp *decimal.Decimal) models.ElectricityReading {
	return models.ElectricityReading{
		ElectricityMeterId: meterId,
		ElectricityMeter:   meter,
		MeterValueWbp:      wbp,
		MeterValueLwbp:     lwbp,
	}
}

func requireDecimal(t *testing.T, name string, got *decimal.Decimal, want string) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: got nil, want %s", name, want)
	}
	if !got.Equal(dec(want)) {
		t.Fatalf("%s: got %s, want %s", name, got, want)
	}
}

/* gas */

func TestGasConsecutiveDays(t *testing.T) {
	state := NewPreviousClosings()

	day1 := ReconcileDailyRecord(dayRecord(0, gasReading(strPtr("A"), decPtr("100"))), state)
	day2 := ReconcileDailyRecord(dayRecord(1, gasReading(strPtr("A"), decPtr("150"))), state)

	// first-ever reading opens at zero; usage equals closing
	if !day1.Gas.Opening.Equal(decimal.Zero) {
		t.Fatalf("day1 opening: got %s, want 0", day1.Gas.Opening)
	}
	requireDecimal(t, "day1 usage", day1.Gas.Usage, "100")

	if !day2.Gas.Opening.Equal(dec("100")) {
		t.Fatalf("day2 opening: got %s, want 100", day2.Gas.Opening)
	}
	requireDecimal(t, "day2 closing", day2.Gas.Closing, "150")
	requireDecimal(t, "day2 usage", day2.Gas.Usage, "50")
}

func TestGasLocationChangeResetsLineage(t *testing.T) {
	state := NewPreviousClosings()

	ReconcileDailyRecord(dayRecord(0, gasReading(strPtr("A"), decPtr("100"))), state)
	day2 := ReconcileDailyRecord(dayRecord(1, gasReading(strPtr("B"), decPtr("30"))), state)

	// a changed location is a new line, not a negative-usage anomaly
	if !day2.Gas.Opening.Equal(decimal.Zero) {
		t.Fatalf("day2 opening: got %s, want 0", day2.Gas.Opening)
	}
	requireDecimal(t, "day2 usage", day2.Gas.Usage, "30")

	// and the new location owns the lineage from here
	day3 := ReconcileDailyRecord(dayRecord(2, gasReading(strPtr("B"), decPtr("45"))), state)
	if !day3.Gas.Opening.Equal(dec("30")) {
		t.Fatalf("day3 opening: got %s, want 30", day3.Gas.Opening)
	}
	requireDecimal(t, "day3 usage", day3.Gas.Usage, "15")
}

func TestGasMissingReadingLeavesBaselineUntouched(t *testing.T) {
	state := NewPreviousClosings()

	ReconcileDailyRecord(dayRecord(0, gasReading(strPtr("A"), decPtr("100"))), state)
	skipped := ReconcileDailyRecord(dayRecord(1), state)
	if skipped.Gas != nil {
		t.Fatalf("expected nil gas result on a day without a gas reading")
	}

	day3 := ReconcileDailyRecord(dayRecord(2, gasReading(strPtr("A"), decPtr("130"))), state)
	if !day3.Gas.Opening.Equal(dec("100")) {
		t.Fatalf("day3 opening: got %s, want 100", day3.Gas.Opening)
	}
	requireDecimal(t, "day3 usage", day3.Gas.Usage, "30")
}

func TestGasEmptyLocationIsValidMatchKey(t *testing.T) {
	state := NewPreviousClosings()

	ReconcileDailyRecord(dayRecord(0, gasReading(nil, decPtr("100"))), state)
	day2 := ReconcileDailyRecord(dayRecord(1, gasReading(nil, decPtr("140"))), state)

	if !day2.Gas.Opening.Equal(dec("100")) {
		t.Fatalf("day2 opening: got %s, want 100", day2.Gas.Opening)
	}
	requireDecimal(t, "day2 usage", day2.Gas.Usage, "40")
}

/* water */

func TestWaterLocationsAreIndependent(t *testing.T) {
	state := NewPreviousClosings()

	ReconcileDailyRecord(dayRecord(0,
		waterReading(strPtr("Tap1"), decPtr("10")),
		waterReading(strPtr("Tap2"), decPtr("50")),
	), state)
	day2 := ReconcileDailyRecord(dayRecord(1,
		waterReading(strPtr("Tap1"), decPtr("25")),
		waterReading(strPtr("Tap2"), decPtr("55")),
	), state)

	if len(day2.Water) != 2 {
		t.Fatalf("expected 2 water results, got %d", len(day2.Water))
	}
	// sorted by location: Tap1 first
	if day2.Water[0].Location != "Tap1" || day2.Water[1].Location != "Tap2" {
		t.Fatalf("unexpected water ordering: %s, %s", day2.Water[0].Location, day2.Water[1].Location)
	}
	requireDecimal(t, "Tap1 usage", day2.Water[0].Usage, "15")
	requireDecimal(t, "Tap2 usage", day2.Water[1].Usage, "5")
}

func TestWaterLocationChangeDoesNotReset(t *testing.T) {
	state := NewPreviousClosings()

	ReconcileDailyRecord(dayRecord(0, waterReading(strPtr("Tap1"), decPtr("10"))), state)
	// a reading at a brand-new location starts its own lineage at 0, and
	// Tap1's baseline survives untouched
	day2 := ReconcileDailyRecord(dayRecord(1, waterReading(strPtr("Tap9"), decPtr("7"))), state)
	requireDecimal(t, "Tap9 usage", day2.Water[0].Usage, "7")

	day3 := ReconcileDailyRecord(dayRecord(2, waterReading(strPtr("Tap1"), decPtr("16"))), state)
	if !day3.Water[0].Opening.Equal(dec("10")) {
		t.Fatalf("Tap1 opening: got %s, want 10", day3.Water[0].Opening)
	}
	requireDecimal(t, "Tap1 usage", day3.Water[0].Usage, "6")
}

// Pins the sentinel-collision behavior: a reading with no location and a
// reading whose explicit location is the literal default key share one
// lineage. Change DefaultLocationKey handling only with a migration plan.
func TestWaterNullLocationSharesDefaultBucket(t *testing.T) {
	state := NewPreviousClosings()

	ReconcileDailyRecord(dayRecord(0, waterReading(nil, decPtr("40"))), state)
	day2 := ReconcileDailyRecord(dayRecord(1, waterReading(strPtr(DefaultLocationKey), decPtr("55"))), state)

	if !day2.Water[0].Opening.Equal(dec("40")) {
		t.Fatalf("default bucket opening: got %s, want 40", day2.Water[0].Opening)
	}
	requireDecimal(t, "default bucket usage", day2.Water[0].Usage, "15")
}

/* electricity */

func TestElectricityMultiMeterWbpLwbp(t *testing.T) {
	state := NewPreviousClosings()
	meter := &models.ElectricityMeter{ID: 7, MeterName: "Main", Location: "Front"}

	record1 := dayRecord(0)
	record1.ElectricityReadings = []models.ElectricityReading{
		meterReading(7, meter, decPtr("500"), nil),
	}
	day1 := ReconcileDailyRecord(record1, state)

	requireDecimal(t, "day1 wbp usage", day1.Electricity[0].WbpUsage, "500")
	if day1.Electricity[0].LwbpUsage != nil {
		t.Fatalf("day1 lwbp usage: got %s, want nil", day1.Electricity[0].LwbpUsage)
	}
	requireDecimal(t, "day1 total usage", day1.Electricity[0].TotalUsage, "500")

	record2 := dayRecord(1)
	record2.ElectricityReadings = []models.ElectricityReading{
		meterReading(7, meter, decPtr("620"), decPtr("200")),
	}
	day2 := ReconcileDailyRecord(record2, state)

	requireDecimal(t, "day2 wbp usage", day2.Electricity[0].WbpUsage, "120")
	requireDecimal(t, "day2 lwbp usage", day2.Electricity[0].LwbpUsage, "200")
	requireDecimal(t, "day2 total usage", day2.Electricity[0].TotalUsage, "320")
}

func TestElectricityTotalUsageNullWhenNothingRead(t *testing.T) {
	state := NewPreviousClosings()
	meter := &models.ElectricityMeter{ID: 3, MeterName: "Main"}

	record := dayRecord(0)
	record.ElectricityReadings = []models.ElectricityReading{
		meterReading(3, meter, nil, nil),
	}
	result := ReconcileDailyRecord(record, state)

	elec := result.Electricity[0]
	if elec.WbpUsage != nil || elec.LwbpUsage != nil || elec.TotalUsage != nil {
		t.Fatalf("expected all usages nil when neither register was read")
	}
}

func TestElectricityNullClosingPropagatesAsUnknown(t *testing.T) {
	state := NewPreviousClosings()
	meter := &models.ElectricityMeter{ID: 4, MeterName: "Main"}

	addDay := func(day int, wbp, lwbp *decimal.Decimal) *DailyUsageResult {
		record := dayRecord(day)
		record.ElectricityReadings = []models.ElectricityReading{
			meterReading(4, meter, wbp, lwbp),
		}
		return ReconcileDailyRecord(record, state)
	}

	addDay(0, decPtr("500"), decPtr("200"))
	day2 := addDay(1, nil, decPtr("300"))

	// wbp not read: no usage, and the baseline forgets the old closing
	if day2.Electricity[0].WbpUsage != nil {
		t.Fatalf("day2 wbp usage: got %s, want nil", day2.Electricity[0].WbpUsage)
	}
	requireDecimal(t, "day2 lwbp usage", day2.Electricity[0].LwbpUsage, "100")

	day3 := addDay(2, decPtr("650"), decPtr("330"))
	if !day3.Electricity[0].WbpOpening.Equal(decimal.Zero) {
		t.Fatalf("day3 wbp opening: got %s, want 0 (unknown baseline)", day3.Electricity[0].WbpOpening)
	}
	requireDecimal(t, "day3 wbp usage", day3.Electricity[0].WbpUsage, "650")
	requireDecimal(t, "day3 lwbp usage", day3.Electricity[0].LwbpUsage, "30")
}

func TestElectricityLegacyFallback(t *testing.T) {
	state := NewPreviousClosings()

	day1 := ReconcileDailyRecord(dayRecord(0,
		legacyElectricityReading(strPtr("Office"), decPtr("1000"), decPtr("4000")),
	), state)
	day2 := ReconcileDailyRecord(dayRecord(1,
		legacyElectricityReading(strPtr("Office"), decPtr("1150"), decPtr("4400")),
	), state)

	if !day1.Electricity[0].Legacy || day1.Electricity[0].MeterKey != "Office" {
		t.Fatalf("expected legacy result keyed by location, got %+v", day1.Electricity[0])
	}
	requireDecimal(t, "day2 wbp usage", day2.Electricity[0].WbpUsage, "150")
	requireDecimal(t, "day2 lwbp usage", day2.Electricity[0].LwbpUsage, "400")
	requireDecimal(t, "day2 total usage", day2.Electricity[0].TotalUsage, "550")
}

func TestElectricityMeterRowsTakePriorityOverLegacy(t *testing.T) {
	state := NewPreviousClosings()
	meter := &models.ElectricityMeter{ID: 9, MeterName: "Main"}

	record := dayRecord(0,
		legacyElectricityReading(strPtr("Office"), decPtr("1000"), nil),
	)
	record.ElectricityReadings = []models.ElectricityReading{
		meterReading(9, meter, decPtr("500"), nil),
	}
	result := ReconcileDailyRecord(record, state)

	if len(result.Electricity) != 1 {
		t.Fatalf("expected 1 electricity result, got %d", len(result.Electricity))
	}
	if result.Electricity[0].Legacy {
		t.Fatalf("expected the meter path to win when both representations exist")
	}
	if result.Electricity[0].MeterKey != "9" {
		t.Fatalf("meter key: got %q, want \"9\"", result.Electricity[0].MeterKey)
	}
}

func TestElectricityMetersOrderedByLocationThenName(t *testing.T) {
	state := NewPreviousClosings()
	front := &models.ElectricityMeter{ID: 1, MeterName: "Zed", Location: "Front"}
	back := &models.ElectricityMeter{ID: 2, MeterName: "Alpha", Location: "Back"}
	unnamed := &models.ElectricityMeter{ID: 3}

	record := dayRecord(0)
	record.ElectricityReadings = []models.ElectricityReading{
		meterReading(1, front, decPtr("10"), nil),
		meterReading(2, back, decPtr("20"), nil),
		meterReading(3, unnamed, decPtr("30"), nil),
	}
	result := ReconcileDailyRecord(record, state)

	// "Back" < "Front" < "default"
	wantKeys := []string{"2", "1", "3"}
	for i, want := range wantKeys {
		if result.Electricity[i].MeterKey != want {
			t.Fatalf("position %d: got meter key %q, want %q", i, result.Electricity[i].MeterKey, want)
		}
	}
}

/* fold-wide properties */

func TestClosingPassthroughOverSequence(t *testing.T) {
	state := NewPreviousClosings()

	values := []string{"100", "112.5", "140.25", "140.25", "171"}
	var last *DailyUsageResult
	for day, v := range values {
		last = ReconcileDailyRecord(dayRecord(day,
			gasReading(strPtr("A"), decPtr(v)),
			waterReading(strPtr("Tap1"), decPtr(v)),
		), state)
	}

	// usage computation must never alter the stored closing
	requireDecimal(t, "final gas closing", last.Gas.Closing, "171")
	requireDecimal(t, "final water closing", last.Water[0].Closing, "171")
	if state.Gas.Value == nil || !state.Gas.Value.Equal(dec("171")) {
		t.Fatalf("gas baseline after fold: got %v, want 171", state.Gas.Value)
	}
}

func TestNullMeterValueIsNotMeasuredNotZero(t *testing.T) {
	state := NewPreviousClosings()

	ReconcileDailyRecord(dayRecord(0, waterReading(strPtr("Tap1"), decPtr("10"))), state)
	day2 := ReconcileDailyRecord(dayRecord(1, waterReading(strPtr("Tap1"), nil)), state)

	if day2.Water[0].Closing != nil || day2.Water[0].Usage != nil {
		t.Fatalf("expected nil closing and usage for an unmeasured reading")
	}
	if !day2.Water[0].Opening.Equal(dec("10")) {
		t.Fatalf("opening: got %s, want 10", day2.Water[0].Opening)
	}
}

/* row assembly */

func TestAssembleUsageRowCategoryFilter(t *testing.T) {
	state := NewPreviousClosings()
	record := dayRecord(0,
		gasReading(strPtr("A"), decPtr("100")),
		waterReading(strPtr("Tap1"), decPtr("10")),
	)
	record.User = &models.User{Name: "Siti"}
	record.Branch = &models.Branch{Name: "Bandung"}
	record.TotalCustomers = 42
	result := ReconcileDailyRecord(record, state)

	full := AssembleUsageRow(record, result, nil)
	if full.Gas == nil || len(full.Water) != 1 {
		t.Fatalf("unfiltered row should carry every section")
	}
	if full.UserName != "Siti" || full.BranchName != "Bandung" || full.TotalCustomers != 42 {
		t.Fatalf("row identification fields not populated: %+v", full)
	}
	if full.Date != testDay0.Format("2006-01-02") {
		t.Fatalf("date: got %s", full.Date)
	}

	waterOnly := AssembleUsageRow(record, result, []models.UtilityCategory{models.UtilityCategoryWater})
	if waterOnly.Gas != nil || len(waterOnly.Water) != 1 || waterOnly.Electricity != nil {
		t.Fatalf("filtered row should carry only the water section")
	}
}
