package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report row types for the utility usage report. Nil decimals mean "not
// measured this period"; openings always carry a concrete value (0 when no
// prior baseline exists).

type GasUsage struct {
	Location *string          `json:"location"`
	SubType  string           `json:"sub_type"`
	Opening  decimal.Decimal  `json:"opening"`
	Closing  *decimal.Decimal `json:"closing"`
	Usage    *decimal.Decimal `json:"usage"`
}

type WaterUsage struct {
	Location string           `json:"location"`
	Opening  decimal.Decimal  `json:"opening"`
	Closing  *decimal.Decimal `json:"closing"`
	Usage    *decimal.Decimal `json:"usage"`
}

type ElectricityUsage struct {
	// MeterKey identifies the lineage: the meter id for per-meter readings,
	// the reading's location string on the legacy path.
	MeterKey      string `json:"meter_key"`
	MeterId       *int   `json:"meter_id"`
	MeterName     string `json:"meter_name"`
	MeterLocation string `json:"meter_location"`
	Legacy        bool   `json:"legacy"`

	WbpOpening  decimal.Decimal  `json:"wbp_opening"`
	WbpClosing  *decimal.Decimal `json:"wbp_closing"`
	WbpUsage    *decimal.Decimal `json:"wbp_usage"`
	LwbpOpening decimal.Decimal  `json:"lwbp_opening"`
	LwbpClosing *decimal.Decimal `json:"lwbp_closing"`
	LwbpUsage   *decimal.Decimal `json:"lwbp_usage"`
	TotalUsage  *decimal.Decimal `json:"total_usage"`
}

type UtilityUsageRow struct {
	DailyRecordId  int       `json:"daily_record_id"`
	Timestamp      time.Time `json:"timestamp"`
	Date           string    `json:"date"`
	UserName       string    `json:"user_name"`
	BranchName     string    `json:"branch_name"`
	TotalCustomers int       `json:"total_customers"`

	Gas         *GasUsage          `json:"gas,omitempty"`
	Water       []WaterUsage       `json:"water,omitempty"`
	Electricity []ElectricityUsage `json:"electricity,omitempty"`
}
