package reports

import (
	"fmt"

	"bitbucket.org/mmdatafocus/helpdesk_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const usageSheet = "Usage"

// ExportUtilityUsageExcel renders computed report rows into a workbook, one
// spreadsheet line per (day, category, sub-key). Formatting only: all
// numbers arrive already reconciled.
func ExportUtilityUsageExcel(rows []*models.UtilityUsageRow, branchName string) (*excelize.File, error) {

	f := excelize.NewFile()
	index, err := f.NewSheet(usageSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Date", "Recorded By", "Branch", "Customers",
		"Category", "Location / Meter",
		"Opening", "Closing", "Usage",
		"WBP Opening", "WBP Closing", "WBP Usage",
		"LWBP Opening", "LWBP Closing", "LWBP Usage",
		"Total Usage",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(usageSheet, cell, h)
	}

	line := 2
	writeLine := func(row *models.UtilityUsageRow, values map[int]string) error {
		base := map[int]string{
			1: row.Date,
			2: row.UserName,
			3: branchName,
			4: fmt.Sprint(row.TotalCustomers),
		}
		for col, v := range values {
			base[col] = v
		}
		for col, v := range base {
			cell, err := excelize.CoordinatesToCellName(col, line)
			if err != nil {
				return err
			}
			f.SetCellValue(usageSheet, cell, v)
		}
		line++
		return nil
	}

	for _, row := range rows {
		if row.Gas != nil {
			err := writeLine(row, map[int]string{
				5: string(models.UtilityCategoryGas),
				6: derefString(row.Gas.Location),
				7: row.Gas.Opening.StringFixed(2),
				8: decimalString(row.Gas.Closing),
				9: decimalString(row.Gas.Usage),
			})
			if err != nil {
				return nil, err
			}
		}
		for _, water := range row.Water {
			err := writeLine(row, map[int]string{
				5: string(models.UtilityCategoryWater),
				6: water.Location,
				7: water.Opening.StringFixed(2),
				8: decimalString(water.Closing),
				9: decimalString(water.Usage),
			})
			if err != nil {
				return nil, err
			}
		}
		for _, elec := range row.Electricity {
			label := elec.MeterName
			if label == "" {
				label = elec.MeterLocation
			}
			err := writeLine(row, map[int]string{
				5:  string(models.UtilityCategoryElectricity),
				6:  label,
				10: elec.WbpOpening.StringFixed(2),
				11: decimalString(elec.WbpClosing),
				12: decimalString(elec.WbpUsage),
				13: elec.LwbpOpening.StringFixed(2),
				14: decimalString(elec.LwbpClosing),
				15: decimalString(elec.LwbpUsage),
				16: decimalString(elec.TotalUsage),
			})
			if err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
