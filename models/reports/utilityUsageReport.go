package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/helpdesk_backend/config"
	"bitbucket.org/mmdatafocus/helpdesk_backend/models"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
	"bitbucket.org/mmdatafocus/helpdesk_backend/workflow"
)

// GenerateUtilityUsageReport builds the per-day utility usage rows for one
// branch: bulk-fetch the in-range daily records (ascending), seed the
// carry-forward baseline from history before the range, then fold each
// record through the reconciliation processor.
//
// The fold is strictly sequential within a branch; callers wanting several
// branches run separate invocations (each owns its own baseline).
func GenerateUtilityUsageReport(ctx context.Context, branchID int, fromDate models.MyDateString, toDate models.MyDateString, userID *int, categories []models.UtilityCategory) ([]*models.UtilityUsageRow, error) {

	started := time.Now()

	if branchID <= 0 {
		return nil, errors.New("branch id is required")
	}
	branch, err := models.GetBranch(ctx, branchID)
	if err != nil {
		return nil, errors.New("branch not found")
	}
	if err := fromDate.StartOfDayUTCTime(branch.Timezone); err != nil {
		return nil, err
	}
	if err := toDate.EndOfDayUTCTime(branch.Timezone); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("UtilityUsageReport:%d:%s:%s:%d:%v",
		branchID,
		fromDate.Time().Format(time.RFC3339),
		toDate.Time().Format(time.RFC3339),
		utils.DereferencePtr(userID, 0),
		categories,
	)
	if reportCacheEnabled() {
		var cached []*models.UtilityUsageRow
		if ok, cerr := cacheGet(cacheKey, &cached); cerr == nil && ok {
			return cached, nil
		}
	}

	db := config.GetDB()

	records, err := models.ListDailyRecords(ctx, branchID, fromDate.Time(), toDate.Time(), userID)
	if err != nil {
		config.LogError(config.GetLogger(), "utilityUsageReport.go", "GenerateUtilityUsageReport", "Querying daily records", branchID, err)
		return nil, err
	}

	state, err := workflow.ResolvePreviousClosings(ctx, db, branchID, fromDate.Time(), userID)
	if err != nil {
		config.LogError(config.GetLogger(), "utilityUsageReport.go", "GenerateUtilityUsageReport", "Resolving previous closings", branchID, err)
		return nil, err
	}

	rows := make([]*models.UtilityUsageRow, 0, len(records))
	for _, record := range records {
		result := workflow.ReconcileDailyRecord(record, state)
		rows = append(rows, workflow.AssembleUsageRow(record, result, categories))
	}

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, rows, reportCacheTTL())
	}
	logSlowReport(ctx, "UtilityUsageReport", started, map[string]any{"branch_id": branchID, "rows": len(rows)})

	return rows, nil
}
