package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/helpdesk_backend/config"
	"bitbucket.org/mmdatafocus/helpdesk_backend/models"
	"bitbucket.org/mmdatafocus/helpdesk_backend/models/reports"
	"bitbucket.org/mmdatafocus/helpdesk_backend/utils"
	"github.com/google/uuid"
)

func main() {
	branchID := flag.Int("branch-id", 0, "Branch id to report on (required)")
	from := flag.String("from", "", "Start date (YYYY-MM-DD, required)")
	to := flag.String("to", "", "End date (YYYY-MM-DD, required)")
	userID := flag.Int("user-id", 0, "Optional: only records entered by this user")
	categoriesFlag := flag.String("categories", "", "Optional: comma-separated subset of gas,water,electricity")
	out := flag.String("out", "usage-report.xlsx", "Output xlsx path")
	flag.Parse()

	if *branchID <= 0 || strings.TrimSpace(*from) == "" || strings.TrimSpace(*to) == "" {
		flag.Usage()
		os.Exit(2)
	}

	fromDate, err := models.ParseMyDateString(strings.TrimSpace(*from))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from: %v\n", err)
		os.Exit(2)
	}
	toDate, err := models.ParseMyDateString(strings.TrimSpace(*to))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -to: %v\n", err)
		os.Exit(2)
	}

	var categories []models.UtilityCategory
	if s := strings.TrimSpace(*categoriesFlag); s != "" {
		for _, part := range strings.Split(s, ",") {
			category, err := models.ParseUtilityCategory(strings.TrimSpace(part))
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid category %q\n", part)
				os.Exit(2)
			}
			categories = append(categories, category)
		}
	}

	var userFilter *int
	if *userID > 0 {
		userFilter = userID
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	ctx := context.Background()
	ctx = utils.SetBranchIdInContext(ctx, *branchID)
	ctx = utils.SetCorrelationIdInContext(ctx, uuid.NewString())

	rows, err := reports.GenerateUtilityUsageReport(ctx, *branchID, fromDate, toDate, userFilter, categories)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate report: %v\n", err)
		os.Exit(1)
	}

	branchName := ""
	if branch, err := models.GetBranch(ctx, *branchID); err == nil {
		branchName = branch.Name
	}

	f, err := reports.ExportUtilityUsageExcel(rows, branchName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to render workbook: %v\n", err)
		os.Exit(1)
	}
	if err := f.SaveAs(*out); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d day rows to %s\n", len(rows), *out)

	// Delivery is handled by the notification service; surface the configured
	// group here so operators know where this export ends up.
	if wa := config.GetWhatsAppSettings(); wa.Enabled() {
		fmt.Printf("notification gateway configured (group %s)\n", wa.GroupId)
	}
}
