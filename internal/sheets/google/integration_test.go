//go:build integration

package google

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"balancebooks/internal/core"
	"balancebooks/internal/finance"

	"github.com/shopspring/decimal"
)

// Integration tests require a real spreadsheet shared with a service account.
// Run with: go test -tags=integration ./internal/sheets/google

func integrationClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" && os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	client, err := New(context.Background(), Config{
		SpreadsheetID:      spreadsheetID,
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CycleSheet:         "Integration Cycle",
		TransactionsSheet:  "Integration Transactions",
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestIntegration_ExportCycle(t *testing.T) {
	client := integrationClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := core.PeriodOf(time.Now())
	snap := core.Snapshot{Transactions: []core.Transaction{{
		ID:          "it-1",
		Date:        now.Day(1),
		Description: "Integration income",
		Amount:      decimal.NewFromInt(1000),
		Category:    core.CategoryIncome,
		Paid:        true,
	}}}
	points := finance.NewEngine(snap).Cycle(now)

	ref, err := client.ExportCycle(ctx, now, points)
	if err != nil {
		t.Fatalf("ExportCycle: %v", err)
	}
	if !strings.Contains(ref, "Integration Cycle") {
		t.Errorf("unexpected range reference: %s", ref)
	}

	ref, err = client.ExportTransactions(ctx, now.Year, snap.Transactions)
	if err != nil {
		t.Fatalf("ExportTransactions: %v", err)
	}
	t.Logf("Exported transactions to %s", ref)
}

func TestIntegration_ContextCancellation(t *testing.T) {
	client := integrationClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ExportTransactions(ctx, 2025, nil)
	if err == nil {
		t.Error("expected error with cancelled context")
	}
}
