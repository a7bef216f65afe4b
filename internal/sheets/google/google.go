package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"balancebooks/internal/core"
	"balancebooks/internal/finance"
	ports "balancebooks/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	DefaultCycleSheet        = "Cycle"
	DefaultTransactionsSheet = "Transactions"
)

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID      string
	ServiceAccountFile string
	ServiceAccountJSON string
	// Base sheet names without year; the client prefixes the exported year.
	CycleSheet        string
	TransactionsSheet string
}

type Client struct {
	svc              *gsheet.Service
	spreadsheetID    string
	cycleBase        string
	transactionsBase string
}

// Ensure interface conformance
var _ ports.Exporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, spreadsheetID, cfg), nil
}

func newClient(svc *gsheet.Service, spreadsheetID string, cfg Config) *Client {
	cycle := strings.TrimSpace(cfg.CycleSheet)
	if cycle == "" {
		cycle = DefaultCycleSheet
	}
	txs := strings.TrimSpace(cfg.TransactionsSheet)
	if txs == "" {
		txs = DefaultTransactionsSheet
	}
	return &Client{
		svc:              svc,
		spreadsheetID:    spreadsheetID,
		cycleBase:        cycle,
		transactionsBase: txs,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over the file; GOOGLE_APPLICATION_CREDENTIALS is the last resort.
func newSheetsService(ctx context.Context, serviceAccountJSON, serviceAccountFile string) (*gsheet.Service, error) {
	serviceAccountJSON = strings.TrimSpace(serviceAccountJSON)
	serviceAccountFile = strings.TrimSpace(serviceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportCycle replaces the "<year> Cycle" sheet with the cycle ending at closed.
func (c *Client) ExportCycle(ctx context.Context, closed core.Period, points []finance.CyclePoint) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.cycleBase, closed.Year)
	return c.replaceSheet(ctx, sheet, cycleValues(points))
}

// ExportTransactions replaces the "<year> Transactions" sheet.
func (c *Client) ExportTransactions(ctx context.Context, year int, txs []core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.transactionsBase, year)
	return c.replaceSheet(ctx, sheet, transactionValues(year, txs))
}

func (c *Client) replaceSheet(ctx context.Context, sheet string, values [][]any) (string, error) {
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	clearRange := fmt.Sprintf("%s!A:Z", quoteSheet(sheet))
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to clear sheet %s: %w", sheet, err)
	}

	ref := fmt.Sprintf("%s!A1:%s%d", quoteSheet(sheet), columnName(width(values)), len(values))
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update sheet %s: %w", sheet, err)
	}
	return ref, nil
}

// ensureSheet adds the sheet to the spreadsheet when it does not exist yet.
func (c *Client) ensureSheet(ctx context.Context, sheet string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: sheet}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheet, err)
	}
	slog.InfoContext(ctx, "Created sheet", "sheet", sheet)
	return nil
}
