package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"balancebooks/internal/core"
	"balancebooks/internal/importer"
	"balancebooks/internal/ledger"

	"github.com/shopspring/decimal"
)

// BackupFormatVersion is written into every bundle.
const BackupFormatVersion = "2.0"

// ErrNotBackup marks input that has no transactions array.
var ErrNotBackup = errors.New("not a backup file")

// BackupBundle is the exported archive.
type BackupBundle struct {
	Version    string        `json:"version"`
	ExportDate time.Time     `json:"exportDate"`
	Data       core.Snapshot `json:"data"`
}

// RestoreSummary describes a bundle before or after it is restored.
type RestoreSummary struct {
	Version        string       `json:"version"`
	ExportDate     string       `json:"exportDate"`
	Transactions   int          `json:"transactions"`
	RecurringBills int          `json:"recurringBills"`
	Debts          int          `json:"debts"`
	BudgetGoals    int          `json:"budgetGoals"`
	Skipped        core.Skipped `json:"skipped"`
}

// backupData mirrors core.Snapshot with pointers so absent sections can be
// told apart from empty ones.
type backupData struct {
	Transactions   *[]core.Transaction                `json:"transactions"`
	RecurringBills *[]core.RecurringBill              `json:"recurringExpenses"`
	Debts          *[]core.Debt                       `json:"debts"`
	Balances       map[string]core.BalanceOverride    `json:"monthlyBalances"`
	BudgetGoals    map[core.CategoryID]decimal.Decimal `json:"budgetGoals"`
	SavingsGoal    *decimal.Decimal                   `json:"savingsGoal"`
}

type backupEnvelope struct {
	Version    string      `json:"version"`
	ExportDate string      `json:"exportDate"`
	Data       *backupData `json:"data"`
}

type BackupService struct {
	store ledger.Store
	now   func() time.Time
}

func NewBackupService(store ledger.Store) *BackupService {
	return &BackupService{store: store, now: time.Now}
}

// Export returns the whole ledger as a bundle.
func (s *BackupService) Export(ctx context.Context) (BackupBundle, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return BackupBundle{}, err
	}
	return BackupBundle{
		Version:    BackupFormatVersion,
		ExportDate: s.now().UTC(),
		Data:       snap,
	}, nil
}

// ExportCSV writes every transaction as CSV.
func (s *BackupService) ExportCSV(ctx context.Context, w io.Writer) error {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return err
	}
	return importer.WriteCSV(w, snap.Transactions, s.now())
}

// decodeBundle accepts both the wrapped {"data": {...}} form and a bare
// snapshot object.
func decodeBundle(raw []byte) (backupEnvelope, backupData, error) {
	var env backupEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, backupData{}, fmt.Errorf("%w: %v", ErrNotBackup, err)
	}
	var data backupData
	if env.Data != nil {
		data = *env.Data
	} else if err := json.Unmarshal(raw, &data); err != nil {
		return env, data, fmt.Errorf("%w: %v", ErrNotBackup, err)
	}
	if data.Transactions == nil {
		return env, data, ErrNotBackup
	}
	if env.Version == "" {
		env.Version = "1.0"
	}
	if env.ExportDate == "" {
		env.ExportDate = "Unknown"
	}
	return env, data, nil
}

func summarize(env backupEnvelope, data backupData) RestoreSummary {
	sum := RestoreSummary{
		Version:      env.Version,
		ExportDate:   env.ExportDate,
		Transactions: len(*data.Transactions),
	}
	if data.RecurringBills != nil {
		sum.RecurringBills = len(*data.RecurringBills)
	}
	if data.Debts != nil {
		sum.Debts = len(*data.Debts)
	}
	for _, v := range data.BudgetGoals {
		if v.IsPositive() {
			sum.BudgetGoals++
		}
	}
	return sum
}

// Inspect summarises raw without touching the ledger.
func (s *BackupService) Inspect(raw []byte) (RestoreSummary, error) {
	env, data, err := decodeBundle(raw)
	if err != nil {
		return RestoreSummary{}, err
	}
	return summarize(env, data), nil
}

// Restore replaces the ledger with the sanitised bundle. Sections missing
// from the bundle other than transactions keep their current values for
// debts, budget goals and the savings goal, and start empty for recurring
// bills and balance overrides.
func (s *BackupService) Restore(ctx context.Context, raw []byte) (RestoreSummary, error) {
	env, data, err := decodeBundle(raw)
	if err != nil {
		return RestoreSummary{}, err
	}
	current, err := s.store.Snapshot(ctx)
	if err != nil {
		return RestoreSummary{}, err
	}

	next := core.Snapshot{
		Transactions: *data.Transactions,
		Balances:     data.Balances,
		BudgetGoals:  current.BudgetGoals,
		Debts:        current.Debts,
		SavingsGoal:  current.SavingsGoal,
	}
	if data.RecurringBills != nil {
		next.RecurringBills = *data.RecurringBills
	}
	if data.Debts != nil {
		next.Debts = *data.Debts
	}
	if data.BudgetGoals != nil {
		next.BudgetGoals = data.BudgetGoals
	}
	if data.SavingsGoal != nil && !data.SavingsGoal.IsZero() {
		next.SavingsGoal = *data.SavingsGoal
	}

	clean, skipped := core.SanitizeSnapshot(next)
	if err := s.store.Replace(ctx, clean); err != nil {
		return RestoreSummary{}, fmt.Errorf("restore ledger: %w", err)
	}

	sum := summarize(env, data)
	sum.Transactions = len(clean.Transactions)
	sum.RecurringBills = len(clean.RecurringBills)
	sum.Debts = len(clean.Debts)
	sum.Skipped = skipped
	return sum, nil
}
