package storage

import (
	"context"
	"database/sql"
	"fmt"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the statements of the ledger schema. Decimal values are
// stored as TEXT and dates as YYYY-MM-DD.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// affected returns core.ErrNotFound when res touched no rows.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func scanDate(s string) core.Date {
	if s == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

const listTransactions = `SELECT id, date, description, amount, category, paid FROM transactions ORDER BY seq`

func (q *Queries) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []core.Transaction
	for rows.Next() {
		var (
			t    core.Transaction
			date string
		)
		if err := rows.Scan(&t.ID, &date, &t.Description, &t.Amount, &t.Category, &t.Paid); err != nil {
			return nil, err
		}
		t.Date = scanDate(date)
		items = append(items, t)
	}
	return items, rows.Err()
}

const insertTransaction = `INSERT INTO transactions (id, date, description, amount, category, paid) VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx, insertTransaction, t.ID, t.Date.String(), t.Description, t.Amount, string(t.Category), t.Paid)
	return err
}

const updateTransaction = `UPDATE transactions SET date = ?, description = ?, amount = ?, category = ?, paid = ? WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return affected(q.db.ExecContext(ctx, updateTransaction, t.Date.String(), t.Description, t.Amount, string(t.Category), t.Paid, t.ID))
}

const setTransactionDate = `UPDATE transactions SET date = ? WHERE id = ?`

func (q *Queries) SetTransactionDate(ctx context.Context, id string, d core.Date) error {
	return affected(q.db.ExecContext(ctx, setTransactionDate, d.String(), id))
}

const setTransactionPaid = `UPDATE transactions SET paid = ? WHERE id = ? AND paid <> ?`

// SetTransactionPaid reports whether the row changed.
func (q *Queries) SetTransactionPaid(ctx context.Context, id string, paid bool) (bool, error) {
	res, err := q.db.ExecContext(ctx, setTransactionPaid, paid, id, paid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	return affected(q.db.ExecContext(ctx, deleteTransaction, id))
}

const deleteAllTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteAllTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransactions)
	return err
}

const listRecurringBills = `SELECT id, name, amount, category, frequency, due_day, active, auto_pay FROM recurring_bills ORDER BY seq`

func (q *Queries) ListRecurringBills(ctx context.Context) ([]core.RecurringBill, error) {
	rows, err := q.db.QueryContext(ctx, listRecurringBills)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []core.RecurringBill
	for rows.Next() {
		var b core.RecurringBill
		if err := rows.Scan(&b.ID, &b.Name, &b.Amount, &b.Category, &b.Frequency, &b.DueDay, &b.Active, &b.AutoPay); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const insertRecurringBill = `INSERT INTO recurring_bills (id, name, amount, category, frequency, due_day, active, auto_pay) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertRecurringBill(ctx context.Context, b core.RecurringBill) error {
	_, err := q.db.ExecContext(ctx, insertRecurringBill, b.ID, b.Name, b.Amount, string(b.Category), string(b.Frequency), b.DueDay, b.Active, b.AutoPay)
	return err
}

const updateRecurringBill = `UPDATE recurring_bills SET name = ?, amount = ?, category = ?, frequency = ?, due_day = ?, active = ?, auto_pay = ? WHERE id = ?`

func (q *Queries) UpdateRecurringBill(ctx context.Context, b core.RecurringBill) error {
	return affected(q.db.ExecContext(ctx, updateRecurringBill, b.Name, b.Amount, string(b.Category), string(b.Frequency), b.DueDay, b.Active, b.AutoPay, b.ID))
}

const deleteRecurringBill = `DELETE FROM recurring_bills WHERE id = ?`

func (q *Queries) DeleteRecurringBill(ctx context.Context, id string) error {
	return affected(q.db.ExecContext(ctx, deleteRecurringBill, id))
}

const deleteAllRecurringBills = `DELETE FROM recurring_bills`

func (q *Queries) DeleteAllRecurringBills(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllRecurringBills)
	return err
}

const listDebts = `SELECT id, name, balance, interest_rate, min_payment, type FROM debts ORDER BY seq`

func (q *Queries) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := q.db.QueryContext(ctx, listDebts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []core.Debt
	for rows.Next() {
		var d core.Debt
		if err := rows.Scan(&d.ID, &d.Name, &d.Balance, &d.InterestRate, &d.MinPayment, &d.Type); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const insertDebt = `INSERT INTO debts (id, name, balance, interest_rate, min_payment, type) VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertDebt(ctx context.Context, d core.Debt) error {
	_, err := q.db.ExecContext(ctx, insertDebt, d.ID, d.Name, d.Balance, d.InterestRate, d.MinPayment, string(d.Type))
	return err
}

const updateDebt = `UPDATE debts SET name = ?, balance = ?, interest_rate = ?, min_payment = ?, type = ? WHERE id = ?`

func (q *Queries) UpdateDebt(ctx context.Context, d core.Debt) error {
	return affected(q.db.ExecContext(ctx, updateDebt, d.Name, d.Balance, d.InterestRate, d.MinPayment, string(d.Type), d.ID))
}

const deleteDebt = `DELETE FROM debts WHERE id = ?`

func (q *Queries) DeleteDebt(ctx context.Context, id string) error {
	return affected(q.db.ExecContext(ctx, deleteDebt, id))
}

const deleteAllDebts = `DELETE FROM debts`

func (q *Queries) DeleteAllDebts(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllDebts)
	return err
}

const listBalanceOverrides = `SELECT period_key, beginning, ending FROM balance_overrides`

func (q *Queries) ListBalanceOverrides(ctx context.Context) (map[string]core.BalanceOverride, error) {
	rows, err := q.db.QueryContext(ctx, listBalanceOverrides)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := map[string]core.BalanceOverride{}
	for rows.Next() {
		var (
			key string
			o   core.BalanceOverride
		)
		if err := rows.Scan(&key, &o.Beginning, &o.Ending); err != nil {
			return nil, err
		}
		items[key] = o
	}
	return items, rows.Err()
}

const upsertBalanceOverride = `INSERT INTO balance_overrides (period_key, beginning, ending) VALUES (?, ?, ?)
ON CONFLICT(period_key) DO UPDATE SET beginning = excluded.beginning, ending = excluded.ending`

func (q *Queries) UpsertBalanceOverride(ctx context.Context, key string, o core.BalanceOverride) error {
	_, err := q.db.ExecContext(ctx, upsertBalanceOverride, key, o.Beginning, o.Ending)
	return err
}

const setEndingOverride = `INSERT INTO balance_overrides (period_key, ending) VALUES (?, ?)
ON CONFLICT(period_key) DO UPDATE SET ending = excluded.ending`

func (q *Queries) SetEndingOverride(ctx context.Context, key string, v decimal.Decimal) error {
	_, err := q.db.ExecContext(ctx, setEndingOverride, key, v)
	return err
}

const setBeginningOverride = `INSERT INTO balance_overrides (period_key, beginning) VALUES (?, ?)
ON CONFLICT(period_key) DO UPDATE SET beginning = excluded.beginning`

func (q *Queries) SetBeginningOverride(ctx context.Context, key string, v decimal.Decimal) error {
	_, err := q.db.ExecContext(ctx, setBeginningOverride, key, v)
	return err
}

const deleteBalanceOverride = `DELETE FROM balance_overrides WHERE period_key = ?`

func (q *Queries) DeleteBalanceOverride(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteBalanceOverride, key)
	return err
}

const deleteAllBalanceOverrides = `DELETE FROM balance_overrides`

func (q *Queries) DeleteAllBalanceOverrides(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllBalanceOverrides)
	return err
}

const listBudgetGoals = `SELECT category, amount FROM budget_goals`

func (q *Queries) ListBudgetGoals(ctx context.Context) (map[core.CategoryID]decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := map[core.CategoryID]decimal.Decimal{}
	for rows.Next() {
		var (
			id  core.CategoryID
			amt decimal.Decimal
		)
		if err := rows.Scan(&id, &amt); err != nil {
			return nil, err
		}
		items[id] = amt
	}
	return items, rows.Err()
}

const insertBudgetGoal = `INSERT INTO budget_goals (category, amount) VALUES (?, ?)`

func (q *Queries) InsertBudgetGoal(ctx context.Context, id core.CategoryID, amt decimal.Decimal) error {
	_, err := q.db.ExecContext(ctx, insertBudgetGoal, string(id), amt)
	return err
}

const deleteAllBudgetGoals = `DELETE FROM budget_goals`

func (q *Queries) DeleteAllBudgetGoals(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllBudgetGoals)
	return err
}

const getSetting = `SELECT value FROM settings WHERE key = ?`

func (q *Queries) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := q.db.QueryRowContext(ctx, getSetting, key).Scan(&v)
	return v, err
}

const setSetting = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`

func (q *Queries) SetSetting(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, setSetting, key, value)
	return err
}

const bumpVersion = `UPDATE settings SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT) WHERE key = 'version'`

func (q *Queries) BumpVersion(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, bumpVersion)
	return err
}

const getVersion = `SELECT CAST(value AS INTEGER) FROM settings WHERE key = 'version'`

func (q *Queries) GetVersion(ctx context.Context) (int64, error) {
	var v int64
	if err := q.db.QueryRowContext(ctx, getVersion).Scan(&v); err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return v, nil
}
