package services

import (
	"context"
	"fmt"
	"time"

	"balancebooks/internal/cache"
	"balancebooks/internal/core"
	"balancebooks/internal/finance"
	"balancebooks/internal/ledger"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Dashboard bundles every derived view of one period.
type Dashboard struct {
	Period          core.Period              `json:"period"`
	Label           string                   `json:"label"`
	Version         int64                    `json:"version"`
	Stats           finance.MonthStats       `json:"stats"`
	Breakdown       []finance.CategoryTotal  `json:"breakdown"`
	Budget          []finance.BudgetLine     `json:"budget"`
	BudgetStats     finance.BudgetStats      `json:"budgetStats"`
	Trend           []finance.TrendPoint     `json:"trend"`
	TrendSummary    finance.TrendSummary     `json:"trendSummary"`
	Recommendations []finance.Recommendation `json:"recommendations"`
	Upcoming        []finance.UpcomingBill   `json:"upcomingBills"`
	Savings         finance.SavingsProgress  `json:"savings"`
	MonthlyBills    decimal.Decimal          `json:"totalMonthlyRecurring"`
}

// TrendReport is a trend window with its summary.
type TrendReport struct {
	Points  []finance.TrendPoint `json:"points"`
	Summary finance.TrendSummary `json:"summary"`
}

// AnalyticsService answers read queries from a per-version engine cache.
// Engines memoise their own results so a cached engine serves repeated
// queries against the same ledger version cheaply.
type AnalyticsService struct {
	store      ledger.SnapshotReader
	engines    *cache.LRUCache[*finance.Engine]
	dashboards *cache.LRUCache[Dashboard]
	rules      []finance.Rule
	now        func() time.Time
}

func NewAnalyticsService(store ledger.SnapshotReader, size int, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{
		store:      store,
		engines:    cache.NewLRUCache[*finance.Engine](size, ttl),
		dashboards: cache.NewLRUCache[Dashboard](size, ttl),
		rules:      finance.DefaultRules,
		now:        time.Now,
	}
}

// Caches exposes the caches for periodic expiry.
func (s *AnalyticsService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.engines, s.dashboards}
}

func versionKey(v int64) string { return fmt.Sprintf("v%d", v) }

// Engine returns the engine for the current ledger version.
func (s *AnalyticsService) Engine(ctx context.Context) (*finance.Engine, error) {
	v, err := s.store.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger version: %w", err)
	}
	if e, ok := s.engines.Get(versionKey(v)); ok {
		return e, nil
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	e := finance.NewEngine(snap)
	s.engines.Set(versionKey(snap.Version), e)
	return e, nil
}

func (s *AnalyticsService) Stats(ctx context.Context, p core.Period) (finance.MonthStats, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return finance.MonthStats{}, err
	}
	return e.Stats(p), nil
}

func (s *AnalyticsService) Breakdown(ctx context.Context, p core.Period) ([]finance.CategoryTotal, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return e.Breakdown(p), nil
}

func (s *AnalyticsService) Budget(ctx context.Context, p core.Period) ([]finance.BudgetLine, finance.BudgetStats, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, finance.BudgetStats{}, err
	}
	lines, stats := e.Budget(p)
	return lines, stats, nil
}

func (s *AnalyticsService) Trend(ctx context.Context, p core.Period) (TrendReport, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return TrendReport{}, err
	}
	points := e.Trend(p)
	return TrendReport{Points: points, Summary: finance.SummarizeTrend(points)}, nil
}

func (s *AnalyticsService) Cycle(ctx context.Context, p core.Period) ([]finance.CyclePoint, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return e.Cycle(p), nil
}

func (s *AnalyticsService) Recommendations(ctx context.Context, p core.Period) ([]finance.Recommendation, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return finance.Recommend(e.Inputs(p), s.rules), nil
}

func (s *AnalyticsService) DebtPlan(ctx context.Context) (finance.DebtPlan, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return finance.DebtPlan{}, err
	}
	return finance.PlanDebtPayoff(e.Snapshot().Debts), nil
}

// Upcoming lists bills due within window days of today.
func (s *AnalyticsService) Upcoming(ctx context.Context, window int) ([]finance.UpcomingBill, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	today := core.DateOf(s.now().UTC())
	return finance.UpcomingBills(e.Snapshot().RecurringBills, today, window), nil
}

// Dashboard assembles every view of p concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, p core.Period) (Dashboard, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	snap := e.Snapshot()
	key := versionKey(snap.Version) + ":" + p.Key()
	if d, ok := s.dashboards.Get(key); ok {
		return d, nil
	}

	d := Dashboard{Period: p, Label: p.Label(), Version: snap.Version}
	today := core.DateOf(s.now().UTC())

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Stats = e.Stats(p)
		return nil
	})
	g.Go(func() error {
		d.Breakdown = e.Breakdown(p)
		return nil
	})
	g.Go(func() error {
		d.Budget, d.BudgetStats = e.Budget(p)
		return nil
	})
	g.Go(func() error {
		d.Trend = e.Trend(p)
		d.TrendSummary = finance.SummarizeTrend(d.Trend)
		return nil
	})
	g.Go(func() error {
		d.Recommendations = finance.Recommend(e.Inputs(p), s.rules)
		return nil
	})
	g.Go(func() error {
		d.Upcoming = finance.UpcomingBills(snap.RecurringBills, today, finance.DefaultUpcomingWindow)
		d.MonthlyBills = finance.TotalMonthlyRecurring(snap.RecurringBills)
		return nil
	})
	g.Go(func() error {
		d.Savings = e.Savings(p)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	if err := ctx.Err(); err != nil {
		return Dashboard{}, err
	}

	s.dashboards.Set(key, d)
	return d, nil
}
