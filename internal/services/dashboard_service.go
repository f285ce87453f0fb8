package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"typhoondash/internal/cache"
	"typhoondash/internal/core"
	"typhoondash/internal/dashboard"
	applog "typhoondash/internal/log"
	"typhoondash/internal/observability"
	"typhoondash/internal/source"
)

// DashboardOptions configure a DashboardService.
type DashboardOptions struct {
	// TTL of the loaded table; zero keeps it for the life of the process.
	TTL          time.Duration
	Clock        clockwork.Clock
	DefaultRange core.YearRange
	Metrics      *observability.Metrics
	Logger       *applog.Logger
}

// DashboardService owns the memoized record table and builds dashboard
// views from it.
type DashboardService struct {
	loader   source.Loader
	table    *cache.Memo[*core.Table]
	clock    clockwork.Clock
	defaults core.YearRange
	metrics  *observability.Metrics
	logger   *applog.Logger
}

// NewDashboardService wraps loader. Nothing is loaded until the first call
// that needs the table.
func NewDashboardService(loader source.Loader, opts DashboardOptions) *DashboardService {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.DefaultRange == (core.YearRange{}) {
		opts.DefaultRange = dashboard.DefaultRange
	}

	s := &DashboardService{
		loader:   loader,
		clock:    opts.Clock,
		defaults: opts.DefaultRange.Normalize(),
		metrics:  opts.Metrics,
		logger:   opts.Logger.WithComponent(applog.ComponentDashboard),
	}
	backend := loader.Name()
	cacheLog := opts.Logger.WithComponent(applog.ComponentCache).With(applog.FieldBackend, backend)
	s.table = cache.NewMemo(s.loadTable, cache.Options{
		TTL:   opts.TTL,
		Clock: opts.Clock,
		Hooks: cache.Hooks{
			Hit:  func() { s.metrics.Cache.WithLabelValues("hit").Inc() },
			Miss: func() {
				s.metrics.Cache.WithLabelValues("miss").Inc()
				cacheLog.Debug("Dataset cache miss")
			},
			Loaded: func(elapsed time.Duration, err error) {
				outcome := "success"
				if err != nil {
					outcome = "error"
				}
				s.metrics.DatasetLoads.WithLabelValues(backend, outcome).Inc()
				s.metrics.DatasetLoadDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
			},
		},
	})
	return s
}

// Backend names the Data Provider behind the service.
func (s *DashboardService) Backend() string {
	return s.loader.Name()
}

func (s *DashboardService) loadTable(ctx context.Context) (*core.Table, error) {
	logger := s.logger.With(applog.FieldBackend, s.loader.Name(), applog.FieldOperation, applog.OpLoad)

	records, err := s.loader.Load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load dataset", applog.FieldError, err)
		if !errors.Is(err, source.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %w", source.ErrDataUnavailable, err)
		}
		return nil, err
	}

	table, err := core.NewTable(records)
	if err != nil {
		logger.ErrorContext(ctx, "Loaded dataset is invalid", applog.FieldError, err)
		return nil, fmt.Errorf("%w: %w", source.ErrDataUnavailable, err)
	}

	minYear, maxYear := table.Bounds()
	s.metrics.RecordsLoaded.Set(float64(table.Len()))
	logger.InfoContext(ctx, "Dataset loaded",
		applog.FieldRecords, table.Len(),
		applog.FieldYearFrom, minYear,
		applog.FieldYearTo, maxYear)
	return table, nil
}

// Table returns the loaded record table, loading it on first use.
func (s *DashboardService) Table(ctx context.Context) (*core.Table, error) {
	return s.table.Get(ctx)
}

// DefaultRange returns the initial selection clamped to the table's years.
func (s *DashboardService) DefaultRange(ctx context.Context) (core.YearRange, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return core.YearRange{}, err
	}
	return s.defaults.Clamp(table.Bounds()), nil
}

// Dashboard builds the view for r. Out-of-table years are kept and yield
// an empty view.
func (s *DashboardService) Dashboard(ctx context.Context, r core.YearRange) (dashboard.View, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return dashboard.View{}, err
	}

	start := s.clock.Now()
	view := dashboard.Build(table, r, dashboard.Options{DefaultRange: s.defaults})
	s.metrics.DashboardRenderDuration.Observe(s.clock.Since(start).Seconds())

	s.logger.DebugContext(ctx, "Dashboard built",
		applog.FieldOperation, applog.OpRender,
		applog.FieldYearFrom, view.Range.Selected.From,
		applog.FieldYearTo, view.Range.Selected.To,
		applog.FieldRows, len(view.Rows))
	return view, nil
}

// Reload drops the cached table and loads it again.
func (s *DashboardService) Reload(ctx context.Context) error {
	s.table.Invalidate()
	if _, err := s.Table(ctx); err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}
	s.logger.InfoContext(ctx, "Dataset reloaded", applog.FieldOperation, applog.OpReload, applog.FieldBackend, s.loader.Name())
	return nil
}

// Ready reports whether the table can be served.
func (s *DashboardService) Ready(ctx context.Context) error {
	_, err := s.Table(ctx)
	return err
}
