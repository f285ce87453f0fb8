package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typhoondash/internal/core"
	applog "typhoondash/internal/log"
	"typhoondash/internal/observability"
	"typhoondash/internal/source"
	"typhoondash/internal/source/memory"
)

type stubLoader struct {
	calls   atomic.Int32
	records []core.YearRecord
	err     error
}

func (l *stubLoader) Name() string { return "stub" }

func (l *stubLoader) Load(context.Context) ([]core.YearRecord, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return append([]core.YearRecord(nil), l.records...), nil
}

func TestDashboardService_LoadsOnce(t *testing.T) {
	loader := &stubLoader{records: memory.Records()}
	metrics := observability.NewMetricsForTesting()
	svc := NewDashboardService(loader, DashboardOptions{Metrics: metrics})
	ctx := context.Background()

	for _, r := range []core.YearRange{{From: 2010, To: 2023}, {From: 2005, To: 2023}, {From: 2012, To: 2012}} {
		_, err := svc.Dashboard(ctx, r)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), loader.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("stub", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Cache.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Cache.WithLabelValues("hit")))
	assert.Equal(t, 19.0, testutil.ToFloat64(metrics.RecordsLoaded))
}

func TestDashboardService_LogsCacheMiss(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: "json", Output: &buf})
	svc := NewDashboardService(&stubLoader{records: memory.Records()}, DashboardOptions{Logger: logger})

	_, err := svc.Table(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"component":"cache"`)
	assert.Contains(t, buf.String(), "Dataset cache miss")
}

func TestDashboardService_Dashboard(t *testing.T) {
	svc := NewDashboardService(memory.New(), DashboardOptions{})

	view, err := svc.Dashboard(context.Background(), core.YearRange{From: 2005, To: 2023})
	require.NoError(t, err)
	assert.Equal(t, 7669.0, view.Totals.Damage)
	assert.Equal(t, 16, view.Totals.Casualties)

	view, err = svc.Dashboard(context.Background(), core.YearRange{From: 1990, To: 1995})
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Zero(t, view.Totals.Damage)
}

func TestDashboardService_DefaultRange(t *testing.T) {
	svc := NewDashboardService(memory.New(), DashboardOptions{})
	r, err := svc.DefaultRange(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.YearRange{From: 2010, To: 2023}, r)

	short := memory.Records()[10:] // 2015..2023
	svc = NewDashboardService(memory.NewWithRecords(short), DashboardOptions{DefaultRange: core.YearRange{From: 2023, To: 2010}})
	r, err = svc.DefaultRange(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.YearRange{From: 2015, To: 2023}, r)
}

func TestDashboardService_LoadFailure(t *testing.T) {
	loader := &stubLoader{err: errors.New("connection refused")}
	metrics := observability.NewMetricsForTesting()
	svc := NewDashboardService(loader, DashboardOptions{Metrics: metrics})

	_, err := svc.Dashboard(context.Background(), core.YearRange{From: 2010, To: 2023})
	require.ErrorIs(t, err, source.ErrDataUnavailable)
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, svc.Ready(context.Background()))

	// Failures are retried, not cached.
	assert.Equal(t, int32(2), loader.calls.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("stub", "error")))

	loader.err = nil
	loader.records = memory.Records()
	assert.NoError(t, svc.Ready(context.Background()))
}

func TestDashboardService_InvalidDataIsUnavailable(t *testing.T) {
	dup := []core.YearRecord{
		{Year: 2020, Typhoon: "바비", PropertyDamage: 1},
		{Year: 2020, Typhoon: "마이삭", PropertyDamage: 2},
	}
	svc := NewDashboardService(&stubLoader{records: dup}, DashboardOptions{})

	err := svc.Ready(context.Background())
	require.ErrorIs(t, err, source.ErrDataUnavailable)
	assert.ErrorIs(t, err, core.ErrInvalidRecord)
}

func TestDashboardService_Reload(t *testing.T) {
	loader := &stubLoader{records: memory.Records()}
	svc := NewDashboardService(loader, DashboardOptions{})
	ctx := context.Background()

	require.NoError(t, svc.Ready(ctx))
	loader.records = memory.Records()[:3]
	require.NoError(t, svc.Reload(ctx))

	table, err := svc.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestDashboardService_TTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loader := &stubLoader{records: memory.Records()}
	svc := NewDashboardService(loader, DashboardOptions{TTL: time.Hour, Clock: clock})
	ctx := context.Background()

	require.NoError(t, svc.Ready(ctx))
	clock.Advance(30 * time.Minute)
	require.NoError(t, svc.Ready(ctx))
	assert.Equal(t, int32(1), loader.calls.Load())

	clock.Advance(time.Hour)
	require.NoError(t, svc.Ready(ctx))
	assert.Equal(t, int32(2), loader.calls.Load())
}
