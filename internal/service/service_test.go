package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pongping/internal/metrics"
	"pongping/internal/model"
	"pongping/internal/store"
)

type countingStore struct {
	n   int64
	err error
}

func (c countingStore) UpsertUser(context.Context, model.User) error { return c.err }
func (c countingStore) CountUsers(context.Context) (int64, error) { return c.n, c.err }

func TestIntervalSpec(t *testing.T) {
	spec, err := intervalSpec(90 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "@every 5400s", spec)

	spec, err = intervalSpec(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "@every 1s", spec)

	_, err = intervalSpec(0)
	require.Error(t, err)
}

func TestScheduleIntervalRejectsNonPositive(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	_, err := s.ScheduleInterval(-time.Second, func() {})
	require.Error(t, err)
}

func TestSchedulerRunsJob(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	var runs atomic.Int32
	_, err := s.ScheduleInterval(time.Second, func() { runs.Add(1) })
	require.NoError(t, err)

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
}

func TestStatsReport(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	svc := NewStatsService(store.Configured{Users: countingStore{n: 3}, Backend: "fake"}, m)
	n, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestStatsReportErrors(t *testing.T) {
	_, err := NewStatsService(store.Unconfigured{Reason: "none"}, nil).Report(context.Background())
	require.ErrorIs(t, err, ErrStoreUnconfigured)

	boom := errors.New("boom")
	_, err = NewStatsService(store.Configured{Users: countingStore{err: boom}, Backend: "fake"}, nil).Report(context.Background())
	require.ErrorIs(t, err, boom)
}
