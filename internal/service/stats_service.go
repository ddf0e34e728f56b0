package service

import (
	"context"
	"errors"

	"pongping/internal/logger"
	"pongping/internal/metrics"
	"pongping/internal/store"
)

var ErrStoreUnconfigured = errors.New("user store is not configured")

// StatsService reports how many users the store holds.
type StatsService struct {
	users   store.Capability
	metrics *metrics.Metrics
}

func NewStatsService(users store.Capability, m *metrics.Metrics) *StatsService {
	return &StatsService{users: users, metrics: m}
}

// Report counts users, logs the number and updates the gauge.
func (s *StatsService) Report(ctx context.Context) (int64, error) {
	switch users := s.users.(type) {
	case store.Configured:
		n, err := users.CountUsers(ctx)
		if err != nil {
			return 0, err
		}
		s.metrics.SetUsers(n)
		logger.Info().Int64("users", n).Str("backend", users.Backend).Msg("Registered users")
		return n, nil
	default:
		return 0, ErrStoreUnconfigured
	}
}
