package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pongping"

// Metrics holds the bot's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	updates         *prometheus.CounterVec
	replies         *prometheus.CounterVec
	upserts         *prometheus.CounterVec
	handlerErrors   prometheus.Counter
	usersRegistered prometheus.Gauge
}

// New registers the collectors on reg, reusing any that are already registered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	var err error
	m := &Metrics{}
	if m.updates, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_total",
		Help:      "Updates routed by the dispatcher.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if m.replies, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "replies_total",
		Help:      "Replies sent to chats.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if m.upserts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_upserts_total",
		Help:      "User upsert attempts by result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if m.handlerErrors, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handler_errors_total",
		Help:      "Handler invocations that returned an error.",
	})); err != nil {
		return nil, err
	}
	if m.usersRegistered, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "users_registered",
		Help:      "Users in the store at the last stats run.",
	})); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

func (m *Metrics) Update(kind string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(kind).Inc()
}

func (m *Metrics) Reply(kind string) {
	if m == nil {
		return
	}
	m.replies.WithLabelValues(kind).Inc()
}

// Upsert counts one attempt; result is "ok", "error" or "skipped".
func (m *Metrics) Upsert(result string) {
	if m == nil {
		return
	}
	m.upserts.WithLabelValues(result).Inc()
}

func (m *Metrics) HandlerError() {
	if m == nil {
		return
	}
	m.handlerErrors.Inc()
}

func (m *Metrics) SetUsers(n int64) {
	if m == nil {
		return
	}
	m.usersRegistered.Set(float64(n))
}
