package service

import (
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"chicktrack/c/internal/config"
	"chicktrack/c/internal/metrics"
)

// Service implements the core workflows: the inventory ledger, the request
// lifecycle engine and sale settlement. Every state change runs as a single
// transaction against the store.
type Service struct {
	db      *sqlx.DB
	rules   config.Rules
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New constructs a Service.
func New(db *sqlx.DB, rules config.Rules, log *zap.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, rules: rules, log: log, metrics: m}
}

// Rules exposes the business constants, mainly for handlers composing messages.
func (s *Service) Rules() config.Rules {
	return s.rules
}

func nowStamp() time.Time {
	return time.Now().UTC()
}

func stamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}
