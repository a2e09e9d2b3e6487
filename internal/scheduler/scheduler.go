package scheduler

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the daily scan for sales whose feed payment is overdue and
// still pending, so staff can follow up with the farmer.
type Scheduler struct {
	cron   *cron.Cron
	db     *sqlx.DB
	logger *zap.Logger
	spec   string
}

// New creates a scheduler with the given cron spec (standard 5-field syntax).
func New(db *sqlx.DB, logger *zap.Logger, spec string) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), db: db, logger: logger, spec: spec}
}

// Start registers and starts the overdue feed payment scan.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("spec", s.spec))
	if _, err := s.cron.AddFunc(s.spec, s.scanOverdueFeedPayments); err != nil {
		s.logger.Error("failed to schedule feed payment scan", zap.Error(err))
		return
	}
	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

type overdueSale struct {
	ID       int64  `db:"id"`
	FarmerID int64  `db:"farmer_id"`
	DueDate  string `db:"feed_payment_due_date"`
}

func (s *Scheduler) scanOverdueFeedPayments() {
	today := time.Now().UTC().Format("2006-01-02")

	var overdue []overdueSale
	err := s.db.Select(&overdue, `SELECT id, farmer_id, feed_payment_due_date FROM sales
        WHERE payment_status = 'pending' AND feed_payment_due_date < ?
        ORDER BY feed_payment_due_date ASC`, today)
	if err != nil {
		s.logger.Error("overdue feed payment scan failed", zap.Error(err))
		return
	}
	if len(overdue) == 0 {
		s.logger.Info("no overdue feed payments")
		return
	}
	for _, sale := range overdue {
		s.logger.Warn("feed payment overdue",
			zap.Int64("sale_id", sale.ID),
			zap.Int64("farmer_id", sale.FarmerID),
			zap.String("due_date", sale.DueDate))
	}
	s.logger.Info("overdue feed payment scan complete", zap.Int("count", len(overdue)))
}
