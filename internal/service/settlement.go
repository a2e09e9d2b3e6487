package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"chicktrack/c/domain"
)

const saleColumns = `id, farmer_id, request_id, sale_date, quantity, amount, feed_bags_eligible,
    feed_payment_due_date, payment_status, payment_method, notes`

// SaleResult is the outcome of processing an approved request. Warning is set
// when the feed deduction could not be honoured; the sale itself still stands.
type SaleResult struct {
	Sale    domain.Sale `json:"sale"`
	Warning string      `json:"warning,omitempty"`
}

// ProcessSale converts an Approved request into a Sale: the request becomes
// Fulfilled, the amount is priced at the configured unit price, and the
// configured feed lot is debited best-effort.
func (s *Service) ProcessSale(requestID int64, notes string) (SaleResult, error) {
	var result SaleResult

	tx, err := s.db.Beginx()
	if err != nil {
		return result, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	var req domain.ChickRequest
	err = tx.Get(&req, `SELECT `+requestColumns+` FROM chick_requests WHERE id = ?`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return result, fmt.Errorf("%w: request %d", ErrNotFound, requestID)
	}
	if err != nil {
		return result, fmt.Errorf("load request: %w", err)
	}
	if req.Status != domain.RequestApproved {
		return result, fmt.Errorf("%w: request %d is %s, only Approved requests can be processed", ErrInvalidState, requestID, req.Status)
	}

	if _, err := tx.Exec(`UPDATE chick_requests SET status = ? WHERE id = ? AND status = ?`,
		domain.RequestFulfilled, requestID, domain.RequestApproved); err != nil {
		return result, fmt.Errorf("mark fulfilled: %w", err)
	}

	now := nowStamp()
	amount := float64(s.rules.UnitPrice * req.Quantity)
	dueDate := dateOnly(now.AddDate(0, 0, s.rules.FeedDueDays))

	warning := s.deductFeed(tx)

	res, err := tx.Exec(`INSERT INTO sales (farmer_id, request_id, sale_date, quantity, amount, feed_bags_eligible, feed_payment_due_date, payment_status, payment_method, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, 'pending', 'cash', ?)`,
		req.FarmerID, requestID, stamp(now), req.Quantity, amount, s.rules.FeedBagsPerSale, dueDate, notes)
	if err != nil {
		return result, fmt.Errorf("insert sale: %w", err)
	}
	saleID, err := res.LastInsertId()
	if err != nil {
		return result, fmt.Errorf("insert sale: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit sale: %w", err)
	}

	s.metrics.SalesProcessed.Inc()
	if warning != "" {
		s.metrics.FeedShortfalls.Inc()
		s.log.Warn("feed deduction skipped", zap.Int64("sale_id", saleID), zap.String("reason", warning))
	}
	s.log.Info("sale processed",
		zap.Int64("sale_id", saleID),
		zap.Int64("request_id", requestID),
		zap.Float64("amount", amount))

	sale, err := s.GetSale(saleID)
	if err != nil {
		return result, err
	}
	return SaleResult{Sale: sale, Warning: warning}, nil
}

// deductFeed debits the configured feed lot by the per-sale bag count. The
// deduction is best-effort: a missing or short lot yields a warning string,
// never an error.
func (s *Service) deductFeed(tx *sqlx.Tx) string {
	var lot domain.FeedStock
	err := tx.Get(&lot, `SELECT id, name, quantity FROM feed_stock WHERE LOWER(name) = LOWER(?) ORDER BY id ASC LIMIT 1`, s.rules.FeedLotName)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Sprintf("feed lot %q not found; no feed deducted", s.rules.FeedLotName)
	}
	if err != nil {
		return fmt.Sprintf("feed lookup failed: %v", err)
	}
	res, err := tx.Exec(`UPDATE feed_stock SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
		s.rules.FeedBagsPerSale, lot.ID, s.rules.FeedBagsPerSale)
	if err != nil {
		return fmt.Sprintf("feed deduction failed: %v", err)
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		return fmt.Sprintf("not enough feed in lot %q to deduct %d bags", lot.Name, s.rules.FeedBagsPerSale)
	}
	return ""
}

// GetSale loads one sale by id.
func (s *Service) GetSale(id int64) (domain.Sale, error) {
	var sale domain.Sale
	err := s.db.Get(&sale, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return sale, fmt.Errorf("%w: sale %d", ErrNotFound, id)
	}
	if err != nil {
		return sale, fmt.Errorf("load sale: %w", err)
	}
	return sale, nil
}

// ListSales returns sales newest first, optionally capped.
func (s *Service) ListSales(limit int) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY sale_date DESC`
	var err error
	if limit > 0 {
		err = s.db.Select(&sales, query+` LIMIT ?`, limit)
	} else {
		err = s.db.Select(&sales, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}
