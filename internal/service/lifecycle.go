package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"chicktrack/c/domain"
)

const requestColumns = `id, farmer_id, farmer_type, chick_type, chick_breed, quantity, status,
    request_date, approval_date, payment_status, delivered, delivery_date`

// SubmitRequest validates eligibility and creates a Pending request on behalf
// of the farmer identified by NIN.
func (s *Service) SubmitRequest(nin, chickType, chickBreed string, quantity int64) (domain.ChickRequest, error) {
	var empty domain.ChickRequest

	if quantity <= 0 {
		return empty, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}
	if strings.TrimSpace(chickType) == "" || strings.TrimSpace(chickBreed) == "" {
		return empty, fmt.Errorf("%w: chick type and breed are required", ErrValidation)
	}

	farmer, err := s.FarmerByNIN(nin)
	if err != nil {
		return empty, err
	}

	now := nowStamp()
	if farmer.FarmerType == domain.FarmerReturning {
		nextEligible, blocked, err := s.cooldownUntil(farmer.ID, now)
		if err != nil {
			return empty, err
		}
		if blocked {
			return empty, fmt.Errorf("%w: eligible again on %s", ErrCooldownActive, dateOnly(nextEligible))
		}
	}

	limit := s.rules.ReturningCap
	if farmer.FarmerType == domain.FarmerStarter {
		limit = s.rules.StarterCap
	}
	if quantity > limit {
		return empty, fmt.Errorf("%w: limit is %d for %s farmers", ErrQuantityLimit, limit, farmer.FarmerType)
	}

	available, err := s.AggregateAvailable(chickType, chickBreed)
	if err != nil {
		return empty, err
	}
	if quantity > available {
		return empty, fmt.Errorf("%w: only %d available for %s/%s", ErrInsufficientStock, available, chickType, chickBreed)
	}

	res, err := s.db.Exec(`INSERT INTO chick_requests (farmer_id, farmer_type, chick_type, chick_breed, quantity, status, request_date, payment_status, delivered)
        VALUES (?, ?, ?, ?, ?, ?, ?, 'pending', 'NO')`,
		farmer.ID, farmer.FarmerType, chickType, chickBreed, quantity, domain.RequestPending, stamp(now))
	if err != nil {
		return empty, fmt.Errorf("insert request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return empty, fmt.Errorf("insert request: %w", err)
	}

	s.metrics.RequestsSubmitted.Inc()
	s.log.Info("request submitted",
		zap.Int64("request_id", id),
		zap.String("farmer_nin", farmer.NIN),
		zap.Int64("quantity", quantity))
	return s.GetRequest(id)
}

// cooldownUntil reports whether the farmer's most recent fulfilled request is
// still inside the cooldown window, and if so when it ends. A farmer is
// eligible again exactly when the window elapses.
func (s *Service) cooldownUntil(farmerID int64, now time.Time) (time.Time, bool, error) {
	var lastDate string
	err := s.db.Get(&lastDate, `SELECT request_date FROM chick_requests
        WHERE farmer_id = ? AND status = ? ORDER BY request_date DESC LIMIT 1`, farmerID, domain.RequestFulfilled)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load last fulfilled request: %w", err)
	}
	last, err := time.Parse(time.RFC3339, lastDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse request date %q: %w", lastDate, err)
	}
	nextEligible := last.AddDate(0, 0, s.rules.CooldownDays)
	return nextEligible, now.Before(nextEligible), nil
}

// ApproveRequest reserves stock and moves a Pending request to Approved. The
// reservation and the status change commit together or not at all.
func (s *Service) ApproveRequest(id int64) (domain.ChickRequest, error) {
	var empty domain.ChickRequest

	tx, err := s.db.Beginx()
	if err != nil {
		return empty, fmt.Errorf("begin approve: %w", err)
	}
	defer tx.Rollback()

	var req domain.ChickRequest
	err = tx.Get(&req, `SELECT `+requestColumns+` FROM chick_requests WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return empty, fmt.Errorf("%w: request %d", ErrNotFound, id)
	}
	if err != nil {
		return empty, fmt.Errorf("load request: %w", err)
	}
	if req.Status != domain.RequestPending {
		return empty, fmt.Errorf("%w: request %d is %s, only Pending requests can be approved", ErrInvalidState, id, req.Status)
	}

	if err := s.reserve(tx, req); err != nil {
		return empty, err
	}

	approvedAt := stamp(nowStamp())
	if _, err := tx.Exec(`UPDATE chick_requests SET status = ?, approval_date = ? WHERE id = ? AND status = ?`,
		domain.RequestApproved, approvedAt, id, domain.RequestPending); err != nil {
		return empty, fmt.Errorf("mark approved: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return empty, fmt.Errorf("commit approve: %w", err)
	}

	s.metrics.RequestsApproved.Inc()
	s.log.Info("request approved", zap.Int64("request_id", id), zap.Int64("quantity", req.Quantity))
	return s.GetRequest(id)
}

// RejectRequest moves a Pending request to Rejected. No stock effect.
func (s *Service) RejectRequest(id int64) (domain.ChickRequest, error) {
	var empty domain.ChickRequest

	req, err := s.GetRequest(id)
	if err != nil {
		return empty, err
	}
	if req.Status != domain.RequestPending {
		return empty, fmt.Errorf("%w: request %d is %s, only Pending requests can be rejected", ErrInvalidState, id, req.Status)
	}
	if _, err := s.db.Exec(`UPDATE chick_requests SET status = ? WHERE id = ? AND status = ?`,
		domain.RequestRejected, id, domain.RequestPending); err != nil {
		return empty, fmt.Errorf("mark rejected: %w", err)
	}

	s.metrics.RequestsRejected.Inc()
	s.log.Info("request rejected", zap.Int64("request_id", id))
	return s.GetRequest(id)
}

// CancelRequest replaces hard deletion: Pending and Approved requests move to
// Cancelled, and a cancelled approval credits its reserved stock back to the
// lots it was drawn from. Fulfilled and Rejected requests stay as they are.
func (s *Service) CancelRequest(id int64) (domain.ChickRequest, error) {
	var empty domain.ChickRequest

	tx, err := s.db.Beginx()
	if err != nil {
		return empty, fmt.Errorf("begin cancel: %w", err)
	}
	defer tx.Rollback()

	var req domain.ChickRequest
	err = tx.Get(&req, `SELECT `+requestColumns+` FROM chick_requests WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return empty, fmt.Errorf("%w: request %d", ErrNotFound, id)
	}
	if err != nil {
		return empty, fmt.Errorf("load request: %w", err)
	}

	switch req.Status {
	case domain.RequestPending:
		// nothing reserved yet
	case domain.RequestApproved:
		if err := s.release(tx, id); err != nil {
			return empty, err
		}
	default:
		return empty, fmt.Errorf("%w: request %d is %s and cannot be cancelled", ErrInvalidState, id, req.Status)
	}

	if _, err := tx.Exec(`UPDATE chick_requests SET status = ? WHERE id = ?`, domain.RequestCancelled, id); err != nil {
		return empty, fmt.Errorf("mark cancelled: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return empty, fmt.Errorf("commit cancel: %w", err)
	}

	s.metrics.RequestsCancelled.Inc()
	s.log.Info("request cancelled", zap.Int64("request_id", id), zap.String("was", req.Status))
	return s.GetRequest(id)
}

// GetRequest loads one request by id.
func (s *Service) GetRequest(id int64) (domain.ChickRequest, error) {
	var req domain.ChickRequest
	err := s.db.Get(&req, `SELECT `+requestColumns+` FROM chick_requests WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return req, fmt.Errorf("%w: request %d", ErrNotFound, id)
	}
	if err != nil {
		return req, fmt.Errorf("load request: %w", err)
	}
	return req, nil
}

// ListRequests returns requests, optionally filtered by status, newest first.
func (s *Service) ListRequests(status string) ([]domain.ChickRequest, error) {
	requests := []domain.ChickRequest{}
	var err error
	if status == "" {
		err = s.db.Select(&requests, `SELECT `+requestColumns+` FROM chick_requests ORDER BY request_date DESC`)
	} else {
		err = s.db.Select(&requests, `SELECT `+requestColumns+` FROM chick_requests WHERE status = ? ORDER BY request_date DESC`, status)
	}
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// RequestsByFarmerNIN powers the public tracking endpoint.
func (s *Service) RequestsByFarmerNIN(nin string) ([]domain.ChickRequest, error) {
	farmer, err := s.FarmerByNIN(nin)
	if err != nil {
		return nil, err
	}
	requests := []domain.ChickRequest{}
	if err := s.db.Select(&requests, `SELECT `+requestColumns+` FROM chick_requests
        WHERE farmer_id = ? ORDER BY request_date DESC`, farmer.ID); err != nil {
		return nil, fmt.Errorf("list farmer requests: %w", err)
	}
	return requests, nil
}

// FarmerByNIN looks a farmer up by national id.
func (s *Service) FarmerByNIN(nin string) (domain.Farmer, error) {
	var farmer domain.Farmer
	err := s.db.Get(&farmer, `SELECT id, name, nin, gender, date_of_birth, phone, address, email, farmer_type,
        recommender_name, recommender_nin, recommender_phone, registered_at
        FROM farmers WHERE nin = ?`, strings.TrimSpace(nin))
	if errors.Is(err, sql.ErrNoRows) {
		return farmer, fmt.Errorf("%w: no farmer with NIN %s", ErrNotFound, nin)
	}
	if err != nil {
		return farmer, fmt.Errorf("load farmer: %w", err)
	}
	return farmer, nil
}
