package service

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"chicktrack/c/domain"
)

// AggregateAvailable sums stock across every lot matching the type/breed pair
// case-insensitively. Submit-time validation and approval-time reservation
// both work from this aggregate so they cannot disagree.
func (s *Service) AggregateAvailable(chickType, chickBreed string) (int64, error) {
	var total int64
	err := s.db.Get(&total, `SELECT COALESCE(SUM(quantity), 0) FROM chick_stock
        WHERE LOWER(chick_type) = LOWER(?) AND LOWER(chick_breed) = LOWER(?)`, chickType, chickBreed)
	if err != nil {
		return 0, fmt.Errorf("aggregate stock: %w", err)
	}
	return total, nil
}

// reserve allocates quantity across matching lots oldest-first, recording an
// allocation row per lot drawn. Each decrement re-checks the lot quantity
// inside the transaction, so a racing approval cannot push a lot negative.
// On shortfall the caller rolls the transaction back; nothing partial is kept.
func (s *Service) reserve(tx *sqlx.Tx, req domain.ChickRequest) error {
	var lots []domain.ChickStock
	err := tx.Select(&lots, `SELECT id, quantity FROM chick_stock
        WHERE LOWER(chick_type) = LOWER(?) AND LOWER(chick_breed) = LOWER(?) AND quantity > 0
        ORDER BY date_added ASC, id ASC`, req.ChickType, req.ChickBreed)
	if err != nil {
		return fmt.Errorf("load stock lots: %w", err)
	}

	remaining := req.Quantity
	for _, lot := range lots {
		take := lot.Quantity
		if take > remaining {
			take = remaining
		}
		res, err := tx.Exec(`UPDATE chick_stock SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`, take, lot.ID, take)
		if err != nil {
			return fmt.Errorf("decrement lot %d: %w", lot.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrement lot %d: %w", lot.ID, err)
		}
		if affected == 0 {
			// Lot changed underneath us; move on to the next one.
			continue
		}
		if _, err := tx.Exec(`INSERT INTO stock_allocations (request_id, stock_id, quantity) VALUES (?, ?, ?)`,
			req.ID, lot.ID, take); err != nil {
			return fmt.Errorf("record allocation: %w", err)
		}
		remaining -= take
		if remaining == 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: %d more chicks of %s/%s needed", ErrInsufficientStock, remaining, req.ChickType, req.ChickBreed)
}

// release credits every allocation of a request back to its lot and removes
// the allocation rows. Used when an approved request is cancelled.
func (s *Service) release(tx *sqlx.Tx, requestID int64) error {
	var allocations []domain.StockAllocation
	if err := tx.Select(&allocations, `SELECT id, request_id, stock_id, quantity FROM stock_allocations WHERE request_id = ?`, requestID); err != nil {
		return fmt.Errorf("load allocations: %w", err)
	}
	for _, alloc := range allocations {
		if _, err := tx.Exec(`UPDATE chick_stock SET quantity = quantity + ? WHERE id = ?`, alloc.Quantity, alloc.StockID); err != nil {
			return fmt.Errorf("credit lot %d: %w", alloc.StockID, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM stock_allocations WHERE request_id = ?`, requestID); err != nil {
		return fmt.Errorf("clear allocations: %w", err)
	}
	return nil
}
