package service

import (
	"errors"
	"testing"
	"time"

	"chicktrack/c/domain"
)

func TestProcessSale(t *testing.T) {
	t.Run("only approved requests can be processed", func(t *testing.T) {
		svc, db := newTestService(t)
		insertFarmer(t, db, "NIN-1", "Starter")
		insertStock(t, db, "B1", "Broilers", "local", 100, "2025-01-01")

		req, err := svc.SubmitRequest("NIN-1", "Broilers", "local", 10)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := svc.ProcessSale(req.ID, ""); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("processing a Pending request should fail, got %v", err)
		}
		if _, err := svc.ProcessSale(999, ""); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("prices at unit price and schedules feed payment", func(t *testing.T) {
		svc, db := newTestService(t)
		insertFarmer(t, db, "NIN-1", "Starter")
		insertStock(t, db, "B1", "Broilers", "local", 100, "2025-01-01")
		feed := insertFeed(t, db, "Generic Feed", 10)

		req, err := svc.SubmitRequest("NIN-1", "Broilers", "local", 10)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := svc.ApproveRequest(req.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}

		result, err := svc.ProcessSale(req.ID, "first batch")
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if result.Warning != "" {
			t.Fatalf("unexpected warning: %s", result.Warning)
		}
		sale := result.Sale
		if sale.Amount != 16500 {
			t.Fatalf("expected amount 16500, got %v", sale.Amount)
		}
		wantDue := time.Now().UTC().AddDate(0, 0, 60).Format("2006-01-02")
		if sale.FeedPaymentDueDate != wantDue {
			t.Fatalf("expected due date %s, got %s", wantDue, sale.FeedPaymentDueDate)
		}
		if sale.PaymentStatus != "pending" || sale.PaymentMethod != "cash" {
			t.Fatalf("expected pending/cash defaults, got %s/%s", sale.PaymentStatus, sale.PaymentMethod)
		}
		if sale.FeedBagsEligible != 2 {
			t.Fatalf("expected 2 feed bags eligible, got %d", sale.FeedBagsEligible)
		}
		if sale.Notes != "first batch" {
			t.Fatalf("expected notes to be stored, got %q", sale.Notes)
		}

		// Feed lot matched case-insensitively and debited by two bags.
		if got := feedQuantity(t, db, feed); got != 8 {
			t.Fatalf("expected feed quantity 8, got %d", got)
		}

		fulfilled, err := svc.GetRequest(req.ID)
		if err != nil {
			t.Fatalf("reload request: %v", err)
		}
		if fulfilled.Status != domain.RequestFulfilled {
			t.Fatalf("expected Fulfilled, got %s", fulfilled.Status)
		}
	})

	t.Run("missing feed lot warns but sale proceeds", func(t *testing.T) {
		svc, db := newTestService(t)
		insertFarmer(t, db, "NIN-1", "Starter")
		insertStock(t, db, "B1", "Broilers", "local", 100, "2025-01-01")

		req, err := svc.SubmitRequest("NIN-1", "Broilers", "local", 10)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := svc.ApproveRequest(req.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}

		result, err := svc.ProcessSale(req.ID, "")
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if result.Warning == "" {
			t.Fatal("expected a warning about the missing feed lot")
		}
		if result.Sale.ID == 0 {
			t.Fatal("sale should still be recorded")
		}
	})

	t.Run("short feed lot warns without going negative", func(t *testing.T) {
		svc, db := newTestService(t)
		insertFarmer(t, db, "NIN-1", "Starter")
		insertStock(t, db, "B1", "Broilers", "local", 100, "2025-01-01")
		feed := insertFeed(t, db, "generic feed", 1)

		req, err := svc.SubmitRequest("NIN-1", "Broilers", "local", 10)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := svc.ApproveRequest(req.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}

		result, err := svc.ProcessSale(req.ID, "")
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if result.Warning == "" {
			t.Fatal("expected a warning about the short feed lot")
		}
		if got := feedQuantity(t, db, feed); got != 1 {
			t.Fatalf("short lot must be left untouched, has %d", got)
		}
	})

	t.Run("at most one sale per request", func(t *testing.T) {
		svc, db := newTestService(t)
		insertFarmer(t, db, "NIN-1", "Starter")
		insertStock(t, db, "B1", "Broilers", "local", 100, "2025-01-01")

		req, err := svc.SubmitRequest("NIN-1", "Broilers", "local", 10)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := svc.ApproveRequest(req.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if _, err := svc.ProcessSale(req.ID, ""); err != nil {
			t.Fatalf("process: %v", err)
		}
		if _, err := svc.ProcessSale(req.ID, ""); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("second process should fail with ErrInvalidState, got %v", err)
		}

		var sales int
		if err := db.Get(&sales, `SELECT COUNT(*) FROM sales WHERE request_id = ?`, req.ID); err != nil {
			t.Fatalf("count sales: %v", err)
		}
		if sales != 1 {
			t.Fatalf("expected exactly one sale, got %d", sales)
		}
	})
}

// Full walk-through: starter farmer requests 50 Broilers/local with 60 in
// stock, the request is approved, then processed into a sale.
func TestRequestToSaleScenario(t *testing.T) {
	svc, db := newTestService(t)
	insertFarmer(t, db, "NIN-F", "Starter")
	lot := insertStock(t, db, "B1", "Broilers", "local", 60, "2025-01-01")
	feed := insertFeed(t, db, "generic feed", 5)

	req, err := svc.SubmitRequest("NIN-F", "Broilers", "local", 50)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.Status != domain.RequestPending {
		t.Fatalf("expected Pending, got %s", req.Status)
	}

	if _, err := svc.ApproveRequest(req.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := stockQuantity(t, db, lot); got != 10 {
		t.Fatalf("expected stock 10 after approval, got %d", got)
	}

	result, err := svc.ProcessSale(req.ID, "")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Sale.Amount != 82500 {
		t.Fatalf("expected amount 82500, got %v", result.Sale.Amount)
	}
	if got := feedQuantity(t, db, feed); got != 3 {
		t.Fatalf("expected feed 3 after deduction, got %d", got)
	}

	final, err := svc.GetRequest(req.ID)
	if err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if final.Status != domain.RequestFulfilled {
		t.Fatalf("expected Fulfilled, got %s", final.Status)
	}
}
