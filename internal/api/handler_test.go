package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"chicktrack/c/internal/config"
	"chicktrack/c/internal/metrics"
	"chicktrack/c/internal/migrations"
	"chicktrack/c/internal/service"
)

func newTestRouter(t *testing.T) (http.Handler, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	migrations.Run(db)

	rules := config.Rules{
		UnitPrice:       1650,
		StarterCap:      100,
		ReturningCap:    500,
		CooldownDays:    120,
		FeedLotName:     "generic feed",
		FeedBagsPerSale: 2,
		FeedDueDays:     60,
	}
	m := metrics.New()
	svc := service.New(db, rules, zap.NewNop(), m)
	h := New(db, svc, "test_secret", zap.NewNop(), m)
	return h.Router(), db
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerStaff(t *testing.T, router http.Handler, username, role string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
		"role":     role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Token
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/requests", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "eve",
		"email":    "eve@example.com",
		"password": "secret123",
		"role":     "admin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	router, _ := newTestRouter(t)
	registerStaff(t, router, "manager", "brooder_manager")

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "manager@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "manager@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}

func TestRolePolicyEnforced(t *testing.T) {
	router, _ := newTestRouter(t)
	manager := registerStaff(t, router, "manager", "brooder_manager")
	rep := registerStaff(t, router, "rep", "sales_rep")

	t.Run("sales rep cannot approve", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/requests/1/approve", rep, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("manager cannot submit requests", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/requests", manager, map[string]any{
			"farmer_nin": "X", "chick_type": "Broilers", "chick_breed": "local", "quantity": 10,
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("manager cannot register farmers", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/farmers", manager, map[string]any{
			"name": "F", "nin": "NIN-1", "email": "f@example.com", "farmer_type": "Starter",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("sales rep cannot add stock", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/stock", rep, map[string]any{
			"batch_number": "B1", "chick_type": "Broilers", "chick_breed": "local", "quantity": 10,
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestRequestToSaleFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	manager := registerStaff(t, router, "manager", "brooder_manager")
	rep := registerStaff(t, router, "rep", "sales_rep")

	rec := doJSON(t, router, http.MethodPost, "/farmers", rep, map[string]any{
		"name": "Achan", "nin": "NIN-F", "email": "achan@example.com", "farmer_type": "Starter",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create farmer: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/stock", manager, map[string]any{
		"batch_number": "B1", "chick_type": "Broilers", "chick_breed": "local",
		"unit_price": 1650, "quantity": 60, "age_period": 3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create stock: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/feed", manager, map[string]any{
		"name": "generic feed", "quantity": 5, "unit_price": 80000.0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create feed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/requests", rep, map[string]any{
		"farmer_nin": "NIN-F", "chick_type": "Broilers", "chick_breed": "local", "quantity": 50,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit request: %d %s", rec.Code, rec.Body.String())
	}
	var submitted struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if submitted.Status != "Pending" {
		t.Fatalf("expected Pending, got %s", submitted.Status)
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/requests/%d/approve", submitted.ID), manager, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/sales", rep, map[string]any{
		"request_id": submitted.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("process sale: %d %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Sale struct {
			Amount float64 `json:"amount"`
		} `json:"sale"`
		Warning string `json:"warning"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode sale: %v", err)
	}
	if result.Sale.Amount != 82500 {
		t.Fatalf("expected amount 82500, got %v", result.Sale.Amount)
	}
	if result.Warning != "" {
		t.Fatalf("unexpected feed warning: %s", result.Warning)
	}

	// Public tracking reflects the fulfilled request without a token.
	rec = doJSON(t, router, http.MethodGet, "/track?nin=NIN-F", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("track: %d %s", rec.Code, rec.Body.String())
	}
	var tracked []struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tracked); err != nil {
		t.Fatalf("decode track: %v", err)
	}
	if len(tracked) != 1 || tracked[0].Status != "Fulfilled" {
		t.Fatalf("expected one Fulfilled request, got %+v", tracked)
	}

	// Metrics endpoint stays public and serves the counters.
	rec = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestSubmitBusinessRuleRejections(t *testing.T) {
	router, _ := newTestRouter(t)
	manager := registerStaff(t, router, "manager", "brooder_manager")
	rep := registerStaff(t, router, "rep", "sales_rep")

	rec := doJSON(t, router, http.MethodPost, "/farmers", rep, map[string]any{
		"name": "Okello", "nin": "NIN-S", "email": "okello@example.com", "farmer_type": "Starter",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create farmer: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/stock", manager, map[string]any{
		"batch_number": "B1", "chick_type": "Broilers", "chick_breed": "local", "quantity": 300,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create stock: %d %s", rec.Code, rec.Body.String())
	}

	t.Run("over the starter cap", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/requests", rep, map[string]any{
			"farmer_nin": "NIN-S", "chick_type": "Broilers", "chick_breed": "local", "quantity": 101,
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown farmer", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/requests", rep, map[string]any{
			"farmer_nin": "NOPE", "chick_type": "Broilers", "chick_breed": "local", "quantity": 10,
		})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("zero quantity", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/requests", rep, map[string]any{
			"farmer_nin": "NIN-S", "chick_type": "Broilers", "chick_breed": "local", "quantity": 0,
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestTrackRequiresNIN(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/track", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/track?nin=UNKNOWN", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown NIN, got %d", rec.Code)
	}
}
