package service

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"chicktrack/c/internal/config"
	"chicktrack/c/internal/metrics"
	"chicktrack/c/internal/migrations"
)

func testRules() config.Rules {
	return config.Rules{
		UnitPrice:       1650,
		StarterCap:      100,
		ReturningCap:    500,
		CooldownDays:    120,
		FeedLotName:     "generic feed",
		FeedBagsPerSale: 2,
		FeedDueDays:     60,
	}
}

func newTestService(t *testing.T) (*Service, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	migrations.Run(db)
	return New(db, testRules(), zap.NewNop(), metrics.New()), db
}

func insertFarmer(t *testing.T, db *sqlx.DB, nin, farmerType string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO farmers (name, nin, email, farmer_type) VALUES (?, ?, ?, ?)`,
		"Farmer "+nin, nin, nin+"@example.com", farmerType)
	if err != nil {
		t.Fatalf("insert farmer: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func insertStock(t *testing.T, db *sqlx.DB, batch, chickType, breed string, quantity int64, dateAdded string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO chick_stock (batch_number, chick_type, chick_breed, quantity, date_added) VALUES (?, ?, ?, ?, ?)`,
		batch, chickType, breed, quantity, dateAdded)
	if err != nil {
		t.Fatalf("insert stock: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func insertFeed(t *testing.T, db *sqlx.DB, name string, quantity int64) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO feed_stock (name, quantity, date_added) VALUES (?, ?, ?)`,
		name, quantity, time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		t.Fatalf("insert feed: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// insertFulfilled plants a Fulfilled request dated the given number of days ago.
func insertFulfilled(t *testing.T, db *sqlx.DB, farmerID int64, daysAgo int) {
	t.Helper()
	when := time.Now().UTC().AddDate(0, 0, -daysAgo).Format(time.RFC3339)
	if _, err := db.Exec(`INSERT INTO chick_requests (farmer_id, farmer_type, chick_type, chick_breed, quantity, status, request_date)
        VALUES (?, 'Returning', 'Broilers', 'local', 10, 'Fulfilled', ?)`, farmerID, when); err != nil {
		t.Fatalf("insert fulfilled request: %v", err)
	}
}

func stockQuantity(t *testing.T, db *sqlx.DB, id int64) int64 {
	t.Helper()
	var quantity int64
	if err := db.Get(&quantity, `SELECT quantity FROM chick_stock WHERE id = ?`, id); err != nil {
		t.Fatalf("load stock quantity: %v", err)
	}
	return quantity
}

func feedQuantity(t *testing.T, db *sqlx.DB, id int64) int64 {
	t.Helper()
	var quantity int64
	if err := db.Get(&quantity, `SELECT quantity FROM feed_stock WHERE id = ?`, id); err != nil {
		t.Fatalf("load feed quantity: %v", err)
	}
	return quantity
}
