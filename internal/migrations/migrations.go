package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the distribution backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS farmers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            nin TEXT NOT NULL UNIQUE,
            gender TEXT NOT NULL DEFAULT '',
            date_of_birth TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL UNIQUE,
            farmer_type TEXT NOT NULL,
            recommender_name TEXT NOT NULL DEFAULT '',
            recommender_nin TEXT NOT NULL DEFAULT '',
            recommender_phone TEXT NOT NULL DEFAULT '',
            registered_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS chick_stock (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            batch_number TEXT NOT NULL,
            chick_type TEXT NOT NULL,
            chick_breed TEXT NOT NULL,
            unit_price INTEGER NOT NULL DEFAULT 1650,
            quantity INTEGER NOT NULL CHECK (quantity >= 0),
            age_period INTEGER NOT NULL DEFAULT 0,
            registered_by TEXT NOT NULL DEFAULT '',
            date_added TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS chick_requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            farmer_id INTEGER NOT NULL,
            farmer_type TEXT NOT NULL,
            chick_type TEXT NOT NULL,
            chick_breed TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'Pending',
            request_date TEXT NOT NULL,
            approval_date TEXT,
            payment_status TEXT NOT NULL DEFAULT 'pending',
            delivered TEXT NOT NULL DEFAULT 'NO',
            delivery_date TEXT,
            FOREIGN KEY(farmer_id) REFERENCES farmers(id)
        );`,
		`CREATE TABLE IF NOT EXISTS stock_allocations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            request_id INTEGER NOT NULL,
            stock_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            FOREIGN KEY(request_id) REFERENCES chick_requests(id),
            FOREIGN KEY(stock_id) REFERENCES chick_stock(id)
        );`,
		`CREATE TABLE IF NOT EXISTS sales (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            farmer_id INTEGER NOT NULL,
            request_id INTEGER UNIQUE,
            sale_date TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            amount REAL NOT NULL,
            feed_bags_eligible INTEGER NOT NULL DEFAULT 2,
            feed_payment_due_date TEXT NOT NULL,
            payment_status TEXT NOT NULL DEFAULT 'pending',
            payment_method TEXT NOT NULL DEFAULT 'cash',
            notes TEXT NOT NULL DEFAULT '',
            FOREIGN KEY(farmer_id) REFERENCES farmers(id),
            FOREIGN KEY(request_id) REFERENCES chick_requests(id) ON DELETE SET NULL
        );`,
		`CREATE TABLE IF NOT EXISTS feed_stock (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            feed_type TEXT NOT NULL DEFAULT '',
            feed_brand TEXT NOT NULL DEFAULT '',
            quantity INTEGER NOT NULL CHECK (quantity >= 0),
            unit_price REAL NOT NULL DEFAULT 0,
            buying_price REAL,
            selling_price REAL,
            supplier TEXT NOT NULL DEFAULT '',
            supplier_contact TEXT NOT NULL DEFAULT '',
            date_added TEXT NOT NULL
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
