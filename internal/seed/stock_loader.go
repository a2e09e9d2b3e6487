package seed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// LoadChickStock ingests a CSV of initial chick-stock batches. A missing file
// is not an error; the operation simply starts with whatever stock exists.
// Expected columns: batch_number, chick_type, chick_breed, unit_price,
// quantity, age_period, registered_by.
func LoadChickStock(db *sqlx.DB, log *zap.Logger, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Info("no chick stock seed file, skipping", zap.String("path", csvPath))
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Warn("unable to read stock seed header", zap.Error(err))
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Warn("unable to start stock seed transaction", zap.Error(err))
		return
	}
	stmt, err := tx.Preparex(`INSERT INTO chick_stock (batch_number, chick_type, chick_breed, unit_price, quantity, age_period, registered_by, date_added)
        SELECT ?, ?, ?, ?, ?, ?, ?, ?
        WHERE NOT EXISTS (SELECT 1 FROM chick_stock WHERE batch_number = ?)`)
	if err != nil {
		log.Warn("unable to prepare stock insert", zap.Error(err))
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	today := time.Now().UTC().Format("2006-01-02")
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("unable to read stock row", zap.Error(err))
			continue
		}
		if len(record) < 7 {
			continue
		}
		batch := strings.TrimSpace(record[0])
		chickType := strings.TrimSpace(record[1])
		breed := strings.TrimSpace(record[2])
		price, _ := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
		quantity, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
		agePeriod, _ := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
		registeredBy := strings.TrimSpace(record[6])

		if batch == "" || err != nil || quantity < 0 {
			continue
		}

		if _, err := stmt.Exec(batch, chickType, breed, price, quantity, agePeriod, registeredBy, today, batch); err != nil {
			log.Warn("unable to insert stock batch", zap.String("batch", batch), zap.Error(err))
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Warn("unable to commit stock seed", zap.Error(err))
	} else {
		log.Info("seeded chick stock", zap.Int("rows", rows))
	}
}
