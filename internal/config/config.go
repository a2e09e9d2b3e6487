package config

import (
	"log"
	"os"
	"strconv"
)

// Rules holds the business constants of the distribution programme. They are
// configuration, not hardcoded literals, so a deployment can tune them.
type Rules struct {
	UnitPrice       int64
	StarterCap      int64
	ReturningCap    int64
	CooldownDays    int
	FeedLotName     string
	FeedBagsPerSale int64
	FeedDueDays     int
}

// Config holds application configuration values.
type Config struct {
	Secret       string
	DatabaseDSN  string
	HTTPPort     string
	StockCSVPath string
	FeedScanCron string
	Rules        Rules
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "file:chicktrack.db?_pragma=foreign_keys(1)"
	}

	rules := Rules{
		UnitPrice:       envInt64("CHICK_UNIT_PRICE", 1650),
		StarterCap:      envInt64("STARTER_REQUEST_CAP", 100),
		ReturningCap:    envInt64("RETURNING_REQUEST_CAP", 500),
		CooldownDays:    int(envInt64("RETURNING_COOLDOWN_DAYS", 120)),
		FeedLotName:     envString("FEED_LOT_NAME", "generic feed"),
		FeedBagsPerSale: envInt64("FEED_BAGS_PER_SALE", 2),
		FeedDueDays:     int(envInt64("FEED_PAYMENT_DUE_DAYS", 60)),
	}

	return Config{
		Secret:       secret,
		DatabaseDSN:  dsn,
		HTTPPort:     port,
		StockCSVPath: envString("STOCK_CSV_PATH", "assets/chick_stock.csv"),
		FeedScanCron: envString("FEED_SCAN_CRON", "0 8 * * *"),
		Rules:        rules,
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		log.Printf("invalid %s value %q, defaulting to %d", key, raw, fallback)
		return fallback
	}
	return value
}
