package domain

// ChickStock is a lot of chicks of one type/breed combination.
type ChickStock struct {
	ID           int64  `db:"id" json:"id"`
	BatchNumber  string `db:"batch_number" json:"batch_number"`
	ChickType    string `db:"chick_type" json:"chick_type"`
	ChickBreed   string `db:"chick_breed" json:"chick_breed"`
	UnitPrice    int64  `db:"unit_price" json:"unit_price"`
	Quantity     int64  `db:"quantity" json:"quantity"`
	AgePeriod    int64  `db:"age_period" json:"age_period"`
	RegisteredBy string `db:"registered_by" json:"registered_by"`
	DateAdded    string `db:"date_added" json:"date_added"`
}

// StockAllocation records how many chicks an approved request drew from a
// given lot, so a cancellation can credit the exact lots back.
type StockAllocation struct {
	ID        int64 `db:"id" json:"id"`
	RequestID int64 `db:"request_id" json:"request_id"`
	StockID   int64 `db:"stock_id" json:"stock_id"`
	Quantity  int64 `db:"quantity" json:"quantity"`
}
