package domain

type Sale struct {
	ID                 int64   `db:"id" json:"id"`
	FarmerID           int64   `db:"farmer_id" json:"farmer_id"`
	RequestID          *int64  `db:"request_id" json:"request_id,omitempty"`
	SaleDate           string  `db:"sale_date" json:"sale_date"`
	Quantity           int64   `db:"quantity" json:"quantity"`
	Amount             float64 `db:"amount" json:"amount"`
	FeedBagsEligible   int64   `db:"feed_bags_eligible" json:"feed_bags_eligible"`
	FeedPaymentDueDate string  `db:"feed_payment_due_date" json:"feed_payment_due_date"`
	PaymentStatus      string  `db:"payment_status" json:"payment_status"`
	PaymentMethod      string  `db:"payment_method" json:"payment_method"`
	Notes              string  `db:"notes" json:"notes"`
}
