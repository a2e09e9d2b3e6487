package domain

// Request statuses form a forward-only state machine:
// Pending -> Approved | Rejected | Cancelled; Approved -> Fulfilled | Cancelled.
const (
	RequestPending   = "Pending"
	RequestApproved  = "Approved"
	RequestRejected  = "Rejected"
	RequestFulfilled = "Fulfilled"
	RequestCancelled = "Cancelled"
)

type ChickRequest struct {
	ID            int64   `db:"id" json:"id"`
	FarmerID      int64   `db:"farmer_id" json:"farmer_id"`
	FarmerType    string  `db:"farmer_type" json:"farmer_type"`
	ChickType     string  `db:"chick_type" json:"chick_type"`
	ChickBreed    string  `db:"chick_breed" json:"chick_breed"`
	Quantity      int64   `db:"quantity" json:"quantity"`
	Status        string  `db:"status" json:"status"`
	RequestDate   string  `db:"request_date" json:"request_date"`
	ApprovalDate  *string `db:"approval_date" json:"approval_date,omitempty"`
	PaymentStatus string  `db:"payment_status" json:"payment_status"`
	Delivered     string  `db:"delivered" json:"delivered"`
	DeliveryDate  *string `db:"delivery_date" json:"delivery_date,omitempty"`
}
