package domain

const (
	FarmerStarter   = "Starter"
	FarmerReturning = "Returning"
)

// Farmer is registered by a sales rep; farmers do not log in themselves.
// The NIN (national identification number) is immutable once created.
type Farmer struct {
	ID               int64  `db:"id" json:"id"`
	Name             string `db:"name" json:"name"`
	NIN              string `db:"nin" json:"nin"`
	Gender           string `db:"gender" json:"gender"`
	DateOfBirth      string `db:"date_of_birth" json:"date_of_birth"`
	Phone            string `db:"phone" json:"phone"`
	Address          string `db:"address" json:"address"`
	Email            string `db:"email" json:"email"`
	FarmerType       string `db:"farmer_type" json:"farmer_type"`
	RecommenderName  string `db:"recommender_name" json:"recommender_name"`
	RecommenderNIN   string `db:"recommender_nin" json:"recommender_nin"`
	RecommenderPhone string `db:"recommender_phone" json:"recommender_phone"`
	RegisteredAt     string `db:"registered_at" json:"registered_at"`
}
