package domain

type FeedStock struct {
	ID              int64    `db:"id" json:"id"`
	Name            string   `db:"name" json:"name"`
	FeedType        string   `db:"feed_type" json:"feed_type"`
	FeedBrand       string   `db:"feed_brand" json:"feed_brand"`
	Quantity        int64    `db:"quantity" json:"quantity"`
	UnitPrice       float64  `db:"unit_price" json:"unit_price"`
	BuyingPrice     *float64 `db:"buying_price" json:"buying_price,omitempty"`
	SellingPrice    *float64 `db:"selling_price" json:"selling_price,omitempty"`
	Supplier        string   `db:"supplier" json:"supplier"`
	SupplierContact string   `db:"supplier_contact" json:"supplier_contact"`
	DateAdded       string   `db:"date_added" json:"date_added"`
}
