package domain

// Review is a dealer review as served by the dealer store, annotated with
// a sentiment label on every fetch. Sentiment is never sent back upstream.
type Review struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DealerID     int64     `json:"dealership"`
	Review       string    `json:"review"`
	Purchase     bool      `json:"purchase"`
	PurchaseDate string    `json:"purchase_date,omitempty"`
	CarMake      string    `json:"car_make,omitempty"`
	CarModel     string    `json:"car_model,omitempty"`
	CarYear      int       `json:"car_year,omitempty"`
	Sentiment    Sentiment `json:"sentiment"`
}
