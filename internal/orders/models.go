package orders

const StatusPending = "pending"

type Order struct {
	ID     string `json:"id"`
	UserID int    `json:"user_id"`
	Items  []Item `json:"items"`
	Status string `json:"status"` // opaque, not validated
}

type Item struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}
