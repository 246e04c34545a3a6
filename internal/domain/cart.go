package domain

// CartItem is a (user, product) pair; superseded at checkout.
// Product fields are joined in for display and are not snapshots.
type CartItem struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}
