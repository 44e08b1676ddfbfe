package domain

import "time"

// Cart holds one user's intended purchases prior to checkout. There is at
// most one cart per user; it is created lazily and emptied, never deleted,
// on successful checkout.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem references a product variant live but snapshots the price at
// add time. The snapshot is authoritative for checkout totals.
type CartItem struct {
	ID         string    `json:"id"`
	CartID     string    `json:"cartId"`
	ProductID  string    `json:"productId"`
	SKU        string    `json:"sku"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"priceCents"`
	CreatedAt  time.Time `json:"createdAt"`
}
