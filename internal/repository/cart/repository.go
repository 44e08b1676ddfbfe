package cart

import (
	"context"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

type AddItemInput struct {
	ProductID  string
	SKU        string
	Quantity   int
	PriceCents int64
}

type Repository interface {
	// GetOrCreate returns the user's cart, creating an empty one on first
	// access.
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// AddItem inserts a line or merges quantity into an existing line with
	// the same SKU, keeping the original price snapshot.
	AddItem(ctx context.Context, cartID string, in AddItemInput) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	// Clear empties the cart's item list and bumps its timestamp. Clearing an
	// already-empty cart is a no-op, so retries converge. It runs on the
	// supplied Querier so checkout can clear inside its transaction.
	Clear(ctx context.Context, q db.Querier, cartID string) error
}
