package inventory

import (
	"context"

	"storefront-api/internal/db"
)

// Repository guards per-variant stock counts. Decrement is the single
// enforcement point against overselling: callers never read-then-write stock.
type Repository interface {
	// Decrement atomically subtracts qty from the variant's stock, but only
	// if the current stock covers it. It reports whether the decrement was
	// applied; an unknown (productID, sku) pair reports false the same way
	// insufficient stock does.
	Decrement(ctx context.Context, q db.Querier, productID, sku string, qty int) (bool, error)
	// Release adds qty back to the variant's stock. Used for admin stock
	// adjustments; checkout rollback is handled by the transaction itself.
	Release(ctx context.Context, q db.Querier, productID, sku string, qty int) error
	// Stock returns the current stock count for a variant.
	Stock(ctx context.Context, q db.Querier, productID, sku string) (int, error)
}
