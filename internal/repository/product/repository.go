package product

import (
	"context"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

// ListFilter narrows the catalog listing. Zero values mean "no constraint";
// pagination defaults are applied by the repository.
type ListFilter struct {
	Query           string
	CategoryID      string
	Color           string
	Size            string
	MinPriceCents   int64
	MaxPriceCents   int64
	Page            int
	Limit           int
	IncludeInactive bool
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Product, int, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetByIDs runs against the supplied Querier so checkout can re-read
	// product state inside its transaction.
	GetByIDs(ctx context.Context, q db.Querier, ids []string) ([]domain.Product, error)
	LookupVariant(ctx context.Context, productID, sku string) (*domain.Variant, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
