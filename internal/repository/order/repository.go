package order

import (
	"context"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

type Repository interface {
	// Create inserts the order and its item snapshots on the supplied
	// Querier, so checkout can create the order inside its transaction.
	Create(ctx context.Context, q db.Querier, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error)
	// ListByUser returns the user's orders newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// ListAll returns every order newest first (admin view).
	ListAll(ctx context.Context) ([]domain.Order, error)
	// SetStatus updates status and/or payment status. Nil means "leave
	// unchanged". Values are not checked here; the service validates enum
	// membership before calling.
	SetStatus(ctx context.Context, id string, status, paymentStatus *string) (*domain.Order, error)
}
