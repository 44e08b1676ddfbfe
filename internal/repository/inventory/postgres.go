package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

type postgresRepo struct {
	logger zerolog.Logger
}

func NewPostgres(logger zerolog.Logger) Repository {
	return &postgresRepo{logger: logger}
}

func (r *postgresRepo) Decrement(ctx context.Context, q db.Querier, productID, sku string, qty int) (bool, error) {
	if qty <= 0 {
		return false, domain.Validationf("quantity must be positive, got %d", qty)
	}

	// One conditional update: the stock guard and the subtraction are a
	// single atomic statement, so two checkouts racing on the same SKU can
	// never both decrement past zero.
	const stmt = `
UPDATE product_variants
SET stock = stock - $3
WHERE product_id = $1 AND sku = $2 AND stock >= $3
`
	cmd, err := q.Exec(ctx, stmt, productID, sku, qty)
	if err != nil {
		r.logger.Error().Err(err).Str("sku", sku).Int("qty", qty).Msg("inventory decrement failed")
		return false, err
	}
	applied := cmd.RowsAffected() == 1
	r.logger.Debug().Str("sku", sku).Int("qty", qty).Bool("applied", applied).Msg("inventory decrement")
	return applied, nil
}

func (r *postgresRepo) Release(ctx context.Context, q db.Querier, productID, sku string, qty int) error {
	if qty <= 0 {
		return domain.Validationf("quantity must be positive, got %d", qty)
	}

	const stmt = `
UPDATE product_variants
SET stock = stock + $3
WHERE product_id = $1 AND sku = $2
`
	cmd, err := q.Exec(ctx, stmt, productID, sku, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Stock(ctx context.Context, q db.Querier, productID, sku string) (int, error) {
	const query = `
SELECT stock
FROM product_variants
WHERE product_id = $1 AND sku = $2
`
	var stock int
	if err := q.QueryRow(ctx, query, productID, sku).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return stock, nil
}
