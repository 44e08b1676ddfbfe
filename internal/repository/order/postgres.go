package order

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `
id::text, user_id::text, subtotal_cents, shipping_cents, tax_cents, grand_total_cents,
shipping_address, payment_method, payment_status, COALESCE(payment_provider_id, ''), status, created_at
`

func (r *postgresRepo) Create(ctx context.Context, q db.Querier, o domain.Order) (*domain.Order, error) {
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, err
	}

	const insert = `
INSERT INTO orders (user_id, subtotal_cents, shipping_cents, tax_cents, grand_total_cents,
                    shipping_address, payment_method, payment_status, payment_provider_id, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
RETURNING id::text, created_at
`
	if err := q.QueryRow(ctx, insert,
		o.UserID,
		o.Totals.SubtotalCents,
		o.Totals.ShippingCents,
		o.Totals.TaxCents,
		o.Totals.GrandTotalCents,
		addr,
		o.Payment.Method,
		o.Payment.Status,
		o.Payment.ProviderID,
		o.Status,
	).Scan(&o.ID, &o.CreatedAt); err != nil {
		return nil, err
	}

	const insertItem = `
INSERT INTO order_items (order_id, position, product_id, sku, name, size, color, price_cents, quantity)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
`
	for i, item := range o.Items {
		if _, err := q.Exec(ctx, insertItem,
			o.ID, i, item.ProductID, item.SKU, item.Name, item.Size, item.Color, item.PriceCents, item.Quantity,
		); err != nil {
			return nil, err
		}
	}

	r.logger.Info().Str("order_id", o.ID).Str("user_id", o.UserID).
		Int64("grand_total_cents", o.Totals.GrandTotalCents).Msg("order created")
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetchOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error) {
	return r.fetchOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.fetchMany(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.fetchMany(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepo) SetStatus(ctx context.Context, id string, status, paymentStatus *string) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = COALESCE($2, status),
    payment_status = COALESCE($3, payment_status)
WHERE id = $1
RETURNING id::text
`
	var orderID string
	if err := r.pool.QueryRow(ctx, q, id, status, paymentStatus).Scan(&orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *postgresRepo) fetchOne(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*domain.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var addr []byte
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Totals.SubtotalCents,
		&o.Totals.ShippingCents,
		&o.Totals.TaxCents,
		&o.Totals.GrandTotalCents,
		&addr,
		&o.Payment.Method,
		&o.Payment.Status,
		&o.Payment.ProviderID,
		&o.Status,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	index := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		index[o.ID] = o
	}

	const q = `
SELECT order_id::text, product_id::text, sku, name, COALESCE(size, ''), COALESCE(color, ''), price_cents, quantity
FROM order_items
WHERE order_id = ANY($1)
ORDER BY order_id, position ASC
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.SKU, &item.Name, &item.Size, &item.Color, &item.PriceCents, &item.Quantity); err != nil {
			return err
		}
		if o, ok := index[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}
