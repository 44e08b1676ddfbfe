package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

const defaultPageSize = 12

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, int, error) {
	where := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeInactive {
		where = append(where, "p.active")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		ph := arg("%" + q + "%")
		where = append(where, fmt.Sprintf("(p.name ILIKE %s OR p.description ILIKE %s)", ph, ph))
	}
	if f.CategoryID != "" {
		where = append(where, fmt.Sprintf("p.category_id = %s", arg(f.CategoryID)))
	}

	variantConds := []string{}
	if f.Color != "" {
		variantConds = append(variantConds, fmt.Sprintf("v.color = %s", arg(f.Color)))
	}
	if f.Size != "" {
		variantConds = append(variantConds, fmt.Sprintf("v.size = %s", arg(f.Size)))
	}
	if f.MinPriceCents > 0 {
		variantConds = append(variantConds, fmt.Sprintf("v.price_cents >= %s", arg(f.MinPriceCents)))
	}
	if f.MaxPriceCents > 0 {
		variantConds = append(variantConds, fmt.Sprintf("v.price_cents <= %s", arg(f.MaxPriceCents)))
	}
	if len(variantConds) > 0 {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND %s)",
			strings.Join(variantConds, " AND "),
		))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	listQuery := fmt.Sprintf(`
SELECT p.id::text, p.name, COALESCE(p.description, ''), p.images, p.category_id::text, p.active, p.created_at
FROM products p
%s
ORDER BY p.created_at DESC
LIMIT %s OFFSET %s
`, whereClause, arg(limit), arg((page-1)*limit))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("product repo: list failed")
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Images, &p.CategoryID, &p.Active, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachVariants(ctx, r.pool, result); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, name, COALESCE(description, ''), images, category_id::text, active, created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.Images, &p.CategoryID, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	products := []domain.Product{p}
	if err := r.attachVariants(ctx, r.pool, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *postgresRepo) GetByIDs(ctx context.Context, q db.Querier, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
SELECT id::text, name, COALESCE(description, ''), images, category_id::text, active, created_at
FROM products
WHERE id = ANY($1)
`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Images, &p.CategoryID, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, q, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) LookupVariant(ctx context.Context, productID, sku string) (*domain.Variant, error) {
	const q = `
SELECT sku, COALESCE(size, ''), COALESCE(color, ''), price_cents, stock
FROM product_variants
WHERE product_id = $1 AND sku = $2
`
	var v domain.Variant
	err := r.pool.QueryRow(ctx, q, productID, sku).Scan(&v.SKU, &v.Size, &v.Color, &v.PriceCents, &v.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO products (name, description, images, category_id, active)
VALUES ($1, NULLIF($2, ''), $3, $4, $5)
RETURNING id::text, created_at
`
	images := p.Images
	if images == nil {
		images = []string{}
	}
	if err := tx.QueryRow(ctx, q, p.Name, p.Description, images, p.CategoryID, p.Active).Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := replaceVariants(ctx, tx, p.ID, p.Variants); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info().Str("product_id", p.ID).Int("variants", len(p.Variants)).Msg("product created")
	return &p, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE products
SET name = $2,
    description = NULLIF($3, ''),
    images = $4,
    category_id = $5,
    active = $6
WHERE id = $1
RETURNING created_at
`
	images := p.Images
	if images == nil {
		images = []string{}
	}
	if err := tx.QueryRow(ctx, q, p.ID, p.Name, p.Description, images, p.CategoryID, p.Active).Scan(&p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := replaceVariants(ctx, tx, p.ID, p.Variants); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func replaceVariants(ctx context.Context, tx pgx.Tx, productID string, variants []domain.Variant) error {
	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, v := range variants {
		if _, err := tx.Exec(ctx, `
INSERT INTO product_variants (product_id, sku, size, color, price_cents, stock)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
`, productID, v.SKU, v.Size, v.Color, v.PriceCents, v.Stock); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresRepo) attachVariants(ctx context.Context, q db.Querier, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	const query = `
SELECT product_id::text, sku, COALESCE(size, ''), COALESCE(color, ''), price_cents, stock
FROM product_variants
WHERE product_id = ANY($1)
ORDER BY sku ASC
`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var v domain.Variant
		if err := rows.Scan(&productID, &v.SKU, &v.Size, &v.Color, &v.PriceCents, &v.Stock); err != nil {
			return err
		}
		if i, ok := index[productID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return rows.Err()
}
