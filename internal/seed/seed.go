package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type variantSeed struct {
	SKU        string
	Size       string
	Color      string
	PriceCents int64
	Stock      int
}

type productSeed struct {
	Name        string
	Description string
	Category    string
	Images      []string
	Variants    []variantSeed
}

// Apply inserts demo data for manual testing. It is idempotent: rows are
// upserted by their natural keys so reruns converge on the same state.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool, "admin@example.com", "Admin123!"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	categories := map[string]string{
		"Apparel":     "apparel",
		"Accessories": "accessories",
	}
	categoryIDs := make(map[string]string, len(categories))
	for name, slug := range categories {
		id, err := ensureCategory(ctx, pool, name, slug)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", name, err)
		}
		categoryIDs[name] = id
	}

	products := []productSeed{
		{
			Name:        "Classic T-Shirt",
			Description: "Soft cotton tee in several colorways",
			Category:    "Apparel",
			Images:      []string{"/img/classic-tee.jpg"},
			Variants: []variantSeed{
				{SKU: "TEE-BLK-M", Size: "M", Color: "black", PriceCents: 1999, Stock: 50},
				{SKU: "TEE-BLK-L", Size: "L", Color: "black", PriceCents: 1999, Stock: 40},
				{SKU: "TEE-WHT-M", Size: "M", Color: "white", PriceCents: 1999, Stock: 35},
			},
		},
		{
			Name:        "Canvas Tote",
			Description: "Heavy duty canvas tote bag",
			Category:    "Accessories",
			Images:      []string{"/img/tote.jpg"},
			Variants: []variantSeed{
				{SKU: "TOTE-NAT", Color: "natural", PriceCents: 1299, Stock: 80},
			},
		},
		{
			Name:        "Wool Beanie",
			Description: "Warm ribbed knit beanie",
			Category:    "Accessories",
			Images:      []string{"/img/beanie.jpg"},
			Variants: []variantSeed{
				{SKU: "BEANIE-GRY", Color: "grey", PriceCents: 1599, Stock: 25},
				{SKU: "BEANIE-NVY", Color: "navy", PriceCents: 1599, Stock: 0},
			},
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, categoryIDs[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (email, username, password_hash, is_admin)
VALUES ($1, 'admin', $2, true)
ON CONFLICT (email) DO UPDATE SET is_admin = true
`
	_, err = pool.Exec(ctx, q, email, string(hash))
	return err
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name, slug string) (string, error) {
	const q = `
INSERT INTO categories (name, slug)
VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, name, slug).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM products WHERE name = $1`, p.Name).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		const ins = `
INSERT INTO products (name, description, images, category_id, active)
VALUES ($1, $2, $3, $4, true)
RETURNING id::text
`
		if err := pool.QueryRow(ctx, ins, p.Name, p.Description, p.Images, categoryID).Scan(&id); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	for _, v := range p.Variants {
		const q = `
INSERT INTO product_variants (product_id, sku, size, color, price_cents, stock)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
ON CONFLICT (sku) DO UPDATE SET price_cents = EXCLUDED.price_cents, stock = EXCLUDED.stock
`
		if _, err := pool.Exec(ctx, q, id, v.SKU, v.Size, v.Color, v.PriceCents, v.Stock); err != nil {
			return err
		}
	}
	return nil
}
