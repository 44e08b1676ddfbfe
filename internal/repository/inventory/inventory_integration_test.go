package inventory

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"storefront-api/internal/migrate"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func seedVariant(ctx context.Context, t *testing.T, pool *pgxpool.Pool, sku string, stock int) string {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, cart_items, carts, product_variants, products, categories, tokens, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	var productID string
	if err := pool.QueryRow(ctx, `INSERT INTO products (name) VALUES ('Tee') RETURNING id::text`).Scan(&productID); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO product_variants (product_id, sku, size, color, price_cents, stock) VALUES ($1, $2, 'M', 'black', 1999, $3)`, productID, sku, stock); err != nil {
		t.Fatalf("insert variant: %v", err)
	}
	return productID
}

func TestDecrementAppliesAndStopsAtZero(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	productID := seedVariant(ctx, t, pool, "SKU-TEE-M", 3)

	repo := NewPostgres(zerolog.Nop())

	applied, err := repo.Decrement(ctx, pool, productID, "SKU-TEE-M", 2)
	if err != nil || !applied {
		t.Fatalf("Decrement(2): applied=%v err=%v", applied, err)
	}
	applied, err = repo.Decrement(ctx, pool, productID, "SKU-TEE-M", 2)
	if err != nil {
		t.Fatalf("Decrement(2) second: %v", err)
	}
	if applied {
		t.Fatalf("decrement past zero must not apply")
	}
	stock, err := repo.Stock(ctx, pool, productID, "SKU-TEE-M")
	if err != nil || stock != 1 {
		t.Fatalf("stock=%d err=%v, want 1", stock, err)
	}
}

func TestDecrementUnknownSKUNotApplied(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	productID := seedVariant(ctx, t, pool, "SKU-TEE-M", 3)

	repo := NewPostgres(zerolog.Nop())
	applied, err := repo.Decrement(ctx, pool, productID, "SKU-MISSING", 1)
	if err != nil {
		t.Fatalf("Decrement unknown sku: %v", err)
	}
	if applied {
		t.Fatalf("unknown sku must report not applied")
	}
}

func TestConcurrentDecrementsNeverOversell(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	const initial = 10
	productID := seedVariant(ctx, t, pool, "SKU-TEE-M", initial)
	repo := NewPostgres(zerolog.Nop())

	const workers = 25
	var wg sync.WaitGroup
	appliedCh := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Decrement(ctx, pool, productID, "SKU-TEE-M", 1)
			if err != nil {
				t.Errorf("Decrement: %v", err)
				return
			}
			if ok {
				appliedCh <- 1
			}
		}()
	}
	wg.Wait()
	close(appliedCh)

	applied := 0
	for range appliedCh {
		applied++
	}
	if applied != initial {
		t.Fatalf("applied %d decrements, want exactly %d", applied, initial)
	}
	stock, err := repo.Stock(ctx, pool, productID, "SKU-TEE-M")
	if err != nil || stock != 0 {
		t.Fatalf("stock=%d err=%v, want 0", stock, err)
	}
}
