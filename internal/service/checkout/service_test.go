package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"storefront-api/internal/metrics"
)

// memStore mimics the transactional store: stock decrements, order creation,
// and cart clearing all apply to its maps, and the stub tx runner restores a
// snapshot when the transaction function fails.
type memStore struct {
	stock   map[string]int // sku -> stock
	orders  []domain.Order
	cleared int
}

func (m *memStore) snapshot() memStore {
	stock := make(map[string]int, len(m.stock))
	for k, v := range m.stock {
		stock[k] = v
	}
	return memStore{stock: stock, orders: append([]domain.Order(nil), m.orders...), cleared: m.cleared}
}

func (m *memStore) restore(s memStore) {
	m.stock = s.stock
	m.orders = s.orders
	m.cleared = s.cleared
}

type stubTx struct {
	store    *memStore
	attempts int
	failWith []error // per-attempt transaction error injected before fn runs
}

func (t *stubTx) WithinTx(_ context.Context, fn func(q db.Querier) error) error {
	attempt := t.attempts
	t.attempts++
	if attempt < len(t.failWith) && t.failWith[attempt] != nil {
		return t.failWith[attempt]
	}
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type stubCartRepo struct {
	store *memStore
	cart  *domain.Cart
	err   error
}

func (s *stubCartRepo) GetByUser(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartRepo) Clear(_ context.Context, _ db.Querier, _ string) error {
	s.store.cleared++
	return nil
}

type stubProductRepo struct {
	products []domain.Product
	err      error
}

func (s *stubProductRepo) GetByIDs(_ context.Context, _ db.Querier, _ []string) ([]domain.Product, error) {
	return s.products, s.err
}

type stubInventoryRepo struct {
	store *memStore
	err   error
	calls int
}

func (s *stubInventoryRepo) Decrement(_ context.Context, _ db.Querier, _, sku string, qty int) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	stock, ok := s.store.stock[sku]
	if !ok || stock < qty {
		return false, nil
	}
	s.store.stock[sku] = stock - qty
	return true, nil
}

type stubOrderRepo struct {
	store *memStore
}

func (s *stubOrderRepo) Create(_ context.Context, _ db.Querier, o domain.Order) (*domain.Order, error) {
	o.ID = "order-1"
	s.store.orders = append(s.store.orders, o)
	return &o, nil
}

type fixture struct {
	svc       *Service
	store     *memStore
	tx        *stubTx
	carts     *stubCartRepo
	products  *stubProductRepo
	inventory *stubInventoryRepo
}

func newFixture(cart *domain.Cart, cartErr error, products []domain.Product, stock map[string]int) *fixture {
	store := &memStore{stock: stock}
	tx := &stubTx{store: store}
	carts := &stubCartRepo{store: store, cart: cart, err: cartErr}
	prods := &stubProductRepo{products: products}
	inv := &stubInventoryRepo{store: store}
	orders := &stubOrderRepo{store: store}
	m := metrics.New(prometheus.NewRegistry())
	svc := New(tx, carts, prods, inv, orders, zerolog.Nop(), m)
	return &fixture{svc: svc, store: store, tx: tx, carts: carts, products: prods, inventory: inv}
}

func testAddress() domain.Address {
	return domain.Address{FullName: "Jo Doe", Line1: "1 Main St", City: "Springfield", Country: "US"}
}

func twoItemCart() *domain.Cart {
	return &domain.Cart{
		ID:     "cart-1",
		UserID: "user-1",
		Items: []domain.CartItem{
			{ID: "i1", CartID: "cart-1", ProductID: "p1", SKU: "SKU-A", Quantity: 2, PriceCents: 6000},
			{ID: "i2", CartID: "cart-1", ProductID: "p2", SKU: "SKU-B", Quantity: 1, PriceCents: 5000},
		},
	}
}

func catalog() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Tee", Variants: []domain.Variant{{SKU: "SKU-A", Size: "M", Color: "black", PriceCents: 9999, Stock: 10}}},
		{ID: "p2", Name: "Mug", Variants: []domain.Variant{{SKU: "SKU-B", Color: "white", PriceCents: 5000, Stock: 5}}},
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(&domain.Cart{ID: "cart-1", UserID: "user-1"}, nil, nil, map[string]int{})
	_, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress()})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if f.tx.attempts != 0 {
		t.Fatalf("empty cart must be rejected before any transaction, attempts=%d", f.tx.attempts)
	}
}

func TestCheckoutMissingCartIsEmptyCart(t *testing.T) {
	f := newFixture(nil, domain.ErrNotFound, nil, map[string]int{})
	_, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress()})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutSuccess(t *testing.T) {
	f := newFixture(twoItemCart(), nil, catalog(), map[string]int{"SKU-A": 10, "SKU-B": 5})

	order, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress()})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if order.Status != domain.OrderStatusPending {
		t.Fatalf("status = %q, want pending", order.Status)
	}
	if order.Payment.Method != "cod" || order.Payment.Status != domain.PaymentStatusPending {
		t.Fatalf("payment = %+v, want cod/pending", order.Payment)
	}

	// subtotal 110.00 -> free shipping, 10% tax
	want := domain.Totals{SubtotalCents: 11000, ShippingCents: 0, TaxCents: 1100, GrandTotalCents: 12100}
	if order.Totals != want {
		t.Fatalf("totals = %+v, want %+v", order.Totals, want)
	}

	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	first := order.Items[0]
	if first.Name != "Tee" || first.Size != "M" || first.Color != "black" {
		t.Fatalf("order item not denormalized: %+v", first)
	}
	// cart snapshot price wins over the live variant price (9999)
	if first.PriceCents != 6000 {
		t.Fatalf("order item price = %d, want cart snapshot 6000", first.PriceCents)
	}

	if f.store.stock["SKU-A"] != 8 || f.store.stock["SKU-B"] != 4 {
		t.Fatalf("stock not decremented: %+v", f.store.stock)
	}
	if f.store.cleared != 1 {
		t.Fatalf("cart cleared %d times, want 1", f.store.cleared)
	}
}

func TestCheckoutDefaultsPaymentMethod(t *testing.T) {
	f := newFixture(twoItemCart(), nil, catalog(), map[string]int{"SKU-A": 10, "SKU-B": 5})
	order, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress(), PaymentMethod: "  "})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if order.Payment.Method != "cod" {
		t.Fatalf("payment method = %q, want cod", order.Payment.Method)
	}
}

func TestCheckoutInsufficientStockRollsBackEverything(t *testing.T) {
	// SKU-A has plenty, SKU-B has none: A's decrement applies first and must
	// be rolled back when B aborts the transaction.
	f := newFixture(twoItemCart(), nil, catalog(), map[string]int{"SKU-A": 10, "SKU-B": 0})

	_, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress()})
	var ise *domain.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.SKU != "SKU-B" {
		t.Fatalf("offending SKU = %q, want SKU-B", ise.SKU)
	}

	if f.store.stock["SKU-A"] != 10 {
		t.Fatalf("SKU-A stock = %d, want 10 (rolled back)", f.store.stock["SKU-A"])
	}
	if len(f.store.orders) != 0 {
		t.Fatalf("no order must be created, got %d", len(f.store.orders))
	}
	if f.store.cleared != 0 {
		t.Fatalf("cart must be untouched, cleared=%d", f.store.cleared)
	}
	if f.tx.attempts != 1 {
		t.Fatalf("insufficient stock must not be retried, attempts=%d", f.tx.attempts)
	}
}

func TestCheckoutUnknownSKUFailsLikeSoldOut(t *testing.T) {
	cart := twoItemCart()
	cart.Items[1].SKU = "SKU-GONE"
	f := newFixture(cart, nil, catalog(), map[string]int{"SKU-A": 10})

	_, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress()})
	var ise *domain.InsufficientStockError
	if !errors.As(err, &ise) || ise.SKU != "SKU-GONE" {
		t.Fatalf("expected InsufficientStockError for SKU-GONE, got %v", err)
	}
	if f.store.stock["SKU-A"] != 10 {
		t.Fatalf("SKU-A stock = %d, want 10", f.store.stock["SKU-A"])
	}
}

func TestCheckoutRejectsMalformedAddress(t *testing.T) {
	f := newFixture(twoItemCart(), nil, catalog(), map[string]int{"SKU-A": 10, "SKU-B": 5})
	_, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: domain.Address{City: "Springfield"}})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.inventory.calls != 0 {
		t.Fatalf("validation must run before any decrement, calls=%d", f.inventory.calls)
	}
}

func TestCheckoutRetriesTransientFailures(t *testing.T) {
	f := newFixture(twoItemCart(), nil, catalog(), map[string]int{"SKU-A": 10, "SKU-B": 5})
	f.tx.failWith = []error{&pgconn.PgError{Code: "40001"}}

	order, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress()})
	if err != nil {
		t.Fatalf("Checkout after transient failure: %v", err)
	}
	if order == nil || len(f.store.orders) != 1 {
		t.Fatalf("expected order after retry")
	}
	if f.tx.attempts != 2 {
		t.Fatalf("attempts = %d, want 2", f.tx.attempts)
	}
}

func TestCheckoutDoesNotRetryPermanentFailures(t *testing.T) {
	f := newFixture(twoItemCart(), nil, catalog(), map[string]int{"SKU-A": 10, "SKU-B": 5})
	f.inventory.err = errors.New("constraint violated")

	_, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress()})
	if err == nil {
		t.Fatalf("expected error")
	}
	if f.tx.attempts != 1 {
		t.Fatalf("permanent failure must not be retried, attempts=%d", f.tx.attempts)
	}
}

func TestCheckoutAbortsWhenProductVanishes(t *testing.T) {
	f := newFixture(twoItemCart(), nil, nil, map[string]int{"SKU-A": 10, "SKU-B": 5})

	_, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress()})
	if err == nil {
		t.Fatalf("expected error when products cannot be re-read")
	}
	if f.store.stock["SKU-A"] != 10 || f.store.stock["SKU-B"] != 5 {
		t.Fatalf("stock must be rolled back: %+v", f.store.stock)
	}
	if len(f.store.orders) != 0 {
		t.Fatalf("no order must be created")
	}
}

func TestCheckoutOrderSnapshotIndependentOfProductEdits(t *testing.T) {
	f := newFixture(twoItemCart(), nil, catalog(), map[string]int{"SKU-A": 10, "SKU-B": 5})
	order, err := f.svc.Checkout(context.Background(), "user-1", Input{ShippingAddress: testAddress()})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// rename the product after checkout; the snapshot must not change
	f.products.products[0].Name = "Renamed"
	if order.Items[0].Name != "Tee" {
		t.Fatalf("order item name = %q, want snapshot Tee", order.Items[0].Name)
	}
}
