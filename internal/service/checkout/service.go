// Package checkout converts a user's cart into a durable order while
// consuming inventory, as one atomic unit of work: stock decrements across
// every line, order creation, and cart clearing commit together or not at
// all.
package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"storefront-api/internal/metrics"
	"storefront-api/internal/pricing"
)

const defaultPaymentMethod = "cod"

// maxTransientRetries bounds re-execution of the whole transaction on
// serialization/deadlock/connection failures. Business failures such as
// insufficient stock are never retried.
const maxTransientRetries = 3

type Service struct {
	tx        db.TxRunner
	carts     cartRepo
	products  productRepo
	inventory inventoryRepo
	orders    orderRepo
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

type cartRepo interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, q db.Querier, cartID string) error
}

type productRepo interface {
	GetByIDs(ctx context.Context, q db.Querier, ids []string) ([]domain.Product, error)
}

type inventoryRepo interface {
	Decrement(ctx context.Context, q db.Querier, productID, sku string, qty int) (bool, error)
}

type orderRepo interface {
	Create(ctx context.Context, q db.Querier, o domain.Order) (*domain.Order, error)
}

func New(tx db.TxRunner, carts cartRepo, products productRepo, inv inventoryRepo, orders orderRepo, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		tx:        tx,
		carts:     carts,
		products:  products,
		inventory: inv,
		orders:    orders,
		logger:    logger,
		metrics:   m,
	}
}

type Input struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

// Checkout runs the checkout transaction for the user's cart.
//
// Inside one database transaction it conditionally decrements stock for
// every cart line, re-reads the touched products to snapshot display fields
// into order items, creates the order, and clears the cart. The first line
// whose decrement is not applied aborts the transaction with
// InsufficientStockError; the rollback leaves no trace of prior decrements.
// Totals come from the cart's snapshot prices, not live variant prices.
func (s *Service) Checkout(ctx context.Context, userID string, in Input) (*domain.Order, error) {
	order, err := s.checkout(ctx, userID, in)
	s.observe(err)
	return order, err
}

func (s *Service) checkout(ctx context.Context, userID string, in Input) (*domain.Order, error) {
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = defaultPaymentMethod
	}
	if err := validateAddress(in.ShippingAddress); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	totals := pricing.ComputeTotals(cart.Items)

	var order *domain.Order
	run := func() error {
		return s.tx.WithinTx(ctx, func(q db.Querier) error {
			for _, item := range cart.Items {
				applied, err := s.inventory.Decrement(ctx, q, item.ProductID, item.SKU, item.Quantity)
				if err != nil {
					return err
				}
				if !applied {
					return &domain.InsufficientStockError{SKU: item.SKU}
				}
			}

			items, err := s.buildOrderItems(ctx, q, cart.Items)
			if err != nil {
				return err
			}

			order, err = s.orders.Create(ctx, q, domain.Order{
				UserID:          userID,
				Items:           items,
				Totals:          totals,
				ShippingAddress: in.ShippingAddress,
				Payment: domain.Payment{
					Method: method,
					Status: domain.PaymentStatusPending,
				},
				Status: domain.OrderStatusPending,
			})
			if err != nil {
				return err
			}

			return s.carts.Clear(ctx, q, cart.ID)
		})
	}

	if err := s.retryTransient(ctx, run); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("checkout failed")
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Str("order_id", order.ID).
		Int64("grand_total_cents", order.Totals.GrandTotalCents).Msg("checkout completed")
	return order, nil
}

// buildOrderItems re-reads the touched products inside the transaction and
// copies name/size/color into the order snapshot, so the order reflects
// product state at the moment of purchase even if the product is edited or
// deleted later.
func (s *Service) buildOrderItems(ctx context.Context, q db.Querier, cartItems []domain.CartItem) ([]domain.OrderItem, error) {
	ids := make([]string, 0, len(cartItems))
	seen := make(map[string]bool, len(cartItems))
	for _, it := range cartItems {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	products, err := s.products.GetByIDs(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]domain.OrderItem, 0, len(cartItems))
	for _, it := range cartItems {
		p, ok := byID[it.ProductID]
		if !ok {
			// The decrement applied, so the variant existed moments ago.
			// Losing the product here means it was deleted mid-transaction;
			// abort rather than write a half-described order.
			return nil, &domain.InsufficientStockError{SKU: it.SKU}
		}
		item := domain.OrderItem{
			ProductID:  it.ProductID,
			SKU:        it.SKU,
			Name:       p.Name,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
		}
		if v := p.VariantBySKU(it.SKU); v != nil {
			item.Size = v.Size
			item.Color = v.Color
		}
		items = append(items, item)
	}
	return items, nil
}

// retryTransient re-runs the transaction on transient store failures with
// exponential backoff. Everything else aborts immediately.
func (s *Service) retryTransient(ctx context.Context, run func() error) error {
	op := func() error {
		err := run()
		if err == nil {
			return nil
		}
		if db.Transient(err) {
			s.logger.Warn().Err(err).Msg("transient store error during checkout, retrying")
			return err
		}
		return backoff.Permanent(err)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxTransientRetries), ctx)
	return backoff.Retry(op, policy)
}

func validateAddress(a domain.Address) error {
	if strings.TrimSpace(a.Line1) == "" {
		return domain.Validationf("shipping address line1 required")
	}
	if strings.TrimSpace(a.City) == "" {
		return domain.Validationf("shipping address city required")
	}
	return nil
}

func (s *Service) observe(err error) {
	if s.metrics == nil {
		return
	}
	result := metrics.CheckoutOK
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmptyCart):
		result = metrics.CheckoutEmptyCart
	case isInsufficientStock(err):
		result = metrics.CheckoutInsufficientStock
	default:
		result = metrics.CheckoutError
	}
	s.metrics.Checkouts.WithLabelValues(result).Inc()
}

func isInsufficientStock(err error) bool {
	var ise *domain.InsufficientStockError
	return errors.As(err, &ise)
}
