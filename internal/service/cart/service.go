package cart

import (
	"context"
	"errors"
	"strings"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	cartrepo "storefront-api/internal/repository/cart"
)

// Service owns cart mutations. Add and update re-validate the variant's live
// stock, but the price written to the cart line is a snapshot taken at add
// time; later price edits do not flow into existing carts.
type Service struct {
	repo     cartRepo
	products productRepo
	q        db.Querier
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID string, in cartrepo.AddItemInput) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, q db.Querier, cartID string) error
}

type productRepo interface {
	LookupVariant(ctx context.Context, productID, sku string) (*domain.Variant, error)
}

func New(repo cartrepo.Repository, products productRepo, q db.Querier) *Service {
	return &Service{repo: repo, products: products, q: q}
}

type AddItemInput struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

// Get returns the user's cart, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *Service) AddItem(ctx context.Context, userID string, in AddItemInput) (*domain.Cart, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.Validationf("productId required")
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil, domain.Validationf("sku required")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, domain.Validationf("quantity must be >= 1")
	}

	variant, err := s.products.LookupVariant(ctx, productID, sku)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validationf("invalid SKU")
		}
		return nil, err
	}
	if variant.Stock < qty {
		return nil, &domain.InsufficientStockError{SKU: sku}
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddItem(ctx, cart.ID, cartrepo.AddItemInput{
		ProductID:  productID,
		SKU:        sku,
		Quantity:   qty,
		PriceCents: variant.PriceCents,
	}); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.Validationf("quantity must be >= 1")
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := findItem(cart, itemID)
	if item == nil {
		return nil, domain.ErrNotFound
	}

	variant, err := s.products.LookupVariant(ctx, item.ProductID, item.SKU)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validationf("invalid SKU")
		}
		return nil, err
	}
	if variant.Stock < quantity {
		return nil, &domain.InsufficientStockError{SKU: item.SKU}
	}

	if err := s.repo.UpdateItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if findItem(cart, itemID) == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreate(ctx, userID)
}

// Clear empties the cart. Clearing an already-empty cart succeeds.
func (s *Service) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, s.q, cart.ID); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreate(ctx, userID)
}

func findItem(cart *domain.Cart, itemID string) *domain.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return &cart.Items[i]
		}
	}
	return nil
}
