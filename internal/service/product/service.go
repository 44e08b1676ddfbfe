package product

import (
	"context"
	"strings"

	"storefront-api/internal/domain"
	productrepo "storefront-api/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// ListResult carries one page of the catalog.
type ListResult struct {
	Page  int              `json:"page"`
	Pages int              `json:"pages"`
	Total int              `json:"total"`
	Items []domain.Product `json:"items"`
}

func (s *Service) List(ctx context.Context, f productrepo.ListFilter) (*ListResult, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 12
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	pages := (total + f.Limit - 1) / f.Limit
	if items == nil {
		items = []domain.Product{}
	}
	return &ListResult{Page: f.Page, Pages: pages, Total: total, Items: items}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// LookupVariant resolves a variant for cart validation.
func (s *Service) LookupVariant(ctx context.Context, productID, sku string) (*domain.Variant, error) {
	return s.repo.LookupVariant(ctx, productID, sku)
}

func (s *Service) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, domain.Validationf("product id required")
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(p domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Validationf("name required")
	}
	if len(p.Variants) == 0 {
		return domain.Validationf("at least one variant required")
	}
	seen := make(map[string]bool, len(p.Variants))
	for _, v := range p.Variants {
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			return domain.Validationf("variant sku required")
		}
		if seen[sku] {
			return domain.Validationf("duplicate variant sku %q", sku)
		}
		seen[sku] = true
		if v.PriceCents < 0 {
			return domain.Validationf("variant %s: price must be non-negative", sku)
		}
		if v.Stock < 0 {
			return domain.Validationf("variant %s: stock must be non-negative", sku)
		}
	}
	return nil
}
