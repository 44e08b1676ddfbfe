package category

import (
	"context"
	"strings"

	"storefront-api/internal/domain"
	categoryrepo "storefront-api/internal/repository/category"
)

type Service struct {
	repo categoryrepo.Repository
}

func New(repo categoryrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

func (s *Service) Create(ctx context.Context, name, slug string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("name required")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = strings.ReplaceAll(strings.ToLower(name), " ", "-")
	}
	return s.repo.Create(ctx, domain.Category{Name: name, Slug: slug})
}
