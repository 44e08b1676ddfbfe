package order

import (
	"context"
	"strings"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
)

type Service struct {
	repo orderRepo
}

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, status, paymentStatus *string) (*domain.Order, error)
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id, userID string) (*domain.Order, error) {
	return s.repo.GetByIDForUser(ctx, id, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

type SetStatusInput struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

// SetStatus updates the order and/or payment status. Values must belong to
// the known state sets, but any transition between them is accepted: the
// lifecycle is admin-driven and deliberately unvalidated.
func (s *Service) SetStatus(ctx context.Context, orderID string, in SetStatusInput) (*domain.Order, error) {
	var status, paymentStatus *string
	if v := strings.TrimSpace(in.Status); v != "" {
		if !domain.ValidOrderStatus(v) {
			return nil, domain.Validationf("unknown order status %q", v)
		}
		status = &v
	}
	if v := strings.TrimSpace(in.PaymentStatus); v != "" {
		if !domain.ValidPaymentStatus(v) {
			return nil, domain.Validationf("unknown payment status %q", v)
		}
		paymentStatus = &v
	}
	if status == nil && paymentStatus == nil {
		return nil, domain.Validationf("status or paymentStatus required")
	}
	return s.repo.SetStatus(ctx, orderID, status, paymentStatus)
}
