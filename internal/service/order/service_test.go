package order

import (
	"context"
	"errors"
	"testing"

	"storefront-api/internal/domain"
)

type stubRepo struct {
	order             *domain.Order
	err               error
	lastStatus        *string
	lastPaymentStatus *string
	setStatusCalls    int
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubRepo) GetByIDForUser(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubRepo) ListByUser(_ context.Context, _ string) ([]domain.Order, error) {
	if s.order == nil {
		return nil, s.err
	}
	return []domain.Order{*s.order}, s.err
}

func (s *stubRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	if s.order == nil {
		return nil, s.err
	}
	return []domain.Order{*s.order}, s.err
}

func (s *stubRepo) SetStatus(_ context.Context, _ string, status, paymentStatus *string) (*domain.Order, error) {
	s.setStatusCalls++
	s.lastStatus = status
	s.lastPaymentStatus = paymentStatus
	return s.order, s.err
}

func TestSetStatusAcceptsAnyTransition(t *testing.T) {
	// the state machine is deliberately unvalidated: delivered -> pending,
	// cancelled -> shipped, all accepted
	transitions := []struct {
		from, to string
	}{
		{domain.OrderStatusDelivered, domain.OrderStatusPending},
		{domain.OrderStatusCancelled, domain.OrderStatusShipped},
		{domain.OrderStatusPending, domain.OrderStatusDelivered},
	}
	for _, tr := range transitions {
		repo := &stubRepo{order: &domain.Order{ID: "o1", Status: tr.from}}
		svc := &Service{repo: repo}
		_, err := svc.SetStatus(context.Background(), "o1", SetStatusInput{Status: tr.to})
		if err != nil {
			t.Fatalf("transition %s -> %s rejected: %v", tr.from, tr.to, err)
		}
		if repo.lastStatus == nil || *repo.lastStatus != tr.to {
			t.Fatalf("transition %s -> %s not forwarded", tr.from, tr.to)
		}
	}
}

func TestSetStatusRejectsUnknownValues(t *testing.T) {
	repo := &stubRepo{order: &domain.Order{ID: "o1"}}
	svc := &Service{repo: repo}

	_, err := svc.SetStatus(context.Background(), "o1", SetStatusInput{Status: "teleported"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	_, err = svc.SetStatus(context.Background(), "o1", SetStatusInput{PaymentStatus: "maybe"})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for unknown payment status, got %v", err)
	}
	if repo.setStatusCalls != 0 {
		t.Fatalf("repo must not be called on invalid input")
	}
}

func TestSetStatusRequiresAField(t *testing.T) {
	svc := &Service{repo: &stubRepo{}}
	_, err := svc.SetStatus(context.Background(), "o1", SetStatusInput{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetStatusPaymentOnly(t *testing.T) {
	repo := &stubRepo{order: &domain.Order{ID: "o1"}}
	svc := &Service{repo: repo}
	_, err := svc.SetStatus(context.Background(), "o1", SetStatusInput{PaymentStatus: domain.PaymentStatusPaid})
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if repo.lastStatus != nil {
		t.Fatalf("order status must stay unchanged")
	}
	if repo.lastPaymentStatus == nil || *repo.lastPaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("payment status not forwarded")
	}
}

func TestSetStatusNotFound(t *testing.T) {
	svc := &Service{repo: &stubRepo{err: domain.ErrNotFound}}
	_, err := svc.SetStatus(context.Background(), "missing", SetStatusInput{Status: domain.OrderStatusConfirmed})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
