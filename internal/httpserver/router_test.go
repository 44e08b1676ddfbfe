package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront-api/internal/domain"
	checkoutsvc "storefront-api/internal/service/checkout"
	usersvc "storefront-api/internal/service/user"
)

type stubUsers struct {
	user *domain.User
	err  error
}

func (s *stubUsers) Signup(_ context.Context, _ usersvc.SignupInput) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubUsers) Login(_ context.Context, _, _ string) (*domain.User, string, string, error) {
	return s.user, "access", "refresh", s.err
}

func (s *stubUsers) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != "good-token" {
		return nil, domain.ErrNotFound
	}
	return s.user, nil
}

func (s *stubUsers) AccessTTLSeconds() int { return 3600 }

type stubCheckout struct {
	order  *domain.Order
	err    error
	userID string
}

func (s *stubCheckout) Checkout(_ context.Context, userID string, _ checkoutsvc.Input) (*domain.Order, error) {
	s.userID = userID
	return s.order, s.err
}

func newTestRouter(users userService, checkout checkoutService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return buildRouter(zerolog.Nop(), nil, Deps{
		Users:    users,
		Checkout: checkout,
	}, "")
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := newTestRouter(&stubUsers{}, &stubCheckout{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newTestRouter(&stubUsers{user: &domain.User{ID: "u1"}}, &stubCheckout{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestAdminMiddleware_Forbidden(t *testing.T) {
	router := newTestRouter(&stubUsers{user: &domain.User{ID: "u1"}}, &stubCheckout{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/admin/all", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestCheckoutHandler_Created(t *testing.T) {
	checkout := &stubCheckout{order: &domain.Order{ID: "o1", UserID: "u1"}}
	router := newTestRouter(&stubUsers{user: &domain.User{ID: "u1"}}, checkout)

	body := `{"shippingAddress":{"fullName":"Ann","line1":"1 Main St","city":"Springfield","country":"US"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if checkout.userID != "u1" {
		t.Fatalf("expected checkout for user u1, got %q", checkout.userID)
	}
	var got domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "o1" {
		t.Fatalf("expected order o1, got %q", got.ID)
	}
}

func TestCheckoutHandler_EmptyCart(t *testing.T) {
	checkout := &stubCheckout{err: domain.ErrEmptyCart}
	router := newTestRouter(&stubUsers{user: &domain.User{ID: "u1"}}, checkout)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Cart is empty") {
		t.Fatalf("expected empty cart message, got %s", rec.Body.String())
	}
}

func TestCheckoutHandler_InsufficientStock(t *testing.T) {
	checkout := &stubCheckout{err: &domain.InsufficientStockError{SKU: "SKU-9"}}
	router := newTestRouter(&stubUsers{user: &domain.User{ID: "u1"}}, checkout)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "SKU-9") {
		t.Fatalf("expected offending sku in response, got %s", rec.Body.String())
	}
}
