package domain

import "time"

// Order lifecycle states. Transitions are admin-driven and unvalidated:
// any state may be set from any prior state.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment states, orthogonal to the order status.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// ValidOrderStatus reports whether s is a known order lifecycle state.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment state.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Order is the durable record of a completed purchase. Items and totals are
// immutable after creation; only Status and Payment.Status change afterwards.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Items           []OrderItem `json:"items"`
	Totals          Totals      `json:"totals"`
	ShippingAddress Address     `json:"shippingAddress"`
	Payment         Payment     `json:"payment"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// OrderItem is a denormalized snapshot of the variant at purchase time.
// Display fields are copied, not referenced, so the order stays self-contained
// even if the product is later edited or deleted.
type OrderItem struct {
	ProductID  string `json:"productId"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Size       string `json:"size,omitempty"`
	Color      string `json:"color,omitempty"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
}

// Totals carries checkout monetary amounts in cents.
// GrandTotalCents == SubtotalCents + ShippingCents + TaxCents at creation.
type Totals struct {
	SubtotalCents   int64 `json:"subtotalCents"`
	ShippingCents   int64 `json:"shippingCents"`
	TaxCents        int64 `json:"taxCents"`
	GrandTotalCents int64 `json:"grandTotalCents"`
}

type Address struct {
	FullName   string `json:"fullName,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Payment is a placeholder: status stays pending regardless of method,
// payment capture is out of scope.
type Payment struct {
	Method     string `json:"method"`
	Status     string `json:"status"`
	ProviderID string `json:"providerId,omitempty"`
}
