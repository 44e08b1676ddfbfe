package domain

import "time"

// Variant is a purchasable SKU-level unit of a product with its own price
// and stock count. Stock is only ever decremented through the conditional
// decrement in the inventory repository.
type Variant struct {
	SKU        string `json:"sku"`
	Size       string `json:"size,omitempty"`
	Color      string `json:"color,omitempty"`
	PriceCents int64  `json:"priceCents"`
	Stock      int    `json:"stock"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Images      []string  `json:"images,omitempty"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	Variants    []Variant `json:"variants"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VariantBySKU returns the matching variant, or nil when the product does
// not carry the SKU.
func (p *Product) VariantBySKU(sku string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i]
		}
	}
	return nil
}
