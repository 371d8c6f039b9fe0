package domain

import "time"

// ProductVariant is a purchasable SKU-level unit carrying its own price.
type ProductVariant struct {
	ID         int64     `json:"id"`
	SKU        string    `json:"sku"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"priceCents"`
	CreatedAt  time.Time `json:"createdAt"`
}
