package orders

import "time"

// LineItem is a priced snapshot of one SKU inside an order. Price and qty
// are frozen at creation time; later catalog changes do not touch them.
type LineItem struct {
	SKU            string `json:"sku"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
	SubtotalCents  int    `json:"subtotal_cents"`
}

type Order struct {
	Number        string         `json:"number"` // e.g. ORD-000042
	UserID        string         `json:"user_id"`
	Items         []LineItem     `json:"items"`
	SubtotalCents int            `json:"subtotal_cents"`
	TaxCents      int            `json:"tax_cents"`
	ShippingCents int            `json:"shipping_cents"`
	TotalCents    int            `json:"total_cents"`
	Status        Status         `json:"status"`
	PaymentStatus PaymentStatus  `json:"payment_status"`
	Shipping      ShippingMethod `json:"shipping_method"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CartLine is what checkout hands us: a SKU and how many.
type CartLine struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}
