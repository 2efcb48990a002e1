package redisx

import "time"

const (
	// Catalog read cache: catalog:item:{sku} -> Item JSON
	KeyCatalogItem = "catalog:item:%s"

	// Cache status order: order_status:{order_number} -> Order JSON
	KeyOrderStatus = "order_status:%s"
)

var (
	TTLCatalogItem = 60 * time.Second
	TTLStatusCache = 5 * time.Minute
)
