// Package metrics defines and registers the Prometheus collectors of the
// closet API. Collectors are registered with the default registry on import
// and exposed on GET /metrics. Per-request HTTP metrics live in the API
// middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every collector of the service, including the HTTP
// request metrics registered by the API middleware.
const Namespace = "closet"

// ── Catalog ───────────────────────────────────────────────────────────────────

// ProductsCreatedTotal counts listed products.
// Label:
//   - type: the product discriminator ("Clothing", "Jeans", "Shoes", "Accessory")
var ProductsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "products_created_total",
		Help:      "Total number of products created, by product type.",
	},
	[]string{"type"},
)

// ProductCacheTotal counts product detail cache lookups.
// Label:
//   - result: "hit" or "miss"
var ProductCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "product_cache_total",
		Help:      "Total number of product cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Orders ────────────────────────────────────────────────────────────────────

// OrdersPlacedTotal counts order placement attempts that reached the store.
// Label:
//   - outcome: "fulfilled", "pending", "conflict", "replayed" or "error"
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed, by outcome.",
	},
	[]string{"outcome"},
)

// FulfillmentRetriesTotal counts background fulfilment attempts.
// Label:
//   - result: "fulfilled", "compensated", "failed" or "abandoned"
var FulfillmentRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "fulfillment_retries_total",
		Help:      "Total number of fulfilment retries processed by the dispatcher.",
	},
	[]string{"result"},
)

// FulfillmentQueueDepth tracks orders waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var FulfillmentQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "fulfillment_queue_depth",
		Help:      "Current number of orders pending in each fulfilment worker channel.",
	},
	[]string{"worker_id"},
)
