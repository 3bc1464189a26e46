package middleware

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/closetshop/closet-api/pkg/metrics"
)

// The collectors can only be registered once per process, while a router may
// be built many times.
var requestMetrics = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metrics.Namespace,
		Subsystem:  "http",
		Registerer: prometheus.DefaultRegisterer,
		// Unmatched paths would otherwise create one series per URL.
		DoNotUseRequestPathFor404: true,
	})
})

// Metrics records request count, latency and sizes by route pattern.
//
// It must run outside RequestLogger: errors are rendered there, so the
// recorded code is the one the client received.
func Metrics() echo.MiddlewareFunc {
	return requestMetrics()
}
