package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RishiBuilds/soledrip-xr-platform/internal/adapter/http/middleware"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/logging"
)

func NewRouter(h *SettlementHandler, wh *WebhookHandler, th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	v1 := r.Group("/v1")
	{
		// Storefront endpoints. Verify is deliberately unauthenticated:
		// the success page calls it with nothing but the session id, and
		// the provider session is the authority on what it is worth.
		v1.POST("/checkout/session", h.CreateCheckout)
		v1.POST("/checkout/verify", h.VerifyOrder)
		v1.POST("/webhooks/stripe", wh.HandleStripe)

		v1.GET("/orders/:id", authz.Require("orders.read"), h.GetOrderByID)
	}

	return r
}
