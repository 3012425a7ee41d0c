package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_orders_settled_total",
		Help: "Orders materialized from a paid checkout session",
	})

	DuplicateVerifies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_duplicate_verifies_total",
		Help: "Verify calls that hit an already-settled session",
	})

	ItemFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_item_failures_total",
		Help: "Order-item bulk inserts that failed after the order was created",
	})

	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_notify_failures_total",
		Help: "Confirmation emails that failed to send",
	})
)
