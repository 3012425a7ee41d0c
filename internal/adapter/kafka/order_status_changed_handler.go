package kafka

import (
	"context"
	"fmt"

	domain "github.com/RishiBuilds/soledrip-xr-platform/internal/entity"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

// OrderStatusChangedHandler applies back-office status transitions
// (shipped/delivered/cancelled) to settled orders. Settlement itself only
// ever writes "paid"; everything after that arrives on this feed.
type OrderStatusChangedHandler struct {
	Repo  usecase.OrderRepo
	Cache usecase.OrderCache // optional
}

func NewOrderStatusChangedHandler(repo usecase.OrderRepo, cache usecase.OrderCache) *OrderStatusChangedHandler {
	return &OrderStatusChangedHandler{Repo: repo, Cache: cache}
}

func (h *OrderStatusChangedHandler) Handle(ctx context.Context, ev usecase.OrderStatusChangedMsg) error {
	var newStatus domain.Status
	switch ev.Status {
	case "SHIPPED":
		newStatus = domain.StatusShipped
	case "DELIVERED":
		newStatus = domain.StatusDelivered
	case "CANCELLED":
		newStatus = domain.StatusCancelled
	default:
		return fmt.Errorf("unknown order status %q", ev.Status)
	}

	if err := h.Repo.UpdateStatus(ctx, ev.OrderID, newStatus); err != nil {
		return err
	}

	// Cache best-effort
	if h.Cache != nil {
		_ = h.Cache.SetStatus(ctx, ev.OrderID, string(newStatus))
	}
	return nil
}
