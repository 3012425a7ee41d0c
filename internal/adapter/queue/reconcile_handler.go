package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/RishiBuilds/soledrip-xr-platform/internal/logging"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

// ReconcileHandler repairs settlements whose non-fatal steps failed: it
// backfills order items from a re-fetched session and resends failed
// confirmation emails. Safe to replay; both repairs check current state
// before writing.
type ReconcileHandler struct {
	provider usecase.CheckoutProvider
	repo     usecase.OrderRepo
	notifier *usecase.ConfirmOrder
}

func NewReconcileHandler(provider usecase.CheckoutProvider, repo usecase.OrderRepo, notifier *usecase.ConfirmOrder) *ReconcileHandler {
	return &ReconcileHandler{provider: provider, repo: repo, notifier: notifier}
}

// HandleReconcile is intended to be used with queue.JSONHandler[usecase.ReconcileMsg].
func (h *ReconcileHandler) HandleReconcile(ctx context.Context, msg usecase.ReconcileMsg) error {
	l := logging.FromCtx(ctx).With("order_id", msg.OrderID, "kind", msg.Kind)
	l.Info("reconcile started", "reason", msg.Reason)

	switch msg.Kind {
	case usecase.ReconcileItems:
		return h.backfillItems(ctx, msg)
	case usecase.ReconcileEmail:
		return h.resendConfirmation(ctx, msg)
	default:
		// Unknown kinds are dropped, not requeued forever.
		l.Warn("unknown reconcile kind")
		return nil
	}
}

func (h *ReconcileHandler) backfillItems(ctx context.Context, msg usecase.ReconcileMsg) error {
	existing, err := h.repo.ListItems(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	if len(existing) > 0 {
		// A concurrent replay already repaired this order.
		return nil
	}

	session, err := h.provider.GetSession(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("refetch session: %w", err)
	}
	items := usecase.BuildOrderItems(msg.OrderID, session)
	if len(items) == 0 {
		logging.FromCtx(ctx).Warn("session has no line items to backfill", "order_id", msg.OrderID)
		return nil
	}
	if err := h.repo.CreateItems(ctx, items); err != nil {
		return fmt.Errorf("backfill items: %w", err)
	}
	logging.FromCtx(ctx).Info("items backfilled", "order_id", msg.OrderID, "count", len(items))
	return nil
}

func (h *ReconcileHandler) resendConfirmation(ctx context.Context, msg usecase.ReconcileMsg) error {
	if h.notifier == nil {
		return nil
	}
	order, err := h.repo.GetByID(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	items, err := h.repo.ListItems(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	err = h.notifier.Execute(ctx, usecase.ConfirmOrderInput{
		OrderID:  order.ID,
		Email:    order.Email,
		Items:    items,
		Subtotal: order.Subtotal,
		Shipping: order.Shipping,
		Tax:      order.Tax,
		Total:    order.Total,
	})
	if errors.Is(err, usecase.ErrNoRecipient) {
		// No address to send to; requeueing cannot fix that.
		return nil
	}
	return err
}
