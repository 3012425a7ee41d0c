package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/RishiBuilds/soledrip-xr-platform/internal/entity"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/logging"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/observ"
)

const sessionScope = "session"

type VerifyOrderInput struct {
	SessionID string
}

type VerifyOrderOutput struct {
	OrderID          string
	AlreadyProcessed bool
}

// VerifyOrder settles a completed checkout session exactly once: it
// re-fetches the session from the provider, checks payment status, and
// materializes an Order plus its items unless one already exists for the
// session id. Item insertion and the confirmation email are best-effort
// once the order row is durable.
type VerifyOrder struct {
	provider CheckoutProvider
	repo     OrderRepo
	idem     IdempotencyStore
	notifier *ConfirmOrder
	events   SettlementEvents
}

func NewVerifyOrder(provider CheckoutProvider, repo OrderRepo, idem IdempotencyStore, notifier *ConfirmOrder, events SettlementEvents) *VerifyOrder {
	return &VerifyOrder{provider: provider, repo: repo, idem: idem, notifier: notifier, events: events}
}

func (uc *VerifyOrder) Execute(ctx context.Context, in VerifyOrderInput) (VerifyOrderOutput, error) {
	l := logging.FromCtx(ctx).With("session_id", in.SessionID)
	l.Info("verify started")

	if in.SessionID == "" {
		return VerifyOrderOutput{}, fmt.Errorf("%w: missing session id", ErrInvalidRequest)
	}

	// Fast path: a prior settlement remembered in the idempotency store.
	// Errors here are ignored; the store lookup below is authoritative.
	if uc.idem != nil {
		if id, ok, _ := uc.idem.Recall(ctx, sessionScope, in.SessionID); ok {
			l.Info("order already settled", "order_id", id, "source", "cache")
			observ.DuplicateVerifies.Inc()
			return VerifyOrderOutput{OrderID: id, AlreadyProcessed: true}, nil
		}
	}

	session, err := uc.provider.GetSession(ctx, in.SessionID)
	if err != nil {
		return VerifyOrderOutput{}, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	l.Info("session retrieved", "payment_status", session.PaymentStatus, "email", session.Email)

	// no_payment_required settles too: a fully-discounted order is still
	// an order.
	if session.PaymentStatus != "paid" && session.PaymentStatus != "no_payment_required" {
		return VerifyOrderOutput{}, fmt.Errorf("%w: status %q", ErrPaymentIncomplete, session.PaymentStatus)
	}

	if existing, err := uc.repo.FindBySessionID(ctx, in.SessionID); err == nil && existing != nil {
		l.Info("order already settled", "order_id", existing.ID, "source", "store")
		observ.DuplicateVerifies.Inc()
		uc.remember(ctx, in.SessionID, existing.ID)
		return VerifyOrderOutput{OrderID: existing.ID, AlreadyProcessed: true}, nil
	}

	order := buildOrder(session)
	if err := uc.repo.Create(ctx, order); err != nil {
		// A unique-key conflict on the session id means a concurrent
		// verify won the race; the existing order is the answer.
		if errors.Is(err, domain.ErrDuplicateSession) {
			existing, ferr := uc.repo.FindBySessionID(ctx, in.SessionID)
			if ferr != nil || existing == nil {
				return VerifyOrderOutput{}, fmt.Errorf("%w: conflict re-query: %v", ErrPersistence, ferr)
			}
			l.Info("order already settled", "order_id", existing.ID, "source", "conflict")
			observ.DuplicateVerifies.Inc()
			uc.remember(ctx, in.SessionID, existing.ID)
			return VerifyOrderOutput{OrderID: existing.ID, AlreadyProcessed: true}, nil
		}
		l.Error("order insert failed", "error", err.Error())
		return VerifyOrderOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	l.Info("order created", "order_id", order.ID)
	observ.OrdersSettled.Inc()

	items := BuildOrderItems(order.ID, session)
	if len(items) == 0 {
		// A session without line items is anomalous but not fatal.
		l.Warn("session has no line items", "order_id", order.ID)
	} else if err := uc.repo.CreateItems(ctx, items); err != nil {
		// The order is the source of truth; items can be backfilled.
		l.Error("item insert failed (non-fatal)", "order_id", order.ID, "error", err.Error())
		observ.ItemFailures.Inc()
		uc.reconcile(ctx, ReconcileMsg{Kind: ReconcileItems, OrderID: order.ID, SessionID: in.SessionID, Reason: err.Error()})
	} else {
		l.Info("items created", "order_id", order.ID, "count", len(items))
	}

	if uc.notifier != nil {
		if err := uc.notifier.Execute(ctx, ConfirmOrderInput{
			OrderID:  order.ID,
			Email:    order.Email,
			Items:    items,
			Subtotal: order.Subtotal,
			Shipping: order.Shipping,
			Tax:      order.Tax,
			Total:    order.Total,
		}); err != nil {
			l.Error("confirmation failed (non-fatal)", "order_id", order.ID, "error", err.Error())
			observ.NotifyFailures.Inc()
			uc.reconcile(ctx, ReconcileMsg{Kind: ReconcileEmail, OrderID: order.ID, SessionID: in.SessionID, Reason: err.Error()})
		} else {
			l.Info("confirmation sent", "order_id", order.ID)
		}
	}

	if uc.events != nil {
		if err := uc.events.PublishSettled(ctx, SettledMsg{
			OrderID:   order.ID,
			SessionID: in.SessionID,
			Email:     order.Email,
			Total:     order.Total.StringFixed(2),
		}); err != nil {
			l.Error("settled event publish failed (non-fatal)", "order_id", order.ID, "error", err.Error())
		}
	}

	uc.remember(ctx, in.SessionID, order.ID)
	return VerifyOrderOutput{OrderID: order.ID}, nil
}

func (uc *VerifyOrder) remember(ctx context.Context, sessionID, orderID string) {
	if uc.idem != nil {
		_ = uc.idem.Remember(ctx, sessionScope, sessionID, orderID)
	}
}

func (uc *VerifyOrder) reconcile(ctx context.Context, msg ReconcileMsg) {
	if uc.events != nil {
		if err := uc.events.PublishReconcile(ctx, msg); err != nil {
			logging.FromCtx(ctx).Error("reconcile publish failed", "order_id", msg.OrderID, "kind", msg.Kind, "error", err.Error())
		}
	}
}

func buildOrder(s *CheckoutSnapshot) *domain.Order {
	return &domain.Order{
		ID:                    uuid.NewString(),
		Email:                 s.Email,
		Status:                domain.StatusPaid,
		Subtotal:              domain.FromMinorUnits(s.AmountSubtotal),
		Shipping:              domain.FromMinorUnits(s.AmountShipping),
		Tax:                   domain.FromMinorUnits(s.AmountTax),
		Total:                 domain.FromMinorUnits(s.AmountTotal),
		StripeSessionID:       s.ID,
		StripePaymentIntentID: s.PaymentIntentID,
		ShippingAddr:          s.Shipping,
		CreatedAt:             time.Now().UTC(),
	}
}

// BuildOrderItems reconstructs the session's line items 1:1. Quantity
// defaults to 1; display name falls back to the line description. Exported
// for the reconciliation worker, which rebuilds items from a re-fetched
// session.
func BuildOrderItems(orderID string, s *CheckoutSnapshot) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(s.Items))
	for _, li := range s.Items {
		qty := li.Quantity
		if qty < 1 {
			qty = 1
		}
		name := li.ProductName
		if name == "" {
			name = li.Description
		}
		if name == "" {
			name = "Product"
		}
		items = append(items, domain.OrderItem{
			OrderID:      orderID,
			ProductName:  name,
			Quantity:     qty,
			Price:        domain.UnitPrice(li.AmountTotal, qty),
			Size:         li.Size,
			Color:        li.Color,
			ProductImage: li.ImageURL,
			ProductID:    li.ProductID,
			VariantID:    li.VariantID,
		})
	}
	return items
}
