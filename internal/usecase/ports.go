package usecase

import (
	"context"

	domain "github.com/RishiBuilds/soledrip-xr-platform/internal/entity"
)

// CheckoutSnapshot is the read-only projection of a provider checkout
// session. Amounts are authoritative minor units; nothing here is ever
// recomputed from client input.
type CheckoutSnapshot struct {
	ID              string
	PaymentStatus   string // "paid" | "unpaid" | "no_payment_required"
	PaymentIntentID string
	Email           string
	AmountSubtotal  int64
	AmountShipping  int64
	AmountTax       int64
	AmountTotal     int64
	Shipping        *domain.ShippingAddress
	Items           []SnapshotItem
}

// SnapshotItem is one provider line item with the product metadata the
// checkout creator attached (size/color/productId/variantId).
type SnapshotItem struct {
	ProductName string
	Description string
	Quantity    int64
	AmountTotal int64 // minor units, line total
	ImageURL    string
	Size        string
	Color       string
	ProductID   string
	VariantID   string
}

// CartLine is one entry of the client cart snapshot handed to the
// checkout creator. PriceCents is the unit price in minor units.
type CartLine struct {
	ProductID  string
	VariantID  string
	Name       string
	ImageURL   string
	Size       string
	Color      string
	PriceCents int64
	Quantity   int64
}

type CreateSessionInput struct {
	Email      string
	Lines      []CartLine
	SuccessURL string
	CancelURL  string
}

type CreatedSession struct {
	ID  string
	URL string
}

// CheckoutProvider wraps the hosted payment provider.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*CreatedSession, error)
	GetSession(ctx context.Context, sessionID string) (*CheckoutSnapshot, error)
}

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	CreateItems(ctx context.Context, items []domain.OrderItem) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// FindBySessionID returns (nil, nil) when no order exists for the session.
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	UpdateStatus(ctx context.Context, id string, to domain.Status) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type OrderCache interface {
	SetStatus(ctx context.Context, orderID string, status string) error
	GetStatus(ctx context.Context, orderID string) (string, error)
}

type EmailMessage struct {
	To      string
	Subject string
	HTML    string
}

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SettlementEvents publishes settlement lifecycle events. All publishes are
// best-effort from the verifier's point of view.
type SettlementEvents interface {
	PublishSettled(ctx context.Context, msg SettledMsg) error
	PublishReconcile(ctx context.Context, msg ReconcileMsg) error
}
