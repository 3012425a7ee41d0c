package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/RishiBuilds/soledrip-xr-platform/internal/entity"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

type fakeProvider struct {
	session *usecase.CheckoutSnapshot
	err     error
	calls   int
}

func (f *fakeProvider) CreateSession(ctx context.Context, in usecase.CreateSessionInput) (*usecase.CreatedSession, error) {
	return nil, errors.New("not used")
}

func (f *fakeProvider) GetSession(ctx context.Context, sessionID string) (*usecase.CheckoutSnapshot, error) {
	f.calls++
	return f.session, f.err
}

type fakeRepo struct {
	order    *domain.Order
	items    []domain.OrderItem
	inserted []domain.OrderItem
	listErr  error
}

func (f *fakeRepo) Create(ctx context.Context, o *domain.Order) error { return errors.New("not used") }

func (f *fakeRepo) CreateItems(ctx context.Context, items []domain.OrderItem) error {
	f.inserted = append(f.inserted, items...)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if f.order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeRepo) FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	return nil, nil
}

func (f *fakeRepo) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	return f.items, f.listErr
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id string, to domain.Status) error { return nil }

type captureSender struct {
	sent []usecase.EmailMessage
	err  error
}

func (s *captureSender) Send(ctx context.Context, msg usecase.EmailMessage) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func TestHandleReconcile_BackfillsMissingItems(t *testing.T) {
	provider := &fakeProvider{session: &usecase.CheckoutSnapshot{
		ID:            "cs_1",
		PaymentStatus: "paid",
		Items: []usecase.SnapshotItem{
			{ProductName: "Air Zoom Drip", Quantity: 2, AmountTotal: 100000, Size: "UK 9"},
		},
	}}
	repo := &fakeRepo{}
	h := NewReconcileHandler(provider, repo, nil)

	err := h.HandleReconcile(context.Background(), usecase.ReconcileMsg{
		Kind: usecase.ReconcileItems, OrderID: "order-1", SessionID: "cs_1",
	})

	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "order-1", repo.inserted[0].OrderID)
	assert.Equal(t, "Air Zoom Drip", repo.inserted[0].ProductName)
	assert.Equal(t, int64(2), repo.inserted[0].Quantity)
}

func TestHandleReconcile_SkipsWhenItemsExist(t *testing.T) {
	provider := &fakeProvider{}
	repo := &fakeRepo{items: []domain.OrderItem{{OrderID: "order-1", ProductName: "x"}}}
	h := NewReconcileHandler(provider, repo, nil)

	err := h.HandleReconcile(context.Background(), usecase.ReconcileMsg{
		Kind: usecase.ReconcileItems, OrderID: "order-1", SessionID: "cs_1",
	})

	require.NoError(t, err)
	assert.Zero(t, provider.calls)
	assert.Empty(t, repo.inserted)
}

func TestHandleReconcile_RefetchFailureRequeues(t *testing.T) {
	provider := &fakeProvider{err: errors.New("stripe down")}
	repo := &fakeRepo{}
	h := NewReconcileHandler(provider, repo, nil)

	err := h.HandleReconcile(context.Background(), usecase.ReconcileMsg{
		Kind: usecase.ReconcileItems, OrderID: "order-1", SessionID: "cs_1",
	})

	require.Error(t, err)
}

func TestHandleReconcile_ResendsConfirmation(t *testing.T) {
	sender := &captureSender{}
	repo := &fakeRepo{
		order: &domain.Order{
			ID:       "abcdef12-3456",
			Email:    "buyer@example.com",
			Subtotal: decimal.NewFromInt(1500),
			Total:    decimal.NewFromInt(1770),
		},
		items: []domain.OrderItem{{ProductName: "Air Zoom Drip", Quantity: 1, Price: decimal.NewFromInt(1500)}},
	}
	h := NewReconcileHandler(&fakeProvider{}, repo, usecase.NewConfirmOrder(sender))

	err := h.HandleReconcile(context.Background(), usecase.ReconcileMsg{
		Kind: usecase.ReconcileEmail, OrderID: "abcdef12-3456",
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "buyer@example.com", sender.sent[0].To)
}

func TestHandleReconcile_NoRecipientDropsMessage(t *testing.T) {
	sender := &captureSender{}
	repo := &fakeRepo{order: &domain.Order{ID: "order-1", Email: ""}}
	h := NewReconcileHandler(&fakeProvider{}, repo, usecase.NewConfirmOrder(sender))

	err := h.HandleReconcile(context.Background(), usecase.ReconcileMsg{
		Kind: usecase.ReconcileEmail, OrderID: "order-1",
	})

	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandleReconcile_UnknownKindDropped(t *testing.T) {
	h := NewReconcileHandler(&fakeProvider{}, &fakeRepo{}, nil)

	err := h.HandleReconcile(context.Background(), usecase.ReconcileMsg{Kind: "mystery", OrderID: "order-1"})
	require.NoError(t, err)
}
