package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/RishiBuilds/soledrip-xr-platform/internal/entity"
)

func newMock(t *testing.T) (*MySQLOrderRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLOrderRepo(db), mock
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:                    "order-1",
		Email:                 "sneakerhead@example.com",
		Status:                domain.StatusPaid,
		Subtotal:              decimal.RequireFromString("1500.00"),
		Shipping:              decimal.RequireFromString("50.00"),
		Tax:                   decimal.RequireFromString("120.00"),
		Total:                 decimal.RequireFromString("1770.00"),
		StripeSessionID:       "cs_test_123",
		StripePaymentIntentID: "pi_test_456",
		ShippingAddr: &domain.ShippingAddress{
			Name: "A. Customer", Line1: "12 MG Road", City: "Bengaluru",
			State: "KA", PostalCode: "560001", Country: "IN",
		},
	}
}

func TestCreate_InsertsOrder(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec("INSERT INTO orders").
		WithArgs("order-1", "sneakerhead@example.com", domain.StatusPaid,
			"1500.00", "50.00", "120.00", "1770.00",
			"cs_test_123", "pi_test_456",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.Create(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateSessionKey(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := r.Create(context.Background(), sampleOrder())
	require.ErrorIs(t, err, domain.ErrDuplicateSession)
}

func TestCreate_OtherErrorPassesThrough(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout"})

	err := r.Create(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDuplicateSession)
}

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "status", "subtotal", "shipping", "tax", "total",
		"stripe_session_id", "stripe_payment_intent_id",
		"shipping_name", "shipping_line1", "shipping_line2", "shipping_city",
		"shipping_state", "shipping_postal_code", "shipping_country", "created_at",
	}).AddRow(
		"order-1", "sneakerhead@example.com", "paid", "1500.00", "50.00", "120.00", "1770.00",
		"cs_test_123", "pi_test_456",
		"A. Customer", "12 MG Road", nil, "Bengaluru", "KA", "560001", "IN",
		time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	)
}

func TestFindBySessionID_Found(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectQuery("FROM orders WHERE stripe_session_id=").
		WithArgs("cs_test_123").
		WillReturnRows(orderRows())

	o, err := r.FindBySessionID(context.Background(), "cs_test_123")
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "order-1", o.ID)
	assert.Equal(t, "1770.00", o.Total.StringFixed(2))
	require.NotNil(t, o.ShippingAddr)
	assert.Equal(t, "Bengaluru", o.ShippingAddr.City)
}

func TestFindBySessionID_NotFoundIsNilNil(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectQuery("FROM orders WHERE stripe_session_id=").
		WithArgs("cs_unknown").
		WillReturnError(sql.ErrNoRows)

	o, err := r.FindBySessionID(context.Background(), "cs_unknown")
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestGetByID_NotFound(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectQuery("FROM orders WHERE id=").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := r.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCreateItems_BulkInsert(t *testing.T) {
	r, mock := newMock(t)

	items := []domain.OrderItem{
		{OrderID: "order-1", ProductName: "Air Zoom Drip", Quantity: 1, Price: decimal.RequireFromString("1000.00"), Size: "9", Color: "Black"},
		{OrderID: "order-1", ProductName: "Street Runner", Quantity: 2, Price: decimal.RequireFromString("200.00")},
	}

	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(1, 2))

	require.NoError(t, r.CreateItems(context.Background(), items))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItems_EmptyIsNoop(t *testing.T) {
	r, mock := newMock(t)
	require.NoError(t, r.CreateItems(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(domain.StatusShipped, "order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.UpdateStatus(context.Background(), "order-1", domain.StatusShipped))
}

func TestUpdateStatus_NotFound(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(domain.StatusShipped, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.UpdateStatus(context.Background(), "missing", domain.StatusShipped)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateStatusIf_Guarded(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(domain.StatusShipped, "order-1", domain.StatusPaid).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.UpdateStatusIf(context.Background(), "order-1", domain.StatusPaid, domain.StatusShipped)
	require.NoError(t, err)
	assert.False(t, ok)
}
