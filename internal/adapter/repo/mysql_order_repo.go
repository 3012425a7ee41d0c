package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	domain "github.com/RishiBuilds/soledrip-xr-platform/internal/entity"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

// MySQL duplicate-entry error. The unique key on orders.stripe_session_id
// is what actually enforces at-most-one order per session.
const dupEntryErrNo = 1062

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	var name, line1, line2, city, state, postal, country sql.NullString
	if a := o.ShippingAddr; a != nil {
		name = nullStr(a.Name)
		line1 = nullStr(a.Line1)
		line2 = nullStr(a.Line2)
		city = nullStr(a.City)
		state = nullStr(a.State)
		postal = nullStr(a.PostalCode)
		country = nullStr(a.Country)
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO orders (id,email,status,subtotal,shipping,tax,total,stripe_session_id,stripe_payment_intent_id,
  shipping_name,shipping_line1,shipping_line2,shipping_city,shipping_state,shipping_postal_code,shipping_country,
  created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,NOW(),NOW())
`, o.ID, o.Email, o.Status,
		o.Subtotal.StringFixed(2), o.Shipping.StringFixed(2), o.Tax.StringFixed(2), o.Total.StringFixed(2),
		o.StripeSessionID, o.StripePaymentIntentID,
		name, line1, line2, city, state, postal, country)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == dupEntryErrNo {
			return domain.ErrDuplicateSession
		}
		return err
	}
	return nil
}

func (r *MySQLOrderRepo) CreateItems(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO order_items (order_id,product_name,quantity,price,size,color,product_image,product_id,variant_id) VALUES `)
	args := make([]any, 0, len(items)*9)
	for i, it := range items {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?,?,?,?,?,?,?,?,?)")
		args = append(args, it.OrderID, it.ProductName, it.Quantity, it.Price.StringFixed(2),
			nullStr(it.Size), nullStr(it.Color), nullStr(it.ProductImage), nullStr(it.ProductID), nullStr(it.VariantID))
	}
	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, selectOrder+`WHERE id=?`, id)
	return scanOrder(row)
}

// FindBySessionID is the idempotency lookup. A missing row is (nil, nil),
// not an error: "not settled yet" is a normal answer.
func (r *MySQLOrderRepo) FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, selectOrder+`WHERE stripe_session_id=?`, sessionID)
	o, err := scanOrder(row)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return nil, nil
	}
	return o, err
}

func (r *MySQLOrderRepo) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT order_id,product_name,quantity,price,
  COALESCE(size,''),COALESCE(color,''),COALESCE(product_image,''),COALESCE(product_id,''),COALESCE(variant_id,'')
FROM order_items WHERE order_id=? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		var price string
		if err := rows.Scan(&it.OrderID, &it.ProductName, &it.Quantity, &price,
			&it.Size, &it.Color, &it.ProductImage, &it.ProductID, &it.VariantID); err != nil {
			return nil, err
		}
		if it.Price, err = parseDecimal(price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *MySQLOrderRepo) UpdateStatus(ctx context.Context, id string, to domain.Status) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`, to, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// UpdateStatusIf performs a guarded transition; rows == 0 means either not
// found or the order was not in fromStatus.
func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

const selectOrder = `
SELECT id,email,status,subtotal,shipping,tax,total,stripe_session_id,COALESCE(stripe_payment_intent_id,''),
  shipping_name,shipping_line1,shipping_line2,shipping_city,shipping_state,shipping_postal_code,shipping_country,
  created_at
FROM orders `

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var subtotal, shipping, tax, total string
	var name, line1, line2, city, state, postal, country sql.NullString
	err := row.Scan(&o.ID, &o.Email, &o.Status, &subtotal, &shipping, &tax, &total,
		&o.StripeSessionID, &o.StripePaymentIntentID,
		&name, &line1, &line2, &city, &state, &postal, &country, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Subtotal, err = parseDecimal(subtotal); err != nil {
		return nil, err
	}
	if o.Shipping, err = parseDecimal(shipping); err != nil {
		return nil, err
	}
	if o.Tax, err = parseDecimal(tax); err != nil {
		return nil, err
	}
	if o.Total, err = parseDecimal(total); err != nil {
		return nil, err
	}
	if name.Valid || line1.Valid {
		o.ShippingAddr = &domain.ShippingAddress{
			Name:       name.String,
			Line1:      line1.String,
			Line2:      line2.String,
			City:       city.String,
			State:      state.String,
			PostalCode: postal.String,
			Country:    country.String,
		}
	}
	return &o, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
