package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrDuplicateSession = errors.New("order already exists for session")
	ErrOrderNotFound    = errors.New("order not found")
)

// ShippingAddress is the structured address captured at checkout.
// All fields come from the provider session; none are validated here.
type ShippingAddress struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Order is the durable record of one settled checkout session.
// Exactly one Order exists per session id; the unique key on
// StripeSessionID in the store is the guarantee.
type Order struct {
	ID                    string
	Email                 string
	Status                Status
	Subtotal              decimal.Decimal
	Shipping              decimal.Decimal
	Tax                   decimal.Decimal
	Total                 decimal.Decimal
	StripeSessionID       string
	StripePaymentIntentID string
	ShippingAddr          *ShippingAddress
	CreatedAt             time.Time
}

type OrderItem struct {
	OrderID      string
	ProductName  string
	Quantity     int64
	Price        decimal.Decimal
	Size         string
	Color        string
	ProductImage string
	ProductID    string
	VariantID    string
}

var centsPerUnit = decimal.NewFromInt(100)

// FromMinorUnits converts provider minor units (paise) to a major-unit
// decimal amount. Division by 100 is exact for integer inputs.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(centsPerUnit)
}

// UnitPrice derives a per-unit major amount from a line's minor-unit total,
// rounded to 2 decimal places. Quantity below 1 is treated as 1.
func UnitPrice(amountMinor, quantity int64) decimal.Decimal {
	if quantity < 1 {
		quantity = 1
	}
	return decimal.NewFromInt(amountMinor).
		DivRound(centsPerUnit.Mul(decimal.NewFromInt(quantity)), 2)
}
