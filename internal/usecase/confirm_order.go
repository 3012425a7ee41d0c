package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/RishiBuilds/soledrip-xr-platform/internal/entity"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/logging"
)

type ConfirmOrderInput struct {
	OrderID  string
	Email    string
	Items    []domain.OrderItem
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ConfirmOrder renders the transactional confirmation email and submits it
// to the outbound sender. Callers treat failures as non-fatal; settlement
// is already durable by the time this runs.
type ConfirmOrder struct {
	sender EmailSender
}

func NewConfirmOrder(sender EmailSender) *ConfirmOrder {
	return &ConfirmOrder{sender: sender}
}

func (uc *ConfirmOrder) Execute(ctx context.Context, in ConfirmOrderInput) error {
	l := logging.FromCtx(ctx).With("order_id", in.OrderID)
	l.Info("confirmation started")

	if in.Email == "" {
		return ErrNoRecipient
	}

	html, err := RenderConfirmation(in)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	ref := DisplayOrderID(in.OrderID)
	if err := uc.sender.Send(ctx, EmailMessage{
		To:      in.Email,
		Subject: "Order Confirmed - #" + ref,
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	l.Info("confirmation email sent", "to", in.Email)
	return nil
}

// DisplayOrderID shortens an order id for human display. Not a
// security-sensitive value.
func DisplayOrderID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

type confirmationView struct {
	OrderRef string
	Items    []confirmationItem
	Subtotal string
	Shipping string
	Tax      string
	Total    string
	Year     int
}

type confirmationItem struct {
	Name      string
	Quantity  int64
	Size      string
	Color     string
	ImageURL  string
	LineTotal string
}

// RenderConfirmation produces the confirmation HTML. Items render in the
// order supplied (checkout insertion order). Shipping shows "Free" at zero;
// every other amount is fixed to two decimal places.
func RenderConfirmation(in ConfirmOrderInput) (string, error) {
	view := confirmationView{
		OrderRef: DisplayOrderID(in.OrderID),
		Subtotal: "₹" + in.Subtotal.StringFixed(2),
		Tax:      "₹" + in.Tax.StringFixed(2),
		Total:    "₹" + in.Total.StringFixed(2),
		Year:     time.Now().Year(),
	}
	if in.Shipping.IsZero() {
		view.Shipping = "Free"
	} else {
		view.Shipping = "₹" + in.Shipping.StringFixed(2)
	}
	for _, it := range in.Items {
		view.Items = append(view.Items, confirmationItem{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			ImageURL:  it.ProductImage,
			LineTotal: "₹" + it.Price.Mul(decimal.NewFromInt(it.Quantity)).StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Order Confirmation</title>
  </head>
  <body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #f5f5f5;">
    <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff;">
      <div style="background: linear-gradient(135deg, #000 0%, #333 100%); padding: 40px 30px; text-align: center;">
        <h1 style="margin: 0; color: #fff; font-size: 28px; font-weight: 700;">SoleDrip</h1>
        <p style="margin: 10px 0 0; color: rgba(255,255,255,0.8); font-size: 14px;">Premium Footwear</p>
      </div>
      <div style="padding: 40px 30px; text-align: center; border-bottom: 1px solid #eee;">
        <div style="width: 60px; height: 60px; background: #22c55e; border-radius: 50%; margin: 0 auto 20px; line-height: 60px;">
          <span style="color: #fff; font-size: 30px;">&#10003;</span>
        </div>
        <h2 style="margin: 0 0 10px; color: #333; font-size: 24px;">Order Confirmed!</h2>
        <p style="margin: 0; color: #666;">Thank you for your purchase. Your order has been received.</p>
        <p style="margin: 20px 0 0; padding: 12px 24px; background: #f5f5f5; border-radius: 8px; display: inline-block;">
          <span style="color: #666; font-size: 14px;">Order ID:</span><br/>
          <span style="color: #333; font-size: 16px; font-weight: 600;">{{.OrderRef}}</span>
        </p>
      </div>
      <div style="padding: 30px;">
        <h3 style="margin: 0 0 20px; color: #333; font-size: 18px;">Order Summary</h3>
        <table style="width: 100%; border-collapse: collapse;">
          <thead>
            <tr style="background: #f5f5f5;">
              <th style="padding: 12px 16px; text-align: left; font-size: 12px; text-transform: uppercase; color: #666;">Product</th>
              <th style="padding: 12px 16px; text-align: center; font-size: 12px; text-transform: uppercase; color: #666;">Qty</th>
              <th style="padding: 12px 16px; text-align: right; font-size: 12px; text-transform: uppercase; color: #666;">Price</th>
            </tr>
          </thead>
          <tbody>
            {{- range .Items}}
            <tr>
              <td style="padding: 16px; border-bottom: 1px solid #eee;">
                <div style="display: flex; align-items: center; gap: 12px;">
                  {{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}" style="width: 60px; height: 60px; object-fit: cover; border-radius: 8px;" />{{end}}
                  <div>
                    <p style="margin: 0; font-weight: 600; color: #333;">{{.Name}}</p>
                    {{if .Size}}<p style="margin: 4px 0 0; font-size: 14px; color: #666;">Size: {{.Size}}</p>{{end}}
                    {{if .Color}}<p style="margin: 4px 0 0; font-size: 14px; color: #666;">Color: {{.Color}}</p>{{end}}
                  </div>
                </div>
              </td>
              <td style="padding: 16px; border-bottom: 1px solid #eee; text-align: center; color: #666;">{{.Quantity}}</td>
              <td style="padding: 16px; border-bottom: 1px solid #eee; text-align: right; font-weight: 600; color: #333;">{{.LineTotal}}</td>
            </tr>
            {{- end}}
          </tbody>
        </table>
        <div style="margin-top: 20px; padding-top: 20px; border-top: 2px solid #eee;">
          <div style="display: flex; justify-content: space-between; margin-bottom: 8px;"><span style="color: #666;">Subtotal</span><span style="color: #333;">{{.Subtotal}}</span></div>
          <div style="display: flex; justify-content: space-between; margin-bottom: 8px;"><span style="color: #666;">Shipping</span><span style="color: #333;">{{.Shipping}}</span></div>
          <div style="display: flex; justify-content: space-between; margin-bottom: 16px;"><span style="color: #666;">Tax</span><span style="color: #333;">{{.Tax}}</span></div>
          <div style="display: flex; justify-content: space-between; padding-top: 16px; border-top: 2px solid #333;"><span style="font-size: 18px; font-weight: 700; color: #333;">Total</span><span style="font-size: 18px; font-weight: 700; color: #333;">{{.Total}}</span></div>
        </div>
      </div>
      <div style="background: #f5f5f5; padding: 30px; text-align: center;">
        <p style="margin: 0; color: #999; font-size: 12px;">&copy; {{.Year}} SoleDrip. All rights reserved.</p>
      </div>
    </div>
  </body>
</html>
`))
