package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	domain "github.com/RishiBuilds/soledrip-xr-platform/internal/entity"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

// StripeProvider wraps the Stripe SDK behind the usecase port. Constructed
// once at startup from the secret key; never read from ambient state.
type StripeProvider struct {
	api      *client.API
	currency string
}

func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, currency: "inr"}
}

func (p *StripeProvider) CreateSession(ctx context.Context, in usecase.CreateSessionInput) (*usecase.CreatedSession, error) {
	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Lines))
	for _, l := range in.Lines {
		// Metadata is what lets the verifier rebuild order items without
		// a second catalog lookup.
		meta := map[string]string{
			"productId": l.ProductID,
			"variantId": l.VariantID,
		}
		if l.Size != "" {
			meta["size"] = l.Size
		}
		if l.Color != "" {
			meta["color"] = l.Color
		}
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripe.String(l.Name),
			Metadata: meta,
		}
		if l.ImageURL != "" {
			product.Images = stripe.StringSlice([]string{l.ImageURL})
		}
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(l.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(p.currency),
				UnitAmount:  stripe.Int64(l.PriceCents),
				ProductData: product,
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lines,
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"IN"}),
		},
	}
	if in.Email != "" {
		params.CustomerEmail = stripe.String(in.Email)
	}

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create session: %w", err)
	}
	return &usecase.CreatedSession{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) GetSession(ctx context.Context, sessionID string) (*usecase.CheckoutSnapshot, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("line_items")
	params.AddExpand("line_items.data.price.product")

	s, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve session: %w", err)
	}
	return toSnapshot(s), nil
}

func toSnapshot(s *stripe.CheckoutSession) *usecase.CheckoutSnapshot {
	snap := &usecase.CheckoutSnapshot{
		ID:             s.ID,
		PaymentStatus:  string(s.PaymentStatus),
		AmountSubtotal: s.AmountSubtotal,
		AmountTotal:    s.AmountTotal,
	}
	if s.PaymentIntent != nil {
		snap.PaymentIntentID = s.PaymentIntent.ID
	}
	if s.CustomerDetails != nil {
		snap.Email = s.CustomerDetails.Email
	}
	if s.ShippingCost != nil {
		snap.AmountShipping = s.ShippingCost.AmountTotal
	}
	if s.TotalDetails != nil {
		snap.AmountTax = s.TotalDetails.AmountTax
	}
	if sd := s.ShippingDetails; sd != nil && sd.Address != nil {
		snap.Shipping = &domain.ShippingAddress{
			Name:       sd.Name,
			Line1:      sd.Address.Line1,
			Line2:      sd.Address.Line2,
			City:       sd.Address.City,
			State:      sd.Address.State,
			PostalCode: sd.Address.PostalCode,
			Country:    sd.Address.Country,
		}
	}
	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			item := usecase.SnapshotItem{
				Description: li.Description,
				Quantity:    li.Quantity,
				AmountTotal: li.AmountTotal,
			}
			if li.Price != nil && li.Price.Product != nil {
				prod := li.Price.Product
				item.ProductName = prod.Name
				if len(prod.Images) > 0 {
					item.ImageURL = prod.Images[0]
				}
				if prod.Metadata != nil {
					item.Size = prod.Metadata["size"]
					item.Color = prod.Metadata["color"]
					item.ProductID = prod.Metadata["productId"]
					item.VariantID = prod.Metadata["variantId"]
				}
			}
			snap.Items = append(snap.Items, item)
		}
	}
	return snap
}

var _ usecase.CheckoutProvider = (*StripeProvider)(nil)
