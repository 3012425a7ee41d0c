package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartLines() []CartLine {
	return []CartLine{
		{ProductID: "p1", VariantID: "v1", Name: "Air Zoom Drip", Size: "9", Color: "Black", PriceCents: 100000, Quantity: 1},
	}
}

func TestCreateCheckout_CreatesSession(t *testing.T) {
	p := &fakeProvider{created: &CreatedSession{ID: "cs_new", URL: "https://checkout.stripe.com/pay/cs_new"}}
	uc := NewCreateCheckout(p, newFakeIdem(), "https://shop/success", "https://shop/cart")

	out, err := uc.Execute(context.Background(), CreateCheckoutInput{
		Email: "sneakerhead@example.com",
		Lines: cartLines(),
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_new", out.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_new", out.URL)
	assert.Equal(t, "https://shop/success", p.lastCreate.SuccessURL)
	assert.Equal(t, "https://shop/cart", p.lastCreate.CancelURL)
	require.Len(t, p.lastCreate.Lines, 1)
	assert.Equal(t, "v1", p.lastCreate.Lines[0].VariantID)
}

func TestCreateCheckout_EmptyCart(t *testing.T) {
	p := &fakeProvider{}
	uc := NewCreateCheckout(p, newFakeIdem(), "s", "c")

	_, err := uc.Execute(context.Background(), CreateCheckoutInput{Email: "x@y.z"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreateCheckout_RejectsBadLine(t *testing.T) {
	p := &fakeProvider{}
	uc := NewCreateCheckout(p, newFakeIdem(), "s", "c")

	lines := cartLines()
	lines[0].Quantity = 0
	_, err := uc.Execute(context.Background(), CreateCheckoutInput{Lines: lines})
	require.ErrorIs(t, err, ErrInvalidRequest)

	lines = cartLines()
	lines[0].PriceCents = -100
	_, err = uc.Execute(context.Background(), CreateCheckoutInput{Lines: lines})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreateCheckout_IdempotencyKeyReplay(t *testing.T) {
	p := &fakeProvider{created: &CreatedSession{ID: "cs_new", URL: "https://checkout/url"}}
	idem := newFakeIdem()
	uc := NewCreateCheckout(p, idem, "s", "c")

	in := CreateCheckoutInput{Email: "x@y.z", IdempotencyKey: "cart-abc", Lines: cartLines()}
	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.URL, second.URL)
}

func TestCreateCheckout_ConcurrentDuplicateKey(t *testing.T) {
	p := &fakeProvider{created: &CreatedSession{ID: "cs_new", URL: "https://checkout/url"}}
	idem := newFakeIdem()
	// lock held, mapping not yet remembered: a concurrent create in flight
	ok, err := idem.TryLock(context.Background(), "checkout", "cart-abc")
	require.NoError(t, err)
	require.True(t, ok)

	uc := NewCreateCheckout(p, idem, "s", "c")
	_, err = uc.Execute(context.Background(), CreateCheckoutInput{IdempotencyKey: "cart-abc", Lines: cartLines()})
	require.ErrorIs(t, err, ErrDuplicateKey)
}
