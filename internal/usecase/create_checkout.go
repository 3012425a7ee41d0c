package usecase

import (
	"context"
	"fmt"

	"github.com/RishiBuilds/soledrip-xr-platform/internal/logging"
)

const checkoutScope = "checkout"

type CreateCheckoutInput struct {
	Email          string
	IdempotencyKey string // client-supplied, optional
	Lines          []CartLine
}

type CreateCheckoutOutput struct {
	SessionID string
	URL       string
}

// CreateCheckout opens a hosted checkout session for a cart snapshot.
// Line-item metadata carries product/variant ids plus size and color so the
// verifier can reconstruct order items without a catalog lookup.
type CreateCheckout struct {
	provider   CheckoutProvider
	idem       IdempotencyStore
	successURL string
	cancelURL  string
}

func NewCreateCheckout(provider CheckoutProvider, idem IdempotencyStore, successURL, cancelURL string) *CreateCheckout {
	return &CreateCheckout{provider: provider, idem: idem, successURL: successURL, cancelURL: cancelURL}
}

func (uc *CreateCheckout) Execute(ctx context.Context, in CreateCheckoutInput) (CreateCheckoutOutput, error) {
	l := logging.FromCtx(ctx)

	if len(in.Lines) == 0 {
		return CreateCheckoutOutput{}, fmt.Errorf("%w: empty cart", ErrInvalidRequest)
	}
	for _, line := range in.Lines {
		if line.PriceCents <= 0 || line.Quantity <= 0 {
			return CreateCheckoutOutput{}, fmt.Errorf("%w: bad line %q", ErrInvalidRequest, line.Name)
		}
	}

	// Dedupe repeat submits of the same cart when the client sends an
	// idempotency key. Redis here is a convenience; losing the key only
	// means a second (independently payable) session.
	if in.IdempotencyKey != "" && uc.idem != nil {
		if url, ok, _ := uc.idem.Recall(ctx, checkoutScope, in.IdempotencyKey); ok {
			l.Info("checkout replayed from idempotency key")
			return CreateCheckoutOutput{URL: url}, nil
		}
		ok, err := uc.idem.TryLock(ctx, checkoutScope, in.IdempotencyKey)
		if err == nil && !ok {
			return CreateCheckoutOutput{}, ErrDuplicateKey
		}
	}

	created, err := uc.provider.CreateSession(ctx, CreateSessionInput{
		Email:      in.Email,
		Lines:      in.Lines,
		SuccessURL: uc.successURL,
		CancelURL:  uc.cancelURL,
	})
	if err != nil {
		return CreateCheckoutOutput{}, fmt.Errorf("create checkout session: %w", err)
	}
	l.Info("checkout session created", "session_id", created.ID)

	if in.IdempotencyKey != "" && uc.idem != nil {
		_ = uc.idem.Remember(ctx, checkoutScope, in.IdempotencyKey, created.URL)
	}
	return CreateCheckoutOutput{SessionID: created.ID, URL: created.URL}, nil
}
