package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/RishiBuilds/soledrip-xr-platform/internal/entity"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

// Verifier and CheckoutCreator are satisfied by the concrete use cases;
// the indirection exists so handler tests can substitute stubs.
type Verifier interface {
	Execute(ctx context.Context, in usecase.VerifyOrderInput) (usecase.VerifyOrderOutput, error)
}

type CheckoutCreator interface {
	Execute(ctx context.Context, in usecase.CreateCheckoutInput) (usecase.CreateCheckoutOutput, error)
}

type SettlementHandler struct {
	verify   Verifier
	checkout CheckoutCreator
	query    usecase.OrderRepo
}

func NewSettlementHandler(verify Verifier, checkout CheckoutCreator, query usecase.OrderRepo) *SettlementHandler {
	return &SettlementHandler{verify: verify, checkout: checkout, query: query}
}

type verifyReq struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type verifyResp struct {
	OrderID          string `json:"orderId"`
	Success          bool   `json:"success,omitempty"`
	AlreadyProcessed bool   `json:"alreadyProcessed,omitempty"`
}

// VerifyOrder handler: settle a completed checkout session exactly once.
// Safe to call repeatedly (success-page reloads, webhook redeliveries).
func (h *SettlementHandler) VerifyOrder(c *gin.Context) {
	var req verifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session ID", "code": "invalid_request"})
		return
	}

	// Budget covers the provider lookup, two store writes, and the email.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	out, err := h.verify.Execute(ctx, usecase.VerifyOrderInput{SessionID: req.SessionID})
	if err != nil {
		status, code := verifyErrStatus(err)
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}

	if out.AlreadyProcessed {
		c.JSON(http.StatusOK, verifyResp{OrderID: out.OrderID, AlreadyProcessed: true})
		return
	}
	c.JSON(http.StatusOK, verifyResp{OrderID: out.OrderID, Success: true})
}

func verifyErrStatus(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, usecase.ErrPaymentIncomplete):
		return http.StatusBadRequest, "payment_incomplete"
	case errors.Is(err, usecase.ErrSessionNotFound):
		return http.StatusBadGateway, "upstream_lookup_failed"
	default:
		return http.StatusInternalServerError, "persistence_failed"
	}
}

type checkoutReq struct {
	Email string         `json:"email"`
	Items []checkoutItem `json:"items" binding:"required"`
}

type checkoutItem struct {
	ProductID  string `json:"productId"`
	VariantID  string `json:"variantId"`
	Name       string `json:"name" binding:"required"`
	ImageURL   string `json:"imageUrl"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	PriceCents int64  `json:"priceCents" binding:"required,gt=0"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateCheckout handler: open a hosted checkout session for a cart snapshot.
func (h *SettlementHandler) CreateCheckout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request", "code": "invalid_request"})
		return
	}

	lines := make([]usecase.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, usecase.CartLine{
			ProductID:  it.ProductID,
			VariantID:  it.VariantID,
			Name:       it.Name,
			ImageURL:   it.ImageURL,
			Size:       it.Size,
			Color:      it.Color,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	out, err := h.checkout.Execute(ctx, usecase.CreateCheckoutInput{
		Email:          req.Email,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
		Lines:          lines,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_request"})
		case errors.Is(err, usecase.ErrDuplicateKey):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "duplicate_request"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": "provider_unavailable"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": out.SessionID, "url": out.URL})
}

// GetOrderByID: back-office read of one settled order with its items.
func (h *SettlementHandler) GetOrderByID(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.query.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	items, err := h.query.ListItems(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	itemViews := make([]gin.H, 0, len(items))
	for _, it := range items {
		itemViews = append(itemViews, gin.H{
			"product_name":  it.ProductName,
			"quantity":      it.Quantity,
			"price":         it.Price.StringFixed(2),
			"size":          it.Size,
			"color":         it.Color,
			"product_image": it.ProductImage,
			"product_id":    it.ProductID,
			"variant_id":    it.VariantID,
		})
	}
	resp := gin.H{
		"id":                       order.ID,
		"email":                    order.Email,
		"status":                   order.Status,
		"subtotal":                 order.Subtotal.StringFixed(2),
		"shipping":                 order.Shipping.StringFixed(2),
		"tax":                      order.Tax.StringFixed(2),
		"total":                    order.Total.StringFixed(2),
		"stripe_session_id":        order.StripeSessionID,
		"stripe_payment_intent_id": order.StripePaymentIntentID,
		"created_at":               order.CreatedAt,
		"items":                    itemViews,
	}
	if a := order.ShippingAddr; a != nil {
		resp["shipping_address"] = gin.H{
			"name":        a.Name,
			"line1":       a.Line1,
			"line2":       a.Line2,
			"city":        a.City,
			"state":       a.State,
			"postal_code": a.PostalCode,
			"country":     a.Country,
		}
	}
	c.JSON(http.StatusOK, resp)
}
