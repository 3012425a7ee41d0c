package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

type stubVerifier struct {
	out  usecase.VerifyOrderOutput
	err  error
	last usecase.VerifyOrderInput
}

func (s *stubVerifier) Execute(ctx context.Context, in usecase.VerifyOrderInput) (usecase.VerifyOrderOutput, error) {
	s.last = in
	return s.out, s.err
}

type stubCreator struct {
	out usecase.CreateCheckoutOutput
	err error
}

func (s *stubCreator) Execute(ctx context.Context, in usecase.CreateCheckoutInput) (usecase.CreateCheckoutOutput, error) {
	return s.out, s.err
}

func newTestRouter(v Verifier, c CheckoutCreator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSettlementHandler(v, c, nil)
	r.POST("/v1/checkout/verify", h.VerifyOrder)
	r.POST("/v1/checkout/session", h.CreateCheckout)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyHandler_Success(t *testing.T) {
	v := &stubVerifier{out: usecase.VerifyOrderOutput{OrderID: "order-1"}}
	r := newTestRouter(v, &stubCreator{})

	w := postJSON(t, r, "/v1/checkout/verify", gin.H{"sessionId": "cs_test_123"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp["orderId"])
	assert.Equal(t, true, resp["success"])
	assert.NotContains(t, resp, "alreadyProcessed")
	assert.Equal(t, "cs_test_123", v.last.SessionID)
}

func TestVerifyHandler_AlreadyProcessed(t *testing.T) {
	v := &stubVerifier{out: usecase.VerifyOrderOutput{OrderID: "order-1", AlreadyProcessed: true}}
	r := newTestRouter(v, &stubCreator{})

	w := postJSON(t, r, "/v1/checkout/verify", gin.H{"sessionId": "cs_test_123"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp["orderId"])
	assert.Equal(t, true, resp["alreadyProcessed"])
	assert.NotContains(t, resp, "success")
}

func TestVerifyHandler_MissingSessionID(t *testing.T) {
	v := &stubVerifier{}
	r := newTestRouter(v, &stubCreator{})

	w := postJSON(t, r, "/v1/checkout/verify", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, r, "/v1/checkout/verify", gin.H{"sessionId": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, v.last.SessionID)
}

func TestVerifyHandler_ErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{usecase.ErrPaymentIncomplete, http.StatusBadRequest, "payment_incomplete"},
		{usecase.ErrSessionNotFound, http.StatusBadGateway, "upstream_lookup_failed"},
		{usecase.ErrPersistence, http.StatusInternalServerError, "persistence_failed"},
	}
	for _, tc := range cases {
		r := newTestRouter(&stubVerifier{err: tc.err}, &stubCreator{})
		w := postJSON(t, r, "/v1/checkout/verify", gin.H{"sessionId": "cs_x"})
		require.Equal(t, tc.status, w.Code, tc.code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.code, resp["code"])
		assert.NotEmpty(t, resp["error"])
	}
}

func TestCreateCheckoutHandler(t *testing.T) {
	c := &stubCreator{out: usecase.CreateCheckoutOutput{SessionID: "cs_new", URL: "https://checkout/url"}}
	r := newTestRouter(&stubVerifier{}, c)

	w := postJSON(t, r, "/v1/checkout/session", gin.H{
		"email": "x@y.z",
		"items": []gin.H{{"name": "Air Zoom Drip", "priceCents": 100000, "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cs_new", resp["sessionId"])
	assert.Equal(t, "https://checkout/url", resp["url"])
}

func TestCreateCheckoutHandler_DuplicateKey(t *testing.T) {
	c := &stubCreator{err: usecase.ErrDuplicateKey}
	r := newTestRouter(&stubVerifier{}, c)

	w := postJSON(t, r, "/v1/checkout/session", gin.H{
		"items": []gin.H{{"name": "Air Zoom Drip", "priceCents": 100000, "quantity": 1}},
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	wh := NewWebhookHandler(&stubVerifier{}, "whsec_test")
	r.POST("/v1/webhooks/stripe", wh.HandleStripe)

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewReader([]byte(`{"type":"checkout.session.completed"}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=bogus")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
