package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-payments/internal/dto"
	"storefront-payments/internal/middleware"
	"storefront-payments/internal/model"
	"storefront-payments/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWebhookService struct {
	result  *service.WebhookResult
	err     error
	headers service.WebhookHeaders
	got     *model.Notification
	payload []byte
	calls   int
}

func (f *fakeWebhookService) HandleNotification(ctx context.Context, headers service.WebhookHeaders, n *model.Notification, payload []byte) (*service.WebhookResult, error) {
	f.calls++
	f.headers = headers
	f.got = n
	f.payload = payload
	return f.result, f.err
}

type fakeCheckoutService struct {
	resp   *dto.CheckoutResponse
	err    error
	userID uint
	items  []*dto.CheckoutItem
	dest   dto.CheckoutDestination
}

func (f *fakeCheckoutService) BuildCheckoutSession(ctx context.Context, userID uint, items []*dto.CheckoutItem, destination dto.CheckoutDestination) (*dto.CheckoutResponse, error) {
	f.userID = userID
	f.items = items
	f.dest = destination
	return f.resp, f.err
}

func serveWebhook(t *testing.T, svc service.WebhookService, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.POST("/webhook/:provider", NewWebhookHandler(svc).HandleWebhook)

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("x-signature", "ts=1704908010,v1=abc")
	req.Header.Set("x-request-id", "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleWebhookReturnsOutcome(t *testing.T) {
	svc := &fakeWebhookService{result: &service.WebhookResult{Outcome: service.WebhookProcessed}}
	body := `{"type":"payment","action":"payment.updated","data":{"id":12345}}`

	rec := serveWebhook(t, svc, "/webhook/mercadopago", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"processed"}`, rec.Body.String())

	require.Equal(t, 1, svc.calls)
	assert.Equal(t, "payment", svc.got.Type)
	assert.Equal(t, "12345", svc.got.Data.ID.String())
	assert.Equal(t, "ts=1704908010,v1=abc", svc.headers.Signature)
	assert.Equal(t, "req-1", svc.headers.RequestID)
	assert.Equal(t, body, string(svc.payload))
}

func TestHandleWebhookFallsBackToQuery(t *testing.T) {
	svc := &fakeWebhookService{result: &service.WebhookResult{Outcome: service.WebhookNotApproved}}

	rec := serveWebhook(t, svc, "/webhook/mercadopago?type=payment&data.id=999", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "payment", svc.got.Type)
	assert.Equal(t, "999", svc.got.Data.ID.String())
}

func TestHandleWebhookStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		err    error
		want   int
		called bool
	}{
		{"unknown provider", "/webhook/stripe", `{"type":"payment","data":{"id":"1"}}`, nil, http.StatusNotFound, false},
		{"malformed json", "/webhook/mercadopago", `{"type":`, nil, http.StatusBadRequest, false},
		{"bad signature", "/webhook/mercadopago", `{"type":"payment","data":{"id":"1"}}`, service.ErrInvalidSignature, http.StatusForbidden, true},
		{"stock failure", "/webhook/mercadopago", `{"type":"payment","data":{"id":"1"}}`, fmt.Errorf("reconcile: %w", service.ErrInsufficientStock), http.StatusInternalServerError, true},
		{"provider failure", "/webhook/mercadopago", `{"type":"payment","data":{"id":"1"}}`, errors.New("provider down"), http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWebhookService{err: tt.err}
			rec := serveWebhook(t, svc, tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.called, svc.calls == 1)
		})
	}
}

func serveCheckout(t *testing.T, svc service.CheckoutService, userID any, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := NewCheckoutHandler(svc)
	e.POST("/api/payment", h.CreatePayment, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != nil {
				c.Set(middleware.UserIDKey, userID)
			}
			return next(c)
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/api/payment", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreatePayment(t *testing.T) {
	svc := &fakeCheckoutService{resp: &dto.CheckoutResponse{
		CheckoutURL:       "https://mp.example/checkout",
		PreferenceID:      "pref-1",
		ExternalReference: "ref-1",
		TotalAmount:       decimal.NewFromInt(150),
	}}
	body := `{"items":[{"clothe_id":1,"quantity":2}],"destination":{"locality_id":"06"}}`

	rec := serveCheckout(t, svc, uint(7), body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"checkout_url":"https://mp.example/checkout",
		"preference_id":"pref-1",
		"external_reference":"ref-1",
		"total_amount":"150"
	}`, rec.Body.String())

	assert.Equal(t, uint(7), svc.userID)
	require.Len(t, svc.items, 1)
	assert.Equal(t, uint(1), svc.items[0].ClotheID)
	assert.Equal(t, int32(2), svc.items[0].Quantity)
	assert.Equal(t, "06", svc.dest.LocalityID)
}

func TestCreatePaymentStatusMapping(t *testing.T) {
	body := `{"items":[{"clothe_id":1,"quantity":2}],"destination":{"locality_id":"06"}}`

	tests := []struct {
		name   string
		userID any
		body   string
		err    error
		want   int
	}{
		{"no user", nil, body, nil, http.StatusUnauthorized},
		{"bad body", uint(7), `{"items":`, nil, http.StatusBadRequest},
		{"invalid checkout", uint(7), body, fmt.Errorf("%w: cart is empty", service.ErrInvalidCheckout), http.StatusBadRequest},
		{"unknown clothe", uint(7), body, &service.ProductNotFoundError{ClotheID: 9}, http.StatusBadRequest},
		{"provider failure", uint(7), body, errors.New("provider down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCheckoutService{err: tt.err}
			rec := serveCheckout(t, svc, tt.userID, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
