package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"storefront-payments/internal/config"
	"storefront-payments/internal/model"
)

// ErrProviderUnavailable wraps every failure talking to the payment provider.
// Callers must not assume any payment status when they see it.
var ErrProviderUnavailable = errors.New("payment provider unavailable")

type MercadoPagoClient interface {
	GetPayment(ctx context.Context, paymentID string) (*model.PaymentRecord, error)
	CreatePreference(ctx context.Context, pref *model.PreferenceRequest) (*model.PreferenceResult, error)
}

type mercadoPagoClientImpl struct {
	httpClient  *http.Client
	baseApiURL  string
	accessToken string
}

func NewMercadoPagoClient(mpCfg *config.MercadoPago) MercadoPagoClient {
	return &mercadoPagoClientImpl{
		httpClient: &http.Client{
			Timeout: mpCfg.Timeout,
		},
		baseApiURL:  mpCfg.BaseApiURL,
		accessToken: mpCfg.AccessToken,
	}
}

func (c *mercadoPagoClientImpl) GetPayment(ctx context.Context, paymentID string) (*model.PaymentRecord, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("%w: empty payment id", ErrProviderUnavailable)
	}

	endpoint := fmt.Sprintf("%s/v1/payments/%s", c.baseApiURL, url.PathEscape(paymentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create payment request: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	var record model.PaymentRecord
	if err := c.do(req, &record); err != nil {
		return nil, fmt.Errorf("get payment %s: %w", paymentID, err)
	}
	if record.ID == "" {
		record.ID = model.ResourceID(paymentID)
	}
	if record.ID.String() != paymentID {
		return nil, fmt.Errorf("get payment %s: %w: response is for payment %s", paymentID, ErrProviderUnavailable, record.ID)
	}
	if record.Status == "" {
		return nil, fmt.Errorf("get payment %s: %w: response has no status", paymentID, ErrProviderUnavailable)
	}

	return &record, nil
}

func (c *mercadoPagoClientImpl) CreatePreference(ctx context.Context, pref *model.PreferenceRequest) (*model.PreferenceResult, error) {
	body, err := json.Marshal(pref)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/checkout/preferences",
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create preference request: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	// the provider dedupes preference creation on this header
	req.Header.Set("X-Idempotency-Key", pref.ExternalReference)

	var result model.PreferenceResult
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	if result.InitPoint == "" && result.SandboxInitPoint == "" {
		return nil, fmt.Errorf("create preference: %w: response has no init point", ErrProviderUnavailable)
	}

	return &result, nil
}

func (c *mercadoPagoClientImpl) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: http client do: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: mercadopago error %d: %s", ErrProviderUnavailable, resp.StatusCode, string(b))
	}

	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: decode mercadopago response: %v", ErrProviderUnavailable, err)
	}
	return nil
}
