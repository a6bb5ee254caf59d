package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	NotificationTypePayment = "payment"

	PaymentStatusApproved = "approved"
)

var ErrInvalidMetadata = errors.New("invalid checkout metadata")

// ResourceID accepts both JSON strings and JSON numbers, since the provider
// sends data.id either way depending on the notification version.
type ResourceID string

func (id *ResourceID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ResourceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("resource id must be a string or number: %w", err)
	}
	*id = ResourceID(n.String())
	return nil
}

func (id ResourceID) String() string { return string(id) }

type NotificationData struct {
	ID ResourceID `json:"id"`
}

type Notification struct {
	Type   string           `json:"type"`
	Action string           `json:"action,omitempty"`
	Data   NotificationData `json:"data"`
}

func (n *Notification) IsPayment() bool {
	return n.Type == NotificationTypePayment
}

type Destination struct {
	LocalityID      string          `json:"locality_id"`
	DestinationName string          `json:"destination_name"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
}

type MetadataLineItem struct {
	ClotheID  uint            `json:"clothe_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CheckoutMetadata is embedded in the checkout preference and echoed back
// on the payment. The reconciler trusts nothing else about an order.
type CheckoutMetadata struct {
	TotalAmount decimal.Decimal    `json:"total_amount"`
	UserID      uint               `json:"user_id"`
	Destination Destination        `json:"destination"`
	LineItems   []MetadataLineItem `json:"line_items"`
}

func (m *CheckoutMetadata) Validate() error {
	if m.UserID == 0 {
		return fmt.Errorf("%w: missing user_id", ErrInvalidMetadata)
	}
	if m.Destination.LocalityID == "" {
		return fmt.Errorf("%w: missing destination locality", ErrInvalidMetadata)
	}
	if !m.TotalAmount.IsPositive() {
		return fmt.Errorf("%w: total_amount must be positive", ErrInvalidMetadata)
	}
	if len(m.LineItems) == 0 {
		return fmt.Errorf("%w: no line items", ErrInvalidMetadata)
	}

	seen := make(map[uint]struct{}, len(m.LineItems))
	for i, item := range m.LineItems {
		if item.ClotheID == 0 {
			return fmt.Errorf("%w: line item %d has no clothe_id", ErrInvalidMetadata, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: line item %d quantity must be positive", ErrInvalidMetadata, i)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: line item %d unit_price is negative", ErrInvalidMetadata, i)
		}
		if _, dup := seen[item.ClotheID]; dup {
			return fmt.Errorf("%w: clothe %d listed twice", ErrInvalidMetadata, item.ClotheID)
		}
		seen[item.ClotheID] = struct{}{}
	}
	return nil
}

// ItemsTotal is the sum of unit_price*quantity without shipping.
func (m *CheckoutMetadata) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range m.LineItems {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return total
}

type PaymentRecord struct {
	ID                ResourceID       `json:"id"`
	Status            string           `json:"status"`
	StatusDetail      string           `json:"status_detail,omitempty"`
	ExternalReference string           `json:"external_reference,omitempty"`
	Metadata          CheckoutMetadata `json:"metadata"`
}

func (p *PaymentRecord) IsApproved() bool {
	return p.Status == PaymentStatusApproved
}

type PreferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int32   `json:"quantity"`
	CurrencyID string  `json:"currency_id"`
	UnitPrice  float64 `json:"unit_price"`
}

type BackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	BackURLs          BackURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	ExternalReference string           `json:"external_reference"`
	Metadata          CheckoutMetadata `json:"metadata"`
}

type PreferenceResult struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}
