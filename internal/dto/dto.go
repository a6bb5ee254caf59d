package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	ClotheID uint  `json:"clothe_id"`
	Quantity int32 `json:"quantity"`
}

type CheckoutDestination struct {
	LocalityID      string `json:"locality_id"`
	DestinationName string `json:"destination_name"`
}

type CheckoutRequest struct {
	Items       []*CheckoutItem     `json:"items"`
	Destination CheckoutDestination `json:"destination"`
}

type CheckoutResponse struct {
	CheckoutURL       string          `json:"checkout_url"`
	PreferenceID      string          `json:"preference_id"`
	ExternalReference string          `json:"external_reference"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

type WebhookResponse struct {
	Status string `json:"status"`
}

type PurchaseItem struct {
	ClotheID  uint            `json:"clothe_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type PurchaseSummary struct {
	ID             uint            `json:"id"`
	PaymentID      string          `json:"payment_id"`
	Amount         decimal.Decimal `json:"amount"`
	ShipmentStatus string          `json:"shipment_status"`
	LocalityID     string          `json:"locality_id"`
	CreatedAt      time.Time       `json:"created_at"`
	Items          []PurchaseItem  `json:"items"`
}
