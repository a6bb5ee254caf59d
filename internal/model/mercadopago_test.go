package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationAcceptsStringAndNumericIDs(t *testing.T) {
	var n Notification
	require.NoError(t, json.Unmarshal([]byte(`{"type":"payment","data":{"id":"12345"}}`), &n))
	assert.Equal(t, ResourceID("12345"), n.Data.ID)
	assert.True(t, n.IsPayment())

	n = Notification{}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"payment","data":{"id":98765432101}}`), &n))
	assert.Equal(t, ResourceID("98765432101"), n.Data.ID)

	n = Notification{}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"merchant_order","data":{"id":null}}`), &n))
	assert.Empty(t, n.Data.ID)
	assert.False(t, n.IsPayment())

	n = Notification{}
	assert.Error(t, json.Unmarshal([]byte(`{"type":"payment","data":{"id":{}}}`), &n))
}

func TestPaymentRecordDecodesProviderMetadata(t *testing.T) {
	body := `{
		"id": 12345,
		"status": "approved",
		"metadata": {
			"total_amount": 150,
			"user_id": 7,
			"destination": {"locality_id": "06", "destination_name": "Buenos Aires", "shipping_cost": "50"},
			"line_items": [{"clothe_id": 1, "name": "Remera", "quantity": 2, "unit_price": 50}]
		}
	}`

	var record PaymentRecord
	require.NoError(t, json.Unmarshal([]byte(body), &record))

	assert.Equal(t, ResourceID("12345"), record.ID)
	assert.True(t, record.IsApproved())
	assert.True(t, record.Metadata.TotalAmount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, uint(7), record.Metadata.UserID)
	assert.Equal(t, "06", record.Metadata.Destination.LocalityID)
	require.Len(t, record.Metadata.LineItems, 1)
	assert.Equal(t, int32(2), record.Metadata.LineItems[0].Quantity)
	assert.True(t, record.Metadata.ItemsTotal().Equal(decimal.NewFromInt(100)))
	assert.NoError(t, record.Metadata.Validate())
}

func validMetadata() CheckoutMetadata {
	return CheckoutMetadata{
		TotalAmount: decimal.NewFromInt(150),
		UserID:      7,
		Destination: Destination{LocalityID: "06"},
		LineItems: []MetadataLineItem{
			{ClotheID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
		},
	}
}

func TestCheckoutMetadataValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *CheckoutMetadata)
	}{
		{"missing user", func(m *CheckoutMetadata) { m.UserID = 0 }},
		{"missing locality", func(m *CheckoutMetadata) { m.Destination.LocalityID = "" }},
		{"zero total", func(m *CheckoutMetadata) { m.TotalAmount = decimal.Zero }},
		{"no items", func(m *CheckoutMetadata) { m.LineItems = nil }},
		{"missing clothe id", func(m *CheckoutMetadata) { m.LineItems[0].ClotheID = 0 }},
		{"zero quantity", func(m *CheckoutMetadata) { m.LineItems[0].Quantity = 0 }},
		{"negative price", func(m *CheckoutMetadata) { m.LineItems[0].UnitPrice = decimal.NewFromInt(-1) }},
		{"duplicate clothe", func(m *CheckoutMetadata) {
			m.LineItems = append(m.LineItems, MetadataLineItem{ClotheID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(50)})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMetadata()
			tt.mutate(&m)
			err := m.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidMetadata))
		})
	}

	m := validMetadata()
	assert.NoError(t, m.Validate())
}
