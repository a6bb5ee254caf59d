package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "Pending"
	ShipmentSent      ShipmentStatus = "Sent"
	ShipmentDelivered ShipmentStatus = "Delivered"
)

type Clothe struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"size:128;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock     int32           `gorm:"not null;default:0;check:stock >= 0"`
	IsActive  bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ShippingCost struct {
	ID           uint            `gorm:"primaryKey"`
	LocalityID   string          `gorm:"size:16;uniqueIndex;not null"` // georef id, e.g. "06" for Buenos Aires
	LocalityName string          `gorm:"size:128"`
	Cost         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

type Shipment struct {
	ID           uint           `gorm:"primaryKey"`
	DispatchDate time.Time      `gorm:"not null"`
	LocalityID   string         `gorm:"size:16;index;not null"`
	Status       ShipmentStatus `gorm:"size:32;not null;default:Pending"`
}

type Purchase struct {
	ID         uint            `gorm:"primaryKey"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentID  string          `gorm:"size:64;uniqueIndex;not null"` // provider payment id, idempotency key
	UserID     uint            `gorm:"index;not null"`
	ShipmentID uint            `gorm:"index;not null"`
	CreatedAt  time.Time
}

// PurchaseClothe is one line item of a purchase. Rows are never updated.
type PurchaseClothe struct {
	ID         uint            `gorm:"primaryKey"`
	PurchaseID uint            `gorm:"index;not null"`
	ClotheID   uint            `gorm:"index;not null"`
	Quantity   int32           `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time
}

type WebhookEvent struct {
	ID         uint           `gorm:"primaryKey"`
	RequestID  string         `gorm:"size:128;index"`
	Kind       string         `gorm:"size:64;index"`
	PaymentID  string         `gorm:"size:64;index"`
	Outcome    string         `gorm:"size:32;not null"`
	Error      string         `gorm:"size:512"`
	Payload    datatypes.JSON
	ReceivedAt time.Time `gorm:"not null"`
}
