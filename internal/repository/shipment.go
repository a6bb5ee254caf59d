package repository

import (
	"context"

	"storefront-payments/internal/model"

	"gorm.io/gorm"
)

type ShipmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, shipment *model.Shipment) error
	FindByID(ctx context.Context, shipmentID uint) (*model.Shipment, error)
}

type shipmentRepoImpl struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepoImpl{
		db: db,
	}
}

func (r *shipmentRepoImpl) Create(ctx context.Context, tx *gorm.DB, shipment *model.Shipment) error {
	return conn(r.db, tx).WithContext(ctx).Create(shipment).Error
}

func (r *shipmentRepoImpl) FindByID(ctx context.Context, shipmentID uint) (*model.Shipment, error) {
	var shipment model.Shipment
	err := r.db.WithContext(ctx).
		Where("id = ?", shipmentID).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}

	return &shipment, nil
}
