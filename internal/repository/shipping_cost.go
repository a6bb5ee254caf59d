package repository

import (
	"context"
	"errors"

	"storefront-payments/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShippingCostRepository interface {
	Seed(ctx context.Context) error
	// FindByLocalityID returns nil without error when the locality has no cost configured.
	FindByLocalityID(ctx context.Context, localityID string) (*model.ShippingCost, error)
}

type shippingCostRepoImpl struct {
	db *gorm.DB
}

func NewShippingCostRepository(db *gorm.DB) ShippingCostRepository {
	return &shippingCostRepoImpl{
		db: db,
	}
}

func (r *shippingCostRepoImpl) Seed(ctx context.Context) error {
	costs := []model.ShippingCost{
		{LocalityID: "02", LocalityName: "Ciudad Autónoma de Buenos Aires", Cost: decimal.NewFromInt(30)},
		{LocalityID: "06", LocalityName: "Buenos Aires", Cost: decimal.NewFromInt(50)},
		{LocalityID: "14", LocalityName: "Córdoba", Cost: decimal.NewFromInt(80)},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&costs).Error
}

func (r *shippingCostRepoImpl) FindByLocalityID(ctx context.Context, localityID string) (*model.ShippingCost, error) {
	var cost model.ShippingCost
	err := r.db.WithContext(ctx).
		Where("locality_id = ?", localityID).
		First(&cost).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &cost, nil
}
