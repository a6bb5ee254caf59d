package repository

import (
	"context"
	"errors"

	"storefront-payments/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockConflict means a conditional decrement matched no row: the clothe
// is gone, inactive, or holds less stock than requested.
var ErrStockConflict = errors.New("stock decrement rejected")

type InventoryRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, tx *gorm.DB, clotheID uint) (*model.Clothe, error)
	FindMany(ctx context.Context, clotheIDs []uint) ([]*model.Clothe, error)
	Decrement(ctx context.Context, tx *gorm.DB, clotheID uint, quantity int32) error
}

type inventoryRepoImpl struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepoImpl{
		db: db,
	}
}

func (r *inventoryRepoImpl) Seed(ctx context.Context) error {
	clothes := []model.Clothe{
		{ID: 1, Name: "Remera básica", Price: decimal.NewFromInt(50), Stock: 20, IsActive: true},
		{ID: 2, Name: "Buzo canguro", Price: decimal.NewFromInt(120), Stock: 10, IsActive: true},
		{ID: 3, Name: "Jean recto", Price: decimal.NewFromInt(95), Stock: 15, IsActive: true},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&clothes).Error
}

// FindByID returns gorm.ErrRecordNotFound for missing or inactive clothes.
func (r *inventoryRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, clotheID uint) (*model.Clothe, error) {
	var clothe model.Clothe
	err := conn(r.db, tx).WithContext(ctx).
		Where("id = ? AND is_active = ?", clotheID, true).
		First(&clothe).Error
	if err != nil {
		return nil, err
	}

	return &clothe, nil
}

func (r *inventoryRepoImpl) FindMany(ctx context.Context, clotheIDs []uint) ([]*model.Clothe, error) {
	var clothes []*model.Clothe
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", clotheIDs, true).
		Find(&clothes).
		Error
	if err != nil {
		return nil, err
	}

	return clothes, nil
}

// Decrement subtracts quantity in a single conditional UPDATE so concurrent
// reconciliations can never lose an update or drive stock below zero.
func (r *inventoryRepoImpl) Decrement(ctx context.Context, tx *gorm.DB, clotheID uint, quantity int32) error {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Clothe{}).
		Where("id = ? AND is_active = ? AND stock >= ?", clotheID, true, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStockConflict
	}

	return nil
}
