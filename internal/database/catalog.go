package database

import (
	"gorm.io/gorm"

	"resto-system/internal/apperrors"
	"resto-system/internal/database/models"
)

// Catalog resolves the externally managed branch and product records. The db
// argument is either the pool or the caller's open transaction.
type Catalog interface {
	GetBranch(db *gorm.DB, id int32) (models.Branch, error)
	GetProduct(db *gorm.DB, id int32) (models.Product, error)
	ListBranchIDs(db *gorm.DB) ([]int32, error)
}

type GormCatalog struct{}

func (GormCatalog) GetBranch(db *gorm.DB, id int32) (models.Branch, error) {
	var branch models.Branch
	if id == 0 {
		return branch, apperrors.ErrBranchNotFound
	}
	if err := db.First(&branch, id).Error; err != nil {
		return branch, Classify(err, apperrors.ErrBranchNotFound.WithMessagef("branch %d not found", id))
	}
	return branch, nil
}

func (GormCatalog) GetProduct(db *gorm.DB, id int32) (models.Product, error) {
	var product models.Product
	if id == 0 {
		return product, apperrors.ErrProductNotFound
	}
	if err := db.First(&product, id).Error; err != nil {
		return product, Classify(err, apperrors.ErrProductNotFound.WithMessagef("product %d not found", id))
	}
	return product, nil
}

func (GormCatalog) ListBranchIDs(db *gorm.DB) ([]int32, error) {
	var ids []int32
	if err := db.Model(&models.Branch{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Unexpected(err)
	}
	return ids, nil
}
