package persistence

import (
	"context"
	"fmt"

	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const snapshotBatchSize = 200

// GormSnapshotStore keeps the catalog snapshot in the catalog_products table.
// Every Save replaces the whole table inside one transaction.
type GormSnapshotStore struct {
	db *gorm.DB
}

// NewGormSnapshotStore creates a new snapshot store backed by db
func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

// Load returns the stored products ordered by position
func (s *GormSnapshotStore) Load(ctx context.Context) ([]catalog.Product, error) {
	var rows []models.CatalogProductModel
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products, nil
}

// Save replaces the stored snapshot with products
func (s *GormSnapshotStore) Save(ctx context.Context, products []catalog.Product) error {
	rows := make([]models.CatalogProductModel, len(products))
	for i, p := range products {
		rows[i].FromDomain(p, i)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.CatalogProductModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, snapshotBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save catalog snapshot: %w", err)
	}
	return nil
}

var _ catalog.SnapshotStore = (*GormSnapshotStore)(nil)
