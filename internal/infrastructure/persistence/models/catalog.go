package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/catalog"
)

// CatalogProductModel is one row of the catalog snapshot. Position keeps the
// insertion order of the in-memory catalog.
type CatalogProductModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position     int             `gorm:"not null;index"`
	Name         string          `gorm:"type:varchar(200);not null"`
	NameKey      string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Category     string          `gorm:"type:varchar(100);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CustomerName string          `gorm:"type:varchar(200);not null"`
	ImageMIME    string          `gorm:"column:image_mime;type:varchar(50)"`
	ImageData    string          `gorm:"type:text"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CatalogProductModel) TableName() string {
	return "catalog_products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *CatalogProductModel) ToDomain() catalog.Product {
	p := catalog.Product{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		UnitPrice:    m.UnitPrice,
		CustomerName: m.CustomerName,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.ImageMIME != "" || m.ImageData != "" {
		p.Image = &catalog.Image{MIME: m.ImageMIME, Data: m.ImageData}
	}
	return p
}

// FromDomain populates the persistence model from a domain Product at the
// given list position.
func (m *CatalogProductModel) FromDomain(p catalog.Product, position int) {
	m.ID = p.ID
	m.Position = position
	m.Name = p.Name
	m.NameKey = catalog.NameKey(p.Name)
	m.Category = p.Category
	m.UnitPrice = p.UnitPrice
	m.CustomerName = p.CustomerName
	m.ImageMIME = ""
	m.ImageData = ""
	if p.Image != nil {
		m.ImageMIME = p.Image.MIME
		m.ImageData = p.Image.Data
	}
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}
