package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/shared"
)

// AggregateTypeProduct is the aggregate type of catalog events
const AggregateTypeProduct = "Product"

// Event types
const (
	EventTypeProductUpserted = "ProductUpserted"
	EventTypeProductRemoved  = "ProductRemoved"
)

// ProductUpsertedEvent is raised after a product is created or merged
type ProductUpsertedEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID       `json:"productId"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CustomerName string          `json:"customerName"`
	Merged       bool            `json:"merged"`
}

// NewProductUpsertedEvent creates the event for p
func NewProductUpsertedEvent(p Product, merged bool, at time.Time) *ProductUpsertedEvent {
	return &ProductUpsertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpserted, AggregateTypeProduct, p.ID.String(), at),
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        p.Category,
		UnitPrice:       p.UnitPrice,
		CustomerName:    p.CustomerName,
		Merged:          merged,
	}
}

// ProductRemovedEvent is raised after a product is deleted
type ProductRemovedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"productId"`
}

// NewProductRemovedEvent creates the event for id
func NewProductRemovedEvent(id uuid.UUID, at time.Time) *ProductRemovedEvent {
	return &ProductRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductRemoved, AggregateTypeProduct, id.String(), at),
		ProductID:       id,
	}
}
