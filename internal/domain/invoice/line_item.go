package invoice

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/catalog"
)

// LineItem is one priced row of an invoice, one per distinct product.
// UnitPrice is captured when the line is created and never re-read from the
// catalog.
type LineItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

func newLineItem(p catalog.Product, quantity int) LineItem {
	l := LineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Category:    p.Category,
		UnitPrice:   p.UnitPrice,
	}
	l.setQuantity(quantity)
	return l
}

// setQuantity overwrites the quantity and recomputes the line total
func (l *LineItem) setQuantity(quantity int) {
	l.Quantity = quantity
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
