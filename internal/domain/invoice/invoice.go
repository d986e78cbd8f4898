package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/catalog"
)

var taxRate = decimal.New(1, -1)

// TaxRate returns the fixed tax applied to composed invoices (10%)
func TaxRate() decimal.Decimal {
	return taxRate
}

// Kind tags the invoice variant
type Kind string

const (
	KindSingleItem Kind = "SINGLE_ITEM"
	KindComposed   Kind = "COMPOSED"
)

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Invoice is either a *SingleItem or a *Composed. Consumers switch on the
// concrete type.
type Invoice interface {
	Number() string
	IssuedAt() time.Time
	Kind() Kind
	AmountDue() decimal.Decimal
	invoice()
}

// Customer identifies who the invoice is billed to
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// SingleItem is a quick invoice for one product. Its total is the line
// total; no tax is applied.
type SingleItem struct {
	ID           string
	Date         time.Time
	CustomerName string
	Line         LineItem
}

// NewSingleItem builds a quick invoice for product. quantity is coerced with
// CoerceQuantity and the customer is the product's customer name.
func NewSingleItem(product catalog.Product, quantity any, numbers NumberGenerator, now time.Time) *SingleItem {
	return &SingleItem{
		ID:           numbers.Next(),
		Date:         now,
		CustomerName: product.CustomerName,
		Line:         newLineItem(product, CoerceQuantity(quantity)),
	}
}

// WithQuantity returns a copy of the invoice with a new quantity and total
func (s *SingleItem) WithQuantity(quantity any) *SingleItem {
	cp := *s
	cp.Line.setQuantity(CoerceQuantity(quantity))
	return &cp
}

// Total returns the line total
func (s *SingleItem) Total() decimal.Decimal { return s.Line.LineTotal }

func (s *SingleItem) Number() string             { return s.ID }
func (s *SingleItem) IssuedAt() time.Time        { return s.Date }
func (s *SingleItem) Kind() Kind                 { return KindSingleItem }
func (s *SingleItem) AmountDue() decimal.Decimal { return s.Line.LineTotal }
func (s *SingleItem) invoice()                   {}

// Composed is a finalized multi-product invoice
type Composed struct {
	ID       string
	Date     time.Time
	Customer Customer
	Lines    []LineItem
	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Notes    string
}

func (c *Composed) Number() string             { return c.ID }
func (c *Composed) IssuedAt() time.Time        { return c.Date }
func (c *Composed) Kind() Kind                 { return KindComposed }
func (c *Composed) AmountDue() decimal.Decimal { return c.Total }
func (c *Composed) invoice()                   {}

var (
	_ Invoice = (*SingleItem)(nil)
	_ Invoice = (*Composed)(nil)
)
