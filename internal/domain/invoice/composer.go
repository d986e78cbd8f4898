package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/domain/shared"
)

// Composer accumulates line items for a multi-product invoice. Each
// composition session owns its own Composer.
type Composer struct {
	lines   []LineItem
	numbers NumberGenerator
	now     func() time.Time
}

// NewComposer creates an empty composer. now defaults to time.Now.
func NewComposer(numbers NumberGenerator, now func() time.Time) *Composer {
	if now == nil {
		now = time.Now
	}
	return &Composer{numbers: numbers, now: now}
}

// AddLine adds quantity of product. An existing line for the same product
// has the quantity added and keeps its original unit price; otherwise a new
// line is appended with the product's current price.
func (c *Composer) AddLine(product catalog.Product, quantity int) error {
	if quantity < 1 {
		return shared.NewValidationError("quantity must be at least 1", map[string]string{
			"quantity": "must be at least 1",
		})
	}
	if product.ID == uuid.Nil {
		return shared.NewValidationError("product is required", map[string]string{
			"productId": "is required",
		})
	}
	if i := c.indexOf(product.ID); i >= 0 {
		c.lines[i].setQuantity(c.lines[i].Quantity + quantity)
		return nil
	}
	c.lines = append(c.lines, newLineItem(product, quantity))
	return nil
}

// RemoveLine deletes the line for productID entirely
func (c *Composer) RemoveLine(productID uuid.UUID) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// SetLineQuantity overwrites a line's quantity. Quantities below 1 and
// unknown products are ignored.
func (c *Composer) SetLineQuantity(productID uuid.UUID, quantity int) bool {
	if quantity < 1 {
		return false
	}
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.lines[i].setQuantity(quantity)
	return true
}

// Lines returns a copy of the current lines in insertion order
func (c *Composer) Lines() []LineItem {
	out := make([]LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines
func (c *Composer) Len() int {
	return len(c.lines)
}

// Subtotal sums the line totals
func (c *Composer) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.LineTotal)
	}
	return sum
}

// Finalize produces the invoice. It fails with a ValidationError when the
// customer name is blank or there are no lines, leaving the composer as is.
func (c *Composer) Finalize(customer Customer, notes string) (*Composed, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	errs := shared.FieldErrors{}
	if customer.Name == "" {
		errs.Add("customer.name", "customer name is required")
	}
	if len(c.lines) == 0 {
		errs.Add("lines", "at least one product is required")
	}
	if err := errs.Err(""); err != nil {
		return nil, err
	}

	subtotal := c.Subtotal()
	tax := subtotal.Mul(taxRate).Round(2)
	return &Composed{
		ID:       c.numbers.Next(),
		Date:     c.now(),
		Customer: customer,
		Lines:    c.Lines(),
		Subtotal: subtotal,
		TaxRate:  taxRate,
		Tax:      tax,
		Total:    subtotal.Add(tax),
		Notes:    strings.TrimSpace(notes),
	}, nil
}

func (c *Composer) indexOf(productID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
