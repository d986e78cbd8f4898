package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/invoice"
)

// =============================================================================
// Request DTOs
// =============================================================================

// QuickInvoiceRequest creates a single-product invoice. Quantity accepts a
// number or a numeric string; anything unusable becomes 1.
type QuickInvoiceRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  any    `json:"quantity"`
}

// UpdateQuantityRequest edits the quantity of a single-product invoice
type UpdateQuantityRequest struct {
	Quantity any `json:"quantity"`
}

// AddLineRequest adds a product to a draft
type AddLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// SetLineQuantityRequest replaces the quantity of a draft line
type SetLineQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CustomerDTO identifies who an invoice is billed to
type CustomerDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty" binding:"omitempty,email"`
	Phone   string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Address string `json:"address,omitempty" binding:"omitempty,max=500"`
}

// FinalizeDraftRequest turns a draft into a composed invoice
type FinalizeDraftRequest struct {
	Customer CustomerDTO `json:"customer"`
	Notes    string      `json:"notes" binding:"max=2000"`
}

// =============================================================================
// Response DTOs
// =============================================================================

// LineResponse is one invoice or draft line
type LineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// DraftResponse is the state of an open composer session
type DraftResponse struct {
	ID        string          `json:"id"`
	Lines     []LineResponse  `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DraftChangeResponse reports whether a line edit took effect
type DraftChangeResponse struct {
	Draft   DraftResponse `json:"draft"`
	Changed bool          `json:"changed"`
}

// InvoiceResponse represents either invoice variant. Subtotal, tax rate,
// tax and notes are only set for composed invoices.
type InvoiceResponse struct {
	ID       string           `json:"id"`
	Kind     string           `json:"kind"`
	Date     time.Time        `json:"date"`
	Customer CustomerDTO      `json:"customer"`
	Lines    []LineResponse   `json:"lines"`
	Subtotal *decimal.Decimal `json:"subtotal,omitempty"`
	TaxRate  *decimal.Decimal `json:"tax_rate,omitempty"`
	Tax      *decimal.Decimal `json:"tax,omitempty"`
	Total    decimal.Decimal  `json:"total"`
	Notes    string           `json:"notes,omitempty"`
	Filename string           `json:"filename"`
}

// ExportResult is an exported invoice document
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Key         string
	Location    string
	Pages       int
}

func toLineResponses(lines []invoice.LineItem) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, l := range lines {
		out[i] = LineResponse{
			ProductID:   l.ProductID.String(),
			ProductName: l.ProductName,
			Category:    l.Category,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		}
	}
	return out
}

func toCustomer(c CustomerDTO) invoice.Customer {
	return invoice.Customer{Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
}

// ToInvoiceResponse converts either invoice variant
func ToInvoiceResponse(inv invoice.Invoice, filename string) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:       inv.Number(),
		Kind:     inv.Kind().String(),
		Date:     inv.IssuedAt(),
		Total:    inv.AmountDue(),
		Filename: filename,
	}
	switch v := inv.(type) {
	case *invoice.SingleItem:
		resp.Customer = CustomerDTO{Name: v.CustomerName}
		resp.Lines = toLineResponses([]invoice.LineItem{v.Line})
	case *invoice.Composed:
		resp.Customer = CustomerDTO{
			Name:    v.Customer.Name,
			Email:   v.Customer.Email,
			Phone:   v.Customer.Phone,
			Address: v.Customer.Address,
		}
		resp.Lines = toLineResponses(v.Lines)
		subtotal, rate, tax := v.Subtotal, v.TaxRate, v.Tax
		resp.Subtotal, resp.TaxRate, resp.Tax = &subtotal, &rate, &tax
		resp.Notes = v.Notes
	}
	return resp
}
