package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/shared"
)

// AggregateTypeInvoice is the aggregate type of invoice events
const AggregateTypeInvoice = "Invoice"

// Event types
const (
	EventTypeInvoiceIssued   = "InvoiceIssued"
	EventTypeInvoiceExported = "InvoiceExported"
)

// InvoiceIssuedEvent is raised when a quick invoice is created or a draft is
// finalized
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID string          `json:"invoiceId"`
	Kind      Kind            `json:"kind"`
	Customer  string          `json:"customer"`
	Lines     int             `json:"lines"`
	AmountDue decimal.Decimal `json:"amountDue"`
}

// NewInvoiceIssuedEvent creates the event for inv
func NewInvoiceIssuedEvent(inv Invoice, at time.Time) *InvoiceIssuedEvent {
	e := &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, inv.Number(), at),
		InvoiceID:       inv.Number(),
		Kind:            inv.Kind(),
		AmountDue:       inv.AmountDue(),
	}
	switch v := inv.(type) {
	case *SingleItem:
		e.Customer = v.CustomerName
		e.Lines = 1
	case *Composed:
		e.Customer = v.Customer.Name
		e.Lines = len(v.Lines)
	}
	return e
}

// InvoiceExportedEvent is raised after an invoice PDF is stored
type InvoiceExportedEvent struct {
	shared.BaseDomainEvent
	InvoiceID string `json:"invoiceId"`
	Filename  string `json:"filename"`
	Location  string `json:"location"`
	Pages     int    `json:"pages"`
	Bytes     int    `json:"bytes"`
}

// NewInvoiceExportedEvent creates the export event
func NewInvoiceExportedEvent(invoiceID, filename, location string, pages, size int, at time.Time) *InvoiceExportedEvent {
	return &InvoiceExportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceExported, AggregateTypeInvoice, invoiceID, at),
		InvoiceID:       invoiceID,
		Filename:        filename,
		Location:        location,
		Pages:           pages,
		Bytes:           size,
	}
}
