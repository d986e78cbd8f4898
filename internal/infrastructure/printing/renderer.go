package printing

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/domain/invoice"
	"github.com/zantech/instantorder/internal/domain/printing"
)

// PDFContentType is the MIME type of exported documents
const PDFContentType = "application/pdf"

// InvoiceTemplate renders an invoice into a complete HTML document. images
// holds the product images keyed by product id; missing entries render
// without a thumbnail.
type InvoiceTemplate interface {
	Render(inv invoice.Invoice, images map[uuid.UUID]*catalog.Image) (string, error)
}

// Rasterizer captures an HTML document as a single bitmap
type Rasterizer interface {
	// Rasterize loads html and returns the full height capture
	Rasterize(ctx context.Context, html string) (printing.Bitmap, error)
	// Close releases the browser resources
	Close() error
}

// Document is a rasterized invoice ready to be laid out
type Document struct {
	Title  string
	Bitmap printing.Bitmap
	Layout printing.PageLayout
	// Sheet is the physical page size; Layout.PageHeight is the slice height
	Sheet printing.PageSize
}

// DocumentWriter encodes a laid out document
type DocumentWriter interface {
	Write(doc Document) ([]byte, error)
}

// StoredDocument describes a document written to storage
type StoredDocument struct {
	Key      string
	Location string
	Size     int64
}

// DocumentStorage keeps exported documents by key
type DocumentStorage interface {
	// Put writes data under key, replacing any previous document
	Put(ctx context.Context, key string, data []byte, contentType string) (*StoredDocument, error)
	// Get opens the document stored under key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the document; a missing key is not an error
	Delete(ctx context.Context, key string) error
}
