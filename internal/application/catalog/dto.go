package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/catalog"
)

// ImageDTO is a MIME-tagged base64 image payload
type ImageDTO struct {
	MIME string `json:"mime" binding:"required,max=50"`
	Data string `json:"data" binding:"required"`
}

// UpsertProductRequest represents a product submitted from the product form
type UpsertProductRequest struct {
	Name         string              `json:"name" binding:"required,max=200"`
	Category     string              `json:"category" binding:"required,max=100"`
	UnitPrice    decimal.NullDecimal `json:"unit_price"`
	CustomerName string              `json:"customer_name" binding:"required,max=200"`
	Image        *ImageDTO           `json:"image"`
}

// Draft converts the request into a normalized domain draft
func (r UpsertProductRequest) Draft() catalog.ProductDraft {
	d := catalog.ProductDraft{
		Name:         r.Name,
		Category:     r.Category,
		UnitPrice:    r.UnitPrice,
		CustomerName: r.CustomerName,
	}
	if r.Image != nil {
		d.Image = &catalog.Image{MIME: r.Image.MIME, Data: r.Image.Data}
	}
	d = d.Normalize()
	if canonical, ok := catalog.CanonicalCategory(d.Category); ok {
		d.Category = canonical
	}
	return d
}

// ProductResponse represents a catalog product
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CustomerName string          `json:"customer_name"`
	Image        *ImageDTO       `json:"image,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// UpsertResult is the outcome of an upsert. Merged is set when the name
// matched an existing product whose data was reused.
type UpsertResult struct {
	Product ProductResponse `json:"product"`
	Merged  bool            `json:"merged"`
	Message string          `json:"message"`
}

// LookupResult previews what an upsert of the same draft would store
type LookupResult struct {
	Existing *ProductResponse `json:"existing,omitempty"`
	Result   *ProductResponse `json:"result,omitempty"`
	Merged   bool             `json:"merged"`
}

// productCSVRow is one line of the catalog CSV export
type productCSVRow struct {
	ID           string `csv:"id"`
	Name         string `csv:"name"`
	Category     string `csv:"category"`
	UnitPrice    string `csv:"unit_price"`
	CustomerName string `csv:"customer_name"`
	HasImage     bool   `csv:"has_image"`
	CreatedAt    string `csv:"created_at"`
	UpdatedAt    string `csv:"updated_at"`
}

// Upsert result messages
const (
	MessageCreated = "Product added to catalog"
	MessageMerged  = "Product updated with existing data"
)

// ToProductResponse converts a domain product
func ToProductResponse(p catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Category:     p.Category,
		UnitPrice:    p.UnitPrice,
		CustomerName: p.CustomerName,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Image != nil {
		resp.Image = &ImageDTO{MIME: p.Image.MIME, Data: p.Image.Data}
	}
	return resp
}

func toProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out
}

func toCSVRow(p catalog.Product) *productCSVRow {
	return &productCSVRow{
		ID:           p.ID.String(),
		Name:         p.Name,
		Category:     p.Category,
		UnitPrice:    p.UnitPrice.StringFixed(2),
		CustomerName: p.CustomerName,
		HasImage:     p.Image != nil,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
