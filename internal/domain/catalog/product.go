package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zantech/instantorder/internal/domain/shared"
)

// Field limits, matching the catalog_products columns
const (
	maxNameLength     = 200
	maxCategoryLength = 100
	maxCustomerLength = 200
	maxImageMIME      = 50
)

// maxUnitPrice is the first price that no longer fits decimal(12,2)
var maxUnitPrice = decimal.New(1, 10)

// Image is an opaque, MIME-tagged raster payload (base64 data) attached to a
// product. The catalog never inspects it.
type Image struct {
	MIME string `json:"mime"`
	Data string `json:"data"`
}

// clone returns a copy so that no two products share an Image value.
func (i *Image) clone() *Image {
	if i == nil {
		return nil
	}
	cp := *i
	return &cp
}

// DataURL renders the image as a data URL suitable for an <img> tag.
func (i *Image) DataURL() string {
	if i == nil || i.Data == "" {
		return ""
	}
	return "data:" + i.MIME + ";base64," + i.Data
}

// Product is a catalog entry. Name is the case-insensitive natural key.
type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CustomerName string          `json:"customerName"`
	Image        *Image          `json:"image,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	p.Image = p.Image.clone()
	return p
}

// ProductDraft is a candidate product as entered by the user. UnitPrice is
// invalid when the form left the price empty.
type ProductDraft struct {
	Name         string
	Category     string
	UnitPrice    decimal.NullDecimal
	CustomerName string
	Image        *Image
}

// Price returns the entered price, zero when none was entered.
func (d ProductDraft) Price() decimal.Decimal {
	if !d.UnitPrice.Valid {
		return decimal.Zero
	}
	return d.UnitPrice.Decimal
}

// Normalize trims surrounding whitespace and rounds the price to cents.
func (d ProductDraft) Normalize() ProductDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	if d.UnitPrice.Valid {
		d.UnitPrice.Decimal = d.UnitPrice.Decimal.Round(2)
	}
	d.Image = d.Image.clone()
	return d
}

// Validate checks the required fields of a draft. Categories are checked
// against the fixed list only when strictCategories is set.
func (d ProductDraft) Validate(strictCategories bool) error {
	errs := shared.FieldErrors{}
	if err := validateProductName(d.Name); err != "" {
		errs.Add("name", err)
	}
	switch {
	case strings.TrimSpace(d.Category) == "":
		errs.Add("category", "category is required")
	case utf8.RuneCountInString(d.Category) > maxCategoryLength:
		errs.Add("category", "category cannot exceed 100 characters")
	case strictCategories && !IsKnownCategory(d.Category):
		errs.Add("category", "unknown category")
	}
	switch {
	case !d.UnitPrice.Valid:
		errs.Add("unitPrice", "unit price is required")
	case d.UnitPrice.Decimal.IsNegative():
		errs.Add("unitPrice", "unit price cannot be negative")
	case d.UnitPrice.Decimal.Round(2).GreaterThanOrEqual(maxUnitPrice):
		errs.Add("unitPrice", "unit price must be below 10000000000")
	}
	switch {
	case strings.TrimSpace(d.CustomerName) == "":
		errs.Add("customerName", "customer name is required")
	case utf8.RuneCountInString(d.CustomerName) > maxCustomerLength:
		errs.Add("customerName", "customer name cannot exceed 200 characters")
	}
	if d.Image != nil {
		if !strings.HasPrefix(d.Image.MIME, "image/") {
			errs.Add("image", "image must be a raster image payload")
		} else if len(d.Image.MIME) > maxImageMIME {
			errs.Add("image", "image type cannot exceed 50 characters")
		}
	}
	return errs.Err("")
}

func validateProductName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "product name is required"
	}
	if utf8.RuneCountInString(name) > maxNameLength || utf8.RuneCountInString(NameKey(name)) > maxNameLength {
		return "product name cannot exceed 200 characters"
	}
	return ""
}
