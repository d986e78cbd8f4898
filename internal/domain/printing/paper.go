package printing

import "github.com/zantech/instantorder/internal/domain/shared"

// PaperSize represents the output paper size
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"     // 210mm x 295mm printable strip
	PaperSizeA5     PaperSize = "A5"     // 148mm x 210mm
	PaperSizeLetter PaperSize = "LETTER" // 215.9mm x 279.4mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeLetter:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Page returns the page dimensions in millimeters. A4 uses a 295mm slice
// height, matching the layout the invoice export has always produced.
func (p PaperSize) Page() PageSize {
	switch p {
	case PaperSizeA5:
		return PageSize{Width: 148, Height: 210}
	case PaperSizeLetter:
		return PageSize{Width: 215.9, Height: 279.4}
	default:
		return PageSize{Width: 210, Height: 295}
	}
}

// Sheet returns the physical sheet the pages are printed on. It differs
// from Page only for A4, whose 297mm sheet carries a 295mm slice.
func (p PaperSize) Sheet() PageSize {
	if p == PaperSizeA4 || !p.IsValid() {
		return PageSize{Width: 210, Height: 297}
	}
	return p.Page()
}

// PageSize is a page in millimeters
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultPageSize is the A4 page used for invoice export
var DefaultPageSize = PaperSizeA4.Page()

// Validate checks that both dimensions are positive
func (p PageSize) Validate() error {
	errs := shared.FieldErrors{}
	if p.Width <= 0 {
		errs.Add("pageWidth", "page width must be positive")
	}
	if p.Height <= 0 {
		errs.Add("pageHeight", "page height must be positive")
	}
	return errs.Err("")
}
