package printing

import (
	"fmt"
	"time"

	"github.com/zantech/instantorder/internal/domain/shared"
)

// MaxPages bounds the number of pages a single export may produce
const MaxPages = 500

// Bitmap is a rendered document image with known pixel dimensions
type Bitmap struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Placement positions the whole scaled bitmap on one output page. Only the
// window of the image between SourceYOffset and SourceYOffset+pageHeight is
// visible on that page.
type Placement struct {
	SourceYOffset float64 `json:"sourceYOffset"`
	DestYOffset   float64 `json:"destYOffset"`
}

// PageLayout is the paginator output, all values in millimeters
type PageLayout struct {
	PageWidth    float64     `json:"pageWidth"`
	PageHeight   float64     `json:"pageHeight"`
	ScaledWidth  float64     `json:"scaledWidth"`
	ScaledHeight float64     `json:"scaledHeight"`
	Placements   []Placement `json:"placements"`
}

// PageCount returns the number of output pages
func (l PageLayout) PageCount() int {
	return len(l.Placements)
}

// Paginate slices a sourceWidth x sourceHeight bitmap, scaled to the page
// width, into page-height windows in top-to-bottom order.
//
// The first page always draws the image at offset 0. Every further page
// shifts the image up by one page height while the remaining height is
// still >= 0. A document shorter than one page yields exactly one
// placement; one whose scaled height is an exact multiple of the page
// height ends with a blank page.
func Paginate(sourceWidth, sourceHeight int, page PageSize) (PageLayout, error) {
	errs := shared.FieldErrors{}
	if sourceWidth <= 0 {
		errs.Add("sourceWidth", "source width must be positive")
	}
	if sourceHeight <= 0 {
		errs.Add("sourceHeight", "source height must be positive")
	}
	if err := errs.Err(""); err != nil {
		return PageLayout{}, err
	}
	if err := page.Validate(); err != nil {
		return PageLayout{}, err
	}

	scaledHeight := float64(sourceHeight) * page.Width / float64(sourceWidth)
	if pages := scaledHeight / page.Height; pages > MaxPages {
		return PageLayout{}, shared.NewValidationError(
			fmt.Sprintf("document needs more than %d pages", MaxPages),
			map[string]string{"sourceHeight": "document too tall"},
		)
	}

	layout := PageLayout{
		PageWidth:    page.Width,
		PageHeight:   page.Height,
		ScaledWidth:  page.Width,
		ScaledHeight: scaledHeight,
	}

	remaining := scaledHeight
	offset := 0.0
	layout.Placements = append(layout.Placements, Placement{SourceYOffset: offset})
	remaining -= page.Height
	for remaining >= 0 {
		offset -= page.Height
		layout.Placements = append(layout.Placements, Placement{SourceYOffset: offset})
		remaining -= page.Height
	}
	return layout, nil
}

// ExportFilename returns the file name an exported invoice is saved under
func ExportFilename(invoiceID string) string {
	return "invoice-" + invoiceID + ".pdf"
}

// DocumentKey returns the storage key of an exported invoice:
// invoices/YYYY/MM/invoice-<id>.pdf, dated by the invoice issue time.
func DocumentKey(invoiceID string, issued time.Time) string {
	return fmt.Sprintf("invoices/%04d/%02d/%s", issued.Year(), int(issued.Month()), ExportFilename(invoiceID))
}
