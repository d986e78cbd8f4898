package printing

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/zantech/instantorder/internal/domain/shared"
	"go.uber.org/zap"
)

const bitmapImageName = "document"

// PDFWriter encodes a paginated bitmap as a PDF with go-pdf/fpdf. Every page
// draws the whole scaled bitmap shifted up by the placement offset, so the
// sheet shows one page-height window of the document.
type PDFWriter struct {
	logger *zap.Logger
}

// NewPDFWriter creates a writer
func NewPDFWriter(logger *zap.Logger) *PDFWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFWriter{logger: logger}
}

// Write encodes doc. The sheet defaults to the layout page size.
func (w *PDFWriter) Write(doc Document) ([]byte, error) {
	if len(doc.Layout.Placements) == 0 {
		return nil, shared.NewRenderingFailure("layout has no pages", nil)
	}
	imageType, err := fpdfImageType(doc.Bitmap.MIME)
	if err != nil {
		return nil, err
	}
	sheet := doc.Sheet
	if sheet.Width <= 0 || sheet.Height <= 0 {
		sheet.Width, sheet.Height = doc.Layout.PageWidth, doc.Layout.PageHeight
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: sheet.Width, Ht: sheet.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(DefaultBrand, true)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}

	opts := fpdf.ImageOptions{ImageType: imageType, AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(bitmapImageName, opts, bytes.NewReader(doc.Bitmap.Data))
	if pdf.Err() {
		return nil, shared.NewRenderingFailure("failed to embed document bitmap", pdf.Error())
	}

	for _, placement := range doc.Layout.Placements {
		pdf.AddPage()
		pdf.ImageOptions(bitmapImageName,
			0, placement.SourceYOffset,
			doc.Layout.ScaledWidth, doc.Layout.ScaledHeight,
			false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, shared.NewRenderingFailure("failed to encode PDF", err)
	}

	w.logger.Debug("PDF written",
		zap.Int("pages", len(doc.Layout.Placements)),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func fpdfImageType(mime string) (string, error) {
	switch mime {
	case "image/png", "":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	}
	return "", shared.NewRenderingFailure(fmt.Sprintf("unsupported bitmap type %q", mime), nil)
}

var _ DocumentWriter = (*PDFWriter)(nil)
