// Package printing turns invoices into exported PDF documents.
//
// The export pipeline has four collaborators, each behind an interface so
// the invoice service can be tested without a browser:
//
//   - TemplateEngine renders an invoice into a standalone HTML document
//   - Rasterizer captures that document as one tall bitmap (ChromedpRasterizer
//     drives headless Chrome)
//   - DocumentWriter lays the bitmap out over fixed-height pages and encodes
//     the PDF (PDFWriter uses go-pdf/fpdf)
//   - DocumentStorage keeps the exported files (FileSystemStorage here, an S3
//     implementation lives in the storage package)
//
// Example usage:
//
//	engine, _ := NewTemplateEngine(TemplateConfig{})
//	html, _ := engine.Render(inv, images)
//	bitmap, _ := rasterizer.Rasterize(ctx, html)
//	layout, _ := printing.Paginate(bitmap.Width, bitmap.Height, printing.PaperSizeA4.Page())
//	pdf, _ := NewPDFWriter(nil).Write(Document{Bitmap: bitmap, Layout: layout, Sheet: printing.PaperSizeA4.Sheet()})
package printing
