package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zantech/instantorder/internal/domain/invoice"
	"github.com/zantech/instantorder/internal/domain/printing"
	"github.com/zantech/instantorder/internal/domain/shared"
	infra "github.com/zantech/instantorder/internal/infrastructure/printing"
	"github.com/zantech/instantorder/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Export renders an issued invoice to a paginated PDF and stores it under
// invoices/YYYY/MM/invoice-<id>.pdf. Renderer and storage failures are
// retryable; the invoice itself is never modified.
func (s *Service) Export(ctx context.Context, invoiceID string) (result *ExportResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Export")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, invoiceID)

	inv, err := s.lookup(invoiceID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordExport(ctx, inv.Kind().String(), time.Since(start), err)
		if err != nil {
			telemetry.RecordError(span, err)
			s.logger.Warn("invoice export failed",
				zap.String("invoice_id", invoiceID),
				zap.Bool("retryable", shared.IsRetryable(err)),
				zap.Error(err))
		}
	}()

	html, err := s.pipeline.Template.Render(inv, s.products.Images(ctx, productIDs(inv)))
	if err != nil {
		return nil, asRenderingFailure("failed to render invoice template", err)
	}

	bitmap, err := s.pipeline.Rasterizer.Rasterize(ctx, html)
	if err != nil {
		return nil, asRenderingFailure("failed to capture invoice", err)
	}

	layout, err := printing.Paginate(bitmap.Width, bitmap.Height, s.cfg.PaperSize.Page())
	if err != nil {
		return nil, err
	}

	filename := printing.ExportFilename(invoiceID)
	data, err := s.pipeline.Writer.Write(infra.Document{
		Title:  filename,
		Bitmap: bitmap,
		Layout: layout,
		Sheet:  s.cfg.PaperSize.Sheet(),
	})
	if err != nil {
		return nil, asRenderingFailure("failed to write invoice pdf", err)
	}

	result = &ExportResult{
		Filename:    filename,
		ContentType: infra.PDFContentType,
		Data:        data,
		Pages:       layout.PageCount(),
	}

	if s.pipeline.Storage != nil {
		key := printing.DocumentKey(invoiceID, inv.IssuedAt())
		stored, err := s.pipeline.Storage.Put(ctx, key, data, infra.PDFContentType)
		if err != nil {
			return nil, asStorageFailure(err)
		}
		result.Key = stored.Key
		result.Location = stored.Location
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrPages, result.Pages)
	s.publish(ctx, invoice.NewInvoiceExportedEvent(invoiceID, filename, result.Location, result.Pages, len(data), s.now()))
	s.logger.Info("invoice exported",
		zap.String("invoice_id", invoiceID),
		zap.Int("pages", result.Pages),
		zap.Int("bytes", len(data)),
		zap.String("location", result.Location))
	return result, nil
}

func productIDs(inv invoice.Invoice) []uuid.UUID {
	switch v := inv.(type) {
	case *invoice.SingleItem:
		return []uuid.UUID{v.Line.ProductID}
	case *invoice.Composed:
		ids := make([]uuid.UUID, len(v.Lines))
		for i, l := range v.Lines {
			ids[i] = l.ProductID
		}
		return ids
	}
	return nil
}

func asRenderingFailure(message string, err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.NewRenderingFailure(message, err)
}

func asStorageFailure(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.NewStorageFailure("failed to store exported invoice", err)
}
