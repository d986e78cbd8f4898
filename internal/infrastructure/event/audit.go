package event

import (
	"context"

	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/domain/invoice"
	"github.com/zantech/instantorder/internal/domain/shared"
	"github.com/zantech/instantorder/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per domain event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates the handler
func NewAuditLogHandler(log *zap.Logger) *AuditLogHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditLogHandler{logger: log.Named("audit")}
}

// EventTypes subscribes to every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event with its payload fields
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	switch e := event.(type) {
	case *catalog.ProductUpsertedEvent:
		fields = append(fields,
			zap.String("name", e.Name),
			zap.String("category", e.Category),
			zap.String("unit_price", e.UnitPrice.StringFixed(2)),
			zap.String("customer_name", e.CustomerName),
			zap.Bool("merged", e.Merged),
		)
	case *invoice.InvoiceIssuedEvent:
		fields = append(fields,
			zap.String("kind", e.Kind.String()),
			zap.String("customer", e.Customer),
			zap.Int("lines", e.Lines),
			zap.String("amount_due", e.AmountDue.StringFixed(2)),
		)
	case *invoice.InvoiceExportedEvent:
		fields = append(fields,
			zap.String("filename", e.Filename),
			zap.String("location", e.Location),
			zap.Int("pages", e.Pages),
			zap.Int("bytes", e.Bytes),
		)
	}

	h.logger.Info(event.EventType(), fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
