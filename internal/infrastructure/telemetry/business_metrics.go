package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when BusinessMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// BusinessMetrics records catalog and invoice activity. A nil
// *BusinessMetrics is valid and records nothing.
type BusinessMetrics struct {
	upsertTotal    *Counter
	removeTotal    *Counter
	catalogSize    *Gauge
	invoiceTotal   *Counter
	invoiceCents   *Counter
	exportTotal    *Counter
	exportDuration *Histogram
	snapshotWrites *Counter
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{}
	var err error
	if bm.upsertTotal, err = NewCounter(meter, "catalog_upsert_total", "Catalog upserts", "{products}"); err != nil {
		return nil, err
	}
	if bm.removeTotal, err = NewCounter(meter, "catalog_remove_total", "Catalog removals", "{products}"); err != nil {
		return nil, err
	}
	if bm.catalogSize, err = NewGauge(meter, "catalog_size", "Products in the catalog", "{products}"); err != nil {
		return nil, err
	}
	if bm.snapshotWrites, err = NewCounter(meter, "catalog_snapshot_writes_total", "Catalog snapshot saves", "{writes}"); err != nil {
		return nil, err
	}
	if bm.invoiceTotal, err = NewCounter(meter, "invoice_created_total", "Invoices generated", "{invoices}"); err != nil {
		return nil, err
	}
	if bm.invoiceCents, err = NewCounter(meter, "invoice_amount_total", "Invoiced amount in cents", "{cents}"); err != nil {
		return nil, err
	}
	if bm.exportTotal, err = NewCounter(meter, "invoice_export_total", "Invoice PDF exports", "{exports}"); err != nil {
		return nil, err
	}
	if bm.exportDuration, err = NewHistogram(meter, "invoice_export_duration_seconds", "Invoice export latency", "s", ExportDurationBuckets...); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordUpsert counts one upsert and the resulting catalog size
func (m *BusinessMetrics) RecordUpsert(ctx context.Context, merged bool, size int) {
	if m == nil {
		return
	}
	m.upsertTotal.Inc(ctx, AttrMerged.Bool(merged))
	m.catalogSize.Record(ctx, int64(size))
}

// RecordRemove counts one removal and the resulting catalog size
func (m *BusinessMetrics) RecordRemove(ctx context.Context, size int) {
	if m == nil {
		return
	}
	m.removeTotal.Inc(ctx)
	m.catalogSize.Record(ctx, int64(size))
}

// RecordSnapshotWrite counts one snapshot save attempt
func (m *BusinessMetrics) RecordSnapshotWrite(ctx context.Context, store string, err error) {
	if m == nil {
		return
	}
	m.snapshotWrites.Inc(ctx, AttrStore.String(store), AttrStatus.String(statusOf(err)))
}

// RecordInvoice counts a generated invoice and its amount
func (m *BusinessMetrics) RecordInvoice(ctx context.Context, kind string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.invoiceTotal.Inc(ctx, AttrInvoiceKind.String(kind))
	m.invoiceCents.Add(ctx, amount.Shift(2).Round(0).IntPart(), AttrInvoiceKind.String(kind))
}

// RecordExport counts an export attempt and its latency
func (m *BusinessMetrics) RecordExport(ctx context.Context, kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrInvoiceKind.String(kind), AttrStatus.String(statusOf(err))}
	m.exportTotal.Inc(ctx, attrs...)
	m.exportDuration.RecordDuration(ctx, d, attrs...)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
