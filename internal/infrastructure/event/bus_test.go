package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/domain/invoice"
	"github.com/zantech/instantorder/internal/domain/shared"
	"github.com/zantech/instantorder/internal/infrastructure/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	seen   []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, e)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func upserted() shared.DomainEvent {
	p := catalog.Product{ID: uuid.New(), Name: "Hammer", Category: "tools", UnitPrice: decimal.RequireFromString("12.50")}
	return catalog.NewProductUpsertedEvent(p, false, time.Now())
}

func removed() shared.DomainEvent {
	return catalog.NewProductRemovedEvent(uuid.New(), time.Now())
}

func TestInMemoryEventBus_PublishByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	onUpsert := &recordingHandler{types: []string{catalog.EventTypeProductUpserted}}
	onRemove := &recordingHandler{types: []string{catalog.EventTypeProductRemoved}}
	bus.Subscribe(onUpsert)
	bus.Subscribe(onRemove)

	require.NoError(t, bus.Publish(context.Background(), upserted(), upserted(), removed()))

	assert.Equal(t, 2, onUpsert.count())
	assert.Equal(t, 1, onRemove.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{types: []string{catalog.EventTypeProductUpserted}}
	bus.Subscribe(h, catalog.EventTypeProductRemoved)

	require.NoError(t, bus.Publish(context.Background(), upserted(), removed()))

	require.Equal(t, 1, h.count())
	assert.Equal(t, catalog.EventTypeProductRemoved, h.seen[0].EventType())
}

func TestInMemoryEventBus_Wildcard(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	all := &recordingHandler{}
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), upserted(), removed()))
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	failing := &recordingHandler{err: errors.New("nope")}
	panicking := &recordingHandler{panics: true}
	healthy := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NoError(t, bus.Publish(context.Background(), upserted()))
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	typed := &recordingHandler{types: []string{catalog.EventTypeProductUpserted, catalog.EventTypeProductRemoved}}
	all := &recordingHandler{}
	bus.Subscribe(typed)
	bus.Subscribe(all)

	bus.Unsubscribe(typed)
	bus.Unsubscribe(all)
	require.NoError(t, bus.Publish(context.Background(), upserted(), removed()))

	assert.Zero(t, typed.count())
	assert.Zero(t, all.count())
	assert.Empty(t, bus.handlers)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	assert.False(t, bus.Running())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.Running())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.Running())
}

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := NewAuditLogHandler(zap.New(core))
	assert.Empty(t, h.EventTypes())

	inv := &invoice.SingleItem{ID: "INV-42", CustomerName: "Ana"}
	ctx, _ := logger.WithRequestID(context.Background(), zap.NewNop(), "req-1")
	require.NoError(t, h.Handle(ctx, invoice.NewInvoiceIssuedEvent(inv, time.Now())))
	require.NoError(t, h.Handle(context.Background(), upserted()))

	entries := logs.All()
	require.Len(t, entries, 2)

	issued := entries[0]
	assert.Equal(t, invoice.EventTypeInvoiceIssued, issued.Message)
	fields := issued.ContextMap()
	assert.Equal(t, "INV-42", fields["aggregate_id"])
	assert.Equal(t, "Ana", fields["customer"])
	assert.Equal(t, int64(1), fields["lines"])
	assert.Equal(t, "req-1", fields["request_id"])

	product := entries[1].ContextMap()
	assert.Equal(t, "Hammer", product["name"])
	assert.Equal(t, "12.50", product["unit_price"])
	assert.NotContains(t, product, "request_id")
}
