// Package catalog provides the product catalog use cases: upsert with
// case-insensitive de-duplication, removal, lookup and export, each
// mutation followed by one snapshot write.
package catalog

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/domain/shared"
	"github.com/zantech/instantorder/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const serviceName = "CatalogService"

// Service owns the in-memory catalog and its snapshot store. mu serializes
// every mutation together with its save, so a snapshot always reflects a
// completed mutation.
type Service struct {
	mu               sync.RWMutex
	catalog          *catalog.Catalog
	store            catalog.SnapshotStore
	storeName        string
	strictCategories bool
	events           shared.EventPublisher
	metrics          *telemetry.BusinessMetrics
	now              func() time.Time
	logger           *zap.Logger
}

// Option configures the service
type Option func(*Service)

// WithCatalog replaces the empty default catalog
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithStrictCategories restricts categories to the fixed list
func WithStrictCategories(strict bool) Option {
	return func(s *Service) {
		s.strictCategories = strict
	}
}

// WithStoreName labels snapshot write metrics
func WithStoreName(name string) Option {
	return func(s *Service) {
		s.storeName = name
	}
}

// WithEventPublisher publishes ProductUpserted and ProductRemoved events
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithMetrics records business metrics
func WithMetrics(m *telemetry.BusinessMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the event timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a catalog service backed by store
func NewService(store catalog.SnapshotStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		catalog:          catalog.New(),
		store:            store,
		storeName:        "unknown",
		strictCategories: true,
		events:           shared.NopPublisher{},
		now:              time.Now,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the catalog with the stored snapshot. It is called once at
// startup.
func (s *Service) Load(ctx context.Context) error {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Load")
	defer span.End()

	products, err := s.store.Load(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.NewPersistenceError("failed to load catalog snapshot", err)
	}

	s.mu.Lock()
	dropped := s.catalog.Replace(products)
	size := s.catalog.Len()
	s.mu.Unlock()

	if dropped > 0 {
		s.logger.Warn("dropped products with duplicate names from snapshot", zap.Int("dropped", dropped))
	}
	s.logger.Info("catalog loaded", zap.Int("products", size), zap.String("store", s.storeName))
	return nil
}

// Upsert validates req and stores it, merging into an existing product of
// the same name. An invalid request leaves the catalog untouched and
// performs no write.
func (s *Service) Upsert(ctx context.Context, req UpsertProductRequest) (*UpsertResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Upsert")
	defer span.End()

	draft := req.Draft()
	if err := draft.Validate(s.strictCategories); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, merged := s.catalog.Upsert(draft)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductID, product.ID.String(),
		telemetry.SpanAttrProductName, product.Name,
		telemetry.SpanAttrMerged, merged,
	)
	if err := s.save(ctx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordUpsert(ctx, merged, s.catalog.Len())
	s.publish(ctx, catalog.NewProductUpsertedEvent(product, merged, s.now()))
	s.logger.Info("product upserted",
		zap.String("id", product.ID.String()),
		zap.String("name", product.Name),
		zap.Bool("merged", merged))

	result := &UpsertResult{Product: ToProductResponse(product), Merged: merged, Message: MessageCreated}
	if merged {
		result.Message = MessageMerged
	}
	return result, nil
}

// Remove deletes the product with id. It reports false, without writing,
// when no such product exists.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Remove")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrProductID, id.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog.Remove(id) {
		return false, nil
	}
	if err := s.save(ctx); err != nil {
		telemetry.RecordError(span, err)
		return true, err
	}

	s.metrics.RecordRemove(ctx, s.catalog.Len())
	s.publish(ctx, catalog.NewProductRemovedEvent(id, s.now()))
	s.logger.Info("product removed", zap.String("id", id.String()))
	return true, nil
}

// Preview reports what Upsert would store for req without mutating the
// catalog.
func (s *Service) Preview(ctx context.Context, req UpsertProductRequest) (*LookupResult, error) {
	draft := req.Draft()
	if draft.Name == "" {
		return nil, shared.NewValidationError("product name is required", map[string]string{"name": "product name is required"})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := &LookupResult{}
	if existing, ok := s.catalog.FindByName(draft.Name); ok {
		resp := ToProductResponse(existing)
		result.Existing = &resp
	}
	preview, merged := s.catalog.PreviewUpsert(draft)
	if merged || draft.Validate(s.strictCategories) == nil {
		resp := ToProductResponse(preview)
		result.Result = &resp
	}
	result.Merged = merged
	return result, nil
}

// FindByName returns the product whose name matches case-insensitively
func (s *Service) FindByName(ctx context.Context, name string) (*ProductResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.catalog.FindByName(name)
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Product not found")
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// Get returns the product with id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// Product returns a copy of the domain product with id
func (s *Service) Product(ctx context.Context, id uuid.UUID) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.catalog.Get(id)
	if !ok {
		return catalog.Product{}, shared.NewDomainError(shared.CodeNotFound, "Product not found")
	}
	return p, nil
}

// List returns all products in insertion order
func (s *Service) List(ctx context.Context) []ProductResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return toProductResponses(s.catalog.List())
}

// Images returns the images of the given products, skipping products
// without one
func (s *Service) Images(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*catalog.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()

	images := make(map[uuid.UUID]*catalog.Image, len(ids))
	for _, id := range ids {
		if p, ok := s.catalog.Get(id); ok && p.Image != nil {
			images[id] = p.Image
		}
	}
	return images
}

// Categories returns the fixed category list
func (s *Service) Categories() []string {
	return append([]string(nil), catalog.Categories...)
}

// ExportCSV writes the catalog as CSV to w
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	s.mu.RLock()
	products := s.catalog.List()
	s.mu.RUnlock()

	rows := make([]*productCSVRow, len(products))
	for i, p := range products {
		rows[i] = toCSVRow(p)
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write catalog csv: %w", err)
	}
	return nil
}

// save writes the full snapshot. Callers hold mu.
func (s *Service) save(ctx context.Context) error {
	err := s.store.Save(ctx, s.catalog.List())
	s.metrics.RecordSnapshotWrite(ctx, s.storeName, err)
	if err != nil {
		s.logger.Error("failed to save catalog snapshot",
			zap.String("store", s.storeName),
			zap.Error(err))
		return shared.NewPersistenceError("failed to save catalog snapshot", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish catalog events", zap.Error(err))
	}
}
