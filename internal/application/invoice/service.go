// Package invoice provides the invoice use cases: quick single-product
// invoices, composer drafts, the in-process invoice registry and PDF export.
package invoice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/domain/invoice"
	"github.com/zantech/instantorder/internal/domain/printing"
	"github.com/zantech/instantorder/internal/domain/shared"
	infra "github.com/zantech/instantorder/internal/infrastructure/printing"
	"github.com/zantech/instantorder/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const serviceName = "InvoiceService"

// Defaults for Config fields left at zero
const (
	DefaultRegistrySize = 1000
	DefaultMaxDrafts    = 100
)

// ProductSource resolves catalog products for invoicing
type ProductSource interface {
	Product(ctx context.Context, id uuid.UUID) (catalog.Product, error)
	Images(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*catalog.Image
}

// Config holds the invoice service limits
type Config struct {
	RegistrySize int
	MaxDrafts    int
	PaperSize    printing.PaperSize
}

// ExportPipeline holds the collaborators used by Export. Storage may be
// nil, in which case exported documents are only returned to the caller.
type ExportPipeline struct {
	Template   infra.InvoiceTemplate
	Rasterizer infra.Rasterizer
	Writer     infra.DocumentWriter
	Storage    infra.DocumentStorage
}

type draft struct {
	composer  *invoice.Composer
	createdAt time.Time
	updatedAt time.Time
}

// Service coordinates drafts, issued invoices and their export
type Service struct {
	products ProductSource
	numbers  invoice.NumberGenerator
	pipeline ExportPipeline
	cfg      Config

	mu       sync.Mutex
	drafts   map[uuid.UUID]*draft
	invoices map[string]invoice.Invoice
	order    []string // invoice ids, oldest first

	events  shared.EventPublisher
	metrics *telemetry.BusinessMetrics
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures the service
type Option func(*Service)

// WithEventPublisher publishes InvoiceIssued and InvoiceExported events
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

// WithClock overrides the time source for invoice dates
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an invoice service
func NewService(products ProductSource, numbers invoice.NumberGenerator, pipeline ExportPipeline, cfg Config, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RegistrySize <= 0 {
		cfg.RegistrySize = DefaultRegistrySize
	}
	if cfg.MaxDrafts <= 0 {
		cfg.MaxDrafts = DefaultMaxDrafts
	}
	if !cfg.PaperSize.IsValid() {
		cfg.PaperSize = printing.PaperSizeA4
	}
	s := &Service{
		products: products,
		numbers:  numbers,
		pipeline: pipeline,
		cfg:      cfg,
		drafts:   make(map[uuid.UUID]*draft),
		invoices: make(map[string]invoice.Invoice),
		events:   shared.NopPublisher{},
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// Quick invoices
// =============================================================================

// QuickInvoice issues a single-product invoice billed to the product's
// customer
func (s *Service) QuickInvoice(ctx context.Context, req QuickInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "QuickInvoice")
	defer span.End()

	productID, err := parseID("product_id", req.ProductID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.Product(ctx, productID)
	if err != nil {
		return nil, err
	}

	inv := invoice.NewSingleItem(product, req.Quantity, s.numbers, s.now())
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, inv.ID,
		telemetry.SpanAttrProductID, productID.String(),
		telemetry.SpanAttrQuantity, inv.Line.Quantity,
	)
	s.issue(ctx, inv)
	return ToInvoiceResponse(inv, printing.ExportFilename(inv.ID)), nil
}

// UpdateQuickQuantity replaces the quantity of a single-product invoice and
// recomputes its total
func (s *Service) UpdateQuickQuantity(ctx context.Context, invoiceID string, req UpdateQuantityRequest) (*InvoiceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, errInvoiceNotFound()
	}
	single, ok := inv.(*invoice.SingleItem)
	if !ok {
		return nil, shared.NewValidationError("only single-product invoices support quantity editing",
			map[string]string{"quantity": "invoice is not a single-product invoice"})
	}
	updated := single.WithQuantity(req.Quantity)
	s.invoices[invoiceID] = updated
	return ToInvoiceResponse(updated, printing.ExportFilename(invoiceID)), nil
}

// Get returns an issued invoice
func (s *Service) Get(ctx context.Context, invoiceID string) (*InvoiceResponse, error) {
	inv, err := s.lookup(invoiceID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv, printing.ExportFilename(invoiceID)), nil
}

// =============================================================================
// Drafts
// =============================================================================

// CreateDraft opens a new composer session
func (s *Service) CreateDraft(ctx context.Context) (*DraftResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.drafts) >= s.cfg.MaxDrafts {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Too many open invoice drafts")
	}
	id := uuid.New()
	now := s.now()
	d := &draft{composer: invoice.NewComposer(s.numbers, s.now), createdAt: now, updatedAt: now}
	s.drafts[id] = d

	s.logger.Debug("invoice draft created", zap.String("draft_id", id.String()))
	return toDraftResponse(id, d), nil
}

// GetDraft returns the state of a draft
func (s *Service) GetDraft(ctx context.Context, draftID uuid.UUID) (*DraftResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	return toDraftResponse(draftID, d), nil
}

// AddLine adds a product to a draft, merging quantities when the product is
// already on it
func (s *Service) AddLine(ctx context.Context, draftID uuid.UUID, req AddLineRequest) (*DraftResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "AddLine")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDraftID, draftID.String(),
		telemetry.SpanAttrProductID, req.ProductID,
		telemetry.SpanAttrQuantity, req.Quantity,
	)

	productID, err := parseID("product_id", req.ProductID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.Product(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	if err := d.composer.AddLine(product, req.Quantity); err != nil {
		return nil, err
	}
	d.updatedAt = s.now()
	return toDraftResponse(draftID, d), nil
}

// RemoveLine deletes a product's line from a draft
func (s *Service) RemoveLine(ctx context.Context, draftID, productID uuid.UUID) (*DraftChangeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	changed := d.composer.RemoveLine(productID)
	if changed {
		d.updatedAt = s.now()
	}
	return &DraftChangeResponse{Draft: *toDraftResponse(draftID, d), Changed: changed}, nil
}

// SetLineQuantity replaces a line quantity. Quantities below 1 and unknown
// products leave the draft unchanged.
func (s *Service) SetLineQuantity(ctx context.Context, draftID, productID uuid.UUID, req SetLineQuantityRequest) (*DraftChangeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	changed := d.composer.SetLineQuantity(productID, req.Quantity)
	if changed {
		d.updatedAt = s.now()
	}
	return &DraftChangeResponse{Draft: *toDraftResponse(draftID, d), Changed: changed}, nil
}

// DiscardDraft drops a draft. It reports false for an unknown draft.
func (s *Service) DiscardDraft(ctx context.Context, draftID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[draftID]; !ok {
		return false
	}
	delete(s.drafts, draftID)
	return true
}

// FinalizeDraft issues a composed invoice from a draft and closes the
// draft. A validation failure keeps the draft open and unchanged.
func (s *Service) FinalizeDraft(ctx context.Context, draftID uuid.UUID, req FinalizeDraftRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "FinalizeDraft")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDraftID, draftID.String())

	s.mu.Lock()
	d, err := s.draft(draftID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	composed, err := d.composer.Finalize(toCustomer(req.Customer), req.Notes)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	delete(s.drafts, draftID)
	s.mu.Unlock()

	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, composed.ID)
	s.issue(ctx, composed)
	return ToInvoiceResponse(composed, printing.ExportFilename(composed.ID)), nil
}

// =============================================================================
// Registry
// =============================================================================

// issue registers inv, evicting the oldest invoice when the registry is
// full, and announces it
func (s *Service) issue(ctx context.Context, inv invoice.Invoice) {
	s.mu.Lock()
	id := inv.Number()
	if _, exists := s.invoices[id]; !exists {
		s.order = append(s.order, id)
	}
	s.invoices[id] = inv
	for len(s.order) > s.cfg.RegistrySize {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.invoices, evicted)
		s.logger.Debug("invoice evicted from registry", zap.String("invoice_id", evicted))
	}
	s.mu.Unlock()

	s.metrics.RecordInvoice(ctx, inv.Kind().String(), inv.AmountDue())
	s.publish(ctx, invoice.NewInvoiceIssuedEvent(inv, s.now()))
	s.logger.Info("invoice issued",
		zap.String("invoice_id", id),
		zap.String("kind", inv.Kind().String()),
		zap.String("amount_due", inv.AmountDue().StringFixed(2)))
}

func (s *Service) lookup(invoiceID string) (invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, errInvoiceNotFound()
	}
	return inv, nil
}

// draft returns the session for id. Callers hold mu.
func (s *Service) draft(id uuid.UUID) (*draft, error) {
	d, ok := s.drafts[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Invoice draft not found")
	}
	return d, nil
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish invoice events", zap.Error(err))
	}
}

func toDraftResponse(id uuid.UUID, d *draft) *DraftResponse {
	return &DraftResponse{
		ID:        id.String(),
		Lines:     toLineResponses(d.composer.Lines()),
		Subtotal:  d.composer.Subtotal(),
		CreatedAt: d.createdAt,
		UpdatedAt: d.updatedAt,
	}
}

func errInvoiceNotFound() error {
	return shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.NewValidationError("invalid "+field, map[string]string{field: "must be a UUID"})
	}
	return id, nil
}
