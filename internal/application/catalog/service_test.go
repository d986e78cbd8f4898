package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appcatalog "github.com/zantech/instantorder/internal/application/catalog"
	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/domain/shared"
	"go.uber.org/zap"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Load(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, products []catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

var fixedNow = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T, store *MockSnapshotStore, opts ...appcatalog.Option) *appcatalog.Service {
	t.Helper()
	opts = append([]appcatalog.Option{
		appcatalog.WithCatalog(catalog.New(catalog.WithClock(func() time.Time { return fixedNow }))),
		appcatalog.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return appcatalog.NewService(store, zap.NewNop(), opts...)
}

func hammerRequest() appcatalog.UpsertProductRequest {
	return appcatalog.UpsertProductRequest{
		Name:         "Hammer",
		Category:     "Home & Garden",
		UnitPrice:    decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		CustomerName: "Ana",
		Image:        &appcatalog.ImageDTO{MIME: "image/png", Data: "iVBORw0KGgo="},
	}
}

func names(products []catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

// =============================================================================
// Tests
// =============================================================================

func TestService_Load(t *testing.T) {
	store := new(MockSnapshotStore)
	id := uuid.New()
	store.On("Load", mock.Anything).Return([]catalog.Product{
		{ID: id, Name: "Drill", Category: "Automotive", UnitPrice: decimal.NewFromInt(80), CustomerName: "Ben"},
		{ID: uuid.New(), Name: "drill", Category: "Other", CustomerName: "dup"},
	}, nil)

	svc := newService(t, store)
	require.NoError(t, svc.Load(context.Background()))

	list := svc.List(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, id.String(), list[0].ID)
	store.AssertExpectations(t)
}

func TestService_LoadFailure(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Load", mock.Anything).Return(nil, errors.New("disk gone"))

	err := newService(t, store).Load(context.Background())
	require.Error(t, err)
	assert.True(t, shared.IsRetryable(err))
	assert.Contains(t, err.Error(), "disk gone")
}

func TestService_UpsertCreates(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.MatchedBy(func(ps []catalog.Product) bool {
		return len(ps) == 1 && ps[0].Name == "Hammer"
	})).Return(nil).Once()
	events := &capturingPublisher{}

	svc := newService(t, store, appcatalog.WithEventPublisher(events))
	res, err := svc.Upsert(context.Background(), hammerRequest())

	require.NoError(t, err)
	assert.False(t, res.Merged)
	assert.Equal(t, appcatalog.MessageCreated, res.Message)
	assert.Equal(t, "12.5", res.Product.UnitPrice.String())
	assert.Equal(t, "image/png", res.Product.Image.MIME)
	require.Len(t, events.events, 1)
	assert.Equal(t, catalog.EventTypeProductUpserted, events.events[0].EventType())
	store.AssertExpectations(t)
}

func TestService_UpsertMergesCaseInsensitive(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()

	svc := newService(t, store)
	first, err := svc.Upsert(context.Background(), hammerRequest())
	require.NoError(t, err)

	again := appcatalog.UpsertProductRequest{
		Name:         "  HAMMER ",
		Category:     "Books",
		UnitPrice:    decimal.NewNullDecimal(decimal.NewFromInt(99)),
		CustomerName: "Carla",
	}
	second, err := svc.Upsert(context.Background(), again)
	require.NoError(t, err)

	assert.True(t, second.Merged)
	assert.Equal(t, appcatalog.MessageMerged, second.Message)
	assert.Equal(t, first.Product.ID, second.Product.ID)
	assert.Equal(t, "Hammer", second.Product.Name)
	assert.Equal(t, "Home & Garden", second.Product.Category)
	assert.True(t, second.Product.UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "Carla", second.Product.CustomerName)
	assert.NotNil(t, second.Product.Image)
	assert.Len(t, svc.List(context.Background()), 1)

	store.AssertNumberOfCalls(t, "Save", 2)
}

func TestService_UpsertValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*appcatalog.UpsertProductRequest)
		field  string
	}{
		{"blank name", func(r *appcatalog.UpsertProductRequest) { r.Name = "   " }, "name"},
		{"blank customer", func(r *appcatalog.UpsertProductRequest) { r.CustomerName = "" }, "customerName"},
		{"negative price", func(r *appcatalog.UpsertProductRequest) { r.UnitPrice = decimal.NewNullDecimal(decimal.NewFromInt(-1)) }, "unitPrice"},
		{"missing price", func(r *appcatalog.UpsertProductRequest) { r.UnitPrice = decimal.NullDecimal{} }, "unitPrice"},
		{"price too large", func(r *appcatalog.UpsertProductRequest) {
			r.UnitPrice = decimal.NewNullDecimal(decimal.New(1, 10))
		}, "unitPrice"},
		{"long customer", func(r *appcatalog.UpsertProductRequest) { r.CustomerName = strings.Repeat("a", 201) }, "customerName"},
		{"unknown category", func(r *appcatalog.UpsertProductRequest) { r.Category = "Weapons" }, "category"},
		{"non raster image", func(r *appcatalog.UpsertProductRequest) { r.Image.MIME = "application/pdf" }, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockSnapshotStore)
			svc := newService(t, store)

			req := hammerRequest()
			tt.mutate(&req)
			_, err := svc.Upsert(context.Background(), req)

			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Contains(t, de.Details, tt.field)
			assert.Empty(t, svc.List(context.Background()))
			store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestService_UpsertCanonicalizesCategory(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	req := hammerRequest()
	req.Category = "home & garden"
	res, err := newService(t, store).Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Home & Garden", res.Product.Category)
}

func TestService_UpsertLenientCategories(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	req := hammerRequest()
	req.Category = "Garden Tools"
	res, err := newService(t, store, appcatalog.WithStrictCategories(false)).Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Garden Tools", res.Product.Category)
}

func TestService_UpsertSaveFailureKeepsMutation(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only"))

	svc := newService(t, store)
	_, err := svc.Upsert(context.Background(), hammerRequest())

	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodePersistenceFailure, de.Code)
	assert.Len(t, svc.List(context.Background()), 1)
}

func TestService_Remove(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	events := &capturingPublisher{}
	svc := newService(t, store, appcatalog.WithEventPublisher(events))

	res, err := svc.Upsert(context.Background(), hammerRequest())
	require.NoError(t, err)
	id := uuid.MustParse(res.Product.ID)

	removed, err := svc.Remove(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, svc.List(context.Background()))

	removed, err = svc.Remove(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, removed)

	store.AssertNumberOfCalls(t, "Save", 2)
	require.Len(t, events.events, 2)
	assert.Equal(t, catalog.EventTypeProductRemoved, events.events[1].EventType())
}

func TestService_RemoveUnknownDoesNotWrite(t *testing.T) {
	store := new(MockSnapshotStore)
	removed, err := newService(t, store).Remove(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, removed)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_ListKeepsInsertionOrder(t *testing.T) {
	store := new(MockSnapshotStore)
	var saved [][]catalog.Product
	store.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = append(saved, args.Get(1).([]catalog.Product))
	}).Return(nil)
	svc := newService(t, store)

	for _, name := range []string{"Apple", "Banana", "apple"} {
		req := hammerRequest()
		req.Name = name
		_, err := svc.Upsert(context.Background(), req)
		require.NoError(t, err)
	}

	list := svc.List(context.Background())
	require.Len(t, list, 2)
	assert.Equal(t, "Apple", list[0].Name)
	assert.Equal(t, "Banana", list[1].Name)
	require.Len(t, saved, 3)
	assert.Equal(t, []string{"Apple", "Banana"}, names(saved[2]))
}

func TestService_PreviewDoesNotMutate(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	svc := newService(t, store)
	_, err := svc.Upsert(context.Background(), hammerRequest())
	require.NoError(t, err)

	preview, err := svc.Preview(context.Background(), appcatalog.UpsertProductRequest{Name: "hammer", CustomerName: "Dev"})
	require.NoError(t, err)
	assert.True(t, preview.Merged)
	require.NotNil(t, preview.Existing)
	require.NotNil(t, preview.Result)
	assert.Equal(t, "Ana", preview.Existing.CustomerName)
	assert.Equal(t, "Dev", preview.Result.CustomerName)

	p, err := svc.FindByName(context.Background(), "HAMMER")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.CustomerName)

	unknown, err := svc.Preview(context.Background(), appcatalog.UpsertProductRequest{Name: "Saw"})
	require.NoError(t, err)
	assert.False(t, unknown.Merged)
	assert.Nil(t, unknown.Existing)
	assert.Nil(t, unknown.Result)

	_, err = svc.Preview(context.Background(), appcatalog.UpsertProductRequest{Name: " "})
	assert.True(t, shared.IsValidation(err))
	store.AssertExpectations(t)
}

func TestService_GetAndFind(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	svc := newService(t, store)
	res, err := svc.Upsert(context.Background(), hammerRequest())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), uuid.MustParse(res.Product.ID))
	require.NoError(t, err)
	assert.Equal(t, "Hammer", got.Name)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.FindByName(context.Background(), "nail")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	images := svc.Images(context.Background(), []uuid.UUID{uuid.MustParse(res.Product.ID), uuid.New()})
	assert.Len(t, images, 1)
}

func TestService_ExportCSV(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	svc := newService(t, store)
	_, err := svc.Upsert(context.Background(), hammerRequest())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,category,unit_price,customer_name,has_image,created_at,updated_at", lines[0])
	assert.Contains(t, lines[1], ",Hammer,Home & Garden,12.50,Ana,true,2024-03-09T10:00:00Z,")
}

func TestService_Categories(t *testing.T) {
	svc := newService(t, new(MockSnapshotStore))
	cats := svc.Categories()
	assert.Equal(t, catalog.Categories, cats)
	cats[0] = "changed"
	assert.Equal(t, "Electronics", catalog.Categories[0])
}
