package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/zantech/instantorder/internal/application/catalog"
	invoiceapp "github.com/zantech/instantorder/internal/application/invoice"
	"github.com/zantech/instantorder/internal/domain/invoice"
	"github.com/zantech/instantorder/internal/domain/printing"
	"github.com/zantech/instantorder/internal/infrastructure/capture"
	infra "github.com/zantech/instantorder/internal/infrastructure/printing"
	"github.com/zantech/instantorder/internal/infrastructure/snapshot"
	"github.com/zantech/instantorder/internal/interfaces/http/dto"
	"github.com/zantech/instantorder/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

// stubRasterizer returns a fixed bitmap or an error
type stubRasterizer struct {
	bitmap printing.Bitmap
	err    error
}

func (s *stubRasterizer) Rasterize(ctx context.Context, html string) (printing.Bitmap, error) {
	if s.err != nil {
		return printing.Bitmap{}, s.err
	}
	return s.bitmap, nil
}

func (s *stubRasterizer) Close() error { return nil }

type testServer struct {
	engine     *gin.Engine
	catalog    *catalogapp.Service
	invoices   *invoiceapp.Service
	rasterizer *stubRasterizer
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// newTestServer wires the real application services behind the handlers.
// The catalog is persisted to a temporary file; rasterization is stubbed.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), "catalog.json"))
	catalogSvc := catalogapp.NewService(store, zap.NewNop(), catalogapp.WithClock(func() time.Time { return testNow }))
	require.NoError(t, catalogSvc.Load(context.Background()))

	tmpl, err := infra.NewTemplateEngine(infra.TemplateConfig{Location: time.UTC})
	require.NoError(t, err)
	bitmap, err := infra.DecodeBitmap(pngBytes(t, 100, 120))
	require.NoError(t, err)
	rasterizer := &stubRasterizer{bitmap: bitmap}

	invoiceSvc := invoiceapp.NewService(catalogSvc, invoice.NewSequenceNumbers(""), invoiceapp.ExportPipeline{
		Template:   tmpl,
		Rasterizer: rasterizer,
		Writer:     infra.NewPDFWriter(zap.NewNop()),
	}, invoiceapp.Config{MaxDrafts: 2}, zap.NewNop(), invoiceapp.WithClock(func() time.Time { return testNow }))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	for _, r := range []interface{ RegisterRoutes(*gin.RouterGroup) }{
		NewCatalogHandler(catalogSvc),
		NewCaptureHandler(capture.NewDecoder(0, nil)),
		NewInvoiceHandler(invoiceSvc),
		NewDraftHandler(invoiceSvc),
	} {
		r.RegisterRoutes(api)
	}

	return &testServer{engine: engine, catalog: catalogSvc, invoices: invoiceSvc, rasterizer: rasterizer}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and its data into data when non-nil
func decode(t *testing.T, w *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *dto.ErrorInfo  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return dto.Response{Success: envelope.Success, Error: envelope.Error}
}

func (s *testServer) addProduct(t *testing.T, name, category, price, customer string) catalogapp.ProductResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/catalog/products", map[string]any{
		"name": name, "category": category, "unit_price": price, "customer_name": customer,
	})
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code, w.Body.String())
	var result catalogapp.UpsertResult
	decode(t, w, &result)
	return result.Product
}

var errBrowserGone = errors.New("browser gone")
