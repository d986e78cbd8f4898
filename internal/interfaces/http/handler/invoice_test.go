package handler

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	invoiceapp "github.com/zantech/instantorder/internal/application/invoice"
	"github.com/zantech/instantorder/internal/interfaces/http/dto"
)

func TestInvoiceHandler_Quick(t *testing.T) {
	s := newTestServer(t)
	pen := s.addProduct(t, "Pen", "Other", "2.50", "Ana")

	w := s.do(t, http.MethodPost, "/api/v1/invoices/quick", map[string]any{"product_id": pen.ID, "quantity": "3"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var inv invoiceapp.InvoiceResponse
	decode(t, w, &inv)
	assert.Equal(t, "INV-1", inv.ID)
	assert.Equal(t, "Ana", inv.Customer.Name)
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, 3, inv.Lines[0].Quantity)
	assert.Equal(t, "7.5", inv.Total.String())
	assert.Equal(t, "invoice-INV-1.pdf", inv.Filename)
	assert.Nil(t, inv.Tax)

	t.Run("unusable quantity becomes one", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/invoices/quick", map[string]any{"product_id": pen.ID, "quantity": -4})
		assert.Equal(t, http.StatusCreated, w.Code)
		var inv invoiceapp.InvoiceResponse
		decode(t, w, &inv)
		assert.Equal(t, 1, inv.Lines[0].Quantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/invoices/quick", map[string]any{"product_id": "6f1c1a8e-8f5f-4b5e-9a57-3c1f2a9d0b11"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid product id", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/invoices/quick", map[string]any{"product_id": "pen"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid UUID format", decode(t, w, nil).Error.Details["product_id"])
	})
}

func TestInvoiceHandler_GetAndUpdateQuantity(t *testing.T) {
	s := newTestServer(t)
	pen := s.addProduct(t, "Pen", "Other", "2.50", "Ana")
	s.do(t, http.MethodPost, "/api/v1/invoices/quick", map[string]any{"product_id": pen.ID})

	w := s.do(t, http.MethodPatch, "/api/v1/invoices/INV-1/quantity", map[string]any{"quantity": 4})
	assert.Equal(t, http.StatusOK, w.Code)
	var inv invoiceapp.InvoiceResponse
	decode(t, w, &inv)
	assert.Equal(t, "10", inv.Total.String())

	w = s.do(t, http.MethodGet, "/api/v1/invoices/INV-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &inv)
	assert.Equal(t, 4, inv.Lines[0].Quantity)

	w = s.do(t, http.MethodGet, "/api/v1/invoices/INV-404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPatch, "/api/v1/invoices/INV-404/quantity", map[string]any{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_DownloadPDF(t *testing.T) {
	s := newTestServer(t)
	pen := s.addProduct(t, "Pen", "Other", "2.50", "Ana")
	s.do(t, http.MethodPost, "/api/v1/invoices/quick", map[string]any{"product_id": pen.ID})

	t.Run("exported", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/invoices/INV-1/pdf", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="invoice-INV-1.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "1", w.Header().Get("X-Document-Pages"))
		assert.Empty(t, w.Header().Get("X-Document-Location"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("unknown invoice", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/invoices/INV-9/pdf", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rasterizer failure is retryable", func(t *testing.T) {
		s.rasterizer.err = errBrowserGone
		t.Cleanup(func() { s.rasterizer.err = nil })

		w := s.do(t, http.MethodGet, "/api/v1/invoices/INV-1/pdf", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeRenderFailed, resp.Error.Code)
		assert.True(t, resp.Error.Retryable)
	})
}
