package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	invoiceapp "github.com/zantech/instantorder/internal/application/invoice"
)

// InvoiceHandler handles issued invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoiceapp.Service
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoiceapp.Service) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers the invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/invoices")
	g.POST("/quick", h.Quick)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/quantity", h.UpdateQuantity)
	g.GET("/:id/pdf", h.DownloadPDF)
}

// Quick godoc
// @Summary      Issue a single-product invoice
// @Description  Quantity accepts a number or numeric string; unusable values become 1.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoiceapp.QuickInvoiceRequest true "Quick invoice"
// @Success      201 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/quick [post]
func (h *InvoiceHandler) Quick(c *gin.Context) {
	var req invoiceapp.QuickInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.invoiceService.QuickInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// Get godoc
// @Summary      Get an issued invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.invoiceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// UpdateQuantity godoc
// @Summary      Change the quantity of a single-product invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body invoiceapp.UpdateQuantityRequest true "Quantity"
// @Success      200 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id}/quantity [patch]
func (h *InvoiceHandler) UpdateQuantity(c *gin.Context) {
	var req invoiceapp.UpdateQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.invoiceService.UpdateQuickQuantity(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// DownloadPDF godoc
// @Summary      Export an invoice as a paginated PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID"
// @Success      200 {file} file
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	result, err := h.invoiceService.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Header("X-Document-Pages", strconv.Itoa(result.Pages))
	if result.Location != "" {
		c.Header("X-Document-Location", result.Location)
	}
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
