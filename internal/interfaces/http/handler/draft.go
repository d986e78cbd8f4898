package handler

import (
	"github.com/gin-gonic/gin"
	invoiceapp "github.com/zantech/instantorder/internal/application/invoice"
)

// DraftHandler handles the invoice composer endpoints. A draft collects
// lines until it is finalized into a composed invoice.
type DraftHandler struct {
	BaseHandler
	invoiceService *invoiceapp.Service
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(invoiceService *invoiceapp.Service) *DraftHandler {
	return &DraftHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers the draft routes
func (h *DraftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/invoice-drafts")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Discard)
	g.POST("/:id/lines", h.AddLine)
	g.PUT("/:id/lines/:productId", h.SetLineQuantity)
	g.DELETE("/:id/lines/:productId", h.RemoveLine)
	g.POST("/:id/finalize", h.Finalize)
}

// Create godoc
// @Summary      Open an invoice draft
// @Tags         invoice-drafts
// @Produce      json
// @Success      201 {object} dto.Response{data=invoiceapp.DraftResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoice-drafts [post]
func (h *DraftHandler) Create(c *gin.Context) {
	draft, err := h.invoiceService.CreateDraft(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, draft)
}

// Get godoc
// @Summary      Get an invoice draft
// @Tags         invoice-drafts
// @Produce      json
// @Param        id path string true "Draft ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoiceapp.DraftResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoice-drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	id, ok := h.ParseUUID(c, "id")
	if !ok {
		return
	}
	draft, err := h.invoiceService.GetDraft(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// Discard godoc
// @Summary      Discard an invoice draft
// @Tags         invoice-drafts
// @Param        id path string true "Draft ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoice-drafts/{id} [delete]
func (h *DraftHandler) Discard(c *gin.Context) {
	id, ok := h.ParseUUID(c, "id")
	if !ok {
		return
	}
	if !h.invoiceService.DiscardDraft(c.Request.Context(), id) {
		h.NotFound(c, "Invoice draft not found")
		return
	}
	h.NoContent(c)
}

// AddLine godoc
// @Summary      Add a product to a draft
// @Description  Adding a product already on the draft increases its quantity.
// @Tags         invoice-drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft ID" format(uuid)
// @Param        request body invoiceapp.AddLineRequest true "Line"
// @Success      200 {object} dto.Response{data=invoiceapp.DraftResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoice-drafts/{id}/lines [post]
func (h *DraftHandler) AddLine(c *gin.Context) {
	id, ok := h.ParseUUID(c, "id")
	if !ok {
		return
	}
	var req invoiceapp.AddLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	draft, err := h.invoiceService.AddLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// SetLineQuantity godoc
// @Summary      Replace the quantity of a draft line
// @Description  Quantities below 1 and unknown products leave the draft unchanged.
// @Tags         invoice-drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft ID" format(uuid)
// @Param        productId path string true "Product ID" format(uuid)
// @Param        request body invoiceapp.SetLineQuantityRequest true "Quantity"
// @Success      200 {object} dto.Response{data=invoiceapp.DraftChangeResponse}
// @Router       /invoice-drafts/{id}/lines/{productId} [put]
func (h *DraftHandler) SetLineQuantity(c *gin.Context) {
	id, ok := h.ParseUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParseUUID(c, "productId")
	if !ok {
		return
	}
	var req invoiceapp.SetLineQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.invoiceService.SetLineQuantity(c.Request.Context(), id, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RemoveLine godoc
// @Summary      Remove a product from a draft
// @Tags         invoice-drafts
// @Produce      json
// @Param        id path string true "Draft ID" format(uuid)
// @Param        productId path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoiceapp.DraftChangeResponse}
// @Router       /invoice-drafts/{id}/lines/{productId} [delete]
func (h *DraftHandler) RemoveLine(c *gin.Context) {
	id, ok := h.ParseUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParseUUID(c, "productId")
	if !ok {
		return
	}

	result, err := h.invoiceService.RemoveLine(c.Request.Context(), id, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Finalize godoc
// @Summary      Finalize a draft into a composed invoice
// @Description  A rejected customer keeps the draft open and unchanged.
// @Tags         invoice-drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft ID" format(uuid)
// @Param        request body invoiceapp.FinalizeDraftRequest true "Customer and notes"
// @Success      201 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoice-drafts/{id}/finalize [post]
func (h *DraftHandler) Finalize(c *gin.Context) {
	id, ok := h.ParseUUID(c, "id")
	if !ok {
		return
	}
	var req invoiceapp.FinalizeDraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.invoiceService.FinalizeDraft(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}
