package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/zantech/instantorder/internal/application/catalog"
	"github.com/zantech/instantorder/internal/interfaces/http/dto"
	"github.com/zantech/instantorder/internal/interfaces/http/middleware"
)

// CatalogHandler handles product catalog endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes registers the catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/catalog")
	g.GET("/categories", h.Categories)
	g.GET("/products", h.List)
	g.POST("/products", h.Upsert)
	g.POST("/products/preview", h.Preview)
	g.GET("/products/lookup", h.Lookup)
	g.GET("/products/export.csv", h.ExportCSV)
	g.GET("/products/:id", h.Get)
	g.DELETE("/products/:id", h.Delete)
}

// Categories godoc
// @Summary      List product categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]string}
// @Router       /catalog/categories [get]
func (h *CatalogHandler) Categories(c *gin.Context) {
	h.Success(c, h.catalogService.Categories())
}

// List godoc
// @Summary      List products in insertion order
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Router       /catalog/products [get]
func (h *CatalogHandler) List(c *gin.Context) {
	h.Success(c, h.catalogService.List(c.Request.Context()))
}

// Upsert godoc
// @Summary      Add a product or merge it into an existing one
// @Description  A product whose name matches an existing one (ignoring case)
// @Description  keeps the existing id and fills blank fields from it.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.UpsertProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalogapp.UpsertResult} "merged"
// @Success      201 {object} dto.Response{data=catalogapp.UpsertResult} "created"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products [post]
func (h *CatalogHandler) Upsert(c *gin.Context) {
	var req catalogapp.UpsertProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.catalogService.Upsert(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Merged {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// Preview godoc
// @Summary      Preview an upsert without storing it
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.UpsertProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalogapp.LookupResult}
// @Router       /catalog/products/preview [post]
func (h *CatalogHandler) Preview(c *gin.Context) {
	// Partially filled forms are previewed, so binding rules are skipped
	var req catalogapp.UpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil && !isValidationOnly(err) {
		h.handleBindError(c, err)
		return
	}

	result, err := h.catalogService.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Lookup godoc
// @Summary      Find a product by name, ignoring case
// @Tags         catalog
// @Produce      json
// @Param        name query string true "Product name"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/lookup [get]
func (h *CatalogHandler) Lookup(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("name is required",
			middleware.GetRequestID(c), map[string]string{"name": "This field is required"}))
		return
	}

	product, err := h.catalogService.FindByName(c.Request.Context(), name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ExportCSV godoc
// @Summary      Download the catalog as CSV
// @Tags         catalog
// @Produce      text/csv
// @Success      200 {file} file
// @Router       /catalog/products/export.csv [get]
func (h *CatalogHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.catalogService.ExportCSV(c.Request.Context(), &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="catalog.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Get godoc
// @Summary      Get a product by id
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := h.ParseUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// RemoveResponse reports whether a product was deleted
type RemoveResponse struct {
	Removed bool `json:"removed"`
}

// Delete godoc
// @Summary      Remove a product
// @Description  Removing an unknown id succeeds with removed=false.
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=RemoveResponse}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/{id} [delete]
func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := h.ParseUUID(c, "id")
	if !ok {
		return
	}

	removed, err := h.catalogService.Remove(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RemoveResponse{Removed: removed})
}
