package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/zantech/instantorder/internal/infrastructure/capture"
)

// CaptureHandler verifies images captured by the kiosk camera before they
// are attached to a product
type CaptureHandler struct {
	BaseHandler
	decoder *capture.Decoder
}

// NewCaptureHandler creates a new CaptureHandler
func NewCaptureHandler(decoder *capture.Decoder) *CaptureHandler {
	return &CaptureHandler{decoder: decoder}
}

// RegisterRoutes registers the capture routes
func (h *CaptureHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/captures", h.Create)
}

// CaptureRequest carries a data URL or bare base64 image
type CaptureRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// Create godoc
// @Summary      Verify a captured image
// @Description  Decodes the payload and returns the image with the MIME type
// @Description  detected from its content.
// @Tags         captures
// @Accept       json
// @Produce      json
// @Param        request body CaptureRequest true "Captured image"
// @Success      201 {object} dto.Response{data=capture.Image}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /captures [post]
func (h *CaptureHandler) Create(c *gin.Context) {
	var req CaptureRequest
	if !h.BindJSON(c, &req) {
		return
	}

	img, err := h.decoder.Decode(c.Request.Context(), req.Payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, img)
}
