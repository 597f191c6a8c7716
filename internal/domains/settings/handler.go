package settings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tovakustatus-backend/internal/model"
	"tovakustatus-backend/internal/shared/response"
)

type Handler struct {
	service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

// Get handles GET /settings
func (h *Handler) Get(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", settings)
}

// Replace handles PUT /settings
func (h *Handler) Replace(c *gin.Context) {
	var req model.SiteSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}
	settings, err := h.service.Replace(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Settings saved", settings)
}

// Patch handles PATCH /settings
func (h *Handler) Patch(c *gin.Context) {
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}
	settings, err := h.service.Patch(c.Request.Context(), partial)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Settings saved", settings)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrValidation) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", response.ValidationDetails(err))
		return
	}
	_ = c.Error(err)
	response.InternalServerError(c, "Internal server error")
}
