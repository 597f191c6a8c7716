package visitor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tovakustatus-backend/internal/shared/response"
)

type Handler struct {
	service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

// Register handles POST /visitors
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	v, created, err := h.service.Register(c.Request.Context(), req.UUID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, "", v)
}

// Get handles GET /visitors/:id where id is the visitor uuid
func (h *Handler) Get(c *gin.Context) {
	v, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", v)
}

// List handles GET /visitors/all (admin)
func (h *Handler) List(c *gin.Context) {
	visitors, err := h.service.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "", visitors, &response.Meta{Total: len(visitors)})
}

// SetFlags handles PATCH /visitors/:id (admin)
func (h *Handler) SetFlags(c *gin.Context) {
	var req FlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}
	v, err := h.service.SetFlags(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Visitor updated", v)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch status := ToHTTPStatus(err); status {
	case http.StatusNotFound:
		response.NotFound(c, err.Error())
	case http.StatusBadRequest:
		response.ErrorWithDetails(c, status, "VALIDATION_ERROR", "Validation failed", response.ValidationDetails(err))
	default:
		_ = c.Error(err)
		response.InternalServerError(c, "Internal server error")
	}
}
