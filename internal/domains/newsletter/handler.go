package newsletter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tovakustatus-backend/internal/shared/response"
)

type Handler struct {
	service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

// Subscribe handles POST /newsletter (public)
func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	sub, err := h.service.Subscribe(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Subscribed successfully", sub)
}

// List handles GET /newsletter/all (admin)
func (h *Handler) List(c *gin.Context) {
	subs, err := h.service.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "", subs, &response.Meta{Total: len(subs)})
}

// Delete handles DELETE /newsletter/:id (admin)
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Unsubscribe(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Subscriber removed", nil)
}

// Export handles GET /newsletter/export (admin)
func (h *Handler) Export(c *gin.Context) {
	f, err := h.service.Export(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("subscribers_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := ToHTTPStatus(err)
	if details := response.ValidationDetails(err); details != nil {
		response.ErrorWithDetails(c, status, ToErrorCode(err), "Validation failed", details)
		return
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, ToErrorCode(err), err.Error())
}
