package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tovakustatus-backend/internal/domains/content"
	"tovakustatus-backend/internal/model"
	"tovakustatus-backend/internal/shared/response"
)

// Handler exposes one collection over HTTP.
type Handler[T any, PT content.Entity[T]] struct {
	service *content.Service[T, PT]
}

func NewHandler[T any, PT content.Entity[T]](svc *content.Service[T, PT]) *Handler[T, PT] {
	return &Handler[T, PT]{service: svc}
}

// ════════════════════════════════════════════════════════════════
// READ: GET /{collection}/all
// ════════════════════════════════════════════════════════════════

func (h *Handler[T, PT]) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "", items, &response.Meta{Total: len(items)})
}

// ════════════════════════════════════════════════════════════════
// READ: GET /{collection}/:id
// ════════════════════════════════════════════════════════════════

func (h *Handler[T, PT]) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", item)
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /{collection}
// ════════════════════════════════════════════════════════════════

func (h *Handler[T, PT]) Create(c *gin.Context) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Created "+h.service.Name(), created)
}

// ════════════════════════════════════════════════════════════════
// UPDATE: PATCH /{collection}/:id (partial, JSON field names)
// ════════════════════════════════════════════════════════════════

func (h *Handler[T, PT]) Update(c *gin.Context) {
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), partial)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Updated "+h.service.Name(), updated)
}

// ════════════════════════════════════════════════════════════════
// DELETE: DELETE /{collection}/:id
// ════════════════════════════════════════════════════════════════

func (h *Handler[T, PT]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Deleted "+h.service.Name(), nil)
}

// RecordView handles POST /{collection}/:id/views
func (h *Handler[T, PT]) RecordView(c *gin.Context) {
	item, err := h.service.RecordView(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", item)
}

type EventHandler struct {
	*Handler[model.Event, *model.Event]
	events *content.EventService
}

func NewEventHandler(svc *content.EventService) *EventHandler {
	return &EventHandler{Handler: NewHandler(svc.Service), events: svc}
}

// ListByStatus handles GET /events/status/:status
func (h *EventHandler) ListByStatus(c *gin.Context) {
	events, err := h.events.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "", events, &response.Meta{Total: len(events)})
}

func writeError(c *gin.Context, err error) {
	status := content.ToHTTPStatus(err)
	if details := response.ValidationDetails(err); details != nil {
		response.ErrorWithDetails(c, status, content.ToErrorCode(err), "Validation failed", details)
		return
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, content.ToErrorCode(err), err.Error())
}
