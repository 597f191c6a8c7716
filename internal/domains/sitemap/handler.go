package sitemap

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"tovakustatus-backend/internal/shared"
	"tovakustatus-backend/internal/shared/response"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Handler struct {
	generator *Generator
	queue     Enqueuer
}

// NewHandler builds the sitemap handler. queue may be nil, in which case
// Publish answers 503.
func NewHandler(g *Generator, queue Enqueuer) *Handler {
	return &Handler{generator: g, queue: queue}
}

// Serve handles GET /sitemap.xml
func (h *Handler) Serve(c *gin.Context) {
	body, err := h.generator.Render(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.InternalServerError(c, "Failed to build sitemap")
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// Publish handles POST /sitemap/publish: queues a regeneration so object
// storage picks up content changes before the next scheduled run.
func (h *Handler) Publish(c *gin.Context) {
	if h.queue == nil {
		response.ErrorResponse(c, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "Background jobs are not configured")
		return
	}

	payload, _ := json.Marshal(shared.GenerateSitemapPayload{RequestedAt: time.Now().UTC()})
	info, err := h.queue.EnqueueContext(c.Request.Context(),
		asynq.NewTask(shared.TypeGenerateSitemap, payload),
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
	)
	if err != nil {
		_ = c.Error(err)
		response.InternalServerError(c, "Failed to queue sitemap generation")
		return
	}
	response.Success(c, http.StatusAccepted, "Sitemap generation queued", gin.H{"taskId": info.ID})
}
