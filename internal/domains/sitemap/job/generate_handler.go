package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tovakustatus-backend/internal/shared"
)

type renderer interface {
	Render(ctx context.Context) ([]byte, error)
}

type uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// GenerateHandler renders sitemap.xml from the current content and publishes
// it to object storage.
type GenerateHandler struct {
	generator renderer
	storage   uploader
}

func NewGenerateHandler(generator renderer, storage uploader) *GenerateHandler {
	return &GenerateHandler{generator: generator, storage: storage}
}

func (h *GenerateHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.GenerateSitemapPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal GenerateSitemap payload")
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	body, err := h.generator.Render(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render sitemap")
		return fmt.Errorf("render sitemap: %w", err)
	}

	url, err := h.storage.Upload(ctx, shared.SitemapObjectKey, body, "application/xml")
	if err != nil {
		log.Error().Err(err).Msg("Failed to upload sitemap")
		return fmt.Errorf("upload sitemap: %w", err)
	}

	log.Info().
		Str("url", url).
		Int("bytes", len(body)).
		Time("requested_at", payload.RequestedAt).
		Msg("Sitemap published")

	return nil
}
