package main

import (
	"github.com/hibiken/asynq"

	contentJob "tovakustatus-backend/internal/domains/content/job"
	sitemapJob "tovakustatus-backend/internal/domains/sitemap/job"
	"tovakustatus-backend/internal/infrastructure/storage"
	"tovakustatus-backend/internal/shared"
	"tovakustatus-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	generateSitemap *sitemapJob.GenerateHandler
	snapshotContent *contentJob.SnapshotHandler
}

func initializeHandlers(c *container.Container, objects storage.ObjectStorage) *HandlerRegistry {
	return &HandlerRegistry{
		generateSitemap: sitemapJob.NewGenerateHandler(c.Sitemap, objects),
		snapshotContent: contentJob.NewSnapshotHandler(c.Store, objects),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeGenerateSitemap, h.generateSitemap.ProcessTask)
	mux.HandleFunc(shared.TypeSnapshotContent, h.snapshotContent.ProcessTask)
}
