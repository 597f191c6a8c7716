package shared

import "time"

// Asynq task types.
const (
	TypeGenerateSitemap = "sitemap:generate"
	TypeSnapshotContent = "content:snapshot"
)

// Asynq queues, highest priority first.
const (
	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
)

// Object keys written by the background jobs.
const (
	SitemapObjectKey = "sitemap.xml"
	SnapshotPrefix   = "snapshots/"
)

// GenerateSitemapPayload is empty for the scheduled run; a manual trigger may
// pin RequestedAt for log correlation.
type GenerateSitemapPayload struct {
	RequestedAt time.Time `json:"requestedAt,omitempty"`
}

// SnapshotContentPayload controls how many snapshot objects survive pruning.
type SnapshotContentPayload struct {
	Keep int `json:"keep"`
}
