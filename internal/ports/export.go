package ports

import "mediasort/internal/domain"

// ManifestWriter persists a generated manifest
type ManifestWriter interface {
	WriteManifest(m *domain.Manifest) (string, error)
}

// ReviewExporter writes review batches for offline review and returns the
// written locations in batch order
type ReviewExporter interface {
	ExportReview(batches [][]domain.ReviewItem) ([]string, error)
}
