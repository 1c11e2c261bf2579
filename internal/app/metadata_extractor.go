package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// MetadataExtractor resolves descriptive fields for a URL ahead of the
// download itself. Metadata absence must never block the strategy chain, so
// every failure degrades to documented placeholders.
type MetadataExtractor struct {
	extractor domain.Extractor
	logger    *zap.Logger
}

// NewMetadataExtractor creates a new metadata extractor
func NewMetadataExtractor(extractor domain.Extractor, logger *zap.Logger) *MetadataExtractor {
	return &MetadataExtractor{extractor: extractor, logger: logger}
}

// Extract probes the URL for metadata. On total failure it returns the
// placeholder metadata (uploader "unknown", current date); that is logged
// but not treated as an error.
func (m *MetadataExtractor) Extract(ctx context.Context, url string) domain.Metadata {
	meta, err := m.extractor.Probe(ctx, url)
	if err != nil {
		m.logger.Warn("Metadata extraction failed, using placeholders",
			zap.String("url", url),
			zap.Error(err))
		return domain.FallbackMetadata()
	}
	if meta == nil {
		return domain.FallbackMetadata()
	}
	return meta.Normalize()
}
