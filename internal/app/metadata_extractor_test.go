package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func TestMetadataExtractor_Extract(t *testing.T) {
	published := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	extractor := &fakeExtractor{probe: &domain.Metadata{
		Uploader:    "someuser",
		PublishedAt: published,
		Title:       "a video",
	}}
	m := NewMetadataExtractor(extractor, zap.NewNop())

	meta := m.Extract(context.Background(), "https://youtu.be/abc123")

	assert.Equal(t, "someuser", meta.Uploader)
	assert.Equal(t, published, meta.PublishedAt)
}

func TestMetadataExtractor_ProbeFailureFallsBack(t *testing.T) {
	extractor := &fakeExtractor{probeErr: errors.New("metadata probe failed")}
	m := NewMetadataExtractor(extractor, zap.NewNop())

	meta := m.Extract(context.Background(), "https://youtu.be/abc123")

	assert.Equal(t, "unknown", meta.Uploader)
	assert.False(t, meta.PublishedAt.IsZero())
}

func TestMetadataExtractor_NormalizesPartialMetadata(t *testing.T) {
	extractor := &fakeExtractor{probe: &domain.Metadata{Title: "only a title"}}
	m := NewMetadataExtractor(extractor, zap.NewNop())

	meta := m.Extract(context.Background(), "https://youtu.be/abc123")

	assert.Equal(t, "unknown", meta.Uploader)
	assert.False(t, meta.PublishedAt.IsZero())
	assert.Equal(t, "only a title", meta.Title)
}
