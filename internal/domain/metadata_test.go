package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"normaluser", "normaluser"},
		{"user name", "user_name"},
		{"@handle", "_handle"},
		{"@handle.", "_handle"},
		{"@some user", "_some_user"},
		{"trailing_", "trailing"},
		{"user/with\\slashes", "userwithslashes"},
		{"café", "caf"},
		{"...dots...", "dots"},
		{"___", "unknown"},
		{"", "unknown"},
		{"mixed-OK_123.v2", "mixed-OK_123.v2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestMetadata_Normalize(t *testing.T) {
	meta := Metadata{}.Normalize()

	assert.Equal(t, "unknown", meta.Uploader)
	assert.False(t, meta.PublishedAt.IsZero())
}

func TestMetadata_Normalize_TruncatesTitle(t *testing.T) {
	long := strings.Repeat("a", 80)
	meta := Metadata{Uploader: "user", Title: long}.Normalize()

	assert.Len(t, meta.Title, maxTitleLen)
}

func TestMetadata_Normalize_TruncatesOnRuneBoundaries(t *testing.T) {
	long := strings.Repeat("é", 80)
	meta := Metadata{Uploader: "user", Title: long}.Normalize()

	assert.Equal(t, maxTitleLen, utf8.RuneCountInString(meta.Title))
	assert.True(t, utf8.ValidString(meta.Title))
}

func TestMetadata_Normalize_KeepsExistingFields(t *testing.T) {
	published := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	meta := Metadata{Uploader: "someone", PublishedAt: published}.Normalize()

	assert.Equal(t, "someone", meta.Uploader)
	assert.Equal(t, published, meta.PublishedAt)
}

func TestFallbackMetadata(t *testing.T) {
	meta := FallbackMetadata()

	assert.Equal(t, "unknown", meta.Uploader)
	assert.WithinDuration(t, time.Now(), meta.PublishedAt, time.Minute)
}
