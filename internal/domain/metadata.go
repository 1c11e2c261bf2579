package domain

import (
	"strings"
	"time"
)

// maxTitleLen bounds the caption/title kept for filename and display use
const maxTitleLen = 50

// Metadata holds the normalized descriptive fields extracted for a URL.
// All fields are best-effort; absence never blocks a download.
type Metadata struct {
	Uploader        string    `json:"uploader"`
	PublishedAt     time.Time `json:"published_at"`
	Title           string    `json:"title,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
}

// FallbackMetadata is the placeholder used when extraction fails entirely
func FallbackMetadata() Metadata {
	return Metadata{
		Uploader:    "unknown",
		PublishedAt: time.Now(),
	}
}

// Normalize fills documented defaults for missing fields and sanitizes the
// ones that end up in filenames.
func (m Metadata) Normalize() Metadata {
	if strings.TrimSpace(m.Uploader) == "" {
		m.Uploader = "unknown"
	}
	if m.PublishedAt.IsZero() {
		m.PublishedAt = time.Now()
	}
	if runes := []rune(m.Title); len(runes) > maxTitleLen {
		m.Title = string(runes[:maxTitleLen])
	}
	return m
}

// SanitizeFilename strips path-hostile characters from a metadata field so
// it is safe as a filename component on every supported OS.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '@':
			b.WriteRune('_')
		}
	}
	// Leading underscores are kept: they come from the @ and space mappings
	// above. Only bare dots and dangling trailing separators are stripped.
	out := strings.TrimLeft(b.String(), ".")
	out = strings.TrimRight(out, "._")
	if out == "" {
		return "unknown"
	}
	return out
}
