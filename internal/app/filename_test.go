package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func testMeta(uploader string) domain.Metadata {
	return domain.Metadata{
		Uploader:    uploader,
		PublishedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestFilenameSynthesizer_Synthesize(t *testing.T) {
	root := t.TempDir()
	s := NewFilenameSynthesizer(root)

	path, err := s.Synthesize(domain.PlatformTikTok, testMeta("someuser"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "TikTok_Videos", "someuser_20240115.mp4"), path)
	assert.FileExists(t, path)
}

func TestFilenameSynthesizer_SanitizesUploader(t *testing.T) {
	root := t.TempDir()
	s := NewFilenameSynthesizer(root)

	path, err := s.Synthesize(domain.PlatformYouTube, testMeta("@some user"))
	require.NoError(t, err)

	assert.Equal(t, "_some_user_20240115.mp4", filepath.Base(path))
}

func TestFilenameSynthesizer_CollisionSuffix(t *testing.T) {
	root := t.TempDir()
	s := NewFilenameSynthesizer(root)
	meta := testMeta("someuser")

	first, err := s.Synthesize(domain.PlatformTikTok, meta)
	require.NoError(t, err)
	second, err := s.Synthesize(domain.PlatformTikTok, meta)
	require.NoError(t, err)
	third, err := s.Synthesize(domain.PlatformTikTok, meta)
	require.NoError(t, err)

	assert.Equal(t, "someuser_20240115.mp4", filepath.Base(first))
	assert.Equal(t, "someuser_20240115_1.mp4", filepath.Base(second))
	assert.Equal(t, "someuser_20240115_2.mp4", filepath.Base(third))
}

func TestFilenameSynthesizer_Release(t *testing.T) {
	root := t.TempDir()
	s := NewFilenameSynthesizer(root)

	path, err := s.Synthesize(domain.PlatformTikTok, testMeta("someuser"))
	require.NoError(t, err)

	s.Release(path)
	assert.NoFileExists(t, path)
}

func TestFilenameSynthesizer_ReleaseKeepsPopulatedFile(t *testing.T) {
	root := t.TempDir()
	s := NewFilenameSynthesizer(root)

	path, err := s.Synthesize(domain.PlatformTikTok, testMeta("someuser"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

	s.Release(path)
	assert.FileExists(t, path)
}
