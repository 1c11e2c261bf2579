package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// maxNameAttempts bounds the disambiguation loop; hitting it means the
// directory holds that many same-named downloads, which is a user problem,
// not a naming one.
const maxNameAttempts = 1000

// FilenameSynthesizer turns metadata into a collision-safe target path
// inside the platform's output directory.
type FilenameSynthesizer struct {
	downloadsRoot string
}

// NewFilenameSynthesizer creates a synthesizer rooted at the downloads directory
func NewFilenameSynthesizer(downloadsRoot string) *FilenameSynthesizer {
	return &FilenameSynthesizer{downloadsRoot: downloadsRoot}
}

// Synthesize builds `{uploader}_{YYYYMMDD}.mp4` under `<Platform>_Videos/`,
// appending `_N` until a free name is found. The winning path is reserved
// with O_CREATE|O_EXCL so two parallel requests can never resolve to the
// same name; the reservation is an empty file the post-processor overwrites.
func (s *FilenameSynthesizer) Synthesize(platform domain.Platform, meta domain.Metadata) (string, error) {
	dir := filepath.Join(s.downloadsRoot, platform.DirName())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	base := domain.SanitizeFilename(meta.Uploader) + "_" + meta.PublishedAt.Format("20060102")

	for i := 0; i < maxNameAttempts; i++ {
		name := base + ".mp4"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.mp4", base, i)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			f.Close()
			return path, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to reserve output path %s: %w", path, err)
		}
	}

	return "", fmt.Errorf("could not find a free name for %s in %s", base, dir)
}

// Release removes a reserved path that never received content. Only the
// empty reservation is removed; a populated file is a completed download.
func (s *FilenameSynthesizer) Release(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > 0 {
		return
	}
	os.Remove(path)
}
