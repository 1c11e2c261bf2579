package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// tiktokCropFilter excises the watermark overlay by cropping 10% off the
// right and bottom edges. The geometry is a static best-effort rectangle
// tuned for TikTok's known overlay placement; it is lossy and may clip a
// sliver of legitimate content.
const tiktokCropFilter = "crop=in_w*0.9:in_h*0.9:0:0"

// PostProcessor applies the platform-conditional final transformation to a
// successfully downloaded file. Failures degrade to the raw download rather
// than discarding it.
type PostProcessor struct {
	transcoder domain.Transcoder
	logger     *zap.Logger
}

// NewPostProcessor creates a new post-processor
func NewPostProcessor(transcoder domain.Transcoder, logger *zap.Logger) *PostProcessor {
	return &PostProcessor{transcoder: transcoder, logger: logger}
}

// Process turns the raw attempt output into the final file at targetPath.
// The returned note is non-empty when a transcoding step failed and the
// result degraded to the raw download. Raw intermediates are deleted only
// after a clean post-process confirms the final file present and non-empty;
// on error, and on a degraded step, the surviving intermediates are left in
// place so the download remains recoverable.
func (p *PostProcessor) Process(ctx context.Context, platform domain.Platform, strategy domain.Strategy, rawFiles []string, targetPath string) (string, string, error) {
	if len(rawFiles) == 0 {
		return "", "", fmt.Errorf("no raw files to post-process")
	}

	var note string

	if video, audio, ok := splitStreams(rawFiles); ok {
		if err := p.transcoder.Mux(ctx, video, audio, targetPath); err != nil {
			// Keep the best single stream rather than losing the download.
			note = fmt.Sprintf("mux failed, kept best single stream: %v", err)
			p.logger.Warn("Stream mux failed, degrading to single stream", zap.Error(err))
			if err := moveInto(video, targetPath); err != nil {
				return "", "", fmt.Errorf("mux fallback failed: %w", err)
			}
		}
	} else if platform == domain.PlatformTikTok && strategy.NeedsCrop {
		if err := p.transcoder.Crop(ctx, rawFiles[0], targetPath, tiktokCropFilter); err != nil {
			note = fmt.Sprintf("watermark crop failed, kept watermarked file: %v", err)
			p.logger.Warn("Watermark crop failed, keeping original", zap.Error(err))
			if err := moveInto(rawFiles[0], targetPath); err != nil {
				return "", "", fmt.Errorf("crop fallback failed: %w", err)
			}
		}
	} else {
		// Identity pass-through into the reserved target path.
		if err := moveInto(rawFiles[0], targetPath); err != nil {
			return "", "", err
		}
	}

	info, err := os.Stat(targetPath)
	if err != nil {
		return "", note, fmt.Errorf("final file missing after post-processing: %w", err)
	}
	if info.Size() == 0 {
		return "", note, fmt.Errorf("final file is empty after post-processing")
	}

	if note == "" {
		for _, raw := range rawFiles {
			if raw != targetPath {
				os.Remove(raw)
			}
		}
	}

	return targetPath, note, nil
}

// splitStreams detects the separate video/audio pair the high-quality
// YouTube path can produce when the extraction tool left them unmerged.
func splitStreams(files []string) (video, audio string, ok bool) {
	if len(files) != 2 {
		return "", "", false
	}
	if isAudioFile(files[0]) && !isAudioFile(files[1]) {
		return files[1], files[0], true
	}
	if isAudioFile(files[1]) && !isAudioFile(files[0]) {
		return files[0], files[1], true
	}
	return "", "", false
}

func isAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m4a", ".mp3", ".aac", ".opus", ".ogg":
		return true
	default:
		return false
	}
}

// moveInto replaces dst with src, falling back to copy+delete across
// filesystem boundaries.
func moveInto(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open raw file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create final file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy raw file: %w", err)
	}
	return os.Remove(src)
}
