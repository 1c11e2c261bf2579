package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// FFmpegTranscoder implements domain.Transcoder by invoking the ffmpeg
// binary. Only the two operations the pipeline needs are exposed.
type FFmpegTranscoder struct {
	binary string
	logger *zap.Logger
}

// NewFFmpegTranscoder creates a new ffmpeg backed transcoder
func NewFFmpegTranscoder(binary string, logger *zap.Logger) *FFmpegTranscoder {
	return &FFmpegTranscoder{binary: binary, logger: logger}
}

// Mux performs a lossless container-level merge of separate video and audio
// streams into a single mp4.
func (t *FFmpegTranscoder) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c", "copy",
		"-map", "0:v:0",
		"-map", "1:a:0",
		outPath,
	}
	return t.run(ctx, "mux", args, outPath)
}

// Crop re-encodes video with the given crop filter, copying audio untouched
func (t *FFmpegTranscoder) Crop(ctx context.Context, inPath, outPath, filter string) error {
	args := []string{
		"-y",
		"-i", inPath,
		"-vf", filter,
		"-c:a", "copy",
		outPath,
	}
	return t.run(ctx, "crop", args, outPath)
}

func (t *FFmpegTranscoder) run(ctx context.Context, op string, args []string, outPath string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.Stderr = &stderr

	t.logger.Debug("Running transcoding tool",
		zap.String("operation", op),
		zap.String("command", ShellEscapeCommand(t.binary, args...)))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s failed: %v: %s", op, err, firstErrorLine(stderr.String()))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("ffmpeg %s produced no output: %w", op, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ffmpeg %s produced an empty file", op)
	}
	return nil
}
