package domain

import "context"

// ExtractionError is the typed failure the extraction tool boundary returns.
// The chain runner turns it into an AttemptResult; it never crosses the
// chain boundary as an error.
type ExtractionError struct {
	Kind    FailureKind
	Message string
}

func (e *ExtractionError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// NewExtractionError builds a classified extraction failure
func NewExtractionError(kind FailureKind, message string) *ExtractionError {
	return &ExtractionError{Kind: kind, Message: message}
}

// Extractor abstracts the external extraction tool. Fetch downloads media
// for one strategy into workDir and returns the produced file paths; on
// failure it returns an *ExtractionError. Probe performs a metadata-only
// invocation with no media transfer.
type Extractor interface {
	Fetch(ctx context.Context, req DownloadRequest, strategy Strategy, workDir string) ([]string, error)
	Probe(ctx context.Context, url string) (*Metadata, error)
}

// Transcoder abstracts the external transcoding tool at the two operations
// the pipeline needs: lossless container mux and pixel-region crop.
type Transcoder interface {
	Mux(ctx context.Context, videoPath, audioPath, outPath string) error
	Crop(ctx context.Context, inPath, outPath, filter string) error
}
