package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// rawOutputTemplate names attempt output inside the working directory. The
// filename synthesizer owns final naming; this only needs to be findable.
const rawOutputTemplate = "raw_%(id)s.%(ext)s"

// YTDLPExtractor implements domain.Extractor by invoking the yt-dlp binary
// (or a configured secondary backend) as an external process.
type YTDLPExtractor struct {
	config  *domain.ToolsConfig
	logsDir string
	logger  *zap.Logger
}

// NewYTDLPExtractor creates a new yt-dlp backed extractor
func NewYTDLPExtractor(config *domain.ToolsConfig, logsDir string, logger *zap.Logger) *YTDLPExtractor {
	return &YTDLPExtractor{
		config:  config,
		logsDir: logsDir,
		logger:  logger,
	}
}

// Fetch runs one strategy against the request URL, bounded by the configured
// attempt timeout. It returns the media files produced in workDir, or an
// *domain.ExtractionError classified from the tool's output.
func (e *YTDLPExtractor) Fetch(ctx context.Context, req domain.DownloadRequest, strategy domain.Strategy, workDir string) ([]string, error) {
	binary := e.config.YTDLPBinary
	if strategy.UseAltBackend {
		if e.config.AltYTDLPBinary == "" {
			return nil, domain.NewExtractionError(domain.FailureUnknown, "no secondary extraction backend configured")
		}
		binary = e.config.AltYTDLPBinary
	}

	targetURL := req.URL
	if strategy.MobileHost != "" {
		targetURL = rewriteHost(targetURL, strategy.MobileHost)
	}

	args := e.buildArgs(req, strategy, workDir, targetURL)

	attemptCtx := ctx
	if e.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, e.config.AttemptTimeout)
		defer cancel()
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(attemptCtx, binary, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	// Mirror the raw tool output into the per-day attempt log so failed
	// chains can be diagnosed after the fact.
	attemptLog, logErr := e.openAttemptLog()
	if logErr == nil {
		defer attemptLog.Close()
		writeLogHeader(attemptLog, strategy.ID, ShellEscapeCommand(binary, args...))
	}

	runErr := cmd.Run()

	if logErr == nil {
		io.Copy(attemptLog, bytes.NewReader(output.Bytes()))
		writeLogFooter(attemptLog, runErr == nil)
	}

	if runErr != nil {
		return nil, e.classifyRunError(ctx, attemptCtx, runErr, output.String())
	}

	files, err := findMediaFiles(workDir)
	if err != nil {
		return nil, domain.NewExtractionError(domain.FailureUnknown, fmt.Sprintf("scanning output: %v", err))
	}
	if len(files) == 0 {
		return nil, domain.NewExtractionError(domain.FailureUnknown, "extraction tool exited cleanly but produced no media files")
	}
	return files, nil
}

// Probe performs a metadata-only invocation (no media transfer)
func (e *YTDLPExtractor) Probe(ctx context.Context, rawURL string) (*domain.Metadata, error) {
	args := []string{
		"--no-warnings",
		"--no-playlist",
		"--skip-download",
		"--dump-json",
		rawURL,
	}

	probeCtx := ctx
	if e.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, e.config.AttemptTimeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(probeCtx, e.config.YTDLPBinary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("metadata probe failed: %v: %s", err, firstLine(stderr.String()))
	}

	var info struct {
		Uploader   string  `json:"uploader"`
		UploaderID string  `json:"uploader_id"`
		Title      string  `json:"title"`
		UploadDate string  `json:"upload_date"`
		Timestamp  float64 `json:"timestamp"`
		Duration   float64 `json:"duration"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}

	meta := domain.Metadata{
		Uploader:        info.Uploader,
		Title:           info.Title,
		DurationSeconds: int(info.Duration),
	}
	if meta.Uploader == "" {
		meta.Uploader = info.UploaderID
	}
	if info.UploadDate != "" {
		if t, err := time.Parse("20060102", info.UploadDate); err == nil {
			meta.PublishedAt = t
		}
	}
	if meta.PublishedAt.IsZero() && info.Timestamp > 0 {
		meta.PublishedAt = time.Unix(int64(info.Timestamp), 0)
	}
	return &meta, nil
}

// buildArgs binds a strategy's declared parameters to the request.
// exec.Command passes args directly to the process, no shell quoting needed.
func (e *YTDLPExtractor) buildArgs(req domain.DownloadRequest, strategy domain.Strategy, workDir, targetURL string) []string {
	format := strategy.Format
	if format == "" {
		format = req.Quality.FormatSelector()
	}

	args := []string{
		"--no-warnings",
		"--no-playlist",
		"--restrict-filenames",
		"-f", format,
		"--merge-output-format", "mp4",
		"-o", rawOutputTemplate,
		"-P", workDir,
	}

	if e.config.FFmpegBinary != "" {
		args = append(args, "--ffmpeg-location", filepath.Dir(e.config.FFmpegBinary))
	}
	if strategy.GeoBypass {
		args = append(args, "--geo-bypass")
	}
	if strategy.NoCheckCertificate {
		args = append(args, "--no-check-certificate")
	}
	if strategy.UserAgent != "" {
		args = append(args, "--user-agent", strategy.UserAgent)
	}
	if strategy.Referer != "" {
		args = append(args, "--add-header", "Referer:"+strategy.Referer)
	}

	switch strategy.CookieMode {
	case domain.CookiesFile:
		if e.config.CookieFile != "" && fileExists(e.config.CookieFile) {
			args = append(args, "--cookies", e.config.CookieFile)
		}
	case domain.CookiesBrowser:
		browser := e.config.CookieBrowser
		if browser == "" {
			browser = "chrome"
		}
		args = append(args, "--cookies-from-browser", browser)
	}

	return append(args, targetURL)
}

// classifyRunError maps a failed invocation onto the failure taxonomy.
// Context state takes precedence over output signatures: a killed process
// writes whatever it was in the middle of.
func (e *YTDLPExtractor) classifyRunError(parent, attempt context.Context, runErr error, output string) *domain.ExtractionError {
	if errors.Is(parent.Err(), context.Canceled) {
		return domain.NewExtractionError(domain.FailureCancelled, "attempt cancelled")
	}
	if errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return domain.NewExtractionError(domain.FailureNetwork, "attempt exceeded timeout")
	}
	if execErr := new(exec.Error); errors.As(runErr, &execErr) {
		// Binary missing or not executable; distinct from tool failures so
		// the alt-backend strategy can report something actionable.
		return domain.NewExtractionError(domain.FailureUnknown, fmt.Sprintf("extraction backend unavailable: %v", runErr))
	}
	kind := ClassifyOutput(output)
	diag := firstErrorLine(output)
	if diag == "" {
		diag = runErr.Error()
	}
	return domain.NewExtractionError(kind, diag)
}

// ClassifyOutput inspects the tool's combined output and maps the failure
// signature onto the taxonomy. Specific signatures are checked before the
// broad network bucket.
func ClassifyOutput(output string) domain.FailureKind {
	lower := strings.ToLower(output)

	switch {
	case containsAny(lower, "not available in your country", "geo restriction", "geo-restricted", "blocked it in your country"):
		return domain.FailureGeoBlocked
	case containsAny(lower, "login required", "sign in to confirm", "use --cookies", "authentication", "private video", "this post is private", "nsfw tweet"):
		return domain.FailureAuthRequired
	case containsAny(lower, "http error 404", "not found", "video unavailable", "no longer available", "has been removed", "does not exist", "page not available"):
		return domain.FailureNotFound
	case containsAny(lower, "requested format is not available", "requested format not available", "no video formats found"):
		return domain.FailureFormatUnavailable
	case containsAny(lower, "unable to download", "timed out", "timeout", "connection reset", "connection refused", "network is unreachable", "temporary failure", "http error 5"):
		return domain.FailureNetwork
	default:
		return domain.FailureUnknown
	}
}

// openAttemptLog opens the per-day attempt log for appending
func (e *YTDLPExtractor) openAttemptLog() (*os.File, error) {
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		return nil, err
	}
	name := "attempt-" + time.Now().Format("20060102") + ".log"
	return os.OpenFile(filepath.Join(e.logsDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func writeLogHeader(w io.Writer, strategyID, cmdLine string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "\n=== [%s] Attempt: %s ===\n$ %s\n", ts, strategyID, cmdLine)
}

func writeLogFooter(w io.Writer, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "[%s] %s\n=== END ===\n\n", time.Now().Format("2006-01-02 15:04:05"), status)
}

// rewriteHost swaps the URL host, e.g. www.facebook.com -> m.facebook.com.
// A URL that cannot be parsed is passed through unchanged.
func rewriteHost(rawURL, newHost string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Host = newHost
	return u.String()
}

// findMediaFiles returns the media files inside dir, largest first so the
// post-processor's single-file fallback picks the video stream.
func findMediaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type sized struct {
		path string
		size int64
	}
	var found []sized
	for _, entry := range entries {
		if entry.IsDir() || !isMediaFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, sized{filepath.Join(dir, entry.Name()), info.Size()})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].size > found[j].size })

	files := make([]string, 0, len(found))
	for _, f := range found {
		files = append(files, f.path)
	}
	return files, nil
}

// isMediaFile reports whether the name looks like downloaded media. The
// .info.json sidecars yt-dlp may emit are intentionally excluded.
func isMediaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".mkv", ".webm", ".mov", ".avi", ".m4v", ".m4a", ".mp3", ".aac", ".opus", ".ogg":
		return true
	default:
		return false
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// firstErrorLine extracts the first ERROR-prefixed line of tool output, or
// falls back to the first non-empty line.
func firstErrorLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "ERROR") {
			return strings.TrimSpace(line)
		}
	}
	return firstLine(output)
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
