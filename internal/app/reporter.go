package app

import (
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/infrastructure"
)

// ResultReporter consumes terminal download outcomes: structured logging of
// the full attempt trail plus a desktop notification. A failed chain reports
// every strategy tried and a remediation hint, never a bare stack trace.
type ResultReporter struct {
	logger   *zap.Logger
	notifier *infrastructure.NotificationService
}

// NewResultReporter creates a new result reporter
func NewResultReporter(logger *zap.Logger, notifier *infrastructure.NotificationService) *ResultReporter {
	return &ResultReporter{logger: logger, notifier: notifier}
}

// Report logs and announces one download outcome
func (r *ResultReporter) Report(outcome *domain.DownloadOutcome) {
	for i, attempt := range outcome.Attempts {
		if attempt.Success {
			r.logger.Info("Strategy succeeded",
				zap.Int("attempt", i+1),
				zap.String("strategy", attempt.StrategyID))
			continue
		}
		r.logger.Info("Strategy failed",
			zap.Int("attempt", i+1),
			zap.String("strategy", attempt.StrategyID),
			zap.String("failure_kind", string(attempt.FailureKind)),
			zap.String("diagnostic", attempt.Diagnostic))
	}

	if outcome.Succeeded() {
		r.logger.Info("Download finished",
			zap.String("url", outcome.URL),
			zap.String("platform", string(outcome.Platform)),
			zap.String("winning_strategy", outcome.WinningStrategy),
			zap.String("file", outcome.FinalPath),
			zap.String("uploader", outcome.Metadata.Uploader))
		if outcome.PostProcessNote != "" {
			r.logger.Warn("Post-processing degraded",
				zap.String("note", outcome.PostProcessNote))
		}
		r.notifier.NotifyDownloadCompleted(outcome.Platform, outcome.FinalPath)
		return
	}

	r.logger.Error("No strategy succeeded",
		zap.String("url", outcome.URL),
		zap.String("platform", string(outcome.Platform)),
		zap.Int("strategies_tried", len(outcome.Attempts)),
		zap.String("last_failure", string(outcome.LastFailure())),
		zap.String("hint", remediationHint(outcome)))
	r.notifier.NotifyDownloadFailed(outcome.URL, outcome.Platform, len(outcome.Attempts))
}

// remediationHint suggests the next manual step after an exhausted chain
func remediationHint(outcome *domain.DownloadOutcome) string {
	switch outcome.LastFailure() {
	case domain.FailureAuthRequired:
		return "content appears to require a login; configure a cookie file or sign in to the configured browser"
	case domain.FailureGeoBlocked:
		return "content appears region-locked; a VPN exit in the source region may help"
	case domain.FailureNotFound:
		return "content looks deleted or private; verify the URL still loads in a browser"
	case domain.FailureNetwork:
		return "all attempts hit network errors; retry later"
	default:
		return "a dedicated downloader for this platform may handle this URL"
	}
}
