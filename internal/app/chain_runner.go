package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// ChainRunner executes a platform's declared strategy chain for one request.
// It is a single algorithm over the declarative strategy data: attempts run
// in declared order, the first success wins, and every failure is kept as
// data for the outcome's diagnostic trail.
type ChainRunner struct {
	extractor domain.Extractor
	workRoot  string
	logger    *zap.Logger
}

// NewChainRunner creates a chain runner using the given extraction backend.
// Per-attempt working directories are created under workRoot.
func NewChainRunner(extractor domain.Extractor, workRoot string, logger *zap.Logger) *ChainRunner {
	return &ChainRunner{
		extractor: extractor,
		workRoot:  workRoot,
		logger:    logger,
	}
}

// Run tries the strategies in declared order until one succeeds or a
// terminal failure halts the chain. Exhaustion is not an error: the returned
// outcome simply carries no raw files and the full attempt trail.
func (r *ChainRunner) Run(ctx context.Context, req domain.DownloadRequest, strategies []domain.Strategy) *domain.DownloadOutcome {
	outcome := &domain.DownloadOutcome{
		URL:      req.URL,
		Platform: req.Platform,
	}

	attempted := make(map[string]bool)

	for _, strategy := range strategies {
		// A strategy whose effective parameters match an earlier attempt
		// cannot produce a different result within one run.
		fingerprint := strategy.Fingerprint()
		if attempted[fingerprint] {
			r.logger.Debug("Skipping duplicate strategy parameters",
				zap.String("strategy", strategy.ID))
			continue
		}
		attempted[fingerprint] = true

		if err := ctx.Err(); err != nil {
			outcome.Attempts = append(outcome.Attempts, domain.AttemptResult{
				StrategyID:  strategy.ID,
				FailureKind: domain.FailureCancelled,
				Diagnostic:  "request cancelled before attempt",
			})
			break
		}

		r.logger.Info("Running extraction strategy",
			zap.String("platform", string(req.Platform)),
			zap.String("strategy", strategy.ID),
			zap.String("kind", string(strategy.Kind)))

		workDir, err := os.MkdirTemp(r.workRoot, "attempt-"+strategy.ID+"-")
		if err != nil {
			outcome.Attempts = append(outcome.Attempts, domain.AttemptResult{
				StrategyID:  strategy.ID,
				FailureKind: domain.FailureUnknown,
				Diagnostic:  fmt.Sprintf("failed to create working directory: %v", err),
			})
			continue
		}

		files, fetchErr := r.extractor.Fetch(ctx, req, strategy, workDir)
		if fetchErr == nil {
			outcome.Attempts = append(outcome.Attempts, domain.AttemptResult{
				StrategyID: strategy.ID,
				Success:    true,
				Files:      files,
			})
			outcome.WinningStrategy = strategy.ID
			outcome.RawFiles = files
			outcome.WorkDir = workDir
			return outcome
		}

		// A failed attempt leaves nothing worth keeping.
		os.RemoveAll(workDir)

		kind, diagnostic := classifyFetchError(fetchErr)
		outcome.Attempts = append(outcome.Attempts, domain.AttemptResult{
			StrategyID:  strategy.ID,
			FailureKind: kind,
			Diagnostic:  diagnostic,
		})

		r.logger.Warn("Extraction strategy failed",
			zap.String("strategy", strategy.ID),
			zap.String("failure_kind", string(kind)),
			zap.String("diagnostic", diagnostic))

		if kind.Terminal() {
			break
		}
	}

	return outcome
}

// classifyFetchError unwraps the extractor's typed failure; anything else
// falls into the unknown bucket.
func classifyFetchError(err error) (domain.FailureKind, string) {
	var extractionErr *domain.ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr.Kind, extractionErr.Message
	}
	return domain.FailureUnknown, err.Error()
}
