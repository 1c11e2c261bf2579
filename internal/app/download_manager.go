package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/infrastructure"
)

// DownloadManager runs the full pipeline for queued downloads:
// metadata -> filename synthesis -> strategy chain -> post-processing ->
// outcome reporting and persistence.
type DownloadManager struct {
	repo      domain.DownloadRepository
	chain     *ChainRunner
	metadata  *MetadataExtractor
	filenames *FilenameSynthesizer
	post      *PostProcessor
	reporter  *ResultReporter
	notifier  *infrastructure.NotificationService
	config    *domain.DownloadConfig
	logger    *zap.Logger

	// Per-platform semaphores (limit=1 each): platforms download in
	// parallel, downloads within one platform are serialized.
	platformSemaphores map[domain.Platform]chan struct{}

	// In-flight cancel functions keyed by download ID, so cancellation can
	// interrupt the running external process.
	cancels map[string]context.CancelFunc
	mu      sync.Mutex
}

// NewDownloadManager creates a new download manager
func NewDownloadManager(
	repo domain.DownloadRepository,
	chain *ChainRunner,
	metadata *MetadataExtractor,
	filenames *FilenameSynthesizer,
	post *PostProcessor,
	reporter *ResultReporter,
	notifier *infrastructure.NotificationService,
	config *domain.DownloadConfig,
	logger *zap.Logger,
) *DownloadManager {
	platformSemaphores := make(map[domain.Platform]chan struct{})
	for _, platform := range domain.SupportedPlatforms() {
		platformSemaphores[platform] = make(chan struct{}, 1)
	}

	return &DownloadManager{
		repo:               repo,
		chain:              chain,
		metadata:           metadata,
		filenames:          filenames,
		post:               post,
		reporter:           reporter,
		notifier:           notifier,
		config:             config,
		logger:             logger,
		platformSemaphores: platformSemaphores,
		cancels:            make(map[string]context.CancelFunc),
	}
}

// ProcessDownload processes a single queued download end to end
func (dm *DownloadManager) ProcessDownload(ctx context.Context, download *domain.Download) error {
	platformSem, ok := dm.platformSemaphores[download.Platform]
	if !ok {
		err := fmt.Errorf("no semaphore for platform: %s", download.Platform)
		download.MarkFailed(err)
		dm.repo.Update(download)
		return err
	}

	select {
	case platformSem <- struct{}{}:
		defer func() { <-platformSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	dm.logger.Info("Processing download",
		zap.String("id", download.ID),
		zap.String("url", download.URL),
		zap.String("platform", string(download.Platform)),
		zap.String("quality", string(download.Quality)))

	req, err := domain.NewDownloadRequest(download.URL, download.Platform, download.Quality, dm.config.DownloadsRoot, "")
	if err != nil {
		download.MarkFailed(err)
		dm.repo.Update(download)
		return err
	}

	download.MarkProcessing()
	if err := dm.repo.Update(download); err != nil {
		return fmt.Errorf("failed to update download status: %w", err)
	}
	dm.notifier.NotifyDownloadStarted(download.URL, download.Platform)

	runCtx, cancel := context.WithCancel(ctx)
	dm.registerCancel(download.ID, cancel)
	defer dm.unregisterCancel(download.ID)

	outcome := dm.runPipeline(runCtx, req)
	dm.reporter.Report(outcome)

	download.SetOutcome(outcome)

	if wasCancelled(outcome) {
		download.MarkCancelled()
		dm.repo.Update(download)
		return nil
	}

	if !outcome.Succeeded() {
		err := fmt.Errorf("no strategy succeeded after %d attempts (last failure: %s)",
			len(outcome.Attempts), outcome.LastFailure())
		download.MarkFailed(err)
		if updateErr := dm.repo.Update(download); updateErr != nil {
			dm.logger.Error("Failed to update download status", zap.Error(updateErr))
		}
		return err
	}

	download.MarkCompleted(outcome.FinalPath)
	if err := dm.repo.Update(download); err != nil {
		dm.logger.Error("Failed to update download status", zap.Error(err))
	}
	return nil
}

// runPipeline executes metadata extraction, filename synthesis, the strategy
// chain and post-processing for one validated request.
func (dm *DownloadManager) runPipeline(ctx context.Context, req domain.DownloadRequest) *domain.DownloadOutcome {
	meta := dm.metadata.Extract(ctx, req.URL)

	targetPath, err := dm.filenames.Synthesize(req.Platform, meta)
	if err != nil {
		return &domain.DownloadOutcome{
			URL:      req.URL,
			Platform: req.Platform,
			Metadata: meta,
			Attempts: []domain.AttemptResult{{
				StrategyID:  "filename_synthesis",
				FailureKind: domain.FailureUnknown,
				Diagnostic:  err.Error(),
			}},
		}
	}

	strategies := domain.ChainFor(req.Platform)
	outcome := dm.chain.Run(ctx, req, strategies)
	outcome.Metadata = meta

	if len(outcome.RawFiles) == 0 {
		dm.filenames.Release(targetPath)
		return outcome
	}

	winning := winningStrategy(strategies, outcome.WinningStrategy)
	finalPath, note, err := dm.post.Process(ctx, req.Platform, winning, outcome.RawFiles, targetPath)
	outcome.PostProcessNote = note
	if err != nil {
		// The raw download stays in the working directory so the user can
		// still recover it.
		dm.logger.Error("Post-processing failed, raw file kept",
			zap.String("work_dir", outcome.WorkDir),
			zap.Error(err))
		dm.filenames.Release(targetPath)
		outcome.Attempts = append(outcome.Attempts, domain.AttemptResult{
			StrategyID:  "post_process",
			FailureKind: domain.FailurePostProcess,
			Diagnostic:  fmt.Sprintf("%v (raw files kept in %s)", err, outcome.WorkDir),
		})
		return outcome
	}

	outcome.FinalPath = finalPath
	if note != "" {
		// A degraded step (failed mux or crop) leaves its surviving raw
		// intermediates behind for manual recovery.
		dm.logger.Warn("Post-processing degraded, raw intermediates kept",
			zap.String("work_dir", outcome.WorkDir),
			zap.String("note", note))
		return outcome
	}
	os.RemoveAll(outcome.WorkDir)
	return outcome
}

// CancelDownload cancels a download. An in-flight download has its external
// process interrupted; the chain halts and cleans up its partial output.
func (dm *DownloadManager) CancelDownload(id string) error {
	download, err := dm.repo.FindByID(id)
	if err != nil {
		return fmt.Errorf("download not found: %w", err)
	}

	if download.IsTerminal() {
		return fmt.Errorf("download already in terminal state: %s", download.Status)
	}

	if cancel := dm.lookupCancel(id); cancel != nil {
		cancel()
		dm.logger.Info("Cancellation signalled to in-flight download", zap.String("id", id))
		return nil
	}

	download.MarkCancelled()
	if err := dm.repo.Update(download); err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	dm.logger.Info("Download cancelled", zap.String("id", id))
	return nil
}

// RetryDownload requeues a failed download
func (dm *DownloadManager) RetryDownload(ctx context.Context, id string) error {
	download, err := dm.repo.FindByID(id)
	if err != nil {
		return fmt.Errorf("download not found: %w", err)
	}

	if download.Status != domain.StatusFailed {
		return fmt.Errorf("download is not in failed state: %s", download.Status)
	}
	if !download.CanRetry(dm.config.MaxRetries) {
		return fmt.Errorf("download exceeded max retries (%d)", dm.config.MaxRetries)
	}

	download.IncrementRetry()
	download.Status = domain.StatusQueued
	download.ErrorMessage = ""
	download.UpdatedAt = time.Now()

	if err := dm.repo.Update(download); err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	dm.logger.Info("Download queued for retry",
		zap.String("id", id),
		zap.Int("retry_count", download.RetryCount))
	return nil
}

func (dm *DownloadManager) registerCancel(id string, cancel context.CancelFunc) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.cancels[id] = cancel
}

func (dm *DownloadManager) unregisterCancel(id string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.cancels, id)
}

func (dm *DownloadManager) lookupCancel(id string) context.CancelFunc {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.cancels[id]
}

func winningStrategy(strategies []domain.Strategy, id string) domain.Strategy {
	for _, s := range strategies {
		if s.ID == id {
			return s
		}
	}
	return domain.Strategy{ID: id}
}

func wasCancelled(outcome *domain.DownloadOutcome) bool {
	return !outcome.Succeeded() && outcome.LastFailure() == domain.FailureCancelled
}
