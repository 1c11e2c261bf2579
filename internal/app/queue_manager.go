package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// QueueManager polls the persisted queue and dispatches pending downloads
// to the download manager.
type QueueManager struct {
	repo        domain.DownloadRepository
	downloadMgr *DownloadManager
	config      *domain.QueueConfig
	logger      *zap.Logger
	mu          sync.RWMutex
	running     bool
	inFlight    map[string]bool
	stopChan    chan struct{}
	exitChan    chan struct{}
	exitOnce    sync.Once
	workerWg    sync.WaitGroup
}

// NewQueueManager creates a new queue manager
func NewQueueManager(
	repo domain.DownloadRepository,
	downloadMgr *DownloadManager,
	config *domain.QueueConfig,
	logger *zap.Logger,
) *QueueManager {
	return &QueueManager{
		repo:        repo,
		downloadMgr: downloadMgr,
		config:      config,
		logger:      logger,
		inFlight:    make(map[string]bool),
		stopChan:    make(chan struct{}),
		exitChan:    make(chan struct{}),
	}
}

// Start starts the queue processor
func (qm *QueueManager) Start(ctx context.Context) error {
	qm.mu.Lock()
	if qm.running {
		qm.mu.Unlock()
		return fmt.Errorf("queue manager already running")
	}
	qm.running = true
	qm.mu.Unlock()

	qm.logger.Info("Queue manager started",
		zap.Duration("check_interval", qm.config.CheckInterval))

	qm.workerWg.Add(1)
	go qm.processQueue(ctx)

	return nil
}

// Stop stops the queue processor and waits for in-flight workers
func (qm *QueueManager) Stop() error {
	qm.mu.Lock()
	if !qm.running {
		qm.mu.Unlock()
		return fmt.Errorf("queue manager not running")
	}
	qm.running = false
	qm.mu.Unlock()

	close(qm.stopChan)
	qm.workerWg.Wait()
	qm.logger.Info("Queue manager stopped")

	return nil
}

// IsRunning returns whether the queue manager is running
func (qm *QueueManager) IsRunning() bool {
	qm.mu.RLock()
	defer qm.mu.RUnlock()
	return qm.running
}

// WaitForExit returns a channel closed when the processor auto-exits
func (qm *QueueManager) WaitForExit() <-chan struct{} {
	return qm.exitChan
}

// AddDownload validates and enqueues a new download. An empty platform is
// auto-detected from the URL.
func (qm *QueueManager) AddDownload(url string, platform domain.Platform, quality domain.Quality) (*domain.Download, error) {
	if platform == "" {
		platform = domain.DetectPlatform(url)
		if platform == "" {
			return nil, fmt.Errorf("could not detect a supported platform from URL: %s", url)
		}
	}
	if !domain.ValidatePlatform(platform) {
		return nil, fmt.Errorf("invalid platform: %s", platform)
	}
	if err := domain.ValidateURL(platform, url); err != nil {
		return nil, err
	}

	download := domain.NewDownload(url, platform, quality)
	if err := qm.repo.Create(download); err != nil {
		return nil, fmt.Errorf("failed to create download: %w", err)
	}

	qm.logger.Info("Download added to queue",
		zap.String("id", download.ID),
		zap.String("url", url),
		zap.String("platform", string(platform)),
		zap.String("quality", string(quality)))

	return download, nil
}

// GetDownload retrieves a download by ID
func (qm *QueueManager) GetDownload(id string) (*domain.Download, error) {
	return qm.repo.FindByID(id)
}

// ListDownloads lists all downloads with optional filters
func (qm *QueueManager) ListDownloads(filters map[string]interface{}) ([]*domain.Download, error) {
	return qm.repo.FindAll(filters)
}

// GetStats returns queue statistics
func (qm *QueueManager) GetStats() (*domain.DownloadStats, error) {
	return qm.repo.GetStats()
}

// DeleteDownload removes a download record
func (qm *QueueManager) DeleteDownload(id string) error {
	return qm.repo.Delete(id)
}

func (qm *QueueManager) claim(id string) bool {
	qm.mu.Lock()
	defer qm.mu.Unlock()
	if qm.inFlight[id] {
		return false
	}
	qm.inFlight[id] = true
	return true
}

func (qm *QueueManager) release(id string) {
	qm.mu.Lock()
	defer qm.mu.Unlock()
	delete(qm.inFlight, id)
}

// processQueue polls for pending downloads and dispatches workers. The
// per-platform semaphores in the download manager bound actual concurrency.
func (qm *QueueManager) processQueue(ctx context.Context) {
	defer qm.workerWg.Done()

	ticker := time.NewTicker(qm.config.CheckInterval)
	defer ticker.Stop()

	emptyStartTime := time.Time{}

	for {
		select {
		case <-ctx.Done():
			qm.logger.Info("Queue processor stopped", zap.String("reason", "context_cancelled"))
			return
		case <-qm.stopChan:
			qm.logger.Info("Queue processor stopped", zap.String("reason", "stop_signal"))
			return
		case <-ticker.C:
			pending, err := qm.repo.FindPending()
			if err != nil {
				qm.logger.Error("Failed to fetch pending downloads", zap.Error(err))
				continue
			}

			if len(pending) == 0 {
				if emptyStartTime.IsZero() {
					emptyStartTime = time.Now()
				} else if qm.config.AutoExitOnEmpty && time.Since(emptyStartTime) > qm.config.EmptyWaitTime {
					qm.logger.Info("Queue empty, auto-exit triggered")
					qm.exitOnce.Do(func() { close(qm.exitChan) })
					return
				}
				continue
			}
			emptyStartTime = time.Time{}

			for _, download := range pending {
				// A download blocked on its platform semaphore stays
				// queued in the database; don't dispatch it twice.
				if !qm.claim(download.ID) {
					continue
				}

				qm.workerWg.Add(1)
				go func(dl *domain.Download) {
					defer qm.workerWg.Done()
					defer qm.release(dl.ID)
					if err := qm.downloadMgr.ProcessDownload(ctx, dl); err != nil {
						qm.logger.Warn("Download processing ended in failure",
							zap.String("id", dl.ID),
							zap.Error(err))
					}
				}(download)
			}
		}
	}
}
