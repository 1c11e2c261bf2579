package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func newTestQueue(t *testing.T, repo domain.DownloadRepository, extractor domain.Extractor, config *domain.QueueConfig) *QueueManager {
	t.Helper()
	if config == nil {
		config = &domain.QueueConfig{CheckInterval: 10 * time.Millisecond}
	}
	return NewQueueManager(repo, newTestManager(t, repo, extractor), config, zap.NewNop())
}

func TestQueueManager_AddDownload(t *testing.T) {
	repo := newFakeRepository()
	qm := newTestQueue(t, repo, &fakeExtractor{}, nil)

	download, err := qm.AddDownload("https://youtu.be/abc123", domain.PlatformYouTube, domain.QualityBest)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, download.Status)

	stored, err := repo.FindByID(download.ID)
	require.NoError(t, err)
	assert.Equal(t, download.URL, stored.URL)
}

func TestQueueManager_AddDownload_DetectsPlatform(t *testing.T) {
	repo := newFakeRepository()
	qm := newTestQueue(t, repo, &fakeExtractor{}, nil)

	download, err := qm.AddDownload("https://www.tiktok.com/@user/video/123456", "", domain.QualityBest)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformTikTok, download.Platform)
}

func TestQueueManager_AddDownload_RejectsUnknownURL(t *testing.T) {
	repo := newFakeRepository()
	qm := newTestQueue(t, repo, &fakeExtractor{}, nil)

	_, err := qm.AddDownload("https://vimeo.com/123456", "", domain.QualityBest)
	assert.Error(t, err)
}

func TestQueueManager_AddDownload_RejectsMismatchedPlatform(t *testing.T) {
	repo := newFakeRepository()
	qm := newTestQueue(t, repo, &fakeExtractor{}, nil)

	_, err := qm.AddDownload("https://www.tiktok.com/@user/video/123456", domain.PlatformYouTube, domain.QualityBest)
	assert.Error(t, err)
}

func TestQueueManager_StartStop(t *testing.T) {
	repo := newFakeRepository()
	qm := newTestQueue(t, repo, &fakeExtractor{}, nil)

	assert.False(t, qm.IsRunning())

	require.NoError(t, qm.Start(context.Background()))
	assert.True(t, qm.IsRunning())
	assert.Error(t, qm.Start(context.Background()))

	require.NoError(t, qm.Stop())
	assert.False(t, qm.IsRunning())
	assert.Error(t, qm.Stop())
}

func TestQueueManager_ProcessesQueuedDownload(t *testing.T) {
	repo := newFakeRepository()
	extractor := &fakeExtractor{
		results: map[string]fakeResult{"tw_best": {files: []string{"raw_123.mp4"}}},
		probe:   &domain.Metadata{Uploader: "someuser"},
	}
	qm := newTestQueue(t, repo, extractor, nil)

	download, err := qm.AddDownload("https://x.com/someuser/status/123456", domain.PlatformTwitter, domain.QualityBest)
	require.NoError(t, err)

	require.NoError(t, qm.Start(context.Background()))
	defer qm.Stop()

	assert.Eventually(t, func() bool {
		stored, err := repo.FindByID(download.ID)
		return err == nil && stored.Status == domain.StatusCompleted
	}, 5*time.Second, 20*time.Millisecond)
}

func TestQueueManager_AutoExitOnEmpty(t *testing.T) {
	repo := newFakeRepository()
	qm := newTestQueue(t, repo, &fakeExtractor{}, &domain.QueueConfig{
		CheckInterval:   10 * time.Millisecond,
		AutoExitOnEmpty: true,
		EmptyWaitTime:   50 * time.Millisecond,
	})

	require.NoError(t, qm.Start(context.Background()))

	select {
	case <-qm.WaitForExit():
	case <-time.After(5 * time.Second):
		t.Fatal("queue manager did not auto-exit on empty queue")
	}
}

func TestQueueManager_GetStats(t *testing.T) {
	repo := newFakeRepository()
	qm := newTestQueue(t, repo, &fakeExtractor{}, nil)

	_, err := qm.AddDownload("https://youtu.be/abc123", domain.PlatformYouTube, domain.QualityBest)
	require.NoError(t, err)

	stats, err := qm.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.Queued)
}

func TestQueueManager_DeleteDownload(t *testing.T) {
	repo := newFakeRepository()
	qm := newTestQueue(t, repo, &fakeExtractor{}, nil)

	download, err := qm.AddDownload("https://youtu.be/abc123", domain.PlatformYouTube, domain.QualityBest)
	require.NoError(t, err)

	require.NoError(t, qm.DeleteDownload(download.ID))
	_, err = qm.GetDownload(download.ID)
	assert.Error(t, err)
}
