package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the current status of a queued download
type DownloadStatus string

const (
	StatusQueued     DownloadStatus = "queued"
	StatusProcessing DownloadStatus = "processing"
	StatusCompleted  DownloadStatus = "completed"
	StatusFailed     DownloadStatus = "failed"
	StatusCancelled  DownloadStatus = "cancelled"
)

// Download is the persisted queue record for one download request. The
// outcome of the strategy chain is stored alongside it as JSON so the full
// attempt trail survives the process.
type Download struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	URL          string         `json:"url" gorm:"not null"`
	Platform     Platform       `json:"platform" gorm:"not null;index"`
	Quality      Quality        `json:"quality" gorm:"default:best"`
	Status       DownloadStatus `json:"status" gorm:"not null;index"`
	Priority     int            `json:"priority" gorm:"default:0;index"`
	RetryCount   int            `json:"retry_count" gorm:"default:0"`
	ErrorMessage string         `json:"error_message,omitempty"`
	FilePath     string         `json:"file_path,omitempty"`
	Outcome      string         `json:"outcome,omitempty" gorm:"type:text"` // JSON DownloadOutcome
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// NewDownload creates a new queued download
func NewDownload(url string, platform Platform, quality Quality) *Download {
	if quality == "" {
		quality = QualityBest
	}
	return &Download{
		ID:        uuid.New().String(),
		URL:       url,
		Platform:  platform,
		Quality:   quality,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// MarkProcessing marks the download as processing
func (d *Download) MarkProcessing() {
	d.Status = StatusProcessing
	now := time.Now()
	d.StartedAt = &now
	d.UpdatedAt = now
}

// MarkCompleted marks the download as completed
func (d *Download) MarkCompleted(filePath string) {
	d.Status = StatusCompleted
	d.FilePath = filePath
	now := time.Now()
	d.CompletedAt = &now
	d.UpdatedAt = now
}

// MarkFailed marks the download as failed
func (d *Download) MarkFailed(err error) {
	d.Status = StatusFailed
	d.ErrorMessage = err.Error()
	d.UpdatedAt = time.Now()
}

// MarkCancelled marks the download as cancelled
func (d *Download) MarkCancelled() {
	d.Status = StatusCancelled
	d.UpdatedAt = time.Now()
}

// SetOutcome serializes the outcome onto the record
func (d *Download) SetOutcome(outcome *DownloadOutcome) {
	if outcome == nil {
		return
	}
	if data, err := json.Marshal(outcome); err == nil {
		d.Outcome = string(data)
	}
}

// ParseOutcome deserializes the stored outcome, or nil when absent
func (d *Download) ParseOutcome() *DownloadOutcome {
	if d.Outcome == "" {
		return nil
	}
	var outcome DownloadOutcome
	if err := json.Unmarshal([]byte(d.Outcome), &outcome); err != nil {
		return nil
	}
	return &outcome
}

// IncrementRetry increments the retry count
func (d *Download) IncrementRetry() {
	d.RetryCount++
	d.UpdatedAt = time.Now()
}

// CanRetry checks if the download can be retried
func (d *Download) CanRetry(maxRetries int) bool {
	return d.RetryCount < maxRetries && d.Status == StatusFailed
}

// IsTerminal checks if the download is in a terminal state
func (d *Download) IsTerminal() bool {
	return d.Status == StatusCompleted || d.Status == StatusCancelled
}

// IsPending checks if the download is waiting in the queue
func (d *Download) IsPending() bool {
	return d.Status == StatusQueued
}

// IsProcessing checks if the download is currently processing
func (d *Download) IsProcessing() bool {
	return d.Status == StatusProcessing
}
