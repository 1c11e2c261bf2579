package infrastructure

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// NotificationService sends desktop notifications about download outcomes
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{config: config, logger: logger}
}

// NotifyDownloadStarted announces a download entering processing
func (n *NotificationService) NotifyDownloadStarted(url string, platform domain.Platform) {
	n.send("Download started", fmt.Sprintf("[%s] %s", platform, url))
}

// NotifyDownloadCompleted announces a finished download with its final file
func (n *NotificationService) NotifyDownloadCompleted(platform domain.Platform, finalPath string) {
	n.send("Download completed", fmt.Sprintf("[%s] %s", platform, filepath.Base(finalPath)))
}

// NotifyDownloadFailed announces an exhausted strategy chain
func (n *NotificationService) NotifyDownloadFailed(url string, platform domain.Platform, attempts int) {
	n.send("Download failed", fmt.Sprintf("[%s] %d strategies exhausted for %s", platform, attempts, url))
}

func (n *NotificationService) send(title, message string) {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping", zap.String("title", title))
		return
	}

	var cmd *exec.Cmd
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		cmd = exec.Command("osascript", "-e", script)
	case "notify-send":
		cmd = exec.Command("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return
	}

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
}
