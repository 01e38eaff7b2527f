package infrastructure

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/domain"
)

// DesktopNotifier mirrors transition notifications to the local desktop.
// It implements app.Announcer and is wired only when enabled in config.
type DesktopNotifier struct {
	config *domain.NotificationConfig
	logger *zap.Logger
}

// NewDesktopNotifier creates a new desktop notifier
func NewDesktopNotifier(config *domain.NotificationConfig, logger *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		config: config,
		logger: logger,
	}
}

// Announce sends one notification to the desktop.
func (n *DesktopNotifier) Announce(rec *domain.NotificationRecord) {
	title := notificationTitle(rec.Kind)
	message := rec.Title
	if message == "" {
		message = rec.JobID
	}
	if err := n.send(title, message); err != nil {
		n.logger.Warn("Failed to send desktop notification",
			zap.String("kind", string(rec.Kind)),
			zap.Error(err))
	}
}

func notificationTitle(kind domain.NotificationKind) string {
	switch kind {
	case domain.NotificationCompleted:
		return "Download Completed"
	case domain.NotificationFailed:
		return "Download Failed"
	default:
		return "Download Started"
	}
}

func (n *DesktopNotifier) send(title, message string) error {
	if !n.config.Enabled {
		return nil
	}

	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
		return exec.Command("osascript", "-e", script).Run()
	case "notify-send":
		return exec.Command("notify-send", title, message).Run()
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}
}
