package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/domain"
)

// CommandService issues one-shot commands against the remote pipeline and
// keeps the local view consistent around them: start-download is applied
// optimistically and reverted to an error state if the request rejects.
type CommandService struct {
	sink   domain.ControlSink
	store  *Store
	logger *zap.Logger
}

// NewCommandService creates a command service.
func NewCommandService(sink domain.ControlSink, store *Store, logger *zap.Logger) *CommandService {
	return &CommandService{
		sink:   sink,
		store:  store,
		logger: logger,
	}
}

// StartDownload queues a book remotely. The local state flips to
// downloading before the request resolves; on rejection it reverts to an
// error carrying the failure message. The next successful poll overwrites
// either way.
func (c *CommandService) StartDownload(ctx context.Context, id, title, author, coverURL string) error {
	if id == "" {
		return fmt.Errorf("job id is required")
	}

	c.store.Patch(id, func(state *domain.LiveJobState) {
		state.Status = domain.StatusDownloading
		state.Progress = 0
		if title != "" {
			state.Title = title
		}
		if author != "" {
			state.Author = author
		}
		if coverURL != "" {
			state.CoverURL = coverURL
		}
		state.Error = ""
	})

	if err := c.sink.StartDownload(ctx, id); err != nil {
		c.logger.Error("Start download rejected",
			zap.String("id", id), zap.Error(err))
		c.store.Patch(id, func(state *domain.LiveJobState) {
			state.Status = domain.StatusError
			state.Error = err.Error()
		})
		return fmt.Errorf("failed to start download: %w", err)
	}

	c.logger.Info("Download requested", zap.String("id", id), zap.String("title", title))
	return nil
}

// Cancel cancels a job remotely and removes it from the live view.
// Cancellation is not an error state.
func (c *CommandService) Cancel(ctx context.Context, id string) error {
	if err := c.sink.Cancel(ctx, id); err != nil {
		return fmt.Errorf("failed to cancel download: %w", err)
	}

	c.store.Remove(id)
	c.logger.Info("Download cancelled", zap.String("id", id))
	return nil
}

// ClearCompleted clears terminal jobs remotely, then locally.
func (c *CommandService) ClearCompleted(ctx context.Context) (int, error) {
	if err := c.sink.ClearCompleted(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear completed downloads: %w", err)
	}

	removed := c.store.ClearCompleted()
	c.logger.Info("Completed downloads cleared", zap.Int("removed", removed))
	return removed, nil
}

// ConfirmOrder pushes a locally computed queue order to the server. Until
// this lands, the reorder is a display overlay only and the next poll
// reflects server order.
func (c *CommandService) ConfirmOrder(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return fmt.Errorf("order is empty")
	}

	priorities := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		if id == "" {
			return fmt.Errorf("order contains an empty id at position %d", i)
		}
		priorities[id] = i
	}

	if err := c.sink.Reorder(ctx, priorities); err != nil {
		return fmt.Errorf("failed to confirm queue order: %w", err)
	}

	c.logger.Info("Queue order confirmed", zap.Int("items", len(orderedIDs)))
	return nil
}
