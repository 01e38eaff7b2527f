package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/domain"
)

// RemoteClient implements both the snapshot source and the control sink
// against the remote download service's HTTP API.
//
// Snapshot reads retry with exponential backoff; a 4xx response is
// terminal and returned immediately. Commands are one-shot and never
// retried here, the command service owns any optimistic state around them.
type RemoteClient struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewRemoteClient creates a client for the remote service.
func NewRemoteClient(config *domain.RemoteConfig, logger *zap.Logger) *RemoteClient {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retryDelay := config.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &RemoteClient{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		client:     &http.Client{Timeout: timeout},
		maxRetries: config.MaxRetries,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// statusError is a non-2xx HTTP response from the remote service.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.code, e.body)
}

// retryable reports whether the failure is worth another attempt. Client
// errors are not: a 404 today is a 404 on the next try too.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return true
}

// GetStatus fetches one full queue snapshot.
func (c *RemoteClient) GetStatus(ctx context.Context) (domain.Snapshot, error) {
	body, err := c.doWithRetry(ctx, http.MethodGet, "/api/status", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status snapshot: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode status snapshot: %w", err)
	}
	return snapshot, nil
}

// StartDownload queues a book for download.
func (c *RemoteClient) StartDownload(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodGet, "/api/download?id="+id, nil)
	if err != nil {
		return fmt.Errorf("start download request failed: %w", err)
	}
	return nil
}

// Cancel cancels an in-flight or queued download.
func (c *RemoteClient) Cancel(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/download/"+id+"/cancel", nil)
	if err != nil {
		return fmt.Errorf("cancel request failed: %w", err)
	}
	return nil
}

// ClearCompleted removes terminal jobs from remote tracking.
func (c *RemoteClient) ClearCompleted(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/queue/clear", nil)
	if err != nil {
		return fmt.Errorf("clear completed request failed: %w", err)
	}
	return nil
}

// Reorder pushes new queue priorities, lower number first.
func (c *RemoteClient) Reorder(ctx context.Context, priorities map[string]int) error {
	payload, err := json.Marshal(map[string]interface{}{
		"book_priorities": priorities,
	})
	if err != nil {
		return fmt.Errorf("failed to encode reorder payload: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, "/api/queue/reorder", payload)
	if err != nil {
		return fmt.Errorf("reorder request failed: %w", err)
	}
	return nil
}

// do performs a single request and returns the response body.
func (c *RemoteClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, body: excerpt(body)}
	}
	return body, nil
}

// doWithRetry performs a request with bounded retries and exponential
// backoff. Context cancellation aborts the wait between attempts.
func (c *RemoteClient) doWithRetry(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("Retrying remote request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := c.do(ctx, method, path, payload)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func excerpt(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
