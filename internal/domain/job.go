package domain

import "time"

// UnifiedStatus is the client's own view of a job's lifecycle stage,
// derived from the remote category the job was last seen in.
type UnifiedStatus string

const (
	StatusIdle        UnifiedStatus = "idle"
	StatusQueued      UnifiedStatus = "queued"
	StatusWaiting     UnifiedStatus = "waiting"
	StatusProcessing  UnifiedStatus = "processing"
	StatusDownloading UnifiedStatus = "downloading"
	StatusCompleted   UnifiedStatus = "completed"
	StatusError       UnifiedStatus = "error"
)

// IsTerminal reports whether a job does not leave this status again
// (short of explicit removal).
func (s UnifiedStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Category is the remote service's bucket name for a job's current stage.
type Category string

const (
	CategoryDownloading Category = "downloading"
	CategoryProcessing  Category = "processing"
	CategoryWaiting     Category = "waiting"
	CategoryQueued      Category = "queued"
	CategoryAvailable   Category = "available"
	CategoryDone        Category = "done"
	CategoryError       Category = "error"
	CategoryCancelled   Category = "cancelled"
)

// Categories returns every snapshot bucket in a fixed iteration order.
func Categories() []Category {
	return []Category{
		CategoryDownloading,
		CategoryProcessing,
		CategoryWaiting,
		CategoryQueued,
		CategoryAvailable,
		CategoryDone,
		CategoryError,
		CategoryCancelled,
	}
}

// UnifiedStatus maps a remote category to the client status. Both
// "available" and "done" collapse into completed; the remaining
// categories map one to one.
func (c Category) UnifiedStatus() UnifiedStatus {
	switch c {
	case CategoryDownloading:
		return StatusDownloading
	case CategoryProcessing:
		return StatusProcessing
	case CategoryWaiting:
		return StatusWaiting
	case CategoryQueued:
		return StatusQueued
	case CategoryAvailable, CategoryDone:
		return StatusCompleted
	case CategoryError:
		return StatusError
	default:
		return StatusIdle
	}
}

// LiveJobState is the reconciled view of one job. At most one exists per
// job id; the latest snapshot merge always wins.
type LiveJobState struct {
	ID        string        `json:"id"`
	Status    UnifiedStatus `json:"status"`
	Progress  float64       `json:"progress"`
	Title     string        `json:"title,omitempty"`
	Author    string        `json:"author,omitempty"`
	Size      string        `json:"size,omitempty"`
	Format    string        `json:"format,omitempty"`
	CoverURL  string        `json:"cover_url,omitempty"`
	Error     string        `json:"error,omitempty"`
	WaitTime  int64         `json:"wait_time,omitempty"`  // total wait in seconds
	WaitStart float64       `json:"wait_start,omitempty"` // epoch seconds
	Timestamp string        `json:"timestamp,omitempty"`  // stamped on terminal transition
}

// HistoryRecord is an immutable snapshot of a job taken the first time it
// reached a terminal status. The job id is the primary key, so a job can
// enter history at most once.
type HistoryRecord struct {
	JobID     string        `json:"job_id" gorm:"primaryKey"`
	Status    UnifiedStatus `json:"status" gorm:"not null;index"`
	Title     string        `json:"title,omitempty"`
	Author    string        `json:"author,omitempty"`
	Size      string        `json:"size,omitempty"`
	Format    string        `json:"format,omitempty"`
	CoverURL  string        `json:"cover_url,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp string        `json:"timestamp,omitempty"`
	CreatedAt time.Time     `json:"created_at" gorm:"autoCreateTime;index"`
}

// NewHistoryRecord freezes a live state into a history entry.
func NewHistoryRecord(state *LiveJobState) *HistoryRecord {
	return &HistoryRecord{
		JobID:     state.ID,
		Status:    state.Status,
		Title:     state.Title,
		Author:    state.Author,
		Size:      state.Size,
		Format:    state.Format,
		CoverURL:  state.CoverURL,
		Error:     state.Error,
		Timestamp: state.Timestamp,
		CreatedAt: time.Now(),
	}
}

// NotificationKind classifies a transition notification.
type NotificationKind string

const (
	NotificationStarted   NotificationKind = "started"
	NotificationCompleted NotificationKind = "completed"
	NotificationFailed    NotificationKind = "failed"
)

// DisplayDuration returns how long a notification of this kind stays on
// screen. Failures dwell longest so the message can be read.
func (k NotificationKind) DisplayDuration() time.Duration {
	switch k {
	case NotificationCompleted:
		return 5 * time.Second
	case NotificationFailed:
		return 7 * time.Second
	default:
		return 3 * time.Second
	}
}

// NotificationRecord is one synthesized transition notification. Records
// are never mutated after creation, only expired, dismissed or pruned.
type NotificationRecord struct {
	ID         string           `json:"id" gorm:"primaryKey"`
	Kind       NotificationKind `json:"kind" gorm:"not null;index"`
	JobID      string           `json:"job_id" gorm:"not null"`
	Title      string           `json:"title,omitempty"`
	CoverURL   string           `json:"cover_url,omitempty"`
	CreatedAt  time.Time        `json:"created_at" gorm:"autoCreateTime;index"`
	DurationMs int64            `json:"duration_ms"`
}

// Expired reports whether the notification's display time has elapsed.
func (n *NotificationRecord) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= time.Duration(n.DurationMs)*time.Millisecond
}

// RemainingFraction returns the share of display time left, in [0,1].
func (n *NotificationRecord) RemainingFraction(now time.Time) float64 {
	total := time.Duration(n.DurationMs) * time.Millisecond
	if total <= 0 {
		return 0
	}
	left := 1 - float64(now.Sub(n.CreatedAt))/float64(total)
	if left < 0 {
		return 0
	}
	if left > 1 {
		return 1
	}
	return left
}
