package domain

import "context"

// RawJob is one record inside a status snapshot, exactly as the remote
// service reports it. Every field besides the title is optional; missing
// fields decode to zero values and must never fail a merge.
type RawJob struct {
	Title     string  `json:"title"`
	Author    string  `json:"author,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
	Speed     string  `json:"speed,omitempty"`
	Size      string  `json:"size,omitempty"`
	Format    string  `json:"format,omitempty"`
	Error     string  `json:"error,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
	WaitTime  int64   `json:"wait_time,omitempty"`
	WaitStart float64 `json:"wait_start,omitempty"`
	Preview   string  `json:"preview,omitempty"`
}

// ToLiveState expands a raw record into the reconciled representation for
// the given job id and unified status.
func (r RawJob) ToLiveState(id string, status UnifiedStatus) LiveJobState {
	return LiveJobState{
		ID:        id,
		Status:    status,
		Progress:  clampProgress(r.Progress),
		Title:     r.Title,
		Author:    r.Author,
		Size:      r.Size,
		Format:    r.Format,
		CoverURL:  r.Preview,
		Error:     r.Error,
		WaitTime:  r.WaitTime,
		WaitStart: r.WaitStart,
		Timestamp: r.Timestamp,
	}
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Snapshot is one full read of the remote queue: category name to job id
// to raw record. Absent categories behave as empty maps.
type Snapshot map[Category]map[string]RawJob

// Jobs returns the bucket for a category, nil-safe on both levels.
func (s Snapshot) Jobs(c Category) map[string]RawJob {
	if s == nil {
		return nil
	}
	return s[c]
}

// Has reports whether the job id is present in the given category.
func (s Snapshot) Has(c Category, id string) bool {
	_, ok := s.Jobs(c)[id]
	return ok
}

// Lookup finds a job record in any category, preferring the fixed
// category order.
func (s Snapshot) Lookup(id string) (RawJob, bool) {
	for _, c := range Categories() {
		if raw, ok := s.Jobs(c)[id]; ok {
			return raw, true
		}
	}
	return RawJob{}, false
}

// SnapshotSource is the remote read interface: one full status snapshot
// per call.
type SnapshotSource interface {
	GetStatus(ctx context.Context) (Snapshot, error)
}

// ControlSink issues one-shot commands against the remote pipeline.
// Delivery is fire-and-forget; the caller owns any optimistic local state.
type ControlSink interface {
	StartDownload(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	ClearCompleted(ctx context.Context) error
	Reorder(ctx context.Context, priorities map[string]int) error
}
