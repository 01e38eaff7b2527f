package domain

// StateRepository persists the durable slices of the reconciled state:
// terminal history and the notification log. Live job state is rebuilt
// from the next poll and is deliberately not stored.
type StateRepository interface {
	// SaveHistory inserts a history record. A record for the same job id
	// already on disk is left untouched.
	SaveHistory(rec *HistoryRecord) error

	// LoadHistory returns up to limit records, newest first.
	LoadHistory(limit int) ([]*HistoryRecord, error)

	// DeleteHistory drops all history records.
	DeleteHistory() error

	// SaveNotification appends a notification record.
	SaveNotification(rec *NotificationRecord) error

	// LoadNotifications returns up to limit records, newest first.
	LoadNotifications(limit int) ([]*NotificationRecord, error)

	// PruneNotifications keeps only the newest keep records.
	PruneNotifications(keep int) error

	// Close releases the underlying storage.
	Close() error
}
