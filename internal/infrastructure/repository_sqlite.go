package infrastructure

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/yourusername/bookqueue-go/internal/domain"
)

// SQLiteStateRepository implements domain.StateRepository using SQLite.
// It persists only the durable slices: terminal history and the
// notification log. Live job state is rebuilt from the next poll.
type SQLiteStateRepository struct {
	db *gorm.DB
}

// NewSQLiteStateRepository creates a new SQLite repository
func NewSQLiteStateRepository(dbPath string) (*SQLiteStateRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.HistoryRecord{}, &domain.NotificationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStateRepository{db: db}, nil
}

// SaveHistory inserts a history record; a record already present for the
// same job id is left untouched, preserving the first terminal snapshot.
func (r *SQLiteStateRepository) SaveHistory(rec *domain.HistoryRecord) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error
}

// LoadHistory returns up to limit records, newest first
func (r *SQLiteStateRepository) LoadHistory(limit int) ([]*domain.HistoryRecord, error) {
	var records []*domain.HistoryRecord
	err := r.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// DeleteHistory drops all history records
func (r *SQLiteStateRepository) DeleteHistory() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.HistoryRecord{}).Error
}

// SaveNotification appends a notification record
func (r *SQLiteStateRepository) SaveNotification(rec *domain.NotificationRecord) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error
}

// LoadNotifications returns up to limit records, newest first
func (r *SQLiteStateRepository) LoadNotifications(limit int) ([]*domain.NotificationRecord, error) {
	var records []*domain.NotificationRecord
	err := r.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// PruneNotifications keeps only the newest keep records
func (r *SQLiteStateRepository) PruneNotifications(keep int) error {
	newest := r.db.Model(&domain.NotificationRecord{}).
		Select("id").
		Order("created_at DESC").
		Limit(keep)

	return r.db.Where("id NOT IN (?)", newest).
		Delete(&domain.NotificationRecord{}).Error
}

// Close closes the database connection
func (r *SQLiteStateRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
