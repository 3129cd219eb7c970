package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// SQLStorage implements History on a SQL database via GORM
type SQLStorage struct {
	db    *gorm.DB
	limit int
}

// FromSQL creates a new SQL storage instance
func FromSQL(dialect gorm.Dialector, limit int, opts ...gorm.Option) (*SQLStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	return &SQLStorage{db: db, limit: limit}, nil
}

// Save inserts run and deletes the user's runs beyond the limit in one transaction
func (s *SQLStorage) Save(run *Run) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if run.CreatedAt.IsZero() {
			run.CreatedAt = time.Now().UTC()
		}

		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}

		var stale []int64
		err := tx.Model(&Run{}).
			Where("user_name = ?", run.User).
			Order("id desc").
			Offset(s.limit).
			Pluck("id", &stale).Error
		if err != nil {
			return fmt.Errorf("failed to find stale runs: %w", err)
		}

		if len(stale) == 0 {
			return nil
		}
		if err := tx.Delete(&Run{}, stale).Error; err != nil {
			return fmt.Errorf("failed to delete stale runs: %w", err)
		}
		return nil
	})
}

// List retrieves the runs of user newest first. Filters apply in memory.
func (s *SQLStorage) List(user string, filters ...RunFilter) ([]*Run, error) {
	var runs []*Run

	result := s.db.Where("user_name = ?", user).Order("id desc").Find(&runs)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch runs: %w", result.Error)
	}

	return lo.Filter(runs, func(run *Run, _ int) bool {
		return matches(*run, filters)
	}), nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
