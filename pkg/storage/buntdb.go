package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tidwall/buntdb"
)

const (
	keyPrefix = "run:"
	idIndex   = "id_index"
)

// BuntStorage implements History using BuntDB
type BuntStorage struct {
	lastID int64
	limit  int
	db     *buntdb.DB
}

// FromMemory creates an in-memory storage
func FromMemory(limit int) (*BuntStorage, error) {
	return NewBuntStorage(":memory:", limit)
}

// FromFile creates a file-based storage
func FromFile(file string, limit int) (*BuntStorage, error) {
	return NewBuntStorage(file, limit)
}

// NewBuntStorage creates a new BuntDB storage instance. A non-positive limit
// falls back to DefaultLimit.
func NewBuntStorage(sourceFile string, limit int) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex(idIndex, keyPrefix+"*", buntdb.IndexJSON("id"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	storage := &BuntStorage{db: db, limit: limit}

	// resume numbering after the runs already on disk
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.Descend(idIndex, func(key, _ string) bool {
			storage.lastID, _ = strconv.ParseInt(strings.TrimPrefix(key, keyPrefix), 10, 64)
			return false
		})
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read last id: %w", err)
	}

	return storage, nil
}

func (b *BuntStorage) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Save stores a new run and prunes the oldest runs of the same user
func (b *BuntStorage) Save(run *Run) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		run.ID = b.getID()
		if run.CreatedAt.IsZero() {
			run.CreatedAt = time.Now().UTC()
		}

		content, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}

		_, _, err = tx.Set(key(run.ID), string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store run: %w", err)
		}

		return b.prune(tx, run.User)
	})
}

func (b *BuntStorage) prune(tx *buntdb.Tx, user string) error {
	var (
		kept  int
		stale []string
	)

	err := tx.Descend(idIndex, func(key, value string) bool {
		var run Run
		if err := json.Unmarshal([]byte(value), &run); err != nil || run.User != user {
			return true
		}
		kept++
		if kept > b.limit {
			stale = append(stale, key)
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to iterate over runs: %w", err)
	}

	for _, key := range stale {
		if _, err := tx.Delete(key); err != nil {
			return fmt.Errorf("failed to delete run %s: %w", key, err)
		}
	}
	return nil
}

// List retrieves the runs of user, newest first
func (b *BuntStorage) List(user string, filters ...RunFilter) ([]*Run, error) {
	runs := make([]*Run, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		err := tx.Descend(idIndex, func(_, value string) bool {
			var run Run
			if err := json.Unmarshal([]byte(value), &run); err != nil {
				return true
			}
			if run.User != user || !matches(run, filters) {
				return true
			}

			runs = append(runs, &run)
			return true
		})
		if err != nil {
			return fmt.Errorf("failed to iterate over runs: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
