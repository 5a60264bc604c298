package storage

import (
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketAnalyses      = "analyses"
	bucketAnalysisIndex = "analysis_index"
)

// Store wraps a bbolt database for analysis history persistence
type Store struct {
	db        *bbolt.DB
	retention int
}

// NewStore opens a bbolt database at the given path and initializes required
// buckets. retention caps how many analyses are kept; non-positive means
// keep everything.
func NewStore(path string, retention int) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	// Create required buckets
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketAnalyses)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketAnalysisIndex)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, retention: retention}, nil
}

// Close closes the bbolt database
func (s *Store) Close() error {
	return s.db.Close()
}
