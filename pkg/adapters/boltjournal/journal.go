// Package boltjournal stores unsaved annotation records in a bbolt database.
package boltjournal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/user/vidmark/pkg/annotation"
)

var entriesBucket = []byte("entries")

// OpenTimeout bounds the wait for another process holding the database.
const OpenTimeout = time.Second

// ErrEmptyVideo is returned for entries without a video key.
var ErrEmptyVideo = errors.New("boltjournal: entry has no video")

// Journal is a bbolt-backed annotation.Journal keyed by video path.
type Journal struct {
	db *bbolt.DB
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("could not open journal database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entriesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create entries bucket: %w", err)
	}

	return &Journal{db: db}, nil
}

// Load implements annotation.Journal.
func (j *Journal) Load(video string) (annotation.Entry, bool, error) {
	var entry annotation.Entry
	var found bool

	err := j.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(entriesBucket).Get([]byte(video))
		if v == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(v, &entry); err != nil {
			return fmt.Errorf("decode entry for %s: %w", video, err)
		}
		return nil
	})
	return entry, found, err
}

// Store implements annotation.Journal.
func (j *Journal) Store(entry annotation.Entry) error {
	if entry.Video == "" {
		return ErrEmptyVideo
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry for %s: %w", entry.Video, err)
	}
	return j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(entriesBucket).Put([]byte(entry.Video), value)
	})
}

// Delete implements annotation.Journal.
func (j *Journal) Delete(video string) error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(entriesBucket).Delete([]byte(video))
	})
}

// List implements annotation.Journal.
func (j *Journal) List() ([]annotation.Entry, error) {
	var entries []annotation.Entry

	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(entriesBucket).ForEach(func(k, v []byte) error {
			var entry annotation.Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode entry for %s: %w", k, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].UpdatedAt.After(entries[b].UpdatedAt)
	})
	return entries, nil
}

// Close implements annotation.Journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

var _ annotation.Journal = (*Journal)(nil)
