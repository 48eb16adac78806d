// Package gachastore persists the scraper's per-(uid, gacha_type) cursor
// so repeated runs only fetch pulls newer than the last-seen one.
//
// The store is a single flat JSON file, written atomically via renameio so
// a crash mid-write never leaves a corrupt or half-written cursor file
// behind.
package gachastore

import (
	"encoding/json"
	"os"

	"github.com/google/renameio"

	"github.com/distr1/gachalog/internal/gachaerr"
)

// KindCorruptStore is returned when the on-disk file exists but cannot be
// decoded as the store's JSON shape.
const KindCorruptStore gachaerr.Kind = "gachastore.corrupt_store"

// KindIO is returned for filesystem failures reading or writing the store.
const KindIO gachaerr.Kind = "gachastore.io"

// Cursor is the last-seen position for one (uid, gacha_type) pair.
type Cursor struct {
	Uid       string `json:"uid"`
	GachaType string `json:"gacha_type"`
	EndID     string `json:"end_id"`
}

type key struct {
	Uid       string
	GachaType string
}

// Store is an in-memory cursor table backed by a JSON file on disk. It is
// not safe for concurrent use from multiple goroutines.
type Store struct {
	path    string
	cursors map[key]string
}

type wireStore struct {
	Cursors []Cursor `json:"cursors"`
}

// Open loads the store from path, treating a missing file as an empty
// store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, cursors: make(map[key]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, gachaerr.Wrap(KindIO, "reading cursor store", err)
	}

	var w wireStore
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, gachaerr.Wrap(KindCorruptStore, "decoding cursor store", err)
	}
	for _, c := range w.Cursors {
		s.cursors[key{c.Uid, c.GachaType}] = c.EndID
	}
	return s, nil
}

// LastEndID returns the last-seen end_id for (uid, gachaType), or "" if
// none is recorded yet.
func (s *Store) LastEndID(uid, gachaType string) string {
	return s.cursors[key{uid, gachaType}]
}

// SetLastEndID records the last-seen end_id for (uid, gachaType). It does
// not write to disk; call Save to persist.
func (s *Store) SetLastEndID(uid, gachaType, endID string) {
	s.cursors[key{uid, gachaType}] = endID
}

// Save writes the store to disk atomically.
func (s *Store) Save() error {
	w := wireStore{Cursors: make([]Cursor, 0, len(s.cursors))}
	for k, endID := range s.cursors {
		w.Cursors = append(w.Cursors, Cursor{Uid: k.Uid, GachaType: k.GachaType, EndID: endID})
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return gachaerr.Wrap(KindIO, "encoding cursor store", err)
	}
	if err := renameio.WriteFile(s.path, data, 0644); err != nil {
		return gachaerr.Wrap(KindIO, "writing cursor store", err)
	}
	return nil
}
