// Package cache implements the probe-result cache spec.md §9's DESIGN
// NOTES call out as a plausible extension point: a persistent
// (signature, side, row)->Score store that sits in front of
// Database.oneProbe's recursive sub-endgame walk so a repeated query
// against a position whose material signature has no table on disk yet
// doesn't re-walk the same recursion every time.
//
// Grounded on the teacher's internal/storage package: same BadgerDB
// wrapper shape (DefaultOptions, a silenced Logger, Close), generalized
// from a single preferences/stats key-value pair to a namespaced key
// per (signature, side, row).
package cache

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// Cache wraps a BadgerDB instance holding cached probe results.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if necessary) a Cache rooted at dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached score for (sig, side, row), if present.
func (c *Cache) Get(sig material.Signature, side xqboard.Color, row int64) (score.Score, bool, error) {
	key := encodeKey(sig, side, row)
	var v int16
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return err
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 2 {
				return fmt.Errorf("cache: corrupt value for %s", key)
			}
			v = int16(binary.LittleEndian.Uint16(val))
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return score.Score{}, false, nil
	}
	if err != nil {
		return score.Score{}, false, err
	}
	return score.Decode2(v), true, nil
}

// Put stores s as the cached score for (sig, side, row). Entries for
// rows still Unset or Missing are never written; there is nothing
// useful to memoize about an undecided probe.
func (c *Cache) Put(sig material.Signature, side xqboard.Color, row int64, s score.Score) error {
	if s.Kind == score.KindUnset || s.Kind == score.KindMissing {
		return nil
	}
	key := encodeKey(sig, side, row)
	val := make([]byte, 2)
	binary.LittleEndian.PutUint16(val, uint16(score.Encode2(s)))
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// encodeKey builds the namespaced BadgerDB key "<signature>/<side>/<row>".
func encodeKey(sig material.Signature, side xqboard.Color, row int64) []byte {
	return []byte(fmt.Sprintf("%s/%d/%d", sig, side, row))
}
