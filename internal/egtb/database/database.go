// Package database implements Database (spec.md §4.4): the
// name→TableFile registry keyed by canonical material signature, and the
// one-ply fallback probe that recurses into sub-endgames when a move
// changes the material signature.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nguyenpham/xqegtb/internal/egtb/cache"
	"github.com/nguyenpham/xqegtb/internal/egtb/format"
	"github.com/nguyenpham/xqegtb/internal/egtb/index"
	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/egtb/table"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// Database is the name→TableFile registry described in spec.md §4.4.
// Tables are stored and looked up only under the canonical signature
// that material.Build returns; no entry is kept for the reversed name.
// A position whose heavier material is on Black is color-swapped onto
// the canonical signature instead.
type Database struct {
	mu     sync.RWMutex
	mode   table.Mode
	codecs map[material.Signature]*index.Codec
	tables map[material.Signature]*table.TableFile
	cache  *cache.Cache // optional, set by UseCache
}

// New returns an empty Database that will open discovered tables with
// the given access mode.
func New(mode table.Mode) *Database {
	return &Database{
		mode:   mode,
		codecs: map[material.Signature]*index.Codec{},
		tables: map[material.Signature]*table.TableFile{},
	}
}

// UseCache attaches a persistent probe-result cache: any signature this
// Database has no table file for falls back to oneProbe's recursive
// one-ply search, and a cache hit here short-circuits that recursion
// (spec.md §9's cache extension point).
func (db *Database) UseCache(c *cache.Cache) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.cache = c
}

// LoadDir recursively scans root for table files (spec.md §6.5),
// grouping per-side files by signature and opening one TableFile per
// signature.
func (db *Database) LoadDir(root string) error {
	type found struct {
		sig  material.Signature
		side format.Side
		path string
	}
	var entries []found

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		for _, ext := range format.KnownExtensions {
			if !strings.HasSuffix(name, string(ext)) {
				continue
			}
			base := strings.TrimSuffix(name, string(ext))
			if len(base) < 2 {
				continue
			}
			sideChar := format.Side(base[len(base)-1])
			sigStr := base[:len(base)-1]
			entries = append(entries, found{
				sig:  material.Signature(sigStr),
				side: sideChar,
				path: path,
			})
			return nil
		}
		return nil
	})
	if err != nil {
		return err
	}

	bySig := map[material.Signature]map[format.Side]string{}
	for _, e := range entries {
		if bySig[e.sig] == nil {
			bySig[e.sig] = map[format.Side]string{}
		}
		bySig[e.sig][e.side] = e.path
	}

	for sig, paths := range bySig {
		if err := db.loadSignature(sig, paths); err != nil {
			return fmt.Errorf("database: loading %s: %w", sig, err)
		}
	}
	return nil
}

func (db *Database) loadSignature(sig material.Signature, paths map[format.Side]string) error {
	codec, err := index.NewCodec(sig)
	if err != nil {
		return err
	}
	tf, err := table.Open(sig, paths, codec, db.mode)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.codecs[sig] = codec
	if existing, ok := db.tables[sig]; ok {
		if err := existing.Merge(tf); err != nil {
			return err
		}
		return nil
	}
	db.tables[sig] = tf
	return nil
}

// codecFor returns (building if necessary) the Codec for sig.
func (db *Database) codecFor(sig material.Signature) (*index.Codec, error) {
	db.mu.RLock()
	c, ok := db.codecs[sig]
	db.mu.RUnlock()
	if ok {
		return c, nil
	}
	c, err := index.NewCodec(sig)
	if err != nil {
		return nil, err
	}
	db.mu.Lock()
	db.codecs[sig] = c
	db.mu.Unlock()
	return c, nil
}

func (db *Database) tableFor(sig material.Signature) *table.TableFile {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.tables[sig]
}

// countMaterial tallies a position's piece counts per color.
func countMaterial(pos *xqboard.Position) (white, black material.Counts) {
	for _, sq := range pos.PieceSquares(xqboard.White) {
		white[pos.At(sq).Kind()]++
	}
	for _, sq := range pos.PieceSquares(xqboard.Black) {
		black[pos.At(sq).Kind()]++
	}
	return white, black
}

// swapColors returns a clone of pos with every piece's color flipped and
// every square rank-flipped (so palace/river relationships stay
// consistent), and side to move flipped. Used to present a codec built
// for signature sig's canonical "first half = White" convention with a
// board whose heavier material actually sits on the real Black side.
func swapColors(pos *xqboard.Position) *xqboard.Position {
	np := xqboard.NewEmpty()
	for sq := xqboard.Square(0); int(sq) < xqboard.NumSquares; sq++ {
		pc := pos.At(sq)
		if pc.IsEmpty() {
			continue
		}
		np.Put(sq.FlipRank(), xqboard.NewPiece(pc.Kind(), pc.Color().Other()))
	}
	np.SetSideToMove(pos.SideToMove().Other())
	return np
}

// Score returns pos's perfect-play score from the side-to-move's point
// of view (spec.md §4.4).
func (db *Database) Score(pos *xqboard.Position) score.Score {
	white, black := countMaterial(pos)
	sig, swapped, err := material.Build(white, black)
	if err != nil {
		return score.Illegal()
	}

	codec, err := db.codecFor(sig)
	if err != nil {
		return score.Illegal()
	}

	work := pos
	if swapped {
		work = swapColors(pos)
	}
	key, codecFlip, err := codec.Encode(work)
	if err != nil {
		return score.Illegal()
	}

	tableSide := pos.SideToMove()
	if swapped {
		tableSide = tableSide.Other()
	}
	if codecFlip {
		tableSide = tableSide.Other()
	}

	tf := db.tableFor(sig)
	if tf == nil {
		return db.cachedOneProbe(pos, sig, tableSide, key)
	}
	if !pos.TrustTable && tf.HasSide(tableSide) {
		// Don't-trust-table flag: force the one-ply probe even though a
		// direct answer is available.
		return db.oneProbe(pos)
	}
	if !tf.HasSide(tableSide) {
		return db.cachedOneProbe(pos, sig, tableSide, key)
	}
	s, err := tf.Get(tableSide, key)
	if err != nil {
		return score.Missing()
	}
	return s
}

// cachedOneProbe consults the attached cache (if any) before falling
// back to oneProbe's recursive search, and memoizes the result
// afterward unless it is Missing (Cache.Put also skips Unset). With no
// cache attached this is exactly oneProbe.
func (db *Database) cachedOneProbe(pos *xqboard.Position, sig material.Signature, side xqboard.Color, row int64) score.Score {
	db.mu.RLock()
	c := db.cache
	db.mu.RUnlock()
	if c == nil {
		return db.oneProbe(pos)
	}
	if s, ok, err := c.Get(sig, side, row); err == nil && ok {
		return s
	}
	s := db.oneProbe(pos)
	if s.Kind != score.KindMissing {
		c.Put(sig, side, row, s)
	}
	return s
}

// oneProbe implements spec.md §4.4's one-ply fallback: enumerate legal
// moves, recurse, combine as max(-child_score).
func (db *Database) oneProbe(pos *xqboard.Position) score.Score {
	side := pos.SideToMove()
	moves := pos.GenerateMoves(side)
	if len(moves) == 0 {
		// Mated or stalemated: both are losses in Xiangqi, matching
		// Init's terminal Dtm(0) encoding.
		return score.Dtm(0)
	}

	best := score.Score{}
	haveBest := false
	for _, m := range moves {
		child := pos.Clone()
		child.MakeMove(m)
		childScore := db.Score(child)
		if childScore.Kind == score.KindMissing {
			return score.Missing()
		}
		cand := childScore.Negate()
		if !haveBest || preference(cand) > preference(best) {
			best = cand
			haveBest = true
		}
	}
	return best
}

// Preference totally orders Score values for a max-combine over legal
// replies, from the perspective of the side about to move: faster wins
// beat slower wins beat draws beat slower losses beat faster losses.
// Exported so Probe's line reconstruction can break ties the same way
// the one-ply fallback does.
func Preference(s score.Score) int { return preference(s) }

func preference(s score.Score) int {
	switch {
	case s.Kind == score.KindDTM && s.DTM > 0:
		return 1_000_000 - int(s.DTM)
	case s.Kind == score.KindDTM && s.DTM < 0:
		return -1_000_000 - int(s.DTM)
	case s.Kind == score.KindDraw:
		return 0
	case s.Kind == score.KindWinning:
		return 900_000
	case s.IsPerpetual():
		return -1_500_000
	default: // Unknown, Unset
		return -1_400_000
	}
}

// Close releases every loaded TableFile's resources.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	var firstErr error
	for _, tf := range db.tables {
		if err := tf.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
