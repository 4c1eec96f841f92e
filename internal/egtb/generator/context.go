// Package generator implements Generator (spec.md §4.6): the forward
// and backward DTM fixed-point solvers, checkpointing, verify pass,
// compression-optimisation rewrite and two-byte downgrade.
package generator

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/nguyenpham/xqegtb/internal/egtb/database"
	"github.com/nguyenpham/xqegtb/internal/egtb/index"
	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// MaxPly bounds the ply loops in both solvers: no legal Xiangqi endgame
// mates or loses slower than this, and it backstops a verify-pass bug
// from spinning forever.
const MaxPly = 1000

// Context threads generation-run state explicitly through the call
// graph instead of the package-level verbose flag / counters the
// original source used (spec.md §9 "Replace global mutable state").
type Context struct {
	Verbose   bool
	Workers   int // goroutines per phase; 1 means single-threaded
	Sig       material.Signature
	Codec     *index.Codec
	SubTables *database.Database // completed smaller-material tables, for capture recursion

	size int64

	// cell[side][row] holds the working Score for that row, one entry
	// per row per side-to-move (spec.md's "two payload slabs").
	cell [2][]score.Score

	// hasCapture[side][row] flags rows with at least one legal capture
	// into a different (smaller) material signature, used by the
	// backward solver's phase 1/2 split (spec.md §4.6.3).
	hasCapture [2][]bool

	// pending[side][row] flags rows backwardPhase1 could only prove one
	// losing reply for, awaiting backwardPhase2's full forward check.
	pending [2][]bool

	// onPly, when set, is called at the end of every solver ply with the
	// ply number just completed (spec.md §4.6.4's "checkpoint every N
	// plies"); Build installs one that calls Checkpoint every
	// CheckpointEvery plies.
	onPly func(ply int) error
}

// SetPlyHook installs fn to run after every solver ply (both RunForward
// and RunBackward call it), used by Build to drive periodic
// checkpointing without the solvers needing to know about checkpoint
// files themselves.
func (c *Context) SetPlyHook(fn func(ply int) error) { c.onPly = fn }

func (c *Context) firePlyHook(ply int) error {
	if c.onPly == nil {
		return nil
	}
	return c.onPly(ply)
}

// NewContext allocates a fresh generation buffer pair for sig.
func NewContext(sig material.Signature, codec *index.Codec, sub *database.Database, workers int) *Context {
	if workers < 1 {
		workers = 1
	}
	size := codec.Size()
	ctx := &Context{
		Sig:       sig,
		Codec:     codec,
		SubTables: sub,
		Workers:   workers,
		size:      size,
	}
	for s := 0; s < 2; s++ {
		ctx.cell[s] = make([]score.Score, size)
		ctx.hasCapture[s] = make([]bool, size)
	}
	return ctx
}

// Size returns the number of rows per side.
func (c *Context) Size() int64 { return c.size }

// Get returns the working score for (side, row).
func (c *Context) Get(side xqboard.Color, row int64) score.Score { return c.cell[side][row] }

// Set writes the working score for (side, row).
func (c *Context) Set(side xqboard.Color, row int64, s score.Score) { c.cell[side][row] = s }

func (c *Context) logf(format string, args ...any) {
	if c.Verbose {
		log.Printf(format, args...)
	}
}

// ForEachRow partitions [0, Size()) into Workers contiguous ranges and
// runs fn once per range concurrently, for callers outside this package
// (the perpetual solver, spec.md §4.7) that want the same row-range
// fork-join shape every generator phase already uses.
func (c *Context) ForEachRow(fn func(lo, hi int64) int64) int64 {
	return c.forEachRange(c.size, fn)
}

// forEachRange partitions [0, size) into Workers contiguous ranges and
// runs fn once per range concurrently, joining before returning
// (spec.md §5 "partition [0,size) into N contiguous ranges... hard
// barrier between phases"). fn returns the number of cells it changed;
// forEachRange sums the per-range counts after the join.
func (c *Context) forEachRange(size int64, fn func(lo, hi int64) int64) int64 {
	if size == 0 {
		return 0
	}
	workers := c.Workers
	if int64(workers) > size {
		workers = int(size)
	}
	chunk := size / int64(workers)
	if chunk == 0 {
		chunk = 1
		workers = int(size)
	}

	var wg sync.WaitGroup
	var total int64
	for w := 0; w < workers; w++ {
		lo := int64(w) * chunk
		hi := lo + chunk
		if w == workers-1 {
			hi = size
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int64) {
			defer wg.Done()
			n := fn(lo, hi)
			atomic.AddInt64(&total, n)
		}(lo, hi)
	}
	wg.Wait()
	return total
}
