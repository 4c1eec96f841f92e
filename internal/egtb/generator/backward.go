package generator

import (
	"sync"

	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// RunBackward solves this Context's signature by retrograde analysis
// (spec.md §4.6.3, preferred over the plain forward method): each round
// collects the frontier of rows whose DTM magnitude was decided exactly
// one ply ago, walks backward moves out of them to find predecessors,
// resolves winning edges immediately, and flags losing edges for a
// ply-limited forward re-check (phase 2, reusing forwardProbe) rather
// than concluding a loss from a single bad reply.
//
// The horizontal-symmetry doubling spec.md §4.6.3 describes (writing a
// predecessor's mirror image in the same pass) has no separate step
// here: IndexCodec.Encode already folds every board to its one
// canonical row, so the mirror image of any predecessor is the same row.
func (c *Context) RunBackward() error {
	for s := 0; s < 2; s++ {
		c.pending[s] = make([]bool, c.size)
	}

	zeroStreak := 0
	for p := 1; p < MaxPly && zeroStreak < 2; p++ {
		frontier := c.collectFrontier(int16(p - 1))

		changed, err := c.backwardPhase1(frontier)
		if err != nil {
			return err
		}

		resolved, err := c.backwardPhase2()
		if err != nil {
			return err
		}
		changed += resolved

		c.logf("backward ply %d: %d changed", p, changed)
		if err := c.firePlyHook(p); err != nil {
			return err
		}
		if changed == 0 {
			zeroStreak++
		} else {
			zeroStreak = 0
		}
	}
	// Rows still Unset here are exactly the perpetual solver's input
	// (spec.md §4.7 "run after the base DTM generator produces a file
	// that contains draws and unset cells"); FinalizeDraws runs after
	// that pass, not here.
	return nil
}

type frontierItem struct {
	side xqboard.Color
	row  int64
}

// collectFrontier returns every (side, row) whose score is a decisive
// DTM of the given magnitude, scanned fresh each round rather than kept
// as an incremental worklist — a simplification that costs one full
// buffer scan per ply but keeps both phases uniformly parallelized over
// row ranges like every other pass.
func (c *Context) collectFrontier(magnitude int16) []frontierItem {
	type partial struct{ items []frontierItem }
	workers := c.Workers
	if workers < 1 {
		workers = 1
	}
	chunks := make([]partial, workers)

	size := c.size
	chunkSize := size / int64(workers)
	if chunkSize == 0 {
		chunkSize = size
	}

	done := make(chan int, workers)
	for w := 0; w < workers; w++ {
		lo := int64(w) * chunkSize
		hi := lo + chunkSize
		if w == workers-1 {
			hi = size
		}
		if lo >= hi {
			done <- w
			continue
		}
		go func(w int, lo, hi int64) {
			var items []frontierItem
			for row := lo; row < hi; row++ {
				for _, side := range [2]xqboard.Color{xqboard.White, xqboard.Black} {
					s := c.Get(side, row)
					if s.Kind == score.KindDTM && abs16(s.DTM) == magnitude {
						items = append(items, frontierItem{side, row})
					}
				}
			}
			chunks[w].items = items
			done <- w
		}(w, lo, hi)
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	var all []frontierItem
	for _, part := range chunks {
		all = append(all, part.items...)
	}
	return all
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// backwardPhase1 walks backward moves out of every frontier row,
// writing a predecessor's score directly when the edge proves it a win
// and flagging it for phase 2 when the edge only proves one losing
// reply (spec.md §4.6.3 step 1).
func (c *Context) backwardPhase1(frontier []frontierItem) (int64, error) {
	var changed int64
	for _, item := range frontier {
		rowScore := c.Get(item.side, item.row)
		pos, err := c.Codec.Decode(item.row, xqboard.White)
		if err != nil {
			continue
		}
		mover := item.side.Other()
		for _, bm := range pos.GenerateBackwardMoves(mover) {
			predSide, key, ok := c.resolveBackMove(pos, bm)
			if !ok {
				continue
			}
			if c.Get(predSide, key).Kind != score.KindUnset {
				continue
			}
			cand := rowScore.Negate()
			if cand.Kind == score.KindDTM && cand.DTM > 0 {
				c.Set(predSide, key, cand)
				c.hasCapture[predSide][key] = false
				changed++
			} else {
				c.pending[predSide][key] = true
			}
		}
	}
	return changed, nil
}

// resolveBackMove reconstructs the predecessor board for a BackMove out
// of row's decoded position pos, returning its own canonical (side, row)
// coordinates. ok is false if the predecessor would be illegal (e.g.
// relocating the piece exposes a flying-general check) or fails to
// re-encode under this signature's codec.
func (c *Context) resolveBackMove(pos *xqboard.Position, bm xqboard.BackMove) (side xqboard.Color, row int64, ok bool) {
	pred := pos.Clone()
	pc := pred.Remove(bm.To)
	pred.Put(bm.From, pc)
	pred.SetSideToMove(bm.Color)

	if pred.InCheck(bm.Color.Other()) {
		return 0, 0, false
	}

	key, flip, err := c.Codec.Encode(pred)
	if err != nil {
		return 0, 0, false
	}
	predSide := pred.SideToMove()
	if flip {
		predSide = predSide.Other()
	}
	return predSide, key, true
}

// backwardPhase2 re-checks every row flagged by phase 1 (in this round
// or a previous one) with a full forward probe limited to currently
// known children, exactly as the forward solver would, clearing the
// flag once a row is resolved one way or the other (spec.md §4.6.3
// step 2).
func (c *Context) backwardPhase2() (int64, error) {
	var mu sync.Mutex
	var firstErr error
	n := c.forEachRange(c.size, func(lo, hi int64) int64 {
		var n int64
		for row := lo; row < hi; row++ {
			for _, side := range [2]xqboard.Color{xqboard.White, xqboard.Black} {
				if !c.pending[side][row] {
					continue
				}
				if c.Get(side, row).Kind != score.KindUnset {
					c.pending[side][row] = false
					continue
				}
				s, ok, err := c.forwardProbe(side, row)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				if ok {
					c.Set(side, row, s)
					c.pending[side][row] = false
					n++
				}
			}
		}
		return n
	})
	return n, firstErr
}
