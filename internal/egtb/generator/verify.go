package generator

import (
	"fmt"
	"sync"

	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// Verify runs spec.md §4.6.5's post-generation check: for every row and
// side, reconstruct the board, recompute its score from (already
// finalized) children exactly the way the solver itself would, and
// confirm it matches the stored cell. It also checks the Data Model's
// "Illegal cells round-trip" invariant: a cell must be stored Illegal
// exactly when its row fails to decode or the side not to move is in
// check. Returns the first mismatch found; a
// mismatch aborts the build (spec.md §4.6.5: "Mismatches abort the
// build").
func (c *Context) Verify() error {
	var mu sync.Mutex
	var firstErr error
	c.forEachRange(c.size, func(lo, hi int64) int64 {
		for row := lo; row < hi; row++ {
			for _, side := range [2]xqboard.Color{xqboard.White, xqboard.Black} {
				mu.Lock()
				abort := firstErr != nil
				mu.Unlock()
				if abort {
					return 0
				}
				if err := c.verifyRow(side, row); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}
		return 0
	})
	return firstErr
}

func (c *Context) verifyRow(side xqboard.Color, row int64) error {
	stored := c.Get(side, row)

	pos, err := c.Codec.Decode(row, xqboard.White)
	if err != nil {
		if stored.Kind != score.KindIllegal {
			return fmt.Errorf("generator: verify row %d side %s: decode failed but stored %s", row, side, stored)
		}
		return nil
	}
	if pos.InCheck(side.Other()) {
		if stored.Kind != score.KindIllegal {
			return fmt.Errorf("generator: verify row %d side %s: opponent in check (illegal) but stored %s", row, side, stored)
		}
		return nil
	}

	pos.SetSideToMove(side)
	moves := pos.GenerateMoves(side)
	if len(moves) == 0 {
		if stored.Kind != score.KindDTM || stored.DTM != 0 {
			return fmt.Errorf("generator: verify row %d side %s: no legal moves but stored %s (want DTM(0))", row, side, stored)
		}
		return nil
	}

	combined, ok, err := c.forwardProbe(side, row)
	if err != nil {
		return err
	}
	if ok {
		if combined != stored {
			return fmt.Errorf("generator: verify row %d side %s: recomputed %s, stored %s", row, side, combined, stored)
		}
		return nil
	}
	if stored.Kind != score.KindDraw && !stored.IsPerpetual() {
		return fmt.Errorf("generator: verify row %d side %s: recomputed undecided (draw), stored %s", row, side, stored)
	}
	return nil
}
