package generator

import (
	"fmt"

	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// RunForward solves this Context's signature by the forward DTM
// fixed-point method (spec.md §4.6.2): repeatedly re-probe every still-
// Unset row against its currently-known children, alternating both
// sides every pass, until two consecutive passes change nothing. Rows
// that remain Unset belong to the perpetual solver next (spec.md §4.7
// runs "after the base DTM generator produces a file that contains
// draws and unset cells") — call FinalizeDraws only after that pass,
// not here.
func (c *Context) RunForward() error {
	zeroStreak := 0
	for ply := 0; ply < MaxPly && zeroStreak < 2; ply++ {
		var probeErr error
		changed := c.forEachRange(c.size, func(lo, hi int64) int64 {
			var n int64
			for row := lo; row < hi; row++ {
				for _, side := range [2]xqboard.Color{xqboard.White, xqboard.Black} {
					if c.Get(side, row).Kind != score.KindUnset {
						continue
					}
					s, ok, err := c.forwardProbe(side, row)
					if err != nil {
						probeErr = err
						return n
					}
					if ok {
						c.Set(side, row, s)
						n++
					}
				}
			}
			return n
		})
		if probeErr != nil {
			return probeErr
		}
		c.logf("forward ply %d: %d changed", ply, changed)
		if err := c.firePlyHook(ply); err != nil {
			return err
		}
		if changed == 0 {
			zeroStreak++
		} else {
			zeroStreak = 0
		}
	}
	return nil
}

// forwardProbe evaluates a single (side, row) against its currently-known
// children: a win is proven as soon as one child is a proven loss for
// the side to move there; a loss is proven only once every legal reply
// is itself a proven win for the opponent, so any Unset, Draw or
// perpetual-tagged child blocks loss determination without blocking win
// determination.
func (c *Context) forwardProbe(side xqboard.Color, row int64) (score.Score, bool, error) {
	pos, err := c.Codec.Decode(row, xqboard.White)
	if err != nil {
		return score.Score{}, false, nil
	}
	pos.SetSideToMove(side)
	moves := pos.GenerateMoves(side)

	var bestWin, bestLoss score.Score
	haveWin, haveLoss, inconclusive := false, false, false

	for _, m := range moves {
		child := pos.Clone()
		child.MakeMove(m)

		var childScore score.Score
		if m.IsCapture() {
			childScore = c.SubTables.Score(child)
			if childScore.Kind == score.KindMissing {
				return score.Score{}, false, fmt.Errorf("generator: missing sub-endgame table for capture %s out of row %d", m, row)
			}
		} else {
			key, flip, encErr := c.Codec.Encode(child)
			if encErr != nil {
				return score.Score{}, false, fmt.Errorf("generator: re-encoding child of row %d: %w", row, encErr)
			}
			tableSide := child.SideToMove()
			if flip {
				tableSide = tableSide.Other()
			}
			childScore = c.Get(tableSide, key)
		}

		if childScore.Kind != score.KindDTM {
			inconclusive = true
			continue
		}
		cand := childScore.Negate()
		if cand.DTM > 0 {
			if !haveWin || cand.DTM < bestWin.DTM {
				bestWin, haveWin = cand, true
			}
			continue
		}
		if !haveLoss || cand.DTM < bestLoss.DTM {
			bestLoss, haveLoss = cand, true
		}
	}

	if haveWin {
		return bestWin, true, nil
	}
	if !inconclusive && haveLoss {
		return bestLoss, true, nil
	}
	return score.Score{}, false, nil
}

// FinalizeDraws converts every row still Unset after a solver's fixed
// point into Draw, the standard retrograde-analysis convention: nothing
// left undecided after the fixed point can be a proven win or loss.
func (c *Context) FinalizeDraws() int64 {
	return c.forEachRange(c.size, func(lo, hi int64) int64 {
		var n int64
		for row := lo; row < hi; row++ {
			for _, side := range [2]xqboard.Color{xqboard.White, xqboard.Black} {
				if c.Get(side, row).Kind == score.KindUnset {
					c.Set(side, row, score.Draw())
					n++
				}
			}
		}
		return n
	})
}
