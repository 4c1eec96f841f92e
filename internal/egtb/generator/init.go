package generator

import (
	"github.com/nguyenpham/xqegtb/internal/egtb/database"
	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// Init runs spec.md §4.6.1's initialisation phase over every row: decode
// the board, mark unreachable rows Illegal, mark the immediate-loss
// terminal rows (no legal moves — Xiangqi has no stalemate draw, so this
// is always a loss) with the zero-ply DTM sentinel, and leave everything
// else Unset. When SubTables is set (backward solver) it also seeds the
// has-capture flag and a provisional score from already-completed
// smaller-material tables, per §4.6.3.
func (c *Context) Init() int64 {
	return c.forEachRange(c.size, func(lo, hi int64) int64 {
		var changed int64
		for row := lo; row < hi; row++ {
			changed += c.initRow(row)
		}
		return changed
	})
}

func (c *Context) initRow(row int64) int64 {
	pos, err := c.Codec.Decode(row, xqboard.White)
	if err != nil {
		c.Set(xqboard.White, row, score.Illegal())
		c.Set(xqboard.Black, row, score.Illegal())
		return 1
	}

	var changed int64
	for _, side := range [2]xqboard.Color{xqboard.White, xqboard.Black} {
		if pos.InCheck(side.Other()) {
			c.Set(side, row, score.Illegal())
			changed++
			continue
		}
		pos.SetSideToMove(side)
		moves := pos.GenerateMoves(side)
		if len(moves) == 0 {
			c.Set(side, row, score.Dtm(0))
			changed++
			continue
		}
		c.Set(side, row, score.Unset())
		if c.SubTables != nil {
			if hasCap, provisional := c.seedCapture(pos, moves); hasCap {
				c.hasCapture[side][row] = true
				if provisional.Kind != score.KindUnset {
					c.Set(side, row, provisional)
				}
			}
		}
	}
	return changed
}

// seedCapture evaluates every capturing move among moves against the
// already-completed sub-endgame tables, returning whether a capture
// exists at all and the best resulting score (Unset if every capture's
// target table is still missing).
func (c *Context) seedCapture(pos *xqboard.Position, moves []xqboard.Move) (hasCapture bool, best score.Score) {
	haveBest := false
	for _, m := range moves {
		if !m.IsCapture() {
			continue
		}
		hasCapture = true
		child := pos.Clone()
		child.MakeMove(m)
		childScore := c.SubTables.Score(child)
		if childScore.Kind == score.KindMissing {
			continue
		}
		cand := childScore.Negate()
		if !haveBest || database.Preference(cand) > database.Preference(best) {
			best = cand
			haveBest = true
		}
	}
	if !haveBest {
		return hasCapture, score.Unset()
	}
	return hasCapture, best
}
