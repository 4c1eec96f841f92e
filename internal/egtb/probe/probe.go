// Package probe implements Probe (spec.md §4.5): single-position score
// lookup and best-move principal-variation reconstruction.
package probe

import (
	"github.com/nguyenpham/xqegtb/internal/egtb/database"
	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// MaxLineLength bounds principal-variation reconstruction so a
// misclassified cycle (which Bijectivity/DTM-consistency should
// otherwise forbid) cannot loop forever.
const MaxLineLength = 512

// Result is a resolved score together with its principal variation.
type Result struct {
	Score score.Score
	Line  []xqboard.Move
}

// Line evaluates pos and reconstructs the best line to mate or draw
// (spec.md §4.5): at each step, enumerate legal moves, evaluate each as
// -Database.Score(child), keep the best, append it, recurse on the
// chosen child until the score is a terminal mate or a draw.
func Line(db *database.Database, pos *xqboard.Position) Result {
	cur := pos.Clone()
	root := db.Score(cur)
	if root.Kind != score.KindDTM && root.Kind != score.KindDraw {
		return Result{Score: root}
	}

	var moves []xqboard.Move
	s := root
	for len(moves) < MaxLineLength {
		if s.Kind == score.KindDraw {
			break
		}
		if s.Kind == score.KindDTM && (s.DTM == 1 || s.DTM == -1) {
			// One ply from mate either way: the move that realizes it is
			// chosen below, then the loop ends since the resulting
			// position has no legal replies.
		}
		side := cur.SideToMove()
		legal := cur.GenerateMoves(side)
		if len(legal) == 0 {
			break
		}

		var bestMove xqboard.Move
		var bestChildScore score.Score
		haveBest := false
		for _, m := range legal {
			child := cur.Clone()
			child.MakeMove(m)
			childScore := db.Score(child)
			cand := childScore.Negate()
			if !haveBest || better(cand, bestChildScore) {
				bestMove = m
				bestChildScore = cand
				haveBest = true
			}
		}
		if !haveBest {
			break
		}
		moves = append(moves, bestMove)
		cur.MakeMove(bestMove)
		s = db.Score(cur)
		if s.Kind == score.KindDTM && s.DTM == 0 {
			break
		}
		if len(cur.GenerateMoves(cur.SideToMove())) == 0 {
			break
		}
	}

	return Result{Score: root, Line: moves}
}

// better reports whether a is at least as good as b for the side about
// to move, using the same ordering the Database's one-ply fallback uses
// (faster wins, then draws, then slower losses).
func better(a, b score.Score) bool {
	return database.Preference(a) >= database.Preference(b)
}
