// Package perpetual implements PerpetualSolver (spec.md §4.7): the
// two-phase classification of otherwise-drawn positions into
// PerpetualChecked/PerpetualEvasion/PerpetualCheckedEvasion and their
// numerisation into DTM-like ply distances. It runs after a
// *generator.Context has reached its DTM fixed point (RunForward or
// RunBackward) but before FinalizeDraws, operating on exactly the rows
// still Unset at that point (spec.md: "run after the base DTM generator
// produces a file that contains draws and unset cells").
//
// See DESIGN.md for the Open Question resolution this package's
// Checked0/Evasion0 semantics are built on: the source's Perpetuation.cpp
// is not present in original_source/, so the precise bit semantics are a
// documented reconstruction rather than a port.
package perpetual

import (
	"github.com/nguyenpham/xqegtb/internal/egtb/generator"
	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

var sides = [2]xqboard.Color{xqboard.White, xqboard.Black}

// bits is the provisional per-row state spec.md §9's DESIGN NOTES asks
// for explicitly ("ProvisionalPerpetual{checked_reach, evasion_reach}
// stored in the flag bitmap, not coerced into the score buffer").
type bits struct {
	checked bool
	evasion bool
}

type frontierItem struct {
	side xqboard.Color
	row  int64
}

// Result is PerpetualSolver's output: Phase F's numerised ply distance
// per (side, row), valid only where the Context's score is one of the
// three perpetual kinds. The table writer consults this when encoding a
// perpetual cell in the two-byte format (spec.md §4.7 Phase F, §4.6.7).
type Result struct {
	Plies [2][]int
}

// Solver runs the six phases of spec.md §4.7 over ctx's working buffers.
type Solver struct {
	ctx   *generator.Context
	mark  [2][]bits
	plies [2][]int
	seeds []frontierItem
}

// New returns a Solver for ctx. Run RunForward/RunBackward to
// completion (but not FinalizeDraws) before calling Run.
func New(ctx *generator.Context) *Solver {
	s := &Solver{ctx: ctx}
	for _, side := range sides {
		s.mark[side] = make([]bits, ctx.Size())
		s.plies[side] = make([]int, ctx.Size())
		for i := range s.plies[side] {
			s.plies[side][i] = -1
		}
	}
	return s
}

// Run executes Phases A through F in order and returns Phase F's result.
func (s *Solver) Run() Result {
	s.phaseA()
	s.phaseB()
	s.phaseC()
	s.phaseD()
	s.phaseE()
	return s.phaseF()
}

// lookup resolves child's score under this Context, following the same
// capture-vs-same-signature split forwardProbe uses: captures read the
// completed sub-endgame table, everything else re-encodes into this
// Context's own working buffer.
func (s *Solver) lookup(child *xqboard.Position, capture bool) (side xqboard.Color, row int64, sc score.Score, ok bool) {
	if capture {
		sc = s.ctx.SubTables.Score(child)
		return xqboard.NoColor, -1, sc, sc.Kind != score.KindMissing
	}
	key, flip, err := s.ctx.Codec.Encode(child)
	if err != nil {
		return 0, 0, score.Score{}, false
	}
	side = child.SideToMove()
	if flip {
		side = side.Other()
	}
	return side, key, s.ctx.Get(side, key), true
}

// checkerCanRecheck reports whether checkerSide, to move in checkerPos
// (not itself in check), has a non-capturing move that both delivers
// check and lands in another still-Unset in-check row — i.e. a genuine
// two-ply "check, forced escape, check again" continuation exists from
// here (DESIGN.md's Checked0 condition).
func (s *Solver) checkerCanRecheck(checkerPos *xqboard.Position, checkerSide xqboard.Color) bool {
	for _, m := range checkerPos.GenerateMoves(checkerSide) {
		if m.IsCapture() {
			continue
		}
		grand := checkerPos.Clone()
		grand.MakeMove(m)
		next := grand.SideToMove()
		if !grand.InCheck(next) {
			continue
		}
		_, _, gScore, ok := s.lookup(grand, false)
		if ok && gScore.Kind == score.KindUnset {
			return true
		}
	}
	return false
}

// phaseA seeds every Unset row where the side to move is in check and
// has at least one escape into another Unset row (spec.md §4.7 Phase A).
// Evasion0 is set whenever such an escape exists at all; Checked0 is the
// additional, stronger condition that some escape leads to a position
// from which the checking side can immediately deliver check again
// (checkerCanRecheck) — a documented simplification of "the checker is
// forced to keep checking" down to "the checker is able to".
func (s *Solver) phaseA() {
	s.ctx.ForEachRow(func(lo, hi int64) int64 {
		for row := lo; row < hi; row++ {
			pos, err := s.ctx.Codec.Decode(row, xqboard.White)
			if err != nil {
				continue
			}
			for _, side := range sides {
				if s.ctx.Get(side, row).Kind != score.KindUnset {
					continue
				}
				pos.SetSideToMove(side)
				if !pos.InCheck(side) {
					continue
				}
				evasion, checked := false, false
				for _, m := range pos.GenerateMoves(side) {
					if m.IsCapture() {
						continue
					}
					child := pos.Clone()
					child.MakeMove(m)
					cSide, _, cScore, ok := s.lookup(child, false)
					if !ok || cScore.Kind != score.KindUnset {
						continue
					}
					evasion = true
					if s.checkerCanRecheck(child, cSide) {
						checked = true
					}
				}
				if evasion {
					s.mark[side][row] = bits{checked: checked, evasion: true}
				}
			}
		}
		return 0
	})
}

// phaseB retests every marked row each round: Evasion0 survives iff some
// escape still leads to an Unset child that is itself live (either still
// marked, or freshly confirmed via checkerCanRecheck); Checked0 survives
// iff it was set and such a rechecking escape still exists. Iterates to
// a fixed point (spec.md §4.7 Phase B).
func (s *Solver) phaseB() {
	for {
		changed := s.ctx.ForEachRow(func(lo, hi int64) int64 {
			var n int64
			for row := lo; row < hi; row++ {
				for _, side := range sides {
					m := s.mark[side][row]
					if !m.checked && !m.evasion {
						continue
					}
					if s.ctx.Get(side, row).Kind != score.KindUnset {
						s.mark[side][row] = bits{}
						n++
						continue
					}
					pos, err := s.ctx.Codec.Decode(row, xqboard.White)
					if err != nil {
						s.mark[side][row] = bits{}
						n++
						continue
					}
					pos.SetSideToMove(side)

					stillEvasion, stillChecked := false, false
					for _, mv := range pos.GenerateMoves(side) {
						if mv.IsCapture() {
							continue
						}
						child := pos.Clone()
						child.MakeMove(mv)
						cSide, cKey, cScore, ok := s.lookup(child, false)
						if !ok || cScore.Kind != score.KindUnset {
							continue
						}
						recheck := s.checkerCanRecheck(child, cSide)
						if s.mark[cSide][cKey].evasion || recheck {
							stillEvasion = true
						}
						if m.checked && recheck {
							stillChecked = true
						}
					}
					nm := bits{checked: stillChecked, evasion: stillEvasion}
					if nm != m {
						s.mark[side][row] = nm
						n++
					}
				}
			}
			return n
		})
		if changed == 0 {
			return
		}
	}
}

// phaseC converts each surviving (Checked0, Evasion0) combination into
// its stable tag (spec.md §4.7 Phase C) and records it as a Phase F BFS
// seed at distance 0.
func (s *Solver) phaseC() {
	for row := int64(0); row < s.ctx.Size(); row++ {
		for _, side := range sides {
			m := s.mark[side][row]
			if !m.checked && !m.evasion {
				continue
			}
			if s.ctx.Get(side, row).Kind != score.KindUnset {
				continue
			}
			var tag score.Score
			switch {
			case m.checked && m.evasion:
				tag = score.PerpetualCheckedEvasion()
			case m.checked:
				tag = score.PerpetualChecked()
			default:
				tag = score.PerpetualEvasion()
			}
			s.ctx.Set(side, row, tag)
			s.plies[side][row] = 0
			s.seeds = append(s.seeds, frontierItem{side, row})
		}
	}
}

// phaseD backward-propagates: any remaining Unset row whose best legal
// reply reaches a perpetual-tagged child adopts that same tag (spec.md
// §4.7 Phase D), reusing Score.Negate()'s identity behaviour on
// perpetual kinds. Iterates to a fixed point since propagation can
// cascade through several Unset rows. Rows reached via a capturing move
// into a sub-endgame's perpetual cell are recorded as extra distance-0
// seeds for Phase F, since this Context has no ply information about
// the sub-endgame's own numerisation.
func (s *Solver) phaseD() {
	for {
		changed := s.ctx.ForEachRow(func(lo, hi int64) int64 {
			var n int64
			for row := lo; row < hi; row++ {
				for _, side := range sides {
					if s.ctx.Get(side, row).Kind != score.KindUnset {
						continue
					}
					pos, err := s.ctx.Codec.Decode(row, xqboard.White)
					if err != nil {
						continue
					}
					pos.SetSideToMove(side)

					var found score.Score
					fromCapture, ok := false, false
					for _, m := range pos.GenerateMoves(side) {
						child := pos.Clone()
						child.MakeMove(m)
						_, _, cScore, lok := s.lookup(child, m.IsCapture())
						if !lok {
							continue
						}
						cand := cScore.Negate()
						if !cand.IsPerpetual() {
							// Some reply ranks above every perpetual tag.
							ok = false
							break
						}
						if !ok {
							found, fromCapture, ok = cand, m.IsCapture(), true
						}
					}
					if ok {
						s.ctx.Set(side, row, found)
						if fromCapture {
							s.plies[side][row] = 0
							s.seeds = append(s.seeds, frontierItem{side, row})
						}
						n++
					}
				}
			}
			return n
		})
		if changed == 0 {
			return
		}
	}
}

// phaseE re-verifies every perpetual-tagged row still has a legal move
// consistent with its tag, downgrading contradictions back to Unset
// (spec.md §4.7 Phase E); a later FinalizeDraws call turns any surviving
// Unset row into an ordinary Draw.
func (s *Solver) phaseE() {
	s.ctx.ForEachRow(func(lo, hi int64) int64 {
		var n int64
		for row := lo; row < hi; row++ {
			for _, side := range sides {
				cur := s.ctx.Get(side, row)
				if !cur.IsPerpetual() {
					continue
				}
				pos, err := s.ctx.Codec.Decode(row, xqboard.White)
				if err != nil {
					s.ctx.Set(side, row, score.Unset())
					n++
					continue
				}
				pos.SetSideToMove(side)

				verified := false
				for _, m := range pos.GenerateMoves(side) {
					child := pos.Clone()
					child.MakeMove(m)
					_, _, cScore, ok := s.lookup(child, m.IsCapture())
					if !ok {
						continue
					}
					if cScore.Negate().IsPerpetual() {
						verified = true
						break
					}
				}
				if !verified {
					s.ctx.Set(side, row, score.Unset())
					s.plies[side][row] = -1
					n++
				}
			}
		}
		return n
	})
}

// phaseF assigns a ply distance to every surviving perpetual-tagged row
// by BFS outward from the Phase C/D seeds along backward moves (the
// predecessor relation spec.md §4.6.3 already uses for retrograde
// analysis), mirroring generator's own checkpoint-free frontier walk
// (spec.md §4.7 Phase F).
func (s *Solver) phaseF() Result {
	frontier := s.liveSeeds()
	for ply := 0; len(frontier) > 0 && ply < generator.MaxPly; ply++ {
		var next []frontierItem
		for _, item := range frontier {
			pos, err := s.ctx.Codec.Decode(item.row, xqboard.White)
			if err != nil {
				continue
			}
			mover := item.side.Other()
			for _, bm := range pos.GenerateBackwardMoves(mover) {
				predSide, predRow, ok := s.resolveBackMove(pos, bm)
				if !ok {
					continue
				}
				if !s.ctx.Get(predSide, predRow).IsPerpetual() {
					continue
				}
				if s.plies[predSide][predRow] >= 0 {
					continue
				}
				s.plies[predSide][predRow] = ply + 1
				next = append(next, frontierItem{predSide, predRow})
			}
		}
		frontier = next
	}
	return Result{Plies: s.plies}
}

func (s *Solver) liveSeeds() []frontierItem {
	var live []frontierItem
	for _, item := range s.seeds {
		if s.ctx.Get(item.side, item.row).IsPerpetual() {
			live = append(live, item)
		}
	}
	return live
}

// resolveBackMove mirrors generator's own predecessor reconstruction
// (internal/egtb/generator/backward.go resolveBackMove): it is kept as
// a separate small copy here rather than exported from generator,
// since it is a three-line wrapper around already-public Codec/Position
// operations and pulling it in would cost more than duplicating it.
func (s *Solver) resolveBackMove(pos *xqboard.Position, bm xqboard.BackMove) (side xqboard.Color, row int64, ok bool) {
	pred := pos.Clone()
	pc := pred.Remove(bm.To)
	pred.Put(bm.From, pc)
	pred.SetSideToMove(bm.Color)

	if pred.InCheck(bm.Color.Other()) {
		return 0, 0, false
	}
	key, flip, err := s.ctx.Codec.Encode(pred)
	if err != nil {
		return 0, 0, false
	}
	predSide := pred.SideToMove()
	if flip {
		predSide = predSide.Other()
	}
	return predSide, key, true
}
