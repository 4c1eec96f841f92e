package xqboard

// pseudoTargets returns every square the piece on sq could move to,
// respecting palace/river/eye/leg constraints and friendly-piece blocking,
// but without checking whether the move leaves the mover's own king
// exposed. Sliding pieces (rook, cannon) and the fixed-pattern pieces
// (king, advisor, elephant, horse, pawn) are each handled by their own
// small generator, mirroring how the teacher's movegen.go dispatches by
// PieceType rather than building one generic table.
func (p *Position) pseudoTargets(sq Square) []Square {
	pc := p.board[sq]
	if pc.IsEmpty() {
		return nil
	}
	switch pc.Kind() {
	case King:
		return p.kingTargets(sq, pc.Color())
	case Advisor:
		return p.advisorTargets(sq, pc.Color())
	case Elephant:
		return p.elephantTargets(sq, pc.Color())
	case Horse:
		return p.horseTargets(sq, pc.Color())
	case Rook:
		return p.slideTargets(sq, pc.Color())
	case Cannon:
		return p.cannonTargets(sq, pc.Color())
	case Pawn:
		return p.pawnTargets(sq, pc.Color())
	}
	return nil
}

func (p *Position) canLandOn(sq Square, mover Color) (canLand, isCapture bool) {
	target := p.board[sq]
	if target.IsEmpty() {
		return true, false
	}
	if target.Color() != mover {
		return true, true
	}
	return false, false
}

func (p *Position) appendIfLandable(dst []Square, sq Square, mover Color) []Square {
	if !sq.Valid() {
		return dst
	}
	if can, _ := p.canLandOn(sq, mover); can {
		dst = append(dst, sq)
	}
	return dst
}

func (p *Position) kingTargets(sq Square, side Color) []Square {
	var out []Square
	deltas := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	f, r := sq.File(), sq.Rank()
	for _, d := range deltas {
		nf, nr := f+d[0], r+d[1]
		if nf < 0 || nf >= Files || nr < 0 || nr >= Ranks {
			continue
		}
		to := NewSquare(nf, nr)
		if !InPalace(to, side) {
			continue
		}
		out = p.appendIfLandable(out, to, side)
	}
	return out
}

func (p *Position) advisorTargets(sq Square, side Color) []Square {
	var out []Square
	deltas := [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	f, r := sq.File(), sq.Rank()
	for _, d := range deltas {
		nf, nr := f+d[0], r+d[1]
		if nf < 0 || nf >= Files || nr < 0 || nr >= Ranks {
			continue
		}
		to := NewSquare(nf, nr)
		if !InPalace(to, side) {
			continue
		}
		out = p.appendIfLandable(out, to, side)
	}
	return out
}

func (p *Position) elephantTargets(sq Square, side Color) []Square {
	var out []Square
	deltas := [4][2]int{{2, 2}, {2, -2}, {-2, 2}, {-2, -2}}
	f, r := sq.File(), sq.Rank()
	for _, d := range deltas {
		nf, nr := f+d[0], r+d[1]
		if nf < 0 || nf >= Files || nr < 0 || nr >= Ranks {
			continue
		}
		to := NewSquare(nf, nr)
		if !OwnSide(to, side) {
			continue
		}
		eye := NewSquare(f+d[0]/2, r+d[1]/2)
		if !p.board[eye].IsEmpty() {
			continue
		}
		out = p.appendIfLandable(out, to, side)
	}
	return out
}

func (p *Position) horseTargets(sq Square, side Color) []Square {
	var out []Square
	type step struct{ legDF, legDR, df, dr int }
	steps := []step{
		{0, 1, 1, 2}, {0, 1, -1, 2},
		{0, -1, 1, -2}, {0, -1, -1, -2},
		{1, 0, 2, 1}, {1, 0, 2, -1},
		{-1, 0, -2, 1}, {-1, 0, -2, -1},
	}
	f, r := sq.File(), sq.Rank()
	for _, s := range steps {
		leg := NewSquare(f+s.legDF, r+s.legDR)
		if !leg.Valid() || !p.board[leg].IsEmpty() {
			continue
		}
		nf, nr := f+s.df, r+s.dr
		if nf < 0 || nf >= Files || nr < 0 || nr >= Ranks {
			continue
		}
		out = p.appendIfLandable(out, NewSquare(nf, nr), side)
	}
	return out
}

func (p *Position) slideTargets(sq Square, side Color) []Square {
	var out []Square
	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	f, r := sq.File(), sq.Rank()
	for _, d := range dirs {
		nf, nr := f+d[0], r+d[1]
		for nf >= 0 && nf < Files && nr >= 0 && nr < Ranks {
			to := NewSquare(nf, nr)
			can, capture := p.canLandOn(to, side)
			if can {
				out = append(out, to)
			}
			if capture || !p.board[to].IsEmpty() {
				break
			}
			nf += d[0]
			nr += d[1]
		}
	}
	return out
}

func (p *Position) cannonTargets(sq Square, side Color) []Square {
	var out []Square
	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	f, r := sq.File(), sq.Rank()
	for _, d := range dirs {
		nf, nr := f+d[0], r+d[1]
		// Slide to empty squares until the first piece (the screen).
		for nf >= 0 && nf < Files && nr >= 0 && nr < Ranks {
			to := NewSquare(nf, nr)
			if p.board[to].IsEmpty() {
				out = append(out, to)
				nf += d[0]
				nr += d[1]
				continue
			}
			// Found the screen; look for the first piece past it.
			nf += d[0]
			nr += d[1]
			for nf >= 0 && nf < Files && nr >= 0 && nr < Ranks {
				beyond := NewSquare(nf, nr)
				if !p.board[beyond].IsEmpty() {
					if p.board[beyond].Color() != side {
						out = append(out, beyond)
					}
					break
				}
				nf += d[0]
				nr += d[1]
			}
			break
		}
	}
	return out
}

func (p *Position) pawnTargets(sq Square, side Color) []Square {
	var out []Square
	f, r := sq.File(), sq.Rank()
	forward := 1
	if side == Black {
		forward = -1
	}
	out = p.appendIfLandable(out, NewSquare(f, r+forward), side)
	if !OwnSide(sq, side) {
		// Past the river: pawns may also step sideways.
		if f+1 < Files {
			out = p.appendIfLandable(out, NewSquare(f+1, r), side)
		}
		if f-1 >= 0 {
			out = p.appendIfLandable(out, NewSquare(f-1, r), side)
		}
	}
	return out
}

// attacksSquare reports whether any piece of color by attacks sq.
func (p *Position) attacksSquare(sq Square, by Color) bool {
	for from := Square(0); int(from) < NumSquares; from++ {
		pc := p.board[from]
		if pc.IsEmpty() || pc.Color() != by {
			continue
		}
		for _, to := range p.pseudoTargets(from) {
			if to == sq {
				return true
			}
		}
	}
	return false
}

// kingsFacing reports whether the two kings stand on the same file with no
// piece between them ("flying general"): an exposure equivalent to check
// under Xiangqi rules, forbidding the position regardless of whose turn it
// is to resolve it.
// KingsFacing reports whether the two kings stand on the same file with no
// piece between them, an illegal exposure regardless of whose turn it is.
func (p *Position) KingsFacing() bool { return p.kingsFacing() }

func (p *Position) kingsFacing() bool {
	wk, bk := p.kingSq[White], p.kingSq[Black]
	if wk == NoSquare || bk == NoSquare || wk.File() != bk.File() {
		return false
	}
	lo, hi := wk.Rank(), bk.Rank()
	if lo > hi {
		lo, hi = hi, lo
	}
	for r := lo + 1; r < hi; r++ {
		if !p.board[NewSquare(wk.File(), r)].IsEmpty() {
			return false
		}
	}
	return true
}

// InCheck reports whether side's king is attacked, including the flying
// general exposure.
func (p *Position) InCheck(side Color) bool {
	if p.kingsFacing() {
		return true
	}
	k := p.kingSq[side]
	if k == NoSquare {
		return false
	}
	return p.attacksSquare(k, side.Other())
}

// GenerateMoves returns every legal move for side: pseudo-legal moves that
// do not leave the mover's own king exposed (check or flying general)
// afterward.
func (p *Position) GenerateMoves(side Color) []Move {
	var moves []Move
	for from := Square(0); int(from) < NumSquares; from++ {
		pc := p.board[from]
		if pc.IsEmpty() || pc.Color() != side {
			continue
		}
		for _, to := range p.pseudoTargets(from) {
			m := Move{From: from, To: to, Captured: p.board[to]}
			p.MakeMove(m)
			legal := !p.InCheck(side)
			p.UnmakeMove(m)
			if legal {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// GenerateBackwardMoves enumerates, for every piece currently belonging to
// color mover, the predecessor squares it could have come from: empty
// squares s such that moving the piece from s to its current square would
// be a legal pseudo-move on the board with the piece temporarily relocated
// there. This reverses only non-capturing, same-signature moves, per
// spec.md §4.6.3 — captures that change material are resolved by the
// generator through the sub-endgame's own table, not here.
func (p *Position) GenerateBackwardMoves(mover Color) []BackMove {
	var out []BackMove
	for to := Square(0); int(to) < NumSquares; to++ {
		pc := p.board[to]
		if pc.IsEmpty() || pc.Color() != mover {
			continue
		}
		kind := pc.Kind()
		for from := Square(0); int(from) < NumSquares; from++ {
			if from == to || !p.board[from].IsEmpty() {
				continue
			}
			if p.canReachWhenRelocated(to, from, pc) {
				out = append(out, BackMove{Piece: kind, Color: mover, From: from, To: to})
			}
		}
	}
	return out
}

// canReachWhenRelocated tests, without mutating p, whether a piece pc
// presently at "at" could move to "to" if it were instead sitting at
// "from" (an empty square) with everything else on the board unchanged.
func (p *Position) canReachWhenRelocated(at, from Square, pc Piece) bool {
	saved := p.board[at]
	p.board[at] = Empty
	p.board[from] = pc
	targets := p.pseudoTargets(from)
	p.board[from] = Empty
	p.board[at] = saved
	for _, t := range targets {
		if t == at {
			return true
		}
	}
	return false
}
