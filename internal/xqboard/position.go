package xqboard

// Position is a complete, mutable Xiangqi board: piece placement, side to
// move, and the cached occupancy masks and king squares movegen needs.
// EnPassant has no Xiangqi equivalent as a move rule; TrustTable mirrors
// spec.md's "optional en-passant field (ignored except as a
// don't-trust-table flag)" by letting BoardAdapter-external callers mark
// a position as derived from an unreliable source (e.g. a user-entered
// FEN) so Database.score falls back to the one-ply probe instead of a
// direct table lookup.
type Position struct {
	board      [NumSquares]Piece
	occ        [2]Bitboard
	all        Bitboard
	kingSq     [2]Square
	sideToMove Color
	hash       uint64

	TrustTable bool
}

// NewEmpty returns a Position with no pieces placed.
func NewEmpty() *Position {
	p := &Position{TrustTable: true}
	for i := range p.board {
		p.board[i] = Empty
	}
	p.kingSq[White] = NoSquare
	p.kingSq[Black] = NoSquare
	return p
}

// Clone returns a deep copy of p.
func (p *Position) Clone() *Position {
	np := *p
	return &np
}

// SideToMove returns whose turn it is.
func (p *Position) SideToMove() Color { return p.sideToMove }

// SetSideToMove sets whose turn it is, updating the hash's side term.
func (p *Position) SetSideToMove(c Color) {
	if p.sideToMove != c {
		p.hash ^= zobristSide
	}
	p.sideToMove = c
}

// At returns the piece on sq, or Empty.
func (p *Position) At(sq Square) Piece { return p.board[sq] }

// KingSquare returns the square of the given side's king, or NoSquare.
func (p *Position) KingSquare(c Color) Square { return p.kingSq[c] }

// Occupied returns the occupancy bitboard for side c.
func (p *Position) Occupied(c Color) Bitboard { return p.occ[c] }

// AllOccupied returns the combined occupancy of both sides.
func (p *Position) AllOccupied() Bitboard { return p.all }

// Hash returns the Zobrist hash of the current position.
func (p *Position) Hash() uint64 { return p.hash }

// Put places piece pc on sq, which must currently be empty.
func (p *Position) Put(sq Square, pc Piece) {
	p.board[sq] = pc
	c := pc.Color()
	p.occ[c] = p.occ[c].Set(sq)
	p.all = p.all.Set(sq)
	if pc.Kind() == King {
		p.kingSq[c] = sq
	}
	p.hash ^= zobristKey(sq, pc)
}

// Remove clears sq, which must currently hold a piece, and returns it.
func (p *Position) Remove(sq Square) Piece {
	pc := p.board[sq]
	p.board[sq] = Empty
	c := pc.Color()
	p.occ[c] = p.occ[c].Clear(sq)
	p.all = p.all.Clear(sq)
	if pc.Kind() == King && p.kingSq[c] == sq {
		p.kingSq[c] = NoSquare
	}
	p.hash ^= zobristKey(sq, pc)
	return pc
}

// PieceSquares returns every square occupied by a piece of color c.
func (p *Position) PieceSquares(c Color) []Square {
	var sqs []Square
	for sq := Square(0); int(sq) < NumSquares; sq++ {
		if pc := p.board[sq]; !pc.IsEmpty() && pc.Color() == c {
			sqs = append(sqs, sq)
		}
	}
	return sqs
}

// MakeMove applies m (From must hold the mover, To may hold a capture
// already recorded in m.Captured) and flips the side to move.
func (p *Position) MakeMove(m Move) {
	mover := p.Remove(m.From)
	if m.Captured != Empty {
		p.Remove(m.To)
	}
	p.Put(m.To, mover)
	p.SetSideToMove(p.sideToMove.Other())
}

// UnmakeMove reverses MakeMove given the same move value.
func (p *Position) UnmakeMove(m Move) {
	p.SetSideToMove(p.sideToMove.Other())
	mover := p.Remove(m.To)
	p.Put(m.From, mover)
	if m.Captured != Empty {
		p.Put(m.To, m.Captured)
	}
}
