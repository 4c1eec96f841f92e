package xqboard

import "math/bits"

// Bitboard is a 90-bit occupancy mask split across two machine words, the
// same Set/Clear/IsSet/PopCount idiom the teacher's chess board package
// uses for its single-word Bitboard, generalized past 64 squares.
type Bitboard struct {
	Lo uint64 // squares 0-63
	Hi uint64 // squares 64-89 (bit 0 of Hi == square 64)
}

// SquareBB returns a Bitboard with only sq set.
func SquareBB(sq Square) Bitboard {
	if sq < 64 {
		return Bitboard{Lo: 1 << uint(sq)}
	}
	return Bitboard{Hi: 1 << uint(sq-64)}
}

// Set returns b with sq set.
func (b Bitboard) Set(sq Square) Bitboard {
	if sq < 64 {
		b.Lo |= 1 << uint(sq)
	} else {
		b.Hi |= 1 << uint(sq-64)
	}
	return b
}

// Clear returns b with sq cleared.
func (b Bitboard) Clear(sq Square) Bitboard {
	if sq < 64 {
		b.Lo &^= 1 << uint(sq)
	} else {
		b.Hi &^= 1 << uint(sq-64)
	}
	return b
}

// IsSet reports whether sq is occupied in b.
func (b Bitboard) IsSet(sq Square) bool {
	if sq < 64 {
		return b.Lo&(1<<uint(sq)) != 0
	}
	return b.Hi&(1<<uint(sq-64)) != 0
}

// Or returns the union of b and o.
func (b Bitboard) Or(o Bitboard) Bitboard {
	return Bitboard{Lo: b.Lo | o.Lo, Hi: b.Hi | o.Hi}
}

// PopCount returns the number of set squares.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(b.Lo) + bits.OnesCount64(b.Hi)
}

// Empty reports whether no square is set.
func (b Bitboard) Empty() bool {
	return b.Lo == 0 && b.Hi == 0
}
