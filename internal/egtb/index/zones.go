// Package index implements IndexCodec (spec.md §4.1): the bijection
// between a canonical board and a dense row index for one material
// signature, including board-symmetry folding, king-pair enumeration,
// combinatorial ranking of same-kind piece groups, and the inverse.
package index

import "github.com/nguyenpham/xqegtb/internal/xqboard"

// Reference cardinalities named in spec.md §3's "Piece-group kinds": the
// original FelicityEgtb source's EGTB_SIZE_* constants. They are kept
// here as documentation/compatibility constants only — see DESIGN.md for
// why this reimplementation's live group zones (below) use the true
// Xiangqi board geometry instead of these values, which were inherited
// from the library's shared, multi-variant (western-chess-sized) origin
// and do not fit a 9x10 board with a 9-square palace.
const (
	RefSizeK2   = 32
	RefSizeK8   = 10
	RefSizeK    = 64
	RefSizeKK8  = 564
	RefSizeKK2  = 1806
	RefSizeX    = 64
	RefSizeXX   = 2016
	RefSizeXXX  = 41664
	RefSizeXXXX = 635376
	RefSizeP    = 48
	RefSizePP   = 1128
	RefSizePPP  = 17296
	RefSizePPPP = 194580
)

// kingZone returns the 9 palace squares for side c.
func kingZone(c xqboard.Color) []xqboard.Square {
	var out []xqboard.Square
	loRank, hiRank := 0, 2
	if c == xqboard.Black {
		loRank, hiRank = 7, 9
	}
	for f := 3; f <= 5; f++ {
		for r := loRank; r <= hiRank; r++ {
			out = append(out, xqboard.NewSquare(f, r))
		}
	}
	return out
}

// advisorZone returns the 5 legal advisor squares for side c: the
// palace's 4 corners plus its center point.
func advisorZone(c xqboard.Color) []xqboard.Square {
	loRank, midRank, hiRank := 0, 1, 2
	if c == xqboard.Black {
		loRank, midRank, hiRank = 7, 8, 9
	}
	return []xqboard.Square{
		xqboard.NewSquare(3, loRank), xqboard.NewSquare(5, loRank),
		xqboard.NewSquare(4, midRank),
		xqboard.NewSquare(3, hiRank), xqboard.NewSquare(5, hiRank),
	}
}

// elephantZone returns the 7 legal elephant squares for side c: the
// diamond-shaped diagonal lattice an elephant can never move off of.
func elephantZone(c xqboard.Color) []xqboard.Square {
	r0, r2, r4 := 0, 2, 4
	if c == xqboard.Black {
		r0, r2, r4 = 9, 7, 5
	}
	return []xqboard.Square{
		xqboard.NewSquare(2, r0), xqboard.NewSquare(6, r0),
		xqboard.NewSquare(0, r2), xqboard.NewSquare(4, r2), xqboard.NewSquare(8, r2),
		xqboard.NewSquare(2, r4), xqboard.NewSquare(6, r4),
	}
}

// pawnZone returns every square a pawn of side c could ever legally rest
// on: its own-side file column before crossing the river, plus every
// square on the far side after crossing.
func pawnZone(c xqboard.Color) []xqboard.Square {
	var out []xqboard.Square
	if c == xqboard.White {
		for _, f := range []int{0, 2, 4, 6, 8} {
			for r := 3; r <= 4; r++ {
				out = append(out, xqboard.NewSquare(f, r))
			}
		}
		for f := 0; f < xqboard.Files; f++ {
			for r := 5; r < xqboard.Ranks; r++ {
				out = append(out, xqboard.NewSquare(f, r))
			}
		}
		return out
	}
	for _, f := range []int{0, 2, 4, 6, 8} {
		for r := 5; r <= 6; r++ {
			out = append(out, xqboard.NewSquare(f, r))
		}
	}
	for f := 0; f < xqboard.Files; f++ {
		for r := 0; r < 5; r++ {
			out = append(out, xqboard.NewSquare(f, r))
		}
	}
	return out
}

// fullBoardZone returns every one of the 90 squares: the legal resting
// zone for rooks, cannons and horses, which face no positional
// restriction of their own (spec.md §4.1 "legal zone").
func fullBoardZone() []xqboard.Square {
	out := make([]xqboard.Square, xqboard.NumSquares)
	for i := range out {
		out[i] = xqboard.Square(i)
	}
	return out
}

// ZoneFor returns the legal resting zone for a piece kind belonging to
// side c.
func ZoneFor(k xqboard.Kind, c xqboard.Color) []xqboard.Square {
	switch k {
	case xqboard.King:
		return kingZone(c)
	case xqboard.Advisor:
		return advisorZone(c)
	case xqboard.Elephant:
		return elephantZone(c)
	case xqboard.Pawn:
		return pawnZone(c)
	default: // Rook, Cannon, Horse
		return fullBoardZone()
	}
}

// indexOf returns the position of sq within zone, or -1.
func indexOf(zone []xqboard.Square, sq xqboard.Square) int {
	for i, z := range zone {
		if z == sq {
			return i
		}
	}
	return -1
}
