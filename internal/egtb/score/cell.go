package score

// One-byte cell encoding, spec.md §3 ScoreCell:
//
//	0        Illegal
//	1        Unset
//	2        Missing
//	3        Winning
//	4        Unknown
//	5        Draw
//	6..129   MatingStart..MatingEnd: mate_in_plies = 2*(cell-6)+1
//	130..252 LosingStart..LosingEnd: -mate_in_plies = 2*(cell-130)
//	253..255 reserved for the three perpetual classes
const (
	cellIllegal     = 0
	cellUnset       = 1
	cellMissing     = 2
	cellWinning     = 3
	cellUnknown     = 4
	cellDraw        = 5
	cellMatingStart = 6
	cellMatingEnd   = 129
	cellLosingStart = 130
	cellLosingEnd   = 252

	cellPerpetualChecked        = 253
	cellPerpetualEvasion        = 254
	cellPerpetualCheckedEvasion = 255
)

// MaxOneByteMatePlies is the largest mate-in-plies distance representable
// in the one-byte cell encoding.
const MaxOneByteMatePlies = 2*(cellMatingEnd-cellMatingStart) + 1

// MaxOneByteLossPlies is the largest loss-in-plies magnitude representable
// in the one-byte cell encoding.
const MaxOneByteLossPlies = 2 * (cellLosingEnd - cellLosingStart)

// Encode1 encodes s into one byte. ok is false if s's DTM magnitude
// exceeds the one-byte range (spec.md §4.6.7 "two-byte downgrade").
func Encode1(s Score) (b byte, ok bool) {
	switch s.Kind {
	case KindIllegal:
		return cellIllegal, true
	case KindUnset:
		return cellUnset, true
	case KindMissing:
		return cellMissing, true
	case KindWinning:
		return cellWinning, true
	case KindUnknown:
		return cellUnknown, true
	case KindDraw:
		return cellDraw, true
	case KindPerpetualChecked:
		return cellPerpetualChecked, true
	case KindPerpetualEvasion:
		return cellPerpetualEvasion, true
	case KindPerpetualCheckedEvasion:
		return cellPerpetualCheckedEvasion, true
	case KindDTM:
		if s.DTM > 0 {
			plies := int(s.DTM)
			if plies > MaxOneByteMatePlies {
				return 0, false
			}
			return byte(cellMatingStart + (plies-1)/2), true
		}
		plies := -int(s.DTM)
		if plies > MaxOneByteLossPlies {
			return 0, false
		}
		return byte(cellLosingStart + plies/2), true
	}
	return 0, false
}

// Decode1 decodes a one-byte cell back into a Score.
func Decode1(b byte) Score {
	switch {
	case b == cellIllegal:
		return Illegal()
	case b == cellUnset:
		return Unset()
	case b == cellMissing:
		return Missing()
	case b == cellWinning:
		return Winning()
	case b == cellUnknown:
		return Unknown()
	case b == cellDraw:
		return Draw()
	case b == cellPerpetualChecked:
		return PerpetualChecked()
	case b == cellPerpetualEvasion:
		return PerpetualEvasion()
	case b == cellPerpetualCheckedEvasion:
		return PerpetualCheckedEvasion()
	case b >= cellMatingStart && b <= cellMatingEnd:
		plies := 2*(int(b)-cellMatingStart) + 1
		return Dtm(int16(plies))
	default: // cellLosingStart..cellLosingEnd
		plies := 2 * (int(b) - cellLosingStart)
		return Dtm(int16(-plies))
	}
}

// Two-byte cell encoding: a raw signed 16-bit value. Ordinary DTM scores
// are stored directly (their sign already carries win/loss, matching
// spec.md's DTM parity invariant). Scores with no natural signed-integer
// meaning, and the perpetual classes once spec.md §4.7 Phase F numerises
// them, live in reserved bands comfortably outside any real game's DTM
// range.
const (
	twoByteDraw    = 30000
	twoByteIllegal = 30001
	twoByteUnset   = 30002
	twoByteMissing = 30003
	twoByteWinning = 30004
	twoByteUnknown = 30005

	perpetualCheckedBase        = 20000
	perpetualEvasionBase        = 21000
	perpetualCheckedEvasionBase = 22000
	perpetualBandWidth          = 1000
)

// Encode2 encodes s into a signed 16-bit cell.
func Encode2(s Score) int16 {
	switch s.Kind {
	case KindDraw:
		return twoByteDraw
	case KindIllegal:
		return twoByteIllegal
	case KindUnset:
		return twoByteUnset
	case KindMissing:
		return twoByteMissing
	case KindWinning:
		return twoByteWinning
	case KindUnknown:
		return twoByteUnknown
	case KindDTM:
		return s.DTM
	case KindPerpetualChecked, KindPerpetualEvasion, KindPerpetualCheckedEvasion:
		// Unnumerised perpetual tag written before Phase F: store in the
		// base slot of its band.
		return perpetualBase(s.Kind)
	}
	return twoByteUnknown
}

func perpetualBase(k Kind) int16 {
	switch k {
	case KindPerpetualChecked:
		return perpetualCheckedBase
	case KindPerpetualEvasion:
		return perpetualEvasionBase
	default:
		return perpetualCheckedEvasionBase
	}
}

// EncodeNumerisedPerpetual encodes a perpetual class together with its
// Phase F ply distance, spec.md §4.7 Phase F.
func EncodeNumerisedPerpetual(k Kind, plies int) int16 {
	if plies < 0 {
		plies = 0
	}
	if plies >= perpetualBandWidth {
		plies = perpetualBandWidth - 1
	}
	return perpetualBase(k) + int16(plies)
}

// Decode2 decodes a two-byte cell back into a Score. For numerised
// perpetual cells, use DecodeNumerisedPerpetual to also recover the ply
// count.
func Decode2(v int16) Score {
	switch {
	case v == twoByteDraw:
		return Draw()
	case v == twoByteIllegal:
		return Illegal()
	case v == twoByteUnset:
		return Unset()
	case v == twoByteMissing:
		return Missing()
	case v == twoByteWinning:
		return Winning()
	case v == twoByteUnknown:
		return Unknown()
	case v >= perpetualCheckedBase && v < perpetualCheckedBase+perpetualBandWidth:
		return PerpetualChecked()
	case v >= perpetualEvasionBase && v < perpetualEvasionBase+perpetualBandWidth:
		return PerpetualEvasion()
	case v >= perpetualCheckedEvasionBase && v < perpetualCheckedEvasionBase+perpetualBandWidth:
		return PerpetualCheckedEvasion()
	default:
		return Dtm(v)
	}
}

// DecodeNumerisedPerpetual additionally recovers the Phase F ply count for
// a numerised perpetual cell; ok is false for any other cell value.
func DecodeNumerisedPerpetual(v int16) (k Kind, plies int, ok bool) {
	switch {
	case v >= perpetualCheckedBase && v < perpetualCheckedBase+perpetualBandWidth:
		return KindPerpetualChecked, int(v - perpetualCheckedBase), true
	case v >= perpetualEvasionBase && v < perpetualEvasionBase+perpetualBandWidth:
		return KindPerpetualEvasion, int(v - perpetualEvasionBase), true
	case v >= perpetualCheckedEvasionBase && v < perpetualCheckedEvasionBase+perpetualBandWidth:
		return KindPerpetualCheckedEvasion, int(v - perpetualCheckedEvasionBase), true
	}
	return 0, 0, false
}

// NeedsTwoBytes reports whether s cannot be represented in one byte,
// i.e. whether a table containing it must use the two-byte cell format.
func NeedsTwoBytes(s Score) bool {
	_, ok := Encode1(s)
	return !ok
}
