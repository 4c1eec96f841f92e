// Package material implements MaterialSignature (spec.md §3): the
// canonical lowercase string that names one endgame and determines which
// TableFile stores a given position.
package material

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// order is the canonical letter order used both for display and for the
// IndexCodec's default group contribution order (spec.md §3: "k, a, e,
// r, c, h, p").
var order = []xqboard.Kind{
	xqboard.King, xqboard.Advisor, xqboard.Elephant,
	xqboard.Rook, xqboard.Cannon, xqboard.Horse, xqboard.Pawn,
}

// Half is one side's piece letters, e.g. "rk" for a lone rook and king.
type Half string

// Signature is a canonical two-half material signature, e.g. "krk" for
// king-and-rook versus bare king.
type Signature string

// Counts is a per-kind piece count for one side.
type Counts [7]int // indexed by xqboard.Kind

// Build canonicalizes a pair of per-side counts into a Signature. Per
// spec.md §3's invariant ("attacker-heavy side is canonicalised as the
// first half"), the side with more total non-king material sorts first;
// ties break by lexicographic half string.
func Build(white, black Counts) (Signature, bool, error) {
	if white[xqboard.King] != 1 || black[xqboard.King] != 1 {
		return "", false, fmt.Errorf("material: exactly one king per side required")
	}
	wh := halfString(white)
	bh := halfString(black)
	wn := nonKingCount(white)
	bn := nonKingCount(black)

	if wn > bn || (wn == bn && wh <= bh) {
		return Signature(wh + bh), false, nil
	}
	return Signature(bh + wh), true, nil
}

func nonKingCount(c Counts) int {
	n := 0
	for _, k := range order {
		if k == xqboard.King {
			continue
		}
		n += c[k]
	}
	return n
}

func halfString(c Counts) string {
	var b strings.Builder
	b.WriteByte('k')
	for _, k := range order {
		if k == xqboard.King {
			continue
		}
		for i := 0; i < c[k]; i++ {
			b.WriteByte(k.Letter())
		}
	}
	return b.String()
}

// Halves splits a signature back into its two per-side letter halves,
// first-half then second-half, split at the second 'k'.
func (s Signature) Halves() (Half, Half, error) {
	str := string(s)
	firstK := strings.IndexByte(str, 'k')
	if firstK != 0 {
		return "", "", fmt.Errorf("material: signature %q must start with k", str)
	}
	secondK := strings.IndexByte(str[1:], 'k')
	if secondK < 0 {
		return "", "", fmt.Errorf("material: signature %q has only one king", str)
	}
	secondK += 1
	return Half(str[:secondK]), Half(str[secondK:]), nil
}

// Counts parses a half's letters into per-kind counts.
func (h Half) Counts() (Counts, error) {
	var c Counts
	for i := 0; i < len(h); i++ {
		k, ok := xqboard.KindFromLetter(h[i])
		if !ok {
			return c, fmt.Errorf("material: unknown piece letter %q", h[i])
		}
		c[k]++
	}
	if c[xqboard.King] != 1 {
		return c, fmt.Errorf("material: half %q must have exactly one king", h)
	}
	return c, nil
}

// Reversed swaps the two halves, e.g. "krk" (halves "kr","k") reverses
// to "kkr" (halves "k","kr"): the same material with the opposite side
// holding the extra piece.
func (s Signature) Reversed() (Signature, error) {
	a, b, err := s.Halves()
	if err != nil {
		return "", err
	}
	return Signature(string(b) + string(a)), nil
}

// HasPawns reports whether either half contains a pawn, which determines
// the codec's folding rule (spec.md §4.1: vertical fold for pawnless
// signatures, horizontal fold for signatures with pawns).
func (s Signature) HasPawns() bool {
	return strings.ContainsRune(string(s), 'p')
}

// String returns the canonical lowercase signature text.
func (s Signature) String() string { return string(s) }

// GroupLetters returns the sorted distinct non-king letters present,
// informational only (used by FileFormat.FolderFor, spec.md §6.5).
func (s Signature) GroupLetters() []byte {
	seen := map[byte]bool{}
	for i := 0; i < len(s); i++ {
		if s[i] != 'k' {
			seen[s[i]] = true
		}
	}
	var letters []byte
	for b := range seen {
		letters = append(letters, b)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return letters
}
