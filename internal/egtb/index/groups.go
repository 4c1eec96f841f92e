package index

import (
	"fmt"

	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// group is one ordered contribution to the mixed-radix row index: either
// the joint king-pair group (IsKK) or a same-kind, same-side piece group
// ranked combinadically over its legal zone.
type group struct {
	IsKK  bool
	Side  xqboard.Color
	Kind  xqboard.Kind
	Count int
	Zone  []xqboard.Square
	Card  int64
}

// kkCard is the joint king-pair cardinality: both kings range freely and
// independently over their own 9-square palace (facing pairs are not
// excluded: Decode returns such boards as they are, and the generator's
// Init stores them Illegal because InCheck treats facing kings as check,
// spec.md §4.1).
const kkCard = 81

// buildGroups decomposes sig into its ordered piece groups, first half
// (canonically White) before second half (canonically Black), letters in
// MaterialSignature's canonical k,a,e,r,c,h,p order within each half.
func buildGroups(sig material.Signature) ([]group, error) {
	first, second, err := sig.Halves()
	if err != nil {
		return nil, err
	}
	fc, err := first.Counts()
	if err != nil {
		return nil, err
	}
	sc, err := second.Counts()
	if err != nil {
		return nil, err
	}

	groups := []group{{
		IsKK: true,
		Zone: nil,
		Card: kkCard,
	}}
	groups = append(groups, sideGroups(xqboard.White, fc)...)
	groups = append(groups, sideGroups(xqboard.Black, sc)...)
	return groups, nil
}

var nonKingOrder = []xqboard.Kind{
	xqboard.Advisor, xqboard.Elephant, xqboard.Rook,
	xqboard.Cannon, xqboard.Horse, xqboard.Pawn,
}

func sideGroups(side xqboard.Color, counts material.Counts) []group {
	var out []group
	for _, k := range nonKingOrder {
		n := counts[k]
		if n == 0 {
			continue
		}
		zone := ZoneFor(k, side)
		out = append(out, group{
			Side:  side,
			Kind:  k,
			Count: n,
			Zone:  zone,
			Card:  nCr(len(zone), n),
		})
	}
	return out
}

func groupsSize(groups []group) int64 {
	size := int64(1)
	for _, g := range groups {
		size *= g.Card
	}
	return size
}

func (g group) String() string {
	if g.IsKK {
		return "KK"
	}
	return fmt.Sprintf("%s%c", g.Side, g.Kind.Letter())
}
