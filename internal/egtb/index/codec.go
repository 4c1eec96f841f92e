package index

import (
	"fmt"
	"sort"

	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// Codec is IndexCodec for one material signature (spec.md §4.1): it maps
// a legal board to a dense row index and back. Build it once per
// signature and reuse it — Database and Generator each hold one Codec
// per loaded TableFile.
type Codec struct {
	sig    material.Signature
	groups []group
	size   int64

	whiteKingZone []xqboard.Square
	blackKingZone []xqboard.Square
}

// NewCodec builds the Codec for sig.
func NewCodec(sig material.Signature) (*Codec, error) {
	groups, err := buildGroups(sig)
	if err != nil {
		return nil, err
	}
	return &Codec{
		sig:           sig,
		groups:        groups,
		size:          groupsSize(groups),
		whiteKingZone: ZoneFor(xqboard.King, xqboard.White),
		blackKingZone: ZoneFor(xqboard.King, xqboard.Black),
	}, nil
}

// Size returns the number of rows in this signature's table, the product
// of every group's cardinality (spec.md §4.1).
func (c *Codec) Size() int64 { return c.size }

// placement is a transformed view of a board: for each (kind, color),
// the squares occupied by pieces of that kind and color.
type placement map[xqboard.Kind]map[xqboard.Color][]xqboard.Square

func (c *Codec) extractPlacement(pos *xqboard.Position, mirrorFile, flipColor bool) placement {
	pl := placement{}
	for sq := xqboard.Square(0); int(sq) < xqboard.NumSquares; sq++ {
		pc := pos.At(sq)
		if pc.IsEmpty() {
			continue
		}
		nsq, ncol := sq, pc.Color()
		if flipColor {
			nsq = nsq.FlipRank()
			ncol = ncol.Other()
		}
		if mirrorFile {
			nsq = nsq.Mirror()
		}
		if pl[pc.Kind()] == nil {
			pl[pc.Kind()] = map[xqboard.Color][]xqboard.Square{}
		}
		pl[pc.Kind()][ncol] = append(pl[pc.Kind()][ncol], nsq)
	}
	return pl
}

func (c *Codec) keyFor(pl placement) (int64, error) {
	var key int64
	for _, g := range c.groups {
		var sub int64
		if g.IsKK {
			wSqs := pl[xqboard.King][xqboard.White]
			bSqs := pl[xqboard.King][xqboard.Black]
			if len(wSqs) != 1 || len(bSqs) != 1 {
				return 0, fmt.Errorf("index: expected exactly one king per side")
			}
			wi := indexOf(c.whiteKingZone, wSqs[0])
			bi := indexOf(c.blackKingZone, bSqs[0])
			if wi < 0 || bi < 0 {
				return 0, fmt.Errorf("index: king outside its palace zone")
			}
			sub = int64(wi)*9 + int64(bi)
		} else {
			sqs := pl[g.Kind][g.Side]
			if len(sqs) != g.Count {
				return 0, fmt.Errorf("index: expected %d %s, found %d", g.Count, g, len(sqs))
			}
			idx := make([]int, len(sqs))
			for i, sq := range sqs {
				zi := indexOf(g.Zone, sq)
				if zi < 0 {
					return 0, fmt.Errorf("index: %s outside its legal zone", g)
				}
				idx[i] = zi
			}
			sort.Ints(idx)
			for i := 1; i < len(idx); i++ {
				if idx[i] == idx[i-1] {
					return 0, fmt.Errorf("index: duplicate square within %s group", g)
				}
			}
			sub = rankCombination(idx)
		}
		key = key*g.Card + sub
	}
	return key, nil
}

// Encode maps pos to its canonical row key and reports whether reaching
// that canonical form required swapping the two sides' colors
// (spec.md §4.1's flipSide), which the caller (Database) must fold into
// the returned score and the side-to-move it hands to the recursive
// one-ply probe.
func (c *Codec) Encode(pos *xqboard.Position) (key int64, flipSide bool, err error) {
	type candidate struct{ mirror, flip bool }
	candidates := []candidate{{false, false}, {true, false}}
	if !c.sig.HasPawns() {
		candidates = append(candidates, candidate{false, true}, candidate{true, true})
	}

	best := int64(-1)
	bestFlip := false
	var firstErr error
	for _, cand := range candidates {
		pl := c.extractPlacement(pos, cand.mirror, cand.flip)
		k, kerr := c.keyFor(pl)
		if kerr != nil {
			if firstErr == nil {
				firstErr = kerr
			}
			continue
		}
		if best < 0 || k < best {
			best = k
			bestFlip = cand.flip
		}
	}
	if best < 0 {
		return 0, false, fmt.Errorf("index: position does not match signature %s: %w", c.sig, firstErr)
	}
	return best, bestFlip, nil
}

// Decode reconstructs a representative board for key, with the
// signature's first-half pieces colored firstSide and second-half
// pieces colored firstSide.Other(). The representative is canonical but
// arbitrary: repeated Decode calls with the same arguments return the
// same board, which is all Generator and Probe require.
func (c *Codec) Decode(key int64, firstSide xqboard.Color) (*xqboard.Position, error) {
	if key < 0 || key >= c.size {
		return nil, fmt.Errorf("index: key %d out of range [0, %d)", key, c.size)
	}
	subs := make([]int64, len(c.groups))
	rem := key
	for i := len(c.groups) - 1; i >= 0; i-- {
		card := c.groups[i].Card
		subs[i] = rem % card
		rem /= card
	}

	pos := xqboard.NewEmpty()
	for i, g := range c.groups {
		sub := subs[i]
		if g.IsKK {
			wi := int(sub / 9)
			bi := int(sub % 9)
			pos.Put(c.whiteKingZone[wi], xqboard.NewPiece(xqboard.King, firstSide))
			pos.Put(c.blackKingZone[bi], xqboard.NewPiece(xqboard.King, firstSide.Other()))
			continue
		}
		side := firstSide
		if g.Side == xqboard.Black {
			side = firstSide.Other()
		}
		idx := unrankCombination(sub, g.Count, len(g.Zone))
		for _, zi := range idx {
			sq := g.Zone[zi]
			if !pos.At(sq).IsEmpty() {
				return nil, fmt.Errorf("index: decode collision at %s for key %d", sq, key)
			}
			pos.Put(sq, xqboard.NewPiece(g.Kind, side))
		}
	}
	return pos, nil
}
