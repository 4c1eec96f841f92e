package index

import (
	"testing"

	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

func mustCodec(t *testing.T, sig material.Signature) *Codec {
	t.Helper()
	c, err := NewCodec(sig)
	if err != nil {
		t.Fatalf("NewCodec(%s): %v", sig, err)
	}
	return c
}

func TestCodecRoundTrip(t *testing.T) {
	sig := material.Signature("krk") // rook+king vs bare king
	c := mustCodec(t, sig)

	pos := xqboard.NewEmpty()
	pos.Put(xqboard.NewSquare(4, 0), xqboard.NewPiece(xqboard.King, xqboard.White))
	pos.Put(xqboard.NewSquare(4, 9), xqboard.NewPiece(xqboard.King, xqboard.Black))
	pos.Put(xqboard.NewSquare(0, 5), xqboard.NewPiece(xqboard.Rook, xqboard.White))

	key, flip, err := c.Encode(pos)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if key < 0 || key >= c.Size() {
		t.Fatalf("key %d out of range [0, %d)", key, c.Size())
	}

	firstSide := xqboard.White
	if flip {
		firstSide = xqboard.Black
	}
	decoded, err := c.Decode(key, firstSide)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	key2, _, err := c.Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode of decoded board: %v", err)
	}
	if key2 != key {
		t.Fatalf("decode/re-encode mismatch: got %d, want %d", key2, key)
	}
}

func TestCodecSizeIsProductOfGroupCards(t *testing.T) {
	c := mustCodec(t, material.Signature("krk"))
	var want int64 = kkCard
	for _, g := range c.groups {
		if !g.IsKK {
			want *= g.Card
		}
	}
	if c.Size() != want {
		t.Fatalf("Size() = %d, want %d", c.Size(), want)
	}
}

func TestCodecEncodesTwoDistinctHorses(t *testing.T) {
	c := mustCodec(t, material.Signature("khhk")) // two horses, one side
	pos := xqboard.NewEmpty()
	pos.Put(xqboard.NewSquare(4, 0), xqboard.NewPiece(xqboard.King, xqboard.White))
	pos.Put(xqboard.NewSquare(4, 9), xqboard.NewPiece(xqboard.King, xqboard.Black))
	pos.Put(xqboard.NewSquare(0, 0), xqboard.NewPiece(xqboard.Horse, xqboard.White))
	pos.Put(xqboard.NewSquare(1, 0), xqboard.NewPiece(xqboard.Horse, xqboard.White))

	if _, _, err := c.Encode(pos); err != nil {
		t.Fatalf("Encode with two distinct horses should succeed: %v", err)
	}
}

func TestCodecDecodeOutOfRangeKey(t *testing.T) {
	c := mustCodec(t, material.Signature("krk"))
	if _, err := c.Decode(c.Size(), xqboard.White); err == nil {
		t.Fatal("expected error decoding out-of-range key")
	}
	if _, err := c.Decode(-1, xqboard.White); err == nil {
		t.Fatal("expected error decoding negative key")
	}
}

func TestKingZonesAreNineSquares(t *testing.T) {
	if n := len(ZoneFor(xqboard.King, xqboard.White)); n != 9 {
		t.Fatalf("white king zone has %d squares, want 9", n)
	}
	if n := len(ZoneFor(xqboard.King, xqboard.Black)); n != 9 {
		t.Fatalf("black king zone has %d squares, want 9", n)
	}
}

func TestAdvisorAndElephantZoneSizes(t *testing.T) {
	if n := len(ZoneFor(xqboard.Advisor, xqboard.White)); n != 5 {
		t.Fatalf("advisor zone has %d squares, want 5", n)
	}
	if n := len(ZoneFor(xqboard.Elephant, xqboard.White)); n != 7 {
		t.Fatalf("elephant zone has %d squares, want 7", n)
	}
}
