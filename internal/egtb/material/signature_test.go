package material

import (
	"testing"

	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

func TestBuildCanonicalizesAttackerFirst(t *testing.T) {
	// White carries a rook, Black has only a king: the attacker-heavy
	// side (spec.md §3 "attacker counts obey the generator's ordering
	// rules") must sort first regardless of which real-board side it is.
	var white, black Counts
	white[xqboard.King] = 1
	white[xqboard.Rook] = 1
	black[xqboard.King] = 1

	sig, swapped, err := Build(white, black)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if swapped {
		t.Fatal("white is already the heavier side, should not report swapped")
	}
	if sig != "krk" {
		t.Fatalf("Signature = %q, want %q", sig, "krk")
	}
}

func TestBuildSwapsWhenBlackIsHeavier(t *testing.T) {
	var white, black Counts
	white[xqboard.King] = 1
	black[xqboard.King] = 1
	black[xqboard.Rook] = 1

	sig, swapped, err := Build(white, black)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !swapped {
		t.Fatal("black is the heavier side, should report swapped")
	}
	if sig != "krk" {
		t.Fatalf("Signature = %q, want %q", sig, "krk")
	}
}

func TestBuildRejectsMissingOrDuplicateKings(t *testing.T) {
	var white, black Counts
	black[xqboard.King] = 1
	if _, _, err := Build(white, black); err == nil {
		t.Fatal("expected error when white has no king")
	}

	white[xqboard.King] = 2
	if _, _, err := Build(white, black); err == nil {
		t.Fatal("expected error when white has two kings")
	}
}

func TestHalvesSplitsAtSecondK(t *testing.T) {
	first, second, err := Signature("krk").Halves()
	if err != nil {
		t.Fatalf("Halves: %v", err)
	}
	if first != "kr" || second != "k" {
		t.Fatalf("Halves = (%q, %q), want (\"kr\", \"k\")", first, second)
	}
}

func TestHalvesRejectsSignatureNotStartingWithKing(t *testing.T) {
	if _, _, err := Signature("rkk").Halves(); err == nil {
		t.Fatal("expected error: signature must start with k")
	}
}

func TestReversedSwapsHalves(t *testing.T) {
	rev, err := Signature("krk").Reversed()
	if err != nil {
		t.Fatalf("Reversed: %v", err)
	}
	if rev != "kkr" {
		t.Fatalf("Reversed = %q, want %q", rev, "kkr")
	}
}

func TestHasPawns(t *testing.T) {
	if Signature("krk").HasPawns() {
		t.Fatal("krk has no pawn letter")
	}
	if !Signature("kpk").HasPawns() {
		t.Fatal("kpk has a pawn letter")
	}
}

func TestGroupLettersSortedAndDistinct(t *testing.T) {
	letters := Signature("khhk").GroupLetters()
	if len(letters) != 1 || letters[0] != 'h' {
		t.Fatalf("GroupLetters(khhk) = %q, want [h]", letters)
	}
}

func TestCountsRoundTripsHalfString(t *testing.T) {
	h := Half("kr")
	c, err := h.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if c[xqboard.King] != 1 || c[xqboard.Rook] != 1 {
		t.Fatalf("Counts(%q) = %+v, want king=1 rook=1", h, c)
	}
}

func TestCountsRejectsMissingKing(t *testing.T) {
	if _, err := Half("r").Counts(); err == nil {
		t.Fatal("expected error: half with no king")
	}
}
