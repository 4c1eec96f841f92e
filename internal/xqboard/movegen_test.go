package xqboard

import "testing"

func hasTarget(targets []Square, want Square) bool {
	for _, t := range targets {
		if t == want {
			return true
		}
	}
	return false
}

// TestHorseBlockedByLeg checks the horse's "hobbling leg" rule: an
// adjacent piece orthogonal to the jump direction blocks that jump.
func TestHorseBlockedByLeg(t *testing.T) {
	p := NewEmpty()
	from := NewSquare(4, 4)
	p.Put(from, NewPiece(Horse, White))

	unblocked := p.pseudoTargets(from)
	if !hasTarget(unblocked, NewSquare(5, 6)) {
		t.Fatal("horse should reach (5,6) with no blockers")
	}

	// Block the leg one rank above the horse (blocks both (3,6) and
	// (5,6), the two jumps sharing that leg square).
	p.Put(NewSquare(4, 5), NewPiece(Pawn, White))
	blocked := p.pseudoTargets(from)
	if hasTarget(blocked, NewSquare(5, 6)) {
		t.Fatal("horse jump over (4,5) should be blocked by the piece there")
	}
	if hasTarget(blocked, NewSquare(3, 6)) {
		t.Fatal("horse jump over (4,5) should also block the mirrored jump")
	}
}

// TestRookSlidesThroughEmptyStopsAtFirstPiece checks the rook can move
// to any empty square up to and including a capture of the first
// enemy piece encountered, but no further, and not onto a friendly
// piece.
func TestRookSlidesThroughEmptyStopsAtFirstPiece(t *testing.T) {
	p := NewEmpty()
	from := NewSquare(0, 0)
	p.Put(from, NewPiece(Rook, White))
	p.Put(NewSquare(0, 5), NewPiece(Horse, Black))
	p.Put(NewSquare(3, 0), NewPiece(Advisor, White))

	targets := p.pseudoTargets(from)
	for r := 1; r <= 5; r++ {
		if !hasTarget(targets, NewSquare(0, r)) {
			t.Fatalf("rook should reach (0,%d)", r)
		}
	}
	if hasTarget(targets, NewSquare(0, 6)) {
		t.Fatal("rook should not see past the captured piece at (0,5)")
	}
	if !hasTarget(targets, NewSquare(1, 0)) || !hasTarget(targets, NewSquare(2, 0)) {
		t.Fatal("rook should still reach the empty squares short of its own piece at (3,0)")
	}
	if hasTarget(targets, NewSquare(3, 0)) {
		t.Fatal("rook cannot capture its own piece")
	}
	if hasTarget(targets, NewSquare(4, 0)) {
		t.Fatal("rook should not see past its own blocking piece at (3,0)")
	}
}

// TestCannonNeedsExactlyOneScreenToCapture checks the cannon's distinct
// capture rule: it must hop exactly one piece (the "screen") to capture,
// and cannot capture with zero or two pieces in between.
func TestCannonNeedsExactlyOneScreenToCapture(t *testing.T) {
	p := NewEmpty()
	from := NewSquare(0, 0)
	p.Put(from, NewPiece(Cannon, White))
	p.Put(NewSquare(0, 9), NewPiece(King, Black))

	// No screen: cannon cannot capture, but can slide to every empty
	// square on the file.
	targets := p.pseudoTargets(from)
	if hasTarget(targets, NewSquare(0, 9)) {
		t.Fatal("cannon without a screen should not capture")
	}
	for r := 1; r <= 8; r++ {
		if !hasTarget(targets, NewSquare(0, r)) {
			t.Fatalf("cannon should slide through empty (0,%d)", r)
		}
	}

	// One screen: now it can capture over it.
	p.Put(NewSquare(0, 5), NewPiece(Elephant, White))
	targets = p.pseudoTargets(from)
	if !hasTarget(targets, NewSquare(0, 9)) {
		t.Fatal("cannon with exactly one screen should capture past it")
	}
	if hasTarget(targets, NewSquare(0, 5)) {
		t.Fatal("cannon cannot land on its own screen")
	}

	// Two pieces in the way: capture no longer available.
	p.Put(NewSquare(0, 7), NewPiece(Advisor, Black))
	targets = p.pseudoTargets(from)
	if hasTarget(targets, NewSquare(0, 9)) {
		t.Fatal("cannon with two pieces between it and the target should not capture")
	}
}

// TestKingConfinedToPalace checks the king never receives a pseudo-target
// outside its own 3x3 palace.
func TestKingConfinedToPalace(t *testing.T) {
	p := NewEmpty()
	corner := NewSquare(3, 0)
	p.Put(corner, NewPiece(King, White))
	for _, to := range p.pseudoTargets(corner) {
		if !InPalace(to, White) {
			t.Fatalf("king target %s escapes the white palace", to)
		}
	}
}

// TestPawnCannotMoveBackward checks a pawn that has not crossed the
// river only has a single forward target and no sideways moves.
func TestPawnCannotMoveBackward(t *testing.T) {
	p := NewEmpty()
	sq := NewSquare(0, 3)
	p.Put(sq, NewPiece(Pawn, White))
	targets := p.pseudoTargets(sq)
	if len(targets) != 1 || targets[0] != NewSquare(0, 4) {
		t.Fatalf("pre-river pawn targets = %v, want only [(0,4)]", targets)
	}
}

// TestPawnGainsSidewaysMovesAfterRiver checks a pawn that has crossed
// the river may additionally step sideways.
func TestPawnGainsSidewaysMovesAfterRiver(t *testing.T) {
	p := NewEmpty()
	sq := NewSquare(4, 5)
	p.Put(sq, NewPiece(Pawn, White))
	targets := p.pseudoTargets(sq)
	want := map[Square]bool{NewSquare(4, 6): true, NewSquare(3, 5): true, NewSquare(5, 5): true}
	if len(targets) != len(want) {
		t.Fatalf("post-river pawn targets = %v, want 3 squares", targets)
	}
	for _, to := range targets {
		if !want[to] {
			t.Fatalf("unexpected post-river pawn target %s", to)
		}
	}
}

// TestFlyingGeneralIsCheck checks the kings-facing exposure is treated
// as check regardless of ordinary attack patterns.
func TestFlyingGeneralIsCheck(t *testing.T) {
	p := NewEmpty()
	p.Put(NewSquare(4, 0), NewPiece(King, White))
	p.Put(NewSquare(4, 9), NewPiece(King, Black))
	if !p.InCheck(White) || !p.InCheck(Black) {
		t.Fatal("kings facing on an open file should be in check for both sides")
	}
}

// TestGenerateMovesExcludesSelfCheckViaFlyingGeneral checks a pinned-equivalent move (one
// that would expose the mover's own king via flying general) is excluded
// from legal moves even though it is otherwise a normal rook slide.
func TestGenerateMovesExcludesSelfCheckViaFlyingGeneral(t *testing.T) {
	p := NewEmpty()
	p.Put(NewSquare(4, 0), NewPiece(King, White))
	p.Put(NewSquare(4, 9), NewPiece(King, Black))
	p.Put(NewSquare(4, 4), NewPiece(Rook, White))
	p.SetSideToMove(White)

	for _, m := range p.GenerateMoves(White) {
		if m.From == NewSquare(4, 4) && m.To.File() == 4 {
			continue
		}
		if m.From == NewSquare(4, 4) {
			t.Fatalf("moving the rook off the e-file screen must be illegal (flying general), got %s", m)
		}
	}
}
