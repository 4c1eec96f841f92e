package xqboard

import "testing"

func TestParseFENStartPositionPieceCounts(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		t.Fatalf("ParseFEN(StartFEN): %v", err)
	}
	if pos.SideToMove() != White {
		t.Fatal("start position should have White to move")
	}
	if len(pos.PieceSquares(White)) != 16 {
		t.Fatalf("White piece count = %d, want 16", len(pos.PieceSquares(White)))
	}
	if len(pos.PieceSquares(Black)) != 16 {
		t.Fatalf("Black piece count = %d, want 16", len(pos.PieceSquares(Black)))
	}
	if pos.KingSquare(White).Rank() != 0 || pos.KingSquare(White).File() != 4 {
		t.Fatalf("White king at %s, want e0", pos.KingSquare(White))
	}
	if pos.KingSquare(Black).Rank() != 9 || pos.KingSquare(Black).File() != 4 {
		t.Fatalf("Black king at %s, want e9", pos.KingSquare(Black))
	}
}

func TestFENRoundTrip(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	again, err := ParseFEN(pos.ToFEN())
	if err != nil {
		t.Fatalf("ParseFEN(ToFEN()): %v", err)
	}
	for sq := Square(0); int(sq) < NumSquares; sq++ {
		if pos.At(sq) != again.At(sq) {
			t.Fatalf("square %s: got %v, want %v", sq, again.At(sq), pos.At(sq))
		}
	}
	if pos.SideToMove() != again.SideToMove() {
		t.Fatal("side to move should survive a FEN round trip")
	}
}

func TestParseFENRejectsTooFewFields(t *testing.T) {
	if _, err := ParseFEN("9/9/9/9/9/9/9/9/9/9"); err == nil {
		t.Fatal("expected error: FEN missing side-to-move field")
	}
}

func TestParseFENRejectsBadSideToMove(t *testing.T) {
	if _, err := ParseFEN("9/9/9/9/9/9/9/9/9/9 x"); err == nil {
		t.Fatal("expected error: invalid side-to-move character")
	}
}
