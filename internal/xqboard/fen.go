package xqboard

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the Xiangqi starting position.
const StartFEN = "rheakaehr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RHEAKAEHR w"

// ParseFEN parses a Xiangqi FEN string (10 ranks separated by '/', rank 9
// — Black's back rank — first, uppercase letters for White, lowercase
// for Black) and returns a Position. Grounded on the teacher's
// board.ParseFEN (internal/board/fen.go), adapted from an 8x8 board with
// castling/en-passant fields to a castling-free 9x10 one; any fields
// past side-to-move are accepted and ignored, matching spec.md's
// "optional en-passant field (ignored except as a don't-trust-table
// flag)".
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return nil, fmt.Errorf("xqboard: invalid FEN: need at least 2 fields, got %d", len(parts))
	}

	pos := NewEmpty()
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SetSideToMove(White)
	case "b":
		pos.SetSideToMove(Black)
	default:
		return nil, fmt.Errorf("xqboard: invalid side to move: %s", parts[1])
	}

	return pos, nil
}

func parsePiecePlacement(pos *Position, placement string) error {
	rows := strings.Split(placement, "/")
	if len(rows) != Ranks {
		return fmt.Errorf("xqboard: invalid piece placement: need %d ranks, got %d", Ranks, len(rows))
	}

	for i, rowStr := range rows {
		rank := Ranks - 1 - i // FEN lists Black's back rank (9) first
		file := 0
		for _, ch := range rowStr {
			if file >= Files {
				return fmt.Errorf("xqboard: too many squares in rank %d", rank)
			}
			if ch >= '1' && ch <= '9' {
				file += int(ch - '0')
				continue
			}
			pc, ok := pieceFromFEN(byte(ch))
			if !ok {
				return fmt.Errorf("xqboard: invalid piece character %q", ch)
			}
			pos.Put(NewSquare(file, rank), pc)
			file++
		}
		if file != Files {
			return fmt.Errorf("xqboard: invalid number of squares in rank %d: got %d", rank, file)
		}
	}
	return nil
}

// pieceFromFEN maps a FEN piece letter (K/A/B/R/C/N/P, upper=White,
// lower=Black; B and N are the conventional Xiangqi FEN letters for
// Elephant/Bishop and Horse/kNight) to a Piece.
func pieceFromFEN(ch byte) (Piece, bool) {
	color := White
	lower := ch
	if ch >= 'a' && ch <= 'z' {
		color = Black
	} else {
		lower = ch - 'A' + 'a'
	}
	var kind Kind
	switch lower {
	case 'k':
		kind = King
	case 'a':
		kind = Advisor
	case 'b', 'e':
		kind = Elephant
	case 'r':
		kind = Rook
	case 'c':
		kind = Cannon
	case 'n', 'h':
		kind = Horse
	case 'p':
		kind = Pawn
	default:
		return Empty, false
	}
	return NewPiece(kind, color), true
}

func fenLetter(k Kind) byte {
	switch k {
	case King:
		return 'k'
	case Advisor:
		return 'a'
	case Elephant:
		return 'b'
	case Rook:
		return 'r'
	case Cannon:
		return 'c'
	case Horse:
		return 'n'
	case Pawn:
		return 'p'
	default:
		return '?'
	}
}

// ToFEN renders p back into FEN form.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for rank := Ranks - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < Files; file++ {
			pc := p.At(NewSquare(file, rank))
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			ch := fenLetter(pc.Kind())
			if pc.Color() == White {
				ch = ch - 'a' + 'A'
			}
			sb.WriteByte(ch)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if p.SideToMove() == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	return sb.String()
}
