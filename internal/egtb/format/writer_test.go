package format_test

import (
	"path/filepath"
	"testing"

	"github.com/nguyenpham/xqegtb/internal/egtb/format"
	"github.com/nguyenpham/xqegtb/internal/egtb/index"
	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/egtb/table"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

func sampleCells(n int64) []score.Score {
	cells := make([]score.Score, n)
	for i := range cells {
		switch i % 5 {
		case 0:
			cells[i] = score.Illegal()
		case 1:
			cells[i] = score.Draw()
		case 2: // wins take an odd ply count, as every generated win does
			cells[i] = score.Dtm(int16(1 + 2*(i%20)))
		case 3: // losses take an even ply count
			cells[i] = score.Dtm(int16(-2 * (1 + i%20)))
		default:
			cells[i] = score.Winning()
		}
	}
	return cells
}

func writeAndReopen(t *testing.T, compressed, twoBytes bool) {
	t.Helper()
	sig := material.Signature("krk")
	codec, err := index.NewCodec(sig)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	cells := sampleCells(codec.Size())

	dir := t.TempDir()
	path := filepath.Join(dir, "krkw.ztb")
	opts := format.WriteOptions{Compressed: compressed, TwoBytes: twoBytes, Name: string(sig)}
	buf := format.SideBuffer{Cells: cells, Plies: nil}
	if err := format.WriteTable(path, xqboard.White, buf, opts); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	tf, err := table.Open(sig, map[format.Side]string{format.SideWhite: path}, codec, table.Tiny)
	if err != nil {
		t.Fatalf("table.Open: %v", err)
	}
	defer tf.Close()

	if !tf.HasSide(xqboard.White) {
		t.Fatal("expected white side to be present")
	}
	for i, want := range cells {
		got, err := tf.Get(xqboard.White, int64(i))
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("row %d: got %s, want %s", i, got, want)
		}
	}
}

func TestWriteTableRoundTripUncompressedOneByte(t *testing.T) {
	writeAndReopen(t, false, false)
}

func TestWriteTableRoundTripCompressedOneByte(t *testing.T) {
	writeAndReopen(t, true, false)
}

func TestWriteTableRoundTripCompressedTwoByte(t *testing.T) {
	writeAndReopen(t, true, true)
}
