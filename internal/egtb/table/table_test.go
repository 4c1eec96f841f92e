package table_test

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
		switch i % 4 {
		case 0:
			cells[i] = score.Draw()
		case 1: // wins take an odd ply count, as every generated win does
			cells[i] = score.Dtm(int16(1 + 2*(i%30)))
		case 2: // losses take an even ply count
			cells[i] = score.Dtm(int16(-2 * (1 + i%30)))
		default:
			cells[i] = score.Illegal()
		}
	}
	return cells
}

func writeSide(t *testing.T, dir string, sig material.Signature, side xqboard.Color, sideChar format.Side, cells []score.Score, compressed bool) string {
	t.Helper()
	name := "w"
	if sideChar == format.SideBlack {
		name = "b"
	}
	path := filepath.Join(dir, string(sig)+name+".tbl")
	opts := format.WriteOptions{Compressed: compressed, Name: string(sig)}
	buf := format.SideBuffer{Cells: cells}
	if err := format.WriteTable(path, side, buf, opts); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	return path
}

// TestOpenAllModeMaterializesWholePayload checks table.All reads every
// row correctly once the whole payload is decompressed up front, not
// just the rows a Tiny-mode block cache happens to have touched.
func TestOpenAllModeMaterializesWholePayload(t *testing.T) {
	sig := material.Signature("krk")
	codec, err := index.NewCodec(sig)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	cells := sampleCells(codec.Size())
	dir := t.TempDir()
	path := writeSide(t, dir, sig, xqboard.White, format.SideWhite, cells, true)

	tf, err := table.Open(sig, map[format.Side]string{format.SideWhite: path}, codec, table.All)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tf.Close()

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

// TestOpenSmartModeAgreesWithTiny checks table.Smart (which picks All for
// small payloads) returns the same values Tiny mode does for the same
// file.
func TestOpenSmartModeAgreesWithTiny(t *testing.T) {
	sig := material.Signature("krk")
	codec, err := index.NewCodec(sig)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	cells := sampleCells(codec.Size())
	dir := t.TempDir()
	path := writeSide(t, dir, sig, xqboard.White, format.SideWhite, cells, false)

	tiny, err := table.Open(sig, map[format.Side]string{format.SideWhite: path}, codec, table.Tiny)
	if err != nil {
		t.Fatalf("Open(Tiny): %v", err)
	}
	defer tiny.Close()
	smart, err := table.Open(sig, map[format.Side]string{format.SideWhite: path}, codec, table.Smart)
	if err != nil {
		t.Fatalf("Open(Smart): %v", err)
	}
	defer smart.Close()

	for i := int64(0); i < codec.Size(); i++ {
		a, err := tiny.Get(xqboard.White, i)
		if err != nil {
			t.Fatalf("Tiny.Get(%d): %v", i, err)
		}
		b, err := smart.Get(xqboard.White, i)
		if err != nil {
			t.Fatalf("Smart.Get(%d): %v", i, err)
		}
		if a != b {
			t.Fatalf("row %d: Tiny=%s Smart=%s disagree", i, a, b)
		}
	}
}

// TestGetMissingSideErrors checks Get on a side this TableFile never
// loaded a payload for fails rather than silently returning a zero
// Score.
func TestGetMissingSideErrors(t *testing.T) {
	sig := material.Signature("krk")
	codec, err := index.NewCodec(sig)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	dir := t.TempDir()
	path := writeSide(t, dir, sig, xqboard.White, format.SideWhite, sampleCells(codec.Size()), false)

	tf, err := table.Open(sig, map[format.Side]string{format.SideWhite: path}, codec, table.Tiny)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tf.Close()

	if tf.HasSide(xqboard.Black) {
		t.Fatal("black side was never loaded, HasSide should be false")
	}
	if _, err := tf.Get(xqboard.Black, 0); err == nil {
		t.Fatal("expected error getting a row from a side with no payload")
	}
}

// TestGetOutOfRangeRowErrors checks Get rejects a row index outside
// [0, codec.Size()).
func TestGetOutOfRangeRowErrors(t *testing.T) {
	sig := material.Signature("krk")
	codec, err := index.NewCodec(sig)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	dir := t.TempDir()
	path := writeSide(t, dir, sig, xqboard.White, format.SideWhite, sampleCells(codec.Size()), false)

	tf, err := table.Open(sig, map[format.Side]string{format.SideWhite: path}, codec, table.Tiny)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tf.Close()

	if _, err := tf.Get(xqboard.White, codec.Size()); err == nil {
		t.Fatal("expected error for a row at Size() (out of range)")
	}
	if _, err := tf.Get(xqboard.White, -1); err == nil {
		t.Fatal("expected error for a negative row")
	}
}

// TestMergeCombinesDistinctSidePayloads checks Merge folds a second
// TableFile's side payloads into the first when they come from separate
// physical files (spec.md §4.3's per-signature two-file layout).
func TestMergeCombinesDistinctSidePayloads(t *testing.T) {
	sig := material.Signature("krk")
	codec, err := index.NewCodec(sig)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	whiteCells := sampleCells(codec.Size())
	blackCells := sampleCells(codec.Size())
	dir := t.TempDir()
	wPath := writeSide(t, dir, sig, xqboard.White, format.SideWhite, whiteCells, false)
	bPath := writeSide(t, dir, sig, xqboard.Black, format.SideBlack, blackCells, false)

	white, err := table.Open(sig, map[format.Side]string{format.SideWhite: wPath}, codec, table.Tiny)
	if err != nil {
		t.Fatalf("Open white: %v", err)
	}
	black, err := table.Open(sig, map[format.Side]string{format.SideBlack: bPath}, codec, table.Tiny)
	if err != nil {
		t.Fatalf("Open black: %v", err)
	}

	if err := white.Merge(black); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !white.HasSide(xqboard.White) || !white.HasSide(xqboard.Black) {
		t.Fatal("merged TableFile should have both sides present")
	}
	got, err := white.Get(xqboard.Black, 0)
	if err != nil {
		t.Fatalf("Get black row 0 after merge: %v", err)
	}
	if got != blackCells[0] {
		t.Fatalf("merged black row 0 = %s, want %s", got, blackCells[0])
	}
}

func TestMergeRejectsMismatchedSignatures(t *testing.T) {
	sigA := material.Signature("krk")
	sigB := material.Signature("kak")
	codecA, err := index.NewCodec(sigA)
	if err != nil {
		t.Fatalf("NewCodec A: %v", err)
	}
	codecB, err := index.NewCodec(sigB)
	if err != nil {
		t.Fatalf("NewCodec B: %v", err)
	}
	dir := t.TempDir()
	pathA := writeSide(t, dir, sigA, xqboard.White, format.SideWhite, sampleCells(codecA.Size()), false)
	pathB := writeSide(t, dir, sigB, xqboard.White, format.SideWhite, sampleCells(codecB.Size()), false)

	a, err := table.Open(sigA, map[format.Side]string{format.SideWhite: pathA}, codecA, table.Tiny)
	if err != nil {
		t.Fatalf("Open A: %v", err)
	}
	b, err := table.Open(sigB, map[format.Side]string{format.SideWhite: pathB}, codecB, table.Tiny)
	if err != nil {
		t.Fatalf("Open B: %v", err)
	}

	if err := a.Merge(b); err == nil {
		t.Fatal("expected error merging TableFiles with different signatures")
	}
}
