package perpetual

import (
	"testing"

	"github.com/nguyenpham/xqegtb/internal/egtb/generator"
	"github.com/nguyenpham/xqegtb/internal/egtb/index"
	"github.com/nguyenpham/xqegtb/internal/egtb/material"
)

func mustCodec(t *testing.T, sig material.Signature) *index.Codec {
	t.Helper()
	c, err := index.NewCodec(sig)
	if err != nil {
		t.Fatalf("NewCodec(%s): %v", sig, err)
	}
	return c
}

func TestNewSolverInitializesPliesUnset(t *testing.T) {
	codec := mustCodec(t, material.Signature("kk"))
	ctx := generator.NewContext(material.Signature("kk"), codec, nil, 1)

	s := New(ctx)
	for _, side := range sides {
		for row := int64(0); row < ctx.Size(); row++ {
			if s.plies[side][row] != -1 {
				t.Fatalf("side %s row %d: plies = %d, want -1", side, row, s.plies[side][row])
			}
			if s.mark[side][row] != (bits{}) {
				t.Fatalf("side %s row %d: mark = %+v, want zero value", side, row, s.mark[side][row])
			}
		}
	}
}

// Bare kings never generate a capture, check, or mate (the palaces are
// too far apart for a king to threaten the other directly other than by
// the flying-general rule, which only ever forbids a position rather
// than producing a legal move): the solver fixed point leaves every row
// Draw, so the perpetual solver has nothing to classify and Run must be
// a safe no-op over it.
func TestRunIsNoOpOnAnAlreadyDrawnSignature(t *testing.T) {
	sig := material.Signature("kk")
	codec := mustCodec(t, sig)
	ctx := generator.NewContext(sig, codec, nil, 1)

	ctx.Init()
	if err := ctx.RunForward(); err != nil {
		t.Fatalf("RunForward: %v", err)
	}
	ctx.FinalizeDraws()

	solver := New(ctx)
	result := solver.Run()

	for _, side := range sides {
		for row := int64(0); row < ctx.Size(); row++ {
			if result.Plies[side][row] != -1 {
				t.Fatalf("side %s row %d: Plies = %d, want -1 (nothing should be tagged)", side, row, result.Plies[side][row])
			}
		}
	}
}
