package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/nguyenpham/xqegtb/internal/egtb/database"
	"github.com/nguyenpham/xqegtb/internal/egtb/format"
	"github.com/nguyenpham/xqegtb/internal/egtb/index"
	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/egtb/perpetual"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// Method selects which DTM solver Build runs (spec.md §4.6.2 vs §4.6.3).
type Method int

const (
	// MethodBackward is the default, preferred method (retrograde
	// analysis): faster, but only applicable once sub-endgame tables for
	// every capture target exist.
	MethodBackward Method = iota
	// MethodForward is the fallback for signatures with no captures at
	// all, or used when a caller explicitly asks for it.
	MethodForward
)

// BuildOptions controls one signature's end-to-end generation run
// (spec.md §3's full lifecycle: Init, solve, perpetual classification,
// finalize, verify, optional compression optimisation, downgrade,
// write, checkpoint cleanup).
type BuildOptions struct {
	Method          Method
	OutDir          string // root directory tables are written under
	CheckpointEvery int    // plies between checkpoints; 0 disables checkpointing
	Compressed      bool
	Copyright       string
}

// Build runs one material signature's full generation pipeline and
// writes its two per-side table files to OutDir/FolderFor(sig) (spec.md
// §3, §6.5). sub must already contain completed tables for every
// smaller-material signature this signature's captures can reach.
func Build(sig material.Signature, sub *database.Database, opts BuildOptions, workers int) error {
	codec, err := index.NewCodec(sig)
	if err != nil {
		return fmt.Errorf("generator: building codec for %s: %w", sig, err)
	}
	ctx := NewContext(sig, codec, sub, workers)
	ctx.Verbose = true

	dir := filepath.Join(opts.OutDir, format.FolderFor(sig))
	if opts.CheckpointEvery > 0 {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("generator: creating %s: %w", dir, err)
		}
		if ply, ok, err := ctx.Resume(dir); err != nil {
			return err
		} else if ok {
			ctx.logf("%s: resumed from checkpoint at ply %d", sig, ply)
		} else {
			ctx.Init()
		}
	} else {
		ctx.Init()
	}

	ctx.logf("%s: %s rows per side", sig, humanize.Comma(ctx.Size()))

	if opts.CheckpointEvery > 0 {
		ctx.SetPlyHook(func(ply int) error {
			if ply%opts.CheckpointEvery != 0 {
				return nil
			}
			return ctx.Checkpoint(dir, ply)
		})
	}

	switch opts.Method {
	case MethodBackward:
		err = ctx.RunBackward()
	default:
		err = ctx.RunForward()
	}
	if err != nil {
		return fmt.Errorf("generator: solving %s: %w", sig, err)
	}

	solver := perpetual.New(ctx)
	result := solver.Run()

	ctx.FinalizeDraws()

	if err := ctx.Verify(); err != nil {
		return fmt.Errorf("generator: verifying %s: %w", sig, err)
	}

	if opts.Compressed {
		ctx.OptimizeForCompression()
	}

	twoBytes := !ctx.CanUseOneByte()
	if err := writeTables(ctx, result, dir, opts, twoBytes); err != nil {
		return err
	}

	if opts.CheckpointEvery > 0 {
		RemoveCheckpoint(dir)
	}
	return nil
}

func writeTables(ctx *Context, result perpetual.Result, dir string, opts BuildOptions, twoBytes bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("generator: creating %s: %w", dir, err)
	}
	ext := format.ExtDTMRaw
	if opts.Compressed {
		ext = format.ExtDTMCompressed
	}

	for _, side := range [2]xqboard.Color{xqboard.White, xqboard.Black} {
		sideChar := format.SideWhite
		if side == xqboard.Black {
			sideChar = format.SideBlack
		}
		path := filepath.Join(dir, format.FileName(ctx.Sig, sideChar, ext))
		buf := format.SideBuffer{Cells: ctx.cell[side], Plies: result.Plies[side]}
		wopts := format.WriteOptions{
			Compressed: opts.Compressed,
			TwoBytes:   twoBytes,
			Name:       string(ctx.Sig),
			Copyright:  opts.Copyright,
		}
		if err := format.WriteTable(path, side, buf, wopts); err != nil {
			return fmt.Errorf("generator: writing %s: %w", path, err)
		}
		cellBytes := uint64(1)
		if twoBytes {
			cellBytes = 2
		}
		ctx.logf("%s: wrote %s (%s)", ctx.Sig, path, humanize.Bytes(uint64(len(buf.Cells))*cellBytes))
	}
	return nil
}
