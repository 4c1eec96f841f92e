// Package table implements TableFile (spec.md §4.3): in-memory or
// on-demand access to one endgame's two per-side-to-move payloads,
// including block decompression and the Tiny/All/Smart access modes.
package table

import (
	"fmt"
	"os"
	"sync"

	"github.com/nguyenpham/xqegtb/internal/egtb/compress"
	"github.com/nguyenpham/xqegtb/internal/egtb/format"
	"github.com/nguyenpham/xqegtb/internal/egtb/index"
	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// Mode is the TableFile access strategy (spec.md §4.3).
type Mode int

const (
	// Tiny keeps only header + block table in RAM, reading and
	// decompressing the enclosing block again on every query.
	Tiny Mode = iota
	// All decompresses the whole payload into RAM at load time.
	All
	// Smart picks All if the payload is under smartThreshold, else Tiny.
	Smart
)

// smartThreshold is the size cutoff Smart mode uses, spec.md §4.3 "All
// if size < 10 MiB, else Tiny".
const smartThreshold = 10 * 1024 * 1024

type sideData struct {
	present     bool
	header      format.Header
	cellBytes   int
	rows        int64 // total cells this payload covers, for the last block's true size
	payloadOff  int64
	blockTable  []compress.BlockOffsetEntry
	file        *os.File
	raw         []byte // non-nil in All mode
	mu          sync.Mutex
}

// TableFile is one material signature's pair of per-side-to-move
// payloads.
type TableFile struct {
	Signature material.Signature
	codec     *index.Codec
	mode      Mode
	size      int64

	sides [2]*sideData // indexed by xqboard.Color
}

// Open loads a TableFile for sig from the given per-side file paths
// (either or both may be present, per spec.md §4.3's "a missing
// side-file is treated as 'this side lives in the partner file'").
func Open(sig material.Signature, paths map[format.Side]string, codec *index.Codec, mode Mode) (*TableFile, error) {
	tf := &TableFile{Signature: sig, codec: codec, mode: mode, size: codec.Size()}
	for sideChar, path := range paths {
		c, err := sideFromChar(sideChar)
		if err != nil {
			return nil, err
		}
		sd, err := loadSide(path, codec.Size())
		if err != nil {
			return nil, fmt.Errorf("table: loading %s: %w", path, err)
		}
		if mode == Smart {
			if sd.payloadLen() < smartThreshold {
				if err := sd.materialize(); err != nil {
					return nil, err
				}
			}
		} else if mode == All {
			if err := sd.materialize(); err != nil {
				return nil, err
			}
		}
		tf.sides[c] = sd
	}
	return tf, nil
}

func sideFromChar(s format.Side) (xqboard.Color, error) {
	switch s {
	case format.SideWhite:
		return xqboard.White, nil
	case format.SideBlack:
		return xqboard.Black, nil
	}
	return 0, fmt.Errorf("table: unknown side char %q", s)
}

func (sd *sideData) payloadLen() int64 {
	if len(sd.blockTable) == 0 {
		fi, err := sd.file.Stat()
		if err != nil {
			return 0
		}
		return fi.Size() - sd.payloadOff
	}
	last := sd.blockTable[len(sd.blockTable)-1]
	return int64(last.Offset)
}

func loadSide(path string, rows int64) (*sideData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	hbuf := make([]byte, format.HeaderSize)
	if _, err := f.ReadAt(hbuf, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h, err := format.DecodeHeader(hbuf)
	if err != nil {
		f.Close()
		return nil, err
	}

	cellBytes := 1
	if h.Properties&format.PropTwoBytes != 0 {
		cellBytes = 2
	}

	sd := &sideData{present: true, header: h, cellBytes: cellBytes, rows: rows, file: f}

	if h.Properties&format.PropCompressed == 0 {
		sd.payloadOff = format.HeaderSize
		return sd, nil
	}

	large := h.Properties&format.PropLargeBlockTableWhite != 0 || h.Properties&format.PropLargeBlockTableBlack != 0
	entrySize := format.BlockTableEntrySize(large)
	numBlocks := compress.BlockCountForRows(int(rows), cellBytes)
	tableBytes := numBlocks * entrySize
	tbuf := make([]byte, tableBytes)
	if _, err := f.ReadAt(tbuf, format.HeaderSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading block table: %w", err)
	}
	sd.blockTable = make([]compress.BlockOffsetEntry, numBlocks)
	for i := 0; i < numBlocks; i++ {
		var v uint64
		for b := 0; b < entrySize; b++ {
			v |= uint64(tbuf[i*entrySize+b]) << (8 * b)
		}
		sd.blockTable[i] = compress.DecodeBlockOffsetEntry(v, entrySize)
	}
	sd.payloadOff = int64(format.HeaderSize + tableBytes)
	return sd, nil
}

func (sd *sideData) materialize() error {
	if sd.blockTable == nil {
		// Uncompressed: read the whole payload directly.
		fi, err := sd.file.Stat()
		if err != nil {
			return err
		}
		buf := make([]byte, fi.Size()-sd.payloadOff)
		if _, err := sd.file.ReadAt(buf, sd.payloadOff); err != nil {
			return err
		}
		sd.raw = buf
		return nil
	}
	var out []byte
	for i := range sd.blockTable {
		blk, err := sd.readBlockRaw(i)
		if err != nil {
			return err
		}
		out = append(out, blk...)
	}
	sd.raw = out
	sd.blockTable = nil
	return nil
}

func (sd *sideData) readBlockRaw(block int) ([]byte, error) {
	var start uint64
	if block > 0 {
		start = sd.blockTable[block-1].Offset
	}
	entry := sd.blockTable[block]
	compLen := entry.Offset - start
	buf := make([]byte, compLen)
	if _, err := sd.file.ReadAt(buf, sd.payloadOff+int64(start)); err != nil {
		return nil, err
	}
	blockRows := int64(compress.BlockCells)
	if remaining := sd.rows - int64(block)*int64(compress.BlockCells); remaining < blockRows {
		blockRows = remaining
	}
	return compress.DecompressBlock(buf, entry.StoredRaw, int(blockRows)*sd.cellBytes)
}

// cellAt returns the raw cell bytes for row within this side's payload.
func (sd *sideData) cellAt(row int64) ([]byte, error) {
	if sd.raw != nil {
		off := row * int64(sd.cellBytes)
		if off+int64(sd.cellBytes) > int64(len(sd.raw)) {
			return nil, fmt.Errorf("table: row %d out of range", row)
		}
		return sd.raw[off : off+int64(sd.cellBytes)], nil
	}
	if sd.blockTable == nil {
		// Uncompressed, on-demand.
		buf := make([]byte, sd.cellBytes)
		sd.mu.Lock()
		_, err := sd.file.ReadAt(buf, sd.payloadOff+row*int64(sd.cellBytes))
		sd.mu.Unlock()
		return buf, err
	}
	block := int(row) / compress.BlockCells
	sd.mu.Lock()
	defer sd.mu.Unlock()
	blk, err := sd.readBlockRaw(block)
	if err != nil {
		return nil, err
	}
	within := (int(row) % compress.BlockCells) * sd.cellBytes
	return blk[within : within+sd.cellBytes], nil
}

// HasSide reports whether this TableFile has a payload for side.
func (tf *TableFile) HasSide(side xqboard.Color) bool {
	return tf.sides[side] != nil && tf.sides[side].present
}

// Get returns the score stored for row, as seen by side (the side to
// move that row's payload covers).
func (tf *TableFile) Get(side xqboard.Color, row int64) (score.Score, error) {
	sd := tf.sides[side]
	if sd == nil {
		return score.Score{}, fmt.Errorf("table: no payload for side %s", side)
	}
	if row < 0 || row >= tf.size {
		return score.Score{}, fmt.Errorf("table: row %d out of range [0,%d)", row, tf.size)
	}
	raw, err := sd.cellAt(row)
	if err != nil {
		return score.Score{}, err
	}
	if sd.cellBytes == 1 {
		return score.Decode1(raw[0]), nil
	}
	v := int16(raw[0]) | int16(raw[1])<<8
	return score.Decode2(v), nil
}

// Merge folds other's side payloads into tf, used when a second
// physical file for the same signature is discovered after the first
// (spec.md §4.3's TableFile.merge).
func (tf *TableFile) Merge(other *TableFile) error {
	if tf.Signature != other.Signature {
		return fmt.Errorf("table: cannot merge mismatched signatures %s and %s", tf.Signature, other.Signature)
	}
	for c := range tf.sides {
		if other.sides[c] != nil {
			if tf.sides[c] != nil {
				return fmt.Errorf("table: duplicate side payload for signature %s", tf.Signature)
			}
			tf.sides[c] = other.sides[c]
		}
	}
	return nil
}

// Close releases file handles held by this TableFile.
func (tf *TableFile) Close() error {
	var firstErr error
	for _, sd := range tf.sides {
		if sd != nil && sd.file != nil {
			if err := sd.file.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
