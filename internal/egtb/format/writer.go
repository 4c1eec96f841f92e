package format

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"os"

	"github.com/nguyenpham/xqegtb/internal/egtb/compress"
	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// SideBuffer is one side-to-move's working cells plus the Phase F ply
// distance for any perpetual-tagged row (spec.md §4.7's numerisation
// input), ready for serialisation by WriteTable.
type SideBuffer struct {
	Cells []score.Score
	Plies []int // parallel to Cells; -1 where the cell is not perpetual
}

// WriteOptions controls how WriteTable serialises a signature's payload
// (spec.md §4.6.6 compression-optimisation, §4.6.7 two-byte downgrade:
// both are decided by the caller before calling WriteTable, not by this
// package).
type WriteOptions struct {
	Compressed bool
	TwoBytes   bool
	Name       string // lowercase signature string, <=20 bytes
	Copyright  string
}

// WriteTable serialises one (signature, side) payload to path: a
// HeaderSize header, an optional block offset table, then the cell
// payload itself, compressed block-by-block when opts.Compressed is set
// (spec.md §4.2, §4.3).
func WriteTable(path string, side xqboard.Color, buf SideBuffer, opts WriteOptions) error {
	cellBytes := 1
	if opts.TwoBytes {
		cellBytes = 2
	}

	payload, err := encodeCells(buf, cellBytes)
	if err != nil {
		return err
	}

	var properties uint32
	if opts.Compressed {
		properties |= PropCompressed
	}
	if opts.TwoBytes {
		properties |= PropTwoBytes
	}
	if side == xqboard.White {
		properties |= PropSideWhite
	} else {
		properties |= PropSideBlack
	}

	var blockTableBytes []byte
	var body []byte
	if opts.Compressed {
		entries, blocks, err := compressPayload(payload, cellBytes)
		if err != nil {
			return err
		}
		large := entries[len(entries)-1].Offset > compress.MaxOffsetForWidth(BlockTableEntrySize(false))
		if large {
			if side == xqboard.White {
				properties |= PropLargeBlockTableWhite
			} else {
				properties |= PropLargeBlockTableBlack
			}
		}
		blockTableBytes = encodeBlockTable(entries, large)
		body = blocks
	} else {
		body = payload
	}

	h := Header{
		Magic:      CurrentMagic,
		Properties: properties,
		Name:       opts.Name,
		Copyright:  opts.Copyright,
		Checksum:   checksumPayload(payload),
	}
	hbuf, err := h.Encode()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("format: creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(hbuf); err != nil {
		return fmt.Errorf("format: writing header to %s: %w", path, err)
	}
	if blockTableBytes != nil {
		if _, err := f.Write(blockTableBytes); err != nil {
			return fmt.Errorf("format: writing block table to %s: %w", path, err)
		}
	}
	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("format: writing payload to %s: %w", path, err)
	}
	return nil
}

// encodeCells flattens buf into its raw one- or two-byte cell form,
// numerising any perpetual cell through EncodeNumerisedPerpetual when
// cellBytes is 2 (spec.md §4.7 Phase F; a one-byte table can only carry
// the unnumerised perpetual sentinel, so Plies is ignored there).
func encodeCells(buf SideBuffer, cellBytes int) ([]byte, error) {
	out := make([]byte, len(buf.Cells)*cellBytes)
	for i, s := range buf.Cells {
		if cellBytes == 1 {
			b, ok := score.Encode1(s)
			if !ok {
				return nil, fmt.Errorf("format: row %d needs two-byte encoding", i)
			}
			out[i] = b
			continue
		}
		var v int16
		if s.IsPerpetual() && buf.Plies != nil && buf.Plies[i] >= 0 {
			v = score.EncodeNumerisedPerpetual(s.Kind, buf.Plies[i])
		} else {
			v = score.Encode2(s)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out, nil
}

// compressPayload splits payload into compress.BlockCells*cellBytes-sized
// blocks, compresses each independently, and returns the cumulative
// offset table alongside the concatenated block bytes (spec.md §4.2).
func compressPayload(payload []byte, cellBytes int) ([]compress.BlockOffsetEntry, []byte, error) {
	blockBytes := compress.BlockCells * cellBytes
	var entries []compress.BlockOffsetEntry
	var out []byte
	var offset uint64
	for start := 0; start < len(payload); start += blockBytes {
		end := start + blockBytes
		if end > len(payload) {
			end = len(payload)
		}
		block, storedRaw, err := compress.CompressBlock(payload[start:end])
		if err != nil {
			return nil, nil, err
		}
		out = append(out, block...)
		offset += uint64(len(block))
		entries = append(entries, compress.BlockOffsetEntry{Offset: offset, StoredRaw: storedRaw})
	}
	if len(entries) == 0 {
		entries = append(entries, compress.BlockOffsetEntry{})
	}
	return entries, out, nil
}

func encodeBlockTable(entries []compress.BlockOffsetEntry, large bool) []byte {
	entrySize := BlockTableEntrySize(large)
	out := make([]byte, len(entries)*entrySize)
	for i, e := range entries {
		v := e.Encode(entrySize)
		for b := 0; b < entrySize; b++ {
			out[i*entrySize+b] = byte(v >> (8 * b))
		}
	}
	return out
}

// checksumPayload sums the payload's little-endian u32 words, each
// rotated left by its word index mod 32 as in the checkpoint format's
// rotating checksum, into a 64-bit total (spec.md §6.1's header
// checksum field), so a corrupted table is detectable without a full
// re-decode. A trailing partial word is zero-padded and added unrotated.
func checksumPayload(payload []byte) uint64 {
	var sum uint64
	i := 0
	for ; i+4 <= len(payload); i += 4 {
		w := binary.LittleEndian.Uint32(payload[i : i+4])
		sum += uint64(bits.RotateLeft32(w, (i/4)%32))
	}
	if i < len(payload) {
		var tail [4]byte
		copy(tail[:], payload[i:])
		sum += uint64(binary.LittleEndian.Uint32(tail[:]))
	}
	return sum
}
