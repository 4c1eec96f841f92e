// Package compress implements TableFile's block compression (spec.md
// §4.2): cells are grouped into fixed-size blocks, each compressed
// independently so a TableFile can seek directly to the block holding
// any given row without decompressing the whole file.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kjk/lzma"
)

// BlockCells is the number of table cells per compression block. Kept
// small enough that decompressing one block to answer a single probe is
// cheap, matching spec.md §4.2's "compressed in fixed-size blocks so a
// single probe need not decompress the whole file".
const BlockCells = 4096

// flagBit returns the top bit of a width-byte block table entry, used
// to flag "stored uncompressed" (spec.md §4.2 "blocks that do not
// compress are stored raw"). The flag lives at the top of whichever
// entry width the table actually uses (4 or 5 bytes, spec.md §4.2's
// "if the last table entry fits in 32 bits, use a 4-byte table;
// otherwise fall back to 5-byte entries") rather than at a fixed bit
// position, since a fixed bit 63 would fall outside both on-disk widths.
func flagBit(width int) uint64 {
	return uint64(1) << uint(width*8-1)
}

// CompressBlock compresses raw, returning the bytes to write to disk and
// whether the block ended up stored raw (incompressible or larger after
// compression).
func CompressBlock(raw []byte) (out []byte, storedRaw bool, err error) {
	var buf bytes.Buffer
	w := lzma.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, false, fmt.Errorf("compress: lzma write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, false, fmt.Errorf("compress: lzma close: %w", err)
	}
	if buf.Len() >= len(raw) {
		return raw, true, nil
	}
	return buf.Bytes(), false, nil
}

// DecompressBlock reverses CompressBlock given the original (uncompressed)
// block size cellCount.
func DecompressBlock(data []byte, storedRaw bool, cellCount int) ([]byte, error) {
	if storedRaw {
		if len(data) != cellCount {
			return nil, fmt.Errorf("compress: stored-raw block has %d bytes, want %d", len(data), cellCount)
		}
		return data, nil
	}
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("compress: lzma reader: %w", err)
	}
	defer closeIfCloser(r)
	out := make([]byte, cellCount)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("compress: lzma read: %w", err)
	}
	return out, nil
}

func closeIfCloser(r io.Reader) {
	if c, ok := r.(io.Closer); ok {
		c.Close()
	}
}

// BlockOffsetEntry is one entry of the compressed block offset table
// (spec.md §4.2): the cumulative end offset of a block's bytes, counted
// from the start of the payload (a block starts at the previous entry's
// Offset, or 0 for the first block), and whether it is stored raw. The
// top bit of the stored value is the storedRaw flag, matching the on-disk layout used by FileFormat.
type BlockOffsetEntry struct {
	Offset    uint64
	StoredRaw bool
}

// Encode packs the entry into its on-disk form, width bytes wide (4 or
// 5, per format.BlockTableEntrySize). The StoredRaw flag occupies the
// top bit of that width, so Offset must fit in the remaining bits.
func (e BlockOffsetEntry) Encode(width int) uint64 {
	v := e.Offset
	if e.StoredRaw {
		v |= flagBit(width)
	}
	return v
}

// DecodeBlockOffsetEntry unpacks an on-disk offset table entry that is
// width bytes wide (4 or 5, per format.BlockTableEntrySize).
func DecodeBlockOffsetEntry(v uint64, width int) BlockOffsetEntry {
	bit := flagBit(width)
	return BlockOffsetEntry{
		Offset:    v &^ bit,
		StoredRaw: v&bit != 0,
	}
}

// MaxOffsetForWidth returns the largest Offset value that still fits
// alongside the StoredRaw flag bit in a width-byte entry.
func MaxOffsetForWidth(width int) uint64 {
	return flagBit(width) - 1
}

// BlockCountForRows returns the number of blocks needed to hold rowCount
// cells of cellSize bytes each.
func BlockCountForRows(rowCount int, cellSize int) int {
	cellsPerBlock := BlockCells
	rows := rowCount
	blocks := rows / cellsPerBlock
	if rows%cellsPerBlock != 0 {
		blocks++
	}
	_ = cellSize
	return blocks
}
