package generator

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"

	"github.com/nguyenpham/xqegtb/internal/egtb/score"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

// checkpointHeaderSize and the two magic values implement spec.md §6.4's
// 16-byte checkpoint header: {magic:i16, ply:i16, checksum:u32,
// reserved[8]}. The third (flag-bitmap) temp file is always written;
// magicWithFlags marks a run whose flag file also carries the backward
// solver's pending bits, which Resume restores only in that case.
const checkpointHeaderSize = 16

const (
	checkpointMagicPlain     int16 = 0x4350
	checkpointMagicWithFlags int16 = 0x4346
)

const (
	whiteCheckpointName = "egtb-ckpt-white.tmp"
	blackCheckpointName = "egtb-ckpt-black.tmp"
	flagsCheckpointName = "egtb-ckpt-flags.tmp"
)

// Checkpoint writes the current working state to three temp files under
// dir (spec.md §4.6.4): two per-side payload files plus one flag-bitmap
// file. Call after every N plies and always on the final iteration; the
// caller removes these files itself once generation completes
// successfully.
func (c *Context) Checkpoint(dir string, ply int) error {
	whiteBuf := encodeSideBuffer(c.cell[xqboard.White])
	blackBuf := encodeSideBuffer(c.cell[xqboard.Black])
	flagsBuf := c.encodeFlags()

	magic := checkpointMagicPlain
	if c.pending[xqboard.White] != nil {
		magic = checkpointMagicWithFlags
	}

	if err := writeCheckpointFile(filepath.Join(dir, whiteCheckpointName), magic, ply, whiteBuf); err != nil {
		return err
	}
	if err := writeCheckpointFile(filepath.Join(dir, blackCheckpointName), magic, ply, blackBuf); err != nil {
		return err
	}
	if err := writeCheckpointFile(filepath.Join(dir, flagsCheckpointName), magic, ply, flagsBuf); err != nil {
		return err
	}
	return nil
}

// RemoveCheckpoint deletes the three temp files, called on successful
// completion (spec.md §3 lifecycle: "removes them on successful
// completion").
func RemoveCheckpoint(dir string) {
	os.Remove(filepath.Join(dir, whiteCheckpointName))
	os.Remove(filepath.Join(dir, blackCheckpointName))
	os.Remove(filepath.Join(dir, flagsCheckpointName))
}

// Resume rereads all three checkpoint files under dir and, if every one
// is present with a matching checksum at the same ply, restores this
// Context's working buffers and returns that ply. A missing file or
// checksum mismatch in any of the three is treated as no checkpoint at
// all (spec.md §4.6.4: "corrupted checkpoints are treated as absent"),
// so ok is false and the generator starts from ply 0.
func (c *Context) Resume(dir string) (ply int, ok bool, err error) {
	whitePly, whiteHasFlags, whiteBuf, whiteErr := readCheckpointFile(filepath.Join(dir, whiteCheckpointName))
	blackPly, _, blackBuf, blackErr := readCheckpointFile(filepath.Join(dir, blackCheckpointName))
	flagsPly, _, flagsBuf, flagsErr := readCheckpointFile(filepath.Join(dir, flagsCheckpointName))

	if whiteErr != nil || blackErr != nil || flagsErr != nil {
		return 0, false, nil
	}
	if whitePly != blackPly || whitePly != flagsPly {
		return 0, false, nil
	}
	if int64(len(whiteBuf)) != c.size*2 || int64(len(blackBuf)) != c.size*2 {
		return 0, false, nil
	}

	copy(c.cell[xqboard.White], decodeSideBuffer(whiteBuf))
	copy(c.cell[xqboard.Black], decodeSideBuffer(blackBuf))
	c.decodeFlags(flagsBuf, whiteHasFlags)
	return whitePly, true, nil
}

func writeCheckpointFile(path string, magic int16, ply int, payload []byte) error {
	header := make([]byte, checkpointHeaderSize)
	binary.LittleEndian.PutUint16(header[0:2], uint16(magic))
	binary.LittleEndian.PutUint16(header[2:4], uint16(ply))
	binary.LittleEndian.PutUint32(header[4:8], rotatingChecksum(payload))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("generator: writing checkpoint %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(header); err != nil {
		return err
	}
	_, err = f.Write(payload)
	return err
}

func readCheckpointFile(path string) (ply int, hasFlags bool, payload []byte, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false, nil, err
	}
	if len(data) < checkpointHeaderSize {
		return 0, false, nil, fmt.Errorf("generator: checkpoint %s too short", path)
	}
	magic := int16(binary.LittleEndian.Uint16(data[0:2]))
	p := int16(binary.LittleEndian.Uint16(data[2:4]))
	checksum := binary.LittleEndian.Uint32(data[4:8])
	body := data[checkpointHeaderSize:]
	if rotatingChecksum(body) != checksum {
		return 0, false, nil, fmt.Errorf("generator: checkpoint %s failed checksum", path)
	}
	if magic != checkpointMagicPlain && magic != checkpointMagicWithFlags {
		return 0, false, nil, fmt.Errorf("generator: checkpoint %s has unknown magic %#x", path, magic)
	}
	return int(p), magic == checkpointMagicWithFlags, body, nil
}

// rotatingChecksum sums the buffer's little-endian u32 words, each
// rotated left by a position-dependent amount, so a block of
// transposed or shifted words does not silently checksum the same
// (spec.md §4.6.4: "checksum (sum-of-rotating-u32s)").
func rotatingChecksum(data []byte) uint32 {
	var sum uint32
	i := 0
	for ; i+4 <= len(data); i += 4 {
		w := binary.LittleEndian.Uint32(data[i : i+4])
		sum += bits.RotateLeft32(w, (i/4)%32)
	}
	if i < len(data) {
		var tail [4]byte
		copy(tail[:], data[i:])
		sum += binary.LittleEndian.Uint32(tail[:])
	}
	return sum
}

func encodeSideBuffer(cells []score.Score) []byte {
	buf := make([]byte, len(cells)*2)
	for i, s := range cells {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(score.Encode2(s)))
	}
	return buf
}

func decodeSideBuffer(buf []byte) []score.Score {
	out := make([]score.Score, len(buf)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		out[i] = score.Decode2(v)
	}
	return out
}

// encodeFlags packs hasCapture and pending into a 4-bit-per-row nibble
// buffer, two rows per byte: bit 0 hasCapture[White], bit 1
// hasCapture[Black], bit 2 pending[White], bit 3 pending[Black]
// (spec.md §3's "(size+1)/2-byte flag buffer").
func (c *Context) encodeFlags() []byte {
	buf := make([]byte, (c.size+1)/2)
	for row := int64(0); row < c.size; row++ {
		var nib byte
		if c.hasCapture[xqboard.White][row] {
			nib |= 1
		}
		if c.hasCapture[xqboard.Black][row] {
			nib |= 2
		}
		if c.pending[xqboard.White] != nil && c.pending[xqboard.White][row] {
			nib |= 4
		}
		if c.pending[xqboard.Black] != nil && c.pending[xqboard.Black][row] {
			nib |= 8
		}
		if row%2 == 0 {
			buf[row/2] |= nib
		} else {
			buf[row/2] |= nib << 4
		}
	}
	return buf
}

func (c *Context) decodeFlags(buf []byte, withPending bool) {
	if withPending && c.pending[xqboard.White] == nil {
		c.pending[xqboard.White] = make([]bool, c.size)
		c.pending[xqboard.Black] = make([]bool, c.size)
	}
	for row := int64(0); row < c.size; row++ {
		var nib byte
		if row%2 == 0 {
			nib = buf[row/2] & 0x0F
		} else {
			nib = (buf[row/2] >> 4) & 0x0F
		}
		c.hasCapture[xqboard.White][row] = nib&1 != 0
		c.hasCapture[xqboard.Black][row] = nib&2 != 0
		if withPending {
			c.pending[xqboard.White][row] = nib&4 != 0
			c.pending[xqboard.Black][row] = nib&8 != 0
		}
	}
}
