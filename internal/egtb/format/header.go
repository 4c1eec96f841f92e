// Package format implements FileFormat (spec.md §4.3, §6.1): the
// 128-byte TableFileHeader, on-disk file naming, directory layout, and
// the historic-signature / bug-variant compatibility surface.
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the fixed TableFileHeader length.
const HeaderSize = 128

// Magic values for the signature word at offset 0. CurrentMagic is what
// this engine writes; the historic values are accepted on read only.
const (
	CurrentMagic      uint16 = 0x4554 // "ET" — current v2 DTM format
	magicV0           uint16 = 0x4530
	magicV1           uint16 = 0x4531
	magicV2           uint16 = 0x4532
	magicV3           uint16 = 0x4533
	magicBugVariant   uint16 = 0x4247 // "BG" — short 126-byte bug-chess header, read-only
	bugVariantHdrSize        = 126
)

// ErrUnsupportedFormat is returned for a header whose magic is not one
// this engine knows how to read at all.
var ErrUnsupportedFormat = errors.New("format: unrecognised header magic")

// ErrUnsupportedVersion is returned for a known-but-historic magic this
// engine declines to read (spec.md §9 open question: this
// reimplementation does not carry read compatibility for the dead
// EGTB_ID_MAIN_V0..V3 branches, since nothing in the corpus ever
// produces those files; CurrentMagic is the only format written or
// read).
var ErrUnsupportedVersion = errors.New("format: historic table version not supported")

// Property bits, offset 2..5 (spec.md §6.1).
const (
	PropCompressed uint32 = 1 << iota
	PropTwoBytes
	PropSideWhite
	PropSideBlack
	PropLargeBlockTableWhite
	PropLargeBlockTableBlack
	PropCompressOptimised
)

// Header is the 128-byte TableFileHeader.
type Header struct {
	Magic          uint16
	Properties     uint32
	PermutationOrd uint32
	MaxDTM         uint8
	Name           string // <=20 bytes, NUL-padded lowercase signature
	Copyright      string // <=64 bytes
	Checksum       uint64
}

// HasSide reports whether the header's property mask has the given side
// bit (PropSideWhite or PropSideBlack) set.
func (h Header) HasSide(bit uint32) bool { return h.Properties&bit != 0 }

// Encode serialises h into a HeaderSize-byte buffer.
func (h Header) Encode() ([]byte, error) {
	if len(h.Name) > 20 {
		return nil, fmt.Errorf("format: name %q exceeds 20 bytes", h.Name)
	}
	if len(h.Copyright) > 64 {
		return nil, fmt.Errorf("format: copyright exceeds 64 bytes")
	}
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], h.Magic)
	binary.LittleEndian.PutUint32(buf[2:6], h.Properties)
	binary.LittleEndian.PutUint32(buf[6:10], h.PermutationOrd)
	buf[10] = h.MaxDTM
	// 11..21: reserved zero (11 bytes)
	copy(buf[22:42], h.Name)
	copy(buf[42:106], h.Copyright)
	binary.LittleEndian.PutUint64(buf[106:114], h.Checksum)
	// 114..127: reserved zero (14 bytes)
	return buf, nil
}

// DecodeHeader parses a HeaderSize-byte buffer into a Header.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < bugVariantHdrSize {
		return Header{}, fmt.Errorf("format: header too short (%d bytes)", len(buf))
	}
	magic := binary.LittleEndian.Uint16(buf[0:2])
	switch magic {
	case CurrentMagic:
		// fall through to full decode below
	case magicBugVariant:
		return Header{}, ErrUnsupportedVersion
	case magicV0, magicV1, magicV2, magicV3:
		return Header{}, ErrUnsupportedVersion
	default:
		return Header{}, ErrUnsupportedFormat
	}
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("format: header too short (%d bytes)", len(buf))
	}
	h := Header{
		Magic:          magic,
		Properties:     binary.LittleEndian.Uint32(buf[2:6]),
		PermutationOrd: binary.LittleEndian.Uint32(buf[6:10]),
		MaxDTM:         buf[10],
		Name:           trimNUL(buf[22:42]),
		Copyright:      trimNUL(buf[42:106]),
		Checksum:       binary.LittleEndian.Uint64(buf[106:114]),
	}
	return h, nil
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// BlockTableEntrySize returns 4 or 5 depending on whether large is set
// for the given side (spec.md §4.2 "if the last table entry fits in 32
// bits, use a 4-byte table; otherwise fall back to 5-byte entries").
func BlockTableEntrySize(large bool) int {
	if large {
		return 5
	}
	return 4
}
