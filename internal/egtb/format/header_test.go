package format

import "testing"

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{
		Magic:          CurrentMagic,
		Properties:     PropCompressed | PropSideWhite,
		PermutationOrd: 7,
		MaxDTM:         200,
		Name:           "krk",
		Copyright:      "test copyright",
		Checksum:       0x1122334455667788,
	}
	buf, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(buf) != HeaderSize {
		t.Fatalf("Encode produced %d bytes, want %d", len(buf), HeaderSize)
	}

	got, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got != h {
		t.Fatalf("DecodeHeader round trip = %+v, want %+v", got, h)
	}
}

func TestHeaderHasSide(t *testing.T) {
	h := Header{Properties: PropSideWhite}
	if !h.HasSide(PropSideWhite) {
		t.Fatal("HasSide(PropSideWhite) should be true")
	}
	if h.HasSide(PropSideBlack) {
		t.Fatal("HasSide(PropSideBlack) should be false")
	}
}

func TestEncodeRejectsOversizedNameOrCopyright(t *testing.T) {
	longName := Header{Name: "012345678901234567890"} // 21 bytes
	if _, err := longName.Encode(); err == nil {
		t.Fatal("expected error for name exceeding 20 bytes")
	}

	longCopyright := Header{Copyright: make65ByteString()}
	if _, err := longCopyright.Encode(); err == nil {
		t.Fatal("expected error for copyright exceeding 64 bytes")
	}
}

func make65ByteString() string {
	b := make([]byte, 65)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

func TestDecodeHeaderRejectsUnknownMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	buf[0], buf[1] = 0xFF, 0xFF
	if _, err := DecodeHeader(buf); err != ErrUnsupportedFormat {
		t.Fatalf("DecodeHeader with unknown magic: err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeHeaderRejectsHistoricVersions(t *testing.T) {
	buf := make([]byte, HeaderSize)
	buf[0], buf[1] = byte(magicV1), byte(magicV1>>8)
	if _, err := DecodeHeader(buf); err != ErrUnsupportedVersion {
		t.Fatalf("DecodeHeader with historic magic: err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeHeaderRejectsTooShortBuffer(t *testing.T) {
	if _, err := DecodeHeader(make([]byte, 10)); err == nil {
		t.Fatal("expected error decoding a too-short header buffer")
	}
}

func TestBlockTableEntrySize(t *testing.T) {
	if got := BlockTableEntrySize(false); got != 4 {
		t.Fatalf("BlockTableEntrySize(false) = %d, want 4", got)
	}
	if got := BlockTableEntrySize(true); got != 5 {
		t.Fatalf("BlockTableEntrySize(true) = %d, want 5", got)
	}
}
