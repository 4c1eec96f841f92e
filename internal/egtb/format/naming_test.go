package format

import (
	"testing"

	"github.com/nguyenpham/xqegtb/internal/egtb/material"
)

func TestFileNameFormat(t *testing.T) {
	got := FileName(material.Signature("krk"), SideWhite, ExtDTMRaw)
	if got != "krkw.xtb" {
		t.Fatalf("FileName = %q, want %q", got, "krkw.xtb")
	}
	got = FileName(material.Signature("krk"), SideBlack, ExtDTMCompressed)
	if got != "krkb.ztb" {
		t.Fatalf("FileName = %q, want %q", got, "krkb.ztb")
	}
}

func TestFolderForGroupsByAttackerLetters(t *testing.T) {
	if got := FolderFor(material.Signature("krk")); got != "r/krk" {
		t.Fatalf("FolderFor(krk) = %q, want %q", got, "r/krk")
	}
	if got := FolderFor(material.Signature("khhk")); got != "h/khhk" {
		t.Fatalf("FolderFor(khhk) = %q, want %q", got, "h/khhk")
	}
}

func TestFolderForBareKingsUsesKGroup(t *testing.T) {
	if got := FolderFor(material.Signature("kk")); got != "k/kk" {
		t.Fatalf("FolderFor(kk) = %q, want %q", got, "k/kk")
	}
}

func TestKnownExtensionsCoversAllFour(t *testing.T) {
	if len(KnownExtensions) != 4 {
		t.Fatalf("KnownExtensions has %d entries, want 4", len(KnownExtensions))
	}
}
