package format

import (
	"fmt"
	"path/filepath"

	"github.com/nguyenpham/xqegtb/internal/egtb/material"
)

// Side selects which physical file of a two-file-per-signature pair is
// meant (spec.md §4.3 "the two sides live in separate files").
type Side byte

const (
	SideBlack Side = 'b'
	SideWhite Side = 'w'
)

// Ext names the four recognised file extensions (spec.md §4.3).
type Ext string

const (
	ExtDTMCompressed   Ext = ".ztb"
	ExtDTMRaw          Ext = ".xtb"
	ExtLookupCompressed Ext = ".zlt"
	ExtLookupRaw       Ext = ".ltb"
)

// FileName returns the on-disk name `<signature><side_char>.<ext>`.
func FileName(sig material.Signature, side Side, ext Ext) string {
	return fmt.Sprintf("%s%c%s", sig, byte(side), ext)
}

// KnownExtensions lists every extension Database.LoadDir recognises
// during recursive discovery (spec.md §6.5).
var KnownExtensions = []Ext{ExtDTMCompressed, ExtDTMRaw, ExtLookupCompressed, ExtLookupRaw}

// FolderFor returns the subfolder a signature's files live in: the
// sorted distinct non-king letters of both halves joined with "-", then
// the full signature, e.g. "a-e-h/khaakhe"; a kings-only signature uses
// "k" for the letter part (spec.md §6.5).
func FolderFor(sig material.Signature) string {
	letters := sig.GroupLetters()
	group := ""
	for i, b := range letters {
		if i > 0 {
			group += "-"
		}
		group += string(b)
	}
	if group == "" {
		group = "k"
	}
	return filepath.Join(group, string(sig))
}
