package generator

import "github.com/nguyenpham/xqegtb/internal/egtb/score"

// CanUseOneByte scans the whole finished buffer and reports whether
// every cell fits the one-byte encoding: no perpetual-class tag present
// and no DTM magnitude outside the one-byte range (spec.md §4.6.7).
// The write-out step consults this after generation, calling
// score.Encode1 instead of score.Encode2 for every cell when it
// reports true.
func (c *Context) CanUseOneByte() bool {
	for s := 0; s < 2; s++ {
		for _, cell := range c.cell[s] {
			if cell.IsPerpetual() {
				return false
			}
			if _, ok := score.Encode1(cell); !ok {
				return false
			}
		}
	}
	return true
}
