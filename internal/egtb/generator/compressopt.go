package generator

import "github.com/nguyenpham/xqegtb/internal/egtb/score"

// OptimizeForCompression rewrites runs of Illegal cells, then Draw,
// then Unknown, to the value of the preceding differently-kinded cell,
// exposing longer homogeneous runs to the LZMA block compressor without
// changing any answer a query can observe: IndexCodec.Decode already
// returns Illegal for any row that cannot be boarded, before the table
// is ever consulted, so a row's true on-disk value there is moot
// (spec.md §4.6.6).
func (c *Context) OptimizeForCompression() {
	for s := 0; s < 2; s++ {
		rewriteRuns(c.cell[s], score.KindIllegal)
		rewriteRuns(c.cell[s], score.KindDraw)
		rewriteRuns(c.cell[s], score.KindUnknown)
	}
}

func rewriteRuns(cells []score.Score, target score.Kind) {
	var prev score.Score
	havePrev := false
	for i, s := range cells {
		if s.Kind == target {
			if havePrev {
				cells[i] = prev
			}
			continue
		}
		prev = s
		havePrev = true
	}
}
