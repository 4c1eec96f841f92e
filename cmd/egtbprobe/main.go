// Command egtbprobe queries a directory of generated tablebase files for
// a position's score and principal variation (spec.md §4.4/§4.5),
// mirroring the teacher's cmd/chessplay-uci in its flag-parsed,
// log-for-diagnostics style.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/nguyenpham/xqegtb/internal/egtb/cache"
	"github.com/nguyenpham/xqegtb/internal/egtb/database"
	"github.com/nguyenpham/xqegtb/internal/egtb/probe"
	"github.com/nguyenpham/xqegtb/internal/egtb/table"
	"github.com/nguyenpham/xqegtb/internal/xqboard"
)

var (
	dirFlag   = flag.String("dir", "tables", "directory of generated tablebase files")
	fenFlag   = flag.String("fen", xqboard.StartFEN, "position to probe, in FEN")
	modeFlag  = flag.String("mode", "smart", "table access mode: tiny, all, smart")
	cacheFlag = flag.String("cache", "", "directory for the persistent probe-result cache (disabled if empty)")
	trustFlag = flag.Bool("trust", true, "trust a direct table answer instead of forcing the one-ply fallback")
)

func main() {
	flag.Parse()

	mode, err := parseMode(*modeFlag)
	if err != nil {
		log.Fatalf("egtbprobe: %v", err)
	}

	db := database.New(mode)
	if err := db.LoadDir(*dirFlag); err != nil {
		log.Fatalf("egtbprobe: loading %s: %v", *dirFlag, err)
	}
	defer db.Close()

	if *cacheFlag != "" {
		c, err := cache.Open(*cacheFlag)
		if err != nil {
			log.Fatalf("egtbprobe: opening cache %s: %v", *cacheFlag, err)
		}
		defer c.Close()
		db.UseCache(c)
	}

	pos, err := xqboard.ParseFEN(*fenFlag)
	if err != nil {
		log.Fatalf("egtbprobe: parsing FEN %q: %v", *fenFlag, err)
	}
	pos.TrustTable = *trustFlag

	result := probe.Line(db, pos)
	fmt.Printf("score: %s\n", result.Score)
	fmt.Printf("pv: %s\n", result.Line)
}

func parseMode(s string) (table.Mode, error) {
	switch s {
	case "tiny":
		return table.Tiny, nil
	case "all":
		return table.All, nil
	case "smart", "":
		return table.Smart, nil
	}
	return table.Smart, fmt.Errorf("unknown mode %q", s)
}
