// Command egtbgen builds one endgame tablebase signature's on-disk
// files (spec.md §3's Generator/FileFormat lifecycle), in the style of
// the teacher's cmd/chessplay-uci: a flag-parsed main that wires a
// couple of packages together and logs progress with the standard
// library logger.
package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/nguyenpham/xqegtb/internal/egtb/database"
	"github.com/nguyenpham/xqegtb/internal/egtb/generator"
	"github.com/nguyenpham/xqegtb/internal/egtb/material"
	"github.com/nguyenpham/xqegtb/internal/egtb/table"
)

var (
	sigFlag        = flag.String("sig", "", "material signature to generate, e.g. krk")
	subDirFlag     = flag.String("sub", "", "directory of already-generated sub-endgame tables (for capture recursion)")
	outDirFlag     = flag.String("out", "tables", "output directory root")
	workersFlag    = flag.Int("workers", 0, "goroutines per phase (0: runtime.NumCPU)")
	forwardFlag    = flag.Bool("forward", false, "use the forward solver instead of retrograde analysis")
	compressFlag   = flag.Bool("compress", true, "compress the written tables")
	checkpointFlag = flag.Int("checkpoint-every", 50, "plies between checkpoints (0 disables checkpointing)")
	copyrightFlag  = flag.String("copyright", "", "copyright string stored in the table header")
)

func main() {
	flag.Parse()
	if *sigFlag == "" {
		log.Fatal("egtbgen: -sig is required")
	}

	sig := material.Signature(*sigFlag)
	sub := database.New(table.Smart)
	if *subDirFlag != "" {
		if err := sub.LoadDir(*subDirFlag); err != nil {
			log.Fatalf("egtbgen: loading sub-endgame tables from %s: %v", *subDirFlag, err)
		}
	}
	defer sub.Close()

	method := generator.MethodBackward
	if *forwardFlag {
		method = generator.MethodForward
	}

	workers := *workersFlag
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	opts := generator.BuildOptions{
		Method:          method,
		OutDir:          *outDirFlag,
		CheckpointEvery: *checkpointFlag,
		Compressed:      *compressFlag,
		Copyright:       *copyrightFlag,
	}

	if err := generator.Build(sig, sub, opts, workers); err != nil {
		log.Fatalf("egtbgen: %v", err)
	}
	log.Printf("egtbgen: %s complete", sig)
}
