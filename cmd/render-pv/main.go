// Command render-pv rasterizes a principal variation (one UCI move per
// line, read from stdin) to a PNG, exercising arena.RenderPV as a
// diagnostic artifact generator outside of the live "info" text stream.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"

	"github.com/castling-labs/puct/arena"
)

var outFlag = flag.String("out", "pv.png", "output PNG path")

func main() {
	flag.Parse()

	var moves []string
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			moves = append(moves, line)
		}
	}
	if err := sc.Err(); err != nil {
		log.Fatal(err)
	}

	f, err := os.Create(*outFlag)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if err := arena.RenderPV(f, moves); err != nil {
		log.Fatal(err)
	}
}
