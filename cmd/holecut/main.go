// HoleCut: Wall Opening Placement
//
// A command line tool that finds where duct and pipe runs of an
// engineering model cross walls of an architectural model and places a
// sized opening at every crossing in one atomic batch.
//
// Build:
//   go build -o holecut ./cmd/holecut
//
// Usage:
//   holecut import plan.dxf -p building.holecut -d AR_building
//   holecut import runs.csv -p building.holecut -d "ИОС_building"
//   holecut place building.holecut --journal journal.db
//   holecut export building.holecut -o openings.pdf

package main

import (
	"os"

	"github.com/piwi3910/HoleCut/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
