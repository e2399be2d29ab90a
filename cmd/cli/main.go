// Command contagion runs the epidemic simulation engine.
//
// It reads a SimulationConfig (JSON or YAML) from a file argument or stdin,
// runs the simulation, and writes JSON to stdout. The serve subcommand exposes
// the same engine over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
