//go:build js && wasm

// Command wasm exposes the contagion engine to the browser via WebAssembly.
// After loading, it registers a global JavaScript function:
//
//	runSimulation(configJSON) -> historyJSON | {error, violations?}
//
// On success the result is the JSON-encoded History for the given
// SimulationConfig; omitted config fields take their defaults. On failure it
// is an object whose error field holds the message. A rejected configuration
// also carries violations, one {field, value, reason} object per bad field,
// matching the violations array of the HTTP API's 400 response.
package main

import (
	"errors"
	"io"
	"log/slog"
	"syscall/js"

	"github.com/cxd309/contagion-engine/internal/engine"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func main() {
	js.Global().Set("runSimulation", js.FuncOf(runSimulation))
	select {}
}

func runSimulation(_ js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return map[string]any{"error": "runSimulation expects a JSON config string"}
	}

	history, err := engine.RunJSON(args[0].String(), engine.WithLogger(logger))
	if err != nil {
		return errorResult(err)
	}
	return history
}

// errorResult converts err into a value js.ValueOf accepts.
func errorResult(err error) map[string]any {
	res := map[string]any{"error": err.Error()}
	var ce *engine.ConfigurationError
	if errors.As(err, &ce) {
		violations := make([]any, len(ce.Violations))
		for i, v := range ce.Violations {
			violations[i] = map[string]any{"field": v.Field, "value": v.Value, "reason": v.Reason}
		}
		res["violations"] = violations
	}
	return res
}
