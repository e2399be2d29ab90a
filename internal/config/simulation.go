package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cxd309/contagion-engine/internal/engine"
)

// LoadSimulation reads a SimulationConfig from a JSON or YAML file. The
// format is chosen by extension; anything other than .yaml/.yml is JSON.
func LoadSimulation(path string) (engine.SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.SimulationConfig{}, fmt.Errorf("reading simulation config: %w", err)
	}
	return ParseSimulation(data, filepath.Ext(path))
}

// ParseSimulation decodes a SimulationConfig onto engine.DefaultSimulationConfig.
// ext selects the format as in LoadSimulation. Keys present in data are kept
// as written, so an explicit zero still fails validation.
func ParseSimulation(data []byte, ext string) (engine.SimulationConfig, error) {
	cfg := engine.DefaultSimulationConfig()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return engine.SimulationConfig{}, fmt.Errorf("parsing YAML simulation config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return engine.SimulationConfig{}, fmt.Errorf("parsing JSON simulation config: %w", err)
		}
	}
	return cfg, nil
}
