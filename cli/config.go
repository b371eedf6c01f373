package cli

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds the tunables an embedding deployment may want to pin
// without recompiling (spec §4.9's Options, surfaced to the CLI): call
// depth and register-stack ceilings, plus the natives to pre-register.
// With no --config flag and no quokkalua.yaml beside the chunk, every
// field stays at its zero value, which Settings.options maps to the
// package defaults.
type Settings struct {
	MaxCallDepth int      `yaml:"maxCallDepth"`
	MaxRegisters int      `yaml:"maxRegisters"`
	Natives      []string `yaml:"natives"`
}

func loadSettings(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s, &settingsError{err}
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, &settingsError{err}
	}
	return s, nil
}
