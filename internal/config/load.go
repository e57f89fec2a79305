package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/knobsmith/pkg/shading"
)

// FileName is the config file looked up in the working directory and the
// user config directory.
const FileName = "knobsmith.yaml"

// Load loads configuration with priority: defaults < file < flags. The
// returned path is the file that was read, or empty when none was found.
func Load(flags *Flags) (*Config, string, error) {
	explicit := ""
	if flags != nil {
		explicit = flags.Config
	}
	path := ResolvePath(explicit)
	cfg, err := LoadFile(path, flags)
	return cfg, path, err
}

// LoadFile loads defaults, merges path over them when non-empty and applies
// flags on top. The result is validated.
func LoadFile(path string, flags *Flags) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	if flags != nil {
		flags.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ResolvePath returns explicit when set, otherwise the first existing
// candidate in standard locations.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{filepath.Join(".", FileName)}
	if dir := ConfigDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory, or empty when the
// platform has none.
func ConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "knobsmith")
}

// loadFromFile merges a YAML file over cfg. Unknown keys are errors so
// typos do not silently fall back to defaults.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LightList is the lights section. Each entry is decoded over
// shading.DefaultLight, so keys left out keep usable values instead of zero.
type LightList []shading.Light

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *LightList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: lights must be a list", value.Line)
	}
	out := make(LightList, 0, len(value.Content))
	for _, item := range value.Content {
		light := shading.DefaultLight()
		if err := decodeStrict(item, &light); err != nil {
			return fmt.Errorf("line %d: light: %w", item.Line, err)
		}
		out = append(out, light)
	}
	*l = out
	return nil
}

// decodeStrict decodes node into v rejecting unknown keys. Node.Decode does
// not inherit the outer decoder's KnownFields, so the node is re-encoded.
func decodeStrict(node *yaml.Node, v any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}
