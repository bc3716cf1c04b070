package executor

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// worldFile is the on-disk layout of a fixed world:
//
//	map:
//	  - SFFF
//	  - FHFH
type worldFile struct {
	Map []string `yaml:"map"`
}

// ParseWorldYAML decodes a world layout.
func ParseWorldYAML(data []byte) (*World, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("world: payload is empty")
	}
	var f worldFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("world: decode: %w", err)
	}
	return NewWorld(f.Map)
}

// LoadWorld reads a YAML world layout from path.
func LoadWorld(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("world: read %s: %w", path, err)
	}
	w, err := ParseWorldYAML(data)
	if err != nil {
		return nil, fmt.Errorf("world: %s: %w", path, err)
	}
	return w, nil
}

// MarshalWorldYAML encodes w in the layout LoadWorld reads.
func MarshalWorldYAML(w *World) ([]byte, error) {
	return yaml.Marshal(worldFile{Map: w.Rows()})
}
