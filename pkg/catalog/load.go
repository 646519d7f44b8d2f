package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sample []byte

// Decode reads a YAML (or JSON) list of entries and validates it.
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadFile reads a catalog file. JSON files parse too since YAML is a
// superset of JSON.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	entries, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Sample returns the bundled demo catalog. Each call decodes a fresh copy.
func Sample() []Entry {
	entries, err := Decode(bytes.NewReader(sample))
	if err != nil {
		panic("catalog: bundled sample is invalid: " + err.Error())
	}
	return entries
}
