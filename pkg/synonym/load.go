package synonym

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var builtin []byte

// Decode reads a YAML list of groups.
func Decode(r io.Reader) ([]Group, error) {
	var groups []Group
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&groups); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode synonyms: %w", err)
	}
	return groups, nil
}

// LoadFile reads a synonym file and builds its table.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open synonyms: %w", err)
	}
	defer f.Close()

	groups, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Build(groups)
}

var defaultTable = sync.OnceValues(func() (*Table, error) {
	groups, err := Decode(bytes.NewReader(builtin))
	if err != nil {
		return nil, err
	}
	return Build(groups)
})

// Default returns the table built from the bundled regional data. It is
// built once and shared.
func Default() (*Table, error) {
	return defaultTable()
}

// Open returns the table at path, or the bundled table when path is empty.
func Open(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
