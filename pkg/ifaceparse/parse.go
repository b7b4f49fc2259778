package ifaceparse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devicelink/devicelink-go/pkg/model"
)

// ErrUnknownFormat is returned for files whose extension is not a known
// definition format.
var ErrUnknownFormat = errors.New("unknown interface file format")

// Format is the serialization of a definition file.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFromPath selects the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// requiredKeys are the top-level keys whose zero value is valid, so their
// absence is invisible on a decoded model.Definition.
var requiredKeys = []string{"version_major", "version_minor"}

// DecodeJSON decodes a definition without building the interface.
func DecodeJSON(data []byte) (*model.Definition, error) {
	var def model.Definition
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: parsing json: %w", model.ErrInvalidDefinition, err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: parsing json: %w", model.ErrInvalidDefinition, err)
	}
	err := checkRequired(def.Name, func(key string) bool {
		v, ok := keys[key]
		return ok && string(bytes.TrimSpace(v)) != "null"
	})
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// DecodeYAML decodes a definition without building the interface.
func DecodeYAML(data []byte) (*model.Definition, error) {
	var def model.Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml: %w", model.ErrInvalidDefinition, err)
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml: %w", model.ErrInvalidDefinition, err)
	}
	err := checkRequired(def.Name, func(key string) bool {
		v, ok := keys[key]
		return ok && v != nil
	})
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func checkRequired(name string, present func(key string) bool) error {
	for _, key := range requiredKeys {
		if !present(key) {
			return fmt.Errorf("%w: %s of interface %s", model.ErrMissingField, key, name)
		}
	}
	return nil
}

// ParseJSON parses a JSON definition and builds the interface.
func ParseJSON(data []byte) (*model.Interface, error) {
	return Parse(data, FormatJSON)
}

// ParseYAML parses a YAML definition and builds the interface.
func ParseYAML(data []byte) (*model.Interface, error) {
	return Parse(data, FormatYAML)
}

// Parse parses a definition in the given format and builds the interface.
func Parse(data []byte, format Format) (*model.Interface, error) {
	var (
		def *model.Definition
		err error
	)
	switch format {
	case FormatJSON:
		def, err = DecodeJSON(data)
	case FormatYAML:
		def, err = DecodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return model.NewInterface(def)
}

// LoadFile loads and builds the interface defined in path. The format is
// chosen by extension.
func LoadFile(path string) (*model.Interface, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	iface, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return iface, nil
}
