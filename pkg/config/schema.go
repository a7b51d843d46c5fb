package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/noticegen/internal/assets"
	"github.com/pelletier/go-toml/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Embedded schema names accepted by ValidateFile and ValidateDocument
const (
	ConfigSchema = assets.ConfigSchemaPath
	HintsSchema  = assets.HintsSchemaPath
)

// ValidateFile decodes a YAML, JSON or TOML file and validates it against an
// embedded schema.
func ValidateFile(path, schema string) error {
	data, err := os.ReadFile(path) // #nosec G304 - path is a user-selected config file
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := decodeDocument(path, data)
	if err != nil {
		return err
	}
	return ValidateDocument(doc, schema)
}

// ValidateDocument validates an already decoded document against an embedded schema
func ValidateDocument(doc interface{}, schema string) error {
	schemaLoader, err := getSchemaLoader(schema)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %v", schema, err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

// getSchemaLoader converts an embedded YAML schema into a JSON schema loader
func getSchemaLoader(name string) (gojsonschema.JSONLoader, error) {
	raw, err := assets.GetSchema(name)
	if err != nil {
		return nil, err
	}
	var schema interface{}
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	return gojsonschema.NewBytesLoader(data), nil
}

// decodeDocument picks a decoder by file extension; unknown extensions are read as YAML
func decodeDocument(path string, data []byte) (interface{}, error) {
	var doc interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s as JSON: %w", path, err)
		}
	case ".toml":
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s as TOML: %w", path, err)
		}
		doc = m
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s as YAML: %w", path, err)
		}
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}
