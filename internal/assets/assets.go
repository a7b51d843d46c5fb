package assets

import (
	"embed"
	"io/fs"
)

//go:embed embedded_templates
var Templates embed.FS

//go:embed embedded_schemas
var Schemas embed.FS

// Schema paths relative to GetSchemasFS.
const (
	ConfigSchemaPath = "config/noticegen-config.yaml"
	HintsSchemaPath  = "config/hints.yaml"
)

func GetTemplatesFS() fs.FS {
	if sub, err := fs.Sub(Templates, "embedded_templates"); err == nil {
		return sub
	}
	return Templates
}

func GetSchemasFS() fs.FS {
	if sub, err := fs.Sub(Schemas, "embedded_schemas"); err == nil {
		return sub
	}
	return Schemas
}

// GetTemplate returns an embedded template by path, e.g. "report/report.md.hbs".
func GetTemplate(path string) ([]byte, error) {
	return fs.ReadFile(GetTemplatesFS(), path)
}

// GetSchema returns an embedded schema by path, e.g. ConfigSchemaPath.
func GetSchema(path string) ([]byte, error) {
	return fs.ReadFile(GetSchemasFS(), path)
}
