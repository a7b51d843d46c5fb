package assets

import (
	"bytes"
	"io/fs"
	"testing"
)

func TestGetSchema(t *testing.T) {
	for _, path := range []string{ConfigSchemaPath, HintsSchemaPath} {
		data, err := GetSchema(path)
		if err != nil {
			t.Fatalf("Failed to read schema %s: %v", path, err)
		}
		if !bytes.Contains(data, []byte("draft-07")) {
			t.Errorf("schema %s should declare draft-07", path)
		}
	}

	if _, err := GetSchema("config/missing.yaml"); err == nil {
		t.Error("expected error for unknown schema")
	}
}

func TestGetTemplatesFS(t *testing.T) {
	fsys := GetTemplatesFS()
	for _, name := range []string{"report/report.md.hbs", "report/report.html.hbs"} {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			t.Fatalf("Failed to read template %s: %v", name, err)
		}
		if !bytes.Contains(data, []byte("{{#each dependencies}}")) {
			t.Errorf("template %s should iterate dependencies", name)
		}
	}
}
