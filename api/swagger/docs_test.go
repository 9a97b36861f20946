package swagger

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var spec struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	if spec.BasePath != "/api/v1" {
		t.Errorf("basePath = %q", spec.BasePath)
	}
	for _, path := range []string{"/analyze", "/analyze/chunk", "/tokens", "/health"} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("doc missing path %s", path)
		}
	}
}
