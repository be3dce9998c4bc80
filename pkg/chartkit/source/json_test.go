package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
)

func TestLoadJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		rows    int
		wantErr bool
	}{
		{"records", `[{"x": 1, "y": 2}, {"x": 2, "y": 3}]`, 2, false},
		{"tuples", `[[1, 2], [2, 3], [3, 4]]`, 3, false},
		{"wrapped", `{"data": [[1, 2]]}`, 1, false},
		{"scalar", `42`, 0, true},
		{"object without data", `{"rows": []}`, 0, true},
		{"malformed", `[{`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := LoadJSON(strings.NewReader(tt.input))
			if tt.wantErr {
				if chartErrors.CodeOf(err) != chartErrors.CodeInvalidData {
					t.Errorf("Expected invalid-data-format, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadJSON failed: %v", err)
			}
			if len(rows) != tt.rows {
				t.Errorf("Expected %d rows, got %d", tt.rows, len(rows))
			}
		})
	}
}

func TestLoadConfigYAML(t *testing.T) {
	input := `
title: Sales
theme:
  name: dark
  background: "#000000"
xField: month
yFields: [north, south]
stacked: true
scatter:
  jitter: true
option:
  animation: false
data:
  - {month: Jan, north: 1, south: 2}
`
	cfg, err := LoadConfig(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Title != "Sales" || cfg.XField != "month" || !cfg.Stacked {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.Theme.BaseName() != "dark" || !cfg.Theme.IsObject() || cfg.Theme.Object.Background != "#000000" {
		t.Errorf("Unexpected theme: %+v", cfg.Theme)
	}
	if cfg.Scatter.Jitter == nil || !cfg.Scatter.Jitter.Enabled {
		t.Error("Expected jitter enabled")
	}
	if cfg.Override["animation"] != false {
		t.Errorf("Override = %v", cfg.Override)
	}
	if len(cfg.Data) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(cfg.Data))
	}
	if rec, ok := cfg.Data[0].(map[string]interface{}); !ok || rec["north"] != 1 {
		t.Errorf("Unexpected record: %#v", cfg.Data[0])
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.json")
	if err := os.WriteFile(path, []byte(`{"title": "From JSON", "theme": "dark"}`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if cfg.Title != "From JSON" || cfg.Theme.BaseName() != "dark" || cfg.Theme.IsObject() {
		t.Errorf("Unexpected config: %+v", cfg)
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	empty, err := LoadConfig(strings.NewReader(""))
	if err != nil || empty.Title != "" {
		t.Errorf("Empty input should give a zero config, got %+v, %v", empty, err)
	}
}
