package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/compiler"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

func sampleOption() models.Option {
	return models.Option{
		"title": map[string]interface{}{"text": "Sales"},
		"series": []interface{}{
			map[string]interface{}{
				"type":  "bar",
				"data":  []interface{}{1.0, 2.0},
				"label": map[string]interface{}{"formatter": models.JSFunc(`function (p) { return p.value + '</script>'; }`)},
			},
		},
	}
}

func TestToJSONKeepsMarkers(t *testing.T) {
	b, err := ToJSON(sampleOption(), false)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("ToJSON output is not JSON: %v", err)
	}
	if !strings.Contains(string(b), models.FuncMarker) {
		t.Error("Expected the function marker in JSON output")
	}
	if strings.HasSuffix(string(b), "\n") {
		t.Error("Expected no trailing newline")
	}

	pretty, _ := ToJSON(sampleOption(), true)
	if !strings.Contains(string(pretty), "\n  \"series\"") {
		t.Errorf("Expected indented output, got %s", pretty)
	}
}

func TestToScriptUnwrapsFunctions(t *testing.T) {
	js, err := ToScript(sampleOption(), false)
	if err != nil {
		t.Fatalf("ToScript failed: %v", err)
	}
	if strings.Contains(js, models.FuncMarker) {
		t.Errorf("Marker left in script: %s", js)
	}
	if !strings.Contains(js, `"formatter":function (p) { return p.value + '<\/script>'; }`) {
		t.Errorf("Function literal not unwrapped: %s", js)
	}
}

func TestUnwrapFuncsLeavesPlainStrings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`{"a":"plain"}`, `{"a":"plain"}`},
		{`{"a":"` + models.FuncMarker + `f()` + models.FuncMarker + `"}`, `{"a":f()}`},
		{`["` + models.FuncMarker + `a(\"x\")` + models.FuncMarker + `"]`, `[a("x")]`},
	}
	for _, tt := range tests {
		if got := UnwrapFuncs(tt.input); got != tt.expected {
			t.Errorf("UnwrapFuncs(%s) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

func TestHTML(t *testing.T) {
	page, err := HTML(sampleOption(), HTMLOptions{Title: "Preview", Theme: "dark", Height: "400px"})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	s := string(page)

	for _, want := range []string{
		"<title>Preview</title>",
		DefaultEngineURL,
		`echarts.init(document.getElementById('chart'), "dark")`,
		"height: 400px",
		"chart.resize()",
		`"formatter": function (p)`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Page is missing %q", want)
		}
	}
	if strings.Contains(s, models.FuncMarker) {
		t.Error("Function marker left in page")
	}
	if strings.Contains(s, DefaultStatURL) {
		t.Error("Stat extension should only load for transforms")
	}

	light, _ := HTML(sampleOption(), HTMLOptions{})
	if strings.Contains(string(light), `"light"`) || !strings.Contains(string(light), "null") {
		t.Error("Light theme should initialize without a theme name")
	}
}

func TestHTMLRegistersTransforms(t *testing.T) {
	opt, err := compiler.Compile(compiler.FamilyCluster, compiler.Config{
		Data: []interface{}{[]interface{}{1, 2}, []interface{}{2, 3}, []interface{}{8, 9}},
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	page, err := HTML(opt, HTMLOptions{})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	s := string(page)
	if !strings.Contains(s, DefaultStatURL) || !strings.Contains(s, "ecStat.transform.clustering") {
		t.Error("Expected the stat extension to be loaded and registered")
	}
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")
	if err := WriteHTML(path, sampleOption(), HTMLOptions{}); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(b), "<!DOCTYPE html>") {
		t.Errorf("Unexpected page start: %.40s", b)
	}
}
