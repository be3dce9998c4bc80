package compiler

import (
	"math"
	"reflect"
	"testing"
	"time"

	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

func TestAggregateSlices(t *testing.T) {
	got := AggregateSlices(
		[]string{"a", "b", "a", "c"},
		[]interface{}{1, -2.0, 3.0, "x"},
	)
	expected := []Slice{{"a", 4}, {"b", 0}, {"c", 0}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("AggregateSlices = %v, expected %v", got, expected)
	}
}

func TestCompilePie(t *testing.T) {
	cfg := Config{
		Data: []interface{}{
			map[string]interface{}{"name": "a", "value": 1},
			map[string]interface{}{"name": "b", "value": 3},
		},
		Pie: PieConfig{Donut: true},
	}
	opt, err := Compile(FamilyPie, cfg)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	s := seriesAt(t, opt, 0)
	if !reflect.DeepEqual(s["radius"], []interface{}{"40%", "70%"}) {
		t.Errorf("Donut radius = %v", s["radius"])
	}
	items := s["data"].([]interface{})
	if len(items) != 2 || items[1].(map[string]interface{})["value"] != 3.0 {
		t.Errorf("Unexpected slices: %v", items)
	}
	if s["label"].(map[string]interface{})["formatter"] != "{b}: {d}%" {
		t.Errorf("Expected percent labels, got %v", s["label"])
	}
}

func TestBuildGraph(t *testing.T) {
	rows := []models.Record{
		{"source": "A", "target": "B", "value": 5},
		{"source": "A", "target": "B", "value": 3},
		{"source": "B", "target": "B", "value": 1},
		{"source": "B", "target": "C", "value": 2},
		{"source": nil, "target": "C", "value": 2},
	}
	g := BuildGraph(rows, "source", "target", "value")
	if !reflect.DeepEqual(g.Nodes, []string{"A", "B", "C"}) {
		t.Errorf("Nodes = %v, expected [A B C]", g.Nodes)
	}
	expected := []Link{{"A", "B", 8}, {"B", "C", 2}}
	if !reflect.DeepEqual(g.Links, expected) {
		t.Errorf("Links = %v, expected %v", g.Links, expected)
	}
	if g.SelfLoops != 1 {
		t.Errorf("SelfLoops = %d, expected 1", g.SelfLoops)
	}
}

func TestCompileSankeyTuples(t *testing.T) {
	cfg := Config{Data: []interface{}{
		[]interface{}{"in", "out", 4},
	}}
	opt, _ := Compile(FamilySankey, cfg)
	s := seriesAt(t, opt, 0)
	if s["type"] != "sankey" || len(s["data"].([]interface{})) != 2 || len(s["links"].([]interface{})) != 1 {
		t.Errorf("Unexpected sankey series: %v", s)
	}
}

func TestAggregateDays(t *testing.T) {
	rows := []models.Record{
		{"date": "2024-01-02", "value": 1},
		{"date": "2024-01-02T10:00:00Z", "value": 2},
		{"date": "2024-01-01", "value": 5},
		{"date": "not a date", "value": 5},
	}
	days, skipped := AggregateDays(rows, "date", "value")
	expected := []Day{{"2024-01-01", 5}, {"2024-01-02", 3}}
	if !reflect.DeepEqual(days, expected) {
		t.Errorf("AggregateDays = %v, expected %v", days, expected)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, expected 1", skipped)
	}
}

func TestCompileCalendar(t *testing.T) {
	cfg := Config{Data: []interface{}{
		map[string]interface{}{"date": "2024-03-01", "value": 2},
		map[string]interface{}{"date": "2024-03-02", "value": 6},
	}}
	opt, _ := Compile(FamilyCalendar, cfg)
	cal := opt["calendar"].(map[string]interface{})
	if cal["range"] != "2024" {
		t.Errorf("range = %v, expected 2024", cal["range"])
	}
	vm := opt["visualMap"].(map[string]interface{})
	if vm["min"] != 2.0 || vm["max"] != 6.0 {
		t.Errorf("visualMap bounds = [%v %v], expected [2 6]", vm["min"], vm["max"])
	}
	colors := vm["inRange"].(map[string]interface{})["color"].([]interface{})
	if len(colors) != heatSteps {
		t.Errorf("Expected %d colors, got %d", heatSteps, len(colors))
	}

	cfg.Data = append(cfg.Data, map[string]interface{}{"date": "2025-01-01", "value": 1})
	opt, _ = Compile(FamilyCalendar, cfg)
	if got := opt["calendar"].(map[string]interface{})["range"]; !reflect.DeepEqual(got, []interface{}{"2024-03-01", "2025-01-01"}) {
		t.Errorf("Expected a span across years, got %v", got)
	}
}

func TestBuildTasks(t *testing.T) {
	rows := []models.Record{
		{"name": "design", "team": "ux", "start": "2024-01-01", "end": "2024-01-05", "color": "#ff0000"},
		{"name": "build", "team": "dev", "start": "2024-01-03", "end": "2024-01-10"},
		{"name": "review", "team": "ux", "start": "2024-01-10", "end": "2024-01-09"},
		{"name": "ship", "start": int64(1704067200000), "end": int64(1704153600000)},
	}
	tasks, categories, skipped := BuildTasks(rows, GanttConfig{CategoryField: "team", ColorField: "color"})
	if skipped != 1 {
		t.Errorf("skipped = %d, expected 1", skipped)
	}
	if !reflect.DeepEqual(categories, []string{"ux", "dev", "ship"}) {
		t.Errorf("categories = %v, expected [ux dev ship]", categories)
	}
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].Color != "#ff0000" || tasks[0].Duration() != 4*24*time.Hour {
		t.Errorf("Unexpected first task: %+v", tasks[0])
	}
	if tasks[2].Duration() != 24*time.Hour {
		t.Errorf("Expected timestamp bounds to parse, got %v", tasks[2].Duration())
	}
}

func TestCompileGantt(t *testing.T) {
	cfg := Config{Data: []interface{}{
		map[string]interface{}{"name": "a", "start": "2024-01-01", "end": "2024-01-02"},
	}}
	opt, _ := Compile(FamilyGantt, cfg)
	s := seriesAt(t, opt, 0)
	if s["type"] != "custom" {
		t.Errorf("Expected custom series, got %v", s["type"])
	}
	if _, ok := s["renderItem"].(models.JSFunc); !ok {
		t.Errorf("Expected renderItem function, got %T", s["renderItem"])
	}
	value := s["data"].([]interface{})[0].(map[string]interface{})["value"].([]interface{})
	if value[0] != 0 || value[3] != int64(24*time.Hour/time.Millisecond) {
		t.Errorf("Unexpected task value: %v", value)
	}
	if opt["xAxis"].(map[string]interface{})["type"] != "time" {
		t.Errorf("Expected time axis")
	}
}

func TestFitRegression(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	linear := make([]float64, len(xs))
	quad := make([]float64, len(xs))
	exp := make([]float64, len(xs))
	for i, x := range xs {
		linear[i] = 2*x + 1
		quad[i] = x*x - 3
		exp[i] = 2 * math.Exp(0.5*x)
	}

	tests := []struct {
		name    string
		method  RegressionMethod
		order   int
		ys      []float64
		formula string
	}{
		{"linear", MethodLinear, 0, linear, "y = 2x + 1"},
		{"polynomial", MethodPolynomial, 2, quad, "y = 1x^2 - 3"},
		{"exponential", MethodExponential, 0, exp, "y = 2e^(0.5x)"},
	}
	for _, tt := range tests {
		f, err := FitRegression(tt.method, tt.order, xs, tt.ys)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if got := f.Formula(); got != tt.formula {
			t.Errorf("%s: formula = %q, expected %q", tt.name, got, tt.formula)
		}
		if math.Abs(f.RSquared-1) > 1e-6 {
			t.Errorf("%s: R² = %v, expected 1", tt.name, f.RSquared)
		}
	}

	_, err := FitRegression(MethodLogarithmic, 0, []float64{0, 1, 2}, []float64{1, 2, 3})
	if chartErrors.CodeOf(err) != chartErrors.CodeTransform {
		t.Errorf("Expected transform-failed for non-positive x, got %v", err)
	}
	_, err = FitRegression(MethodPolynomial, 3, []float64{1, 1, 2}, []float64{1, 2, 3})
	if chartErrors.CodeOf(err) != chartErrors.CodeTransform {
		t.Errorf("Expected transform-failed for too few points, got %v", err)
	}
}

func TestCompileRegression(t *testing.T) {
	cfg := Config{
		Data: []interface{}{
			[]interface{}{1.0, 3.0},
			[]interface{}{2.0, 5.0},
			[]interface{}{3.0, 7.0},
		},
		Regression: RegressionConfig{ShowFormula: true},
	}
	opt, _ := Compile(FamilyRegression, cfg)

	dataset := opt["dataset"].([]interface{})
	transform := dataset[1].(map[string]interface{})["transform"].(map[string]interface{})
	if transform["type"] != transformRegression {
		t.Errorf("Expected regression transform, got %v", transform["type"])
	}
	if transform["config"].(map[string]interface{})["method"] != "linear" {
		t.Errorf("Expected linear method, got %v", transform["config"])
	}
	line := seriesAt(t, opt, 1)
	if line["datasetIndex"] != 1 || line["name"] != "y = 2x + 1" {
		t.Errorf("Unexpected trend series: %v", line)
	}

	cfg.Regression.Method = MethodExponential
	cfg.Data = append(cfg.Data, []interface{}{4.0, -1.0})
	opt, _ = Compile(FamilyRegression, cfg)
	if name := seriesAt(t, opt, 1)["name"]; name != "trend" {
		t.Errorf("Expected formula to be omitted, got %v", name)
	}
}

func TestCompileCluster(t *testing.T) {
	cfg := Config{
		Data: []interface{}{
			[]interface{}{1.0, 1.0},
			[]interface{}{1.2, 0.8},
			[]interface{}{8.0, 9.0},
		},
		Cluster: ClusterConfig{ClusterCount: 2},
	}
	opt, _ := Compile(FamilyCluster, cfg)

	dataset := opt["dataset"].([]interface{})
	source := dataset[0].(map[string]interface{})["source"].([]interface{})
	if len(source) != 3 {
		t.Errorf("Expected 3 source rows, got %d", len(source))
	}
	transform := dataset[1].(map[string]interface{})["transform"].(map[string]interface{})
	config := transform["config"].(map[string]interface{})
	if transform["type"] != transformClustering || config["clusterCount"] != 2 {
		t.Errorf("Unexpected transform: %v", transform)
	}
	if seriesAt(t, opt, 0)["datasetIndex"] != 1 {
		t.Errorf("Expected series to reference the derived stage")
	}
	pieces := opt["visualMap"].(map[string]interface{})["pieces"].([]interface{})
	if len(pieces) != 2 {
		t.Errorf("Expected a visual-map piece per cluster, got %d", len(pieces))
	}
}
