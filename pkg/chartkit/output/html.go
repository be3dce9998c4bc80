package output

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

const (
	// DefaultEngineURL is the engine script loaded by preview pages.
	DefaultEngineURL = "https://cdn.jsdelivr.net/npm/echarts@6.0.0/dist/echarts.min.js"
	// DefaultStatURL is the statistics extension registering the clustering
	// and regression transforms.
	DefaultStatURL = "https://cdn.jsdelivr.net/npm/echarts-stat@1.2.0/dist/ecStat.min.js"
)

// HTMLOptions configures a preview page.
type HTMLOptions struct {
	Title string
	// Width and Height are CSS sizes of the chart container.
	Width  string
	Height string
	// EngineURL and StatURL override the script sources.
	EngineURL string
	StatURL   string
	// Theme is the named engine theme, "light" when empty.
	Theme string
}

func (o HTMLOptions) withDefaults() HTMLOptions {
	if o.Title == "" {
		o.Title = "Chart"
	}
	if o.Width == "" {
		o.Width = "100%"
	}
	if o.Height == "" {
		o.Height = "600px"
	}
	if o.EngineURL == "" {
		o.EngineURL = DefaultEngineURL
	}
	if o.StatURL == "" {
		o.StatURL = DefaultStatURL
	}
	return o
}

var page = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.EngineURL}}"></script>
{{- if .Stat}}
<script src="{{.StatURL}}"></script>
{{- end}}
<style>
html, body { margin: 0; padding: 0; }
#chart { width: {{.Width}}; height: {{.Height}}; }
</style>
</head>
<body>
<div id="chart"></div>
<script>
(function () {
{{- if .Stat}}
  echarts.registerTransform(ecStat.transform.clustering);
  echarts.registerTransform(ecStat.transform.regression);
{{- end}}
  var chart = echarts.init(document.getElementById('chart'), {{.Theme}});
  chart.setOption({{.Option}});
  window.addEventListener('resize', function () { chart.resize(); });
})();
</script>
</body>
</html>
`))

type pageData struct {
	HTMLOptions
	Stat   bool
	Theme  interface{}
	Option template.JS
	Width  template.CSS
	Height template.CSS
}

// HTML renders a standalone page that draws opt.
func HTML(opt models.Option, opts HTMLOptions) ([]byte, error) {
	opts = opts.withDefaults()
	script, err := ToScript(opt, true)
	if err != nil {
		return nil, err
	}

	data := pageData{
		HTMLOptions: opts,
		Stat:        usesStatTransforms(opt),
		Option:      template.JS(script),
		Width:       template.CSS(opts.Width),
		Height:      template.CSS(opts.Height),
	}
	if opts.Theme != "" && opts.Theme != "light" {
		data.Theme = opts.Theme
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders opt to a page at path.
func WriteHTML(path string, opt models.Option, opts HTMLOptions) error {
	b, err := HTML(opt, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Logger().Info("preview written", "file", path, "bytes", len(b))
	return nil
}

// usesStatTransforms reports whether a dataset of opt runs an ecStat
// transform.
func usesStatTransforms(opt models.Option) bool {
	list, _ := opt["dataset"].([]interface{})
	if m, ok := opt["dataset"].(map[string]interface{}); ok {
		list = []interface{}{m}
	}
	for _, d := range list {
		ds, _ := d.(map[string]interface{})
		tr, _ := ds["transform"].(map[string]interface{})
		if typ, _ := tr["type"].(string); strings.HasPrefix(typ, "ecStat:") {
			return true
		}
	}
	return false
}
