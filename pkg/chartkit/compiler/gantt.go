package compiler

import (
	"strconv"
	"time"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/data"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// GanttConfig holds gantt-family settings.
type GanttConfig struct {
	TaskField     string `json:"taskField,omitempty" yaml:"taskField,omitempty"`
	CategoryField string `json:"categoryField,omitempty" yaml:"categoryField,omitempty"`
	StartField    string `json:"startField,omitempty" yaml:"startField,omitempty"`
	EndField      string `json:"endField,omitempty" yaml:"endField,omitempty"`
	// ColorField names a field holding a CSS color per task.
	ColorField string `json:"colorField,omitempty" yaml:"colorField,omitempty"`
	// BarHeight is the task bar height as a fraction of the row.
	BarHeight float64 `json:"barHeight,omitempty" yaml:"barHeight,omitempty"`
}

// Task is one gantt bar.
type Task struct {
	Name     string
	Category string
	Start    time.Time
	End      time.Time
	Color    string
}

// Duration returns the task length.
func (t Task) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// timeOf parses a date or a Unix timestamp in milliseconds.
func timeOf(v interface{}) (time.Time, bool) {
	if t, ok := data.ParseTime(v); ok {
		return t, true
	}
	if ms, ok := data.ToFloat(v); ok {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// BuildTasks lifts records into tasks and their ordered categories. A task
// without a category is its own category. Rows with unparseable bounds or an
// end before the start are counted in skipped.
func BuildTasks(records []models.Record, c GanttConfig) (tasks []Task, categories []string, skipped int) {
	taskField := fieldOr(c.TaskField, "name")
	startField, endField := fieldOr(c.StartField, "start"), fieldOr(c.EndField, "end")
	seen := make(map[string]struct{})

	for _, r := range records {
		start, ok1 := timeOf(r[startField])
		end, ok2 := timeOf(r[endField])
		if !ok1 || !ok2 || end.Before(start) {
			skipped++
			continue
		}
		t := Task{Name: data.Key(r[taskField]), Start: start, End: end}
		t.Category = t.Name
		if c.CategoryField != "" && r[c.CategoryField] != nil {
			t.Category = data.Key(r[c.CategoryField])
		}
		if c.ColorField != "" {
			if s, ok := r[c.ColorField].(string); ok && builder.IsColor(s) {
				t.Color = s
			}
		}
		if _, ok := seen[t.Category]; !ok {
			seen[t.Category] = struct{}{}
			categories = append(categories, t.Category)
		}
		tasks = append(tasks, t)
	}
	return tasks, categories, skipped
}

// ganttRenderItem draws each task as a rectangle clipped to the grid.
// Dimensions: 0 category index, 1 start, 2 end.
func ganttRenderItem(barHeight float64) models.JSFunc {
	return models.JSFunc(`function (params, api) {
  var idx = api.value(0);
  var start = api.coord([api.value(1), idx]);
  var end = api.coord([api.value(2), idx]);
  var height = api.size([0, 1])[1] * ` + strconv.FormatFloat(barHeight, 'f', -1, 64) + `;
  var rect = echarts.graphic.clipRectByRect({
    x: start[0], y: start[1] - height / 2, width: end[0] - start[0], height: height
  }, {
    x: params.coordSys.x, y: params.coordSys.y, width: params.coordSys.width, height: params.coordSys.height
  });
  return rect && { type: 'rect', transition: ['shape'], shape: rect, style: api.style() };
}`)
}

const ganttTooltip = models.JSFunc(`function (p) {
  var s = new Date(p.value[1]).toLocaleString();
  var e = new Date(p.value[2]).toLocaleString();
  return p.marker + p.name + '<br/>' + s + ' - ' + e;
}`)

func compileGantt(e *env) models.Option {
	c := e.cfg.Gantt
	cols := []string{fieldOr(c.TaskField, "name"), fieldOr(c.StartField, "start"), fieldOr(c.EndField, "end")}
	if c.CategoryField != "" {
		cols = append(cols, c.CategoryField)
	}
	tasks, categories, skipped := BuildTasks(e.tabular(cols...), c)
	if skipped > 0 {
		e.warn(chartErrors.CodeInvalidData, "tasks with invalid bounds skipped", "count", skipped)
	}

	index := make(map[string]int, len(categories))
	catValues := make([]interface{}, len(categories))
	for i, cat := range categories {
		index[cat] = i
		catValues[i] = cat
	}

	items := make([]interface{}, len(tasks))
	for i, t := range tasks {
		color := t.Color
		if color == "" {
			color = ResolveStyle(index[t.Category], t.Category, models.SeriesStyle{}, e.cfg.SeriesStyles, e.cfg.Style, e.palette).Color
		}
		items[i] = map[string]interface{}{
			"name": t.Name,
			"value": []interface{}{
				index[t.Category],
				t.Start.UnixMilli(),
				t.End.UnixMilli(),
				t.Duration().Milliseconds(),
			},
			"itemStyle": map[string]interface{}{"color": color},
		}
	}

	barHeight := c.BarHeight
	if barHeight <= 0 || barHeight > 1 {
		barHeight = 0.6
	}

	xAxis := builder.ResolveTimeAxis(e.cfg.XAxis, e.theme)
	yAxis := builder.ResolveCategoryAxis(e.cfg.YAxis, catValues, false, e.theme)
	yAxis.Inverse = true

	opt := e.base()
	opt["xAxis"] = builder.BuildAxis(xAxis, e.cfg.XAxis)
	opt["yAxis"] = builder.BuildAxis(yAxis, e.cfg.YAxis)
	opt["series"] = []interface{}{
		map[string]interface{}{
			"type":       "custom",
			"name":       fieldOr(e.cfg.Title, "tasks"),
			"renderItem": ganttRenderItem(barHeight),
			"encode":     map[string]interface{}{"x": []interface{}{1, 2}, "y": 0},
			"data":       items,
		},
	}
	opt["tooltip"] = builder.BuildTooltip(e.cfg.Tooltip, "item", ganttTooltip)
	opt["grid"] = builder.BuildGrid(e.cfg.Grid, e.hasTitle(), false, 0)
	opt["dataZoom"] = []interface{}{
		map[string]interface{}{"type": "slider", "xAxisIndex": 0, "filterMode": "weakFilter"},
		map[string]interface{}{"type": "inside", "xAxisIndex": 0, "filterMode": "weakFilter"},
	}
	return opt
}
