package source

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/compiler"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
	"github.com/xuri/excelize/v2"
)

// chartKind is the family an OOXML plot element maps to.
type chartKind struct {
	family compiler.Family
	area   bool
	donut  bool
}

var chartKinds = map[string]chartKind{
	"lineChart":     {family: compiler.FamilyLine},
	"line3DChart":   {family: compiler.FamilyLine},
	"areaChart":     {family: compiler.FamilyLine, area: true},
	"area3DChart":   {family: compiler.FamilyLine, area: true},
	"barChart":      {family: compiler.FamilyBar},
	"bar3DChart":    {family: compiler.FamilyBar},
	"pieChart":      {family: compiler.FamilyPie},
	"pie3DChart":    {family: compiler.FamilyPie},
	"doughnutChart": {family: compiler.FamilyPie, donut: true},
	"scatterChart":  {family: compiler.FamilyScatter},
	"bubbleChart":   {family: compiler.FamilyScatter},
}

// plotElements lists every OOXML plot element, including the ones that have
// no family.
var plotElements = map[string]bool{
	"radarChart":     true,
	"surfaceChart":   true,
	"surface3DChart": true,
	"stockChart":     true,
	"ofPieChart":     true,
}

// ImportedChart is a chart embedded in a workbook, converted to a
// configuration whose series data was read from the cells it references.
type ImportedChart struct {
	Sheet  string
	Name   string
	Family compiler.Family
	Config compiler.Config
	// Width and Height are the drawing extent in pixels, 0 when unknown.
	Width  int
	Height int
}

type rawSeries struct {
	name    string
	nameRef string
	// catRef holds categories, or x values of scatter series.
	catRef string
	// valRef holds values, or y values of scatter series.
	valRef  string
	sizeRef string
}

type rawAxis struct {
	title    string
	min, max *float64
}

type rawChart struct {
	plot     string
	barDir   string
	grouping string
	holeSize int
	title    string
	xAxis    rawAxis
	yAxis    rawAxis
	series   []rawSeries
}

type anchor struct {
	rID           string
	name          string
	width, height int
}

// ImportCharts reads every chart embedded in the workbook at xlsxPath, in
// sheet and drawing order. Charts of unsupported types or with unreadable
// ranges are logged and skipped.
func ImportCharts(xlsxPath string) ([]ImportedChart, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer r.Close()

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	names, parts, err := sheetParts(&r.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	log := logging.Logger().With("file", xlsxPath)
	var result []ImportedChart
	for _, sheet := range names {
		for _, ref := range sheetCharts(&r.Reader, parts[sheet]) {
			data, err := readZipFile(&r.Reader, ref.part)
			if err != nil || data == nil {
				log.Warn("chart part unreadable", "sheet", sheet, "part", ref.part, "error", err)
				continue
			}
			raw := parseChartXML(data)
			family, cfg, err := resolveChart(f, raw)
			if err != nil {
				log.Warn("chart skipped", "sheet", sheet, "chart", ref.name, "error", err)
				continue
			}
			result = append(result, ImportedChart{
				Sheet:  sheet,
				Name:   ref.name,
				Family: family,
				Config: cfg,
				Width:  ref.width,
				Height: ref.height,
			})
		}
	}
	return result, nil
}

type chartRef struct {
	anchor
	part string
}

// sheetCharts follows worksheet → drawing → chart relationships.
func sheetCharts(r *zip.Reader, sheetPart string) []chartRef {
	sheetRels, err := readZipFile(r, relsPath(sheetPart))
	if err != nil || sheetRels == nil {
		return nil
	}

	var refs []chartRef
	for _, rel := range parseRels(sheetRels) {
		if !strings.Contains(rel.kind, "drawing") {
			continue
		}
		drawingPart := resolvePart(rel.target, path.Dir(sheetPart))
		drawing, err := readZipFile(r, drawingPart)
		if err != nil || drawing == nil {
			continue
		}
		drawingRels, err := readZipFile(r, relsPath(drawingPart))
		if err != nil || drawingRels == nil {
			continue
		}
		targets := make(map[string]string)
		for _, dr := range parseRels(drawingRels) {
			if strings.Contains(dr.kind, "chart") {
				targets[dr.id] = resolvePart(dr.target, path.Dir(drawingPart))
			}
		}
		for _, a := range parseDrawing(drawing) {
			if part, ok := targets[a.rID]; ok {
				refs = append(refs, chartRef{anchor: a, part: part})
			}
		}
	}
	return refs
}

// parseDrawing returns the graphic frames of a drawing that hold charts.
func parseDrawing(data []byte) []anchor {
	var out []anchor
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "graphicFrame" {
			if a := parseGraphicFrame(decoder); a.rID != "" {
				out = append(out, a)
			}
		}
	}
	return out
}

func parseGraphicFrame(decoder *xml.Decoder) anchor {
	var a anchor
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "cNvPr":
				a.name = attr(t, "name")
			case "ext":
				if cx, err := strconv.ParseInt(attr(t, "cx"), 10, 64); err == nil {
					a.width = EMUToPixels(cx)
				}
				if cy, err := strconv.ParseInt(attr(t, "cy"), 10, 64); err == nil {
					a.height = EMUToPixels(cy)
				}
			case "chart":
				a.rID = attr(t, "id")
			}
		case xml.EndElement:
			depth--
		}
	}
	return a
}

// parseChartXML reads the first supported plot of a chart part, its title
// and its value axes.
func parseChartXML(data []byte) rawChart {
	var c rawChart
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch name := se.Name.Local; {
		case name == "title" && c.plot == "" && c.title == "":
			c.title = parseTitle(decoder)
		case chartKinds[name].family != "" || plotElements[name]:
			if c.plot == "" {
				c.plot = name
				parsePlot(decoder, &c)
			}
		case name == "valAx":
			pos, ax := parseValueAxis(decoder)
			if pos == "b" || pos == "t" {
				c.xAxis = ax
			} else {
				c.yAxis = ax
			}
		}
	}
	return c
}

func parseTitle(decoder *xml.Decoder) string {
	var parts []string
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "t" {
				if txt, err := readElementText(decoder); err == nil {
					parts = append(parts, txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

func parsePlot(decoder *xml.Decoder, c *rawChart) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "barDir":
				c.barDir = attr(t, "val")
			case "grouping":
				c.grouping = attr(t, "val")
			case "holeSize":
				c.holeSize, _ = strconv.Atoi(attr(t, "val"))
			case "ser":
				c.series = append(c.series, parseSeries(decoder))
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
}

func parseSeries(decoder *xml.Decoder) rawSeries {
	var s rawSeries
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "tx":
				s.name, s.nameRef = parseReference(decoder)
				depth--
			case "cat", "xVal":
				_, s.catRef = parseReference(decoder)
				depth--
			case "val", "yVal":
				_, s.valRef = parseReference(decoder)
				depth--
			case "bubbleSize":
				_, s.sizeRef = parseReference(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return s
}

// parseReference returns the literal value and formula of a series
// element.
func parseReference(decoder *xml.Decoder) (value, formula string) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "f":
				if txt, err := readElementText(decoder); err == nil {
					formula = strings.TrimSpace(txt)
				}
				depth--
			case "v":
				if txt, err := readElementText(decoder); err == nil && value == "" {
					value = strings.TrimSpace(txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return
}

func parseValueAxis(decoder *xml.Decoder) (pos string, ax rawAxis) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "axPos":
				pos = attr(t, "val")
			case "title":
				ax.title = parseTitle(decoder)
				depth--
			case "min":
				if v, err := strconv.ParseFloat(attr(t, "val"), 64); err == nil {
					ax.min = &v
				}
			case "max":
				if v, err := strconv.ParseFloat(attr(t, "val"), 64); err == nil {
					ax.max = &v
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return
}

// resolveChart turns a parsed chart into a configuration, reading series
// data from the workbook.
func resolveChart(f *excelize.File, raw rawChart) (compiler.Family, compiler.Config, error) {
	kind, ok := chartKinds[raw.plot]
	if !ok {
		return "", compiler.Config{}, chartErrors.New(chartErrors.CodeUnknownFamily, "chart type has no family").
			With("type", raw.plot)
	}
	if len(raw.series) == 0 {
		return "", compiler.Config{}, chartErrors.New(chartErrors.CodeInvalidData, "chart has no series").
			With("type", raw.plot)
	}

	var cfg compiler.Config
	cfg.Title = raw.title
	cfg.XAxis = builder.AxisConfig{Name: raw.xAxis.title, Min: raw.xAxis.min, Max: raw.xAxis.max}
	cfg.YAxis = builder.AxisConfig{Name: raw.yAxis.title, Min: raw.yAxis.min, Max: raw.yAxis.max}

	switch kind.family {
	case compiler.FamilyPie:
		s := raw.series[0]
		names, err := readOptional(f, s.catRef)
		if err != nil {
			return "", cfg, err
		}
		values, err := ReadRange(f, s.valRef)
		if err != nil {
			return "", cfg, err
		}
		for i, v := range values {
			name := interface{}(strconv.Itoa(i + 1))
			if i < len(names) && names[i] != nil {
				name = names[i]
			}
			cfg.Data = append(cfg.Data, map[string]interface{}{"name": name, "value": v})
		}
		if cfg.Title == "" {
			cfg.Title = seriesName(f, s, 0)
		}
		cfg.Pie.Donut = kind.donut
		if kind.donut && raw.holeSize > 0 {
			cfg.Pie.InnerRadius = strconv.Itoa(raw.holeSize*7/10) + "%"
		}

	case compiler.FamilyScatter:
		for i, s := range raw.series {
			xs, err := readOptional(f, s.catRef)
			if err != nil {
				return "", cfg, err
			}
			ys, err := ReadRange(f, s.valRef)
			if err != nil {
				return "", cfg, err
			}
			sizes, err := readOptional(f, s.sizeRef)
			if err != nil {
				return "", cfg, err
			}
			in := compiler.SeriesInput{Name: seriesName(f, s, i)}
			for j, y := range ys {
				var x interface{} = int64(j + 1)
				if j < len(xs) {
					x = xs[j]
				}
				tuple := []interface{}{x, y}
				if j < len(sizes) {
					tuple = append(tuple, sizes[j])
				}
				in.Data = append(in.Data, tuple)
			}
			cfg.Series = append(cfg.Series, in)
		}

	default:
		categories, err := readOptional(f, raw.series[0].catRef)
		if err != nil {
			return "", cfg, err
		}
		cfg.Categories = categories
		for i, s := range raw.series {
			values, err := ReadRange(f, s.valRef)
			if err != nil {
				return "", cfg, err
			}
			cfg.Series = append(cfg.Series, compiler.SeriesInput{Name: seriesName(f, s, i), Data: values})
		}
		switch raw.grouping {
		case "stacked":
			cfg.Stacked = true
		case "percentStacked":
			cfg.Stacked = true
			cfg.StackPercent = true
		}
		cfg.Horizontal = raw.barDir == "bar"
		cfg.Area = kind.area
	}
	return kind.family, cfg, nil
}

func readOptional(f *excelize.File, ref string) ([]interface{}, error) {
	if ref == "" {
		return nil, nil
	}
	return ReadRange(f, ref)
}

// seriesName prefers the cached name, then the referenced cell.
func seriesName(f *excelize.File, s rawSeries, i int) string {
	if s.name != "" {
		return s.name
	}
	if s.nameRef != "" {
		if v, err := ReadRange(f, s.nameRef); err == nil && len(v) > 0 && v[0] != nil {
			return fmt.Sprint(v[0])
		}
	}
	return "Series " + strconv.Itoa(i+1)
}
