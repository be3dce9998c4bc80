// Package source loads chart data and configurations from spreadsheets,
// JSON and YAML files.
package source

import (
	"fmt"
	"strconv"
	"strings"

	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
	"github.com/xuri/excelize/v2"
)

// XLSXOptions selects the block of a workbook read by LoadXLSX.
type XLSXOptions struct {
	// Sheet names the sheet to read. If empty, the sheet named in Range or
	// the first sheet is used.
	Sheet string
	// Range restricts reading to an A1 range such as "B2:D20" or
	// "'Data'!$B$2:$D$20". If empty, the bounding box of non-empty cells
	// is read.
	Range string
	// HeaderRow is the 1-based row of the block holding column names.
	// If 0, the first row is used.
	HeaderRow int
	// NoHeader names columns by their letter and reads every row as data.
	NoHeader bool
}

// Table is a block of sheet rows turned into records.
type Table struct {
	Sheet   string
	Columns []string
	// Records holds one map per non-empty data row, keyed by column name.
	Records []interface{}
}

// Area is a rectangular cell range with 1-based bounds.
type Area struct {
	R1, C1, R2, C2 int
}

// LoadXLSX reads a sheet of the workbook at path into records.
func LoadXLSX(path string, opts XLSXOptions) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	var area *Area
	if opts.Range != "" {
		refSheet, a, err := ParseReference(opts.Range)
		if err != nil {
			return nil, err
		}
		if sheet == "" {
			sheet = refSheet
		}
		area = &a
	}
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, chartErrors.New(chartErrors.CodeInvalidData, "workbook has no sheets").With("file", path)
		}
		sheet = sheets[0]
	}
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, chartErrors.New(chartErrors.CodeInvalidData, "sheet not found").
			With("file", path).
			With("sheet", sheet).
			Suggest(fmt.Sprintf("use one of %s", strings.Join(f.GetSheetList(), ", ")))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if area == nil {
		minRow, maxRow, minCol, maxCol := findDataBounds(rows)
		if minRow < 0 {
			return &Table{Sheet: sheet}, nil
		}
		area = &Area{R1: minRow + 1, C1: minCol + 1, R2: maxRow + 1, C2: maxCol + 1}
	}

	t := buildTable(sheet, cellBlock(rows, *area), *area, opts)
	logging.Logger().Debug("sheet loaded", "file", path, "sheet", sheet,
		"columns", len(t.Columns), "records", len(t.Records))
	return t, nil
}

// cellBlock cuts area out of rows, padding short rows with empty cells.
func cellBlock(rows [][]string, area Area) [][]string {
	block := make([][]string, 0, area.R2-area.R1+1)
	for r := area.R1; r <= area.R2; r++ {
		line := make([]string, area.C2-area.C1+1)
		if r-1 < len(rows) {
			row := rows[r-1]
			for c := area.C1; c <= area.C2 && c-1 < len(row); c++ {
				line[c-area.C1] = row[c-1]
			}
		}
		block = append(block, line)
	}
	return block
}

func buildTable(sheet string, block [][]string, area Area, opts XLSXOptions) *Table {
	t := &Table{Sheet: sheet}
	width := area.C2 - area.C1 + 1

	header := -1
	if !opts.NoHeader && len(block) > 0 {
		header = 0
		if opts.HeaderRow > 0 && opts.HeaderRow <= len(block) {
			header = opts.HeaderRow - 1
		}
	}

	seen := make(map[string]int, width)
	for c := 0; c < width; c++ {
		letter, _ := excelize.ColumnNumberToName(area.C1 + c)
		name := letter
		if header >= 0 {
			if h := strings.TrimSpace(block[header][c]); h != "" {
				name = h
			}
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + "_" + strconv.Itoa(n)
		}
		t.Columns = append(t.Columns, name)
	}

	for i, line := range block {
		if i <= header {
			continue
		}
		rec := make(map[string]interface{}, width)
		for c, cell := range line {
			if cell == "" {
				continue
			}
			rec[t.Columns[c]] = parseValue(cell)
		}
		if len(rec) > 0 {
			t.Records = append(t.Records, rec)
		}
	}
	return t
}

// parseValue returns int64 for integers, float64 for decimals, or the
// original string.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// findDataBounds finds the 0-based bounding box of non-empty cells. All
// bounds are -1 when there are none.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}
	return
}

// ParseReference splits a reference such as 'Sheet 1'!$A$1:$D$10 into its
// sheet name, which may be empty, and area. A single cell is a 1x1 area.
func ParseReference(ref string) (string, Area, error) {
	ref = strings.TrimSpace(ref)
	var sheet string
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		sheet = strings.Trim(ref[:idx], "'")
		sheet = strings.ReplaceAll(sheet, "''", "'")
		ref = ref[idx+1:]
	}
	ref = strings.ReplaceAll(ref, "$", "")

	start, end, found := strings.Cut(ref, ":")
	if !found {
		end = start
	}
	c1, r1, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return "", Area{}, chartErrors.Wrap(chartErrors.CodeInvalidData, err, "range does not parse").With("range", ref)
	}
	c2, r2, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return "", Area{}, chartErrors.Wrap(chartErrors.CodeInvalidData, err, "range does not parse").With("range", ref)
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	return sheet, Area{R1: r1, C1: c1, R2: r2, C2: c2}, nil
}

// ReadRange returns the values of a sheet reference in row-major order.
// Empty cells are nil.
func ReadRange(f *excelize.File, ref string) ([]interface{}, error) {
	sheet, area, err := ParseReference(ref)
	if err != nil {
		return nil, err
	}
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	var out []interface{}
	for r := area.R1; r <= area.R2; r++ {
		for c := area.C1; c <= area.C2; c++ {
			cell, _ := excelize.CoordinatesToCellName(c, r)
			v, err := f.GetCellValue(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s!%s: %w", sheet, cell, err)
			}
			if v == "" {
				out = append(out, nil)
				continue
			}
			out = append(out, parseValue(v))
		}
	}
	return out, nil
}
