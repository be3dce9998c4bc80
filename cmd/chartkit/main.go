// Package main provides the CLI entry point for chartkit-go.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/chartkit-go/pkg/chartkit"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/compiler"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/output"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/source"
)

var (
	verbose    bool
	outputPath string
	pretty     bool
	html       bool
	family     string
	configPath string
	sheet      string
	cellRange  string
	headerRow  int
	title      string
	theme      string
	outputDir  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chartkit",
		Short: "Compile chart configurations into rendering specifications",
		Long: `chartkit-go compiles declarative chart configurations and data
(JSON, YAML or Excel) into engine specifications and HTML previews.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			chartkit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")

	compileCmd := &cobra.Command{
		Use:   "compile [data-file]",
		Short: "Compile a chart configuration and optional data file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCompile,
	}
	compileCmd.Flags().StringVarP(&family, "family", "f", string(compiler.FamilyLine), "Chart family")
	compileCmd.Flags().StringVarP(&configPath, "config", "c", "", "Chart configuration file (YAML or JSON)")
	compileCmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read from an Excel data file")
	compileCmd.Flags().StringVar(&cellRange, "range", "", "Cell range to read, e.g. 'Data'!$A$1:$D$20")
	compileCmd.Flags().IntVar(&headerRow, "header-row", 0, "1-based header row within the range (default: first)")
	compileCmd.Flags().StringVar(&title, "title", "", "Chart title")
	compileCmd.Flags().StringVar(&theme, "theme", "", "Named theme: light, dark")
	compileCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	compileCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	compileCmd.Flags().BoolVar(&html, "html", false, "Write a standalone HTML preview instead of JSON")

	familiesCmd := &cobra.Command{
		Use:   "families",
		Short: "List supported chart families",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range compiler.Families() {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
		},
	}

	importCmd := &cobra.Command{
		Use:   "import [input.xlsx]",
		Short: "Convert charts embedded in an Excel file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	importCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Directory for per-chart output files (default: stdout)")
	importCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	importCmd.Flags().BoolVar(&html, "html", false, "Write HTML previews instead of JSON")

	rootCmd.AddCommand(compileCmd, familiesCmd, importCmd)
	return rootCmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	fam, err := compiler.ParseFamily(family)
	if err != nil {
		return err
	}

	var cfg compiler.Config
	if configPath != "" {
		if cfg, err = source.LoadConfigFile(configPath); err != nil {
			return err
		}
	}
	if title != "" {
		cfg.Title = title
	}
	if theme != "" {
		cfg.Theme.Name = theme
	}

	if len(args) == 1 {
		if err := loadData(args[0], fam, &cfg); err != nil {
			return err
		}
	}

	opt, err := chartkit.Compile(fam, cfg)
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}

	data, err := render(opt, cfg)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// loadData reads the data file into cfg by extension. Spreadsheet columns
// fill the x and y fields the configuration leaves unset.
func loadData(path string, fam compiler.Family, cfg *compiler.Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err := source.LoadXLSX(path, source.XLSXOptions{Sheet: sheet, Range: cellRange, HeaderRow: headerRow})
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg.Data = table.Records
		defaultFields(cfg, fam, table.Columns)
	case ".yaml", ".yml":
		loaded, err := source.LoadConfigFile(path)
		if err != nil {
			return err
		}
		cfg.Data = loaded.Data
	default:
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		rows, err := source.LoadJSON(f)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg.Data = rows
	}
	return nil
}

func defaultFields(cfg *compiler.Config, fam compiler.Family, columns []string) {
	if len(columns) < 2 || cfg.XField != "" || cfg.YField != "" || len(cfg.YFields) > 0 {
		return
	}
	switch fam {
	case compiler.FamilyPie:
		if cfg.Pie.NameField == "" && cfg.Pie.ValueField == "" {
			cfg.Pie.NameField, cfg.Pie.ValueField = columns[0], columns[1]
		}
	case compiler.FamilyLine, compiler.FamilyBar:
		cfg.XField = columns[0]
		cfg.YFields = columns[1:]
	default:
		cfg.XField, cfg.YField = columns[0], columns[1]
	}
}

func render(opt models.Option, cfg compiler.Config) ([]byte, error) {
	if !html {
		return output.ToJSON(opt, pretty)
	}
	return output.HTML(opt, output.HTMLOptions{Title: cfg.Title, Theme: cfg.Theme.BaseName()})
}

type importedChart struct {
	Sheet  string        `json:"sheet"`
	Name   string        `json:"name"`
	Family string        `json:"family"`
	Option models.Option `json:"option"`
}

func runImport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	charts, err := source.ImportCharts(inputPath)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	var all []importedChart
	for i, c := range charts {
		opt, err := chartkit.Compile(c.Family, c.Config)
		if err != nil {
			return fmt.Errorf("compile of %s failed: %w", c.Name, err)
		}
		if outputDir == "" {
			all = append(all, importedChart{Sheet: c.Sheet, Name: c.Name, Family: string(c.Family), Option: opt})
			continue
		}
		if err := writeChartFile(outputDir, i, c, opt); err != nil {
			return fmt.Errorf("failed to write chart files: %w", err)
		}
	}
	if outputDir != "" {
		return nil
	}

	var data []byte
	if pretty {
		data, err = json.MarshalIndent(all, "", "  ")
	} else {
		data, err = json.Marshal(all)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func writeChartFile(dir string, i int, c source.ImportedChart, opt models.Option) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	ext := ".json"
	if html {
		ext = ".html"
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s_chart%d%s", c.Sheet, i+1, ext))

	if html {
		width, height := "100%", "600px"
		if c.Width > 0 && c.Height > 0 {
			width, height = fmt.Sprintf("%dpx", c.Width), fmt.Sprintf("%dpx", c.Height)
		}
		return output.WriteHTML(filename, opt, output.HTMLOptions{
			Title:  c.Config.Title,
			Width:  width,
			Height: height,
			Theme:  builder.DefaultThemeName,
		})
	}
	data, err := output.ToJSON(opt, pretty)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
