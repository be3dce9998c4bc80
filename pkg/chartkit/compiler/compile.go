package compiler

import (
	"log/slog"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// env is the per-compilation state shared by the family compilers.
type env struct {
	family  Family
	cfg     Config
	theme   builder.ThemeColors
	palette []string
	log     *slog.Logger
}

func newEnv(family Family, cfg Config) *env {
	log := logging.Logger().With("family", string(family))
	theme, err := cfg.Theme.Resolve()
	if err != nil {
		log.Warn("theme skipped", "error", err)
	}
	return &env{
		family:  family,
		cfg:     cfg,
		theme:   theme,
		palette: cfg.EffectivePalette(theme),
		log:     log,
	}
}

// warn logs a non-fatal data problem.
func (e *env) warn(code chartErrors.Code, msg string, args ...interface{}) {
	e.log.Warn(msg, append([]interface{}{"code", string(code)}, args...)...)
}

type familyCompiler func(e *env) models.Option

var compilers = map[Family]familyCompiler{
	FamilyLine:       compileCartesian,
	FamilyBar:        compileCartesian,
	FamilyPie:        compilePie,
	FamilyScatter:    compileScatter,
	FamilyCluster:    compileCluster,
	FamilyRegression: compileRegression,
	FamilySankey:     compileSankey,
	FamilyCalendar:   compileCalendar,
	FamilyGantt:      compileGantt,
}

// Compile produces the rendering specification of cfg for family. Bad data
// never fails compilation: it degrades to fewer or empty series and is
// logged. The only error is an unknown family.
func Compile(family Family, cfg Config) (models.Option, error) {
	fn, ok := compilers[family]
	if !ok {
		parsed, err := ParseFamily(string(family))
		if err != nil {
			return nil, err
		}
		family, fn = parsed, compilers[parsed]
	}

	e := newEnv(family, cfg)
	opt := fn(e)
	if _, ok := opt["series"]; !ok {
		opt["series"] = []interface{}{}
	}
	return ApplyOverride(opt, cfg.Override), nil
}

// merge copies src into dst.
func merge(dst models.Option, src models.Option) models.Option {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// base builds the data-independent part of the specification.
func (e *env) base() models.Option {
	return builder.BuildBase(e.cfg.BaseConfig, e.theme)
}

func (e *env) hasTitle() bool {
	return e.cfg.Title != "" || e.cfg.Subtitle != ""
}

func (e *env) bottomLegend(n int) bool {
	pos := e.cfg.Legend.Position
	return e.cfg.Legend.Visible(n) && (pos == "" || pos == "bottom")
}
