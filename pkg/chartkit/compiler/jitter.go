package compiler

import (
	"encoding/json"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
)

// defaultJitter is the jitter amount, as a fraction of the axis data span,
// used when jitter is enabled without explicit dimensions.
const defaultJitter = 0.02

// Jitter spreads overlapping scatter points. It decodes from either a
// boolean or a {width, height} object; dimensions are fractions of the data
// span of the x and y axes.
type Jitter struct {
	Enabled bool    `json:"-" yaml:"-"`
	Width   float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height  float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

type jitterDims struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Amount returns the effective width and height fractions.
func (j *Jitter) Amount() (w, h float64) {
	if j == nil || !j.Enabled {
		return 0, 0
	}
	if j.Width == 0 && j.Height == 0 {
		return defaultJitter, defaultJitter
	}
	return j.Width, j.Height
}

func (j *Jitter) UnmarshalJSON(b []byte) error {
	var on bool
	if err := json.Unmarshal(b, &on); err == nil {
		*j = Jitter{Enabled: on}
		return nil
	}
	var d jitterDims
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*j = Jitter{Enabled: true, Width: d.Width, Height: d.Height}
	return nil
}

func (j Jitter) MarshalJSON() ([]byte, error) {
	if !j.Enabled || j.Width == 0 && j.Height == 0 {
		return json.Marshal(j.Enabled)
	}
	return json.Marshal(jitterDims{Width: j.Width, Height: j.Height})
}

func (j *Jitter) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var on bool
		if err := node.Decode(&on); err != nil {
			return err
		}
		*j = Jitter{Enabled: on}
		return nil
	}
	var d jitterDims
	if err := node.Decode(&d); err != nil {
		return err
	}
	*j = Jitter{Enabled: true, Width: d.Width, Height: d.Height}
	return nil
}

// jitterer produces deterministic offsets for one series, so recompiling the
// same input yields the same specification.
type jitterer struct {
	rng    *rand.Rand
	dx, dy float64
}

func newJitterer(series int, w, h, spanX, spanY float64) *jitterer {
	return &jitterer{
		rng: rand.New(rand.NewPCG(uint64(series)+1, 0x9e3779b97f4a7c15)),
		dx:  w * spanX,
		dy:  h * spanY,
	}
}

func (j *jitterer) offset() (float64, float64) {
	var x, y float64
	if j.dx > 0 {
		x = (j.rng.Float64()*2 - 1) * j.dx
	}
	if j.dy > 0 {
		y = (j.rng.Float64()*2 - 1) * j.dy
	}
	return x, y
}
