package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/compiler"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"gopkg.in/yaml.v3"
)

// LoadJSON decodes a JSON array of records or tuples. A single object with
// a "data" array is accepted as well.
func LoadJSON(r io.Reader) ([]interface{}, error) {
	var v interface{}
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, chartErrors.Wrap(chartErrors.CodeInvalidData, err, "data is not valid JSON")
	}
	switch t := v.(type) {
	case []interface{}:
		return t, nil
	case map[string]interface{}:
		if rows, ok := t["data"].([]interface{}); ok {
			return rows, nil
		}
	}
	return nil, chartErrors.New(chartErrors.CodeInvalidData, "data must be an array of records or tuples").
		With("type", fmt.Sprintf("%T", v)).
		Suggest(`wrap the rows in [...] or {"data": [...]}`)
}

// LoadConfig reads a chart configuration in YAML or JSON.
func LoadConfig(r io.Reader) (compiler.Config, error) {
	var cfg compiler.Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return compiler.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads the chart configuration at path.
func LoadConfigFile(path string) (compiler.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return compiler.Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()
	return LoadConfig(file)
}
