package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"sigs.k8s.io/yaml"
)

// Template types a product may declare. The suffix records the rendering
// dialect, the prefix the structure of the rendered text.
const (
	TypeJSON = "json+jinja2"
	TypeYAML = "yaml+jinja2"
)

// ErrUnsupportedFormat is returned for a template type outside the
// enumerated set.
var ErrUnsupportedFormat = errors.New("unsupported template format")

// ParseDocument parses rendered template text according to the product's
// template type. JSON numbers are kept as json.Number so integer defaults
// survive the round trip unchanged.
func ParseDocument(text, templateType string) (any, error) {
	switch templateType {
	case TypeJSON:
		dec := json.NewDecoder(bytes.NewReader([]byte(text)))
		dec.UseNumber()
		var doc any
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing rendered JSON: %w", err)
		}
		return doc, nil

	case TypeYAML:
		var doc any
		if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
			return nil, fmt.Errorf("parsing rendered YAML: %w", err)
		}
		return doc, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, templateType)
	}
}
