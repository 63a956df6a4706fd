// Package template implements the product template pipeline: option schema
// validation and defaults merging, Jinja2-compatible rendering, and parsing
// of the rendered text into a structured document.
package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dario.cat/mergo"
)

// ErrInvalidOptions is returned when an instantiation request omits options
// the product schema declares as required.
var ErrInvalidOptions = errors.New("invalid options")

// Schema is the option schema stored in a product's "options" key. Each
// section maps option name to default value; Descriptions is informational.
type Schema struct {
	Required     map[string]any    `json:"required"`
	Optional     map[string]any    `json:"optional"`
	Advanced     map[string]any    `json:"advanced"`
	Descriptions map[string]string `json:"descriptions"`
}

// ParseSchema decodes the JSON option schema text of a product. Numeric
// defaults are kept as json.Number so they render without a float suffix.
func ParseSchema(text string) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var s Schema
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing option schema: %w", err)
	}
	return &s, nil
}

// Validate checks that every required option is present in opts.
func (s *Schema) Validate(opts map[string]any) error {
	var missing []string
	for name := range s.Required {
		if _, ok := opts[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing required option(s) %s",
			ErrInvalidOptions, strings.Join(missing, ", "))
	}
	return nil
}

// MergeDefaults builds the effective option set: schema defaults in the
// order required, optional, advanced (later sections overriding earlier
// ones for duplicate names), with the caller's opts overlaid last.
func (s *Schema) MergeDefaults(opts map[string]any) (map[string]any, error) {
	merged := map[string]any{}
	for _, layer := range []map[string]any{s.Required, s.Optional, s.Advanced, opts} {
		if len(layer) == 0 {
			continue
		}
		if err := mergo.Merge(&merged, layer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging option defaults: %w", err)
		}
	}
	return merged, nil
}
