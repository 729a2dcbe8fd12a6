package perspective

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML override file shape. Every field is optional;
// unset fields keep their stock values.
//
// Example:
//
//	conventions: [log_message, summary]
//	time_field: event.created
//	perspectives:
//	  enhanced-recall:
//	    size: 50
//	    minimum_should_match: "66%"
type Config struct {
	// Conventions replaces the field-role candidate list for every
	// perspective.
	Conventions []string `yaml:"conventions"`

	// TimeField replaces the default time field for every perspective.
	TimeField string `yaml:"time_field"`

	// Perspectives holds per-strategy overrides keyed by stable id.
	Perspectives map[string]Overrides `yaml:"perspectives"`
}

// Overrides tunes one perspective. Pointer fields distinguish "unset"
// from zero values (a size of 0 is meaningful).
type Overrides struct {
	Fuzziness          *string `yaml:"fuzziness"`
	MinimumShouldMatch *string `yaml:"minimum_should_match"`
	Size               *int    `yaml:"size"`
	BoostFields        *bool   `yaml:"boost_fields"`
}

// LoadConfig reads a YAML override file. A missing path is not an
// error; it yields an empty config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read perspective config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse perspective config: %w", err)
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// check rejects overrides for identifiers outside the closed set.
func (c *Config) check() error {
	for id := range c.Perspectives {
		known := false
		for _, s := range ids {
			if s == id {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("perspective config: unknown perspective %q", id)
		}
	}
	return nil
}

// Apply returns the stock perspective for k with the config's overrides
// folded in.
func (c *Config) Apply(k Kind) Perspective {
	p := Default(k)
	if len(c.Conventions) > 0 {
		p.Conventions = append([]string(nil), c.Conventions...)
	}
	if c.TimeField != "" {
		p.TimeField = c.TimeField
	}
	if o, ok := c.Perspectives[k.ID()]; ok {
		if o.Fuzziness != nil {
			p.Fuzziness = *o.Fuzziness
		}
		if o.MinimumShouldMatch != nil {
			p.MinimumShouldMatch = *o.MinimumShouldMatch
		}
		if o.Size != nil {
			p.Size = *o.Size
		}
		if o.BoostFields != nil {
			p.BoostFields = *o.BoostFields
		}
	}
	return p
}

// ApplyAll returns the full perspective set with overrides folded in.
func (c *Config) ApplyAll() []Perspective {
	out := make([]Perspective, 0, len(ids))
	for _, k := range All() {
		out = append(out, c.Apply(k))
	}
	return out
}
