package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sentinelsec/sentinel/pkg/rules"
)

// rulesFile is the YAML structure of an optional extra-rules file:
//
//	rules:
//	  - name: Port Scan Detection
//	    predicate:
//	      contains: ["connection refused"]
//	    threshold: 20
//	    window: 30s
//	    group_by: ip
type rulesFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Name      string          `yaml:"name"`
	Predicate rules.Predicate `yaml:"predicate"`
	Threshold int             `yaml:"threshold"`
	Window    duration        `yaml:"window"`
	GroupBy   string          `yaml:"group_by"`
}

// duration decodes Go duration strings ("30s", "5m") from YAML.
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = duration(parsed)
	return nil
}

// LoadRules parses a YAML rules file into rule definitions. The built-in
// rule set is always installed regardless of this file.
func LoadRules(path string) ([]rules.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var parsed rulesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	out := make([]rules.Rule, 0, len(parsed.Rules))
	for _, spec := range parsed.Rules {
		out = append(out, rules.Rule{
			Name:      spec.Name,
			Predicate: spec.Predicate,
			Threshold: spec.Threshold,
			Window:    time.Duration(spec.Window),
			GroupBy:   spec.GroupBy,
		})
	}
	return out, nil
}
