// Package rules implements time-windowed frequency detection over the event
// stream. Rules are data: predicates are a small combinator form that can be
// declared in configuration files as well as in code.
package rules

import (
	"strings"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// Predicate decides whether an event is relevant to a rule. Exactly one of
// the variant fields is normally set: Contains matches when the target field
// contains any listed keyword (case-insensitive), All and Any combine child
// predicates, and a custom function is attached with Custom. An empty
// predicate matches nothing.
type Predicate struct {
	// Contains lists keywords matched case-insensitively against Field.
	Contains []string `yaml:"contains,omitempty"`
	// Field is the event field Contains matches against. Default "message".
	Field string `yaml:"field,omitempty"`

	All []Predicate `yaml:"all,omitempty"`
	Any []Predicate `yaml:"any,omitempty"`

	custom func(*models.Event) bool
}

// Custom wraps an arbitrary match function as a predicate. Custom
// predicates are not serialisable.
func Custom(fn func(*models.Event) bool) Predicate {
	return Predicate{custom: fn}
}

// Contains builds a keyword predicate over the message field.
func Contains(keywords ...string) Predicate {
	return Predicate{Contains: keywords}
}

// Match evaluates the predicate against an event.
func (p Predicate) Match(e *models.Event) bool {
	switch {
	case p.custom != nil:
		return p.custom(e)
	case len(p.All) > 0:
		for _, child := range p.All {
			if !child.Match(e) {
				return false
			}
		}
		return true
	case len(p.Any) > 0:
		for _, child := range p.Any {
			if child.Match(e) {
				return true
			}
		}
		return false
	case len(p.Contains) > 0:
		field := p.Field
		if field == "" {
			field = "message"
		}
		value := strings.ToLower(e.Field(field))
		for _, kw := range p.Contains {
			if strings.Contains(value, strings.ToLower(kw)) {
				return true
			}
		}
		return false
	}
	return false
}
