package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// Rule is a windowed frequency detection rule. Rules are registered at
// construction time and immutable thereafter.
type Rule struct {
	Name      string        `yaml:"name"`
	Predicate Predicate     `yaml:"predicate"`
	Threshold int           `yaml:"threshold"`
	Window    time.Duration `yaml:"window"`
	// GroupBy is the event field that partitions rule state. Default "ip".
	GroupBy string `yaml:"group_by"`
}

// Engine evaluates events against the registered rules, tracking per
// (rule, group key) arrival instants over a sliding window. All access is
// serialised by a single lock; arrival instants are wall-clock evaluation
// times, not event timestamps.
type Engine struct {
	mu    sync.Mutex
	rules []Rule
	// state: rule name → group key → ordered arrival instants within window.
	state  map[string]map[string][]time.Time
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Engine) { g.now = now }
}

// WithoutBuiltinRules skips installation of the default rule set.
func WithoutBuiltinRules() Option {
	return func(g *Engine) { g.rules = g.rules[:0] }
}

// NewEngine creates a rule engine with the built-in rule set installed.
func NewEngine(opts ...Option) *Engine {
	g := &Engine{
		state:  make(map[string]map[string][]time.Time),
		now:    time.Now,
		logger: slog.Default().With("component", "rule-engine"),
	}
	g.rules = append(g.rules, Rule{
		Name:      "Brute Force Detection",
		Predicate: Contains("failed", "auth failure"),
		Threshold: 3,
		Window:    60 * time.Second,
		GroupBy:   "ip",
	})
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddRule registers an additional rule. Registration order determines the
// order alerts are returned when multiple rules match one event.
func (g *Engine) AddRule(r Rule) error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if r.Threshold <= 0 {
		return fmt.Errorf("rule %q: threshold must be positive", r.Name)
	}
	if r.Window <= 0 {
		return fmt.Errorf("rule %q: window must be positive", r.Name)
	}
	if r.GroupBy == "" {
		r.GroupBy = "ip"
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, r)
	return nil
}

// Rules returns the registered rules in registration order.
func (g *Engine) Rules() []Rule {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Reset clears all window state. Called on reconfigure.
func (g *Engine) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = make(map[string]map[string][]time.Time)
}

// Evaluate matches one event against every rule and returns the triggered
// alerts in rule-registration order. A single wall-clock read at entry is
// used for all rules in the call.
//
// When a rule's window count reaches its threshold the alert is emitted and
// the window state for that (rule, key) is cleared, so a subsequent trigger
// requires a full threshold of fresh events in a fresh window (debounce).
func (g *Engine) Evaluate(e *models.Event) []*models.Alert {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	var alerts []*models.Alert

	for _, rule := range g.rules {
		if !rule.Predicate.Match(e) {
			continue
		}
		key := e.Field(rule.GroupBy)
		if key == "" {
			continue
		}

		keyed := g.state[rule.Name]
		if keyed == nil {
			keyed = make(map[string][]time.Time)
			g.state[rule.Name] = keyed
		}

		instants := append(keyed[key], now)

		// Drop instants strictly older than the window start.
		windowStart := now.Add(-rule.Window)
		trimmed := 0
		for trimmed < len(instants) && instants[trimmed].Before(windowStart) {
			trimmed++
		}
		instants = instants[trimmed:]

		if len(instants) >= rule.Threshold {
			alerts = append(alerts, g.buildAlert(rule, e, len(instants), key))
			delete(keyed, key)
			continue
		}
		keyed[key] = instants
	}

	return alerts
}

func (g *Engine) buildAlert(rule Rule, e *models.Event, count int, key string) *models.Alert {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = g.now().UTC()
	}
	msg := fmt.Sprintf("Rule '%s' triggered: %d events in %ds for %s %s",
		rule.Name, count, int(rule.Window.Seconds()), rule.GroupBy, key)

	g.logger.Info("Rule triggered",
		"rule", rule.Name,
		"count", count,
		"window", rule.Window,
		"group_by", rule.GroupBy,
		"key", key)

	return &models.Alert{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Severity:  models.SeverityHigh,
		Source:    e.Source,
		Message:   msg,
		RuleName:  rule.Name,
		Summary:   e.Summary,
		Event:     e,
	}
}
