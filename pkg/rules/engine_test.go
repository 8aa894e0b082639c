package rules

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// fakeClock is a manually-advanced clock for window tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func failedLogin(ip string) *models.Event {
	return &models.Event{
		Timestamp: time.Now().UTC(),
		Source:    "auth.log",
		IP:        ip,
		Message:   "password failed for user admin",
	}
}

func TestBruteForceRule_TriggersOnThirdEvent(t *testing.T) {
	clock := newFakeClock()
	g := NewEngine(WithClock(clock.Now))

	for i := 0; i < 2; i++ {
		assert.Empty(t, g.Evaluate(failedLogin("192.168.1.5")))
		clock.Advance(5 * time.Second)
	}

	alerts := g.Evaluate(failedLogin("192.168.1.5"))
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "Brute Force Detection", a.RuleName)
	assert.Equal(t, models.SeverityHigh, a.Severity)
	assert.Contains(t, a.Message, "3 events")
	assert.Contains(t, a.Message, "192.168.1.5")
	assert.NotEmpty(t, a.ID)
}

func TestBruteForceRule_GroupsByIP(t *testing.T) {
	g := NewEngine()

	assert.Empty(t, g.Evaluate(failedLogin("10.0.0.1")))
	assert.Empty(t, g.Evaluate(failedLogin("10.0.0.2")))
	assert.Empty(t, g.Evaluate(failedLogin("10.0.0.1")))
	assert.Empty(t, g.Evaluate(failedLogin("10.0.0.2")))

	// Third event for each key triggers independently.
	assert.Len(t, g.Evaluate(failedLogin("10.0.0.1")), 1)
	assert.Len(t, g.Evaluate(failedLogin("10.0.0.2")), 1)
}

func TestBruteForceRule_SkipsEventsWithoutGroupKey(t *testing.T) {
	g := NewEngine()
	e := &models.Event{Source: "auth.log", Message: "login failed"}

	for i := 0; i < 10; i++ {
		assert.Empty(t, g.Evaluate(e))
	}
}

func TestBruteForceRule_IgnoresNonMatchingEvents(t *testing.T) {
	g := NewEngine()
	e := &models.Event{Source: "auth.log", IP: "10.0.0.1", Message: "user logged in successfully"}

	for i := 0; i < 10; i++ {
		assert.Empty(t, g.Evaluate(e))
	}
}

func TestEvaluate_WindowExpiry(t *testing.T) {
	clock := newFakeClock()
	g := NewEngine(WithClock(clock.Now), WithoutBuiltinRules())
	require.NoError(t, g.AddRule(Rule{
		Name:      "fast window",
		Predicate: Contains("failed"),
		Threshold: 2,
		Window:    time.Second,
	}))

	assert.Empty(t, g.Evaluate(failedLogin("10.0.0.9")))

	// The first instant falls out of the one-second window before the
	// second event arrives, so the rule never reaches its threshold.
	clock.Advance(1500 * time.Millisecond)
	assert.Empty(t, g.Evaluate(failedLogin("10.0.0.9")))

	clock.Advance(500 * time.Millisecond)
	assert.Len(t, g.Evaluate(failedLogin("10.0.0.9")), 1)
}

// Because state clears on every trigger, a burst of N matching events for
// one key yields exactly floor(N/threshold) alerts.
func TestEvaluate_DebounceYieldsFloorNOverThreshold(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7, 9, 10} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			clock := newFakeClock()
			g := NewEngine(WithClock(clock.Now))

			triggered := 0
			for i := 0; i < n; i++ {
				triggered += len(g.Evaluate(failedLogin("172.16.0.1")))
				clock.Advance(time.Second)
			}
			assert.Equal(t, n/3, triggered)
		})
	}
}

func TestAddRule_Validation(t *testing.T) {
	g := NewEngine()

	assert.Error(t, g.AddRule(Rule{Predicate: Contains("x"), Threshold: 1, Window: time.Second}))
	assert.Error(t, g.AddRule(Rule{Name: "r", Predicate: Contains("x"), Threshold: 0, Window: time.Second}))
	assert.Error(t, g.AddRule(Rule{Name: "r", Predicate: Contains("x"), Threshold: 1, Window: 0}))
	assert.NoError(t, g.AddRule(Rule{Name: "r", Predicate: Contains("x"), Threshold: 1, Window: time.Second}))
}

func TestAddRule_DefaultsGroupByToIP(t *testing.T) {
	g := NewEngine(WithoutBuiltinRules())
	require.NoError(t, g.AddRule(Rule{
		Name:      "r",
		Predicate: Contains("x"),
		Threshold: 1,
		Window:    time.Second,
	}))

	rs := g.Rules()
	require.Len(t, rs, 1)
	assert.Equal(t, "ip", rs[0].GroupBy)
}

func TestEvaluate_AlertsInRegistrationOrder(t *testing.T) {
	g := NewEngine(WithoutBuiltinRules())
	require.NoError(t, g.AddRule(Rule{Name: "first", Predicate: Contains("failed"), Threshold: 1, Window: time.Minute}))
	require.NoError(t, g.AddRule(Rule{Name: "second", Predicate: Contains("admin"), Threshold: 1, Window: time.Minute}))

	alerts := g.Evaluate(failedLogin("10.0.0.3"))
	require.Len(t, alerts, 2)
	assert.Equal(t, "first", alerts[0].RuleName)
	assert.Equal(t, "second", alerts[1].RuleName)
}

func TestEvaluate_GroupByCustomField(t *testing.T) {
	g := NewEngine(WithoutBuiltinRules())
	require.NoError(t, g.AddRule(Rule{
		Name:      "per user",
		Predicate: Contains("failed"),
		Threshold: 2,
		Window:    time.Minute,
		GroupBy:   "user",
	}))

	e := &models.Event{
		Source:  "auth.log",
		Message: "login failed",
		Extras:  map[string]any{"user": "bob"},
	}

	assert.Empty(t, g.Evaluate(e))
	alerts := g.Evaluate(e)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "user bob")
}

func TestReset_ClearsWindowState(t *testing.T) {
	g := NewEngine()

	g.Evaluate(failedLogin("10.0.0.4"))
	g.Evaluate(failedLogin("10.0.0.4"))
	g.Reset()

	// Counting starts over after a reset.
	assert.Empty(t, g.Evaluate(failedLogin("10.0.0.4")))
	assert.Empty(t, g.Evaluate(failedLogin("10.0.0.4")))
	assert.Len(t, g.Evaluate(failedLogin("10.0.0.4")), 1)
}

func TestPredicate_Combinators(t *testing.T) {
	e := &models.Event{IP: "10.0.0.1", Message: "Auth Failure from remote host"}

	assert.True(t, Contains("auth failure").Match(e))
	assert.False(t, Contains("success").Match(e))
	assert.False(t, Predicate{}.Match(e), "empty predicate matches nothing")

	all := Predicate{All: []Predicate{Contains("auth"), Contains("remote")}}
	assert.True(t, all.Match(e))
	all = Predicate{All: []Predicate{Contains("auth"), Contains("missing")}}
	assert.False(t, all.Match(e))

	anyOf := Predicate{Any: []Predicate{Contains("missing"), Contains("remote")}}
	assert.True(t, anyOf.Match(e))

	assert.True(t, Custom(func(e *models.Event) bool { return e.IP != "" }).Match(e))
}

func TestPredicate_FieldSelection(t *testing.T) {
	e := &models.Event{Source: "auth.log", Message: "nothing here"}

	p := Predicate{Contains: []string{"auth"}, Field: "source"}
	assert.True(t, p.Match(e))

	p = Predicate{Contains: []string{"auth"}}
	assert.False(t, p.Match(e), "default field is message")
}
