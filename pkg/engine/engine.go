// Package engine orchestrates the pipeline: it owns collector lifecycles,
// accumulates per-source batches, drives them through enrichment, scoring
// and rule evaluation, persists them and emits alerts.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelsec/sentinel/pkg/alerting"
	"github.com/sentinelsec/sentinel/pkg/anomaly"
	"github.com/sentinelsec/sentinel/pkg/collector"
	"github.com/sentinelsec/sentinel/pkg/enrich"
	"github.com/sentinelsec/sentinel/pkg/models"
	"github.com/sentinelsec/sentinel/pkg/rules"
	"github.com/sentinelsec/sentinel/pkg/storage"
)

// BatchSize is the per-source batch capacity.
const BatchSize = 100

// trainingLimit bounds the historical events loaded for scorer training.
const trainingLimit = 10000

// drainTimeout bounds batch processing after cancellation, so stop
// completes within one in-flight batch plus one storage call.
const drainTimeout = 30 * time.Second

// ErrNotInitialized is returned by StartMonitoring before Initialize.
var ErrNotInitialized = errors.New("engine not initialized: call Initialize first")

// State is the orchestrator lifecycle state.
type State string

// Lifecycle states: Idle → Initializing → Running → Stopping → Idle.
const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateRunning      State = "running"
	StateStopping     State = "stopping"
)

// Store is the storage contract the engine depends on.
type Store interface {
	EnsureIndex(ctx context.Context) error
	BulkIndex(ctx context.Context, events []*models.Event) error
	Search(ctx context.Context, query map[string]any, size int) []*models.Event
	Ping(ctx context.Context) bool
}

// Engine is the pipeline orchestrator.
type Engine struct {
	store    Store
	enricher *enrich.Enricher
	sinks    []alerting.Sink

	alertThreshold float64
	trainingDays   int
	batchSize      int
	extraRules     []rules.Rule

	// lifecycle serialises Initialize/StartMonitoring/StopMonitoring end to
	// end, including the wait for session goroutines to drain. mu guards the
	// fields below and is never held across a blocking wait.
	lifecycle  sync.Mutex
	mu         sync.Mutex
	state      State
	collectors []*collector.Collector
	detector   *anomaly.Detector
	ruleEngine *rules.Engine
	cancel     context.CancelFunc
	running    *sync.WaitGroup

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithEnricher replaces the default heuristic-only enricher.
func WithEnricher(e *enrich.Enricher) Option {
	return func(g *Engine) { g.enricher = e }
}

// WithSinks appends alert sinks after the always-on log sink.
func WithSinks(sinks ...alerting.Sink) Option {
	return func(g *Engine) {
		for _, s := range sinks {
			if s != nil {
				g.sinks = append(g.sinks, s)
			}
		}
	}
}

// WithAnomalyThreshold sets the anomaly alert threshold. Default -0.5.
func WithAnomalyThreshold(t float64) Option {
	return func(g *Engine) { g.alertThreshold = t }
}

// WithTrainingDays sets the historical training window. Default 7.
func WithTrainingDays(days int) Option {
	return func(g *Engine) { g.trainingDays = days }
}

// WithBatchSize overrides the batch capacity, for tests.
func WithBatchSize(n int) Option {
	return func(g *Engine) { g.batchSize = n }
}

// WithRules registers extra rules on top of the built-in set. They survive
// reconfiguration.
func WithRules(extra ...rules.Rule) Option {
	return func(g *Engine) { g.extraRules = append(g.extraRules, extra...) }
}

// New creates an engine in the Idle state.
func New(store Store, opts ...Option) *Engine {
	g := &Engine{
		store:          store,
		sinks:          []alerting.Sink{alerting.NewLogSink()},
		alertThreshold: -0.5,
		trainingDays:   7,
		batchSize:      BatchSize,
		state:          StateIdle,
		logger:         slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.enricher == nil {
		g.enricher = enrich.New()
	}
	return g
}

// State returns the current lifecycle state.
func (g *Engine) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Sources returns the configured source paths.
func (g *Engine) Sources() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	sources := make([]string, len(g.collectors))
	for i, c := range g.collectors {
		sources[i] = c.Source()
	}
	return sources
}

// Initialize installs the storage index, builds one collector per source,
// recreates the rule engine and trains a fresh anomaly detector on up to
// 10,000 historical events. Absence of historical data leaves the detector
// unfit and is not fatal; neither is a storage failure. Monitoring is
// stopped first if it is running.
func (g *Engine) Initialize(ctx context.Context, sources []string) error {
	g.lifecycle.Lock()
	defer g.lifecycle.Unlock()
	g.stopSession()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateInitializing
	defer func() { g.state = StateIdle }()

	if err := g.store.EnsureIndex(ctx); err != nil {
		g.logger.Error("Failed to ensure storage index", "error", err)
	}

	g.collectors = make([]*collector.Collector, 0, len(sources))
	for _, src := range sources {
		g.collectors = append(g.collectors, collector.New(src))
	}

	g.ruleEngine = rules.NewEngine()
	for _, r := range g.extraRules {
		if err := g.ruleEngine.AddRule(r); err != nil {
			return err
		}
	}

	g.detector = anomaly.NewDetector()
	historical := g.store.Search(ctx, storage.HistoricalRangeQuery(g.trainingDays), trainingLimit)
	if len(historical) == 0 {
		g.logger.Warn("No historical events found for training, anomaly detector is unfit")
		return nil
	}
	if err := g.detector.Fit(historical); err != nil {
		g.logger.Error("Failed to train anomaly detector", "error", err)
		return nil
	}
	g.logger.Info("Trained anomaly detector", "events", len(historical))
	return nil
}

// StartMonitoring spawns one task per source running the collector →
// pipeline path. If monitoring is already running, it is stopped first. A
// concurrent stop is awaited before the new session launches, so at most one
// session exists at any time.
func (g *Engine) StartMonitoring() error {
	g.lifecycle.Lock()
	defer g.lifecycle.Unlock()
	g.stopSession()

	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.collectors) == 0 {
		return ErrNotInitialized
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.running = &sync.WaitGroup{}
	g.state = StateRunning

	g.logger.Info("Starting monitoring", "sources", len(g.collectors))
	for _, col := range g.collectors {
		g.running.Add(1)
		go func(col *collector.Collector) {
			defer g.running.Done()
			g.runSource(ctx, col)
		}(col)
	}
	return nil
}

// StopMonitoring cancels every source task and waits for completion.
// Partial in-flight batches are drained through the pipeline before the
// tasks exit; after StopMonitoring returns, no further storage calls or
// alert emissions occur. A StopMonitoring racing another stop waits for
// that stop to complete. No-op when monitoring is not running.
func (g *Engine) StopMonitoring() {
	g.lifecycle.Lock()
	defer g.lifecycle.Unlock()
	g.stopSession()
}

// stopSession tears down the running session, if any. Caller must hold
// g.lifecycle; holding it across cancel and wait keeps a concurrent start
// from launching a session the stale stop would then orphan.
func (g *Engine) stopSession() {
	g.mu.Lock()
	if g.state != StateRunning {
		g.mu.Unlock()
		return
	}
	g.state = StateStopping
	cancel := g.cancel
	running := g.running
	g.mu.Unlock()

	g.logger.Info("Stopping monitoring")
	cancel()
	running.Wait()

	g.mu.Lock()
	g.state = StateIdle
	g.cancel = nil
	g.running = nil
	g.mu.Unlock()
	g.logger.Info("Monitoring stopped")
}

// runSource is the per-source task body: accumulate a batch of parsed
// events and process it when full. On cancellation the remainder is
// processed before return.
func (g *Engine) runSource(ctx context.Context, col *collector.Collector) {
	batch := make([]*models.Event, 0, g.batchSize)

	err := col.Run(ctx, func(e *models.Event) {
		batch = append(batch, e)
		if len(batch) >= g.batchSize {
			g.processBatch(ctx, batch)
			batch = make([]*models.Event, 0, g.batchSize)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		g.logger.Error("Collector failed", "source", col.Source(), "error", err)
	}

	if len(batch) > 0 {
		// The task context is gone; drain under its own deadline.
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		g.processBatch(drainCtx, batch)
	}
}

// processBatch drives one batch through the pipeline in strict order:
// enrich, score, persist, alert. Every failure is contained within the
// batch.
func (g *Engine) processBatch(ctx context.Context, batch []*models.Event) {
	if len(batch) == 0 {
		return
	}

	for _, e := range batch {
		g.enricher.Enrich(ctx, e)
	}

	fit := g.detector.IsFit()
	if fit {
		scores, err := g.detector.Score(batch)
		if err != nil {
			g.logger.Error("Error during anomaly scoring", "error", err)
			fit = false
			for _, e := range batch {
				e.AnomalyScore = 0.0
			}
		} else {
			for i, e := range batch {
				e.AnomalyScore = scores[i]
			}
		}
	}

	if err := g.store.BulkIndex(ctx, batch); err != nil {
		// Events of a failed batch are lost from persistence; alerts for
		// them are still emitted below.
		g.logger.Error("Failed to persist batch", "size", len(batch), "error", err)
	}

	for _, e := range batch {
		if fit && e.AnomalyScore < g.alertThreshold {
			g.emit(ctx, g.anomalyAlert(e))
		}
		for _, alert := range g.ruleEngine.Evaluate(e) {
			if alert.Recommendation == "" {
				alert.Recommendation = RecommendationFor(e)
			}
			g.emit(ctx, alert)
		}
	}
}

// anomalyAlert builds an alert for an event whose score crossed the
// threshold.
func (g *Engine) anomalyAlert(e *models.Event) *models.Alert {
	score := e.AnomalyScore
	severity := e.Severity
	if severity == "" {
		severity = models.SeverityHigh
	}
	recommendation := e.Recommendation
	if recommendation == "" {
		recommendation = RecommendationFor(e)
	}
	return &models.Alert{
		ID:             uuid.NewString(),
		Timestamp:      e.Timestamp,
		Severity:       severity,
		Source:         e.Source,
		Message:        e.Message,
		AnomalyScore:   &score,
		Recommendation: recommendation,
		Summary:        e.Summary,
		Event:          e,
	}
}

func (g *Engine) emit(ctx context.Context, alert *models.Alert) {
	for _, sink := range g.sinks {
		sink.Deliver(ctx, alert)
	}
}

// StorageHealthy reports whether the document store is reachable.
func (g *Engine) StorageHealthy(ctx context.Context) bool {
	return g.store.Ping(ctx)
}
