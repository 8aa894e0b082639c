// Package storage adapts the pipeline to an Elasticsearch document store.
// Storage failures are contained: they are logged by the adapter or its
// callers and never abort the pipeline.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// indexMapping is the schema installed by EnsureIndex. The raw line and the
// ai_analysis object are stored but not indexed.
const indexMapping = `{
  "mappings": {
    "properties": {
      "timestamp": {"type": "date"},
      "source": {"type": "keyword"},
      "message": {"type": "text"},
      "ip": {"type": "ip"},
      "severity": {"type": "keyword"},
      "anomaly_score": {"type": "float"},
      "ai_analysis": {"type": "object", "enabled": false},
      "raw_log": {"type": "text", "index": false}
    }
  }
}`

// Config holds the Elasticsearch connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Index    string
}

// Client wraps the Elasticsearch API behind the pipeline's storage
// contract: ensure index, bulk index, search, ping. Safe for concurrent
// use by all pipeline tasks.
type Client struct {
	es     *elasticsearch.Client
	index  string
	logger *slog.Logger
}

// NewClient creates a storage client. Connection failures surface on the
// first operation, not here.
func NewClient(cfg Config) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Client{
		es:     es,
		index:  cfg.Index,
		logger: slog.Default().With("component", "storage"),
	}, nil
}

// NewClientWithAddresses creates a client against explicit addresses.
// Useful for tests with a container-provided endpoint.
func NewClientWithAddresses(addresses []string, index string) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Client{
		es:     es,
		index:  index,
		logger: slog.Default().With("component", "storage"),
	}, nil
}

// Index returns the index name the client writes to.
func (c *Client) Index() string { return c.index }

// EnsureIndex installs the index schema if the index does not exist yet.
// Idempotent.
func (c *Client) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index},
		c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index existence check failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	createRes, err := c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))))
	if err != nil {
		return fmt.Errorf("index creation failed: %w", err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return fmt.Errorf("index creation failed: %s", createRes.String())
	}

	c.logger.Info("Created index", "index", c.index)
	return nil
}

// BulkIndex stores a batch of events in one round trip.
func (c *Client) BulkIndex(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, e := range events {
		buf.WriteString(`{"index":{}}` + "\n")
		doc, err := json.Marshal(e.Document())
		if err != nil {
			return fmt.Errorf("failed to encode event document: %w", err)
		}
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	res, err := c.es.Bulk(bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(c.index))
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index failed: %s", res.String())
	}
	return nil
}

// Search runs a structured query and returns the matching events.
// Per the storage contract, errors are logged and an empty result returned.
func (c *Client) Search(ctx context.Context, query map[string]any, size int) []*models.Event {
	body, err := json.Marshal(query)
	if err != nil {
		c.logger.Error("Failed to encode search query", "error", err)
		return nil
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithSize(size))
	if err != nil {
		c.logger.Error("Search failed", "error", err)
		return nil
	}
	defer res.Body.Close()
	if res.IsError() {
		c.logger.Error("Search failed", "response", res.String())
		return nil
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		c.logger.Error("Failed to decode search response", "error", err)
		return nil
	}

	events := make([]*models.Event, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		events = append(events, models.EventFromDocument(hit.Source))
	}
	return events
}

// Ping reports whether the store is reachable.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}
