package api

// ConfigureRequest is the HTTP request body for POST /configure.
type ConfigureRequest struct {
	Sources []string `json:"sources"`
}

// ConfigureResponse is returned by POST /configure.
type ConfigureResponse struct {
	Status  string   `json:"status"`
	Sources []string `json:"sources"`
}

// AlertsResponse is returned by GET /alerts.
type AlertsResponse struct {
	Alerts []map[string]any `json:"alerts"`
}

// LogsResponse is returned by GET /logs.
type LogsResponse struct {
	Logs []map[string]any `json:"logs"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status                 string `json:"status"`
	Version                string `json:"version"`
	EngineRunning          bool   `json:"engine_running"`
	ElasticsearchConnected bool   `json:"elasticsearch_connected"`
}
