package types

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a prediction as reported by Replicate
type Status string

// Prediction statuses from Replicate
const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// InProgress reports whether the remote job is still running.
// Anything outside starting/processing counts as terminal, including
// statuses this package does not know about.
func (s Status) InProgress() bool {
	return s == StatusStarting || s == StatusProcessing
}

// Terminal reports whether the status ends polling
func (s Status) Terminal() bool {
	return !s.InProgress()
}

// ModelVersion is one published version of a model. Only ID is interpreted;
// the remaining provider metadata is kept as returned.
type ModelVersion struct {
	ID            string          `json:"id" yaml:"id"`
	CreatedAt     string          `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	CogVersion    string          `json:"cog_version,omitempty" yaml:"cog_version,omitempty"`
	OpenAPISchema json.RawMessage `json:"openapi_schema,omitempty" yaml:"-"`
}

// VersionList is the body of GET /models/{path}/versions, newest first
type VersionList struct {
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []ModelVersion `json:"results"`
}

// ResolvedModel binds a model path to one concrete version
type ResolvedModel struct {
	Path    string       `json:"path" yaml:"path"`
	Version ModelVersion `json:"version" yaml:"version"`
}

// VersionID returns the id of the selected version
func (m ResolvedModel) VersionID() string {
	return m.Version.ID
}

// PredictionRequest represents a request to create a prediction
type PredictionRequest struct {
	Version string                 `json:"version"`
	Input   map[string]interface{} `json:"input"`
	Webhook string                 `json:"webhook,omitempty"`
}

// Prediction represents a prediction job as returned by Replicate
type Prediction struct {
	ID          string                 `json:"id"`
	Version     string                 `json:"version"`
	Status      Status                 `json:"status"`
	Input       map[string]interface{} `json:"input,omitempty"`
	Output      interface{}            `json:"output"`
	Error       interface{}            `json:"error"`
	Logs        string                 `json:"logs,omitempty"`
	CreatedAt   string                 `json:"created_at,omitempty"`
	StartedAt   *string                `json:"started_at,omitempty"`
	CompletedAt *string                `json:"completed_at,omitempty"`
	URLs        struct {
		Get    string `json:"get,omitempty"`
		Cancel string `json:"cancel,omitempty"`
	} `json:"urls"`
}

// PredictionRecord is what the CLI keeps on disk about a finished prediction
type PredictionRecord struct {
	SchemaVersion string                 `yaml:"schema_version"`
	PredictionID  string                 `yaml:"prediction_id"`
	Model         string                 `yaml:"model"`
	ModelVersion  string                 `yaml:"model_version"`
	Status        Status                 `yaml:"status"`
	Input         map[string]interface{} `yaml:"input,omitempty"`
	Output        interface{}            `yaml:"output,omitempty"`
	Error         *string                `yaml:"error,omitempty"`
	Polls         int                    `yaml:"polls"`
	StartedAt     time.Time              `yaml:"started_at"`
	FinishedAt    time.Time              `yaml:"finished_at"`
}

// Duration is the wall time between start and finish
func (r *PredictionRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
