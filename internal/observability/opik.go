// Package observability exports pipeline traces to Opik. The export is a
// side channel: failures are logged and swallowed, never surfaced to the
// analysis path.
package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mealmind/internal/agents"
	"mealmind/internal/config"
)

// Tracer records one completed analysis.
type Tracer interface {
	LogAnalysis(ctx context.Context, result agents.PipelineResult)
}

// NopTracer discards traces.
type NopTracer struct{}

func (NopTracer) LogAnalysis(context.Context, agents.PipelineResult) {}

// Client exports traces to the Opik REST API.
type Client struct {
	baseURL   string
	apiKey    string
	workspace string
	project   string
	client    *http.Client
	logger    *zap.Logger
}

// NewTracer builds a Tracer from config. An empty API key disables export.
func NewTracer(cfg config.OpikConfig, logger *zap.Logger) Tracer {
	if cfg.APIKey == "" {
		return NopTracer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		workspace: cfg.Workspace,
		project:   cfg.Project,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger.With(zap.String("component", "opik")),
	}
}

type tracePayload struct {
	ProjectName string        `json:"project_name"`
	Name        string        `json:"name"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	Metadata    traceMetadata `json:"metadata"`
	Tags        []string      `json:"tags,omitempty"`
}

type traceMetadata struct {
	RequestID   string                `json:"request_id"`
	Confidence  string                `json:"confidence"`
	StageErrors map[string]string     `json:"stage_errors,omitempty"`
	Agents      []agents.OpikMetadata `json:"agents"`
}

// LogAnalysis posts one trace covering the whole pipeline run, with each
// agent's decision metadata attached.
func (c *Client) LogAnalysis(ctx context.Context, result agents.PipelineResult) {
	payload := tracePayload{
		ProjectName: c.project,
		Name:        "meal_analysis",
		StartTime:   result.Timestamp.UTC().Format(time.RFC3339Nano),
		EndTime:     time.Now().UTC().Format(time.RFC3339Nano),
		Metadata: traceMetadata{
			RequestID:   result.RequestID,
			Confidence:  string(result.ConfidenceScore),
			StageErrors: result.StageErrors,
			Agents:      collectAgentMetadata(result),
		},
	}
	if len(result.StageErrors) > 0 {
		payload.Tags = []string{"degraded"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("trace encode failed", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/private/traces", bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("trace request build failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)
	if c.workspace != "" {
		req.Header.Set("Comet-Workspace", c.workspace)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("trace export failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("trace export rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", result.RequestID))
		return
	}
	c.logger.Debug("trace exported", zap.String("request_id", result.RequestID))
}

// collectAgentMetadata gathers the per-agent decision metadata from whichever
// stages produced results.
func collectAgentMetadata(result agents.PipelineResult) []agents.OpikMetadata {
	var out []agents.OpikMetadata
	add := func(m agents.OpikMetadata) {
		if m.Agent != "" {
			out = append(out, m)
		}
	}
	if result.Vision != nil {
		add(result.Vision.Opik)
	}
	if result.Nutrition != nil {
		add(result.Nutrition.Opik)
	}
	if result.Personalization != nil {
		add(result.Personalization.Opik)
	}
	if result.Wellness != nil {
		add(result.Wellness.Opik)
	}
	if result.DriftDetection != nil {
		add(result.DriftDetection.Opik)
	}
	if result.NextAction != nil {
		add(result.NextAction.Opik)
	}
	if result.GoalGuardian != nil {
		add(result.GoalGuardian.Opik)
	}
	if result.StrategyAdapter != nil {
		add(result.StrategyAdapter.Opik)
	}
	if result.Energy != nil {
		add(result.Energy.Opik)
	}
	if result.Reflection != nil {
		add(result.Reflection.Opik)
	}
	return out
}
