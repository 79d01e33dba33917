package observability

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmind/internal/agents"
	"mealmind/internal/config"
)

func TestNewTracer_DisabledWithoutKey(t *testing.T) {
	t.Parallel()

	tracer := NewTracer(config.OpikConfig{}, nil)
	_, ok := tracer.(NopTracer)
	assert.True(t, ok)
}

func TestClient_LogAnalysis(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotWorkspace string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotWorkspace = r.Header.Get("Comet-Workspace")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	tracer := NewTracer(config.OpikConfig{
		APIKey:    "opik-key",
		Workspace: "team",
		BaseURL:   srv.URL,
		Project:   "mealmind",
	}, nil)

	result := agents.PipelineResult{
		RequestID:       "req-1",
		Timestamp:       time.Date(2026, 8, 27, 8, 0, 0, 0, time.UTC),
		ConfidenceScore: agents.ConfidenceHigh,
		StageErrors:     map[string]string{"vision": "model unavailable"},
		Vision: &agents.VisionResult{
			Opik: agents.OpikMetadata{Agent: "vision_interpreter", DecisionType: "vision_analysis"},
		},
		DriftDetection: &agents.DriftResult{
			Opik: agents.OpikMetadata{Agent: "drift_detector", DecisionType: "behavioral_drift"},
		},
	}
	tracer.LogAnalysis(context.Background(), result)

	assert.Equal(t, "/v1/private/traces", gotPath)
	assert.Equal(t, "opik-key", gotAuth)
	assert.Equal(t, "team", gotWorkspace)

	var payload struct {
		ProjectName string   `json:"project_name"`
		Name        string   `json:"name"`
		Tags        []string `json:"tags"`
		Metadata    struct {
			RequestID string                `json:"request_id"`
			Agents    []agents.OpikMetadata `json:"agents"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &payload))

	assert.Equal(t, "mealmind", payload.ProjectName)
	assert.Equal(t, "meal_analysis", payload.Name)
	assert.Equal(t, []string{"degraded"}, payload.Tags)
	assert.Equal(t, "req-1", payload.Metadata.RequestID)
	require.Len(t, payload.Metadata.Agents, 2)
	assert.Equal(t, "vision_interpreter", payload.Metadata.Agents[0].Agent)
}

func TestClient_LogAnalysisSwallowsServerErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tracer := NewTracer(config.OpikConfig{APIKey: "k", BaseURL: srv.URL}, nil)

	// Must not panic or block on failure.
	tracer.LogAnalysis(context.Background(), agents.PipelineResult{RequestID: "req-2"})
}
