package incube

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incube-ai/incube-go/boomerang"
	"github.com/incube-ai/incube-go/core"
	"github.com/incube-ai/incube-go/history"
	"github.com/incube-ai/incube-go/internal/testutil"
)

// fakeBackendServer scripts the REST and streaming surfaces of the platform.
type fakeBackendServer struct {
	mu           sync.Mutex
	streamScript string
	patchBodies  []string
	listCalls    int
}

func (s *fakeBackendServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/perspectives/{id}/boomerang", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		script := s.streamScript
		s.mu.Unlock()
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, script)
	})
	mux.HandleFunc("PATCH /api/perspectives/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.patchBodies = append(s.patchBodies, string(body))
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/journeys/{id}/perspectives", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.listCalls++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"p-1","journey_id":"j-1","dimension":"market","phase":"discovery","status":"completed"}]`)
	})
	return mux
}

func TestClient_RunLifecycleAgainstScriptedServer(t *testing.T) {
	backend := &fakeBackendServer{
		streamScript: testutil.Script(
			testutil.NewFrameBuilder(core.EventPhase).Message("Running specialists"),
			testutil.NewFrameBuilder(core.EventAgentStart).Agent(core.AgentLyra),
			testutil.NewFrameBuilder(core.EventAgentChunk).Agent(core.AgentLyra).Chunk("Market looks "),
			testutil.NewFrameBuilder(core.EventAgentChunk).Agent(core.AgentLyra).Chunk("crowded."),
			testutil.NewFrameBuilder(core.EventAgentComplete).Agent(core.AgentLyra).Usage(120, 340, 0.0041),
			testutil.NewFrameBuilder(core.EventAxiomStart).Agent(core.Challenger),
			testutil.NewFrameBuilder(core.EventAxiomChallenge).Challenge(core.SeverityHigh, "Source?", core.AgentLyra),
			testutil.NewFrameBuilder(core.EventAxiomVerdict).Verdict(core.ResolutionResolved, "Accepted."),
			testutil.NewFrameBuilder(core.EventBoomerangComplete),
		),
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	arch := history.NewInMemoryArchive()
	client := New(srv.URL, func(o *Options) {
		o.SessionToken = "tok-1"
		o.Archive = arch
	})

	require.NoError(t, client.StartRun(context.Background(), "p-1", "j-1", "Assess the market"))

	require.Eventually(t, func() bool {
		return client.RunView().Phase == boomerang.PhaseCompleted
	}, 5*time.Second, 10*time.Millisecond)

	v := client.RunView()
	assert.Equal(t, 2, v.CompletedCount)
	assert.Equal(t, 120, v.InputTokens)
	assert.Equal(t, 340, v.OutputTokens)

	lyra := v.Agents[0]
	assert.Equal(t, core.AgentLyra, lyra.Name)
	assert.Equal(t, "Market looks crowded.", lyra.Content)

	// Completion reconciles the perspective status and refreshes the journey.
	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return len(backend.patchBodies) == 1 && backend.listCalls == 1
	}, 5*time.Second, 10*time.Millisecond)
	backend.mu.Lock()
	assert.JSONEq(t, `{"status":"completed"}`, backend.patchBodies[0])
	backend.mu.Unlock()

	rec, ok := arch.Latest()
	require.True(t, ok)
	assert.Equal(t, boomerang.PhaseCompleted, rec.Outcome)
	assert.Equal(t, "p-1", rec.PerspectiveID)
}

func TestClient_FatalRunSkipsReconciliation(t *testing.T) {
	backend := &fakeBackendServer{
		streamScript: testutil.Script(
			testutil.NewFrameBuilder(core.EventAgentStart).Agent(core.AgentMira),
			testutil.NewFrameBuilder(core.EventBoomerangError).ErrorType("insufficient_credits"),
		),
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client := New(srv.URL)
	require.NoError(t, client.StartRun(context.Background(), "p-1", "j-1", ""))

	require.Eventually(t, func() bool {
		return client.RunView().Phase == boomerang.PhaseFatal
	}, 5*time.Second, 10*time.Millisecond)

	assert.Contains(t, client.RunView().FatalMessage, "credits")

	time.Sleep(100 * time.Millisecond)
	backend.mu.Lock()
	assert.Empty(t, backend.patchBodies)
	backend.mu.Unlock()
}

func TestClient_PerspectivesPassthrough(t *testing.T) {
	backend := &fakeBackendServer{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client := New(srv.URL)
	ps, err := client.Perspectives(context.Background(), "j-1")
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "p-1", ps[0].ID)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("INCUBE_BASE_URL", "http://example.test:8000")
	t.Setenv("INCUBE_SESSION_TOKEN", "tok-env")

	client, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:8000", client.API().BaseURL())
	assert.Equal(t, boomerang.PhaseIdle, client.RunView().Phase)
}
