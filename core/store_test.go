package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(s Status) *Status  { return &s }
func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestRunStore_StartRunInitializesRoster(t *testing.T) {
	s := NewRunStore()
	s.StartRun()

	agents := s.Agents()
	require.Len(t, agents, RosterSize)
	for _, a := range agents {
		assert.Equal(t, StatusPending, a.Status)
		assert.Empty(t, a.Content)
		assert.Zero(t, a.InputTokens)
		assert.Zero(t, a.OutputTokens)
		assert.Zero(t, a.CostUSD)
	}
	assert.True(t, s.Running())
}

func TestRunStore_RosterSizeStable(t *testing.T) {
	s := NewRunStore()
	s.StartRun()

	// Updates for unknown agents must neither grow the table nor error.
	s.UpdateAgent("orchestrator", AgentUpdate{Status: statusPtr(StatusRunning)})
	s.AppendAgentContent("ghost", "boo")

	assert.Len(t, s.Agents(), RosterSize)
	_, ok := s.Agent("orchestrator")
	assert.False(t, ok)
}

func TestRunStore_ChunkAccumulationIsLeftFold(t *testing.T) {
	s := NewRunStore()
	s.StartRun()
	s.UpdateAgent(AgentLyra, AgentUpdate{Status: statusPtr(StatusRunning)})

	s.AppendAgentContent(AgentLyra, "Hello, ")
	s.AppendAgentContent(AgentLyra, "world")

	out, ok := s.Agent(AgentLyra)
	require.True(t, ok)
	assert.Equal(t, "Hello, world", out.Content)
}

func TestRunStore_TerminalStatusRejectsChunks(t *testing.T) {
	s := NewRunStore()
	s.StartRun()
	s.UpdateAgent(AgentLyra, AgentUpdate{
		Status:  statusPtr(StatusComplete),
		Content: strPtr("Final analysis"),
	})

	s.AppendAgentContent(AgentLyra, " trailing chunk")

	out, _ := s.Agent(AgentLyra)
	assert.Equal(t, "Final analysis", out.Content)
	assert.Equal(t, StatusComplete, out.Status)
}

func TestRunStore_StatusTransitionsMonotonic(t *testing.T) {
	s := NewRunStore()
	s.StartRun()
	s.UpdateAgent(AgentMira, AgentUpdate{Status: statusPtr(StatusError)})

	// A late start frame must not revive a terminal record.
	s.UpdateAgent(AgentMira, AgentUpdate{Status: statusPtr(StatusRunning)})
	out, _ := s.Agent(AgentMira)
	assert.Equal(t, StatusError, out.Status)

	// A new run does reset it.
	s.StartRun()
	out, _ = s.Agent(AgentMira)
	assert.Equal(t, StatusPending, out.Status)
}

func TestRunStore_UpdateMergesAccounting(t *testing.T) {
	s := NewRunStore()
	s.StartRun()

	s.UpdateAgent(AgentDex, AgentUpdate{
		Status:       statusPtr(StatusComplete),
		Content:      strPtr("done"),
		InputTokens:  intPtr(120),
		OutputTokens: intPtr(340),
		CostUSD:      floatPtr(0.0041),
	})

	out, _ := s.Agent(AgentDex)
	assert.Equal(t, 120, out.InputTokens)
	assert.Equal(t, 340, out.OutputTokens)
	assert.InDelta(t, 0.0041, out.CostUSD, 1e-9)
}

func TestRunStore_StopRunPreservesState(t *testing.T) {
	s := NewRunStore()
	s.StartRun()
	s.UpdateAgent(AgentNova, AgentUpdate{Status: statusPtr(StatusComplete), Content: strPtr("kept")})
	s.AppendTimeline(AgentStarted{Agent: AgentNova})

	s.StopRun()

	assert.False(t, s.Running())
	out, _ := s.Agent(AgentNova)
	assert.Equal(t, "kept", out.Content)
	assert.Len(t, s.Timeline(), 1)
}

func TestRunStore_ResetClearsEverything(t *testing.T) {
	s := NewRunStore()
	s.StartRun()
	s.UpdateAgent(AgentHalo, AgentUpdate{Content: strPtr("gone")})
	s.AppendTimeline(PhaseChange{Message: "Running specialists"})

	s.Reset()

	assert.False(t, s.Running())
	assert.Empty(t, s.Timeline())
	out, _ := s.Agent(AgentHalo)
	assert.Empty(t, out.Content)
}

func TestRunStore_AgentsReturnsCopies(t *testing.T) {
	s := NewRunStore()
	s.StartRun()

	agents := s.Agents()
	agents[0].Content = "mutated"

	fresh, _ := s.Agent(agents[0].Name)
	if fresh.Content != "" {
		t.Error("Agents should return copies, not internal pointers")
	}
}

func TestRunStore_TimelineAppendOnly(t *testing.T) {
	s := NewRunStore()
	s.StartRun()
	s.AppendTimeline(AgentStarted{Agent: AgentLyra})
	s.AppendTimeline(AgentStarted{Agent: AgentLyra}) // duplicates are kept

	assert.Len(t, s.Timeline(), 2)
}
