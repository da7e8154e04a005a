package boomerang

import (
	"time"

	"github.com/incube-ai/incube-go/core"
)

// collapseThreshold is the number of agents that must share a byte-identical
// error message before the individual banners collapse into one.
const collapseThreshold = 3

// CollapsedError is one de-duplicated error banner covering several agents.
type CollapsedError struct {
	Message string
	Agents  []core.AgentName
}

// AgentError is one individually displayed per-agent error.
type AgentError struct {
	Agent   core.AgentName
	Message string
}

// View is a read-only snapshot of the run for display. It is self-contained:
// every field is a copy, safe to hold across further frame processing.
type View struct {
	Phase        Phase
	PhaseMessage string
	Running      bool
	Stalled      bool

	// FatalMessage is non-empty for at most one banner per run.
	FatalMessage string

	Agents         []core.AgentOutput
	CompletedCount int
	Total          int
	Progress       float64

	InputTokens  int
	OutputTokens int
	CostUSD      float64

	ElapsedSeconds int

	// CollapsedErrors holds de-duplicated banners for messages shared by at
	// least collapseThreshold agents; IndividualErrors holds the rest.
	CollapsedErrors  []CollapsedError
	IndividualErrors []AgentError

	Timeline []core.TimelineEvent
}

// View derives the current display snapshot from the store and controller
// state. Derivations (progress ratio, totals, elapsed, error collapsing) live
// here so the store stays a plain record table.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Phase:        c.phase,
		PhaseMessage: c.phaseMessage,
		Running:      c.store.Running(),
		Stalled:      c.stalled,
		FatalMessage: c.fatalMessage,
		Agents:       c.store.Agents(),
		Total:        core.RosterSize,
		Timeline:     c.store.Timeline(),
	}

	for _, a := range v.Agents {
		if a.Status == core.StatusComplete {
			v.CompletedCount++
		}
		v.InputTokens += a.InputTokens
		v.OutputTokens += a.OutputTokens
		v.CostUSD += a.CostUSD
	}
	if v.Total > 0 {
		v.Progress = float64(v.CompletedCount) / float64(v.Total)
	}

	if !c.startedAt.IsZero() {
		end := c.endedAt
		if end.IsZero() {
			end = time.Now()
		}
		v.ElapsedSeconds = int(end.Sub(c.startedAt) / time.Second)
	}

	v.CollapsedErrors, v.IndividualErrors = collapseErrors(v.Agents)

	return v
}

// collapseErrors groups error agents by exact message. Groups reaching the
// threshold become one collapsed banner; smaller groups stay individual.
// Roster order is preserved in both outputs.
func collapseErrors(agents []core.AgentOutput) ([]CollapsedError, []AgentError) {
	counts := make(map[string]int)
	for _, a := range agents {
		if a.Status == core.StatusError {
			counts[a.Content]++
		}
	}

	var collapsed []CollapsedError
	var individual []AgentError
	seen := make(map[string]int) // message -> index into collapsed

	for _, a := range agents {
		if a.Status != core.StatusError {
			continue
		}
		if counts[a.Content] >= collapseThreshold {
			idx, ok := seen[a.Content]
			if !ok {
				idx = len(collapsed)
				seen[a.Content] = idx
				collapsed = append(collapsed, CollapsedError{Message: a.Content})
			}
			collapsed[idx].Agents = append(collapsed[idx].Agents, a.Name)
		} else {
			individual = append(individual, AgentError{Agent: a.Name, Message: a.Content})
		}
	}

	return collapsed, individual
}
