package core

// Status is the lifecycle state of a single agent within a run.
type Status string

const (
	// StatusPending means the run has started but the agent has produced nothing yet.
	StatusPending Status = "pending"
	// StatusRunning means the agent is actively streaming output.
	StatusRunning Status = "running"
	// StatusComplete is the successful terminal state.
	StatusComplete Status = "complete"
	// StatusError is the failed terminal state.
	StatusError Status = "error"
)

// Terminal reports whether the status is one of the two terminal states.
// Terminal statuses are only left via a new-run reset.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// AgentOutput is the mutable per-run record for one roster member. Content
// accumulates chunk by chunk while running and may be replaced wholesale when
// the terminal completion frame carries full content.
type AgentOutput struct {
	Name         AgentName `json:"agent_name"`
	Status       Status    `json:"status"`
	Content      string    `json:"content"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
}

// NewAgentOutput returns the initial pending record for an agent.
func NewAgentOutput(name AgentName) AgentOutput {
	return AgentOutput{Name: name, Status: StatusPending}
}

// AgentUpdate is a partial update merged into an AgentOutput. Nil fields are
// left untouched so callers can express "set status only" or "set accounting
// only" without clobbering accumulated content.
type AgentUpdate struct {
	Status       *Status
	Content      *string
	InputTokens  *int
	OutputTokens *int
	CostUSD      *float64
}
