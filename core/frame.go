package core

import "encoding/json"

// Event names pushed by the boomerang streaming endpoint. Unknown names are
// ignored by the interpreter.
const (
	EventPhase             = "phase"
	EventAgentStart        = "agent_start"
	EventAgentChunk        = "agent_chunk"
	EventAgentComplete     = "agent_complete"
	EventAgentError        = "agent_error"
	EventBoomerangError    = "boomerang_error"
	EventAxiomStart        = "axiom_start"
	EventAxiomChallenge    = "axiom_challenge"
	EventChallengeResponse = "challenge_response"
	EventAxiomVerdict      = "axiom_verdict"
	EventBoomerangComplete = "boomerang_complete"
)

// Frame is one decoded {event, data} unit from the stream. Data is left raw
// so each handler can bind it to its own payload schema; a payload that fails
// to bind causes the frame to be skipped, never a crash.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// PhasePayload carries a transient phase display message.
type PhasePayload struct {
	Message string `json:"message"`
}

// AgentStartPayload announces that an agent began producing output.
type AgentStartPayload struct {
	Agent AgentName `json:"agent"`
}

// AgentChunkPayload carries an incremental content fragment.
type AgentChunkPayload struct {
	Agent AgentName `json:"agent"`
	Chunk string    `json:"chunk"`
}

// AgentCompletePayload carries the terminal result for one agent. Content may
// be empty, in which case the accumulated chunks stand. Accounting fields
// default to zero when absent.
type AgentCompletePayload struct {
	Agent        AgentName `json:"agent"`
	Content      string    `json:"content"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
}

// AgentErrorPayload reports a failure local to one agent. Agent may be empty
// when the backend cannot attribute the failure.
type AgentErrorPayload struct {
	Agent AgentName `json:"agent"`
	Error string    `json:"error"`
}

// BoomerangErrorPayload reports a fatal, run-terminating failure. ErrorType is
// a machine code from a small known set; Error is the raw message.
type BoomerangErrorPayload struct {
	ErrorType string `json:"error_type"`
	Error     string `json:"error"`
}

// AxiomStartPayload announces the start of the challenge phase.
type AxiomStartPayload struct {
	Agent AgentName `json:"agent"`
}

// AxiomChallengePayload carries one challenge from Axiom to targeted agents.
type AxiomChallengePayload struct {
	ChallengeText  string      `json:"challenge_text"`
	Severity       Severity    `json:"severity"`
	TargetedAgents []AgentName `json:"targeted_agents"`
}

// ChallengeResponsePayload carries a specialist's answer to a challenge.
type ChallengeResponsePayload struct {
	Agent    AgentName `json:"agent"`
	Response string    `json:"response"`
}

// AxiomVerdictPayload carries Axiom's ruling on a challenge.
type AxiomVerdictPayload struct {
	Resolution     Resolution `json:"resolution"`
	ResolutionText string     `json:"resolution_text"`
}

// BindPayload unmarshals the frame data into the given payload struct. It
// reports false for malformed payloads so callers can skip the frame; it never
// returns an error because a bad frame is not an error condition for the run.
func (f Frame) BindPayload(v any) bool {
	if len(f.Data) == 0 {
		return true
	}
	return json.Unmarshal(f.Data, v) == nil
}
