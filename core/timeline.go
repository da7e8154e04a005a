package core

import "time"

// Severity grades an Axiom challenge.
type Severity string

// Challenge severities as emitted by the backend.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Resolution is Axiom's verdict on a challenge.
type Resolution string

// Verdict resolutions as emitted by the backend.
const (
	ResolutionResolved       Resolution = "resolved"
	ResolutionAcceptedRisk   Resolution = "accepted_risk"
	ResolutionActionRequired Resolution = "action_required"
)

// TimelineEvent is one chronological entry in the run log. Concrete types
// implement the unexported isTimelineEvent marker enabling a closed set.
// Entries are append-only and never mutated after insertion.
type TimelineEvent interface {
	isTimelineEvent()
	// When returns the arrival timestamp of the entry.
	When() time.Time
}

// PhaseChange marks a run-phase transition message from the backend.
type PhaseChange struct {
	Timestamp time.Time
	Message   string
}

func (PhaseChange) isTimelineEvent() {}

// When returns the arrival timestamp of the entry.
func (e PhaseChange) When() time.Time { return e.Timestamp }

// AgentStarted records an agent beginning its analysis.
type AgentStarted struct {
	Timestamp time.Time
	Agent     AgentName
}

func (AgentStarted) isTimelineEvent() {}

// When returns the arrival timestamp of the entry.
func (e AgentStarted) When() time.Time { return e.Timestamp }

// AgentCompleted records an agent finishing, with a short content snippet.
type AgentCompleted struct {
	Timestamp time.Time
	Agent     AgentName
	Snippet   string
}

func (AgentCompleted) isTimelineEvent() {}

// When returns the arrival timestamp of the entry.
func (e AgentCompleted) When() time.Time { return e.Timestamp }

// AgentFailed records a per-agent error. The run continues.
type AgentFailed struct {
	Timestamp time.Time
	Agent     AgentName
	Error     string
}

func (AgentFailed) isTimelineEvent() {}

// When returns the arrival timestamp of the entry.
func (e AgentFailed) When() time.Time { return e.Timestamp }

// AxiomChallenge records the challenger questioning one or more specialists.
type AxiomChallenge struct {
	Timestamp time.Time
	Agents    []AgentName
	Challenge string
	Severity  Severity
}

func (AxiomChallenge) isTimelineEvent() {}

// When returns the arrival timestamp of the entry.
func (e AxiomChallenge) When() time.Time { return e.Timestamp }

// ChallengeResponse records a specialist answering a challenge.
type ChallengeResponse struct {
	Timestamp time.Time
	Agent     AgentName
	Response  string
}

func (ChallengeResponse) isTimelineEvent() {}

// When returns the arrival timestamp of the entry.
func (e ChallengeResponse) When() time.Time { return e.Timestamp }

// AxiomVerdict records the challenger's ruling on a challenge.
type AxiomVerdict struct {
	Timestamp  time.Time
	Resolution Resolution
	Text       string
}

func (AxiomVerdict) isTimelineEvent() {}

// When returns the arrival timestamp of the entry.
func (e AxiomVerdict) When() time.Time { return e.Timestamp }
