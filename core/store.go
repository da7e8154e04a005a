package core

import "sync"

// RunStore holds the live state of one boomerang run: one record per roster
// member, a chronological timeline and the run-lifecycle flag. It is safe for
// concurrent access; reads return defensive copies.
//
// Contract:
//   - StartRun reinitializes every record to pending with zeroed counters,
//     clears the timeline and raises the running flag
//   - StopRun lowers the flag only; final agent state stays inspectable
//   - UpdateAgent merges a partial update; unknown names are a silent no-op
//   - Status transitions are monotonic within a run: a terminal record never
//     moves back to pending or running except through StartRun
//   - AppendAgentContent is ignored once the record is terminal
type RunStore struct {
	mu       sync.RWMutex
	agents   map[AgentName]*AgentOutput
	timeline []TimelineEvent
	running  bool
}

// NewRunStore constructs a store with the full roster in pending state and
// the running flag down.
func NewRunStore() *RunStore {
	s := &RunStore{}
	s.initLocked()
	return s
}

// initLocked rebuilds the roster records and clears the timeline. Caller must
// hold the write lock (or own the store exclusively, as in NewRunStore).
func (s *RunStore) initLocked() {
	s.agents = make(map[AgentName]*AgentOutput, RosterSize)
	for _, a := range Roster() {
		out := NewAgentOutput(a.Name)
		s.agents[a.Name] = &out
	}
	s.timeline = nil
}

// StartRun resets all records and raises the running flag.
func (s *RunStore) StartRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
	s.running = true
}

// StopRun lowers the running flag, preserving agent records and timeline.
func (s *RunStore) StopRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Reset is StartRun immediately followed by StopRun: fresh records, flag down.
// Used when dismissing the panel without a run in progress.
func (s *RunStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
	s.running = false
}

// Running reports the run-lifecycle flag.
func (s *RunStore) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// UpdateAgent merges a partial update into the named record. Unrecognized
// names are ignored, not an error: the roster is fixed and protocol drift
// must not crash the client. A status downgrade from a terminal state is
// dropped while the rest of the update still applies.
func (s *RunStore) UpdateAgent(name AgentName, u AgentUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.agents[name]
	if !ok {
		return
	}
	if u.Status != nil {
		if !(out.Status.Terminal() && !u.Status.Terminal()) {
			out.Status = *u.Status
		}
	}
	if u.Content != nil {
		out.Content = *u.Content
	}
	if u.InputTokens != nil {
		out.InputTokens = *u.InputTokens
	}
	if u.OutputTokens != nil {
		out.OutputTokens = *u.OutputTokens
	}
	if u.CostUSD != nil {
		out.CostUSD = *u.CostUSD
	}
}

// AppendAgentContent appends a streamed chunk to the named record. It is a
// no-op for unknown names and for records already in a terminal state, so a
// straggling chunk after agent_complete cannot corrupt final content.
func (s *RunStore) AppendAgentContent(name AgentName, chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.agents[name]
	if !ok || out.Status.Terminal() {
		return
	}
	out.Content += chunk
}

// Agent returns a copy of the named record.
func (s *RunStore) Agent(name AgentName) (AgentOutput, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.agents[name]
	if !ok {
		return AgentOutput{}, false
	}
	return *out, true
}

// Agents returns copies of all records in roster display order.
func (s *RunStore) Agents() []AgentOutput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AgentOutput, 0, len(s.agents))
	for _, a := range Roster() {
		if rec, ok := s.agents[a.Name]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

// AppendTimeline appends unconditionally; entries are never deduplicated.
func (s *RunStore) AppendTimeline(ev TimelineEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline = append(s.timeline, ev)
}

// Timeline returns a copy of the run log in arrival order.
func (s *RunStore) Timeline() []TimelineEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TimelineEvent, len(s.timeline))
	copy(out, s.timeline)
	return out
}
