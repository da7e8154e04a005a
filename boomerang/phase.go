package boomerang

// Phase is the lifecycle state of one run as seen by the client.
type Phase string

// Run phases. Terminal phases are left only via a new Start.
const (
	// PhaseIdle means no run has been started since the last reset.
	PhaseIdle Phase = "idle"
	// PhaseConnecting covers the window between Start and the stream opening.
	PhaseConnecting Phase = "connecting"
	// PhaseRunning means the stream is open and frames are being applied.
	PhaseRunning Phase = "running"
	// PhaseCompleted is the successful terminal phase.
	PhaseCompleted Phase = "completed"
	// PhaseCancelled is the terminal phase after a user-triggered cancel.
	PhaseCancelled Phase = "cancelled"
	// PhaseFatal is the terminal phase after a fatal run error or a dead stream.
	PhaseFatal Phase = "fatal_error"
)

// Terminal reports whether the phase ends the run.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseCancelled || p == PhaseFatal
}
