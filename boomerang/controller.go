package boomerang

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/incube-ai/incube-go/api"
	"github.com/incube-ai/incube-go/core"
	"github.com/incube-ai/incube-go/logging"
	"github.com/incube-ai/incube-go/sse"
)

// Backend is the slice of the REST client the controller needs: where the
// streaming endpoint lives, which credentials to attach, and the two calls
// that reconcile a completed run.
type Backend interface {
	BoomerangURL(perspectiveID string) string
	StreamClient() *http.Client
	Header() http.Header
	UpdatePerspectiveStatus(ctx context.Context, perspectiveID string, status api.PerspectiveStatus) error
	ListPerspectives(ctx context.Context, journeyID string) ([]api.Perspective, error)
}

// Archive receives a snapshot of every finished run. Implementations must not
// block; appending is best-effort bookkeeping, not part of run correctness.
type Archive interface {
	Append(rec RunRecord) error
}

// RunRecord is the immutable snapshot of a finished run handed to an Archive.
type RunRecord struct {
	ID            string
	PerspectiveID string
	JourneyID     string
	Outcome       Phase
	Error         string
	StartedAt     time.Time
	EndedAt       time.Time
	Agents        []core.AgentOutput
	Timeline      []core.TimelineEvent
}

// streamHandle is the abort surface of an open stream.
type streamHandle interface {
	Abort()
}

// connectFunc opens a stream; swapped out in tests.
type connectFunc func(ctx context.Context, endpoint string, opts sse.Options) (streamHandle, error)

func sseConnect(ctx context.Context, endpoint string, opts sse.Options) (streamHandle, error) {
	h, err := sse.Connect(ctx, endpoint, opts)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// DefaultStallTimeout is how long the watchdog waits for the next frame
// before flagging the run as stalled.
const DefaultStallTimeout = 45 * time.Second

// Options configures Controller construction.
type Options struct {
	// Store defaults to a fresh core.RunStore. Supply one to share state
	// with other readers.
	Store *core.RunStore

	// StallTimeout defaults to DefaultStallTimeout.
	StallTimeout time.Duration

	// Archive, when set, receives a RunRecord for every finished run.
	Archive Archive

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Controller drives one boomerang run at a time against a perspective. All
// mutation funnels through its mutex, so a frame's effects are atomic with
// respect to View reads. Starting a new run supersedes any previous stream:
// the old generation's callbacks are ignored from that point on.
type Controller struct {
	backend Backend
	connect connectFunc
	logger  logging.Logger
	archive Archive

	stallTimeout time.Duration

	mu            sync.Mutex
	store         *core.RunStore
	phase         Phase
	phaseMessage  string
	fatalMessage  string
	stalled       bool
	generation    string
	perspectiveID string
	journeyID     string
	startedAt     time.Time
	endedAt       time.Time
	handle        streamHandle
	watchdog      *time.Timer
	reconciled    bool
}

// NewController creates a controller bound to a backend.
func NewController(backend Backend, optFns ...func(o *Options)) *Controller {
	opts := Options{
		StallTimeout: DefaultStallTimeout,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = core.NewRunStore()
	}

	return &Controller{
		backend:      backend,
		connect:      sseConnect,
		logger:       opts.Logger,
		archive:      opts.Archive,
		stallTimeout: opts.StallTimeout,
		store:        opts.Store,
		phase:        PhaseIdle,
	}
}

// Store exposes the underlying run store for read-only consumers.
func (c *Controller) Store() *core.RunStore { return c.store }

// Start begins a new run against the given perspective. Any previous stream
// is superseded: its late callbacks are dropped by generation filtering and
// its transport is aborted. Returns an error only for startup failures; once
// the stream is open all outcomes surface through the view.
func (c *Controller) Start(ctx context.Context, perspectiveID, journeyID, prompt string) error {
	c.mu.Lock()
	if c.handle != nil {
		c.handle.Abort()
		c.handle = nil
	}
	c.stopWatchdogLocked()

	gen := uuid.NewString()
	c.generation = gen
	c.perspectiveID = perspectiveID
	c.journeyID = journeyID
	c.phase = PhaseConnecting
	c.phaseMessage = "Connecting to run stream"
	c.fatalMessage = ""
	c.stalled = false
	c.reconciled = false
	c.startedAt = time.Now()
	c.endedAt = time.Time{}
	c.store.StartRun()
	endpoint := c.backend.BoomerangURL(perspectiveID)
	c.mu.Unlock()

	handle, err := c.connect(ctx, endpoint, sse.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"prompt": prompt},
		Header: c.backend.Header(),
		Client: c.backend.StreamClient(),
		OnEvent: func(ev sse.Event) {
			c.handleFrame(gen, core.Frame{Event: ev.Event, Data: json.RawMessage(ev.Data)})
		},
		OnError: func(err error) { c.handleStreamError(gen, err) },
		OnClose: func() { c.handleStreamClose(gen) },
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.phase.Terminal() {
		// Superseded or cancelled while connecting; the stream is unwanted
		// and the phase must not be revived.
		if handle != nil {
			handle.Abort()
		}
		return nil
	}
	if err != nil {
		c.logger.Error("Failed to open run stream", "perspective_id", perspectiveID, "error", err)
		c.fatalMessage = "Could not connect to the run stream."
		c.finishLocked(PhaseFatal)
		return fmt.Errorf("boomerang: start run: %w", err)
	}

	c.handle = handle
	c.phase = PhaseRunning
	c.phaseMessage = "Running specialists"
	c.armWatchdogLocked(gen)
	c.logger.Info("Run started", "perspective_id", perspectiveID, "run_id", gen)
	return nil
}

// Cancel aborts the transport, stops the timers and lowers the running flag
// while leaving all received agent data intact. Calling it again, or after
// the run already ended, is a no-op.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != nil {
		c.handle.Abort()
		c.handle = nil
	}
	if c.phase != PhaseConnecting && c.phase != PhaseRunning {
		return
	}
	c.phaseMessage = "Cancelled by user"
	c.finishLocked(PhaseCancelled)
	c.logger.Info("Run cancelled", "run_id", c.generation)
}

// Reset dismisses the panel: any in-flight run is cancelled and the store is
// returned to its initial, not-running state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != nil {
		c.handle.Abort()
		c.handle = nil
	}
	c.stopWatchdogLocked()
	c.generation = ""
	c.phase = PhaseIdle
	c.phaseMessage = ""
	c.fatalMessage = ""
	c.stalled = false
	c.store.Reset()
}

// finishLocked performs the shared terminal-transition bookkeeping: stop the
// watchdog, freeze the clock, lower the running flag, archive the snapshot.
func (c *Controller) finishLocked(outcome Phase) {
	c.stopWatchdogLocked()
	c.stalled = false
	c.endedAt = time.Now()
	c.phase = outcome
	c.store.StopRun()

	if c.archive != nil {
		rec := RunRecord{
			ID:            c.generation,
			PerspectiveID: c.perspectiveID,
			JourneyID:     c.journeyID,
			Outcome:       outcome,
			Error:         c.fatalMessage,
			StartedAt:     c.startedAt,
			EndedAt:       c.endedAt,
			Agents:        c.store.Agents(),
			Timeline:      c.store.Timeline(),
		}
		if err := c.archive.Append(rec); err != nil {
			c.logger.Warn("Failed to archive run", "run_id", c.generation, "error", err)
		}
	}
}

// handleFrame applies one decoded frame to the store. Stale generations and
// frames arriving after a terminal phase are dropped.
func (c *Controller) handleFrame(gen string, frame core.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.phase.Terminal() {
		return
	}

	// Any accepted frame proves the stream is alive.
	c.stalled = false
	c.armWatchdogLocked(gen)

	now := time.Now()

	switch frame.Event {
	case core.EventPhase:
		var p core.PhasePayload
		if !frame.BindPayload(&p) {
			return
		}
		c.phaseMessage = p.Message
		c.store.AppendTimeline(core.PhaseChange{Timestamp: now, Message: p.Message})

	case core.EventAgentStart:
		var p core.AgentStartPayload
		if !frame.BindPayload(&p) {
			return
		}
		c.store.UpdateAgent(p.Agent, core.AgentUpdate{Status: statusPtr(core.StatusRunning)})
		c.store.AppendTimeline(core.AgentStarted{Timestamp: now, Agent: p.Agent})

	case core.EventAgentChunk:
		var p core.AgentChunkPayload
		if !frame.BindPayload(&p) {
			return
		}
		c.store.AppendAgentContent(p.Agent, p.Chunk)

	case core.EventAgentComplete:
		var p core.AgentCompletePayload
		if !frame.BindPayload(&p) {
			return
		}
		u := core.AgentUpdate{
			Status:       statusPtr(core.StatusComplete),
			InputTokens:  &p.InputTokens,
			OutputTokens: &p.OutputTokens,
			CostUSD:      &p.CostUSD,
		}
		if p.Content != "" {
			u.Content = &p.Content
		}
		c.store.UpdateAgent(p.Agent, u)
		content := p.Content
		if content == "" {
			if out, ok := c.store.Agent(p.Agent); ok {
				content = out.Content
			}
		}
		c.store.AppendTimeline(core.AgentCompleted{Timestamp: now, Agent: p.Agent, Snippet: snippet(content)})

	case core.EventAgentError:
		var p core.AgentErrorPayload
		if !frame.BindPayload(&p) {
			return
		}
		agent := p.Agent
		if agent == "" {
			agent = core.Challenger
		}
		msg := p.Error
		if msg == "" {
			msg = "Agent failed"
		}
		c.store.UpdateAgent(agent, core.AgentUpdate{
			Status:  statusPtr(core.StatusError),
			Content: &msg,
		})
		c.store.AppendTimeline(core.AgentFailed{Timestamp: now, Agent: agent, Error: msg})

	case core.EventBoomerangError:
		var p core.BoomerangErrorPayload
		if !frame.BindPayload(&p) {
			return
		}
		c.fatalMessage = classifyFatal(p.ErrorType, p.Error)
		c.phaseMessage = ""
		c.finishLocked(PhaseFatal)
		c.logger.Error("Run failed", "run_id", gen, "error_type", p.ErrorType, "error", p.Error)

	case core.EventAxiomStart:
		c.store.UpdateAgent(core.Challenger, core.AgentUpdate{Status: statusPtr(core.StatusRunning)})
		c.phaseMessage = "Axiom is challenging the analysis"
		c.store.AppendTimeline(core.PhaseChange{Timestamp: now, Message: c.phaseMessage})

	case core.EventAxiomChallenge:
		var p core.AxiomChallengePayload
		if !frame.BindPayload(&p) {
			return
		}
		sev := p.Severity
		if sev == "" {
			sev = core.SeverityMedium
		}
		c.appendChallengerLocked(formatChallenge(sev, p.TargetedAgents, p.ChallengeText))
		c.phaseMessage = fmt.Sprintf("Axiom challenges %s", joinAgents(p.TargetedAgents))
		c.store.AppendTimeline(core.AxiomChallenge{
			Timestamp: now,
			Agents:    p.TargetedAgents,
			Challenge: p.ChallengeText,
			Severity:  sev,
		})

	case core.EventChallengeResponse:
		var p core.ChallengeResponsePayload
		if !frame.BindPayload(&p) {
			return
		}
		c.appendChallengerLocked(formatResponse(p.Agent, p.Response))
		c.store.AppendTimeline(core.ChallengeResponse{Timestamp: now, Agent: p.Agent, Response: p.Response})

	case core.EventAxiomVerdict:
		var p core.AxiomVerdictPayload
		if !frame.BindPayload(&p) {
			return
		}
		c.appendChallengerLocked(formatVerdict(p.Resolution, p.ResolutionText))
		c.store.AppendTimeline(core.AxiomVerdict{Timestamp: now, Resolution: p.Resolution, Text: p.ResolutionText})

	case core.EventBoomerangComplete:
		c.finalizeChallengerLocked()
		c.phaseMessage = "Boomerang complete"
		c.finishLocked(PhaseCompleted)
		c.reconcileLocked()
		c.logger.Info("Run completed", "run_id", gen)

	default:
		// Unknown event names are ignored for forward compatibility.
	}
}

// finalizeChallengerLocked settles the challenger's record when the stream
// completes while Axiom is still pending or running: complete if it produced
// anything, error otherwise.
func (c *Controller) finalizeChallengerLocked() {
	out, ok := c.store.Agent(core.Challenger)
	if !ok || out.Status.Terminal() {
		return
	}
	if out.Content != "" {
		c.store.UpdateAgent(core.Challenger, core.AgentUpdate{Status: statusPtr(core.StatusComplete)})
		return
	}
	msg := "No Axiom output received"
	c.store.UpdateAgent(core.Challenger, core.AgentUpdate{
		Status:  statusPtr(core.StatusError),
		Content: &msg,
	})
}

// reconcileLocked fires the at-most-once, non-blocking, non-retried status
// reconciliation: mark the perspective completed, then refresh the journey's
// perspective collection. Failures are logged and swallowed; they are not
// part of the run's correctness contract.
func (c *Controller) reconcileLocked() {
	if c.reconciled {
		return
	}
	c.reconciled = true
	perspectiveID, journeyID := c.perspectiveID, c.journeyID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := c.backend.UpdatePerspectiveStatus(ctx, perspectiveID, api.PerspectiveCompleted)
		if err != nil {
			c.logger.Warn("Status reconciliation failed", "perspective_id", perspectiveID, "error", err)
			return
		}
		if journeyID != "" {
			if _, err := c.backend.ListPerspectives(ctx, journeyID); err != nil {
				c.logger.Warn("Perspective refresh failed", "journey_id", journeyID, "error", err)
			}
		}
	}()
}

// handleStreamError reacts to a transport failure after connect. Aborted
// streams never reach here; stale generations are dropped.
func (c *Controller) handleStreamError(gen string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.phase.Terminal() {
		return
	}
	c.logger.Error("Run stream failed", "run_id", gen, "error", err)
	c.fatalMessage = "Connection to the run stream was lost."
	c.phaseMessage = ""
	c.finishLocked(PhaseFatal)
}

// handleStreamClose reacts to clean end-of-input without a terminal frame.
// The run stops without reconciliation; received data stays inspectable.
func (c *Controller) handleStreamClose(gen string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.phase.Terminal() {
		return
	}
	c.phaseMessage = "Stream closed"
	c.finishLocked(PhaseCompleted)
}

// onStallTimeout flags the run as stalled. Advisory only: the stream is left
// open and the next frame clears the flag.
func (c *Controller) onStallTimeout(gen string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.phase != PhaseRunning {
		return
	}
	c.stalled = true
	c.logger.Warn("Run stalled: no frames received", "run_id", gen, "timeout", c.stallTimeout)
}

func (c *Controller) armWatchdogLocked(gen string) {
	c.stopWatchdogLocked()
	c.watchdog = time.AfterFunc(c.stallTimeout, func() { c.onStallTimeout(gen) })
}

func (c *Controller) stopWatchdogLocked() {
	if c.watchdog != nil {
		c.watchdog.Stop()
		c.watchdog = nil
	}
}

func (c *Controller) appendChallengerLocked(block string) {
	c.store.AppendAgentContent(core.Challenger, block)
}

func statusPtr(s core.Status) *core.Status { return &s }

// snippet truncates content for timeline display.
func snippet(content string) string {
	const max = 140
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}

func joinAgents(agents []core.AgentName) string {
	if len(agents) == 0 {
		return "the analysis"
	}
	names := make([]string, len(agents))
	for i, a := range agents {
		if info, ok := core.LookupAgent(a); ok {
			names[i] = info.Label
		} else {
			names[i] = string(a)
		}
	}
	return strings.Join(names, ", ")
}

func formatChallenge(sev core.Severity, agents []core.AgentName, text string) string {
	return fmt.Sprintf("\n[challenge · %s · %s]\n%s\n", sev, joinAgents(agents), text)
}

func formatResponse(agent core.AgentName, text string) string {
	label := string(agent)
	if info, ok := core.LookupAgent(agent); ok {
		label = info.Label
	}
	return fmt.Sprintf("\n[response · %s]\n%s\n", label, text)
}

func formatVerdict(res core.Resolution, text string) string {
	return fmt.Sprintf("\n[verdict · %s]\n%s\n", res, text)
}
