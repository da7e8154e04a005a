// Command incube is a terminal client for the InCube analysis platform. It
// starts a boomerang run against one perspective and renders the nine-agent
// execution live: per-agent status cards, streamed output sizes, challenge
// rounds and the final verdict.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	incube "github.com/incube-ai/incube-go"
	"github.com/incube-ai/incube-go/boomerang"
	"github.com/incube-ai/incube-go/config"
	"github.com/incube-ai/incube-go/core"
	"github.com/incube-ai/incube-go/logging"
)

const (
	pollInterval     = 100 * time.Millisecond
	timelineMaxLines = 8
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	phaseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	stalledStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	fatalStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errorAggStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(24)
	runningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	timelineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

type appFlags struct {
	journeyID     string
	perspectiveID string
	prompt        string
	logPath       string
	altScreen     bool
}

func parseFlags() appFlags {
	var f appFlags
	flag.StringVar(&f.journeyID, "journey", "", "journey id owning the perspective")
	flag.StringVar(&f.perspectiveID, "perspective", "", "perspective id to run")
	flag.StringVar(&f.prompt, "prompt", "", "optional analysis prompt override")
	flag.StringVar(&f.logPath, "log", "", "append structured logs to this file")
	flag.BoolVar(&f.altScreen, "alt-screen", true, "render in the terminal alternate screen")
	flag.Parse()
	return f
}

type tickMsg time.Time

type runStartedMsg struct{ err error }

type model struct {
	client        *incube.Client
	perspectiveID string
	journeyID     string
	prompt        string

	spinner  spinner.Model
	progress progress.Model
	view     boomerang.View
	width    int
	startErr error
	quitting bool
}

func newModel(client *incube.Client, f appFlags) model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = runningStyle
	pb := progress.New(progress.WithDefaultGradient())
	pb.Width = 40
	return model{
		client:        client,
		perspectiveID: f.perspectiveID,
		journeyID:     f.journeyID,
		prompt:        f.prompt,
		spinner:       sp,
		progress:      pb,
		view:          client.RunView(),
	}
}

func (m model) Init() tea.Cmd {
	start := func() tea.Msg {
		return runStartedMsg{err: m.client.StartRun(context.Background(), m.perspectiveID, m.journeyID, m.prompt)}
	}
	return tea.Batch(m.spinner.Tick, start, tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.client.CancelRun()
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.client.CancelRun()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(msg.Width-8, 60)
		return m, nil

	case runStartedMsg:
		m.startErr = msg.err
		return m, nil

	case tickMsg:
		m.view = m.client.RunView()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(titleStyle.Render("InCube Boomerang"))
	b.WriteString(phaseStyle.Render(fmt.Sprintf("  perspective %s", m.perspectiveID)))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(m.view.Progress))
	b.WriteString(phaseStyle.Render(fmt.Sprintf("  %d/%d agents", m.view.CompletedCount, m.view.Total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderAgentGrid())
	b.WriteString("\n")

	if banner := renderErrorBanners(m.view); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}

	if tl := renderTimeline(m.view.Timeline, timelineMaxLines); tl != "" {
		b.WriteString(timelineStyle.Render(tl))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(fmt.Sprintf(
		"elapsed %s · in %d tok · out %d tok · $%.4f   [c] cancel  [q] quit",
		formatElapsed(m.view.ElapsedSeconds), m.view.InputTokens, m.view.OutputTokens, m.view.CostUSD,
	)))
	b.WriteString("\n")
	return b.String()
}

func (m model) renderStatusLine() string {
	v := m.view
	switch {
	case m.startErr != nil:
		return fatalStyle.Render("✗ " + m.startErr.Error())
	case v.FatalMessage != "":
		return fatalStyle.Render("✗ " + v.FatalMessage)
	case v.Stalled:
		return stalledStyle.Render("⚠ Stream stalled, still listening for frames")
	case v.Running:
		msg := v.PhaseMessage
		if msg == "" {
			msg = "Running"
		}
		return m.spinner.View() + " " + phaseStyle.Render(msg)
	default:
		return phaseStyle.Render(string(v.Phase) + statusSuffix(v.PhaseMessage))
	}
}

func statusSuffix(msg string) string {
	if msg == "" {
		return ""
	}
	return " · " + msg
}

func (m model) renderAgentGrid() string {
	cards := make([]string, 0, len(m.view.Agents))
	for _, a := range m.view.Agents {
		cards = append(cards, renderAgentCard(a))
	}
	perRow := 3
	if m.width > 0 && m.width/26 > 0 {
		perRow = max(1, min(m.width/26, 3))
	}
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderAgentCard(a core.AgentOutput) string {
	info, _ := core.LookupAgent(a.Name)
	label := info.Label
	if label == "" {
		label = string(a.Name)
	}
	glyph, style := statusGlyph(a.Status)
	detail := agentDetail(a)
	return cardStyle.Render(style.Render(glyph+" "+label) + "\n" + pendingStyle.Render(detail))
}

// statusGlyph maps an agent status to its marker and display style.
func statusGlyph(s core.Status) (string, lipgloss.Style) {
	switch s {
	case core.StatusRunning:
		return "◐", runningStyle
	case core.StatusComplete:
		return "●", completeStyle
	case core.StatusError:
		return "✗", errStyle
	default:
		return "○", pendingStyle
	}
}

// agentDetail summarizes one agent card's second line.
func agentDetail(a core.AgentOutput) string {
	switch a.Status {
	case core.StatusComplete:
		return fmt.Sprintf("%d tok · $%.4f", a.InputTokens+a.OutputTokens, a.CostUSD)
	case core.StatusRunning:
		return fmt.Sprintf("%d chars", len(a.Content))
	case core.StatusError:
		return truncateLine(a.Content, 20)
	default:
		return "waiting"
	}
}

// renderErrorBanners renders collapsed and individual error lines.
func renderErrorBanners(v boomerang.View) string {
	var lines []string
	for _, ce := range v.CollapsedErrors {
		names := make([]string, len(ce.Agents))
		for i, n := range ce.Agents {
			names[i] = string(n)
		}
		lines = append(lines, fmt.Sprintf("✗ %d agents failed: %s (%s)", len(ce.Agents), truncateLine(ce.Message, 60), strings.Join(names, ", ")))
	}
	for _, ie := range v.IndividualErrors {
		lines = append(lines, fmt.Sprintf("✗ %s: %s", ie.Agent, truncateLine(ie.Message, 70)))
	}
	if len(lines) == 0 {
		return ""
	}
	return errorAggStyle.Render(strings.Join(lines, "\n"))
}

// renderTimeline renders the most recent timeline entries, newest last.
func renderTimeline(events []core.TimelineEvent, maxLines int) string {
	if len(events) == 0 {
		return ""
	}
	start := 0
	if len(events) > maxLines {
		start = len(events) - maxLines
	}
	var lines []string
	for _, ev := range events[start:] {
		lines = append(lines, formatTimelineEvent(ev))
	}
	return strings.Join(lines, "\n")
}

// formatTimelineEvent renders one timeline entry as a single display line.
func formatTimelineEvent(ev core.TimelineEvent) string {
	stamp := ev.When().Format("15:04:05")
	switch e := ev.(type) {
	case core.PhaseChange:
		return fmt.Sprintf("%s  phase: %s", stamp, e.Message)
	case core.AgentStarted:
		return fmt.Sprintf("%s  %s started", stamp, e.Agent)
	case core.AgentCompleted:
		return fmt.Sprintf("%s  %s completed: %s", stamp, e.Agent, truncateLine(e.Snippet, 60))
	case core.AgentFailed:
		return fmt.Sprintf("%s  %s failed: %s", stamp, e.Agent, truncateLine(e.Error, 60))
	case core.AxiomChallenge:
		return fmt.Sprintf("%s  axiom challenges [%s]: %s", stamp, e.Severity, truncateLine(e.Challenge, 50))
	case core.ChallengeResponse:
		return fmt.Sprintf("%s  %s responds: %s", stamp, e.Agent, truncateLine(e.Response, 55))
	case core.AxiomVerdict:
		return fmt.Sprintf("%s  verdict [%s]: %s", stamp, e.Resolution, truncateLine(e.Text, 55))
	default:
		return stamp
	}
}

func truncateLine(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

func formatElapsed(seconds int) string {
	return (time.Duration(seconds) * time.Second).String()
}

func buildLogger(cfg *config.Config, path string) (logging.Logger, func(), error) {
	if path == "" {
		return logging.NoOpLogger{}, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	lg := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLogLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    f,
		Component: "tui",
	})
	return lg, func() { _ = f.Close() }, nil
}

func run() error {
	f := parseFlags()
	if f.perspectiveID == "" {
		return fmt.Errorf("-perspective is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closeLogger, err := buildLogger(cfg, f.logPath)
	if err != nil {
		return err
	}
	defer closeLogger()

	client := incube.New(cfg.BaseURL, func(o *incube.Options) {
		o.SessionToken = cfg.SessionToken
		o.RequestTimeout = cfg.RequestTimeout
		o.StallTimeout = cfg.StallTimeout
		o.Logger = logger
	})

	var opts []tea.ProgramOption
	if f.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(newModel(client, f), opts...)
	_, err = p.Run()
	return err
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "incube:", err)
		os.Exit(1)
	}
}
