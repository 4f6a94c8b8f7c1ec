package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/internal/services/events"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	queuePkg "github.com/jwebster45206/personality-engine/pkg/queue"
	"github.com/muesli/reflow/wordwrap"
	"github.com/redis/go-redis/v9"
)

const maxFeedLines = 200

// Enqueuer accepts requests for the worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, req *queuePkg.Request) error
}

// SnapshotLoader reads the last state the worker stored.
type SnapshotLoader interface {
	LatestSnapshot(ctx context.Context, characterID uuid.UUID) (personality.Snapshot, bool, error)
}

// ConsoleDeps are the Redis-backed pieces the console talks to.
type ConsoleDeps struct {
	CharacterID uuid.UUID
	Queue       Enqueuer
	Broadcaster SnapshotLoader
	Feed        <-chan *redis.Message
}

// preset is a key bound to a narrative command.
type preset struct {
	key     string
	label   string
	command string
}

var presets = []preset{
	{"1", "Comfort", "ps_event player_comfort 0.6"},
	{"2", "Encourage", "ps_event player_encourage 0.6"},
	{"3", "Apologize", "ps_event player_apologize 0.7"},
	{"4", "Harsh", "ps_event player_harsh 0.7"},
	{"5", "Keep promise", "ps_event player_keep_promise 0.8"},
	{"6", "Break promise", "ps_event player_break_promise 0.8"},
	{"7", "Supplies up", "ps_event camp_resource_up 0.5"},
	{"8", "Casualty", "ps_event camp_casualty 0.9"},
	{"9", "Storm", "ps_event weather_storm_start 0.6"},
	{"d", "Damage", "hs_event damage 0.25"},
	{"h", "Heal", "hs_event heal 0.25"},
}

// ConsoleUI is the BubbleTea model for the companion HUD.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx  context.Context
	deps ConsoleDeps

	snapshot     personality.Snapshot
	haveSnapshot bool
	vitality     float64
	bodyState    health.State
	haveHealth   bool

	feed         []string
	feedViewport viewport.Model
	bar          progress.Model

	ready  bool
	width  int
	height int
	status string
	err    error

	// Quit confirmation state
	showQuitModal bool
}

type snapshotMsg struct {
	snapshot personality.Snapshot
	ok       bool
	err      error
}

type feedMsg struct {
	event events.Event
	err   error
}

type feedClosedMsg struct{}

type enqueuedMsg struct {
	label string
	err   error
}

var (
	hudPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(2)

	feedPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true).
			Width(11)

	replyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(ctx context.Context, deps ConsoleDeps) ConsoleUI {
	feedVp := viewport.New(40, 20)
	feedVp.MouseWheelEnabled = true

	return ConsoleUI{
		ctx:          ctx,
		deps:         deps,
		feedViewport: feedVp,
		bar:          progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.loadSnapshot(), m.waitForEvent())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		hudWidth, feedWidth := m.panelWidths()
		m.bar.Width = max(hudWidth-labelStyle.GetWidth()-8, 10)
		m.feedViewport.Width = feedWidth - 2
		m.feedViewport.Height = m.height - 4
		m.ready = true
		m.writeFeed()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		}

		switch key := msg.String(); key {
		case "q":
			m.showQuitModal = true
			return m, nil
		case "c":
			m.copySnapshot()
			return m, nil
		default:
			if p, ok := presetFor(key); ok {
				m.status = "Sending " + p.label + "..."
				return m, m.enqueue(p)
			}
		}

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
		} else if msg.ok {
			m.snapshot = msg.snapshot
			m.haveSnapshot = true
		}

	case enqueuedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
		} else {
			m.err = nil
			m.status = msg.label + " queued"
		}

	case feedMsg:
		if msg.err != nil {
			m.appendFeed(errorStyle.Render("Bad event: " + msg.err.Error()))
		} else {
			m.applyEvent(msg.event)
		}
		return m, m.waitForEvent()

	case feedClosedMsg:
		m.appendFeed(errorStyle.Render("Event feed closed"))
		return m, nil
	}

	m.feedViewport, vpCmd = m.feedViewport.Update(msg)
	return m, vpCmd
}

func presetFor(key string) (preset, bool) {
	for _, p := range presets {
		if p.key == key {
			return p, true
		}
	}
	return preset{}, false
}

// applyEvent folds one broadcast event into the HUD state and the feed.
func (m *ConsoleUI) applyEvent(e events.Event) {
	switch e.Type {
	case events.EventTypeEmotionUpdated:
		var after personality.EmotionState
		if decodeField(e.Data, "after", &after) {
			m.snapshot.Emotion = after
			m.snapshot.Alive = true
			m.haveSnapshot = true
		}
		if g, ok := e.Data["guilt"].(float64); ok {
			m.snapshot.Guilt = g
		}
		m.appendFeed(fmt.Sprintf("%s via %v", e.Data["tag"], e.Data["strategy"]))

	case events.EventTypeEmotionDecayed:
		var emotion personality.EmotionState
		if decodeField(e.Data, "emotion", &emotion) {
			m.snapshot.Emotion = emotion
		}
		if g, ok := e.Data["guilt"].(float64); ok {
			m.snapshot.Guilt = g
		}

	case events.EventTypeCharacterDied:
		m.snapshot.Alive = false
		m.haveSnapshot = true
		m.appendFeed(errorStyle.Render(fmt.Sprintf("Companion died (%v)", e.Data["cause"])))

	case events.EventTypeBridgeReply:
		m.appendFeed(replyStyle.Render(fmt.Sprintf("%v", e.Data["reply"])))

	case events.EventTypeHealthUpdated:
		if v, ok := e.Data["vitality"].(float64); ok {
			m.vitality = v
			m.haveHealth = true
		}
		if s, ok := e.Data["state"].(string); ok {
			m.bodyState = health.State(s)
		}

	case events.EventTypeRequestFailed:
		m.appendFeed(errorStyle.Render(fmt.Sprintf("Request failed: %v", e.Data["error"])))
	}
}

// decodeField re-decodes a nested value of a pub/sub payload into dst.
func decodeField(data map[string]interface{}, key string, dst interface{}) bool {
	raw, ok := data[key]
	if !ok {
		return false
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (m *ConsoleUI) appendFeed(line string) {
	stamp := promptStyle.Render(time.Now().Format("15:04:05") + " ")
	m.feed = append(m.feed, stamp+line)
	if len(m.feed) > maxFeedLines {
		m.feed = m.feed[len(m.feed)-maxFeedLines:]
	}
	m.writeFeed()
}

// writeFeed rewraps the feed for the current viewport width
func (m *ConsoleUI) writeFeed() {
	width := m.feedViewport.Width
	if width <= 0 {
		width = 40
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("EVENTS") + "\n\n")
	for _, line := range m.feed {
		content.WriteString(wordwrap.String(line, width) + "\n")
	}
	m.feedViewport.SetContent(content.String())
	m.feedViewport.GotoBottom()
}

func (m *ConsoleUI) copySnapshot() {
	if !m.haveSnapshot {
		m.status = "Nothing to copy yet"
		return
	}
	data, err := json.MarshalIndent(m.snapshot, "", "  ")
	if err != nil {
		m.err = err
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.err = fmt.Errorf("failed to copy snapshot: %w", err)
		return
	}
	m.status = "Snapshot copied to clipboard"
}

func (m ConsoleUI) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		s, ok, err := m.deps.Broadcaster.LatestSnapshot(m.ctx, m.deps.CharacterID)
		return snapshotMsg{snapshot: s, ok: ok, err: err}
	}
}

func (m ConsoleUI) waitForEvent() tea.Cmd {
	feed := m.deps.Feed
	return func() tea.Msg {
		msg, ok := <-feed
		if !ok {
			return feedClosedMsg{}
		}
		e, err := events.ParseEvent(msg.Payload)
		return feedMsg{event: e, err: err}
	}
}

func (m ConsoleUI) enqueue(p preset) tea.Cmd {
	return func() tea.Msg {
		req := queuePkg.NewCommandRequest(m.deps.CharacterID, p.command)
		return enqueuedMsg{label: p.label, err: m.deps.Queue.Enqueue(m.ctx, req)}
	}
}

func (m ConsoleUI) panelWidths() (int, int) {
	hudWidth := int(float64(m.width)*0.55) - 4
	return hudWidth, m.width - hudWidth - 6
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}

	case feedMsg, feedClosedMsg:
		// Keep listening behind the modal.
		model, cmd := m.withoutModal().Update(msg)
		ui := model.(ConsoleUI)
		ui.showQuitModal = true
		return ui, cmd
	}

	return m, nil
}

func (m ConsoleUI) withoutModal() ConsoleUI {
	m.showQuitModal = false
	return m
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Console?"))
	content.WriteString("\n\n")
	content.WriteString("The worker keeps running after you leave.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	hudWidth, feedWidth := m.panelWidths()

	hudPanel := hudPanelStyle.Width(hudWidth).Height(m.height - 3).Render(m.renderHUD(hudWidth))
	feedPanel := feedPanelStyle.Width(feedWidth).Height(m.height - 2).Render(m.feedViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, hudPanel, feedPanel)
}

func (m ConsoleUI) renderHUD(width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("COMPANION") + "  ")
	content.WriteString(promptStyle.Render(m.deps.CharacterID.String()[:8]+"...") + "\n\n")

	if !m.haveSnapshot {
		content.WriteString(statusStyle.Render("Waiting for the worker to store a snapshot...") + "\n\n")
	} else {
		s := m.snapshot
		content.WriteString(m.meter("Hope", s.Emotion.Hope))
		content.WriteString(m.meter("Happiness", s.Emotion.Happiness))
		content.WriteString(m.meter("Trust", s.Emotion.Trust))
		content.WriteString(m.meter("Affinity", s.Emotion.Affinity))
		content.WriteString(m.meter("Guilt", s.Guilt))
		if !s.Alive {
			content.WriteString(errorStyle.Render("Deceased") + "\n")
		}
		content.WriteString("\n")
	}

	if m.haveHealth {
		content.WriteString(m.meter("Vitality", m.vitality))
		content.WriteString(labelStyle.Render("Body") + " " + string(m.bodyState) + "\n\n")
	}

	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(width-6, 1))) + "\n\n")
	content.WriteString("Keys:\n")
	for _, p := range presets {
		content.WriteString(fmt.Sprintf("• %s: %s\n", p.key, p.label))
	}
	content.WriteString("• c: Copy snapshot\n")
	content.WriteString("• q: Quit\n\n")

	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		content.WriteString(statusStyle.Render(m.status) + "\n")
	}

	return content.String()
}

func (m ConsoleUI) meter(label string, v float64) string {
	return labelStyle.Render(label) + " " + m.bar.ViewAs(v) + "\n"
}
