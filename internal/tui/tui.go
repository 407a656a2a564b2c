// Package tui implements the Bubble Tea chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sprite-ai/revchat/internal/conversation"
	"github.com/sprite-ai/revchat/internal/format"
)

const inputHeight = 3

// requestDoneMsg is delivered when a submitted request settles.
type requestDoneMsg struct{}

// Model is the top-level Bubble Tea model for a chat session.
type Model struct {
	ctx   context.Context
	orch  *conversation.Orchestrator
	cache *format.Cache

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	// UI state
	width    int
	height   int
	showHelp bool
}

// New creates a chat model over orch. Replies are formatted through cache.
func New(ctx context.Context, orch *conversation.Orchestrator, cache *format.Cache) Model {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Placeholder = conversation.Placeholder(orch.Store().Mode())
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = thinkingStyle

	m := Model{
		ctx:      ctx,
		orch:     orch,
		cache:    cache,
		input:    ta,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case requestDoneMsg:
		if m.width > 0 {
			m.layout()
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.orch.State().InFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case m.showHelp:
		// Any other key closes help.
		m.showHelp = false
		return m, nil

	case key.Matches(msg, keys.ToggleMode):
		m.orch.SetMode(m.orch.Store().Mode().Toggle())
		m.input.Placeholder = conversation.Placeholder(m.orch.Store().Mode())
		m.refresh()
		return m, nil

	case key.Matches(msg, keys.Clear):
		m.orch.Clear()
		m.refresh()
		return m, nil

	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, keys.Submit):
		return m.submit()
	}

	if m.orch.State().InFlight {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.orch.State().InFlight {
		return m, nil
	}
	done, err := m.orch.Submit(m.ctx, m.input.Value())
	if err != nil {
		// Empty and concurrent submissions are dropped.
		return m, nil
	}
	m.input.Reset()
	m.refresh()
	return m, tea.Batch(waitFor(done), m.spinner.Tick)
}

func waitFor(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return requestDoneMsg{}
	}
}

func (m *Model) layout() {
	w := max(m.width, 20)
	m.input.SetWidth(w - 2)

	// header, banner allowance, hint, input box
	used := 1 + 1 + 1 + inputHeight + 2
	if st := m.orch.State(); st.Error != nil {
		used += lipgloss.Height(renderErrorBanner(st.Error, w))
	}
	m.viewport.Width = w
	m.viewport.Height = max(m.height-used, 3)
}

// refresh re-renders the transcript and keeps the view pinned to the end.
func (m *Model) refresh() {
	mode, msgs := m.orch.Store().Snapshot()
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	m.viewport.SetContent(renderTranscript(msgs, mode, m.cache, width))
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	mode := m.orch.Store().Mode()
	st := m.orch.State()

	sections := []string{renderHeader(mode, m.width), m.viewport.View()}
	if st.Error != nil {
		sections = append(sections, renderErrorBanner(st.Error, m.width))
	}

	hint := hintStyle.Render(conversation.Hint(mode, st.InFlight))
	if st.InFlight {
		hint = m.spinner.View() + " " + thinkingStyle.Render(conversation.Hint(mode, true))
	}
	sections = append(sections, hint, inputBoxStyle.Render(m.input.View()), m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatusBar() string {
	items := []key.Binding{keys.Submit, keys.Newline, keys.ToggleMode, keys.Clear, keys.Help, keys.Quit}
	parts := make([]string, 0, len(items))
	for _, b := range items {
		h := b.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpBarStyle.Render(h.Desc))
	}
	return strings.Join(parts, helpBarStyle.Render("  ·  "))
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("revchat: Keyboard Shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"enter", "Send the message"},
		{"alt+enter", "Insert a newline"},
		{"ctrl+t", "Switch between chat and code review"},
		{"ctrl+l", "Clear the conversation"},
		{"pgup/pgdn", "Scroll the transcript"},
		{"f1", "Toggle this help"},
		{"esc/ctrl+c", "Quit"},
	}

	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press any key to close help"))

	return b.String()
}

// Run starts the chat UI and blocks until the user quits.
func Run(ctx context.Context, orch *conversation.Orchestrator, cache *format.Cache) error {
	p := tea.NewProgram(New(ctx, orch, cache), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
