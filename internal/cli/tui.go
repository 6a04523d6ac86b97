package cli

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/chatline/internal/models"
	"github.com/raphaelgruber/chatline/internal/session"
)

const sidebarWidth = 28

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// changeMsg signals that the controller state changed.
type changeMsg struct{}

// closedMsg signals that the controller subscription ended.
type closedMsg struct{}

// chatModel is the bubbletea model for the interactive chat.
type chatModel struct {
	ctrl    *session.Controller
	changes <-chan struct{}
	input   textinput.Model
	snap    session.Snapshot
	focus   focusArea
	cursor  int
	width   int
	height  int
	theme   Theme
	notice  string
}

// newChatModel creates a chat model rendering ctrl, re-rendering on changes.
func newChatModel(ctrl *session.Controller, changes <-chan struct{}) chatModel {
	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.Prompt = "> "
	input.Focus()

	return chatModel{
		ctrl:    ctrl,
		changes: changes,
		input:   input,
		snap:    ctrl.Snapshot(),
		theme:   defaultTheme,
	}
}

// waitForChange blocks on the subscription in a command goroutine.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return closedMsg{}
		}
		return changeMsg{}
	}
}

// Init returns the initial command (start listening for changes).
func (m chatModel) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case changeMsg:
		m.snap = m.ctrl.Snapshot()
		m.clampCursor()
		return m, waitForChange(m.changes)

	case closedMsg:
		return m, tea.Quit

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+n":
			m.ctrl.NewConversation()
			m.input.SetValue("")
			m.notice = ""
			m.focusInput()
			return m, nil
		case "ctrl+r":
			m.ctrl.RefreshDirectory()
			return m, nil
		case "tab":
			if m.focus == focusInput {
				m.focus = focusSidebar
				m.input.Blur()
			} else {
				m.focusInput()
			}
			return m, nil
		}

		if m.focus == focusSidebar {
			return m.updateSidebar(msg)
		}

		if msg.String() == "enter" {
			m.ctrl.SetInput(m.input.Value())
			if err := m.ctrl.Submit(); err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.notice = ""
			m.input.SetValue("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetInput(m.input.Value())
	return m, cmd
}

// updateSidebar moves the cursor through the conversation list and opens
// the highlighted conversation.
func (m chatModel) updateSidebar(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Conversations)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.snap.Conversations) == 0 {
			return m, nil
		}
		if err := m.ctrl.Select(m.snap.Conversations[m.cursor].ID); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = ""
		m.focusInput()
	}
	return m, nil
}

func (m *chatModel) focusInput() {
	m.focus = focusInput
	m.input.Focus()
}

func (m *chatModel) clampCursor() {
	if n := len(m.snap.Conversations); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// View renders the chat.
func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m chatModel) renderContent() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderChat())
}

func (m chatModel) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.hintStyle().Render("+ New Chat (ctrl+n)"))
	b.WriteString("\n\nPast Chats\n")

	if len(m.snap.Conversations) == 0 {
		b.WriteString(m.theme.hintStyle().Render("No past conversations."))
		b.WriteString("\n")
	}

	for i, conv := range m.snap.Conversations {
		marker := "  "
		if m.focus == focusSidebar && i == m.cursor {
			marker = "> "
		}
		title := truncateRunes(conv.DisplayTitle(), sidebarWidth-10)
		line := fmt.Sprintf("%s%s %s", marker, title, formatClock(conv))
		if conv.ID == m.snap.ConversationID {
			line = m.theme.activeStyle().Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return m.theme.sidebarStyle(sidebarWidth).Render(b.String())
}

func (m chatModel) renderChat() string {
	width := m.width - sidebarWidth - 4
	if width < 20 {
		width = 60
	}
	style := lipgloss.NewStyle().Width(width).PaddingLeft(1)

	var b strings.Builder
	b.WriteString("AI Assistant")
	if !m.snap.ConversationID.IsZero() {
		b.WriteString(m.theme.hintStyle().Render("  Conversation ID: " + m.snap.ConversationID.String()))
	}
	b.WriteString("\n\n")

	if m.snap.State == session.StateSwitching {
		b.WriteString(m.theme.hintStyle().Render("Loading conversation..."))
		b.WriteString("\n")
	}

	for _, msg := range m.visibleMessages() {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.errorStyle().Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())

	return style.Render(b.String())
}

// visibleMessages returns the tail of the timeline that fits the window.
func (m chatModel) visibleMessages() []models.Message {
	msgs := m.snap.Messages
	if m.height <= 0 {
		return msgs
	}
	limit := max(m.height-6, 1)
	if len(msgs) > limit {
		return msgs[len(msgs)-limit:]
	}
	return msgs
}

func (m chatModel) renderMessage(msg models.Message) string {
	switch {
	case msg.IsLoading:
		return m.theme.hintStyle().Render("AI: " + msg.Text)
	case msg.Failed:
		return m.theme.errorStyle().Render(msg.Text)
	case msg.Sender == models.SenderUser:
		return m.theme.userStyle().Render("You: ") + msg.Text
	default:
		return m.theme.assistantStyle().Render("AI: ") + msg.Text
	}
}

// RunChatUI runs the interactive chat until the user quits.
func RunChatUI(ctrl *session.Controller) error {
	changes, cancel := ctrl.Subscribe()
	defer cancel()

	ctrl.Start()

	p := tea.NewProgram(newChatModel(ctrl, changes))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
