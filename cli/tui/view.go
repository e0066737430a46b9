package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mbarbosa/chatspace/internal/conversation"
)

// View renders the interface.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	content := m.viewport.View()
	if m.sidebarVisible {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), content)
	}
	sections = append(sections, content)

	if m.manager.Loading() {
		sections = append(sections, fmt.Sprintf("%s Generating...", m.spinner.View()))
	} else {
		sections = append(sections, textAreaStyle.Render(m.textarea.View()))
	}

	if m.err != nil {
		sections = append(sections, errorMessageStyle.Render("Error: "+m.err.Error()))
	}
	sections = append(sections, m.renderHelp())

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return m.alert.Render(view)
}

func (m *Model) renderHeader() string {
	state := m.manager.State()

	workspaceName := ""
	if workspace, ok := m.manager.ActiveWorkspace(); ok {
		workspaceName = workspace.Name
	}
	chatTitle := "No chat selected"
	if chat, ok := m.activeChat(); ok {
		chatTitle = chat.Title
	}

	notifications := "notifications off"
	if state.NotificationsEnabled {
		notifications = "notifications on"
	}

	header := fmt.Sprintf(
		"%s │ %s │ %s │ %s",
		workspaceName, chatTitle, formatModelName(state.SelectedModel), notifications,
	)
	return titleStyle.Width(m.width).Render(header)
}

func (m *Model) renderSidebar() string {
	state := m.manager.State()
	var b strings.Builder

	if m.searching {
		b.WriteString(searchStyle.Render("/" + m.searchQuery + "▋"))
		b.WriteString("\n\n")
	} else {
		b.WriteString(sidebarHeaderStyle.Render("Workspaces"))
		b.WriteString("\n\n")
	}

	for i, row := range m.rows {
		cursor := m.focused == FocusSidebar && i == m.cursor
		if row.chatID == "" {
			b.WriteString(m.renderWorkspaceRow(state, row, cursor))
		} else {
			b.WriteString(m.renderChatRow(state, row, cursor))
		}
		b.WriteString("\n")
	}

	if len(m.rows) == 0 {
		b.WriteString(emptyStateStyle.Render("No workspaces"))
	}

	height := m.viewport.Height
	return sidebarStyle.Height(height).Render(b.String())
}

func (m *Model) renderWorkspaceRow(state conversation.State, row sidebarRow, cursor bool) string {
	workspace, ok := state.FindWorkspace(row.workspaceID)
	if !ok {
		return ""
	}
	label := fmt.Sprintf("▸ %s (%d)", workspace.Name, len(workspace.Chats))
	if workspace.ID == state.ActiveWorkspaceID {
		label = fmt.Sprintf("▾ %s (%d)", workspace.Name, len(workspace.Chats))
	}
	switch {
	case cursor:
		return chatCursorStyle.PaddingLeft(0).Render(label)
	case workspace.ID == state.ActiveWorkspaceID:
		return workspaceActiveStyle.Render(label)
	default:
		return workspaceStyle.Render(label)
	}
}

func (m *Model) renderChatRow(state conversation.State, row sidebarRow, cursor bool) string {
	chat, ok := state.FindChat(row.chatID)
	if !ok {
		return ""
	}
	title := chat.Title
	maxWidth := sidebarWidth - 4
	if len([]rune(title)) > maxWidth {
		title = string([]rune(title)[:maxWidth-1]) + "…"
	}
	switch {
	case cursor:
		return chatCursorStyle.Render(title)
	case chat.ID == state.ActiveChatID:
		return chatActiveStyle.Render("• " + title)
	default:
		return chatItemStyle.Render(title)
	}
}

// renderMessages renders the active chat's transcript for the viewport.
func (m *Model) renderMessages() string {
	chat, ok := m.activeChat()
	if !ok {
		return emptyStateStyle.Render("\n  Start a new conversation with Ctrl+N, or just type a message.")
	}
	if len(chat.Messages) == 0 {
		return emptyStateStyle.Render("\n  Send a message to start the conversation.")
	}

	loading := m.manager.Loading()
	var b strings.Builder
	for i, message := range chat.Messages {
		switch message.Role {
		case conversation.RoleUser:
			b.WriteString(userMessageStyle.Render("> " + message.Text))
		case conversation.RoleModel:
			text := message.Text
			if loading && i == len(chat.Messages)-1 {
				text += " ▋"
			}
			if strings.HasPrefix(message.Text, "Error: ") {
				b.WriteString(errorMessageStyle.Render(text))
			} else {
				b.WriteString(modelMessageStyle.Render(m.renderer.Render(text)))
			}
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m *Model) renderHelp() string {
	var help string
	switch {
	case m.searching:
		help = "type to filter • enter confirm • esc clear"
	case m.focused == FocusSidebar:
		help = "j/k move • enter select • d delete • / search • tab input • ctrl+c quit"
	default:
		help = "ctrl+j send • ctrl+n new chat • ctrl+s model • ctrl+g notifications • ctrl+b sidebar • tab sidebar • alt+p/n history • ctrl+c quit"
	}
	return helpStyle.Render(help)
}
