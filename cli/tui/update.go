package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/mbarbosa/chatspace/internal/conversation"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always update the alert model with every message.
	outAlert, alertCmd := m.alert.Update(msg)
	m.alert = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	switch msg := msg.(type) {
	case tea.FocusMsg:
		m.notifier.setFocused(true)
		if m.focused == FocusTextarea {
			m.textarea.Focus()
			cmds = append(cmds, textarea.Blink)
		}
		return m, tea.Batch(cmds...)

	case tea.BlurMsg:
		m.notifier.setFocused(false)
		m.textarea.Blur()
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()
		return m, tea.Batch(cmds...)

	case stateChangedMsg:
		m.rebuildSidebar()
		m.refreshViewport()
		return m, tea.Batch(cmds...)

	case sendFinishedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		m.rebuildSidebar()
		m.refreshViewport()
		return m, tea.Batch(cmds...)

	case notificationMsg:
		cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, msg.body))
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.manager.Loading() {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			cmds = append(cmds, cmd)
			return m, tea.Batch(cmds...)
		}
	}

	// Route remaining messages to the focused components.
	if m.focused == FocusTextarea && !m.manager.Loading() {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.adjustTextareaHeight()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes key presses. It returns handled=false for keys that
// should fall through to the textarea/viewport.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	// History navigation (Alt).
	if msg.Alt && m.focused == FocusTextarea && !m.manager.Loading() {
		switch msg.String() {
		case "alt+p":
			if entry, ok := m.history.Previous(m.textarea.Value()); ok {
				m.textarea.SetValue(entry)
				m.historyNavigating = true
				m.adjustTextareaHeight()
			}
			return nil, true
		case "alt+n":
			if entry, ok := m.history.Next(); ok {
				m.textarea.SetValue(entry)
				m.historyNavigating = true
				m.adjustTextareaHeight()
			}
			return nil, true
		}
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return tea.Quit, true

	case tea.KeyCtrlJ:
		return m.sendMessage(), true

	case tea.KeyTab:
		if m.focused == FocusTextarea {
			m.focused = FocusSidebar
			m.textarea.Blur()
		} else {
			m.focused = FocusTextarea
			m.searching = false
			m.textarea.Focus()
		}
		return nil, true

	case tea.KeyCtrlB:
		m.sidebarVisible = !m.sidebarVisible
		if !m.sidebarVisible && m.focused == FocusSidebar {
			m.focused = FocusTextarea
			m.textarea.Focus()
		}
		m.recalculateLayout()
		return nil, true

	case tea.KeyCtrlN:
		m.manager.NewChat()
		m.rebuildSidebar()
		m.refreshViewport()
		return nil, true

	case tea.KeyCtrlS:
		if model := m.cycleModel(); model != "" {
			return m.alert.NewAlertCmd(bubbleup.InfoKey, "Model: "+formatModelName(model)), true
		}
		return nil, true

	case tea.KeyCtrlG:
		m.manager.ToggleNotifications()
		body := "Notifications off"
		if m.manager.State().NotificationsEnabled {
			body = "Notifications on"
		}
		return m.alert.NewAlertCmd(bubbleup.InfoKey, body), true
	}

	if m.focused == FocusSidebar {
		return m.handleSidebarKey(msg), true
	}

	// Reset history navigation on keys that modify the input.
	if m.historyNavigating {
		switch msg.Type {
		case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete, tea.KeyEnter:
			m.history.Reset()
			m.historyNavigating = false
		}
	}
	return nil, false
}

// handleSidebarKey processes keys while the sidebar has focus.
func (m *Model) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	if m.searching {
		switch msg.Type {
		case tea.KeyEsc:
			m.searching = false
			m.searchQuery = ""
			m.rebuildSidebar()
		case tea.KeyEnter:
			m.searching = false
		case tea.KeyBackspace:
			if len(m.searchQuery) > 0 {
				runes := []rune(m.searchQuery)
				m.searchQuery = string(runes[:len(runes)-1])
				m.rebuildSidebar()
			}
		case tea.KeyRunes, tea.KeySpace:
			m.searchQuery += string(msg.Runes)
			m.rebuildSidebar()
		}
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "enter":
		m.activateRow()
	case "d":
		m.deleteRow()
	case "/":
		m.searching = true
		m.searchQuery = ""
		m.rebuildSidebar()
	case "esc":
		m.focused = FocusTextarea
		m.textarea.Focus()
	}
	return nil
}

// activateRow selects the workspace or chat under the cursor.
func (m *Model) activateRow() {
	if m.cursor >= len(m.rows) {
		return
	}
	row := m.rows[m.cursor]
	if row.chatID == "" {
		m.manager.SelectWorkspace(row.workspaceID)
	} else {
		m.manager.SelectChat(row.chatID)
		m.focused = FocusTextarea
		m.textarea.Focus()
	}
	m.rebuildSidebar()
	m.refreshViewport()
}

// deleteRow deletes the chat or workspace under the cursor.
func (m *Model) deleteRow() {
	if m.cursor >= len(m.rows) {
		return
	}
	row := m.rows[m.cursor]
	if row.chatID != "" {
		m.manager.DeleteChat(row.chatID)
	} else if err := m.manager.DeleteWorkspace(row.workspaceID); err != nil {
		m.err = err
	}
	m.rebuildSidebar()
	m.refreshViewport()
}

// refreshViewport re-renders the active chat into the viewport, keeping the
// scroll pinned to the bottom when it already was.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if wasAtBottom {
		m.viewport.GotoBottom()
	}
}

// adjustTextareaHeight resizes the textarea based on content line count.
func (m *Model) adjustTextareaHeight() {
	lineCount := strings.Count(m.textarea.Value(), "\n") + 1
	newHeight := lineCount
	if newHeight < minTextareaHeight {
		newHeight = minTextareaHeight
	}
	if newHeight > maxTextareaHeight {
		newHeight = maxTextareaHeight
	}
	if m.textarea.Height() != newHeight {
		m.textarea.SetHeight(newHeight)
		m.recalculateLayout()
	}
}

// recalculateLayout adjusts viewport and textarea dimensions.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	contentWidth := m.width
	if m.sidebarVisible {
		contentWidth -= sidebarWidth + 1
	}

	viewportHeight := m.height - headerHeight - m.textarea.Height() - inputBorderHeight - 1
	if m.err != nil {
		viewportHeight--
	}
	if viewportHeight < minViewportHeight {
		viewportHeight = minViewportHeight
	}

	if err := m.renderer.SetWidth(contentWidth - 2); err != nil {
		m.err = fmt.Errorf("resizing renderer: %w", err)
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, viewportHeight)
		m.ready = true
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = viewportHeight
		m.viewport.SetContent(m.renderMessages())
	}

	m.textarea.SetWidth(contentWidth - textAreaStyle.GetHorizontalBorderSize())
}

// formatModelName turns a model identifier into a display name, e.g.
// "gemini-2.5-flash" -> "Gemini 2.5 Flash".
func formatModelName(modelID string) string {
	if modelID == "" {
		return ""
	}
	words := strings.Split(modelID, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(word)
		words[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return strings.Join(words, " ")
}

// sidebar helpers live here to keep view.go rendering-only.
func (m *Model) activeChat() (conversation.Chat, bool) {
	return m.manager.ActiveChat()
}
