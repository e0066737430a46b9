package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// sendMessage kicks off a streaming send on a goroutine. Fragment updates
// reach the UI through the manager's update hook; the command itself only
// reports the final outcome.
func (m *Model) sendMessage() tea.Cmd {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" || m.manager.Loading() {
		return nil
	}
	if _, ok := m.manager.ActiveChat(); !ok {
		// First keystroke of a fresh session: create a chat implicitly.
		if m.manager.NewChat() == "" {
			return nil
		}
		m.rebuildSidebar()
	}

	m.history.Add(text)
	m.historyNavigating = false
	m.textarea.Reset()
	m.err = nil

	p := m.getProgram()
	timeout := time.Duration(m.config.RequestTimeout) * time.Second
	go func() {
		ctx, cancel := context.WithTimeout(m.ctx, timeout)
		defer cancel()
		err := m.manager.SendMessage(ctx, text)
		if p != nil {
			p.Send(sendFinishedMsg{err: err})
		}
	}()

	return m.spinner.Tick
}

// cycleModel selects the next configured model for new chats.
func (m *Model) cycleModel() string {
	models := m.config.AvailableModels
	if len(models) == 0 {
		return ""
	}
	current := m.manager.State().SelectedModel
	next := models[0]
	for i, model := range models {
		if model == current {
			next = models[(i+1)%len(models)]
			break
		}
	}
	m.manager.SelectModel(next)
	return next
}
