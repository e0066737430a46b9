// Package tui implements the interactive chat interface: a sidebar of
// workspaces and chats next to a streaming conversation viewport.
package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/mbarbosa/chatspace/internal/configuration"
	"github.com/mbarbosa/chatspace/internal/history"
	"github.com/mbarbosa/chatspace/internal/markdown"
	"github.com/mbarbosa/chatspace/internal/session"
)

// FocusedComponent identifies which pane receives key input.
type FocusedComponent int

const (
	// FocusTextarea routes keys to the message input.
	FocusTextarea FocusedComponent = iota
	// FocusSidebar routes keys to the workspace/chat list.
	FocusSidebar
)

// sidebarRow is one selectable line of the sidebar: a workspace header or a
// chat underneath the active workspace.
type sidebarRow struct {
	workspaceID string
	chatID      string
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	// Core dependencies
	ctx      context.Context
	config   *configuration.Config
	manager  *session.Manager
	notifier *Notifier

	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	alert    bubbleup.AlertModel
	renderer *markdown.Renderer

	// UI state
	width          int
	height         int
	ready          bool
	quitting       bool
	sidebarVisible bool
	focused        FocusedComponent
	searching      bool
	searchQuery    string
	cursor         int
	rows           []sidebarRow
	err            error

	// Input history
	history           *history.History
	historyNavigating bool

	// Program reference for sending messages from goroutines
	program   *tea.Program
	programMu sync.Mutex
}

// Message types for Bubble Tea
type (
	// stateChangedMsg pokes the UI after any manager state change,
	// including fragments applied by the streaming goroutine.
	stateChangedMsg struct{}
	// sendFinishedMsg reports the outcome of a send.
	sendFinishedMsg struct{ err error }
	// notificationMsg carries a notification raised while the window was
	// blurred.
	notificationMsg struct{ body string }
)

// New creates the chat interface model.
func New(
	ctx context.Context,
	config *configuration.Config,
	manager *session.Manager,
	notifier *Notifier,
) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Type your message... (Ctrl+J to send, Tab for sidebar, Ctrl+C to quit)"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetHeight(minTextareaHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	renderer, err := markdown.NewRenderer(80)
	if err != nil {
		return nil, err
	}

	m := &Model{
		ctx:            ctx,
		config:         config,
		manager:        manager,
		notifier:       notifier,
		textarea:       ta,
		spinner:        sp,
		alert:          *bubbleup.NewAlertModel(40, true, 1),
		renderer:       renderer,
		sidebarVisible: true,
		history:        history.New(),
	}
	m.rebuildSidebar()
	return m, nil
}

// SetProgram wires the tea.Program for async message delivery, and hooks the
// manager's update and focus callbacks to it.
func (m *Model) SetProgram(p *tea.Program) {
	m.programMu.Lock()
	m.program = p
	m.programMu.Unlock()

	m.notifier.setProgram(p)
	m.manager.SetUpdateHook(func() { p.Send(stateChangedMsg{}) })
	m.manager.SetFocusProbe(m.notifier.Focused)
}

func (m *Model) getProgram() *tea.Program {
	m.programMu.Lock()
	defer m.programMu.Unlock()
	return m.program
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.alert.Init(),
	)
}

// rebuildSidebar recomputes the selectable rows from the current state: all
// workspaces, with the active workspace's chats (filtered by the search
// query) nested under it.
func (m *Model) rebuildSidebar() {
	state := m.manager.State()
	rows := make([]sidebarRow, 0, len(state.Workspaces))
	for _, workspace := range state.Workspaces {
		rows = append(rows, sidebarRow{workspaceID: workspace.ID})
		if workspace.ID != state.ActiveWorkspaceID {
			continue
		}
		for _, chat := range workspace.FilterChats(m.searchQuery) {
			rows = append(rows, sidebarRow{workspaceID: workspace.ID, chatID: chat.ID})
		}
	}
	m.rows = rows
	if m.cursor > len(rows)-1 {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
