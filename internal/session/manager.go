// Package session orchestrates the conversation tree, the provider session
// binding and the stream coalescer behind the surface the UI consumes.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mbarbosa/chatspace/internal/conversation"
	"github.com/mbarbosa/chatspace/internal/notify"
	"github.com/mbarbosa/chatspace/internal/provider"
)

const notificationBody = "Your new message is ready!"

// Manager is the public surface consumed by the UI layer. State is a single
// value replaced wholesale on each mutation; the mutex makes each
// read-transform-commit step atomic against fragments arriving from the
// streaming goroutine.
type Manager struct {
	mu      sync.Mutex
	state   conversation.State
	loading bool

	binding  *provider.Binding
	notifier notify.Notifier
	logger   *slog.Logger

	// persist is invoked with the new state after every mutation. Failures
	// are logged, never fatal.
	persist func(conversation.State) error
	// onUpdate pokes the UI after every state change. Set by the UI layer.
	onUpdate func()
	// focused reports whether the consuming view currently has focus.
	focused func() bool
}

// New returns a manager over the given initial state.
func New(
	state conversation.State,
	binding *provider.Binding,
	notifier notify.Notifier,
	logger *slog.Logger,
	persist func(conversation.State) error,
) *Manager {
	return &Manager{
		state:    state,
		binding:  binding,
		notifier: notifier,
		logger:   logger,
		persist:  persist,
	}
}

// SetUpdateHook registers a callback fired after every state change.
func (m *Manager) SetUpdateHook(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// SetFocusProbe registers a callback reporting whether the view is focused.
func (m *Manager) SetFocusProbe(fn func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focused = fn
}

// State returns the current state value.
func (m *Manager) State() conversation.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Loading reports whether a send is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// ActiveWorkspace returns the active workspace.
func (m *Manager) ActiveWorkspace() (conversation.Workspace, bool) {
	return m.State().ActiveWorkspace()
}

// ActiveChat returns the active chat.
func (m *Manager) ActiveChat() (conversation.Chat, bool) {
	return m.State().ActiveChat()
}

// FilteredChats returns the active workspace's chats matching the query.
func (m *Manager) FilteredChats(query string) []conversation.Chat {
	workspace, ok := m.ActiveWorkspace()
	if !ok {
		return nil
	}
	return workspace.FilterChats(query)
}

// commit replaces the state, persists the snapshot and pokes the UI.
// Callers must hold the mutex.
func (m *Manager) commit(next conversation.State) {
	m.state = next
	if m.persist != nil {
		if err := m.persist(next); err != nil {
			m.logger.Warn("failed to persist state", "error", err)
		}
	}
	if m.onUpdate != nil {
		m.onUpdate()
	}
}

// SendMessage appends the user text to the active chat, streams the model's
// reply into it and, on the chat's first completed turn, derives the title
// from the original text. It is a no-op without an active chat or while a
// send is already in flight. Blocking: the UI runs it on a goroutine.
func (m *Manager) SendMessage(ctx context.Context, text string) error {
	m.mu.Lock()
	chat, ok := m.state.ActiveChat()
	if !ok || m.loading {
		m.mu.Unlock()
		return nil
	}
	// Snapshot before the optimistic append: the binding seeds its session
	// with the history as it was before this turn.
	history := chat
	firstTurn := len(chat.Messages) == 0
	m.loading = true
	m.commit(m.state.AppendUserMessage(chat.ID, text))
	m.mu.Unlock()

	// Loading is cleared on every path out of this send; the notification
	// side effect fires alongside it, as in the original flow.
	defer func() {
		m.mu.Lock()
		m.loading = false
		enabled := m.state.NotificationsEnabled
		onUpdate := m.onUpdate
		focused := m.focused
		m.mu.Unlock()
		if onUpdate != nil {
			onUpdate()
		}
		if enabled && m.notifier.Permission() == notify.PermissionGranted && (focused == nil || !focused()) {
			m.notifier.Notify("Chatspace", notificationBody)
		}
	}()

	stream, err := m.binding.Send(ctx, history, text)
	if err != nil {
		m.failTurn(chat.ID, err)
		return err
	}

	if err := newCoalescer(chat.ID).drain(stream, m.applyFragment); err != nil {
		m.binding.Reset()
		m.failTurn(chat.ID, err)
		return err
	}

	if firstTurn {
		m.mu.Lock()
		m.commit(m.state.SetTitle(chat.ID, conversation.DeriveTitle(text)))
		m.mu.Unlock()
	}
	return nil
}

// applyFragment folds the running total into the origin chat. The latest
// state is re-read under the lock on every fragment.
func (m *Manager) applyFragment(chatID, total string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commit(m.state.MergeModelText(chatID, total))
}

// failTurn surfaces a provider failure as a single synthetic model message
// in the origin chat. The binding has already been invalidated by the time
// this runs, so the next send rebuilds a session from scratch.
func (m *Manager) failTurn(chatID string, err error) {
	m.logger.Warn("send failed", "chat", chatID, "error", err)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commit(m.state.MergeModelText(chatID, fmt.Sprintf("Error: %v", err)))
}

// NewChat creates an empty chat in the active workspace using the selected
// model, and invalidates the bound session.
func (m *Manager) NewChat() string {
	m.mu.Lock()
	next, chatID := m.state.CreateChat(m.state.ActiveWorkspaceID, m.state.SelectedModel)
	if chatID != "" {
		m.commit(next)
	}
	m.mu.Unlock()
	m.binding.Reset()
	return chatID
}

// SelectChat makes the given chat active and invalidates the bound session.
func (m *Manager) SelectChat(chatID string) {
	m.mu.Lock()
	m.commit(m.state.SelectChat(chatID))
	m.mu.Unlock()
	m.binding.Reset()
}

// SelectWorkspace makes the given workspace active and invalidates the bound
// session.
func (m *Manager) SelectWorkspace(workspaceID string) {
	m.mu.Lock()
	m.commit(m.state.SelectWorkspace(workspaceID))
	m.mu.Unlock()
	m.binding.Reset()
}

// DeleteChat removes a chat from the active workspace and invalidates the
// bound session.
func (m *Manager) DeleteChat(chatID string) {
	m.mu.Lock()
	m.commit(m.state.DeleteChat(m.state.ActiveWorkspaceID, chatID))
	m.mu.Unlock()
	m.binding.Reset()
}

// CreateWorkspace creates a workspace, makes it active and invalidates the
// bound session.
func (m *Manager) CreateWorkspace(name string) string {
	m.mu.Lock()
	next, workspaceID := m.state.CreateWorkspace(name)
	m.commit(next)
	m.mu.Unlock()
	m.binding.Reset()
	return workspaceID
}

// RenameWorkspace renames a workspace.
func (m *Manager) RenameWorkspace(workspaceID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commit(m.state.RenameWorkspace(workspaceID, name))
}

// DeleteWorkspace removes a workspace. Deleting the last remaining workspace
// is rejected and leaves the state unchanged.
func (m *Manager) DeleteWorkspace(workspaceID string) error {
	m.mu.Lock()
	next, err := m.state.DeleteWorkspace(workspaceID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.commit(next)
	m.mu.Unlock()
	m.binding.Reset()
	return nil
}

// SelectModel sets the model used by newly created chats.
func (m *Manager) SelectModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.state
	next.SelectedModel = model
	m.commit(next)
}

// ToggleNotifications flips the notification preference, prompting for
// permission first when it has not been requested yet.
func (m *Manager) ToggleNotifications() {
	permission := m.notifier.Permission()
	if permission == notify.PermissionDefault {
		permission = m.notifier.RequestPermission()
		if permission != notify.PermissionGranted {
			return
		}
		m.mu.Lock()
		next := m.state
		next.NotificationsEnabled = true
		m.commit(next)
		m.mu.Unlock()
		return
	}
	if permission != notify.PermissionGranted {
		return
	}
	m.mu.Lock()
	next := m.state
	next.NotificationsEnabled = !next.NotificationsEnabled
	m.commit(next)
	m.mu.Unlock()
}
