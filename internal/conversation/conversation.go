package conversation

import (
	"strings"

	"github.com/google/uuid"
)

// Role of a message author.
type Role string

const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"
	// RoleModel marks a message produced by the model.
	RoleModel Role = "model"
)

const (
	// DefaultWorkspaceName is used when no persisted state exists.
	DefaultWorkspaceName = "Personal Workspace"
	// placeholderTitle is the title of a chat before its first completed turn.
	placeholderTitle = "New Chat"
	// titleMaxRunes caps a derived chat title.
	titleMaxRunes = 40
)

// Message is a single turn of a chat.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Chat is one conversation: its messages plus the model used for it.
type Chat struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
	Model    string    `json:"model"`
}

// Workspace is a named grouping of chats, most recent first.
type Workspace struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Chats []Chat `json:"chats"`
}

// State is the full conversation tree plus the active selection and
// preferences. It is treated as a value: every operation returns a new State
// and never mutates shared slices in place.
type State struct {
	Workspaces           []Workspace
	ActiveWorkspaceID    string
	ActiveChatID         string
	SelectedModel        string
	NotificationsEnabled bool
}

// NewID returns a short unique identifier.
func NewID() string {
	return uuid.New().String()[:8]
}

// DefaultState returns a state holding a single empty default workspace.
func DefaultState(model string) State {
	return State{
		Workspaces: []Workspace{{
			ID:   NewID(),
			Name: DefaultWorkspaceName,
		}},
		SelectedModel: model,
	}
}

// DeriveTitle computes a chat title from the first user message: the first 40
// runes, with an ellipsis marker when the text was longer.
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleMaxRunes {
		return text
	}
	return string(runes[:titleMaxRunes]) + "..."
}

// FilterChats returns the workspace's chats whose title contains the query,
// case-insensitively. An empty query matches everything.
func (w Workspace) FilterChats(query string) []Chat {
	query = strings.ToLower(query)
	chats := make([]Chat, 0, len(w.Chats))
	for _, chat := range w.Chats {
		if strings.Contains(strings.ToLower(chat.Title), query) {
			chats = append(chats, chat)
		}
	}
	return chats
}

// ActiveWorkspace returns the active workspace, or false when none is set.
func (s State) ActiveWorkspace() (Workspace, bool) {
	return s.workspace(s.ActiveWorkspaceID)
}

// ActiveChat returns the active chat, or false when none is set. The chat is
// only resolved within the active workspace.
func (s State) ActiveChat() (Chat, bool) {
	if s.ActiveChatID == "" {
		return Chat{}, false
	}
	workspace, ok := s.ActiveWorkspace()
	if !ok {
		return Chat{}, false
	}
	for _, chat := range workspace.Chats {
		if chat.ID == s.ActiveChatID {
			return chat, true
		}
	}
	return Chat{}, false
}

// FindChat resolves a chat by ID across all workspaces.
func (s State) FindChat(chatID string) (Chat, bool) {
	for _, workspace := range s.Workspaces {
		for _, chat := range workspace.Chats {
			if chat.ID == chatID {
				return chat, true
			}
		}
	}
	return Chat{}, false
}

// FindWorkspace resolves a workspace by ID.
func (s State) FindWorkspace(id string) (Workspace, bool) {
	return s.workspace(id)
}

func (s State) workspace(id string) (Workspace, bool) {
	for _, workspace := range s.Workspaces {
		if workspace.ID == id {
			return workspace, true
		}
	}
	return Workspace{}, false
}

// cloneWorkspaces copies the workspace slice so callers can replace entries
// without aliasing the previous state.
func (s State) cloneWorkspaces() []Workspace {
	workspaces := make([]Workspace, len(s.Workspaces))
	copy(workspaces, s.Workspaces)
	return workspaces
}

// updateChat returns a state in which the chat with the given ID, wherever it
// lives, has been replaced by fn's result. States are values, so untouched
// workspaces are shared structurally.
func (s State) updateChat(chatID string, fn func(Chat) Chat) State {
	workspaces := s.cloneWorkspaces()
	for i, workspace := range workspaces {
		for j, chat := range workspace.Chats {
			if chat.ID != chatID {
				continue
			}
			chats := make([]Chat, len(workspace.Chats))
			copy(chats, workspace.Chats)
			chats[j] = fn(chat)
			workspaces[i].Chats = chats
			next := s
			next.Workspaces = workspaces
			return next
		}
	}
	return s
}
