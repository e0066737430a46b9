package conversation

import (
	"github.com/pkg/errors"
)

// ErrLastWorkspace is returned when deleting the sole remaining workspace.
var ErrLastWorkspace = errors.New("cannot delete the last workspace")

// CreateChat prepends a new empty chat to the given workspace and makes it
// active. Unknown workspace IDs are a no-op.
func (s State) CreateChat(workspaceID, model string) (State, string) {
	workspaces := s.cloneWorkspaces()
	for i, workspace := range workspaces {
		if workspace.ID != workspaceID {
			continue
		}
		chat := Chat{
			ID:    NewID(),
			Title: placeholderTitle,
			Model: model,
		}
		chats := make([]Chat, 0, len(workspace.Chats)+1)
		chats = append(chats, chat)
		chats = append(chats, workspace.Chats...)
		workspaces[i].Chats = chats

		next := s
		next.Workspaces = workspaces
		next.ActiveWorkspaceID = workspaceID
		next.ActiveChatID = chat.ID
		return next, chat.ID
	}
	return s, ""
}

// DeleteChat removes a chat from the given workspace. When the deleted chat
// was active, the chat now occupying min(originalIndex, newLength-1) becomes
// active, or none when the workspace is left empty.
func (s State) DeleteChat(workspaceID, chatID string) State {
	workspaces := s.cloneWorkspaces()
	for i, workspace := range workspaces {
		if workspace.ID != workspaceID {
			continue
		}
		index := -1
		for j, chat := range workspace.Chats {
			if chat.ID == chatID {
				index = j
				break
			}
		}
		if index < 0 {
			return s
		}

		chats := make([]Chat, 0, len(workspace.Chats)-1)
		chats = append(chats, workspace.Chats[:index]...)
		chats = append(chats, workspace.Chats[index+1:]...)
		workspaces[i].Chats = chats

		next := s
		next.Workspaces = workspaces
		if s.ActiveChatID == chatID {
			if len(chats) == 0 {
				next.ActiveChatID = ""
			} else {
				replacement := index
				if replacement > len(chats)-1 {
					replacement = len(chats) - 1
				}
				next.ActiveChatID = chats[replacement].ID
			}
		}
		return next
	}
	return s
}

// AppendUserMessage appends a user message to the chat with the given ID.
// The chat title is not touched here: it is derived only after the first
// turn completes successfully.
func (s State) AppendUserMessage(chatID, text string) State {
	return s.updateChat(chatID, func(chat Chat) Chat {
		messages := make([]Message, 0, len(chat.Messages)+1)
		messages = append(messages, chat.Messages...)
		messages = append(messages, Message{Role: RoleUser, Text: text})
		chat.Messages = messages
		return chat
	})
}

// MergeModelText applies the coalescing rule to the chat with the given ID:
// when the chat's last message is a model message it is replaced with the
// accumulated text, otherwise a new model message is appended. Addressing by
// chat ID keeps fragments landing in their origin chat even after the user
// has navigated away.
func (s State) MergeModelText(chatID, total string) State {
	return s.updateChat(chatID, func(chat Chat) Chat {
		messages := make([]Message, len(chat.Messages))
		copy(messages, chat.Messages)
		if n := len(messages); n > 0 && messages[n-1].Role == RoleModel {
			messages[n-1] = Message{Role: RoleModel, Text: total}
		} else {
			messages = append(messages, Message{Role: RoleModel, Text: total})
		}
		chat.Messages = messages
		return chat
	})
}

// SetTitle sets a chat's title.
func (s State) SetTitle(chatID, title string) State {
	return s.updateChat(chatID, func(chat Chat) Chat {
		chat.Title = title
		return chat
	})
}

// SelectChat makes the given chat active. The chat must resolve inside the
// active workspace; anything else is a no-op.
func (s State) SelectChat(chatID string) State {
	workspace, ok := s.ActiveWorkspace()
	if !ok {
		return s
	}
	for _, chat := range workspace.Chats {
		if chat.ID == chatID {
			next := s
			next.ActiveChatID = chatID
			return next
		}
	}
	return s
}

// SelectWorkspace makes the given workspace active. The active chat is
// cleared in the same transition unless it already belongs to the target
// workspace.
func (s State) SelectWorkspace(workspaceID string) State {
	workspace, ok := s.workspace(workspaceID)
	if !ok {
		return s
	}
	next := s
	next.ActiveWorkspaceID = workspaceID
	if s.ActiveChatID != "" {
		found := false
		for _, chat := range workspace.Chats {
			if chat.ID == s.ActiveChatID {
				found = true
				break
			}
		}
		if !found {
			next.ActiveChatID = ""
		}
	}
	return next
}

// CreateWorkspace appends a new empty workspace and makes it active,
// clearing the active chat.
func (s State) CreateWorkspace(name string) (State, string) {
	workspace := Workspace{ID: NewID(), Name: name}
	workspaces := make([]Workspace, 0, len(s.Workspaces)+1)
	workspaces = append(workspaces, s.Workspaces...)
	workspaces = append(workspaces, workspace)

	next := s
	next.Workspaces = workspaces
	next.ActiveWorkspaceID = workspace.ID
	next.ActiveChatID = ""
	return next, workspace.ID
}

// RenameWorkspace renames the given workspace.
func (s State) RenameWorkspace(workspaceID, name string) State {
	workspaces := s.cloneWorkspaces()
	for i, workspace := range workspaces {
		if workspace.ID == workspaceID {
			workspaces[i].Name = name
			next := s
			next.Workspaces = workspaces
			return next
		}
	}
	return s
}

// DeleteWorkspace removes a workspace. Deleting the sole remaining workspace
// is rejected with ErrLastWorkspace and leaves the state unchanged. Deleting
// the active workspace selects the first remaining one and clears the active
// chat in the same transition.
func (s State) DeleteWorkspace(workspaceID string) (State, error) {
	if _, ok := s.workspace(workspaceID); !ok {
		return s, nil
	}
	if len(s.Workspaces) <= 1 {
		return s, ErrLastWorkspace
	}

	workspaces := make([]Workspace, 0, len(s.Workspaces)-1)
	for _, workspace := range s.Workspaces {
		if workspace.ID != workspaceID {
			workspaces = append(workspaces, workspace)
		}
	}

	next := s
	next.Workspaces = workspaces
	if s.ActiveWorkspaceID == workspaceID {
		next.ActiveWorkspaceID = workspaces[0].ID
		next.ActiveChatID = ""
	}
	return next, nil
}
