package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertInvariant checks that the active chat, when set, resolves inside the
// active workspace's chat list.
func assertInvariant(t *testing.T, s State) {
	t.Helper()
	if s.ActiveChatID == "" {
		return
	}
	_, ok := s.ActiveChat()
	assert.True(t, ok, "active chat %q does not resolve inside active workspace %q", s.ActiveChatID, s.ActiveWorkspaceID)
}

func newTestState(t *testing.T) State {
	t.Helper()
	s := DefaultState("gemini-2.5-flash")
	s.ActiveWorkspaceID = s.Workspaces[0].ID
	return s
}

func TestCreateChat(t *testing.T) {
	s := newTestState(t)
	workspaceID := s.Workspaces[0].ID

	s, firstID := s.CreateChat(workspaceID, "gemini-2.5-flash")
	require.NotEmpty(t, firstID)
	s, secondID := s.CreateChat(workspaceID, "gemini-2.5-flash")
	require.NotEmpty(t, secondID)

	// New chats are prepended.
	require.Len(t, s.Workspaces[0].Chats, 2)
	assert.Equal(t, secondID, s.Workspaces[0].Chats[0].ID)
	assert.Equal(t, firstID, s.Workspaces[0].Chats[1].ID)
	assert.Equal(t, "New Chat", s.Workspaces[0].Chats[0].Title)
	assert.Equal(t, secondID, s.ActiveChatID)
	assertInvariant(t, s)
}

func TestCreateChatUnknownWorkspace(t *testing.T) {
	s := newTestState(t)
	next, id := s.CreateChat("missing", "gemini-2.5-flash")
	assert.Empty(t, id)
	assert.Equal(t, s, next)
}

func TestDeleteChatIndexPreservingPolicy(t *testing.T) {
	tests := []struct {
		name        string
		chats       int
		deleteIndex int
		wantIndex   int
	}{
		{name: "first of three", chats: 3, deleteIndex: 0, wantIndex: 0},
		{name: "middle of three", chats: 3, deleteIndex: 1, wantIndex: 1},
		{name: "last of three", chats: 3, deleteIndex: 2, wantIndex: 1},
		{name: "last of two", chats: 2, deleteIndex: 1, wantIndex: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(t)
			workspaceID := s.Workspaces[0].ID
			for i := 0; i < tt.chats; i++ {
				s, _ = s.CreateChat(workspaceID, "m")
			}
			target := s.Workspaces[0].Chats[tt.deleteIndex]
			s = s.SelectChat(target.ID)

			remaining := make([]Chat, 0, tt.chats-1)
			for i, chat := range s.Workspaces[0].Chats {
				if i != tt.deleteIndex {
					remaining = append(remaining, chat)
				}
			}

			s = s.DeleteChat(workspaceID, target.ID)
			require.Len(t, s.Workspaces[0].Chats, tt.chats-1)
			assert.Equal(t, remaining[tt.wantIndex].ID, s.ActiveChatID)
			assertInvariant(t, s)
		})
	}
}

func TestDeleteChatLastRemaining(t *testing.T) {
	s := newTestState(t)
	workspaceID := s.Workspaces[0].ID
	s, chatID := s.CreateChat(workspaceID, "m")

	s = s.DeleteChat(workspaceID, chatID)
	assert.Empty(t, s.Workspaces[0].Chats)
	assert.Empty(t, s.ActiveChatID)
	assertInvariant(t, s)
}

func TestDeleteChatInactive(t *testing.T) {
	s := newTestState(t)
	workspaceID := s.Workspaces[0].ID
	s, first := s.CreateChat(workspaceID, "m")
	s, second := s.CreateChat(workspaceID, "m")

	// Active is second; deleting first must not touch the selection.
	s = s.DeleteChat(workspaceID, first)
	assert.Equal(t, second, s.ActiveChatID)
	assertInvariant(t, s)
}

func TestAppendUserMessageDoesNotSetTitle(t *testing.T) {
	s := newTestState(t)
	s, chatID := s.CreateChat(s.Workspaces[0].ID, "m")

	s = s.AppendUserMessage(chatID, "hello there")
	chat, ok := s.FindChat(chatID)
	require.True(t, ok)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, RoleUser, chat.Messages[0].Role)
	assert.Equal(t, "New Chat", chat.Title)
}

func TestMergeModelText(t *testing.T) {
	s := newTestState(t)
	s, chatID := s.CreateChat(s.Workspaces[0].ID, "m")
	s = s.AppendUserMessage(chatID, "hi")

	// First merge appends a model message, subsequent merges replace it.
	s = s.MergeModelText(chatID, "Hel")
	s = s.MergeModelText(chatID, "Hello wor")
	s = s.MergeModelText(chatID, "Hello world")

	chat, ok := s.FindChat(chatID)
	require.True(t, ok)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, RoleModel, chat.Messages[1].Role)
	assert.Equal(t, "Hello world", chat.Messages[1].Text)
}

func TestMergeModelTextDoesNotAliasPreviousState(t *testing.T) {
	s := newTestState(t)
	s, chatID := s.CreateChat(s.Workspaces[0].ID, "m")
	s = s.AppendUserMessage(chatID, "hi")
	before := s.MergeModelText(chatID, "one")

	after := before.MergeModelText(chatID, "two")

	chat, _ := before.FindChat(chatID)
	assert.Equal(t, "one", chat.Messages[1].Text)
	chat, _ = after.FindChat(chatID)
	assert.Equal(t, "two", chat.Messages[1].Text)
}

func TestWorkspaceOperations(t *testing.T) {
	s := newTestState(t)
	original := s.Workspaces[0].ID

	s, workID := s.CreateWorkspace("Work")
	assert.Equal(t, workID, s.ActiveWorkspaceID)
	assert.Empty(t, s.ActiveChatID)

	s = s.RenameWorkspace(workID, "Job")
	workspace, ok := s.workspace(workID)
	require.True(t, ok)
	assert.Equal(t, "Job", workspace.Name)

	// Deleting the active workspace falls back to the first remaining one.
	s, err := s.DeleteWorkspace(workID)
	require.NoError(t, err)
	assert.Equal(t, original, s.ActiveWorkspaceID)
	assert.Empty(t, s.ActiveChatID)
	assertInvariant(t, s)
}

func TestDeleteLastWorkspaceRejected(t *testing.T) {
	s := newTestState(t)
	next, err := s.DeleteWorkspace(s.Workspaces[0].ID)
	require.ErrorIs(t, err, ErrLastWorkspace)
	assert.Equal(t, s, next)
}

func TestSelectWorkspaceClearsForeignActiveChat(t *testing.T) {
	s := newTestState(t)
	s, chatID := s.CreateChat(s.Workspaces[0].ID, "m")
	s, workID := s.CreateWorkspace("Work")

	// Back to the original workspace: its chat is still there.
	s = s.SelectWorkspace(s.Workspaces[0].ID)
	s = s.SelectChat(chatID)
	require.Equal(t, chatID, s.ActiveChatID)

	s = s.SelectWorkspace(workID)
	assert.Empty(t, s.ActiveChatID)
	assertInvariant(t, s)
}

func TestFilterChats(t *testing.T) {
	s := newTestState(t)
	workspaceID := s.Workspaces[0].ID
	s, a := s.CreateChat(workspaceID, "m")
	s, b := s.CreateChat(workspaceID, "m")
	s = s.SetTitle(a, "Grocery list ideas")
	s = s.SetTitle(b, "Weekend trip planning")

	workspace, _ := s.ActiveWorkspace()
	matches := workspace.FilterChats("GROCERY")
	require.Len(t, matches, 1)
	assert.Equal(t, a, matches[0].ID)

	assert.Len(t, workspace.FilterChats(""), 2)
	assert.Empty(t, workspace.FilterChats("nope"))
}

func TestDeriveTitle(t *testing.T) {
	exact := strings.Repeat("a", 40)
	assert.Equal(t, exact, DeriveTitle(exact))

	long := strings.Repeat("a", 41)
	assert.Equal(t, exact+"...", DeriveTitle(long))

	assert.Equal(t, "short", DeriveTitle("short"))
}
