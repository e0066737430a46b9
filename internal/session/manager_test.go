package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbarbosa/chatspace/internal/conversation"
	"github.com/mbarbosa/chatspace/internal/notify"
	"github.com/mbarbosa/chatspace/internal/provider"
)

func newTestManager(t *testing.T, client provider.Client) (*Manager, *notify.Nop) {
	t.Helper()
	state := conversation.DefaultState("gemini-2.5-flash")
	state.ActiveWorkspaceID = state.Workspaces[0].ID
	notifier := &notify.Nop{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(state, provider.NewBinding(client), notifier, logger, nil), notifier
}

func TestSendMessageCoalescesFragments(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{"Hel", "lo wor", "ld"}}}
	manager, _ := newTestManager(t, client)
	chatID := manager.NewChat()

	require.NoError(t, manager.SendMessage(context.Background(), "hi"))

	chat, ok := manager.State().FindChat(chatID)
	require.True(t, ok)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, conversation.RoleUser, chat.Messages[0].Role)
	assert.Equal(t, "hi", chat.Messages[0].Text)
	assert.Equal(t, conversation.RoleModel, chat.Messages[1].Role)
	assert.Equal(t, "Hello world", chat.Messages[1].Text)
	assert.False(t, manager.Loading())
}

func TestSendMessageSetsTitleAfterFirstTurn(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{"sure"}, {"again"}}}
	manager, _ := newTestManager(t, client)
	chatID := manager.NewChat()

	require.NoError(t, manager.SendMessage(context.Background(), "plan my weekend trip"))
	chat, _ := manager.State().FindChat(chatID)
	assert.Equal(t, "plan my weekend trip", chat.Title)

	// The title is set once, from the first message only.
	require.NoError(t, manager.SendMessage(context.Background(), "something else entirely"))
	chat, _ = manager.State().FindChat(chatID)
	assert.Equal(t, "plan my weekend trip", chat.Title)
}

func TestSendMessageNoActiveChat(t *testing.T) {
	client := &provider.FakeClient{}
	manager, _ := newTestManager(t, client)

	require.NoError(t, manager.SendMessage(context.Background(), "hello"))
	assert.Empty(t, client.Sessions)
}

func TestSendMessageEmptyStreamLeavesNoDanglingMessage(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{}}}
	manager, _ := newTestManager(t, client)
	chatID := manager.NewChat()

	require.NoError(t, manager.SendMessage(context.Background(), "hi"))

	chat, _ := manager.State().FindChat(chatID)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, conversation.RoleUser, chat.Messages[0].Role)
}

func TestSendMessageProviderFailure(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{"par"}}, StreamErr: errors.New("connection reset")}
	manager, _ := newTestManager(t, client)
	chatID := manager.NewChat()

	err := manager.SendMessage(context.Background(), "hi")
	require.Error(t, err)

	// Exactly one error-annotated model message replaces the in-progress one.
	chat, _ := manager.State().FindChat(chatID)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, conversation.RoleModel, chat.Messages[1].Role)
	assert.Contains(t, chat.Messages[1].Text, "Error: ")
	assert.Contains(t, chat.Messages[1].Text, "connection reset")
	assert.False(t, manager.Loading())

	// The next send rebuilds a session from scratch.
	client.StreamErr = nil
	client.Fragments = [][]string{{"ok"}}
	require.NoError(t, manager.SendMessage(context.Background(), "retry"))
	assert.Len(t, client.Sessions, 2)
}

func TestSendMessageSeedsHistoryWithoutOptimisticAppend(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{"first"}, {"second"}}}
	manager, _ := newTestManager(t, client)
	manager.NewChat()

	require.NoError(t, manager.SendMessage(context.Background(), "one"))

	// Force a rebind so the seed for turn two is observable.
	manager.binding.Reset()
	require.NoError(t, manager.SendMessage(context.Background(), "two"))

	require.Len(t, client.Sessions, 2)
	history := client.Sessions[1].History
	require.Len(t, history, 2)
	assert.Equal(t, "one", history[0].Text)
	assert.Equal(t, "first", history[1].Text)
}

func TestNavigationResetsBinding(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{"a"}}}
	manager, _ := newTestManager(t, client)
	chatID := manager.NewChat()
	require.NoError(t, manager.SendMessage(context.Background(), "hi"))
	require.True(t, manager.binding.Bound())

	manager.SelectChat(chatID)
	assert.False(t, manager.binding.Bound())
}

func TestDeleteWorkspaceValidation(t *testing.T) {
	client := &provider.FakeClient{}
	manager, _ := newTestManager(t, client)
	workspaceID := manager.State().ActiveWorkspaceID

	err := manager.DeleteWorkspace(workspaceID)
	require.ErrorIs(t, err, conversation.ErrLastWorkspace)
	assert.Len(t, manager.State().Workspaces, 1)
}

func TestPersistObserverRunsOnEveryMutation(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{"a", "b"}}}
	state := conversation.DefaultState("m")
	state.ActiveWorkspaceID = state.Workspaces[0].ID
	saves := 0
	persist := func(conversation.State) error {
		saves++
		return nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := New(state, provider.NewBinding(client), &notify.Nop{}, logger, persist)

	manager.NewChat()
	require.NoError(t, manager.SendMessage(context.Background(), "hi"))

	// NewChat + user append + two fragments + title.
	assert.Equal(t, 5, saves)
}

func TestPersistFailureIsNotFatal(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{"a"}}}
	state := conversation.DefaultState("m")
	state.ActiveWorkspaceID = state.Workspaces[0].ID
	persist := func(conversation.State) error { return errors.New("disk full") }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := New(state, provider.NewBinding(client), &notify.Nop{}, logger, persist)

	chatID := manager.NewChat()
	require.NoError(t, manager.SendMessage(context.Background(), "hi"))
	chat, _ := manager.State().FindChat(chatID)
	assert.Len(t, chat.Messages, 2)
}

func TestNotificationFiresWhenEnabledAndUnfocused(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{"a"}}}
	manager, notifier := newTestManager(t, client)
	manager.NewChat()
	manager.ToggleNotifications()
	manager.SetFocusProbe(func() bool { return false })

	require.NoError(t, manager.SendMessage(context.Background(), "hi"))
	require.Len(t, notifier.Notified, 1)
	assert.Contains(t, notifier.Notified[0], notificationBody)
}

func TestNotificationSkippedWhenFocused(t *testing.T) {
	client := &provider.FakeClient{Fragments: [][]string{{"a"}}}
	manager, notifier := newTestManager(t, client)
	manager.NewChat()
	manager.ToggleNotifications()
	manager.SetFocusProbe(func() bool { return true })

	require.NoError(t, manager.SendMessage(context.Background(), "hi"))
	assert.Empty(t, notifier.Notified)
}

// blockingStream hands control of fragment delivery to the test.
type blockingStream struct {
	fragments chan string
	done      chan struct{}
}

func (s *blockingStream) Recv() (string, error) {
	select {
	case fragment, ok := <-s.fragments:
		if !ok {
			return "", io.EOF
		}
		return fragment, nil
	case <-s.done:
		return "", io.EOF
	}
}

func (s *blockingStream) Close() {}

type blockingClient struct {
	stream *blockingStream
}

func (c *blockingClient) CreateSession(context.Context, string, []conversation.Message) (provider.Session, error) {
	return c, nil
}

func (c *blockingClient) SendStreaming(context.Context, string) (provider.Stream, error) {
	return c.stream, nil
}

func TestFragmentsLandInOriginChatAfterSwitch(t *testing.T) {
	stream := &blockingStream{fragments: make(chan string), done: make(chan struct{})}
	manager, _ := newTestManager(t, &blockingClient{stream: stream})
	originID := manager.NewChat()
	otherID := manager.NewChat()
	manager.SelectChat(originID)

	sendDone := make(chan error, 1)
	go func() {
		sendDone <- manager.SendMessage(context.Background(), "hi")
	}()

	stream.fragments <- "one "
	stream.fragments <- "two "
	require.Eventually(t, func() bool {
		chat, _ := manager.State().FindChat(originID)
		return len(chat.Messages) == 2 && chat.Messages[1].Text == "one two "
	}, time.Second, time.Millisecond)

	// User switches away mid-stream.
	manager.SelectChat(otherID)

	stream.fragments <- "three"
	close(stream.fragments)
	require.NoError(t, <-sendDone)

	origin, _ := manager.State().FindChat(originID)
	require.Len(t, origin.Messages, 2)
	assert.Equal(t, "one two three", origin.Messages[1].Text)

	other, _ := manager.State().FindChat(otherID)
	assert.Empty(t, other.Messages)
	assert.Equal(t, otherID, manager.State().ActiveChatID)
}
