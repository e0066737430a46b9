package provider

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mbarbosa/chatspace/internal/conversation"
)

// Binding owns at most one live remote session, keyed by the chat identity
// and model it was built for. It rebinds whenever the active chat or its
// model diverges from the bound pair, and invalidates itself before
// propagating any transport failure so the next send always starts from a
// fresh session.
type Binding struct {
	client Client

	session     Session
	boundChatID string
	boundModel  string
}

// NewBinding returns an unbound binding over the given client.
func NewBinding(client Client) *Binding {
	return &Binding{client: client}
}

// Bound reports whether a session is currently held.
func (b *Binding) Bound() bool {
	return b.session != nil
}

// EnsureBound guarantees a session seeded with the chat's history exists.
// The chat's messages must be the history to replay, i.e. they must not yet
// include the message about to be sent.
func (b *Binding) EnsureBound(ctx context.Context, chat conversation.Chat) error {
	if b.session != nil && b.boundChatID == chat.ID && b.boundModel == chat.Model {
		return nil
	}
	session, err := b.client.CreateSession(ctx, chat.Model, NormalizeHistory(chat.Messages))
	if err != nil {
		b.Reset()
		return errors.Wrap(err, "creating provider session")
	}
	b.session = session
	b.boundChatID = chat.ID
	b.boundModel = chat.Model
	return nil
}

// Send forwards the user text to the bound session, binding first when
// needed, and returns the fragment stream.
func (b *Binding) Send(ctx context.Context, chat conversation.Chat, text string) (Stream, error) {
	if err := b.EnsureBound(ctx, chat); err != nil {
		return nil, err
	}
	stream, err := b.session.SendStreaming(ctx, text)
	if err != nil {
		b.Reset()
		return nil, errors.Wrap(err, "sending message")
	}
	return stream, nil
}

// Reset drops the bound session and its key. Called on every chat, workspace
// or model switch, and on any failure.
func (b *Binding) Reset() {
	b.session = nil
	b.boundChatID = ""
	b.boundModel = ""
}
