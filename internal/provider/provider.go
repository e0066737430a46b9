package provider

import (
	"context"

	"github.com/mbarbosa/chatspace/internal/conversation"
)

// Stream yields text fragments of a model response. Recv returns io.EOF once
// the response is complete.
type Stream interface {
	Recv() (string, error)
	Close()
}

// Session is a remote chat session seeded with a message history. Sending a
// message streams the model's reply and folds the completed turn into the
// session's accumulated history.
type Session interface {
	SendStreaming(ctx context.Context, text string) (Stream, error)
}

// Client creates remote sessions. The supplied history must already be
// normalized for role alternation (see NormalizeHistory).
type Client interface {
	CreateSession(ctx context.Context, model string, history []conversation.Message) (Session, error)
}

// NormalizeHistory collapses consecutive same-role messages, keeping only the
// first of each run, because the provider requires strictly alternating
// user/model turns in seed history. This is lossy: a legitimate pair of
// consecutive same-role messages (e.g. a corrected duplicate) is silently
// dropped.
func NormalizeHistory(messages []conversation.Message) []conversation.Message {
	normalized := make([]conversation.Message, 0, len(messages))
	for i, message := range messages {
		if i == 0 || message.Role != messages[i-1].Role {
			normalized = append(normalized, message)
		}
	}
	return normalized
}
