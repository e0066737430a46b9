package session

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/mbarbosa/chatspace/internal/provider"
)

// coalescer folds a fragment stream into a single growing model message.
// It is addressed by chat ID, never by "the active chat", so fragments keep
// landing in their origin chat after the user navigates away.
type coalescer struct {
	chatID string
	total  strings.Builder
}

func newCoalescer(chatID string) *coalescer {
	return &coalescer{chatID: chatID}
}

// drain consumes the stream, invoking apply with the chat ID and the
// monotonically growing concatenation after every non-empty fragment. The
// model message is only ever created on the first non-empty fragment, so an
// exhausted stream with no content leaves no dangling empty message. A nil
// return means clean exhaustion; any other error is the transport failing
// mid-stream.
func (c *coalescer) drain(stream provider.Stream, apply func(chatID, total string)) error {
	defer stream.Close()
	for {
		fragment, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if fragment == "" {
			continue
		}
		c.total.WriteString(fragment)
		apply(c.chatID, c.total.String())
	}
}

// received reports whether any content arrived.
func (c *coalescer) received() bool {
	return c.total.Len() > 0
}
