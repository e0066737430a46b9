package provider

import (
	"context"
	"io"

	"github.com/mbarbosa/chatspace/internal/conversation"
)

// FakeClient is an in-memory Client for tests. Each CreateSession records the
// seed it received and hands out sessions that replay scripted fragments.
type FakeClient struct {
	// Fragments yielded by the next streams, one slice per send.
	Fragments [][]string
	// SendErr fails SendStreaming immediately when set.
	SendErr error
	// StreamErr terminates each stream after its fragments instead of io.EOF.
	StreamErr error
	// CreateErr fails CreateSession when set.
	CreateErr error

	// Sessions created so far, oldest first.
	Sessions []*FakeSession
}

// FakeSession records what it was seeded and asked to send.
type FakeSession struct {
	client  *FakeClient
	Model   string
	History []conversation.Message
	Sent    []string
}

// FakeStream yields scripted fragments then a terminal error.
type FakeStream struct {
	fragments []string
	err       error
	closed    bool
}

// CreateSession implements Client.
func (c *FakeClient) CreateSession(_ context.Context, model string, history []conversation.Message) (Session, error) {
	if c.CreateErr != nil {
		return nil, c.CreateErr
	}
	session := &FakeSession{client: c, Model: model, History: history}
	c.Sessions = append(c.Sessions, session)
	return session, nil
}

// SendStreaming records the text and pops the next scripted fragment slice.
func (s *FakeSession) SendStreaming(_ context.Context, text string) (Stream, error) {
	c := s.client
	if c.SendErr != nil {
		return nil, c.SendErr
	}
	s.Sent = append(s.Sent, text)
	var fragments []string
	if len(c.Fragments) > 0 {
		fragments = c.Fragments[0]
		c.Fragments = c.Fragments[1:]
	}
	err := c.StreamErr
	if err == nil {
		err = io.EOF
	}
	return &FakeStream{fragments: fragments, err: err}, nil
}

// Recv implements Stream.
func (s *FakeStream) Recv() (string, error) {
	if len(s.fragments) == 0 {
		return "", s.err
	}
	fragment := s.fragments[0]
	s.fragments = s.fragments[1:]
	return fragment, nil
}

// Close implements Stream.
func (s *FakeStream) Close() {
	s.closed = true
}
