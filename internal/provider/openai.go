package provider

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/mbarbosa/chatspace/internal/conversation"
)

// OpenAIClient implements Client on top of an OpenAI-compatible chat
// completion API.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient returns a client for the given API key and host.
func NewOpenAIClient(apiKey, apiHost string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if apiHost != "" {
		config.BaseURL = apiHost
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(config)}
}

// CreateSession seeds a session with the given history. The chat completion
// API is stateless, so the session carries the accumulated turns itself and
// replays them on every send.
func (c *OpenAIClient) CreateSession(ctx context.Context, model string, history []conversation.Message) (Session, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, message := range history {
		messages = append(messages, toChatCompletionMessage(message))
	}
	return &openAISession{
		client:   c.client,
		model:    model,
		messages: messages,
	}, nil
}

func toChatCompletionMessage(message conversation.Message) openai.ChatCompletionMessage {
	role := openai.ChatMessageRoleUser
	if message.Role == conversation.RoleModel {
		role = openai.ChatMessageRoleAssistant
	}
	return openai.ChatCompletionMessage{Role: role, Content: message.Text}
}

// openAISession holds the replayed history of one bound chat. Sends are
// single-flight by caller contract, so the history is not locked.
type openAISession struct {
	client   *openai.Client
	model    string
	messages []openai.ChatCompletionMessage
}

func (s *openAISession) SendStreaming(ctx context.Context, text string) (Stream, error) {
	userMessage := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	}
	request := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: append(append([]openai.ChatCompletionMessage{}, s.messages...), userMessage),
		Stream:   true,
	}
	stream, err := s.client.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return nil, errors.Wrap(err, "creating chat completion stream")
	}
	return &openAIStream{session: s, userMessage: userMessage, stream: stream}, nil
}

// openAIStream adapts the SDK stream and, on clean completion, folds the
// finished turn back into its session's history so the next send replays it.
type openAIStream struct {
	session     *openAISession
	userMessage openai.ChatCompletionMessage
	stream      *openai.ChatCompletionStream
	response    string
	completed   bool
}

func (s *openAIStream) Recv() (string, error) {
	response, err := s.stream.Recv()
	if err != nil {
		// io.EOF included: the SDK signals completion through Recv.
		s.complete(err)
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	token := response.Choices[0].Delta.Content
	s.response += token
	return token, nil
}

func (s *openAIStream) complete(err error) {
	if s.completed {
		return
	}
	s.completed = true
	if !errors.Is(err, io.EOF) {
		return
	}
	s.session.messages = append(s.session.messages,
		s.userMessage,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s.response},
	)
}

func (s *openAIStream) Close() {
	s.stream.Close()
}
