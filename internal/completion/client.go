package completion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/keetrykee/Kilua/internal/models"
)

// Fixed generation parameters for every request.
const (
	DefaultMaxTokens = 800
	temperature      = 0.9
	topP             = 0.9
	frequencyPenalty = 0.3
	presencePenalty  = 0.3

	// DefaultBaseURL is the OpenRouter chat-completions endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultTimeout bounds the single round trip to the endpoint.
	DefaultTimeout = 60 * time.Second
)

// HistoryReader provides the bounded conversation window for a user.
type HistoryReader interface {
	Get(userID int64) []models.Turn
}

// ModelSource provides the live persona prompt and model selection.
// Read at request-build time, so a switch affects the next turn only.
type ModelSource interface {
	SystemPrompt() string
	ModelID() string
}

// Client builds chat-completion requests and extracts the reply. One
// network round trip per call, no internal retry; the caller owns the
// history append on success.
type Client struct {
	api       *openai.Client
	registry  ModelSource
	history   HistoryReader
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

func NewClient(apiKey, baseURL string, maxTokens int, timeout time.Duration, registry ModelSource, history HistoryReader, logger *zap.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL

	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		api:       openai.NewClientWithConfig(cfg),
		registry:  registry,
		history:   history,
		maxTokens: maxTokens,
		timeout:   timeout,
		logger:    logger,
	}
}

// Complete sends [system persona] ++ history ++ [user prompt] to the
// endpoint and returns the assistant reply from the first choice.
func (c *Client) Complete(ctx context.Context, userID int64, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	history := c.history.Get(userID)
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: c.registry.SystemPrompt(),
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	requestID := uuid.New().String()
	model := c.registry.ModelID()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:            model,
		Messages:         messages,
		MaxTokens:        c.maxTokens,
		Temperature:      temperature,
		TopP:             topP,
		FrequencyPenalty: frequencyPenalty,
		PresencePenalty:  presencePenalty,
	})
	if err != nil {
		cerr := classify(err)
		c.logger.Error("Completion request failed",
			zap.Error(cerr),
			zap.String("request_id", requestID),
			zap.String("model", model),
			zap.Int64("user_id", userID))
		return "", cerr
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		cerr := &Error{Kind: KindMalformedResponse, Err: errors.New("response has no reply content")}
		c.logger.Error("Completion response malformed",
			zap.String("request_id", requestID),
			zap.String("model", model),
			zap.Int64("user_id", userID))
		return "", cerr
	}

	return resp.Choices[0].Message.Content, nil
}

func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: KindBadStatus, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Kind: KindBadStatus, Err: err}
	}

	return &Error{Kind: KindTransport, Err: err}
}
