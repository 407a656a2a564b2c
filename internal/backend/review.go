package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sprite-ai/revchat/internal/model"
)

const (
	DefaultReviewBaseURL = "https://api.deepseek.com/v1"
	DefaultReviewModel   = "deepseek-chat"
	DefaultReviewTimeout = 120 * time.Second
)

// ErrMissingAPIKey is returned by NewReviewAgent when no key is configured.
var ErrMissingAPIKey = errors.New("review agent: no API key configured")

// ReviewAgentConfig configures a ReviewAgent. Zero values use the defaults.
type ReviewAgentConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	SystemPrompt string
}

// ReviewAgent reviews code through an OpenAI-compatible chat completion API.
type ReviewAgent struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

// NewReviewAgent builds an agent. It fails only when the API key is missing.
func NewReviewAgent(cfg ReviewAgentConfig) (*ReviewAgent, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = DefaultReviewBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultReviewTimeout
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	agent := &ReviewAgent{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
	}
	if agent.model == "" {
		agent.model = DefaultReviewModel
	}
	if agent.systemPrompt == "" {
		agent.systemPrompt = DefaultReviewSystemPrompt
	}
	return agent, nil
}

// Model returns the model name requests are sent to.
func (a *ReviewAgent) Model() string {
	return a.model
}

// Review sends code for review. The reply id and creation time come from the
// completion response; either may be empty.
func (a *ReviewAgent) Review(ctx context.Context, code string) (*model.Review, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: a.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildReviewPrompt(code)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("review completion: %w", err)
	}

	rev := &model.Review{ID: resp.ID}
	if resp.Created > 0 {
		rev.Timestamp = time.Unix(resp.Created, 0)
	}
	if len(resp.Choices) > 0 {
		rev.Text = resp.Choices[0].Message.Content
	}
	return rev, nil
}
