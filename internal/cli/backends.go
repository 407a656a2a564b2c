package cli

import (
	"errors"
	"fmt"

	"github.com/sprite-ai/revchat/internal/backend"
	"github.com/sprite-ai/revchat/internal/config"
	"github.com/sprite-ai/revchat/internal/conversation"
	"github.com/sprite-ai/revchat/internal/logger"
)

func newChatBackend(c config.ChatConfig) conversation.ChatBackend {
	return backend.NewChatClient(c.Endpoint, c.Timeout, c.Headers)
}

// newReviewBackend returns nil, with no error, when code review should run
// as unavailable.
func newReviewBackend(c config.ReviewConfig) (conversation.ReviewBackend, error) {
	switch c.Provider {
	case "none":
		return nil, nil
	case "local":
		return backend.NewLocalReviewer(), nil
	}

	agent, err := backend.NewReviewAgent(backend.ReviewAgentConfig{
		APIKey:       c.APIKey,
		BaseURL:      c.BaseURL,
		Model:        c.Model,
		Timeout:      c.Timeout,
		SystemPrompt: c.SystemPrompt,
	})
	if errors.Is(err, backend.ErrMissingAPIKey) {
		logger.Warnf("no review API key configured (set review.api_key or DEEPSEEK_API_KEY); code review is unavailable")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating review agent: %w", err)
	}
	logger.Infof("code review via %s (%s)", agent.Model(), c.BaseURL)
	return agent, nil
}
