// Package backend implements the chat and code review collaborators used by
// a conversation.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sprite-ai/revchat/internal/model"
)

const (
	// DefaultChatTimeout bounds one GenerateText call.
	DefaultChatTimeout = 60 * time.Second

	maxResponseSize = 4 * 1024 * 1024
)

const generateTextQuery = `query GenerateText($prompt: String!) {
  generateText(prompt: $prompt) {
    id
    content
    finishReason
  }
}`

// ErrNoGeneration is returned when a successful response has no generateText field.
var ErrNoGeneration = errors.New("response contained no generateText result")

// StatusError is a non-2xx response from the GraphQL endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("graphql endpoint returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("graphql endpoint returned %d: %s", e.StatusCode, e.Body)
}

// GraphQLError carries the errors[] array of a GraphQL response.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		GenerateText *struct {
			ID           string  `json:"id"`
			Content      string  `json:"content"`
			FinishReason *string `json:"finishReason"`
		} `json:"generateText"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ChatClient calls the generateText query of a GraphQL endpoint. Every call
// goes to the network; nothing is cached.
type ChatClient struct {
	endpoint string
	headers  map[string]string
	http     *http.Client
}

// NewChatClient returns a client for endpoint. A non-positive timeout uses
// DefaultChatTimeout.
func NewChatClient(endpoint string, timeout time.Duration, headers map[string]string) *ChatClient {
	if timeout <= 0 {
		timeout = DefaultChatTimeout
	}
	return &ChatClient{
		endpoint: endpoint,
		headers:  headers,
		http:     &http.Client{Timeout: timeout},
	}
}

// GenerateText sends prompt and returns the generation. Transport failures
// are returned as *url.Error.
func (c *ChatClient) GenerateText(ctx context.Context, prompt string) (*model.Generation, error) {
	body, err := json.Marshal(graphqlRequest{
		OperationName: "GenerateText",
		Query:         generateTextQuery,
		Variables:     map[string]any{"prompt": prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out graphqlResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Errors) > 0 {
		gqlErr := &GraphQLError{}
		for _, e := range out.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return nil, gqlErr
	}
	gen := out.Data.GenerateText
	if gen == nil {
		return nil, ErrNoGeneration
	}

	result := &model.Generation{ID: gen.ID, Content: gen.Content}
	if gen.FinishReason != nil {
		result.FinishReason = *gen.FinishReason
	}
	return result, nil
}
