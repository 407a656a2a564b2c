package conversation

import "github.com/sprite-ai/revchat/internal/model"

// WelcomeID is the id of the greeting that starts every transcript.
const WelcomeID = "welcome"

const (
	chatWelcome   = "Hi! I'm the DeepSeek AI assistant. What can I help you with?"
	reviewWelcome = "Hi! I'm the DeepSeek code review assistant. Submit your code and I'll review it and suggest improvements."

	chatCleared   = "Conversation cleared. I'm the DeepSeek AI assistant. What can I help you with?"
	reviewCleared = "Conversation cleared. I'm the DeepSeek code review assistant. Submit your code and I'll review it."
)

// Fixed replies used when a review does not produce text of its own.
const (
	ReviewFailedText      = "Something went wrong while processing the code review. Please try again or contact an administrator."
	ReviewEmptyText       = "Sorry, an error occurred during the code review."
	ReviewUnavailableText = "The code review service is temporarily unavailable. Please try again later."
)

func greeting(mode model.AgentMode, cleared bool) string {
	switch {
	case mode == model.ModeCodeReview && cleared:
		return reviewCleared
	case mode == model.ModeCodeReview:
		return reviewWelcome
	case cleared:
		return chatCleared
	default:
		return chatWelcome
	}
}

// Placeholder is the input hint shown for mode.
func Placeholder(mode model.AgentMode) string {
	if mode == model.ModeCodeReview {
		return "Paste a code snippet or diff to review..."
	}
	return "Type your question..."
}

// Hint is the one-line status shown under the transcript.
func Hint(mode model.AgentMode, inFlight bool) string {
	switch {
	case inFlight:
		return "Thinking..."
	case mode == model.ModeCodeReview:
		return "Paste a code snippet and I'll review it and suggest improvements"
	default:
		return "Ask me anything"
	}
}
