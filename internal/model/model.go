// Package model defines the core data types shared across revchat.
package model

import (
	"fmt"
	"strings"
	"time"
)

// AgentMode selects which backend agent handles a submission.
type AgentMode int

const (
	ModeChat AgentMode = iota
	ModeCodeReview
)

func (m AgentMode) String() string {
	switch m {
	case ModeChat:
		return "chat"
	case ModeCodeReview:
		return "review"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m AgentMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *AgentMode) UnmarshalText(b []byte) error {
	mode, err := ParseAgentMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Toggle returns the other mode.
func (m AgentMode) Toggle() AgentMode {
	if m == ModeCodeReview {
		return ModeChat
	}
	return ModeCodeReview
}

// ParseAgentMode parses a mode name. The empty string parses as chat.
func ParseAgentMode(s string) (AgentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "chat":
		return ModeChat, nil
	case "review", "code_review", "codereview", "code-review":
		return ModeCodeReview, nil
	default:
		return ModeChat, fmt.Errorf("unknown agent mode %q (want chat or review)", s)
	}
}

// Sender identifies who produced a message.
type Sender int

const (
	SenderUser Sender = iota
	SenderAI
)

func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderAI:
		return "ai"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Sender) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Message is one transcript entry. Messages are never mutated after creation.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorInfo is the user-visible form of a chat backend failure.
type ErrorInfo struct {
	Message       string `json:"message"`
	NetworkDetail string `json:"network_detail,omitempty"`
}

// RequestState is the loading/error state of a session.
type RequestState struct {
	InFlight bool       `json:"in_flight"`
	Error    *ErrorInfo `json:"error,omitempty"`
}

// Generation is a completed chat backend reply.
type Generation struct {
	ID           string
	Content      string
	FinishReason string // empty when the backend reported none
}

// Review is a completed code-review backend reply.
type Review struct {
	ID        string
	Timestamp time.Time
	Text      string
}

// RiskLevel categorizes the risk of a finding.
type RiskLevel int

const (
	RiskInfo RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskInfo:
		return "info"
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Severity for findings.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}
