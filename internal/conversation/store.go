// Package conversation holds a session's transcript and routes submissions
// to the chat or code-review backend.
package conversation

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sprite-ai/revchat/internal/model"
)

// Store is the transcript and agent mode of one session. The transcript is
// never empty and only grows until it is reset.
type Store struct {
	mu       sync.RWMutex
	mode     model.AgentMode
	messages []model.Message

	now   func() time.Time
	newID func() string
}

// NewStore returns a store in mode holding the welcome message.
func NewStore(mode model.AgentMode) *Store {
	s := &Store{
		now:   time.Now,
		newID: func() string { return "user-" + uuid.NewString() },
	}
	s.Reset(mode)
	return s
}

// Reset replaces the transcript with the welcome message for mode.
func (s *Store) Reset(mode model.AgentMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(mode, false)
}

// SetMode switches mode, resetting the transcript. Setting the current mode
// is a no-op.
func (s *Store) SetMode(mode model.AgentMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == s.mode {
		return false
	}
	s.resetLocked(mode, false)
	return true
}

// Clear resets the transcript for the current mode with the cleared greeting.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(s.mode, true)
}

func (s *Store) resetLocked(mode model.AgentMode, cleared bool) {
	s.mode = mode
	s.messages = []model.Message{{
		ID:        WelcomeID,
		Content:   greeting(mode, cleared),
		Sender:    model.SenderAI,
		Timestamp: s.now(),
	}}
}

// AppendUser appends trimmed text as a user message. Whitespace-only text
// appends nothing and reports false.
func (s *Store) AppendUser(text string) (model.Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msg := model.Message{
		ID:        s.newID(),
		Content:   text,
		Sender:    model.SenderUser,
		Timestamp: s.now(),
	}
	s.messages = append(s.messages, msg)
	return msg, true
}

// AppendAI appends msg with the AI sender.
func (s *Store) AppendAI(msg model.Message) {
	msg.Sender = model.SenderAI
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the transcript.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Snapshot returns the mode and a copy of the transcript together.
func (s *Store) Snapshot() (model.AgentMode, []model.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return s.mode, out
}

func (s *Store) Mode() model.AgentMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
