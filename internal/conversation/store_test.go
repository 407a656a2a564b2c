package conversation

import (
	"strings"
	"testing"

	"github.com/sprite-ai/revchat/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreWelcome(t *testing.T) {
	for _, mode := range []model.AgentMode{model.ModeChat, model.ModeCodeReview} {
		s := NewStore(mode)
		msgs := s.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, WelcomeID, msgs[0].ID)
		assert.Equal(t, model.SenderAI, msgs[0].Sender)
		assert.Equal(t, greeting(mode, false), msgs[0].Content)
		assert.Equal(t, mode, s.Mode())
	}
	assert.NotEqual(t, greeting(model.ModeChat, false), greeting(model.ModeCodeReview, false))
}

func TestAppendUser(t *testing.T) {
	s := NewStore(model.ModeChat)

	_, ok := s.AppendUser("  \n\t ")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	first, ok := s.AppendUser("  hello  ")
	require.True(t, ok)
	assert.Equal(t, "hello", first.Content)
	assert.Equal(t, model.SenderUser, first.Sender)
	assert.True(t, strings.HasPrefix(first.ID, "user-"))
	assert.False(t, first.Timestamp.IsZero())

	second, _ := s.AppendUser("hello")
	assert.NotEqual(t, first.ID, second.ID)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, first, msgs[1])
	assert.Equal(t, second, msgs[2])
}

func TestAppendAIForcesSender(t *testing.T) {
	s := NewStore(model.ModeChat)
	s.AppendAI(model.Message{ID: "g1", Content: "reply", Sender: model.SenderUser})
	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.SenderAI, msgs[1].Sender)
	assert.Equal(t, "g1", msgs[1].ID)
}

func TestSetModeResetsOnlyOnChange(t *testing.T) {
	s := NewStore(model.ModeChat)
	s.AppendUser("keep me")

	assert.False(t, s.SetMode(model.ModeChat))
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.SetMode(model.ModeCodeReview))
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, greeting(model.ModeCodeReview, false), msgs[0].Content)
}

func TestClearUsesClearedGreeting(t *testing.T) {
	s := NewStore(model.ModeCodeReview)
	s.AppendUser("code")
	s.Clear()

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, WelcomeID, msgs[0].ID)
	assert.Equal(t, greeting(model.ModeCodeReview, true), msgs[0].Content)
	assert.NotEqual(t, greeting(model.ModeCodeReview, false), msgs[0].Content)
	assert.Equal(t, model.ModeCodeReview, s.Mode())
}

func TestMessagesReturnsCopy(t *testing.T) {
	s := NewStore(model.ModeChat)
	msgs := s.Messages()
	msgs[0].Content = "tampered"
	assert.NotEqual(t, "tampered", s.Messages()[0].Content)
}
