package conversation

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sprite-ai/revchat/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	calls atomic.Int32
	gate  chan struct{} // when non-nil, replies wait for it to close
	gen   *model.Generation
	err   error
	panic bool
}

func (f *fakeChat) GenerateText(ctx context.Context, prompt string) (*model.Generation, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.panic {
		panic("boom")
	}
	return f.gen, f.err
}

type fakeReview struct {
	calls  atomic.Int32
	gate   chan struct{}
	review *model.Review
	err    error
	got    string
}

func (f *fakeReview) Review(ctx context.Context, code string) (*model.Review, error) {
	f.calls.Add(1)
	f.got = code
	if f.gate != nil {
		<-f.gate
	}
	return f.review, f.err
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestOrchestrator(mode model.AgentMode, chat ChatBackend, review ReviewBackend, opts ...Option) *Orchestrator {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewOrchestrator(NewStore(mode), chat, review, opts...)
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("request did not settle")
	}
}

func TestSubmitWhitespaceIsIgnored(t *testing.T) {
	chat := &fakeChat{gen: &model.Generation{ID: "g", Content: "x"}}
	o := newTestOrchestrator(model.ModeChat, chat, nil)

	done, err := o.Submit(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptySubmission)
	assert.Nil(t, done)
	assert.Equal(t, 1, o.Store().Len())
	assert.Zero(t, chat.calls.Load())
	assert.False(t, o.State().InFlight)
}

func TestSubmitWhileInFlightIsIgnored(t *testing.T) {
	chat := &fakeChat{gate: make(chan struct{}), gen: &model.Generation{ID: "g1", Content: "first"}}
	o := newTestOrchestrator(model.ModeChat, chat, nil)

	done, err := o.Submit(context.Background(), "first")
	require.NoError(t, err)
	assert.True(t, o.State().InFlight)
	before := o.Store().Len()

	second, err := o.Submit(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrConcurrentSubmission)
	assert.Nil(t, second)
	assert.Equal(t, before, o.Store().Len())

	close(chat.gate)
	wait(t, done)

	assert.EqualValues(t, 1, chat.calls.Load())
	assert.False(t, o.State().InFlight)
	msgs := o.Store().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[1].Content)
	assert.Equal(t, model.SenderUser, msgs[1].Sender)
	assert.Equal(t, "g1", msgs[2].ID)
	assert.Equal(t, model.SenderAI, msgs[2].Sender)
}

func TestChatSuccess(t *testing.T) {
	chat := &fakeChat{gen: &model.Generation{Content: "answer"}}
	o := newTestOrchestrator(model.ModeChat, chat, nil)

	done, err := o.Submit(context.Background(), "  question  ")
	require.NoError(t, err)
	wait(t, done)

	msgs := o.Store().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "question", msgs[1].Content)
	assert.Equal(t, "answer", msgs[2].Content)
	assert.Regexp(t, `^chat-[0-9a-f-]{36}$`, msgs[2].ID)
	assert.Nil(t, o.State().Error)
}

func TestChatFailureSetsBannerOnly(t *testing.T) {
	netErr := &url.Error{Op: "Post", URL: "http://chat.invalid/graphql", Err: errors.New("connection refused")}
	chat := &fakeChat{err: netErr}
	o := newTestOrchestrator(model.ModeChat, chat, nil)

	done, err := o.Submit(context.Background(), "hi")
	require.NoError(t, err)
	wait(t, done)

	assert.Equal(t, 2, o.Store().Len(), "chat failure must not add an AI message")
	st := o.State()
	assert.False(t, st.InFlight)
	require.NotNil(t, st.Error)
	assert.Contains(t, st.Error.Message, "connection refused")
	assert.Equal(t, "connection refused", st.Error.NetworkDetail)
}

func TestChatErrorClearedOnNextSuccess(t *testing.T) {
	chat := &fakeChat{err: errors.New("graphql: rate limited")}
	o := newTestOrchestrator(model.ModeChat, chat, nil)

	done, _ := o.Submit(context.Background(), "one")
	wait(t, done)
	require.NotNil(t, o.State().Error)
	assert.Empty(t, o.State().Error.NetworkDetail)

	// The banner survives mode changes and clears.
	o.Clear()
	require.NotNil(t, o.State().Error)

	chat.err = nil
	chat.gen = &model.Generation{ID: "g2", Content: "ok"}
	done, _ = o.Submit(context.Background(), "two")
	wait(t, done)
	assert.Nil(t, o.State().Error)
}

func TestReviewSuccess(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	review := &fakeReview{review: &model.Review{ID: "rev-1", Timestamp: ts, Text: "❗ Issue: leak"}}
	o := newTestOrchestrator(model.ModeCodeReview, nil, review)

	done, err := o.Submit(context.Background(), "func f() {}")
	require.NoError(t, err)
	wait(t, done)

	assert.Equal(t, "func f() {}", review.got)
	msgs := o.Store().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.Message{ID: "rev-1", Content: "❗ Issue: leak", Sender: model.SenderAI, Timestamp: ts}, msgs[2])
}

func TestReviewFallbacks(t *testing.T) {
	review := &fakeReview{review: &model.Review{}}
	o := newTestOrchestrator(model.ModeCodeReview, nil, review)

	done, _ := o.Submit(context.Background(), "code")
	wait(t, done)

	last := o.Store().Messages()[2]
	assert.Regexp(t, `^codereview-[0-9a-f-]{36}$`, last.ID)
	assert.Equal(t, fixedNow, last.Timestamp)
	assert.Equal(t, ReviewEmptyText, last.Content)
}

func TestReviewFailureAppendsApology(t *testing.T) {
	review := &fakeReview{err: errors.New("upstream 500")}
	o := newTestOrchestrator(model.ModeCodeReview, nil, review)

	done, _ := o.Submit(context.Background(), "code")
	wait(t, done)

	msgs := o.Store().Messages()
	require.Len(t, msgs, 3)
	assert.Regexp(t, `^error-[0-9a-f-]{36}$`, msgs[2].ID)
	assert.Equal(t, ReviewFailedText, msgs[2].Content)
	st := o.State()
	assert.Nil(t, st.Error, "review failures never raise the banner")
	assert.False(t, st.InFlight)
}

func TestReviewUnavailable(t *testing.T) {
	o := newTestOrchestrator(model.ModeCodeReview, &fakeChat{}, nil)

	done, err := o.Submit(context.Background(), "code")
	require.NoError(t, err)
	select {
	case <-done:
	default:
		t.Fatal("unavailable submission should settle synchronously")
	}

	msgs := o.Store().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "code", msgs[1].Content)
	assert.Regexp(t, `^unavailable-[0-9a-f-]{36}$`, msgs[2].ID)
	assert.Equal(t, ReviewUnavailableText, msgs[2].Content)
	assert.False(t, o.State().InFlight)
}

func TestFallbackIDsUniqueWithinSameMillisecond(t *testing.T) {
	o := newTestOrchestrator(model.ModeCodeReview, &fakeChat{}, nil)

	for _, code := range []string{"a", "b"} {
		done, err := o.Submit(context.Background(), code)
		require.NoError(t, err)
		wait(t, done)
	}

	msgs := o.Store().Messages()
	require.Len(t, msgs, 5)
	assert.NotEqual(t, msgs[2].ID, msgs[4].ID, "replies stamped with the same clock reading need distinct ids")
}

func TestModeSwitchWhileInFlightRedirectsReply(t *testing.T) {
	chat := &fakeChat{gate: make(chan struct{}), gen: &model.Generation{ID: "late", Content: "late reply"}}
	o := newTestOrchestrator(model.ModeChat, chat, &fakeReview{})

	done, err := o.Submit(context.Background(), "hi")
	require.NoError(t, err)

	o.SetMode(model.ModeCodeReview)
	require.Equal(t, 1, o.Store().Len())
	assert.True(t, o.State().InFlight)

	close(chat.gate)
	wait(t, done)

	msgs := o.Store().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, WelcomeID, msgs[0].ID)
	assert.Equal(t, greeting(model.ModeCodeReview, false), msgs[0].Content)
	assert.Equal(t, "late", msgs[1].ID)
	assert.Equal(t, model.ModeCodeReview, o.Store().Mode())
}

func TestCallerCancellationDoesNotCancelBackend(t *testing.T) {
	var sawCancel atomic.Bool
	chat := chatFunc(func(ctx context.Context, prompt string) (*model.Generation, error) {
		time.Sleep(20 * time.Millisecond)
		sawCancel.Store(ctx.Err() != nil)
		return &model.Generation{ID: "g", Content: "done"}, nil
	})
	o := newTestOrchestrator(model.ModeChat, chat, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done, err := o.Submit(ctx, "hi")
	require.NoError(t, err)
	cancel()
	wait(t, done)

	assert.False(t, sawCancel.Load())
	assert.Equal(t, 3, o.Store().Len())
}

func TestBackendPanicRestoresIdle(t *testing.T) {
	o := newTestOrchestrator(model.ModeChat, &fakeChat{panic: true}, nil)

	done, err := o.Submit(context.Background(), "hi")
	require.NoError(t, err)
	wait(t, done)

	st := o.State()
	assert.False(t, st.InFlight)
	require.NotNil(t, st.Error)
	assert.Contains(t, st.Error.Message, "boom")

	_, err = o.Submit(context.Background(), "again")
	assert.NoError(t, err)
}

func TestNotifyCalledOnChanges(t *testing.T) {
	var n atomic.Int32
	chat := &fakeChat{gen: &model.Generation{ID: "g", Content: "x"}}
	o := newTestOrchestrator(model.ModeChat, chat, nil, WithNotify(func() { n.Add(1) }))

	done, _ := o.Submit(context.Background(), "hi")
	wait(t, done)
	assert.GreaterOrEqual(t, n.Load(), int32(2))

	before := n.Load()
	o.SetMode(model.ModeChat)
	assert.Equal(t, before, n.Load(), "setting the current mode is not a change")
	o.Clear()
	assert.Equal(t, before+1, n.Load())
}

type chatFunc func(ctx context.Context, prompt string) (*model.Generation, error)

func (f chatFunc) GenerateText(ctx context.Context, prompt string) (*model.Generation, error) {
	return f(ctx, prompt)
}
