package conversation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sprite-ai/revchat/internal/logger"
	"github.com/sprite-ai/revchat/internal/model"
)

var (
	// ErrEmptySubmission is returned for whitespace-only submissions.
	ErrEmptySubmission = errors.New("empty submission")
	// ErrConcurrentSubmission is returned while a request is in flight.
	ErrConcurrentSubmission = errors.New("a request is already in flight")

	errNoChatBackend = errors.New("chat backend is not configured")
	errNoGeneration  = errors.New("chat backend returned no generation")
)

// ChatBackend produces a chat reply for a prompt.
type ChatBackend interface {
	GenerateText(ctx context.Context, prompt string) (*model.Generation, error)
}

// ReviewBackend produces a code review for a submission.
type ReviewBackend interface {
	Review(ctx context.Context, code string) (*model.Review, error)
}

// Orchestrator accepts submissions for one session and dispatches at most
// one backend call at a time.
type Orchestrator struct {
	store  *Store
	chat   ChatBackend
	review ReviewBackend

	now    func() time.Time
	notify func()

	mu       sync.Mutex
	inFlight bool
	lastErr  *model.ErrorInfo
}

type Option func(*Orchestrator)

// WithClock overrides the time source used for generated messages.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithNotify registers fn to be called after every transcript or state change.
// fn is called without any lock held.
func WithNotify(fn func()) Option {
	return func(o *Orchestrator) { o.notify = fn }
}

// NewOrchestrator returns an orchestrator over store. A nil review backend
// marks the code review service as unavailable.
func NewOrchestrator(store *Store, chat ChatBackend, review ReviewBackend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		chat:   chat,
		review: review,
		now:    time.Now,
		notify: func() {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the session's conversation store.
func (o *Orchestrator) Store() *Store {
	return o.store
}

// Submit appends text as a user message and starts the backend call for the
// current mode. The returned channel is closed once the request has settled
// and the orchestrator is idle again.
//
// The backend call is not tied to ctx cancellation; a reply that arrives
// after a mode switch or clear lands in the transcript that is current then.
func (o *Orchestrator) Submit(ctx context.Context, text string) (<-chan struct{}, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySubmission
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrConcurrentSubmission
	}

	mode := o.store.Mode()
	msg, _ := o.store.AppendUser(text)
	done := make(chan struct{})

	if mode == model.ModeCodeReview && o.review == nil {
		now := o.now()
		o.store.AppendAI(model.Message{
			ID:        replyID("unavailable"),
			Content:   ReviewUnavailableText,
			Timestamp: now,
		})
		o.mu.Unlock()
		logger.Warnf("code review requested but no review backend is configured")
		close(done)
		o.notify()
		return done, nil
	}

	o.inFlight = true
	o.mu.Unlock()
	o.notify()

	logger.WithFields(map[string]any{"mode": mode.String(), "message_id": msg.ID}).Debug("dispatching request")
	go o.dispatch(context.WithoutCancel(ctx), mode, msg.Content, done)
	return done, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, mode model.AgentMode, prompt string, done chan struct{}) {
	start := time.Now()
	defer close(done)
	defer o.notify()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("%s backend panicked: %v", mode, r)
			o.fail(mode, fmt.Errorf("backend panic: %v", r))
		}
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
		logger.Debugf("%s request settled in %s", mode, time.Since(start).Round(time.Millisecond))
	}()

	if mode == model.ModeCodeReview {
		o.runReview(ctx, prompt)
		return
	}
	o.runChat(ctx, prompt)
}

func (o *Orchestrator) runChat(ctx context.Context, prompt string) {
	if o.chat == nil {
		o.fail(model.ModeChat, errNoChatBackend)
		return
	}
	gen, err := o.chat.GenerateText(ctx, prompt)
	if err != nil {
		o.fail(model.ModeChat, err)
		return
	}
	if gen == nil {
		o.fail(model.ModeChat, errNoGeneration)
		return
	}

	now := o.now()
	id := gen.ID
	if id == "" {
		id = replyID("chat")
	}
	o.succeed(model.Message{ID: id, Content: gen.Content, Timestamp: now})
}

func (o *Orchestrator) runReview(ctx context.Context, code string) {
	rev, err := o.review.Review(ctx, code)
	if err != nil {
		o.fail(model.ModeCodeReview, err)
		return
	}

	now := o.now()
	msg := model.Message{
		ID:        replyID("codereview"),
		Content:   ReviewEmptyText,
		Timestamp: now,
	}
	if rev != nil {
		if rev.ID != "" {
			msg.ID = rev.ID
		}
		if !rev.Timestamp.IsZero() {
			msg.Timestamp = rev.Timestamp
		}
		if rev.Text != "" {
			msg.Content = rev.Text
		}
	}
	o.succeed(msg)
}

func (o *Orchestrator) succeed(msg model.Message) {
	o.store.AppendAI(msg)
	o.mu.Lock()
	o.lastErr = nil
	o.mu.Unlock()
}

// fail records err the way mode presents failures: a banner for chat, an
// apology message for code review.
func (o *Orchestrator) fail(mode model.AgentMode, err error) {
	logger.Errorf("%s request failed: %v", mode, err)

	if mode == model.ModeCodeReview {
		now := o.now()
		o.store.AppendAI(model.Message{
			ID:        replyID("error"),
			Content:   ReviewFailedText,
			Timestamp: now,
		})
		return
	}

	info := errorInfo(err)
	o.mu.Lock()
	o.lastErr = info
	o.mu.Unlock()
}

// replyID names a reply the backend did not identify.
func replyID(kind string) string {
	return kind + "-" + uuid.NewString()
}

func errorInfo(err error) *model.ErrorInfo {
	info := &model.ErrorInfo{Message: err.Error()}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		info.NetworkDetail = urlErr.Err.Error()
	}
	return info
}

// State returns the current request state.
func (o *Orchestrator) State() model.RequestState {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := model.RequestState{InFlight: o.inFlight}
	if o.lastErr != nil {
		e := *o.lastErr
		st.Error = &e
	}
	return st
}

// SetMode switches the session mode. An in-flight request is not cancelled.
func (o *Orchestrator) SetMode(mode model.AgentMode) {
	if o.store.SetMode(mode) {
		o.notify()
	}
}

// Clear resets the transcript for the current mode.
func (o *Orchestrator) Clear() {
	o.store.Clear()
	o.notify()
}
