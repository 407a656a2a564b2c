package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sprite-ai/revchat/internal/conversation"
	"github.com/sprite-ai/revchat/internal/format"
	"github.com/sprite-ai/revchat/internal/logger"
	"github.com/sprite-ai/revchat/internal/model"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsMessage is the envelope for WebSocket communication.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client frames.
const (
	msgSubmit  = "submit"
	msgSetMode = "set_mode"
	msgClear   = "clear"
	msgState   = "state"
)

// Server frames.
const (
	msgTranscript = "transcript"
	msgError      = "error"
)

type submitData struct {
	Text string `json:"text"`
}

type setModeData struct {
	Mode string `json:"mode"`
}

type transcriptData struct {
	Seq      uint64             `json:"seq"`
	Mode     model.AgentMode    `json:"mode"`
	Messages []messageJSON      `json:"messages"`
	State    model.RequestState `json:"state"`
}

// messageJSON is a transcript entry as sent to clients. AI messages carry
// their formatted segments.
type messageJSON struct {
	model.Message
	Segments []model.Segment `json:"segments,omitempty"`
}

type errorData struct {
	Message string `json:"message"`
}

// session is one conversation bound to a WebSocket connection.
type session struct {
	conn  *websocket.Conn
	cache *format.Cache
	orch  *conversation.Orchestrator
	log   *logrus.Entry

	writeMu sync.Mutex
	seq     uint64 // guarded by writeMu
	closed  atomic.Bool
}

func (s *Server) newSession(conn *websocket.Conn) *session {
	sess := &session{
		conn:  conn,
		cache: s.cache,
		log: logger.WithFields(map[string]any{
			"session": uuid.NewString(),
			"remote":  conn.RemoteAddr().String(),
		}),
	}
	sess.orch = conversation.NewOrchestrator(
		conversation.NewStore(s.opts.Mode),
		s.backends.Chat,
		s.backends.Review,
		conversation.WithNotify(sess.pushTranscript),
	)
	return sess
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sess := s.newSession(conn)
	sess.log.Info("session opened")
	defer sess.log.Info("session closed")
	defer sess.closed.Store(true)

	// Replies are delivered even if the client goes away mid-request.
	ctx := context.WithoutCancel(r.Context())

	sess.pushTranscript()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.log.Errorf("websocket read: %v", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			sess.sendError("invalid message: " + err.Error())
			continue
		}
		sess.handle(ctx, msg)
	}
}

func (sess *session) handle(ctx context.Context, msg wsMessage) {
	switch msg.Type {
	case msgSubmit:
		var data submitData
		if err := decodeData(msg.Data, &data); err != nil {
			sess.sendError("invalid submit: " + err.Error())
			return
		}
		if _, err := sess.orch.Submit(ctx, data.Text); err != nil {
			// Empty and concurrent submissions are dropped.
			sess.log.Debugf("submission ignored: %v", err)
		}

	case msgSetMode:
		var data setModeData
		if err := decodeData(msg.Data, &data); err != nil {
			sess.sendError("invalid set_mode: " + err.Error())
			return
		}
		mode, err := model.ParseAgentMode(data.Mode)
		if err != nil {
			sess.sendError(err.Error())
			return
		}
		sess.orch.SetMode(mode)

	case msgClear:
		sess.orch.Clear()

	case msgState:
		sess.pushTranscript()

	default:
		sess.sendError("unknown message type: " + msg.Type)
	}
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(raw, v)
}

// pushTranscript sends the full transcript and request state. It runs on both
// the read loop and the request goroutine; the snapshot is taken under
// writeMu so frames are written in snapshot order.
func (sess *session) pushTranscript() {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	mode, msgs := sess.orch.Store().Snapshot()
	sess.seq++
	data := transcriptData{
		Seq:      sess.seq,
		Mode:     mode,
		Messages: make([]messageJSON, 0, len(msgs)),
		State:    sess.orch.State(),
	}
	for _, m := range msgs {
		entry := messageJSON{Message: m}
		if m.Sender == model.SenderAI {
			entry.Segments = sess.cache.Get(m.Content, mode)
		}
		data.Messages = append(data.Messages, entry)
	}
	sess.writeLocked(msgTranscript, data)
}

func (sess *session) sendError(message string) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	sess.writeLocked(msgError, errorData{Message: message})
}

// writeLocked writes one frame. The caller holds writeMu.
func (sess *session) writeLocked(msgType string, data any) {
	if sess.closed.Load() {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		sess.log.Errorf("marshal %s frame: %v", msgType, err)
		return
	}
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sess.conn.WriteJSON(wsMessage{Type: msgType, Data: raw}); err != nil {
		sess.log.Errorf("websocket write %s: %v", msgType, err)
	}
}
