package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/OP3690/wordyfy-sub000/internal/quiz"
	httperrors "github.com/OP3690/wordyfy-sub000/pkg/http/errors"
	ws "github.com/OP3690/wordyfy-sub000/pkg/http/ws"
)

// Handler drives quiz sessions over a WebSocket connection. Each connection
// runs at most one session at a time.
type Handler struct {
	quizSvc  *quiz.Service
	manager  *Manager
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates the session WebSocket handler.
func NewHandler(quizSvc *quiz.Service, manager *Manager, logger zerolog.Logger) *Handler {
	return &Handler{
		quizSvc: quizSvc,
		manager: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "session_ws").Logger(),
	}
}

// HandleWebSocket upgrades the request and processes session messages until
// the client disconnects.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, h.logger)
	go wsConn.WritePump()

	client := &clientState{handler: h, conn: wsConn, request: r}
	wsConn.ReadPump(client.handleMessage)

	client.cleanup()
	wsConn.Close()
}

// clientState holds the per-connection session pointer.
type clientState struct {
	handler *Handler
	conn    *ws.Connection
	request *http.Request
	session *Session
}

func (c *clientState) handleMessage(msg ws.Message) error {
	switch msg.Type {
	case ws.TypeStartQuiz:
		return c.handleStartQuiz(msg.Payload)
	case ws.TypeSelectAnswer:
		return c.handleSelectAnswer(msg.Payload)
	case ws.TypeSubmitAnswer:
		return c.withSession(func(s *Session) error { return s.Submit() })
	case ws.TypeNextQuestion:
		return c.withSession(func(s *Session) error { return s.Next() })
	case ws.TypeEndQuiz:
		return c.withSession(func(s *Session) error { return s.End() })
	case ws.TypePing:
		return c.conn.Send(ws.Message{Type: ws.TypePong})
	default:
		return c.sendError(httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (c *clientState) handleStartQuiz(payload json.RawMessage) error {
	var req ws.StartQuizPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return c.sendError(httperrors.ErrCodeInvalidPayload, "invalid start_quiz payload")
	}
	if req.UserID == "" || req.FromLanguage == "" || req.ToLanguage == "" {
		return c.sendError(httperrors.ErrCodeInvalidPayload, "user_id, from_language and to_language are required")
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeClassic
	}
	if mode != ModeClassic && mode != ModeContinuous {
		return c.sendError(httperrors.ErrCodeInvalidPayload, fmt.Sprintf("unknown mode: %s", mode))
	}
	if c.session != nil && c.session.Snapshot().Phase != PhaseCompleted {
		return c.sendError(httperrors.ErrCodeSessionStartFailed, "a session is already running on this connection")
	}

	set, err := c.handler.quizSvc.QuestionSet(c.request.Context(), quiz.QuestionSetRequest{
		UserID:       req.UserID,
		FromLanguage: req.FromLanguage,
		ToLanguage:   req.ToLanguage,
		IsAdmin:      req.Admin,
	})
	if err != nil {
		return c.sendQuizError(err)
	}

	session := c.handler.manager.Create(req.UserID, mode, set.Questions, c.notify)
	c.session = session

	// Acknowledge before the first question notification goes out.
	started := ws.SessionStartedPayload{
		SessionID:          session.ID.String(),
		QuestionCount:      len(set.Questions),
		PerQuestionSeconds: session.rules.QuestionSeconds,
		AccessLevel:        set.AccessLevel,
	}
	msg := ws.Message{Type: ws.TypeSessionStarted}
	msg.Payload, _ = json.Marshal(started)
	if err := c.conn.Send(msg); err != nil {
		return err
	}

	session.start()
	return nil
}

func (c *clientState) handleSelectAnswer(payload json.RawMessage) error {
	var req ws.SelectAnswerPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return c.sendError(httperrors.ErrCodeInvalidPayload, "invalid select_answer payload")
	}
	return c.withSession(func(s *Session) error { return s.Select(req.Answer) })
}

func (c *clientState) withSession(fn func(*Session) error) error {
	if c.session == nil {
		return c.sendError(httperrors.ErrCodeSessionNotFound, "no active session; send start_quiz first")
	}
	if err := fn(c.session); err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNoAnswerSelected) {
			return c.sendError(httperrors.ErrCodeInvalidTransition, err.Error())
		}
		return c.sendError(httperrors.ErrCodeInternalError, err.Error())
	}
	return nil
}

// notify translates session notifications into protocol messages. It runs
// from timer callbacks, so sends must not block; the connection's queued
// writer guarantees that.
func (c *clientState) notify(n Notification) {
	var msg ws.Message
	st := n.State

	switch n.Kind {
	case KindQuestion:
		q := st.Questions[st.CurrentIndex]
		options := make([]string, 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, opt.Text)
		}
		msg.Type = ws.TypeQuestion
		msg.Payload, _ = json.Marshal(ws.QuestionPayload{
			Index:      st.CurrentIndex,
			Prompt:     q.Prompt,
			Options:    options,
			Difficulty: q.Difficulty,
			TimeLeft:   st.TimeLeft,
		})
	case KindTick:
		msg.Type = ws.TypeQuestionTick
		msg.Payload, _ = json.Marshal(ws.QuestionTickPayload{
			Index:    st.CurrentIndex,
			TimeLeft: st.TimeLeft,
		})
	case KindResult:
		msg.Type = ws.TypeAnswerResult
		msg.Payload, _ = json.Marshal(ws.AnswerResultPayload{
			Index:         st.CurrentIndex,
			Correct:       st.LastAnswerCorrect,
			TimedOut:      st.TimedOut,
			CorrectAnswer: st.Questions[st.CurrentIndex].CorrectAnswer,
			Score:         st.Score,
		})
	case KindCompleted:
		msg.Type = ws.TypeQuizComplete
		msg.Payload, _ = json.Marshal(ws.QuizCompletePayload{
			Score:          st.Score,
			TotalQuestions: len(st.Questions),
			LastIndex:      st.CurrentIndex,
		})
	default:
		return
	}

	if err := c.conn.Send(msg); err != nil {
		c.handler.logger.Debug().Err(err).Msg("session notification dropped")
	}
}

func (c *clientState) sendQuizError(err error) error {
	var denied *quiz.AccessDeniedError
	if errors.As(err, &denied) {
		return c.sendError(httperrors.ErrCodeAccessDenied,
			fmt.Sprintf("add %d more words to unlock quizzes", denied.Required-denied.WordCount))
	}
	var pool *quiz.InsufficientPoolError
	if errors.As(err, &pool) {
		return c.sendError(httperrors.ErrCodeInsufficientPool,
			fmt.Sprintf("only %d community words available, need at least %d", pool.Available, quiz.MinPoolSize))
	}
	c.handler.logger.Error().Err(err).Msg("question set build failed")
	return c.sendError(httperrors.ErrCodeQuestionSetFailed, "failed to start quiz")
}

func (c *clientState) sendError(code, message string) error {
	payload, _ := json.Marshal(ws.ErrorPayload{Code: code, Message: message})
	return c.conn.Send(ws.Message{Type: ws.TypeError, Payload: payload})
}

// cleanup ends any session left running when the client disconnects.
func (c *clientState) cleanup() {
	if c.session != nil {
		c.handler.manager.Remove(c.session.ID)
		c.session = nil
	}
}
