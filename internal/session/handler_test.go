package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OP3690/wordyfy-sub000/internal/quiz"
	ws "github.com/OP3690/wordyfy-sub000/pkg/http/ws"
)

type handlerWordSource struct {
	count int
	pool  []quiz.CandidateWord
}

func (s *handlerWordSource) CountByUser(_ context.Context, _ string) (int, error) {
	return s.count, nil
}

func (s *handlerWordSource) CandidatePool(_ context.Context, _, _ string) ([]quiz.CandidateWord, error) {
	return s.pool, nil
}

func handlerPool(n int) []quiz.CandidateWord {
	pool := make([]quiz.CandidateWord, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, quiz.CandidateWord{
			Word:        fmt.Sprintf("word-%d", i),
			Translation: fmt.Sprintf("translation-%d", i),
			OwnerID:     "other",
		})
	}
	return pool
}

func dialTestHandler(t *testing.T, source *handlerWordSource) *websocket.Conn {
	t.Helper()

	quizSvc := quiz.NewService(source, nil, quiz.NewBuilderWithSeed(7), zerolog.Nop())
	mgr := NewManager(Config{
		ClassicQuestionSeconds:    10 * time.Second,
		ContinuousQuestionSeconds: 15 * time.Second,
		ResultDisplayDelay:        1500 * time.Millisecond,
	}, nil, zerolog.Nop())
	handler := NewHandler(quizSvc, mgr, zerolog.Nop())

	srv := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/quiz"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ws.Message{Type: msgType, Payload: raw}))
}

// readUntil skips tick messages and returns the first message of the wanted
// type, failing on anything unexpected.
func readUntil(t *testing.T, conn *websocket.Conn, want string) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
		if msg.Type == ws.TypeQuestionTick {
			continue
		}
		t.Fatalf("unexpected message %q while waiting for %q", msg.Type, want)
	}
}

func TestWebSocketQuizRoundTrip(t *testing.T) {
	conn := dialTestHandler(t, &handlerWordSource{count: 60, pool: handlerPool(30)})

	sendMessage(t, conn, ws.TypeStartQuiz, ws.StartQuizPayload{
		UserID: "u1", FromLanguage: "en", ToLanguage: "de",
	})

	started := readUntil(t, conn, ws.TypeSessionStarted)
	var startedPayload ws.SessionStartedPayload
	require.NoError(t, json.Unmarshal(started.Payload, &startedPayload))
	assert.Equal(t, 5, startedPayload.QuestionCount, "60 words is the Basic tier")
	assert.Equal(t, 10, startedPayload.PerQuestionSeconds)

	question := readUntil(t, conn, ws.TypeQuestion)
	var questionPayload ws.QuestionPayload
	require.NoError(t, json.Unmarshal(question.Payload, &questionPayload))
	assert.Equal(t, 0, questionPayload.Index)
	assert.Len(t, questionPayload.Options, 4)

	// Prompts are word-N, translations translation-N: answer correctly.
	answer := "translation-" + strings.TrimPrefix(questionPayload.Prompt, "word-")
	sendMessage(t, conn, ws.TypeSelectAnswer, ws.SelectAnswerPayload{Answer: answer})
	sendMessage(t, conn, ws.TypeSubmitAnswer, nil)

	result := readUntil(t, conn, ws.TypeAnswerResult)
	var resultPayload ws.AnswerResultPayload
	require.NoError(t, json.Unmarshal(result.Payload, &resultPayload))
	assert.True(t, resultPayload.Correct)
	assert.Equal(t, 1, resultPayload.Score)
	assert.False(t, resultPayload.TimedOut)

	sendMessage(t, conn, ws.TypeEndQuiz, nil)
	complete := readUntil(t, conn, ws.TypeQuizComplete)
	var completePayload ws.QuizCompletePayload
	require.NoError(t, json.Unmarshal(complete.Payload, &completePayload))
	assert.Equal(t, 1, completePayload.Score)
	assert.Equal(t, 5, completePayload.TotalQuestions)
}

func TestWebSocketAccessDenied(t *testing.T) {
	conn := dialTestHandler(t, &handlerWordSource{count: 10, pool: handlerPool(30)})

	sendMessage(t, conn, ws.TypeStartQuiz, ws.StartQuizPayload{
		UserID: "u1", FromLanguage: "en", ToLanguage: "de",
	})

	errMsg := readUntil(t, conn, ws.TypeError)
	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(errMsg.Payload, &payload))
	assert.Equal(t, "access_denied", payload.Code)
	assert.Contains(t, payload.Message, "40 more words")
}

func TestWebSocketRejectsActionsWithoutSession(t *testing.T) {
	conn := dialTestHandler(t, &handlerWordSource{count: 60, pool: handlerPool(30)})

	sendMessage(t, conn, ws.TypeSubmitAnswer, nil)

	errMsg := readUntil(t, conn, ws.TypeError)
	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(errMsg.Payload, &payload))
	assert.Equal(t, "session_not_found", payload.Code)
}

func TestWebSocketUnknownMessageType(t *testing.T) {
	conn := dialTestHandler(t, &handlerWordSource{count: 60, pool: handlerPool(30)})

	sendMessage(t, conn, "bogus", nil)

	errMsg := readUntil(t, conn, ws.TypeError)
	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(errMsg.Payload, &payload))
	assert.Equal(t, "unknown_message_type", payload.Code)
}
