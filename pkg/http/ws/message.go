package ws

import "encoding/json"

// MessageType constants for the quiz session WebSocket protocol.
const (
	// Client -> Server
	TypeStartQuiz    = "start_quiz"
	TypeSelectAnswer = "select_answer"
	TypeSubmitAnswer = "submit_answer"
	TypeNextQuestion = "next_question"
	TypeEndQuiz      = "end_quiz"

	// Server -> Client
	TypeSessionStarted = "session_started"
	TypeQuestion       = "question"
	TypeQuestionTick   = "question_tick"
	TypeAnswerResult   = "answer_result"
	TypeQuizComplete   = "quiz_complete"
	TypeError          = "error"
	TypePing           = "ping"
	TypePong           = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type StartQuizPayload struct {
	UserID       string `json:"user_id"`
	FromLanguage string `json:"from_language"`
	ToLanguage   string `json:"to_language"`
	Mode         string `json:"mode,omitempty"` // "classic" (default) or "continuous"
	Admin        bool   `json:"admin,omitempty"`
}

type SelectAnswerPayload struct {
	Answer string `json:"answer"`
}

// Server Messages (outgoing)

type SessionStartedPayload struct {
	SessionID          string `json:"session_id"`
	QuestionCount      int    `json:"question_count"`
	PerQuestionSeconds int    `json:"per_question_seconds"`
	AccessLevel        string `json:"access_level"`
}

type QuestionPayload struct {
	Index      int      `json:"index"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
	TimeLeft   int      `json:"time_left"`
}

type QuestionTickPayload struct {
	Index    int `json:"index"`
	TimeLeft int `json:"time_left"`
}

type AnswerResultPayload struct {
	Index         int    `json:"index"`
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timed_out"`
	CorrectAnswer string `json:"correct_answer"`
	Score         int    `json:"score"`
}

type QuizCompletePayload struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"total_questions"`
	LastIndex      int `json:"last_index"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
