package stats

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/OP3690/wordyfy-sub000/pkg/http/errors"
)

// HTTPHandlers exposes the stats endpoints.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

type recordQuizRequest struct {
	UserID         string `json:"user_id"`
	QuizScore      int    `json:"quiz_score"`
	TotalQuestions int    `json:"total_questions"`
	Accuracy       int    `json:"accuracy"`
}

type recordReviewRequest struct {
	UserID      string `json:"user_id"`
	EnglishWord string `json:"english_word"`
}

type quizStatsResponse struct {
	UserID          string `json:"user_id"`
	TotalQuizzes    int    `json:"total_quizzes"`
	TotalQuestions  int    `json:"total_questions"`
	CorrectAnswers  int    `json:"correct_answers"`
	TotalScore      int    `json:"total_score"`
	AverageAccuracy int    `json:"average_accuracy"`
	BestScore       int    `json:"best_score"`
	CurrentStreak   int    `json:"current_streak"`
	LongestStreak   int    `json:"longest_streak"`
	LastQuizDate    string `json:"last_quiz_date,omitempty"`
}

// QuizStats handles POST (record a completed quiz) and GET (read a user's
// aggregates) on /v1/quiz-stats.
func (h *HTTPHandlers) QuizStats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.recordQuiz(w, r)
	case http.MethodGet:
		h.getStats(w, r)
	default:
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "method not allowed")
	}
}

func (h *HTTPHandlers) recordQuiz(w http.ResponseWriter, r *http.Request) {
	var req recordQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id is required", "user_id")
		return
	}
	if req.TotalQuestions <= 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "total_questions must be positive", "total_questions")
		return
	}
	if req.QuizScore < 0 || req.QuizScore > req.TotalQuestions {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "quiz_score must be between 0 and total_questions", "quiz_score")
		return
	}

	// The client-computed accuracy field is accepted for wire compatibility
	// but ignored; aggregates are always recomputed server-side.
	if err := h.svc.RecordQuiz(r.Context(), req.UserID, req.QuizScore, req.TotalQuestions); err != nil {
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to record quiz")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStatsUpdateFailed, "failed to record quiz")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (h *HTTPHandlers) getStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id query parameter is required", "user_id")
		return
	}

	row, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load stats")
		httperrors.RespondInternalError(w, "failed to load stats")
		return
	}

	resp := quizStatsResponse{
		UserID:          row.UserID,
		TotalQuizzes:    row.TotalQuizzes,
		TotalQuestions:  row.TotalQuestions,
		CorrectAnswers:  row.CorrectAnswers,
		TotalScore:      row.TotalScore,
		AverageAccuracy: row.AverageAccuracy,
		BestScore:       row.BestScore,
		CurrentStreak:   row.CurrentStreak,
		LongestStreak:   row.LongestStreak,
	}
	if row.LastQuizDate != nil {
		resp.LastQuizDate = row.LastQuizDate.UTC().Format("2006-01-02")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// RecordReview handles POST /v1/review.
func (h *HTTPHandlers) RecordReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "method not allowed")
		return
	}

	var req recordReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.EnglishWord == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id and english_word are required", "english_word")
		return
	}

	if err := h.svc.RecordReview(r.Context(), req.UserID, req.EnglishWord); err != nil {
		if errors.Is(err, ErrWordNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeWordNotFound, "word not found for this user")
			return
		}
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to record review")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeReviewUpdateFailed, "failed to record review")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
