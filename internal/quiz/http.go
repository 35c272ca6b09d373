package quiz

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/OP3690/wordyfy-sub000/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for question-set requests.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for quiz endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "quiz_http").Logger(),
	}
}

// GetQuestions handles GET /v1/questions?from_language&to_language&user_id[&admin].
func (h *HTTPHandlers) GetQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	req := QuestionSetRequest{
		UserID:       q.Get("user_id"),
		FromLanguage: q.Get("from_language"),
		ToLanguage:   q.Get("to_language"),
		IsAdmin:      q.Get("admin") == "true",
	}
	if req.UserID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id is required", "user_id")
		return
	}
	if req.FromLanguage == "" || req.ToLanguage == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "from_language and to_language are required", "from_language")
		return
	}

	resp, err := h.service.QuestionSet(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// respondServiceError maps domain errors to HTTP semantics: access denial is
// 403 with the deficit, a thin pool is 400 with the available count, and
// anything else is a server fault.
func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, req QuestionSetRequest, err error) {
	var denied *AccessDeniedError
	if errors.As(err, &denied) {
		httperrors.RespondErrorWithDetails(w, http.StatusForbidden, httperrors.ErrCodeAccessDenied,
			"add more words to unlock quizzes", map[string]interface{}{
				"user_word_count": denied.WordCount,
				"required_words":  denied.Required,
			})
		return
	}

	var pool *InsufficientPoolError
	if errors.As(err, &pool) {
		httperrors.RespondErrorWithDetails(w, http.StatusBadRequest, httperrors.ErrCodeInsufficientPool,
			"not enough community words to build a quiz", map[string]interface{}{
				"available_words": pool.Available,
				"required_words":  MinPoolSize,
			})
		return
	}

	h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("question set build failed")
	httperrors.RespondInternalError(w, "failed to build question set")
}
