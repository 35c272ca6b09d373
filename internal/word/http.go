package word

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/OP3690/wordyfy-sub000/internal/db/repository"
	httperrors "github.com/OP3690/wordyfy-sub000/pkg/http/errors"
)

// HTTPHandlers exposes word CRUD endpoints.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

type addWordRequest struct {
	UserID       string `json:"user_id"`
	Word         string `json:"word"`
	Translation  string `json:"translation"`
	FromLanguage string `json:"from_language"`
	ToLanguage   string `json:"to_language"`
}

type wordResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Word           string `json:"word"`
	Translation    string `json:"translation"`
	FromLanguage   string `json:"from_language"`
	ToLanguage     string `json:"to_language"`
	Popularity     int    `json:"popularity"`
	ReviewCount    int    `json:"review_count"`
	LastReviewedAt string `json:"last_reviewed_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toWordResponse(w repository.Word) wordResponse {
	resp := wordResponse{
		ID:           w.ID.String(),
		UserID:       w.UserID,
		Word:         w.Word,
		Translation:  w.Translation,
		FromLanguage: w.FromLanguage,
		ToLanguage:   w.ToLanguage,
		Popularity:   w.Popularity,
		ReviewCount:  w.ReviewCount,
		CreatedAt:    w.CreatedAt.UTC().Format(time.RFC3339),
	}
	if w.LastReviewedAt != nil {
		resp.LastReviewedAt = w.LastReviewedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Words handles POST (add) and GET (list) on /v1/words.
func (h *HTTPHandlers) Words(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.addWord(w, r)
	case http.MethodGet:
		h.listWords(w, r)
	default:
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "method not allowed")
	}
}

func (h *HTTPHandlers) addWord(w http.ResponseWriter, r *http.Request) {
	var req addWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	for field, val := range map[string]string{
		"user_id":       req.UserID,
		"word":          req.Word,
		"translation":   req.Translation,
		"from_language": req.FromLanguage,
		"to_language":   req.ToLanguage,
	} {
		if strings.TrimSpace(val) == "" {
			httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, field+" is required", field)
			return
		}
	}

	saved, err := h.svc.Add(r.Context(), AddInput{
		UserID:       req.UserID,
		Word:         req.Word,
		Translation:  req.Translation,
		FromLanguage: req.FromLanguage,
		ToLanguage:   req.ToLanguage,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to save word")
		httperrors.RespondInternalError(w, "failed to save word")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toWordResponse(saved))
}

func (h *HTTPHandlers) listWords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, fromLang, toLang := q.Get("user_id"), q.Get("from_language"), q.Get("to_language")
	if userID == "" || fromLang == "" || toLang == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField,
			"user_id, from_language and to_language query parameters are required", "user_id")
		return
	}

	words, err := h.svc.List(r.Context(), userID, fromLang, toLang)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list words")
		httperrors.RespondInternalError(w, "failed to list words")
		return
	}

	resp := make([]wordResponse, 0, len(words))
	for _, word := range words {
		resp = append(resp, toWordResponse(word))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"words": resp, "count": len(resp)})
}

// DeleteWord handles DELETE /v1/words/{id}. The owner's user_id comes as a
// query parameter.
func (h *HTTPHandlers) DeleteWord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "method not allowed")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/v1/words/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "invalid word id", "id")
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id query parameter is required", "user_id")
		return
	}

	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeWordNotFound, "word not found")
			return
		}
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to delete word")
		httperrors.RespondInternalError(w, "failed to delete word")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
