package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeWordNotFound = "word_not_found"

	// Quiz errors
	ErrCodeAccessDenied       = "access_denied"
	ErrCodeInsufficientPool   = "insufficient_pool"
	ErrCodeQuestionSetFailed  = "question_set_failed"
	ErrCodeStatsUpdateFailed  = "stats_update_failed"
	ErrCodeReviewUpdateFailed = "review_update_failed"

	// Session errors
	ErrCodeSessionNotFound    = "session_not_found"
	ErrCodeInvalidTransition  = "invalid_transition"
	ErrCodeSessionStartFailed = "session_start_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError = "internal_error"
)
