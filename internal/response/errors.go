package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Session ───────────────────────────────────────────────────────
	ErrSessionNotRunning  ErrCode = "SESSION_NOT_RUNNING"
	ErrSessionNotFinished ErrCode = "SESSION_NOT_FINISHED"
	ErrOperationIgnored   ErrCode = "OPERATION_IGNORED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Ошибка проверки данных. Проверьте введённые значения."
	case ErrInvalidPayload:
		return "Некорректное тело запроса."

	// ─── Session ───────────────────────────────────────────────────────
	case ErrSessionNotRunning:
		return "Тест не запущен."
	case ErrSessionNotFinished:
		return "Тест ещё не завершён."
	case ErrOperationIgnored:
		return "Действие сейчас недоступно."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Ресурс не найден."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Слишком много запросов. Попробуйте позже."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Внутренняя ошибка сервера."
	default:
		return "Произошла непредвиденная ошибка."
	}
}
