package utils

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrDuplicate    = "DUPLICATE"
	ErrInvalidInput = "INVALID_INPUT"
	ErrConflict     = "CONFLICT"

	// Membership errors
	ErrNotMember     = "NOT_MEMBER"
	ErrAlreadyMember = "ALREADY_MEMBER"

	// Authentication errors
	ErrUnauthorized = "UNAUTHORIZED"
	ErrInvalidToken = "INVALID_TOKEN"

	// External collaborators
	ErrUpstream = "UPSTREAM"

	// Actor communication errors
	ErrActorTimeout = "ACTOR_TIMEOUT"

	ErrDatabase = "DATABASE_ERROR"
)

// NewAppError builds an AppError with the given code, message and cause.
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

func NewNotMemberError(communityID string) *AppError {
	return &AppError{
		Code:    ErrNotMember,
		Message: "no membership in community " + communityID,
	}
}

func NewValidationError(reason string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: reason,
	}
}

// IsErrorCode checks whether err is an AppError carrying the given code.
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound:
		return 404 // http.StatusNotFound
	case ErrInvalidInput:
		return 400 // http.StatusBadRequest
	case ErrUnauthorized, ErrInvalidToken:
		return 401 // http.StatusUnauthorized
	case ErrNotMember:
		return 403 // http.StatusForbidden
	case ErrDuplicate, ErrAlreadyMember, ErrConflict:
		return 409 // http.StatusConflict
	case ErrUpstream:
		return 502 // http.StatusBadGateway
	case ErrDatabase, ErrActorTimeout:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
