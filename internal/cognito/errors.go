package cognito

import (
	"errors"
	"net/http"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user not confirmed")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrInvalidParameter      = errors.New("invalid parameter")
)

// ErrorInfo is the HTTP status and error code a sentinel maps to.
type ErrorInfo struct {
	Status int
	Code   string
}

var errorMap = map[error]ErrorInfo{
	ErrUserNotFound:          {Status: http.StatusNotFound, Code: "USER_NOT_FOUND"},
	ErrUserNotConfirmed:      {Status: http.StatusForbidden, Code: "USER_NOT_CONFIRMED"},
	ErrNotAuthorized:         {Status: http.StatusUnauthorized, Code: "NOT_AUTHORIZED"},
	ErrPasswordResetRequired: {Status: http.StatusForbidden, Code: "PASSWORD_RESET_REQUIRED"},
	ErrTooManyRequests:       {Status: http.StatusTooManyRequests, Code: "TOO_MANY_REQUESTS"},
	ErrInvalidParameter:      {Status: http.StatusBadRequest, Code: "INVALID_PARAMETER"},
}

// awsCodes maps Cognito exception names to sentinels.
var awsCodes = map[string]error{
	"UserNotFoundException":          ErrUserNotFound,
	"UserNotConfirmedException":      ErrUserNotConfirmed,
	"NotAuthorizedException":         ErrNotAuthorized,
	"PasswordResetRequiredException": ErrPasswordResetRequired,
	"TooManyRequestsException":       ErrTooManyRequests,
	"LimitExceededException":         ErrTooManyRequests,
	"InvalidParameterException":      ErrInvalidParameter,
}

// LookupError reports the ErrorInfo for err if it wraps a known sentinel.
func LookupError(err error) (ErrorInfo, bool) {
	for sentinel, info := range errorMap {
		if errors.Is(err, sentinel) {
			return info, true
		}
	}
	return ErrorInfo{}, false
}
