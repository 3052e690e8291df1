package auth

// Stable machine-readable error codes returned to API clients.
const (
	CodeRestrictedLocation  = "RESTRICTED_LOCATION"
	CodeLocationUnavailable = "LOCATION_UNAVAILABLE"
	CodeUserExists          = "USER_ALREADY_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUnverifiedUser      = "UNVERIFIED_USER"
	CodeAccountInactive     = "ACCOUNT_INACTIVE"
	CodeInvalidOTP          = "INVALID_OTP"
	CodeEmailSendFailed     = "EMAIL_SEND_FAILED"
	CodeOTPRateLimit        = "OTP_RATE_LIMIT"
	CodeValidation          = "VALIDATION_ERROR"
	CodeServerError         = "INTERNAL_SERVER_ERROR"
)

// Error is an expected business-rule failure. It carries a stable code the
// HTTP layer can map to a status without inspecting messages. Unexpected
// faults (store unreachable, programming errors) are returned as plain
// errors and surface as a generic server error.
type Error struct {
	Code    string
	Message string
	// UserID is set on CodeUnverifiedUser so clients can trigger a resend.
	UserID string
}

func (e *Error) Error() string {
	return e.Message
}

func failure(code, message string) *Error {
	return &Error{Code: code, Message: message}
}
