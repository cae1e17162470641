package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrInvalidAdminCode   ErrCode = "INVALID_ADMIN_CODE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrUserAccessOnly  ErrCode = "USER_ACCESS_ONLY"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidID        ErrCode = "INVALID_ID"
	ErrInvalidPayload   ErrCode = "INVALID_PAYLOAD"
	ErrAuthoringInvalid ErrCode = "AUTHORING_INVALID"
	ErrInvalidMode      ErrCode = "INVALID_MODE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Tests & grading ───────────────────────────────────────────────
	ErrAlreadySolved     ErrCode = "ALREADY_SOLVED"
	ErrOnceNotAllowed    ErrCode = "ONCE_NOT_ALLOWED"
	ErrTestNotReady      ErrCode = "TEST_NOT_READY"
	ErrEmptySubmission   ErrCode = "EMPTY_SUBMISSION"
	ErrStoredDataCorrupt ErrCode = "STORED_DATA_CORRUPT"

	// ─── Stars ─────────────────────────────────────────────────────────
	ErrInsufficientStars ErrCode = "INSUFFICIENT_STARS"
	ErrRewardUnavailable ErrCode = "REWARD_UNAVAILABLE"
	ErrWindowOpen        ErrCode = "STAR_WINDOW_OPEN"

	// ─── Chat ──────────────────────────────────────────────────────────
	ErrEmptyMessage ErrCode = "EMPTY_MESSAGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrInvalidAdminCode:
		return "The admin code is invalid or has expired."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrEmailTaken:
		return "An account with this email already exists."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You are not allowed to access this resource."
	case ErrUserAccessOnly:
		return "This resource is for members only."
	case ErrAdminAccessOnly:
		return "This resource is for administrators only."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Some fields are invalid."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrAuthoringInvalid:
		return "The test could not be saved."
	case ErrInvalidMode:
		return "Unknown attempt mode. Use timed or once."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Tests & grading ───────────────────────────────────────────────
	case ErrAlreadySolved:
		return "You have already solved this test."
	case ErrOnceNotAllowed:
		return "Star tests can only be taken in timed mode."
	case ErrTestNotReady:
		return "This test is not ready for online grading."
	case ErrEmptySubmission:
		return "Answer at least one question before submitting."
	case ErrStoredDataCorrupt:
		return "This test cannot be graded right now. Please contact an administrator."

	// ─── Stars ─────────────────────────────────────────────────────────
	case ErrInsufficientStars:
		return "You do not have enough stars for this reward."
	case ErrRewardUnavailable:
		return "This reward is not available."
	case ErrWindowOpen:
		return "The star window of this test has not closed yet."

	// ─── Chat ──────────────────────────────────────────────────────────
	case ErrEmptyMessage:
		return "A message needs text or an image."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."

	default:
		return "An unknown error occurred."
	}
}
