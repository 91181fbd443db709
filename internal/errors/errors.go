package errors

// Error codes returned in API error bodies. The set is fixed; handlers never
// invent codes ad hoc.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeParentNotFound = "PARENT_NOT_FOUND"
	CodeProfanity      = "PROFANITY_ERROR"
	CodeRateLimit      = "RATE_LIMIT_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotFound       = "NOT_FOUND"
	CodeCreate         = "CREATE_ERROR"
	CodeFetch          = "FETCH_ERROR"
	CodeDelete         = "DELETE_ERROR"
	CodeReaction       = "REACTION_ERROR"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	Code       string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func Validation(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, Code: CodeValidation, StatusCode: 400}
}

func NotFound(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, Code: CodeNotFound, StatusCode: 404}
}

func Unauthorized() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Unauthorized", Code: CodeUnauthorized, StatusCode: 401}
}
