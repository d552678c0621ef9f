package summary

// Document is a single uploaded file. It lives only for the request.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Result is the response body of a successful summarization.
type Result struct {
	Filename string `json:"filename"`
	Summary  string `json:"summary"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// Error codes carried in ErrorResponse.Code
const (
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeEmptyDocument     = "EMPTY_DOCUMENT"
	ErrCodeExtraction        = "EXTRACTION_ERROR"
	ErrCodeProvider          = "PROVIDER_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeTooLarge          = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimit         = "RATE_LIMIT"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewErrorResponse creates a new error response
func NewErrorResponse(code, detail string) *ErrorResponse {
	return &ErrorResponse{
		Detail: detail,
		Code:   code,
	}
}
