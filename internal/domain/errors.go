package domain

import "fmt"

const (
	msgRateLimited   = "触发风控，请稍后重试"
	msgRequestFailed = "请求失败"
	msgUnknownError  = "未知错误"
)

// RateLimitedError is returned when the api answers with its anti abuse status.
type RateLimitedError struct {
	URL string
}

func (e *RateLimitedError) Error() string {
	return msgRateLimited
}

// APIError is a response envelope that did not carry a usable result.
type APIError struct {
	Code    int
	Message string
}

// NewAPIError substitutes the localized default when the server sent no message.
func NewAPIError(code int, message string) *APIError {
	if message == "" {
		message = msgUnknownError
	}

	return &APIError{Code: code, Message: message}
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = msgUnknownError
	}

	return fmt.Sprintf("%s: %s", msgRequestFailed, msg)
}

// DecodeError is a body that could not be parsed into an envelope.
// StatusCode is set when the body belonged to a non 2xx response.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %d", msgRequestFailed, e.StatusCode)
	}

	if e.Err == nil {
		return "malformed response"
	}

	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
