package httpclient

import (
	"fmt"
	"net/http"
)

// maxErrorBody is how much of a failed response is kept on StatusError.
const maxErrorBody = 512

// ResponseErrorHandler decides whether a response is an error.
type ResponseErrorHandler func(statusCode int, body []byte) error

// DefaultErrorHandler rejects every status of 400 and above.
func DefaultErrorHandler(statusCode int, body []byte) error {
	if statusCode < http.StatusBadRequest {
		return nil
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{StatusCode: statusCode, Body: string(body)}
}

// StatusError is a non-success HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// RateLimited reports whether the venue throttled the request.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == 418
}

// DecodeError is a response body that could not be decoded.
type DecodeError struct {
	Venue string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Venue, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
