package feed

import "fmt"

// FeedError is a structured failure in the feed pipeline.
type FeedError struct {
	Code    string
	Message string
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewMissingProfileError is the one hard failure the engine raises: the
// caller must supply a user identity and location before invoking it.
func NewMissingProfileError(msg string) error {
	return &FeedError{
		Code:    "missingProfile",
		Message: msg,
	}
}
