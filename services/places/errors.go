package places

import "fmt"

// ProviderError signals a transient failure at the places provider
// (timeout or 5xx). The pagination loop treats it as zero candidates for
// the attempt rather than aborting.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewProviderUnavailable builds the transient-error signal for a failed
// provider call.
func NewProviderUnavailable(msg string) error {
	return &ProviderError{
		Code:    "providerUnavailable",
		Message: msg,
	}
}
