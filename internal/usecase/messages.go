package usecase

import (
	"errors"
	"strings"

	"ProductJudge/internal/domain"
)

// FailureKind groups pipeline errors the way they are shown to users.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureInput
	FailureFetch
	FailureAnalysis
	FailureConfig
)

const (
	fetchMessage    = "Could not fetch product information. Check the URL and try again."
	analysisMessage = "Could not analyze product now. Please try again later."
	configMessage   = "The service is not configured correctly."
)

// Classify maps an error from Analyze to its user-facing kind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, domain.ErrInput):
		return FailureInput
	case errors.Is(err, domain.ErrFetch):
		return FailureFetch
	case errors.Is(err, domain.ErrConfig):
		return FailureConfig
	default:
		// Generation, consistency and anything unexpected.
		return FailureAnalysis
	}
}

// UserMessage converts an Analyze error into the message shown by the UI.
func UserMessage(err error) string {
	switch Classify(err) {
	case FailureNone:
		return ""
	case FailureInput:
		return inputMessage(err)
	case FailureFetch:
		return fetchMessage
	case FailureConfig:
		return configMessage
	default:
		return analysisMessage
	}
}

// inputMessage surfaces the validation text after the "invalid input: " prefix, capitalised.
func inputMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrInput.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		msg = msg[i+len(prefix):]
	}
	if msg == "" {
		return "Invalid input."
	}
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}
