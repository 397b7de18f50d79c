package llm_client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ollama/ollama/api"
	"google.golang.org/genai"
)

// QuotaMarker prefixes every quota error message so callers that only see the
// text can still offer the predefined-mission fallback.
const QuotaMarker = "QUOTA_EXCEEDED"

const genericFailure = "mission generation failed"

var (
	ErrNotInitialized = errors.New("llm client not initialized")
	ErrMissingAPIKey  = errors.New("no API key configured, set one in the settings")
	ErrUnauthorized   = errors.New("invalid API key, check your settings")
	ErrQuotaExceeded  = errors.New(QuotaMarker + ": the API quota for this key has been exceeded")
)

type Kind int

const (
	KindOther Kind = iota
	KindUnauthorized
	KindQuota
)

// GenerationError is a failed provider call. Kind decides which sentinel it
// matches with errors.Is.
type GenerationError struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case KindUnauthorized:
		return ErrUnauthorized.Error()
	case KindQuota:
		return ErrQuotaExceeded.Error()
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = genericFailure
	}
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s", e.Provider, msg)
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	switch e.Kind {
	case KindUnauthorized:
		return target == ErrUnauthorized
	case KindQuota:
		return target == ErrQuotaExceeded
	}
	return false
}

// IsQuota reports whether err is a quota failure, either typed or carrying the marker.
func IsQuota(err error) bool {
	return err != nil && (errors.Is(err, ErrQuotaExceeded) || strings.Contains(err.Error(), QuotaMarker))
}

// classify maps a provider SDK error onto a GenerationError. Context errors
// pass through untouched so timeouts stay recognizable.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	ge := &GenerationError{Provider: provider, Err: err, Message: err.Error()}

	var gerr genai.APIError
	var oerr api.StatusError
	switch {
	case errors.As(err, &gerr):
		ge.StatusCode = gerr.Code
		ge.Message = gerr.Message
		if strings.EqualFold(gerr.Status, "RESOURCE_EXHAUSTED") {
			ge.StatusCode = http.StatusTooManyRequests
		}
	case errors.As(err, &oerr):
		ge.StatusCode = oerr.StatusCode
		ge.Message = oerr.ErrorMessage
	}

	switch ge.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		ge.Kind = KindUnauthorized
	case http.StatusTooManyRequests:
		ge.Kind = KindQuota
	}
	return ge
}
