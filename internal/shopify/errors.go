package shopify

import (
	"errors"
	"strings"
)

// NetworkErrorMessage is the synthetic message recorded for any transport-level failure.
const NetworkErrorMessage = "Network error. Please check your connection."

type ErrorKind int

const (
	// KindTransport covers unreachable upstream, non-2xx statuses, undecodable bodies and an open breaker.
	KindTransport ErrorKind = iota + 1
	// KindGraphQL covers entries of the response "errors" array and mutation userErrors.
	KindGraphQL
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindGraphQL:
		return "graphql"
	default:
		return "unknown"
	}
}

type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// UserError is a validation failure reported inside a mutation payload.
type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

type APIError struct {
	Kind     ErrorKind
	Messages []string
	// Cause is the underlying transport error, if any.
	Cause error
}

func (e *APIError) Error() string {
	return "shopify " + e.Kind.String() + " error: " + strings.Join(e.Messages, "; ")
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

func IsTransport(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindTransport
}

func IsGraphQL(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindGraphQL
}

// UserErrorsErr converts mutation userErrors into an APIError, or nil when there are none.
func UserErrorsErr(userErrors []UserError) error {
	if len(userErrors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(userErrors))
	for _, ue := range userErrors {
		msgs = append(msgs, ue.Message)
	}
	return &APIError{Kind: KindGraphQL, Messages: msgs}
}
