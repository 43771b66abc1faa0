package completion

import "fmt"

// Kind discriminates completion failures for the dispatch boundary.
// Every kind is converted to a fallback line there; the kind exists for
// logging and tests, not for user-facing output.
type Kind int

const (
	// KindTransport is a network failure reaching the endpoint.
	KindTransport Kind = iota
	// KindBadStatus is a non-2xx response from the endpoint.
	KindBadStatus
	// KindMalformedResponse is a 2xx response missing the reply content.
	KindMalformedResponse
	// KindTimeout is the request deadline expiring.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindBadStatus:
		return "bad_status"
	case KindMalformedResponse:
		return "malformed_response"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a failed completion attempt.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("completion %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }
