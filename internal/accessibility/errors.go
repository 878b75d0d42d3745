package accessibility

import "errors"

// Sentinel errors classifying check failures. Callers use errors.Is to map
// them to transport status codes.
var (
	// ErrInvalidURL means the target failed validation before any browser
	// resources were committed.
	ErrInvalidURL = errors.New("invalid target url")

	// ErrRenderTimeout means the page did not reach a stable state within
	// the render budget.
	ErrRenderTimeout = errors.New("render timed out")

	// ErrNavigation means the browser could not load the target (DNS
	// failure, connection refused, TLS error, HTTP transport failure).
	ErrNavigation = errors.New("navigation failed")

	// ErrRenderCrash means the browser session died mid-render.
	ErrRenderCrash = errors.New("render session crashed")
)

// ErrorCode maps a check failure to its stable wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, ErrRenderTimeout):
		return "render_timeout"
	case errors.Is(err, ErrNavigation):
		return "navigation_error"
	default:
		return "internal_error"
	}
}
