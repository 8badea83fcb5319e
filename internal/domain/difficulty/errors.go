package difficulty

import "errors"

// Sentinel error kinds. Both surface identically to HTTP callers; they are kept
// apart for logs and metrics.
var (
	// ErrInput marks missing or malformed request fields.
	ErrInput = errors.New("invalid input")
	// ErrArtifact marks a scaler or predictor that rejected the features.
	ErrArtifact = errors.New("artifact failure")
)

// Error kind labels.
const (
	KindInput    = "input"
	KindArtifact = "artifact"
	KindUnknown  = "unknown"
)

// ErrorKind classifies err for logging and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInput):
		return KindInput
	case errors.Is(err, ErrArtifact):
		return KindArtifact
	default:
		return KindUnknown
	}
}
