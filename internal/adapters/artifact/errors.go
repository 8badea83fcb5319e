package artifact

import "errors"

// Sentinel kinds for artifact errors.
var (
	// ErrLoad marks an artifact file that could not be read or decoded.
	ErrLoad = errors.New("load artifact failed")
	// ErrShape marks input whose arity does not match the artifact.
	ErrShape = errors.New("feature shape mismatch")
)
