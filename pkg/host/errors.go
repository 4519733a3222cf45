package host

import "github.com/shuldan/featurehub/pkg/errors"

var newHostCode = errors.WithPrefix("HOST")

var (
	ErrHostConfig      = newHostCode().New("invalid host configuration: {{.reason}}")
	ErrSourceOpen      = newHostCode().New("the {{.source}} manifest source could not be opened")
	ErrAlreadyRunning  = newHostCode().New("the host is already running")
	ErrShutdownTimeout = newHostCode().New("graceful shutdown timed out after {{.timeout}}")
	ErrNoStore         = newHostCode().New("no writable manifest source handles {{.location}}")
)
