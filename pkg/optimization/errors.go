package optimization

import "errors"

var (
	// ErrConfiguration reports an invalid configuration value. It is raised
	// when a configuration is built, never during a run.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnknownVariant reports an unrecognized strategy or crossover-type
	// enumerator. It indicates a programming error.
	ErrUnknownVariant = errors.New("unknown variant")
)
