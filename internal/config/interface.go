package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads every file of its format found under paths and translates
	// them into the format-agnostic model. Files of other formats are
	// ignored.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
