package experiment

import "fmt"

// ConfigError reports an invalid experiment definition. Experiment is empty
// for errors outside any experiment, such as a broken local.
type ConfigError struct {
	Experiment string
	Field      string
	Err        error
}

func (e *ConfigError) Error() string {
	if e.Experiment == "" {
		return fmt.Sprintf("configuration error in %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("configuration error in experiment %q, %s: %v", e.Experiment, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
