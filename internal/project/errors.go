package project

import "fmt"

// ConfigurationError reports a structural configuration fault: an
// unrecognized attribute or option at construction time, or a fault
// raised while executing the control script. It aborts the sync cycle
// that surfaced it but is not fatal to the process.
type ConfigurationError struct {
	// Attr is the offending attribute name when the fault came from an
	// attribute mutation; empty for script execution faults.
	Attr string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("configuration: attribute %q: %v", e.Attr, e.Err)
	}
	return fmt.Sprintf("configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
