package pipeline

import "fmt"

// ConfigurationError reports a missing credential or an unusable
// setting, detected before any stage runs.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Setting, e.Reason)
}

// UpstreamServiceError reports a failed remote API call or external
// process. It carries the service name for log and exit messages.
type UpstreamServiceError struct {
	Service string
	Err     error
}

func (e *UpstreamServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error {
	return e.Err
}
