package merge

import "fmt"

// ConfigError reports an invalid merge configuration: incompatible duplicate
// types, extensions referencing unknown types or subschemas, colliding root
// fields. It is always returned from Build, never from query execution.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

func asConfigError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*ConfigError); ok {
		return err
	}
	return &ConfigError{Message: err.Error()}
}
