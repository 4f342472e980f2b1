package crawl

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConnection matches every *ConnectionError.
	ErrInvalidConnection = errors.New("bad database connection")

	// ErrMissingOverrides is wrapped by the *ConfigurationError returned
	// when no override bundle is supplied.
	ErrMissingOverrides = errors.New("no database specific overrides provided")
)

// ConnectionError reports a connection that is absent, closed, or unable
// to serve its native metadata facility.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrInvalidConnection)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrInvalidConnection, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidConnection) hold for any ConnectionError.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrInvalidConnection
}

// ConfigurationError reports unusable crawl configuration.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid crawl configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
