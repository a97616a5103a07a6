package mmio

import (
	"fmt"

	"github.com/pkg/errors"
)

// these constants identify the operation in an AccessError
const (
	ACCESS_READ   = 1
	ACCESS_WRITE  = 2
	ACCESS_UPDATE = 3
)

// AccessError is returned when a read, write or update is called with a size
// that is neither 1 nor the accessor's bulk size. Memory is never touched.
type AccessError struct {
	Offset uint64
	Size   uint64
	Enum   int
}

func (e *AccessError) Error() string {
	switch e.Enum {
	case ACCESS_WRITE:
		return fmt.Sprintf("invalid write size %d to offset %#x", e.Size, e.Offset)
	case ACCESS_UPDATE:
		return fmt.Sprintf("invalid update size %d at offset %#x", e.Size, e.Offset)
	}
	return fmt.Sprintf("invalid read size %d from offset %#x", e.Size, e.Offset)
}

// ConfigError is returned by New when the accessor configuration is unusable.
type ConfigError struct {
	Field  string
	Value  uint
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s %d", e.Field, e.Value)
}

func IsAccessError(err error) bool {
	_, ok := errors.Cause(err).(*AccessError)
	return ok
}

func IsConfigError(err error) bool {
	_, ok := errors.Cause(err).(*ConfigError)
	return ok
}
