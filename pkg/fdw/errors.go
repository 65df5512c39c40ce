package fdw

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is matched by every UnsupportedOperationError.
	ErrUnsupported = errors.New("not supported")
	// ErrNotInitialized is returned by BeginScan before Init.
	ErrNotInitialized = errors.New("session not initialized")
)

// UnsupportedOperationError is returned by operations this source never
// allows: rewinding a scan and every write.
type UnsupportedOperationError struct {
	Op string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s on foreign table is not supported", e.Op)
}

func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupported
}
