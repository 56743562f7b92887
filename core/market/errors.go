package market

import "fmt"

// ConsistencyError reports a violated balancing invariant. These are
// programming or input errors, not recoverable conditions: the annual loop
// aborts on the first one.
type ConsistencyError struct {
	Check  string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency check %q failed: %s", e.Check, e.Detail)
}

// Inconsistent builds a ConsistencyError.
func Inconsistent(check, format string, args ...any) *ConsistencyError {
	return &ConsistencyError{Check: check, Detail: fmt.Sprintf(format, args...)}
}
