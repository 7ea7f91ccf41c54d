package sim

import "fmt"

// InvariantError reports a broken simulation invariant: a negative
// occupancy, a pop from an empty queue, a clock moving backwards and so on.
// Handlers raise it with violate(); Simulator.Run converts it into a returned
// error and abandons the replication. Other panics are not intercepted.
type InvariantError struct {
	Op       string  // operation that detected the violation
	Resource string  // section, queue or subsystem involved
	Time     float64 // simulation clock when the replication was aborted
	Detail   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s on %s at t=%.4f: %s", e.Op, e.Resource, e.Time, e.Detail)
}

// violate aborts the current handler with an *InvariantError.
func violate(op, resource, format string, args ...any) {
	panic(&InvariantError{
		Op:       op,
		Resource: resource,
		Detail:   fmt.Sprintf(format, args...),
	})
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}
