package tool

import (
	"fmt"
)

// ValidationError reports a missing or malformed request parameter. It is
// returned before any upstream call is attempted.
type ValidationError struct {
	Param string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// UnknownToolError reports an invocation of a tool name that was never
// registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}
