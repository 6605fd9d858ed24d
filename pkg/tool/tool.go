// Package tool defines the tool abstraction shared by the MCP and HTTP
// transports: a named operation with a JSON schema and an execute function,
// collected into an immutable registry built once at startup.
package tool

import (
	"context"
)

type Schema map[string]any
type ExecuteFn func(ctx context.Context, args map[string]any) (any, error)

type Tool struct {
	Name        string
	Description string

	Schema  Schema
	Execute ExecuteFn
}

// String returns a required string argument, or a ValidationError if it is
// missing or empty. Unknown arguments are ignored by convention.
func String(args map[string]any, name string) (string, error) {
	value, ok := args[name].(string)

	if !ok || value == "" {
		return "", &ValidationError{Param: name}
	}

	return value, nil
}
