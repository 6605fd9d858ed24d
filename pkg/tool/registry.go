package tool

import (
	"context"
	"fmt"
)

// Registry is an immutable name-to-tool mapping. It is constructed once at
// startup and shared read-only across concurrent requests.
type Registry struct {
	names []string
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) Registry {
	r := Registry{
		tools: make(map[string]Tool, len(tools)),
	}

	for _, t := range tools {
		if _, ok := r.tools[t.Name]; ok {
			continue
		}

		r.names = append(r.names, t.Name)
		r.tools[t.Name] = t
	}

	return r
}

// Tools returns the registered tools in registration order.
func (r Registry) Tools() []Tool {
	result := make([]Tool, 0, len(r.names))

	for _, n := range r.names {
		result = append(result, r.tools[n])
	}

	return result
}

func (r Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Invoke dispatches to the named tool. Failures other than the tool's own
// typed errors are annotated with the tool name.
func (r Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := r.tools[name]

	if !ok {
		return nil, &UnknownToolError{Name: name}
	}

	if args == nil {
		args = map[string]any{}
	}

	result, err := t.Execute(ctx, args)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return result, nil
}
