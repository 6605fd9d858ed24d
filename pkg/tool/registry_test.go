package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: name,

		Schema: Schema{"type": "object"},

		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return args, nil
		},
	}
}

func TestRegistryInvoke(t *testing.T) {
	registry := NewRegistry(echoTool("a"), echoTool("b"))

	result, err := registry.Invoke(context.Background(), "a", map[string]any{"x": "y"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"x": "y"}, result)
}

func TestRegistryInvokeNilArgs(t *testing.T) {
	registry := NewRegistry(echoTool("a"))

	result, err := registry.Invoke(context.Background(), "a", nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{}, result)
}

func TestRegistryUnknownTool(t *testing.T) {
	registry := NewRegistry(echoTool("a"))

	_, err := registry.Invoke(context.Background(), "nope", nil)

	var unknown *UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
}

func TestRegistryAnnotatesErrors(t *testing.T) {
	failing := Tool{
		Name: "fails",

		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return nil, &ValidationError{Param: "protocol"}
		},
	}

	registry := NewRegistry(failing)

	_, err := registry.Invoke(context.Background(), "fails", nil)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "fails: ")

	var validation *ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestRegistryToolsOrder(t *testing.T) {
	registry := NewRegistry(echoTool("c"), echoTool("a"), echoTool("b"), echoTool("a"))

	var names []string

	for _, tl := range registry.Tools() {
		names = append(names, tl.Name)
	}

	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestStringArg(t *testing.T) {
	value, err := String(map[string]any{"chain": "ethereum"}, "chain")
	require.NoError(t, err)
	assert.Equal(t, "ethereum", value)

	_, err = String(map[string]any{}, "chain")

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "chain", validation.Param)

	_, err = String(map[string]any{"chain": ""}, "chain")
	require.ErrorAs(t, err, &validation)

	_, err = String(map[string]any{"chain": 42}, "chain")
	require.ErrorAs(t, err, &validation)
}
