package server

import (
	"errors"
	"net/http"

	"github.com/gtonic/defillama-mcp/pkg/defillama"
	"github.com/gtonic/defillama-mcp/pkg/tool"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps an invocation error to an HTTP status and a response body.
// Anything outside the known taxonomy becomes a generic internal error; its
// detail is logged server-side only.
func classify(err error) (int, errorBody) {
	var validation *tool.ValidationError

	if errors.As(err, &validation) {
		return http.StatusBadRequest, errorBody{Error: "validation_error", Message: err.Error()}
	}

	var unknown *tool.UnknownToolError

	if errors.As(err, &unknown) {
		return http.StatusNotFound, errorBody{Error: "unknown_tool", Message: err.Error()}
	}

	var upstream *defillama.UpstreamError

	if errors.As(err, &upstream) {
		return http.StatusBadGateway, errorBody{Error: "upstream_error", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "internal server error"}
}
