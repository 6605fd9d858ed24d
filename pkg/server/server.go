// Package server exposes the tool registry over HTTP: one REST route per
// operation, a POST /tools/<name> convention with optional SSE delivery, and
// the MCP transports (streamable HTTP and SSE) on the same listener.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gtonic/defillama-mcp/pkg/defillama"
	"github.com/gtonic/defillama-mcp/pkg/tool"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

type Server struct {
	name    string
	version string

	registry tool.Registry
	client   *defillama.Client

	logger *slog.Logger
}

func New(name, version string, registry tool.Registry, client *defillama.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		name:    name,
		version: version,

		registry: registry,
		client:   client,

		logger: logger,
	}
}

// Handler assembles the full route table, wrapped in CORS and request
// logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /protocols", s.invokeHandler("get_protocols", nil))
	mux.HandleFunc("GET /protocol/{protocol}", s.handleProtocolDetail)
	mux.HandleFunc("GET /chain/{chain}", s.invokeHandler("get_chain_tvl", pathArg("chain")))
	mux.HandleFunc("GET /token/{token}", s.invokeHandler("get_token_prices", pathArg("token")))
	mux.HandleFunc("GET /pools", s.invokeHandler("get_pools", nil))
	mux.HandleFunc("GET /pool/{pool}", s.invokeHandler("get_pool_tvl", pathArg("pool")))

	mux.HandleFunc("POST /tools/{tool}", s.handleToolCall)

	mux.HandleFunc("GET /openapi.json", s.handleOpenAPIJSON)
	mux.HandleFunc("GET /openapi.yaml", s.handleOpenAPIYAML)

	mcp := NewMCP(s.name, s.version, s.registry)

	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(mcp,
		mcpserver.WithEndpointPath("/mcp"),
		mcpserver.WithStateLess(true),
	))

	sse := mcpserver.NewSSEServer(mcp,
		mcpserver.WithSSEEndpoint("/sse"),
		mcpserver.WithMessageEndpoint("/message"),
	)

	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/message", sse.MessageHandler())

	return withCORS(withLogging(s.logger, mux))
}

// ListenAndServe runs the server until it fails or ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errs := make(chan error, 1)

	go func() {
		errs <- srv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errs:
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	endpoints := map[string]string{
		"protocols":    "/protocols",
		"protocol_tvl": "/protocol/{protocol}",
		"chain_tvl":    "/chain/{chain}",
		"token_prices": "/token/{token}",
		"pools":        "/pools",
		"pool_tvl":     "/pool/{pool}",
		"tools":        "/tools/{tool}",
		"mcp":          "/mcp",
		"sse":          "/sse",
		"openapi":      "/openapi.json",
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":   s.name,
		"version":   s.version,
		"endpoints": endpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.name,
	})
}

// handleProtocolDetail serves the per-chain breakdown together with protocol
// metadata, unlike the get_protocol_tvl tool which returns the flattened map.
func (s *Server) handleProtocolDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.client.Protocol(r.Context(), r.PathValue("protocol"))

	if err != nil {
		s.respondError(w, err)
		return
	}

	chains := detail.CurrentChainTVLs

	if chains == nil {
		chains = map[string]float64{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"protocol":           r.PathValue("protocol"),
		"current_chain_tvls": chains,

		"metadata": map[string]any{
			"name":        detail.Name,
			"symbol":      detail.Symbol,
			"url":         detail.URL,
			"description": detail.Description,
			"chain":       detail.Chain,
			"logo":        detail.Logo,
			"category":    detail.Category,
		},
	})
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{
				Error:   "validation_error",
				Message: "malformed JSON body",
			})

			return
		}
	}

	s.invoke(w, r, r.PathValue("tool"), args)
}

// invokeHandler adapts a tool to a GET route, with arguments taken from the
// request path.
func (s *Server) invokeHandler(name string, args func(*http.Request) map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var arguments map[string]any

		if args != nil {
			arguments = args(r)
		}

		s.invoke(w, r, name, arguments)
	}
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request, name string, args map[string]any) {
	result, err := s.registry.Invoke(r.Context(), name, args)

	if err != nil {
		s.respondError(w, err)
		return
	}

	if wantsEventStream(r) {
		respondSSE(w, result)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, body := classify(err)

	if status == http.StatusInternalServerError {
		s.logger.Error("unexpected failure", "error", err)
	}

	respondJSON(w, status, body)
}

func pathArg(name string) func(*http.Request) map[string]any {
	return func(r *http.Request) map[string]any {
		return map[string]any{name: r.PathValue(name)}
	}
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

// respondSSE delivers a result as discrete data: events over a kept-open
// connection. Array results are emitted one element per event, everything
// else as a single event. The stream is terminated by closing the connection.
func respondSSE(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	data, err := json.Marshal(result)

	if err != nil {
		return
	}

	var events []json.RawMessage

	if err := json.Unmarshal(data, &events); err != nil {
		events = []json.RawMessage{data}
	}

	for _, event := range events {
		fmt.Fprintf(w, "data: %s\n\n", event)

		if flusher != nil {
			flusher.Flush()
		}
	}
}
