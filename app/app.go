// Package app wires configuration, the upstream client, the tool registry and
// the transports together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gtonic/defillama-mcp/pkg/config"
	"github.com/gtonic/defillama-mcp/pkg/defi"
	"github.com/gtonic/defillama-mcp/pkg/defillama"
	"github.com/gtonic/defillama-mcp/pkg/server"
	"github.com/gtonic/defillama-mcp/pkg/tool"
)

const Name = "defillama-mcp"

// Serve runs the combined HTTP/MCP server, or the stdio MCP transport when
// stdio is true.
func Serve(ctx context.Context, version string, cfg config.Config, stdio bool) error {
	registry, client, err := buildRegistry(cfg)

	if err != nil {
		return err
	}

	if stdio {
		return server.ServeStdio(Name, version, registry)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	srv := server.New(Name, version, registry, client, logger)

	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port))
}

func buildRegistry(cfg config.Config) (tool.Registry, *defillama.Client, error) {
	client, err := defillama.New(
		defillama.WithTVLBase(cfg.TVLBase),
		defillama.WithCoinsBase(cfg.CoinsBase),
		defillama.WithYieldsBase(cfg.YieldsBase),
		defillama.WithTimeout(cfg.Timeout),
	)

	if err != nil {
		return tool.Registry{}, nil, err
	}

	limits := defi.Limits{
		Protocols:   cfg.Limits.Protocols,
		Pools:       cfg.Limits.Pools,
		ChartPoints: cfg.Limits.ChartPoints,
	}

	return tool.NewRegistry(defi.Tools(client, limits)...), client, nil
}
