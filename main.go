package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gtonic/defillama-mcp/app"
	"github.com/gtonic/defillama-mcp/pkg/cli"
	"github.com/gtonic/defillama-mcp/pkg/config"

	"github.com/joho/godotenv"
)

var version string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	godotenv.Load()

	app := initApp()

	if err := app.Run(ctx, os.Args); err != nil {
		cli.Fatal(err)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Config file (JSON or YAML)",
		},

		&cli.IntFlag{
			Name:  "port",
			Usage: "Listening port",
		},

		&cli.BoolFlag{
			Name:  "stdio",
			Usage: "Serve MCP over stdin/stdout instead of HTTP",
		},
	}
}

func initApp() cli.Command {
	return cli.Command{
		Usage: "DeFi Llama MCP Server",

		Version: version,

		HideHelpCommand: true,

		Flags: flags(),

		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)

			if err != nil {
				return err
			}

			return app.Serve(ctx, version, cfg, cmd.Bool("stdio"))
		},

		Commands: []*cli.Command{
			{
				Name:  "tools",
				Usage: "List the available tools",

				HideHelp: true,

				Flags: flags(),

				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)

					if err != nil {
						return err
					}

					return app.Catalog(cfg)
				},
			},
		},
	}
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))

	if err != nil {
		return config.Config{}, err
	}

	if port := cmd.Int("port"); port > 0 {
		cfg.Port = int(port)
	}

	return cfg, nil
}
