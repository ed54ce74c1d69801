package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agentsync/internal/api"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local catalogue over HTTP",
		Description: `Run the agentsync HTTP API over the local catalogue.

   Clients authenticate with bearer tokens listed under server.tokens
   in the config file, each mapped to the owner id it acts as.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from config, 127.0.0.1:8420)",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Path to the catalogue",
			},
			&cli.StringFlag{
				Name:  "blobs",
				Usage: "Path to the companion file object directory",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFrom(ctx, cmd)
			if err != nil {
				return err
			}
			if len(cfg.Server.Tokens) == 0 {
				return errors.New("no tokens configured: add server.tokens to the config file")
			}

			addr := cfg.Server.Addr
			if a := cmd.String("addr"); a != "" {
				addr = a
			}

			catalogue, err := openCatalogue(cfg, backendOptions{
				StorePath: cmd.String("store"),
				BlobPath:  cmd.String("blobs"),
			})
			if err != nil {
				return err
			}
			defer func() { _ = catalogue.Close() }()

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(catalogue, catalogue, cfg.Server.Tokens)
			fmt.Printf("agentsync listening on %s\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}
}
