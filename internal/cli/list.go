package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agentsync/internal/export"
	"github.com/klauern/agentsync/internal/ui"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the artifacts held by the store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "types",
				Usage: "Comma-separated artifact types to list",
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "List from this agentsync server instead of the local store",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Path to the local catalogue",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json, yaml, markdown)",
			},
			&cli.BoolFlag{
				Name:  "content",
				Usage: "Include artifact content in json, yaml and markdown output",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFrom(ctx, cmd)
			if err != nil {
				return err
			}
			types, err := resolveTypes(cfg, cmd.String("types"))
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(cmd.String("format"))
			if err != nil {
				return err
			}

			svc, closeFn, err := openService(cfg, backendOptions{
				ServerURL: cmd.String("server"),
				StorePath: cmd.String("store"),
			})
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			records, err := svc.List(ctx, types)
			if err != nil {
				return fmt.Errorf("failed to list artifacts: %w", err)
			}
			if format == export.FormatTable {
				ui.RenderRecords(os.Stdout, records)
				return nil
			}
			return export.New(export.Options{
				Format:         format,
				IncludeContent: cmd.Bool("content"),
			}).Export(records, os.Stdout)
		},
	}
}
