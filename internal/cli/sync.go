package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agentsync/internal/config"
	"github.com/klauern/agentsync/internal/model"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Push local agent configuration to the store",
		UsageText: "agentsync sync [options]",
		Description: `Scan the configuration roots, preview the changes against the store,
   and apply them after confirmation.

   Examples:
     agentsync sync --dry-run
     agentsync sync --global --types command,agent
     agentsync sync --yes --delete
     agentsync sync --server https://sync.example.com`,
		Flags: append(rootFlags(),
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Preview changes without writing",
			},
			&cli.StringFlag{
				Name:  "types",
				Usage: "Comma-separated artifact types to sync (command, agent, mcp_config, skill)",
			},
			&cli.BoolFlag{
				Name:  "delete",
				Usage: "Offer to delete artifacts that exist only in the store",
			},
			&cli.BoolFlag{
				Name:  "deep",
				Usage: "Compare companion file hashes, not only their paths",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Apply without asking (deletion is still confirmed)",
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Sync against this agentsync server instead of the local store",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Path to the local catalogue",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFrom(ctx, cmd)
			if err != nil {
				return err
			}

			roots, err := resolveRoots(cfg, cmd.Bool("global"), cmd.Bool("project"))
			if err != nil {
				return err
			}
			types, err := resolveTypes(cfg, cmd.String("types"))
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

			driver := &Driver{
				Service: svc,
				Confirm: NewPrompter(os.Stdin, os.Stdout),
				Out:     os.Stdout,
				Verbose: verbose(cmd, cfg),

				BackupDir:   cfg.BackupPath(),
				KeepBackups: cfg.Store.KeepBackups,
			}
			return driver.Run(ctx, SyncOptions{
				Roots:       roots,
				Types:       types,
				DryRun:      cmd.Bool("dry-run"),
				DeepCompare: cmd.Bool("deep") || cfg.Sync.DeepCompare,
				Delete:      cmd.Bool("delete"),
				Yes:         cmd.Bool("yes"),
				SecretScan:  cfg.Sync.SecretScan,
			})
		},
	}
}

// rootFlags selects which configuration roots are scanned.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "global",
			Aliases: []string{"g"},
			Usage:   "Scan the global root (default ~/.claude)",
		},
		&cli.BoolFlag{
			Name:    "project",
			Aliases: []string{"p"},
			Usage:   "Scan the project root (default ./.claude)",
		},
	}
}

// resolveRoots returns the roots selected by the flags. Neither flag means both.
func resolveRoots(cfg *config.Config, global, project bool) ([]string, error) {
	if !global && !project {
		global, project = true, true
	}

	var roots []string
	if global {
		roots = append(roots, cfg.GlobalRoot())
	}
	if project {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		roots = append(roots, cfg.ProjectRoot(wd))
	}
	return roots, nil
}

// resolveTypes parses --types, falling back to the configured default.
func resolveTypes(cfg *config.Config, csv string) ([]model.ArtifactType, error) {
	if csv == "" {
		return cfg.SyncTypes()
	}
	types, err := model.ParseArtifactTypes(csv)
	if err != nil {
		return nil, fmt.Errorf("invalid --types: %w", err)
	}
	return types, nil
}
