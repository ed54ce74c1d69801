package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agentsync/internal/backup"
	"github.com/klauern/agentsync/internal/config"
	"github.com/klauern/agentsync/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display the effective configuration",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFrom(ctx, cmd)
			if err != nil {
				return err
			}
			data, err := cfg.Redacted().YAML()
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}

			path := cmd.String("config")
			if path == "" {
				path = config.FilePath()
			}
			fmt.Printf("# %s\n", path)
			fmt.Print(string(data))
			return nil
		},
	}
}

func backupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "backups",
		Usage: "List the snapshots taken before artifacts were deleted",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFrom(ctx, cmd)
			if err != nil {
				return err
			}
			snaps, err := backup.List(cfg.BackupPath())
			if err != nil {
				return err
			}
			ui.RenderBackups(os.Stdout, snaps)
			return nil
		},
	}
}
