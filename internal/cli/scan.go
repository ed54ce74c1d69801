package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agentsync/internal/api"
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/progress"
	"github.com/klauern/agentsync/internal/scanner"
	"github.com/klauern/agentsync/internal/ui"
)

// scanOutput is the --json document of the scan command.
type scanOutput struct {
	Configs  []api.Record    `json:"configs"`
	Warnings []model.Warning `json:"warnings"`
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "List the artifacts found in the configuration roots",
		Flags: append(rootFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the scanned batch as JSON",
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

			res := scanRoots(roots)

			if cmd.Bool("json") {
				warnings := res.Warnings
				if warnings == nil {
					warnings = []model.Warning{}
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(scanOutput{Configs: api.ToWireBatch(res.Records), Warnings: warnings}); err != nil {
					return fmt.Errorf("failed to encode scan result: %w", err)
				}
				return nil
			}

			ui.RenderScan(os.Stdout, res, verbose(cmd, cfg))
			return nil
		},
	}
}

// scanRoots scans each root in order, showing progress on a terminal.
func scanRoots(roots []string) scanner.Result {
	bar := progress.New(progress.Options{
		Max:         int64(len(roots)),
		Description: "Scanning",
	})

	var res scanner.Result
	for _, root := range roots {
		_ = bar.Step("Scanning " + root)
		res.Merge(scanner.ScanRoot(root))
	}
	_ = bar.Finish()
	return res
}
