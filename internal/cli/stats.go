package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/klauern/agentsync/internal/config"
	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/ui"
)

// TypeStats holds local and stored counts for one artifact type.
type TypeStats struct {
	Type   model.ArtifactType `json:"type"`
	Local  int                `json:"local"`
	Stored int                `json:"stored"`
}

// Stats holds overall statistics.
type Stats struct {
	Backend     string      `json:"backend"`
	Roots       []string    `json:"roots"`
	Types       []TypeStats `json:"types"`
	TotalLocal  int         `json:"total_local"`
	TotalStored int         `json:"total_stored"`
	Warnings    int         `json:"warnings"`
	LastUpdated *time.Time  `json:"last_updated,omitempty"`
	// Disk usage is only known for the local catalogue.
	StoreSize int64 `json:"store_size_bytes,omitempty"`
	BlobSize  int64 `json:"blob_size_bytes,omitempty"`
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Compare local and stored artifact counts",
		Flags: append(rootFlags(),
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format for scripting",
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Read stored counts from this agentsync server",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Path to the local catalogue",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Debug("collecting statistics")

			cfg, err := configFrom(ctx, cmd)
			if err != nil {
				return err
			}
			roots, err := resolveRoots(cfg, cmd.Bool("global"), cmd.Bool("project"))
			if err != nil {
				return err
			}
			backend := backendOptions{ServerURL: cmd.String("server"), StorePath: cmd.String("store")}

			stats, err := collectStats(ctx, cfg, roots, backend)
			if err != nil {
				return fmt.Errorf("failed to collect statistics: %w", err)
			}

			if cmd.Bool("json") {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(stats)
			}
			outputStatsTable(os.Stdout, stats)
			return nil
		},
	}
}

// collectStats scans roots and lists the store, counting per type.
func collectStats(ctx context.Context, cfg *config.Config, roots []string, backend backendOptions) (*Stats, error) {
	svc, closeFn, err := openService(cfg, backend)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeFn() }()

	scanned := scanRoots(roots)
	stored, err := svc.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Backend:     "local",
		Roots:       roots,
		TotalLocal:  len(scanned.Records),
		TotalStored: len(stored),
		Warnings:    len(scanned.Warnings),
	}

	local := scanned.CountByType()
	remote := make(map[model.ArtifactType]int)
	for _, rec := range stored {
		remote[rec.Type]++
		if stats.LastUpdated == nil || rec.UpdatedAt.After(*stats.LastUpdated) {
			updated := rec.UpdatedAt
			stats.LastUpdated = &updated
		}
	}
	for _, t := range model.AllArtifactTypes() {
		stats.Types = append(stats.Types, TypeStats{Type: t, Local: local[t], Stored: remote[t]})
	}

	if url := serverURL(cfg, backend); url != "" {
		stats.Backend = url
		return stats, nil
	}

	storePath := cfg.StorePath()
	if backend.StorePath != "" {
		storePath = backend.StorePath
	}
	stats.StoreSize, _ = calculateDiskUsage(filepath.Dir(storePath), filepath.Base(storePath))
	stats.BlobSize, _ = calculateDiskUsage(cfg.BlobPath(), "")
	return stats, nil
}

func serverURL(cfg *config.Config, backend backendOptions) string {
	if backend.ServerURL != "" {
		return backend.ServerURL
	}
	return cfg.Server.URL
}

// calculateDiskUsage sums file sizes below dir. With a non-empty prefix only
// top-level files starting with it are counted, which covers SQLite sidecars.
func calculateDiskUsage(dir, prefix string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if prefix != "" && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if prefix != "" && !strings.HasPrefix(d.Name(), prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to calculate disk usage: %w", err)
	}
	return total, nil
}

func outputStatsTable(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, ui.Bold("agentsync statistics"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s %s\n", ui.Bold("Backend:"), stats.Backend)
	for _, root := range stats.Roots {
		fmt.Fprintf(w, "%s %s\n", ui.Bold("Root:   "), root)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-12s %8s %8s\n", "TYPE", "LOCAL", "STORED")
	for _, t := range stats.Types {
		fmt.Fprintf(w, "  %-12s %8d %8d\n", t.Type, t.Local, t.Stored)
	}
	fmt.Fprintf(w, "  %-12s %8d %8d\n", "total", stats.TotalLocal, stats.TotalStored)
	fmt.Fprintln(w)

	if stats.Warnings > 0 {
		fmt.Fprintln(w, ui.StatusWarning(fmt.Sprintf("%d scan warning(s); run scan --verbose for details", stats.Warnings)))
	}
	if stats.LastUpdated != nil {
		fmt.Fprintf(w, "Last update: %s\n", humanize.Time(*stats.LastUpdated))
	} else {
		fmt.Fprintln(w, "Last update: never")
	}
	if stats.Backend == "local" {
		fmt.Fprintf(w, "Catalogue:   %s\n", humanize.IBytes(uint64(stats.StoreSize)))
		fmt.Fprintf(w, "Blobs:       %s\n", humanize.IBytes(uint64(stats.BlobSize)))
	}
}
