package cli

import (
	"fmt"

	"github.com/klauern/agentsync/internal/api"
	"github.com/klauern/agentsync/internal/config"
	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/store"
	"github.com/klauern/agentsync/internal/store/blob"
)

// backendOptions are the command-line overrides for backend selection.
type backendOptions struct {
	ServerURL string
	StorePath string
	BlobPath  string
}

// openService returns the remote client when a server URL is configured and
// the local catalogue otherwise. The returned close func is never nil.
func openService(cfg *config.Config, opts backendOptions) (api.Service, func() error, error) {
	serverURL := cfg.Server.URL
	if opts.ServerURL != "" {
		serverURL = opts.ServerURL
	}

	if serverURL != "" {
		client, err := api.NewClient(api.ClientConfig{
			BaseURL: serverURL,
			Token:   cfg.Server.Token,
			Timeout: cfg.Server.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		logging.Debug("using remote backend", logging.Path(serverURL))
		return client, func() error { return nil }, nil
	}

	catalogue, err := openCatalogue(cfg, opts)
	if err != nil {
		return nil, nil, err
	}
	return api.NewLocal(catalogue, catalogue, cfg.Server.Owner), catalogue.Close, nil
}

func openCatalogue(cfg *config.Config, opts backendOptions) (*store.Catalogue, error) {
	storePath := cfg.StorePath()
	if opts.StorePath != "" {
		storePath = opts.StorePath
	}
	blobPath := cfg.BlobPath()
	if opts.BlobPath != "" {
		blobPath = opts.BlobPath
	}

	blobs, err := blob.NewStore(blobPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	catalogue, err := store.Open(storePath, blobs)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue %s: %w", storePath, err)
	}
	logging.Debug("using local catalogue", logging.Path(storePath))
	return catalogue, nil
}
