// Package e2e provides testing infrastructure for end-to-end CLI tests.
// It includes a harness for running CLI commands, fixture management,
// and utilities for setting up isolated test environments.
package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/agentsync/internal/api"
	"github.com/klauern/agentsync/internal/cli"
	"github.com/klauern/agentsync/internal/store"
	"github.com/klauern/agentsync/internal/store/blob"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands against an isolated home, a global root,
// a project root and a local catalogue, all inside a temp directory.
type Harness struct {
	t       *testing.T
	homeDir string
	env     map[string]string
}

// NewHarness creates a new E2E test harness.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()
	h := &Harness{
		t:       t,
		homeDir: homeDir,
		env:     make(map[string]string),
	}

	h.SetEnv("HOME", homeDir)
	h.SetEnv("AGENTSYNC_HOME", filepath.Join(homeDir, ".agentsync"))
	h.SetEnv("AGENTSYNC_GLOBAL_ROOT", filepath.Join(homeDir, ".claude"))
	h.SetEnv("AGENTSYNC_PROJECT_ROOT", filepath.Join(homeDir, "project", ".claude"))
	h.SetEnv("NO_COLOR", "1")

	return h
}

// SetEnv sets an environment variable for CLI commands run through this harness.
// The environment will be restored after the test completes.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.env[key] = value
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated home directory for this test harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// StartServer serves a fresh in-memory catalogue over HTTP and points the
// CLI at it with the given token. tokens maps bearer tokens to owner ids.
func (h *Harness) StartServer(token string, tokens map[string]string) *store.Catalogue {
	h.t.Helper()

	blobs, err := blob.NewStore(h.t.TempDir())
	if err != nil {
		h.t.Fatalf("failed to create blob store: %v", err)
	}
	catalogue, err := store.OpenInMemory(blobs)
	if err != nil {
		h.t.Fatalf("failed to open catalogue: %v", err)
	}
	h.t.Cleanup(func() { _ = catalogue.Close() })

	srv := httptest.NewServer(api.NewServer(catalogue, catalogue, tokens))
	h.t.Cleanup(srv.Close)

	h.SetEnv("AGENTSYNC_SERVER_URL", srv.URL)
	h.SetEnv("AGENTSYNC_TOKEN", token)
	return catalogue
}

// Run executes a CLI command with the given arguments and captures the output.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()
	return h.run(nil, args)
}

// RunWithStdin executes a CLI command with stdin input and captures output.
// This is useful for testing commands that ask for confirmation.
func (h *Harness) RunWithStdin(stdin string, args ...string) *Result {
	h.t.Helper()
	return h.run(&stdin, args)
}

func (h *Harness) run(stdin *string, args []string) *Result {
	h.t.Helper()

	if len(args) == 0 || args[0] != "agentsync" {
		args = append([]string{"agentsync"}, args...)
	}

	if stdin != nil {
		oldStdin := os.Stdin
		stdinR, stdinW, err := os.Pipe()
		if err != nil {
			h.t.Fatalf("failed to create stdin pipe: %v", err)
		}
		go func() {
			defer func() { _ = stdinW.Close() }()
			_, _ = stdinW.WriteString(*stdin)
		}()
		os.Stdin = stdinR
		defer func() {
			os.Stdin = oldStdin
			_ = stdinR.Close()
		}()
	}

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Drain concurrently so large outputs cannot fill the pipe buffer.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdout = oldStdout

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
