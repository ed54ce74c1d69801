package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMain(m *testing.M) {
	tempHome, err := os.MkdirTemp("", "agentsync-cmd-test-")
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = os.RemoveAll(tempHome)
	}()

	setEnvOrPanic := func(key, value string) {
		if err := os.Setenv(key, value); err != nil {
			panic(err)
		}
	}

	setEnvOrPanic("HOME", tempHome)
	setEnvOrPanic("AGENTSYNC_HOME", filepath.Join(tempHome, ".agentsync"))

	globalRoot := filepath.Join(tempHome, ".claude")
	_ = os.MkdirAll(filepath.Join(globalRoot, "commands"), 0o750)
	setEnvOrPanic("AGENTSYNC_GLOBAL_ROOT", globalRoot)

	os.Exit(m.Run())
}
