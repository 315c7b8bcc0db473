package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	testWorld         = "0x5fbdb2315678afecb367f032d93f642f64180aa3"
	testWorldChecksum = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

var deployConfigDir = filepath.Join("..", "..", "config", "deploy")

// plainSettings is a local profile deploying every status with fixture
// quests, and nothing else: no setup calls, no pacing, no chain control.
const plainSettings = `profiles:
  local:
    statuses: [Ready, Ingame, For Implementation, Revise Deployment]
    fixture_quests: true
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func settingsFile(t *testing.T, body string) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "settings.yaml", body)
}

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeOK decodes a successful JSON response into its data payload.
func decodeOK[T any](t *testing.T, out string) T {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   T         `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	return resp.Data
}

// decodeError decodes an error JSON response.
func decodeError(t *testing.T, out string) CLIError {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "error", resp.Status, out)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

// fakeForge writes an executable shell script standing in for the toolchain.
func fakeForge(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain is a shell script")
	}
	path := filepath.Join(t.TempDir(), "forge")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// envOf returns a getenv over vars.
func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}
