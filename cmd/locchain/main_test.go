package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
logger:
  level: error
chain:
  entries:
    - type: last_result
      provider: network
      bound: 1h
    - type: live_request
      provider: gps
      bound: 50ms
simulation:
  providers:
    - name: network
      enabled: true
      last: {latitude: 10, longitude: 20, accuracy: 100, age: 2h}
      live: {latitude: 10.5, longitude: 20.5, accuracy: 30, delay: 5ms}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locchain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", path}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunWithoutLocation(t *testing.T) {
	_, err := execute(t, "run")
	assert.ErrorIs(t, err, errNoLocation)
}

func TestRequestPrintsFix(t *testing.T) {
	out, err := execute(t, "request", "network", "--timeout", "1s")
	require.NoError(t, err)
	assert.Contains(t, out, "network")
}

func TestLastStale(t *testing.T) {
	_, err := execute(t, "last", "network", "--stale-after", "1h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result_too_old")

	_, err = execute(t, "last", "network", "--stale-after", "1h", "-b", "ignore:result_too_old")
	assert.ErrorIs(t, err, errNoLocation)
}

func TestUnknownBehavior(t *testing.T) {
	_, err := execute(t, "request", "network", "-b", "teleport")
	assert.ErrorContains(t, err, "unknown behavior")
}
