package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: checkout flow
baseUrl: https://api.example.test
variables:
  apiKey: abc123
settings:
  concurrentUsers: 5
  duration: 30s
  timeout: 2s
scenarios:
  - name: browse
    weight: 3
    steps:
      - name: list products
        url: /products
  - name: checkout
    weight: 1
    steps:
      - name: create cart
        url: /carts
        method: POST
      - name: add item
        url: /carts/{{cartId}}/items
        method: POST
        extract:
          cartId: id
        validate:
          status: 201
`

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ParsesScenariosAndSteps(t *testing.T) {
	path := writeTempFile(t, sampleYAML)
	file, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "checkout flow", file.Name)
	require.Len(t, file.Scenarios, 2)
	assert.Equal(t, 3, file.Scenarios[0].Weight)
	assert.Equal(t, "GET", file.Scenarios[0].Steps[0].Method)
	assert.Equal(t, "POST", file.Scenarios[1].Steps[1].Method)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeTempFile(t, `
name: minimal
scenarios:
  - name: only
    steps:
      - url: /ping
`)
	file, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, file.Settings.ConcurrentUsers)
	assert.Equal(t, "30s", file.Settings.Timeout)
	assert.Equal(t, 1, file.Scenarios[0].Weight)
	assert.Equal(t, "step-1", file.Scenarios[0].Steps[0].Name)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAMLReturnsError(t *testing.T) {
	path := writeTempFile(t, "scenarios: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestBuild_WiresScenariosAndOptions(t *testing.T) {
	path := writeTempFile(t, sampleYAML)
	file, err := Load(path)
	require.NoError(t, err)

	simulation, opts, err := Build(file)
	require.NoError(t, err)

	require.Len(t, simulation.Scenarios, 2)
	assert.Equal(t, "browse", simulation.Scenarios[0].Name)
	assert.Len(t, simulation.Scenarios[1].Steps, 2)
	assert.Equal(t, 5, opts.Concurrency)
}
