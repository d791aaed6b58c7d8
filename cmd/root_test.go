package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomcpgo/replicate/pkg/config"
	"github.com/gomcpgo/replicate/pkg/fakeapi"
	"github.com/gomcpgo/replicate/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFake(t *testing.T, opts ...fakeapi.Option) string {
	t.Helper()
	fake := fakeapi.New(append([]fakeapi.Option{
		fakeapi.WithToken("cli-token"),
		fakeapi.WithModel("owner/model", "v2", "v1"),
	}, opts...)...)
	server := httptest.NewServer(fake.Handler())
	t.Cleanup(server.Close)
	return server.URL + fakeapi.BasePath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionsCommand(t *testing.T) {
	base := startFake(t)
	out, err := run(t, "versions", "owner/model", "--base-url", base, "--token", "cli-token")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "v2", doc["latest"])
}

func TestPredictCommand_StreamAndRecord(t *testing.T) {
	base := startFake(t)
	records := t.TempDir()

	out, err := run(t, "predict", "owner/model",
		"--base-url", base, "--token", "cli-token", "--poll-interval-ms", "1",
		"--version", "v1", "-i", "prompt=a cat", "--stream", "--record-dir", records)
	require.NoError(t, err)

	// three snapshot lines, then the indented final response
	lines := strings.SplitN(out, "\n", 4)
	require.Len(t, lines, 4)
	for i, want := range []types.Status{types.StatusStarting, types.StatusProcessing, types.StatusSucceeded} {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[i]), &line))
		assert.Equal(t, string(want), line["status"])
	}

	var final map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &final))
	assert.Equal(t, true, final["success"])

	out, err = run(t, "history", "--record-dir", records)
	require.NoError(t, err)
	var hist map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	assert.Equal(t, float64(1), hist["total"])
}

func TestPredictCommand_Failed(t *testing.T) {
	base := startFake(t, fakeapi.WithScript(fakeapi.Step{Status: types.StatusFailed, Error: "boom"}))

	_, err := run(t, "predict", "owner/model",
		"--base-url", base, "--token", "cli-token", "--poll-interval-ms", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestConfigLayering(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvToken, "env-token")

	file := filepath.Join(t.TempDir(), "replicate.toml")
	require.NoError(t, os.WriteFile(file, []byte("base_url = \"http://file.test/v1\"\npolling_interval_ms = 750\ntoken = \"file-token\"\n"), 0o644))

	a := newApp()
	root := a.rootCmd()
	require.NoError(t, root.ParseFlags([]string{"--config", file, "--poll-interval-ms", "100", "-H", "X-Trace=1"}))

	cfg, err := a.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://file.test/v1", cfg.BaseURL)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, 100, cfg.PollingIntervalMS)
	assert.Equal(t, "1", cfg.Headers["X-Trace"])
}

func TestPredictCommand_PinnedReference(t *testing.T) {
	base := startFake(t)
	out, err := run(t, "predict", "owner/model:v1",
		"--base-url", base, "--token", "cli-token", "--poll-interval-ms", "1", "-i", "prompt=x")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "v1", doc["model"].(map[string]interface{})["version"])
}

func TestModelsCommand(t *testing.T) {
	out, err := run(t, "models")
	require.NoError(t, err)
	assert.Contains(t, out, "flux-schnell")
}
