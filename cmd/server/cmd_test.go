package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		_ = scoreCmd.Flags().Set("age", "0")
		scoreCmd.Flags().Lookup("age").Changed = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	cfgPath := writeConfig(t, "log:\n  level: error\n")
	reqPath := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(reqPath, []byte(`{"reaction_times":[300,310,305]}`), 0o644))

	t.Run("prints the risk output", func(t *testing.T) {
		out, err := execute(t, "score", "--config", cfgPath, "--file", reqPath)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &body))
		assert.Contains(t, body, "composite_risk_score")
		assert.Contains(t, body, "disclaimer")
		assert.NotContains(t, body, "assessment_id")
	})

	t.Run("age override changes the result", func(t *testing.T) {
		young, err := execute(t, "score", "--config", cfgPath, "--file", reqPath, "--age", "30")
		require.NoError(t, err)
		old, err := execute(t, "score", "--config", cfgPath, "--file", reqPath, "--age", "85")
		require.NoError(t, err)
		assert.NotEqual(t, young, old)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "score", "--config", cfgPath, "--file", filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestConfigCommand(t *testing.T) {
	cfgPath := writeConfig(t, "server:\n  port: 9100\nratelimit:\n  redis_password: secret\n")

	out, err := execute(t, "config", "--config", cfgPath)
	require.NoError(t, err)

	var printed map[string]map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &printed))
	assert.Equal(t, 9100, printed["server"]["port"])
	assert.Equal(t, "********", printed["ratelimit"]["redis_password"])
}
