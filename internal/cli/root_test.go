package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drl/internal/cli/config"
	"github.com/leapstack-labs/drl/internal/cli/output"
	"github.com/leapstack-labs/drl/internal/testutil"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "drl", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"version", "parse", "outline", "check", "watch", "index", "lsp", "completion"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "project-dir", "source-dir", "index", "include", "exclude", "workers", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_LoadsProjectConfig(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"drl.yaml":          "source_dir: src\noutput: json\n",
		"src/cheese.drl":    "package org.cheese\nrule \"Cheddar\" when then end\n",
		"rules/ignored.drl": "rule \"Ignored\" when then end\n",
	})

	out, err := run(t, "--project-dir", root, "outline")
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Cheddar", entries[0]["name"])

	cfg := config.GetCurrentConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, filepath.Join(root, "src"), cfg.SourceDir)
	assert.Equal(t, filepath.Join(root, "drl.yaml"), config.GetConfigFileUsed())
}

func TestRoot_FlagsOverrideFile(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"drl.yaml":       "output: json\n",
		"rules/bad.drl":  "rule \"Bad\" when then\n",
		"rules/good.drl": "rule \"Good\" when then end\n",
	})

	out, err := run(t, "--project-dir", root, "-o", "markdown", "--exclude", "bad.drl", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "- **Files**: 1")
}

func TestRoot_InvalidOutput(t *testing.T) {
	_, err := run(t, "--project-dir", t.TempDir(), "-o", "xml", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRoot_CheckFailure(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"rules/bad.drl": "rule \"Bad\" when then\n"})

	out, err := run(t, "--project-dir", root, "check")
	require.Error(t, err)
	assert.Contains(t, out, filepath.Join("rules", "bad.drl"))
}

func TestRoot_Version(t *testing.T) {
	out, err := run(t, "--project-dir", t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "drl v"+Version)
}

func TestRoot_Completion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "drl")

	_, err = run(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestGetConfigAndRenderer_Defaults(t *testing.T) {
	ctx := t.Context()

	cfg := GetConfig(ctx)
	assert.Equal(t, config.DefaultSourceDir, cfg.SourceDir)
	assert.Equal(t, config.DefaultIndexPath, cfg.IndexPath)

	r := GetRenderer(ctx)
	assert.Equal(t, output.ModeAuto, r.Mode())
}
