package loader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drl/internal/config"
	"github.com/leapstack-labs/drl/internal/testutil"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"**/*.drl", "a.drl", true},
		{"**/*.drl", "x/y/a.drl", true},
		{"**/*.drl", "x/a.txt", false},
		{"*.drl", "x/a.drl", false},
		{"legacy/**", "legacy/a.drl", true},
		{"legacy/**", "legacy", true},
		{"legacy/**", "other/a.drl", false},
		{"x/**/z.drl", "x/z.drl", true},
		{"x/**/z.drl", "x/a/b/z.drl", true},
		{"[", "[", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchGlob(tt.pattern, tt.name))
		})
	}
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"cheese.drl":          "package cheese\nrule \"a\" when Cheese() then end\n",
		"billing/invoice.drl": "package billing\nrule \"b\" when Invoice( total > 0 ) then end\nrule \"c\" when then end\n",
		"billing/broken.drl":  "package billing\nrule \"d\" when Invoice() then\n    x();\n",
		"legacy/old.drl":      "package legacy\n",
		"notes.txt":           "not a rule file",
		".cache/hidden.drl":   "package hidden\n",
	})
	return root
}

func TestLoader_Discover(t *testing.T) {
	root := newProject(t)

	l := New(&config.ProjectConfig{SourceDir: root, Exclude: []string{"legacy/**"}}, nil)
	files, err := l.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"billing/broken.drl", "billing/invoice.drl", "cheese.drl"}, files)

	assert.True(t, l.Matches(filepath.Join("billing", "x.drl")))
	assert.False(t, l.Matches("legacy/x.drl"))
}

func TestLoader_DiscoverMissingRoot(t *testing.T) {
	l := New(&config.ProjectConfig{SourceDir: filepath.Join(t.TempDir(), "missing")}, nil)
	_, err := l.Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to discover rule files")
}

func TestLoader_Load(t *testing.T) {
	root := newProject(t)
	l := New(&config.ProjectConfig{SourceDir: root, Workers: 2, Include: []string{"**/*.drl"}}, testutil.NewTestLogger(t))

	files, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 4)

	byPath := make(map[string]*File)
	for _, f := range files {
		require.NotNil(t, f)
		byPath[f.RelPath] = f
	}

	inv := byPath["billing/invoice.drl"]
	require.NotNil(t, inv)
	assert.Equal(t, filepath.Join(root, "billing", "invoice.drl"), inv.Path)
	assert.Equal(t, "billing", inv.Result.Package.Name)
	assert.Len(t, inv.Result.Package.Rules, 2)
	assert.False(t, inv.Result.HasErrors())

	broken := byPath["billing/broken.drl"]
	require.NotNil(t, broken)
	assert.True(t, broken.Result.HasErrors())
	require.Len(t, broken.Result.Package.Rules, 1)
	assert.Equal(t, "d", broken.Result.Package.Rules[0].Name)
}

func TestLoader_LoadCancelled(t *testing.T) {
	root := newProject(t)
	l := New(&config.ProjectConfig{SourceDir: root, Workers: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
