package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestRenderer(mode Mode) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewRenderer(&out, &errOut, mode), &out, &errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{mode: "", want: ModeMarkdown},
		{mode: ModeAuto, want: ModeMarkdown},
		{mode: ModeText, want: ModeText},
		{mode: ModeJSON, want: ModeJSON},
		{mode: ModeYAML, want: ModeYAML},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode)
			assert.False(t, r.IsTTY())
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_Messages(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText)

	r.Success("done")
	r.Muted("quiet")
	r.Warning("careful")
	r.Error("broken")

	// A buffer is not a terminal, so styles render without escape codes.
	assert.Equal(t, "✓ done\nquiet\n", out.String())
	assert.Equal(t, "! careful\n✗ broken\n", errOut.String())
}

func TestRenderer_Header(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown)
	r.Header(2, "Rules")
	assert.Equal(t, "## Rules\n", out.String())

	r, out, _ = newTestRenderer(ModeText)
	r.Header(1, "Rules")
	assert.Equal(t, "Rules\n", out.String())
}

func TestRenderer_Structured(t *testing.T) {
	v := map[string]any{"name": "r1", "line": 3}

	r, out, _ := newTestRenderer(ModeJSON)
	ok, err := r.Structured(v)
	require.NoError(t, err)
	assert.True(t, ok)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "r1", got["name"])

	r, out, _ = newTestRenderer(ModeYAML)
	ok, err = r.Structured(v)
	require.NoError(t, err)
	assert.True(t, ok)
	got = nil
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 3, got["line"])

	r, out, _ = newTestRenderer(ModeText)
	ok, err = r.Structured(v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "### Sub", FormatHeader(3, "Sub"))
	assert.Equal(t, "- **Rules**: 3", FormatKeyValue("Rules", "3"))
	assert.Equal(t, "Index Path", Title("index_path"))
}

func TestRenderer_Table(t *testing.T) {
	columns := []string{"kind", "name"}
	rows := [][]string{{"rule", "Cheese"}, {"global", "list"}}

	r, out, _ := newTestRenderer(ModeMarkdown)
	r.Table(columns, rows)
	assert.Contains(t, out.String(), "| rule | Cheese |")
	assert.NotContains(t, out.String(), "┌")

	r, out, _ = newTestRenderer(ModeText)
	r.Table(columns, rows)
	assert.Contains(t, out.String(), "Cheese")
	assert.Contains(t, out.String(), "┌")
}
