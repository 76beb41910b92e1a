package drl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cheeseRules = `package org.example.cheese;

import org.example.Cheese;
global java.util.List results;

rule "Cheddar"
    salience 10
when
    $c : Cheese( type == "cheddar", $p : price < 10 )
then
    results.add($c);
end

rule "No stilton"
when
    not Cheese( type == 'stilton' )
then
    System.out.println("none");
end
`

func TestParse(t *testing.T) {
	res := Parse(cheeseRules)
	require.False(t, res.HasErrors(), "%v", res.Errors)
	require.NotNil(t, res.Package)
	require.NotNil(t, res.Tree)

	pkg := res.Package
	assert.Equal(t, "org.example.cheese", pkg.Name)
	require.Len(t, pkg.Rules, 2)
	assert.Equal(t, "Cheddar", pkg.Rules[0].Name)
	assert.Equal(t, "10", pkg.Rules[0].Attribute("salience").Value)
	assert.Equal(t, "results.add($c);", pkg.Rules[0].Consequence)
	assert.Equal(t, "No stilton", pkg.Rules[1].Name)
	assert.Empty(t, res.Diagnostics())
}

func TestParse_SyntaxErrors(t *testing.T) {
	res := Parse("package foo;\nrule r when Cheese( then x(); ")
	require.True(t, res.HasErrors())
	require.NotNil(t, res.Package)
	assert.Nil(t, res.Err)
	require.Len(t, res.Package.Rules, 1)

	diags := res.Diagnostics()
	require.NotEmpty(t, diags)
	for _, d := range diags {
		assert.Equal(t, 2, d.Pos.Line, d.String())
		assert.NotContains(t, d.Message, "parse error at")
	}
}

func TestParse_LexError(t *testing.T) {
	res := Parse("rule r when then `x` end")
	require.True(t, res.HasErrors())
	diags := res.Diagnostics()
	require.NotEmpty(t, diags)
	assert.Equal(t, "1:18: illegal character \"`\"", diags[0].String())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cheese.drl")
	require.NoError(t, os.WriteFile(path, []byte(cheeseRules), 0o600))

	res, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, res.Package.Rules, 2)

	_, err = ParseFile(filepath.Join(dir, "missing.drl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.drl")
}
