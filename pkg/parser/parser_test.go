package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drl/pkg/cst"
)

func TestParse_Tree(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "package",
			input: "package foo.bar;",
			want:  "(CompilationUnit (PackageDef package (QualifiedName foo . bar) ;))",
		},
		{
			name:  "unit",
			input: "unit org.MyUnit;",
			want:  "(CompilationUnit (UnitDef unit (QualifiedName org . MyUnit) ;))",
		},
		{
			name:  "wildcard import",
			input: "import foo.bar.*",
			want:  "(CompilationUnit (ImportDef import (QualifiedName foo . bar) . *))",
		},
		{
			name:  "function import",
			input: "import function a.b.max;",
			want:  "(CompilationUnit (ImportDef import function (QualifiedName a . b . max) ;))",
		},
		{
			name:  "generic global",
			input: "global java.util.List<String> list;",
			want:  "(CompilationUnit (GlobalDef global (Type (QualifiedName java . util . List) (TypeArguments < (Type (QualifiedName String)) >)) list ;))",
		},
		{
			name:  "package attribute",
			input: `dialect "mvel"`,
			want:  `(CompilationUnit (Attribute dialect (AttributeValue (Literal "mvel"))))`,
		},
		{
			name:  "function",
			input: "function int add(int a, int b) { return a + b; }",
			want:  "(CompilationUnit (FunctionDef function (Type (QualifiedName int)) add (FormalParameters ( (FormalParameter (Type (QualifiedName int)) a) , (FormalParameter (Type (QualifiedName int)) b) )) (Block { return a + b ; })))",
		},
		{
			name:  "simple rule",
			input: `rule "r" when Cheese( price > 10 ) then end`,
			want:  `(CompilationUnit (RuleDef rule (RuleName "r") (Lhs when (LhsOr (LhsAnd (LhsUnary (LhsPatternBind (LhsPattern (QualifiedName Cheese) ( (Constraints (Constraint (Expression (Primary price) > (Literal 10)))) )))))) (Rhs then (Consequence)) end))`,
		},
		{
			name:  "labelled alternatives",
			input: `rule r when x : (A() or B()) then end`,
			want:  `(CompilationUnit (RuleDef rule (RuleName r) (Lhs when (LhsOr (LhsAnd (LhsUnary (LhsPatternBind (Label x :) ( (LhsPattern (QualifiedName A) ( (Constraints) )) or (LhsPattern (QualifiedName B) ( (Constraints) )) )))))) (Rhs then (Consequence)) end))`,
		},
		{
			name:  "not with from source",
			input: `rule r when not( C() from s.get(1) ) then end`,
			want:  `(CompilationUnit (RuleDef rule (RuleName r) (Lhs when (LhsOr (LhsAnd (LhsUnary (LhsNot not (LhsPatternBind ( (LhsPattern (QualifiedName C) ( (Constraints) ) from (PatternSource (Primary (Primary s) . get (Arguments ( (Literal 1) ))))) ))))))) (Rhs then (Consequence)) end))`,
		},
		{
			name:  "prefix or",
			input: `rule r when (or A() B()) then end`,
			want:  `(CompilationUnit (RuleDef rule (RuleName r) (Lhs when (LhsOr ( or (LhsAnd (LhsUnary (LhsPatternBind (LhsPattern (QualifiedName A) ( (Constraints) ))))) (LhsAnd (LhsUnary (LhsPatternBind (LhsPattern (QualifiedName B) ( (Constraints) ))))) ))) (Rhs then (Consequence)) end))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, errs := Parse(tt.input)
			require.Empty(t, errs)
			assert.Equal(t, tt.want, tree.Root.String())
		})
	}
}

func TestParse_RuleHeader(t *testing.T) {
	src := `rule "Invalid customer id" extends Base ruleflow-group "validate" lock-on-active true, salience -10
@Propagation(IMMEDIATE) timer (int: 10s 5s) no-loop
when
then
end`
	tree, errs := Parse(src)
	require.Empty(t, errs)

	rule := tree.Root.First(cst.KindRuleDef)
	require.NotNil(t, rule)
	assert.NotNil(t, rule.First(cst.KindParentName))
	assert.Len(t, rule.All(cst.KindAttribute), 5)
	assert.Len(t, rule.All(cst.KindAnnotation), 1)

	attrs := rule.All(cst.KindAttribute)
	assert.Equal(t, `"validate"`, tree.Text(attrs[0].Child(1)))
	assert.Equal(t, "-10", tree.Text(attrs[2].Child(1)))
	assert.Equal(t, "(int: 10s 5s)", tree.Text(attrs[3].Child(1)))
	assert.Nil(t, attrs[4].Child(1))
}

func TestParse_Consequence(t *testing.T) {
	src := "rule r when then\n  if (x) { list.end(); }\n  update(o);\nend"
	tree, errs := Parse(src)
	require.Empty(t, errs)

	rhs := tree.Root.First(cst.KindRuleDef).First(cst.KindRhs)
	require.NotNil(t, rhs)
	assert.Equal(t, "if (x) { list.end(); }\n  update(o);", tree.Text(rhs.First(cst.KindConsequence)))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // substring of the first error
	}{
		{"junk in package name", "package 12 foo.bar.baz", `unexpected token "12"`},
		{"missing end", "rule X when A() then foo();", "missing 'end' for rule X"},
		{"query is not supported", "query q A() end", "query is not supported"},
		{"eval is not supported", "rule r when eval(true) then end", "eval is not supported"},
		{"stray token", "package a; 42 rule r when then end", `unexpected token "42" at top level`},
		{"not without pattern", "rule r when not 1 then end", "expected pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, errs := Parse(tt.input)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tt.want)
			require.NotNil(t, tree.Root)
			assert.True(t, tree.Root.HasErrors() || strings.Contains(errs[0].Error(), "missing 'end'"))
		})
	}
}

func TestParse_PackageJunk(t *testing.T) {
	tree, errs := Parse("package 12 12312 231")
	assert.Len(t, errs, 3)
	name := tree.Root.First(cst.KindPackageDef).First(cst.KindQualifiedName)
	require.NotNil(t, name)
	for _, c := range name.Children {
		assert.True(t, c.IsError())
	}
}

func TestParse_RecoversAfterBadRule(t *testing.T) {
	src := `rule a when Cheese( price > ) then end
rule b when Cheese() then end`
	tree, errs := Parse(src)
	assert.NotEmpty(t, errs)
	assert.Len(t, tree.Root.All(cst.KindRuleDef), 2)
}

func TestParse_KeepsTokensAndComments(t *testing.T) {
	tree, _ := Parse("// header\npackage a")
	assert.Len(t, tree.Tokens, 3)
	assert.Len(t, tree.Comments, 1)
	assert.Equal(t, "// header\npackage a", tree.Source)
}

func TestErrorPosition(t *testing.T) {
	_, errs := Parse("rule r when then")
	require.NotEmpty(t, errs)
	pos := ErrorPosition(errs[0])
	assert.True(t, pos.IsValid())
}
