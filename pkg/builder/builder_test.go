package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drl/pkg/cst"
	"github.com/leapstack-labs/drl/pkg/descr"
	"github.com/leapstack-labs/drl/pkg/parser"
	"github.com/leapstack-labs/drl/pkg/token"
)

// build parses src and builds it, failing on invariant errors only.
func build(t *testing.T, src string) *descr.PackageDescr {
	t.Helper()
	tree, _ := parser.Parse(src)
	pkg, err := Build(tree)
	require.NoError(t, err)
	require.NotNil(t, pkg)
	return pkg
}

// buildClean is build for input that must parse without errors.
func buildClean(t *testing.T, src string) *descr.PackageDescr {
	t.Helper()
	tree, errs := parser.Parse(src)
	require.Empty(t, errs)
	pkg, err := Build(tree)
	require.NoError(t, err)
	return pkg
}

func TestBuild_PackageName(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "plain", src: "package foo.bar.baz", want: "foo.bar.baz"},
		{name: "with semicolon", src: "package foo.bar;", want: "foo.bar"},
		{name: "junk before name", src: "package 12 foo.bar.baz;", want: "foo.bar.baz"},
		{name: "only junk", src: "package 12 12312 231", want: ""},
		{name: "missing", src: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := build(t, tt.src)
			assert.Equal(t, tt.want, pkg.Name)
			assert.Empty(t, pkg.Rules)
			assert.Empty(t, pkg.Imports)
		})
	}
}

func TestBuild_Unit(t *testing.T) {
	pkg := buildClean(t, "package org;\nunit org.MyUnit;")
	require.NotNil(t, pkg.Unit)
	assert.Equal(t, "org.MyUnit", pkg.Unit.Target)
}

func TestBuild_Imports(t *testing.T) {
	src := "import a.B;\nimport function c.d.max;\nimport e.f.*;\nimport static g.H.min;\n"
	pkg := buildClean(t, src)

	require.Len(t, pkg.Imports, 2)
	assert.Equal(t, "a.B", pkg.Imports[0].Target)
	assert.Equal(t, "e.f.*", pkg.Imports[1].Target)
	assert.Equal(t, "import a.B", pkg.Imports[0].Span.Text(src))
	assert.Equal(t, "import e.f.*", pkg.Imports[1].Span.Text(src))

	require.Len(t, pkg.FunctionImports, 2)
	assert.Equal(t, "c.d.max", pkg.FunctionImports[0].Target)
	assert.Equal(t, "g.H.min", pkg.FunctionImports[1].Target)
	assert.Equal(t, "import function c.d.max", pkg.FunctionImports[0].Span.Text(src))
	assert.Equal(t, 12, pkg.FunctionImports[0].Span.Start.Offset)
	assert.Equal(t, 35, pkg.FunctionImports[0].Span.End.Offset)
}

func TestBuild_Globals(t *testing.T) {
	src := "global java.util.List<java.util.Map<String,Integer>> aList;\nglobal Integer count"
	pkg := buildClean(t, src)

	require.Len(t, pkg.Globals, 2)
	g := pkg.Globals[0]
	assert.Equal(t, "aList", g.Identifier)
	assert.Equal(t, "java.util.List<java.util.Map<String,Integer>>", g.Type)
	assert.Equal(t, "global java.util.List<java.util.Map<String,Integer>> aList", g.Span.Text(src))

	assert.Equal(t, "count", pkg.Globals[1].Identifier)
	assert.Equal(t, "Integer", pkg.Globals[1].Type)
}

func TestBuild_Functions(t *testing.T) {
	src := `package org.example;
dialect "mvel"

function int add(int a, java.util.List<String> b) {
    return a + b.size();
}

function hello() { }
`
	pkg := buildClean(t, src)
	require.Len(t, pkg.Functions, 2)

	add := pkg.Functions[0]
	assert.Equal(t, "add", add.Name)
	assert.Equal(t, "int", add.ReturnType)
	assert.Equal(t, "org.example", add.Namespace)
	assert.Equal(t, "mvel", add.Dialect)
	assert.Equal(t, []descr.Parameter{
		{Type: "int", Name: "a"},
		{Type: "java.util.List<String>", Name: "b"},
	}, add.Parameters)
	assert.Equal(t, "{\n    return a + b.size();\n}", add.Body)

	hello := pkg.Functions[1]
	assert.Equal(t, "hello", hello.Name)
	assert.Equal(t, "void", hello.ReturnType)
	assert.Empty(t, hello.Parameters)
	assert.Equal(t, "{ }", hello.Body)
}

func TestBuild_PackageAttributes(t *testing.T) {
	pkg := buildClean(t, "dialect \"java\"\nagenda-group 'g1'\ndialect \"mvel\"")

	assert.Equal(t, []string{"agenda-group", "dialect"}, pkg.AttributeNames())
	assert.Equal(t, "mvel", pkg.Attribute("dialect").Value)
	assert.Equal(t, "g1", pkg.Attribute("agenda-group").Value)
}

func TestBuild_RuleHeader(t *testing.T) {
	src := `rule "My Rule" extends "Base"
    salience -10
    no-loop
    enabled false
    agenda-group "g\tx"
    timer (int: 10s 5s)
    calendars "weekdays", "hol\u0069days"
    @Propagation(IMMEDIATE)
    @Tag
when
then
end`
	pkg := buildClean(t, src)
	require.Len(t, pkg.Rules, 1)
	r := pkg.Rules[0]

	assert.Equal(t, "My Rule", r.Name)
	assert.Equal(t, "Base", r.ParentName)
	assert.Equal(t, "-10", r.Attribute("salience").Value)
	assert.Equal(t, "", r.Attribute("no-loop").Value)
	assert.Equal(t, "false", r.Attribute("enabled").Value)
	assert.Equal(t, "g\tx", r.Attribute("agenda-group").Value)
	assert.Equal(t, "(int: 10s 5s)", r.Attribute("timer").Value)
	assert.Equal(t, "weekdays, holidays", r.Attribute("calendars").Value)

	require.Len(t, r.Annotations, 2)
	assert.Equal(t, "Propagation", r.Annotations[0].Name)
	assert.Equal(t, "IMMEDIATE", r.Annotations[0].Value)
	assert.Equal(t, "Tag", r.Annotations[1].Name)
	assert.Equal(t, "", r.Annotations[1].Value)

	assert.Empty(t, pkg.Attributes)
}

func TestBuild_Patterns(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		objectType  string
		identifier  string
		constraints []string
		labels      []string
	}{
		{
			name:        "labelled constraint",
			src:         `rule r when $c : Cheese( $t : type == 'stilton', price > 10 ) then end`,
			objectType:  "Cheese",
			identifier:  "$c",
			constraints: []string{"$t : type == 'stilton'", "price > 10"},
			labels:      []string{"$t", ""},
		},
		{
			name:        "parenthesised disjunction",
			src:         `rule r when Person( ( text == null || text2 matches "" ) ) then end`,
			objectType:  "Person",
			constraints: []string{`( text == null || text2 matches "" )`},
			labels:      []string{""},
		},
		{
			name:        "string escapes kept verbatim",
			src:         `rule r when Message( text == "a\"b\\c" ) then end`,
			objectType:  "Message",
			constraints: []string{`text == "a\"b\\c"`},
			labels:      []string{""},
		},
		{
			name:        "qualified type and method call",
			src:         `rule r when org.example.Order( items.size() > 2, customer.name != null ) then end`,
			objectType:  "org.example.Order",
			constraints: []string{"items.size() > 2", "customer.name != null"},
			labels:      []string{"", ""},
		},
		{
			name:        "abbreviated restriction",
			src:         `rule r when Cheese( price > 10 && < 20 ) then end`,
			objectType:  "Cheese",
			constraints: []string{"price > 10 && < 20"},
			labels:      []string{""},
		},
		{
			name:       "no constraints",
			src:        `rule r when Fact() then end`,
			objectType: "Fact",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := buildClean(t, tt.src)
			lhs := pkg.Rules[0].LHS
			require.Len(t, lhs.Children, 1)
			p, ok := lhs.Children[0].(*descr.Pattern)
			require.True(t, ok)

			assert.Equal(t, tt.objectType, p.ObjectType)
			assert.Equal(t, tt.identifier, p.Identifier)
			var texts, labels []string
			for _, c := range p.Constraint.Children {
				ec := c.(*descr.ExprConstraint)
				texts = append(texts, ec.Text)
				labels = append(labels, ec.Label)
			}
			assert.Equal(t, tt.constraints, texts)
			assert.Equal(t, tt.labels, labels)
		})
	}
}

func TestBuild_PatternSpan(t *testing.T) {
	src := "rule r when\n  $c : Cheese( price > 10 );\nthen end"
	pkg := buildClean(t, src)
	p := pkg.Rules[0].LHS.Children[0].(*descr.Pattern)

	assert.Equal(t, "$c : Cheese( price > 10 )", p.Span.Text(src))
	assert.Equal(t, "price > 10", p.Constraint.Children[0].GetSpan().Text(src))
}

func TestBuild_MultiAlternativeBind(t *testing.T) {
	pkg := buildClean(t, `rule r when pdo2 : (A() or B() or C()) then end`)
	lhs := pkg.Rules[0].LHS
	require.Len(t, lhs.Children, 1)

	or, ok := lhs.Children[0].(*descr.Or)
	require.True(t, ok)
	require.Len(t, or.Children, 3)
	for i, want := range []string{"A", "B", "C"} {
		p, ok := or.Children[i].(*descr.Pattern)
		require.True(t, ok)
		assert.Equal(t, want, p.ObjectType)
		assert.Equal(t, "pdo2", p.Identifier)
	}
}

func TestBuild_LHSShapes(t *testing.T) {
	tests := []struct {
		name  string
		lhs   string
		kinds []string
	}{
		{name: "empty", lhs: "", kinds: []string{"and"}},
		{name: "implicit and", lhs: "A() B()", kinds: []string{"and", "pattern", "pattern"}},
		{name: "nested and flattened", lhs: "(A() and B()) and C()", kinds: []string{"and", "pattern", "pattern", "pattern"}},
		{name: "prefix and flattened", lhs: "(and A() B())", kinds: []string{"and", "pattern", "pattern"}},
		{name: "or chain", lhs: "A() or B()", kinds: []string{"and", "or", "pattern", "pattern"}},
		{name: "prefix or", lhs: "(or A() B())", kinds: []string{"and", "or", "pattern", "pattern"}},
		{name: "and inside or kept", lhs: "(A() and B()) or C()", kinds: []string{"and", "or", "and", "pattern", "pattern", "pattern"}},
		{name: "not", lhs: "not Cheese()", kinds: []string{"and", "not", "pattern"}},
		{name: "exists", lhs: "exists( Person() )", kinds: []string{"and", "exists", "pattern"}},
		{name: "not over alternatives", lhs: "not (A() or B())", kinds: []string{"and", "not", "or", "pattern", "pattern"}},
		{name: "semicolons", lhs: "A(); B();", kinds: []string{"and", "pattern", "pattern"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := buildClean(t, "rule r when "+tt.lhs+" then end")
			var kinds []string
			descr.Walk(pkg.Rules[0].LHS, func(c descr.Condition) bool {
				kinds = append(kinds, descr.KindOf(c))
				return true
			})
			assert.Equal(t, tt.kinds, kinds)
			for _, child := range pkg.Rules[0].LHS.Children {
				assert.NotEqual(t, "and", descr.KindOf(child))
			}
		})
	}
}

func TestBuild_NestedAndOrder(t *testing.T) {
	pkg := buildClean(t, "rule r when (a() and b()) and c() then end")
	var types []string
	for _, c := range pkg.Rules[0].LHS.Children {
		types = append(types, c.(*descr.Pattern).ObjectType)
	}
	assert.Equal(t, []string{"a", "b", "c"}, types)
}

func TestBuild_FromSource(t *testing.T) {
	tests := []struct {
		name   string
		lhs    string
		source string
	}{
		{name: "list with method", lhs: "Number() from [1, 2, 3].sublist(1, 2)", source: "[1, 2, 3].sublist(1, 2)"},
		{name: "accessor chain", lhs: "Item() from $order.getItems()", source: "$order.getItems()"},
		{name: "indexing", lhs: "Item() from $list[0].children", source: "$list[0].children"},
		{name: "global", lhs: "String() from names", source: "names"},
		{name: "inside not", lhs: "not( C() from s.get(1) )", source: "s.get(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := buildClean(t, "rule r when "+tt.lhs+" then end")
			patterns := descr.Patterns(pkg.Rules[0].LHS)
			require.Len(t, patterns, 1)
			require.NotNil(t, patterns[0].Source)
			assert.Equal(t, tt.source, patterns[0].Source.DataSource)
		})
	}
}

func TestBuild_Consequence(t *testing.T) {
	src := "rule r\nwhen\nthen\n    foo();\n    if (x) { bar(); }\nend"
	pkg := buildClean(t, src)
	r := pkg.Rules[0]

	assert.Equal(t, "foo();\n    if (x) { bar(); }", r.Consequence)
	assert.Equal(t, token.Position{Line: 3, Column: 1, Offset: 12}, r.ConsequenceLocation)
	assert.Equal(t, src, r.Span.Text(src))
}

func TestBuild_RecoversFromErrors(t *testing.T) {
	t.Run("rule without end", func(t *testing.T) {
		tree, errs := parser.Parse("rule r when A() then x();")
		require.NotEmpty(t, errs)
		pkg, err := Build(tree)
		require.NoError(t, err)
		require.Len(t, pkg.Rules, 1)
		assert.Equal(t, "x();", pkg.Rules[0].Consequence)
		assert.Len(t, pkg.Rules[0].LHS.Children, 1)
	})

	t.Run("unsupported condition skipped", func(t *testing.T) {
		pkg := build(t, "rule r when A() eval(true) B() then end")
		var types []string
		for _, p := range descr.Patterns(pkg.Rules[0].LHS) {
			types = append(types, p.ObjectType)
		}
		assert.Equal(t, []string{"A", "B"}, types)
	})

	t.Run("junk between rules", func(t *testing.T) {
		pkg := build(t, "rule a when then end\n%%% garbage\nrule b when then end")
		require.Len(t, pkg.Rules, 2)
		assert.Equal(t, "a", pkg.Rules[0].Name)
		assert.Equal(t, "b", pkg.Rules[1].Name)
	})

	t.Run("query is skipped", func(t *testing.T) {
		pkg := build(t, "query q Person() end\nrule r when then end")
		require.Len(t, pkg.Rules, 1)
		assert.Equal(t, "r", pkg.Rules[0].Name)
	})
}

func TestBuild_RuleOrder(t *testing.T) {
	pkg := buildClean(t, `rule "b" when then end
rule "a" when then end
rule "b" when A() then end`)

	var names []string
	for _, r := range pkg.Rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"b", "a", "b"}, names)
	assert.Same(t, pkg.Rules[0], pkg.Rule("b"))
}

func TestBuild_InvariantError(t *testing.T) {
	kw := func(tt token.TokenType, lit string, offset int) *cst.Node {
		return cst.NewTerminal(token.Token{Type: tt, Literal: lit, Pos: token.Position{Line: 1, Column: offset + 1, Offset: offset}})
	}
	tests := []struct {
		name      string
		kind      cst.Kind
		keyword   *cst.Node
		construct string
	}{
		{name: "not", kind: cst.KindLhsNot, keyword: kw(token.NOT, "not", 12), construct: "not"},
		{name: "exists", kind: cst.KindLhsExists, keyword: kw(token.EXISTS, "exists", 12), construct: "exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quantified := cst.NewNode(tt.kind, tt.keyword, cst.NewNode(cst.KindLhsPatternBind))
			lhs := cst.NewNode(cst.KindLhs, kw(token.WHEN, "when", 7),
				cst.NewNode(cst.KindLhsOr, cst.NewNode(cst.KindLhsAnd, cst.NewNode(cst.KindLhsUnary, quantified))))
			rule := cst.NewNode(cst.KindRuleDef, kw(token.RULE, "rule", 0),
				cst.NewNode(cst.KindRuleName, kw(token.IDENT, "r", 5)), lhs)
			tree := &cst.Tree{Root: cst.NewNode(cst.KindCompilationUnit, rule)}

			pkg, err := Build(tree)
			assert.Nil(t, pkg)
			var ie *InvariantError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.construct, ie.Construct)
			assert.Equal(t, 13, ie.Span.Start.Column)
			assert.Contains(t, err.Error(), "line 1, column 13")
		})
	}

	t.Run("bare pattern bind", func(t *testing.T) {
		lhs := cst.NewNode(cst.KindLhs, kw(token.WHEN, "when", 0), cst.NewNode(cst.KindLhsPatternBind))
		_, err := composeLHS(lhs)
		var ie *InvariantError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "pattern bind", ie.Construct)
		assert.Equal(t, "invalid pattern bind: pattern bind has no pattern", err.Error())
	})
}

func TestBuild_NilTree(t *testing.T) {
	pkg, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, pkg.Name)
	assert.Empty(t, pkg.Rules)
	assert.NotNil(t, pkg.Attributes)
}

func TestBuild_Idempotent(t *testing.T) {
	src := `package org.example;
import java.util.List;
global List results;

rule "first"
    salience 10
when
    $p : Person( age > 18, $n : name )
    not Pet( owner == $p )
    x : (Dog() or Cat())
then
    results.add($n);
end
`
	tree, errs := parser.Parse(src)
	require.Empty(t, errs)

	first, err := Build(tree)
	require.NoError(t, err)
	second, err := Build(tree)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	reparsed, _ := parser.Parse(src)
	third, err := Build(reparsed)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}
