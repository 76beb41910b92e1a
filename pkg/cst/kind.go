package cst

import "fmt"

// Kind identifies the grammar production a Node was built from. The set is
// closed: consumers switch over it exhaustively.
type Kind int

// Node kinds.
const (
	KindError Kind = iota
	KindTerminal

	// Compilation unit level
	KindCompilationUnit
	KindPackageDef
	KindUnitDef
	KindImportDef
	KindGlobalDef
	KindFunctionDef
	KindFormalParameters
	KindFormalParameter
	KindBlock
	KindAttribute
	KindAttributeValue
	KindAnnotation
	KindAnnotationArgs
	KindChunk

	// Rules
	KindRuleDef
	KindRuleName
	KindParentName
	KindLhs
	KindLhsOr
	KindLhsAnd
	KindLhsUnary
	KindLhsNot
	KindLhsExists
	KindLhsPatternBind
	KindLhsPattern
	KindLabel
	KindConstraints
	KindConstraint
	KindPatternSource
	KindRhs
	KindConsequence

	// Shared
	KindQualifiedName
	KindType
	KindTypeArguments
	KindExpression
	KindPrimary
	KindLiteral
	KindArguments
	KindListLiteral
)

var kindNames = map[Kind]string{
	KindError:            "Error",
	KindTerminal:         "Terminal",
	KindCompilationUnit:  "CompilationUnit",
	KindPackageDef:       "PackageDef",
	KindUnitDef:          "UnitDef",
	KindImportDef:        "ImportDef",
	KindGlobalDef:        "GlobalDef",
	KindFunctionDef:      "FunctionDef",
	KindFormalParameters: "FormalParameters",
	KindFormalParameter:  "FormalParameter",
	KindBlock:            "Block",
	KindAttribute:        "Attribute",
	KindAttributeValue:   "AttributeValue",
	KindAnnotation:       "Annotation",
	KindAnnotationArgs:   "AnnotationArgs",
	KindChunk:            "Chunk",
	KindRuleDef:          "RuleDef",
	KindRuleName:         "RuleName",
	KindParentName:       "ParentName",
	KindLhs:              "Lhs",
	KindLhsOr:            "LhsOr",
	KindLhsAnd:           "LhsAnd",
	KindLhsUnary:         "LhsUnary",
	KindLhsNot:           "LhsNot",
	KindLhsExists:        "LhsExists",
	KindLhsPatternBind:   "LhsPatternBind",
	KindLhsPattern:       "LhsPattern",
	KindLabel:            "Label",
	KindConstraints:      "Constraints",
	KindConstraint:       "Constraint",
	KindPatternSource:    "PatternSource",
	KindRhs:              "Rhs",
	KindConsequence:      "Consequence",
	KindQualifiedName:    "QualifiedName",
	KindType:             "Type",
	KindTypeArguments:    "TypeArguments",
	KindExpression:       "Expression",
	KindPrimary:          "Primary",
	KindLiteral:          "Literal",
	KindArguments:        "Arguments",
	KindListLiteral:      "ListLiteral",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
