package parser

import (
	"testing"

	"fhirpath-go/ast"
)

func mustParse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tree, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return tree
}

func TestParsePrecedence(t *testing.T) {
	// "+" binds tighter than "=", so "1 + 2 = 3" parses as (1+2) = 3: the
	// root is a Binary Eq whose Left is a Binary Add.
	tree := mustParse(t, "1 + 2 = 3")
	root := tree.Node(tree.Root)
	if root.Kind != ast.KindBinary || root.Op != ast.OpEq {
		t.Fatalf("root = %v/%v, want Binary/Eq", root.Kind, root.Op)
	}
	left := tree.Node(root.Left)
	if left.Kind != ast.KindBinary || left.Op != ast.OpAdd {
		t.Fatalf("left = %v/%v, want Binary/Add", left.Kind, left.Op)
	}
}

func TestParseOrAndPrecedence(t *testing.T) {
	// "and" binds tighter than "or": "a or b and c" = a or (b and c).
	tree := mustParse(t, "a or b and c")
	root := tree.Node(tree.Root)
	if root.Kind != ast.KindBinary || root.Op != ast.OpOr {
		t.Fatalf("root op = %v, want Or", root.Op)
	}
	right := tree.Node(root.Right)
	if right.Kind != ast.KindBinary || right.Op != ast.OpAnd {
		t.Fatalf("right = %v/%v, want Binary/And", right.Kind, right.Op)
	}
}

func TestParseUnionLowPrecedence(t *testing.T) {
	// "|" is the lowest precedence: "1 + 2 | 3" = (1+2) | 3.
	tree := mustParse(t, "1 + 2 | 3")
	root := tree.Node(tree.Root)
	if root.Kind != ast.KindUnion {
		t.Fatalf("root = %v, want Union", root.Kind)
	}
}

func TestParsePathChain(t *testing.T) {
	tree := mustParse(t, "Patient.name.given")
	root := tree.Node(tree.Root)
	if root.Kind != ast.KindPath {
		t.Fatalf("root = %v, want Path", root.Kind)
	}
	if tree.Node(root.Member).Name != "given" {
		t.Fatalf("outer member = %q, want given", tree.Node(root.Member).Name)
	}
	inner := tree.Node(root.Base)
	if inner.Kind != ast.KindPath || tree.Node(inner.Member).Name != "name" {
		t.Fatalf("inner path malformed: %+v", inner)
	}
	base := tree.Node(inner.Base)
	if base.Kind != ast.KindIdentifier || base.Name != "Patient" {
		t.Fatalf("base = %+v, want Identifier Patient", base)
	}
}

func TestParseInvocationArgs(t *testing.T) {
	tree := mustParse(t, "name.where(use = 'official')")
	root := tree.Node(tree.Root)
	if root.Kind != ast.KindInvocation || root.Name != "where" {
		t.Fatalf("root = %+v, want Invocation where", root)
	}
	if len(root.Args) != 1 {
		t.Fatalf("args = %v, want 1", root.Args)
	}
	lambdaBody := tree.Node(root.Args[0])
	if lambdaBody.Kind != ast.KindLambda {
		t.Fatalf("arg = %v, want Lambda wrapping", lambdaBody.Kind)
	}
}

func TestParseIndexExpr(t *testing.T) {
	tree := mustParse(t, "name[0]")
	root := tree.Node(tree.Root)
	if root.Kind != ast.KindIndex {
		t.Fatalf("root = %v, want Index", root.Kind)
	}
}

func TestParseIsAsTypeNodes(t *testing.T) {
	tree := mustParse(t, "Patient.deceased is Boolean")
	root := tree.Node(tree.Root)
	if root.Kind != ast.KindTypeCheck || root.TypeName != "Boolean" {
		t.Fatalf("root = %+v, want TypeCheck Boolean", root)
	}

	tree = mustParse(t, "'2014' as Date")
	root = tree.Node(tree.Root)
	if root.Kind != ast.KindTypeCast || root.TypeName != "Date" {
		t.Fatalf("root = %+v, want TypeCast Date", root)
	}
}

func TestParseVariables(t *testing.T) {
	tree := mustParse(t, "$this")
	if tree.Node(tree.Root).Kind != ast.KindVariable {
		t.Fatalf("expected Variable node for $this")
	}
	tree = mustParse(t, "%resource")
	if tree.Node(tree.Root).Kind != ast.KindVariable {
		t.Fatalf("expected Variable node for %%resource")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"Patient..name",
		"1 +",
		"(1 + 2",
		"where(",
	}
	for _, src := range tests {
		if _, err := Parse(src); err == nil {
			t.Errorf("Parse(%q): expected error, got none", src)
		}
	}
}
