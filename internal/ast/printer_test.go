package ast

import (
	"testing"

	"github.com/tpl-lang/tplc/internal/lexer"
)

func TestPrint(t *testing.T) {
	prog := &Program{Statements: []Statement{
		&DeclStmt{
			Type:  &TypeRef{Kind: TypeNamed, Name: "int32"},
			Name:  "x",
			Value: &BinaryExpr{Op: lexer.PLUS, Left: &IntLit{Value: "1"}, Right: &IntLit{Value: "2"}},
		},
		&ExprStmt{Expr: &CallExpr{Function: "print", Args: []Expression{
			&Identifier{Name: "x"},
		}}},
	}}

	want := "Program\n" +
		"  Decl: int32 x\n" +
		"    Binary: +\n" +
		"      Int: 1\n" +
		"      Int: 2\n" +
		"  ExprStmt\n" +
		"    Call: print\n" +
		"      Ident: x\n"
	if got := Print(prog); got != want {
		t.Errorf("wrong dump.\nexpected:\n%s\ngot:\n%s", want, got)
	}
}

func TestTypeRefString(t *testing.T) {
	tests := []struct {
		ref  *TypeRef
		want string
	}{
		{&TypeRef{Kind: TypeNamed, Name: "int64"}, "int64"},
		{&TypeRef{Kind: TypeAuto}, "auto"},
		{&TypeRef{Kind: TypePointer, Inner: &TypeRef{Kind: TypeNamed, Name: "int8"}}, "int8*"},
		{&TypeRef{Kind: TypeArray, Len: "4", Inner: &TypeRef{Kind: TypeNamed, Name: "bool"}}, "bool[4]"},
		{&TypeRef{Kind: TypeFunc, Return: &TypeRef{Kind: TypeNamed, Name: "str"}}, "fn<str>"},
		{nil, "<nil>"},
	}

	for _, tt := range tests {
		if got := TypeRefString(tt.ref); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
