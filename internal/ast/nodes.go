package ast

import "github.com/tpl-lang/tplc/internal/lexer"

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Statement nodes
type Statement interface {
	Node
	stmtNode()
}

// Expression nodes
type Expression interface {
	Node
	exprNode()
}

// Program represents a whole TPL source unit. Top-level statements that are
// not function definitions form the body of the implicit entry function.
type Program struct {
	Statements []Statement
}

func (p *Program) Pos() (int, int) {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return 0, 0
}

// TypeRefKind discriminates the shape of a surface type reference.
type TypeRefKind int

const (
	TypeNamed   TypeRefKind = iota // int8..int128, bool, str, void
	TypeAuto                       // auto, filled in by the resolver
	TypePointer                    // T*
	TypeArray                      // T[N]
	TypeFunc                       // fn<T>
)

// TypeRef represents a type as written in the source.
type TypeRef struct {
	Kind   TypeRefKind
	Name   string   // for TypeNamed
	Inner  *TypeRef // element type for TypePointer/TypeArray
	Len    string   // array length literal for TypeArray
	Return *TypeRef // declared return type for TypeFunc
	Line   int
	Column int
}

func (t *TypeRef) Pos() (int, int) { return t.Line, t.Column }

// DeclStmt represents a variable declaration: <type> <name> [= <expr>];
type DeclStmt struct {
	Name   string
	Type   *TypeRef // TypeAuto when declared with `auto`
	Value  Expression
	Line   int
	Column int
}

func (d *DeclStmt) Pos() (int, int) { return d.Line, d.Column }
func (d *DeclStmt) stmtNode()       {}

// AssignStmt represents a plain or compound assignment:
// target = expr; target += expr; target -= expr; target++; target--;
// Value is nil for ++/--.
type AssignStmt struct {
	Target Expression
	Op     lexer.TokenType // ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, INC, DEC
	Value  Expression
	Line   int
	Column int
}

func (a *AssignStmt) Pos() (int, int) { return a.Line, a.Column }
func (a *AssignStmt) stmtNode()       {}

// FunctionDecl represents a named function definition:
// define <ret> <name>(<params>) { ... };
type FunctionDecl struct {
	Name       string
	Params     []*Param
	ReturnType *TypeRef
	Body       *Block
	Line       int
	Column     int
}

func (f *FunctionDecl) Pos() (int, int) { return f.Line, f.Column }
func (f *FunctionDecl) stmtNode()       {}

// Param represents a function parameter
type Param struct {
	Name   string
	Type   *TypeRef
	Line   int
	Column int
}

func (p *Param) Pos() (int, int) { return p.Line, p.Column }

// Block represents a brace-delimited statement list
type Block struct {
	Statements []Statement
	Line       int
	Column     int
}

func (b *Block) Pos() (int, int) { return b.Line, b.Column }
func (b *Block) stmtNode()       {}

// ReturnStmt represents a return statement
type ReturnStmt struct {
	Value  Expression // nil for bare return
	Line   int
	Column int
}

func (r *ReturnStmt) Pos() (int, int) { return r.Line, r.Column }
func (r *ReturnStmt) stmtNode()       {}

// IfStmt represents an if statement with an optional else branch
type IfStmt struct {
	Condition Expression
	Then      *Block
	Else      Statement // *Block, *IfStmt, or nil
	Line      int
	Column    int
}

func (i *IfStmt) Pos() (int, int) { return i.Line, i.Column }
func (i *IfStmt) stmtNode()       {}

// WhileStmt represents a while loop
type WhileStmt struct {
	Condition Expression
	Body      *Block
	Line      int
	Column    int
}

func (w *WhileStmt) Pos() (int, int) { return w.Line, w.Column }
func (w *WhileStmt) stmtNode()       {}

// ForInStmt represents a counted loop: for <variable> in <bound> { ... };
// The bound is evaluated once; the variable iterates the half-open range
// [0, bound).
type ForInStmt struct {
	Variable string
	Bound    Expression
	Body     *Block
	Line     int
	Column   int
}

func (f *ForInStmt) Pos() (int, int) { return f.Line, f.Column }
func (f *ForInStmt) stmtNode()       {}

// BreakStmt represents a break statement
type BreakStmt struct {
	Line   int
	Column int
}

func (b *BreakStmt) Pos() (int, int) { return b.Line, b.Column }
func (b *BreakStmt) stmtNode()       {}

// ExprStmt represents an expression used as a statement (a bare call)
type ExprStmt struct {
	Expr   Expression
	Line   int
	Column int
}

func (e *ExprStmt) Pos() (int, int) { return e.Line, e.Column }
func (e *ExprStmt) stmtNode()       {}

// BinaryExpr represents a binary expression
type BinaryExpr struct {
	Left   Expression
	Op     lexer.TokenType
	Right  Expression
	Line   int
	Column int
}

func (b *BinaryExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BinaryExpr) exprNode()       {}

// UnaryExpr represents a prefix expression. Op is one of AMP (address-of),
// STAR (deref), MINUS (negate), BANG (not).
type UnaryExpr struct {
	Op      lexer.TokenType
	Operand Expression
	Line    int
	Column  int
}

func (u *UnaryExpr) Pos() (int, int) { return u.Line, u.Column }
func (u *UnaryExpr) exprNode()       {}

// CallExpr represents a call through a name: either a defined function or a
// variable holding a function value. Builtin calls (print, concat, len) are
// recognized by the resolver, not the parser.
type CallExpr struct {
	Function string
	Args     []Expression
	Line     int
	Column   int
}

func (c *CallExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *CallExpr) exprNode()       {}

// MethodCallExpr represents method-call sugar: receiver.name(args...).
// The resolver rewrites it to name(receiver, args...).
type MethodCallExpr struct {
	Receiver Expression
	Method   string
	Args     []Expression
	Line     int
	Column   int
}

func (m *MethodCallExpr) Pos() (int, int) { return m.Line, m.Column }
func (m *MethodCallExpr) exprNode()       {}

// BuiltinKind identifies a receiver-typed builtin.
type BuiltinKind int

const (
	BuiltinTypeOf BuiltinKind = iota // x.type()
	BuiltinToInt                     // x.to_intN()
	BuiltinToStr                     // x.to_str()
)

// BuiltinExpr represents the introspection/conversion sugar whose result type
// depends on the receiver's static type: x.type(), x.to_intN(), x.to_str().
type BuiltinExpr struct {
	Receiver Expression
	Kind     BuiltinKind
	Width    int // target width for BuiltinToInt
	Line     int
	Column   int
}

func (b *BuiltinExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BuiltinExpr) exprNode()       {}

// IndexExpr represents an index access arr[i]
type IndexExpr struct {
	Object Expression
	Index  Expression
	Line   int
	Column int
}

func (i *IndexExpr) Pos() (int, int) { return i.Line, i.Column }
func (i *IndexExpr) exprNode()       {}

// LambdaExpr represents an anonymous function value:
// define <ret> (<params>) { ... }, bound through an fn<T> declaration.
type LambdaExpr struct {
	Params     []*Param
	ReturnType *TypeRef
	Body       *Block
	Line       int
	Column     int
}

func (l *LambdaExpr) Pos() (int, int) { return l.Line, l.Column }
func (l *LambdaExpr) exprNode()       {}

// Identifier represents an identifier
type Identifier struct {
	Name   string
	Line   int
	Column int
}

func (i *Identifier) Pos() (int, int) { return i.Line, i.Column }
func (i *Identifier) exprNode()       {}

// IntLit represents an integer literal
type IntLit struct {
	Value  string
	Line   int
	Column int
}

func (i *IntLit) Pos() (int, int) { return i.Line, i.Column }
func (i *IntLit) exprNode()       {}

// StringLit represents a string literal (contents, without quotes)
type StringLit struct {
	Value  string
	Line   int
	Column int
}

func (s *StringLit) Pos() (int, int) { return s.Line, s.Column }
func (s *StringLit) exprNode()       {}

// BoolLit represents a boolean literal
type BoolLit struct {
	Value  bool
	Line   int
	Column int
}

func (b *BoolLit) Pos() (int, int) { return b.Line, b.Column }
func (b *BoolLit) exprNode()       {}

// ArrayLit represents an array literal [expr, expr, ...]
type ArrayLit struct {
	Elements []Expression
	Line     int
	Column   int
}

func (a *ArrayLit) Pos() (int, int) { return a.Line, a.Column }
func (a *ArrayLit) exprNode()       {}
