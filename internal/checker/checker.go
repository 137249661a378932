package checker

import (
	"fmt"
	"strconv"

	"github.com/tpl-lang/tplc/internal/ast"
	"github.com/tpl-lang/tplc/internal/diagnostic"
	"github.com/tpl-lang/tplc/internal/lexer"
)

// CallKind identifies how a resolved call should be generated.
type CallKind int

const (
	CallUser      CallKind = iota // direct call to a defined function
	CallFuncValue                 // indirect call through a function-typed variable
	CallPrint                     // variadic print builtin
	CallConcat                    // string concatenation builtin
	CallLen                       // array/string length builtin
)

// CallInfo records the resolution of a call expression for codegen.
type CallInfo struct {
	Kind CallKind
	Func *FuncInfo // for CallUser
	Sym  *Symbol   // for CallFuncValue
}

// FuncInfo holds information about a defined function or lambda.
type FuncInfo struct {
	Name   string
	Type   *Type // KindFunction
	Decl   *ast.FunctionDecl
	Lambda *ast.LambdaExpr
}

// CheckResult holds the results of semantic analysis for later stages.
type CheckResult struct {
	Diagnostics *diagnostic.Diagnostics
	ExprTypes   map[ast.Expression]*Type
	Uses        map[*ast.Identifier]*Symbol
	Defs        map[ast.Node]*Symbol
	Calls       map[ast.Expression]*CallInfo
	Functions   []*FuncInfo
	Lambdas     map[*ast.LambdaExpr]*FuncInfo
}

// FuncByName returns the named top-level function, or nil.
func (r *CheckResult) FuncByName(name string) *FuncInfo {
	for _, f := range r.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Checker performs scope and type resolution on the AST
type Checker struct {
	prog   *ast.Program
	diag   *diagnostic.Diagnostics
	global *Scope
	scope  *Scope

	funcs       []*FuncInfo
	funcsByName map[string]*FuncInfo
	lambdaSeq   int

	funcRet   *Type // return type of the function being checked; nil in main
	loopDepth int

	result *CheckResult
}

// CheckWithResult performs semantic analysis and returns results for
// downstream stages.
func CheckWithResult(prog *ast.Program) *CheckResult {
	c := &Checker{
		prog:        prog,
		diag:        diagnostic.New(diagnostic.StageSemantic),
		global:      NewScope(nil),
		funcsByName: make(map[string]*FuncInfo),
	}
	c.scope = c.global
	c.result = &CheckResult{
		Diagnostics: c.diag,
		ExprTypes:   make(map[ast.Expression]*Type),
		Uses:        make(map[*ast.Identifier]*Symbol),
		Defs:        make(map[ast.Node]*Symbol),
		Calls:       make(map[ast.Expression]*CallInfo),
		Lambdas:     make(map[*ast.LambdaExpr]*FuncInfo),
	}

	c.registerFunctions()
	c.checkProgram()

	c.result.Functions = c.funcs
	return c.result
}

// Check performs semantic analysis on an AST program
func Check(prog *ast.Program) *diagnostic.Diagnostics {
	return CheckWithResult(prog).Diagnostics
}

// registerFunctions inserts every top-level function definition into the
// global scope before bodies are checked, so definition order does not
// constrain call order.
func (c *Checker) registerFunctions() {
	for _, stmt := range c.prog.Statements {
		fd, ok := stmt.(*ast.FunctionDecl)
		if !ok {
			continue
		}

		if fd.Name == "main" {
			c.diag.Errorf(diagnostic.Redeclaration, fd.Line, fd.Column,
				"'main' is reserved for the program entry point")
			continue
		}

		ret, err := ResolveTypeRef(fd.ReturnType)
		if err != nil || ret == nil {
			c.diag.Errorf(diagnostic.TypeMismatch, fd.Line, fd.Column,
				"invalid return type for function '%s'", fd.Name)
			ret = TypeVoid
		}

		params := make([]*Type, 0, len(fd.Params))
		for _, p := range fd.Params {
			pt, err := ResolveTypeRef(p.Type)
			if err != nil || pt == nil || pt.Kind == KindVoid {
				c.diag.Errorf(diagnostic.TypeMismatch, p.Line, p.Column,
					"invalid type for parameter '%s'", p.Name)
				pt = TypeInt32
			}
			params = append(params, pt)
		}

		info := &FuncInfo{
			Name: fd.Name,
			Type: FuncType(params, ret),
			Decl: fd,
		}

		sym := &Symbol{
			Name:   fd.Name,
			Type:   info.Type,
			Kind:   SymFunction,
			Line:   fd.Line,
			Column: fd.Column,
		}
		if err := c.global.Define(sym); err != nil {
			c.diag.Errorf(diagnostic.Redeclaration, fd.Line, fd.Column,
				"function '%s' is already defined", fd.Name)
			continue
		}
		c.funcs = append(c.funcs, info)
		c.funcsByName[fd.Name] = info
	}
}

// checkProgram checks every function body and the implicit main body formed
// by the remaining top-level statements.
func (c *Checker) checkProgram() {
	mainScope := NewScope(c.global)

	for _, stmt := range c.prog.Statements {
		if fd, ok := stmt.(*ast.FunctionDecl); ok {
			c.checkFunction(fd)
			continue
		}
		c.inScope(mainScope, func() {
			c.checkStmt(stmt)
		})
	}
	c.warnUnused(mainScope)
}

// checkFunction checks a named function body in a fresh scope seeded with
// parameter symbols.
func (c *Checker) checkFunction(fd *ast.FunctionDecl) {
	info := c.funcsByName[fd.Name]
	if info == nil || info.Decl != fd {
		return // registration failed or duplicate, already reported
	}

	scope := NewScope(c.global)
	for i, p := range fd.Params {
		sym := &Symbol{
			Name:   p.Name,
			Type:   info.Type.Params[i],
			Kind:   SymParam,
			Line:   p.Line,
			Column: p.Column,
		}
		if err := scope.Define(sym); err != nil {
			c.diag.Errorf(diagnostic.Redeclaration, p.Line, p.Column,
				"parameter '%s' is already defined", p.Name)
			continue
		}
		c.result.Defs[p] = sym
	}

	savedRet, savedDepth := c.funcRet, c.loopDepth
	c.funcRet = info.Type.Return
	c.loopDepth = 0

	c.inScope(scope, func() {
		for _, s := range fd.Body.Statements {
			c.checkStmt(s)
		}
	})

	if info.Type.Return.Kind != KindVoid && !blockReturns(fd.Body) {
		c.diag.Errorf(diagnostic.MissingReturn, fd.Line, fd.Column,
			"function '%s' does not return a value on every path", fd.Name)
	}

	c.funcRet, c.loopDepth = savedRet, savedDepth
}

// inScope runs fn with the given scope installed as current.
func (c *Checker) inScope(scope *Scope, fn func()) {
	saved := c.scope
	c.scope = scope
	fn()
	c.scope = saved
}

// pushScope enters a new child frame; popScope leaves it, warning about
// variables that were never read.
func (c *Checker) pushScope() {
	c.scope = NewScope(c.scope)
}

func (c *Checker) popScope() {
	c.warnUnused(c.scope)
	c.scope = c.scope.Parent()
}

func (c *Checker) warnUnused(scope *Scope) {
	for _, sym := range scope.Symbols() {
		if sym.Kind == SymVariable && !sym.Used {
			c.diag.Warningf(diagnostic.UnusedVariable, sym.Line, sym.Column,
				"variable '%s' is never used", sym.Name)
		}
	}
}

// blockReturns reports whether a block is guaranteed to execute a return.
func blockReturns(b *ast.Block) bool {
	for _, stmt := range b.Statements {
		if stmtReturns(stmt) {
			return true
		}
	}
	return false
}

func stmtReturns(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.Block:
		return blockReturns(s)
	case *ast.IfStmt:
		if s.Else == nil {
			return false
		}
		return blockReturns(s.Then) && stmtReturns(s.Else)
	default:
		return false
	}
}

// --- Statements ---

func (c *Checker) checkStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		c.checkDecl(s)
	case *ast.AssignStmt:
		c.checkAssign(s)
	case *ast.ExprStmt:
		c.checkExpr(s.Expr, nil)
	case *ast.ReturnStmt:
		c.checkReturn(s)
	case *ast.IfStmt:
		c.checkIf(s)
	case *ast.WhileStmt:
		c.checkWhile(s)
	case *ast.ForInStmt:
		c.checkForIn(s)
	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			c.diag.Errorf(diagnostic.InvalidBreak, s.Line, s.Column,
				"break outside of a loop")
		}
	case *ast.Block:
		c.pushScope()
		for _, inner := range s.Statements {
			c.checkStmt(inner)
		}
		c.popScope()
	case *ast.FunctionDecl:
		c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
			"function definitions are only allowed at the top level")
	}
}

func (c *Checker) checkDecl(s *ast.DeclStmt) {
	declType, err := ResolveTypeRef(s.Type)
	if err != nil {
		c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column, "%s", err)
		return
	}

	if declType != nil && declType.Kind == KindVoid {
		c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
			"cannot declare variable '%s' of type void", s.Name)
		return
	}

	var varType *Type
	switch {
	case declType == nil:
		// auto: the type is the initializer's resolved type
		if s.Value == nil {
			c.diag.Errorf(diagnostic.CannotInferType, s.Line, s.Column,
				"cannot infer type of '%s' without an initializer", s.Name)
			return
		}
		initType := c.checkExpr(s.Value, nil)
		if initType == nil {
			return
		}
		if initType.Kind == KindVoid {
			c.diag.Errorf(diagnostic.CannotInferType, s.Line, s.Column,
				"initializer of '%s' has no value", s.Name)
			return
		}
		varType = initType

	case declType.Kind == KindFunction:
		// fn<T>: parameter types come from the bound function value
		if s.Value == nil {
			c.diag.Errorf(diagnostic.CannotInferType, s.Line, s.Column,
				"function variable '%s' requires an initializer", s.Name)
			return
		}
		initType := c.checkExpr(s.Value, declType)
		if initType == nil {
			return
		}
		if initType.Kind != KindFunction || !initType.Return.Equal(declType.Return) {
			c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
				"cannot bind %s to variable '%s' of type %s",
				initType.Describe(), s.Name, declType.String())
			return
		}
		varType = initType

	default:
		if s.Value != nil {
			initType := c.checkExpr(s.Value, declType)
			if initType != nil && !initType.Equal(declType) {
				c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
					"cannot assign %s to variable '%s' of type %s",
					initType.String(), s.Name, declType.String())
			}
		}
		varType = declType
	}

	sym := &Symbol{
		Name:   s.Name,
		Type:   varType,
		Kind:   SymVariable,
		Line:   s.Line,
		Column: s.Column,
	}
	if varType != nil && varType.Kind == KindArray {
		// aggregates always live in addressable storage
		sym.Storage = StorageAddress
	}
	if err := c.scope.Define(sym); err != nil {
		c.diag.Errorf(diagnostic.Redeclaration, s.Line, s.Column,
			"'%s' is already declared in this scope", s.Name)
		return
	}
	c.result.Defs[s] = sym
}

// isLvalue reports whether an expression denotes addressable storage.
func isLvalue(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		return true
	case *ast.IndexExpr:
		return true
	case *ast.UnaryExpr:
		return e.Op == lexer.STAR
	}
	return false
}

func (c *Checker) checkAssign(s *ast.AssignStmt) {
	if !isLvalue(s.Target) {
		c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
			"assignment target is not an lvalue")
		return
	}

	targetType := c.checkExpr(s.Target, nil)
	if targetType == nil {
		return
	}

	if ident, ok := s.Target.(*ast.Identifier); ok {
		if sym := c.result.Uses[ident]; sym != nil && sym.Kind == SymFunction {
			c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
				"cannot assign to function '%s'", ident.Name)
			return
		}
	}

	switch s.Op {
	case lexer.ASSIGN:
		valType := c.checkExpr(s.Value, targetType)
		if valType != nil && !valType.Equal(targetType) {
			c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
				"cannot assign %s to target of type %s",
				valType.String(), targetType.String())
		}
	case lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN:
		if !targetType.IsInt() {
			c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
				"compound assignment requires an integer target, got %s",
				targetType.String())
			return
		}
		valType := c.checkExpr(s.Value, targetType)
		if valType != nil && !valType.Equal(targetType) {
			c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
				"operand type %s does not match target type %s",
				valType.String(), targetType.String())
		}
	case lexer.INC, lexer.DEC:
		if !targetType.IsInt() {
			c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
				"%s requires an integer target, got %s",
				opName(s.Op), targetType.String())
		}
	}
}

func opName(op lexer.TokenType) string {
	switch op {
	case lexer.INC:
		return "++"
	case lexer.DEC:
		return "--"
	default:
		return op.String()
	}
}

func (c *Checker) checkReturn(s *ast.ReturnStmt) {
	ret := c.funcRet
	if ret == nil {
		ret = TypeVoid // top-level code returns from the implicit entry
	}

	if s.Value == nil {
		if ret.Kind != KindVoid {
			c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
				"missing return value in function returning %s", ret.String())
		}
		return
	}

	if ret.Kind == KindVoid {
		c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
			"unexpected return value in void function")
		return
	}

	valType := c.checkExpr(s.Value, ret)
	if valType != nil && !valType.Equal(ret) {
		c.diag.Errorf(diagnostic.TypeMismatch, s.Line, s.Column,
			"cannot return %s from function returning %s",
			valType.String(), ret.String())
	}
}

func (c *Checker) checkCond(cond ast.Expression) {
	t := c.checkExpr(cond, TypeBool)
	if t != nil && t.Kind != KindBool {
		line, col := cond.Pos()
		c.diag.Errorf(diagnostic.TypeMismatch, line, col,
			"condition must be bool, got %s", t.String())
	}
}

func (c *Checker) checkIf(s *ast.IfStmt) {
	c.checkCond(s.Condition)
	c.checkStmt(s.Then)
	if s.Else != nil {
		c.checkStmt(s.Else)
	}
}

func (c *Checker) checkWhile(s *ast.WhileStmt) {
	c.checkCond(s.Condition)
	c.loopDepth++
	c.checkStmt(s.Body)
	c.loopDepth--
}

func (c *Checker) checkForIn(s *ast.ForInStmt) {
	boundType := c.checkExpr(s.Bound, nil)
	if boundType != nil && !boundType.IsInt() {
		line, col := s.Bound.Pos()
		c.diag.Errorf(diagnostic.TypeMismatch, line, col,
			"for-in bound must be an integer, got %s", boundType.String())
		boundType = TypeInt32
	}
	if boundType == nil {
		boundType = TypeInt32
	}

	c.pushScope()
	sym := &Symbol{
		Name:   s.Variable,
		Type:   boundType,
		Kind:   SymVariable,
		Used:   true, // the loop itself reads the counter
		Line:   s.Line,
		Column: s.Column,
	}
	if err := c.scope.Define(sym); err == nil {
		c.result.Defs[s] = sym
	}

	c.loopDepth++
	c.checkStmt(s.Body)
	c.loopDepth--
	c.popScope()
}

// --- Expressions ---

// checkExpr resolves and types an expression. The hint, when non-nil, gives
// untyped integer literals and array literals their expected type; it never
// overrides the type of an already-typed expression.
func (c *Checker) checkExpr(expr ast.Expression, hint *Type) *Type {
	t := c.typeExpr(expr, hint)
	if t != nil {
		c.result.ExprTypes[expr] = t
	}
	return t
}

func (c *Checker) typeExpr(expr ast.Expression, hint *Type) *Type {
	switch e := expr.(type) {
	case *ast.IntLit:
		return c.typeIntLit(e, hint, false)

	case *ast.BoolLit:
		return TypeBool

	case *ast.StringLit:
		return TypeStr

	case *ast.Identifier:
		sym := c.scope.Resolve(e.Name)
		if sym == nil {
			c.diag.Errorf(diagnostic.UndefinedSymbol, e.Line, e.Column,
				"undefined symbol '%s'", e.Name)
			return nil
		}
		sym.Used = true
		c.result.Uses[e] = sym
		return sym.Type

	case *ast.BinaryExpr:
		return c.typeBinary(e, hint)

	case *ast.UnaryExpr:
		return c.typeUnary(e, hint)

	case *ast.CallExpr:
		return c.checkCall(e, e.Function, e.Line, e.Column, nil, e.Args)

	case *ast.MethodCallExpr:
		// sugar: receiver.name(args) resolves as name(receiver, args...)
		return c.checkCall(e, e.Method, e.Line, e.Column, e.Receiver, e.Args)

	case *ast.BuiltinExpr:
		return c.typeBuiltin(e)

	case *ast.IndexExpr:
		return c.typeIndex(e)

	case *ast.ArrayLit:
		return c.typeArrayLit(e, hint)

	case *ast.LambdaExpr:
		return c.typeLambda(e)

	default:
		line, col := expr.Pos()
		c.diag.Errorf(diagnostic.TypeMismatch, line, col,
			"unexpected expression")
		return nil
	}
}

var intRange = map[int][2]int64{
	8:  {-128, 127},
	16: {-32768, 32767},
	32: {-2147483648, 2147483647},
}

// typeIntLit types an integer literal. negated is set when the literal is
// the direct operand of unary minus, so the most-negative value of each
// width stays in range.
func (c *Checker) typeIntLit(e *ast.IntLit, hint *Type, negated bool) *Type {
	t := TypeInt32
	if hint != nil && hint.IsInt() {
		t = hint
	}

	lit := e.Value
	if negated {
		lit = "-" + lit
	}
	v, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
			"integer literal %s overflows int64", lit)
		return t
	}
	if r, ok := intRange[t.Width]; ok && (v < r[0] || v > r[1]) {
		c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
			"integer literal %s overflows %s", lit, t.String())
	}
	return t
}

func (c *Checker) typeBinary(e *ast.BinaryExpr, hint *Type) *Type {
	arith := false
	switch e.Op {
	case lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT:
		arith = true
	}

	leftHint := hint
	if !arith {
		leftHint = nil
	}

	// a bare literal adopts the width of the other operand, whichever side
	// it appears on
	var lt, rt *Type
	if isIntLiteral(e.Left) && !isIntLiteral(e.Right) {
		rt = c.checkExpr(e.Right, leftHint)
		lt = c.checkExpr(e.Left, rt)
	} else {
		lt = c.checkExpr(e.Left, leftHint)
		rt = c.checkExpr(e.Right, lt)
	}
	if lt == nil || rt == nil {
		return nil
	}

	if arith {
		// exact width match; conversions are explicit via .to_intN()
		if !lt.IsInt() || !rt.IsInt() || !lt.Equal(rt) {
			c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
				"operator %s requires matching integer operands, got %s and %s",
				binOpName(e.Op), lt.String(), rt.String())
			return nil
		}
		return lt
	}

	switch e.Op {
	case lexer.EQ, lexer.NEQ:
		if !lt.Equal(rt) || !(lt.IsInt() || lt.Kind == KindBool) {
			c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
				"operator %s requires matching integer or bool operands, got %s and %s",
				binOpName(e.Op), lt.String(), rt.String())
			return nil
		}
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		if !lt.IsInt() || !lt.Equal(rt) {
			c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
				"operator %s requires matching integer operands, got %s and %s",
				binOpName(e.Op), lt.String(), rt.String())
			return nil
		}
	}
	return TypeBool
}

func binOpName(op lexer.TokenType) string {
	switch op {
	case lexer.PLUS:
		return "+"
	case lexer.MINUS:
		return "-"
	case lexer.STAR:
		return "*"
	case lexer.SLASH:
		return "/"
	case lexer.PERCENT:
		return "%"
	case lexer.EQ:
		return "=="
	case lexer.NEQ:
		return "!="
	case lexer.LT:
		return "<"
	case lexer.GT:
		return ">"
	case lexer.LEQ:
		return "<="
	case lexer.GEQ:
		return ">="
	}
	return op.String()
}

func (c *Checker) typeUnary(e *ast.UnaryExpr, hint *Type) *Type {
	switch e.Op {
	case lexer.MINUS:
		if lit, ok := e.Operand.(*ast.IntLit); ok {
			t := c.typeIntLit(lit, hint, true)
			c.result.ExprTypes[lit] = t
			return t
		}
		t := c.checkExpr(e.Operand, hint)
		if t == nil {
			return nil
		}
		if !t.IsInt() {
			c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
				"unary - requires an integer operand, got %s", t.String())
			return nil
		}
		return t

	case lexer.BANG:
		t := c.checkExpr(e.Operand, TypeBool)
		if t == nil {
			return nil
		}
		if t.Kind != KindBool {
			c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
				"unary ! requires a bool operand, got %s", t.String())
			return nil
		}
		return TypeBool

	case lexer.STAR:
		t := c.checkExpr(e.Operand, nil)
		if t == nil {
			return nil
		}
		if t.Kind != KindPointer {
			c.diag.Errorf(diagnostic.InvalidDeref, e.Line, e.Column,
				"cannot dereference non-pointer type %s", t.String())
			return nil
		}
		return t.Inner

	case lexer.AMP:
		if !isLvalue(e.Operand) {
			c.diag.Errorf(diagnostic.InvalidAddressOf, e.Line, e.Column,
				"cannot take the address of this expression")
			return nil
		}
		t := c.checkExpr(e.Operand, nil)
		if t == nil {
			return nil
		}
		if ident, ok := e.Operand.(*ast.Identifier); ok {
			sym := c.result.Uses[ident]
			if sym == nil {
				return nil
			}
			if sym.Kind == SymFunction {
				c.diag.Errorf(diagnostic.InvalidAddressOf, e.Line, e.Column,
					"cannot take the address of function '%s'", ident.Name)
				return nil
			}
			// the address escapes: the variable must be address-backed
			// for the remainder of its scope
			sym.Storage = StorageAddress
		}
		return PointerTo(t)
	}

	c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
		"invalid unary operator")
	return nil
}

// checkCall resolves a call through a name: a defined function, a
// function-typed variable, or one of the free-function builtins. When recv
// is non-nil the call came from method sugar and recv is the implicit first
// argument.
func (c *Checker) checkCall(node ast.Expression, name string, line, col int, recv ast.Expression, args []ast.Expression) *Type {
	var recvType *Type
	if recv != nil {
		recvType = c.checkExpr(recv, nil)
		if recvType == nil {
			return nil
		}
	}

	if sym := c.scope.Resolve(name); sym != nil {
		sym.Used = true
		var fnType *Type
		info := &CallInfo{}

		switch {
		case sym.Kind == SymFunction:
			fnType = sym.Type
			info.Kind = CallUser
			info.Func = c.funcsByName[name]
		case sym.Type != nil && sym.Type.Kind == KindFunction:
			fnType = sym.Type
			info.Kind = CallFuncValue
			info.Sym = sym
		default:
			c.diag.Errorf(diagnostic.TypeMismatch, line, col,
				"'%s' is not callable (type %s)", name, sym.Type.String())
			return nil
		}

		if ok := c.checkCallArgs(name, line, col, fnType, recvType, args); !ok {
			return nil
		}
		c.result.Calls[node] = info
		return fnType.Return
	}

	switch name {
	case "print":
		c.checkPrintArgs(line, col, recvType, args)
		c.result.Calls[node] = &CallInfo{Kind: CallPrint}
		return TypeVoid
	case "concat":
		if !c.checkBuiltinArity("concat", line, col, 2, recvType, args) {
			return nil
		}
		types := c.builtinArgTypes(recvType, args, TypeStr)
		for _, t := range types {
			if t != nil && t.Kind != KindStr {
				c.diag.Errorf(diagnostic.TypeMismatch, line, col,
					"concat requires str arguments, got %s", t.String())
				return nil
			}
		}
		c.result.Calls[node] = &CallInfo{Kind: CallConcat}
		return TypeStr
	case "len":
		if !c.checkBuiltinArity("len", line, col, 1, recvType, args) {
			return nil
		}
		types := c.builtinArgTypes(recvType, args, nil)
		t := types[0]
		if t != nil && t.Kind != KindArray && t.Kind != KindStr {
			c.diag.Errorf(diagnostic.TypeMismatch, line, col,
				"len requires an array or str argument, got %s", t.String())
			return nil
		}
		c.result.Calls[node] = &CallInfo{Kind: CallLen}
		return TypeInt64
	}

	c.diag.Errorf(diagnostic.UndefinedSymbol, line, col,
		"undefined symbol '%s'", name)
	return nil
}

// checkCallArgs verifies arity and exact parameter type matches.
func (c *Checker) checkCallArgs(name string, line, col int, fnType *Type, recvType *Type, args []ast.Expression) bool {
	params := fnType.Params
	total := len(args)
	if recvType != nil {
		total++
	}
	if total != len(params) {
		c.diag.Errorf(diagnostic.ArityMismatch, line, col,
			"'%s' expects %d argument(s), got %d", name, len(params), total)
		return false
	}

	ok := true
	offset := 0
	if recvType != nil {
		if !recvType.Equal(params[0]) {
			c.diag.Errorf(diagnostic.TypeMismatch, line, col,
				"receiver type %s does not match parameter type %s of '%s'",
				recvType.String(), params[0].String(), name)
			ok = false
		}
		offset = 1
	}
	for i, arg := range args {
		at := c.checkExpr(arg, params[i+offset])
		if at == nil {
			ok = false
			continue
		}
		if !at.Equal(params[i+offset]) {
			aline, acol := arg.Pos()
			c.diag.Errorf(diagnostic.TypeMismatch, aline, acol,
				"argument %d of '%s' has type %s, expected %s",
				i+offset+1, name, at.String(), params[i+offset].String())
			ok = false
		}
	}
	return ok
}

// checkPrintArgs types every print argument; each must be formattable.
func (c *Checker) checkPrintArgs(line, col int, recvType *Type, args []ast.Expression) {
	check := func(t *Type, aline, acol int) {
		if t == nil {
			return
		}
		if !t.IsInt() && t.Kind != KindBool && t.Kind != KindStr {
			c.diag.Errorf(diagnostic.TypeMismatch, aline, acol,
				"type %s is not supported by print", t.String())
		}
	}
	if recvType != nil {
		check(recvType, line, col)
	}
	for _, arg := range args {
		t := c.checkExpr(arg, nil)
		aline, acol := arg.Pos()
		check(t, aline, acol)
	}
}

func (c *Checker) checkBuiltinArity(name string, line, col int, want int, recvType *Type, args []ast.Expression) bool {
	total := len(args)
	if recvType != nil {
		total++
	}
	if total != want {
		c.diag.Errorf(diagnostic.ArityMismatch, line, col,
			"'%s' expects %d argument(s), got %d", name, want, total)
		return false
	}
	return true
}

// builtinArgTypes types the effective argument list (receiver first).
func (c *Checker) builtinArgTypes(recvType *Type, args []ast.Expression, hint *Type) []*Type {
	var out []*Type
	if recvType != nil {
		out = append(out, recvType)
	}
	for _, arg := range args {
		out = append(out, c.checkExpr(arg, hint))
	}
	return out
}

func (c *Checker) typeBuiltin(e *ast.BuiltinExpr) *Type {
	t := c.checkExpr(e.Receiver, nil)
	if t == nil {
		return nil
	}

	switch e.Kind {
	case ast.BuiltinTypeOf:
		// resolved at compile time from the receiver's static type
		return TypeStr

	case ast.BuiltinToInt:
		if !t.IsInt() && t.Kind != KindBool {
			c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
				"to_int%d requires an integer or bool receiver, got %s",
				e.Width, t.String())
			return nil
		}
		return IntType(e.Width)

	case ast.BuiltinToStr:
		if !t.IsInt() && t.Kind != KindBool {
			c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
				"to_str requires an integer or bool receiver, got %s", t.String())
			return nil
		}
		return TypeStr
	}
	return nil
}

func (c *Checker) typeIndex(e *ast.IndexExpr) *Type {
	objType := c.checkExpr(e.Object, nil)
	idxType := c.checkExpr(e.Index, nil)

	if idxType != nil && !idxType.IsInt() {
		line, col := e.Index.Pos()
		c.diag.Errorf(diagnostic.TypeMismatch, line, col,
			"index must be an integer, got %s", idxType.String())
	}

	if objType == nil {
		return nil
	}

	switch objType.Kind {
	case KindArray:
		if v, ok := foldConstInt(e.Index); ok {
			if v < 0 || v >= int64(objType.Len) {
				c.diag.Errorf(diagnostic.IndexOutOfRange, e.Line, e.Column,
					"index %d out of range for %s", v, objType.String())
			}
		}
		return objType.Inner
	case KindPointer:
		return objType.Inner
	default:
		c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
			"cannot index type %s", objType.String())
		return nil
	}
}

// isIntLiteral reports whether an expression is a bare integer literal,
// optionally under unary minus.
func isIntLiteral(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.IntLit:
		return true
	case *ast.UnaryExpr:
		if e.Op != lexer.MINUS {
			return false
		}
		_, ok := e.Operand.(*ast.IntLit)
		return ok
	}
	return false
}

// foldConstInt evaluates integer literal expressions (with optional unary
// minus) at compile time.
func foldConstInt(expr ast.Expression) (int64, bool) {
	switch e := expr.(type) {
	case *ast.IntLit:
		v, err := strconv.ParseInt(e.Value, 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	case *ast.UnaryExpr:
		if e.Op != lexer.MINUS {
			return 0, false
		}
		v, ok := foldConstInt(e.Operand)
		if !ok {
			return 0, false
		}
		return -v, true
	}
	return 0, false
}

func (c *Checker) typeArrayLit(e *ast.ArrayLit, hint *Type) *Type {
	var elemHint *Type
	if hint != nil && hint.Kind == KindArray {
		elemHint = hint.Inner
	}

	if len(e.Elements) == 0 {
		c.diag.Errorf(diagnostic.CannotInferType, e.Line, e.Column,
			"cannot infer the element type of an empty array literal")
		return nil
	}

	elemType := c.checkExpr(e.Elements[0], elemHint)
	if elemType == nil {
		return nil
	}
	for _, elem := range e.Elements[1:] {
		t := c.checkExpr(elem, elemType)
		if t != nil && !t.Equal(elemType) {
			line, col := elem.Pos()
			c.diag.Errorf(diagnostic.TypeMismatch, line, col,
				"array elements must share one type, got %s and %s",
				elemType.String(), t.String())
		}
	}

	arr := ArrayOf(elemType, len(e.Elements))
	if hint != nil && hint.Kind == KindArray && hint.Len != arr.Len {
		c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
			"array literal has %d element(s), expected %d", arr.Len, hint.Len)
	}
	return arr
}

func (c *Checker) typeLambda(e *ast.LambdaExpr) *Type {
	ret, err := ResolveTypeRef(e.ReturnType)
	if err != nil || ret == nil {
		c.diag.Errorf(diagnostic.TypeMismatch, e.Line, e.Column,
			"invalid lambda return type")
		ret = TypeVoid
	}

	params := make([]*Type, 0, len(e.Params))
	scope := NewScope(c.global) // lambdas do not capture enclosing locals
	for _, p := range e.Params {
		pt, perr := ResolveTypeRef(p.Type)
		if perr != nil || pt == nil || pt.Kind == KindVoid {
			c.diag.Errorf(diagnostic.TypeMismatch, p.Line, p.Column,
				"invalid type for parameter '%s'", p.Name)
			pt = TypeInt32
		}
		params = append(params, pt)

		sym := &Symbol{
			Name:   p.Name,
			Type:   pt,
			Kind:   SymParam,
			Line:   p.Line,
			Column: p.Column,
		}
		if derr := scope.Define(sym); derr != nil {
			c.diag.Errorf(diagnostic.Redeclaration, p.Line, p.Column,
				"parameter '%s' is already defined", p.Name)
			continue
		}
		c.result.Defs[p] = sym
	}

	savedRet, savedDepth := c.funcRet, c.loopDepth
	c.funcRet = ret
	c.loopDepth = 0
	c.inScope(scope, func() {
		for _, s := range e.Body.Statements {
			c.checkStmt(s)
		}
	})
	c.funcRet, c.loopDepth = savedRet, savedDepth

	if ret.Kind != KindVoid && !blockReturns(e.Body) {
		c.diag.Errorf(diagnostic.MissingReturn, e.Line, e.Column,
			"lambda does not return a value on every path")
	}

	fnType := FuncType(params, ret)
	info := &FuncInfo{
		Name:   fmt.Sprintf("lambda.%d", c.lambdaSeq),
		Type:   fnType,
		Lambda: e,
	}
	c.lambdaSeq++
	c.result.Lambdas[e] = info
	return fnType
}
