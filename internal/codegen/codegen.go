package codegen

import (
	"fmt"
	"strconv"

	"github.com/tpl-lang/tplc/internal/ast"
	"github.com/tpl-lang/tplc/internal/checker"
	"github.com/tpl-lang/tplc/internal/ir"
	"github.com/tpl-lang/tplc/internal/lexer"
)

// EntryName is the function synthesized from top-level statements.
const EntryName = "main"

// Generate lowers a checked program to an IR module. The program must have
// passed semantic analysis without errors; any inconsistency between the
// AST and the analysis results is an internal fault and returns an error.
func Generate(prog *ast.Program, res *checker.CheckResult, name string) (mod *ir.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(internalError); ok {
				mod = nil
				err = fmt.Errorf("codegen: %s", string(ie))
				return
			}
			panic(r)
		}
	}()

	g := &generator{
		prog: prog,
		res:  res,
		mod:  ir.NewModule(name),
	}

	for _, stmt := range prog.Statements {
		if fd, ok := stmt.(*ast.FunctionDecl); ok {
			info := res.FuncByName(fd.Name)
			if info == nil {
				g.bail("no signature recorded for function '%s'", fd.Name)
			}
			g.genFunction(info, fd.Params, fd.Body)
			g.drainLambdas()
		}
	}

	g.genMain()
	g.drainLambdas()

	return g.mod, nil
}

type internalError string

type generator struct {
	prog *ast.Program
	res  *checker.CheckResult
	mod  *ir.Module

	fn       *ir.Func
	blk      *ir.Block
	bindings map[*checker.Symbol]*binding
	names    map[string]int
	labelSeq int
	tempSeq  int
	loops    []string // break targets, innermost last

	lambdaQueue []*checker.FuncInfo
}

// binding maps a source symbol to its IR storage.
type binding struct {
	name string
	slot bool // true when the variable is backed by a stack slot
}

func (g *generator) bail(format string, args ...interface{}) {
	panic(internalError(fmt.Sprintf(format, args...)))
}

// uniq returns an IR-unique name within the current function.
func (g *generator) uniq(name string) string {
	n := g.names[name]
	g.names[name]++
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s.%d", name, n)
}

func (g *generator) emit(in *ir.Instr) int {
	return g.fn.Emit(g.blk, in)
}

func (g *generator) terminated() bool {
	return g.blk.Terminated()
}

// exprType returns the checked type of an expression.
func (g *generator) exprType(e ast.Expression) *checker.Type {
	t, ok := g.res.ExprTypes[e]
	if !ok {
		line, col := e.Pos()
		g.bail("untyped expression at %d:%d", line, col)
	}
	return t
}

// irType maps a checked type to its IR value type. Pointers and arrays both
// lower to addresses; function values lower to fn.
func irType(t *checker.Type) ir.Type {
	switch t.Kind {
	case checker.KindInt:
		return ir.IntType(t.Width)
	case checker.KindBool:
		return ir.Bool
	case checker.KindStr:
		return ir.Str
	case checker.KindPointer, checker.KindArray:
		return ir.Ptr
	case checker.KindFunction:
		return ir.Fn
	case checker.KindVoid:
		return ir.Void
	}
	return ir.Void
}

// --- Function generation ---

func (g *generator) beginFunc(name string, paramSyms []*checker.Symbol, result *checker.Type) {
	g.fn = &ir.Func{Name: name, Result: irType(result)}
	g.mod.Funcs = append(g.mod.Funcs, g.fn)
	g.bindings = make(map[*checker.Symbol]*binding)
	g.names = make(map[string]int)
	g.labelSeq = 0
	g.loops = g.loops[:0]
	g.blk = g.fn.NewBlock("entry")

	for _, sym := range paramSyms {
		pname := g.uniq(sym.Name)
		g.fn.Params = append(g.fn.Params, ir.Local{Name: pname, Type: irType(sym.Type)})
		b := &binding{name: pname}
		g.bindings[sym] = b

		if sym.Storage == checker.StorageAddress {
			// the parameter's address is taken: copy it into a slot and
			// route every access through that slot
			slotName := g.uniq(pname + ".addr")
			g.fn.Slots = append(g.fn.Slots, ir.Slot{Name: slotName, Elem: irType(sym.Type), Count: 1})
			val := g.emit(&ir.Instr{Op: ir.OpLocalGet, Sym: pname, Type: irType(sym.Type)})
			addr := g.emit(&ir.Instr{Op: ir.OpSlotAddr, Sym: slotName, Type: ir.Ptr})
			g.emit(&ir.Instr{Op: ir.OpStore, Args: []int{addr, val}, Elem: irType(sym.Type)})
			b.name = slotName
			b.slot = true
		}
	}
}

// endFunc terminates any fallthrough blocks. A non-void function whose body
// was proven to return on every path can still carry join blocks with no
// live predecessors; those end in unreachable.
func (g *generator) endFunc() {
	for _, b := range g.fn.Blocks {
		if b.Terminated() {
			continue
		}
		if g.fn.Result == ir.Void {
			g.fn.Emit(b, &ir.Instr{Op: ir.OpRet})
		} else {
			g.fn.Emit(b, &ir.Instr{Op: ir.OpUnreachable})
		}
	}
}

func (g *generator) genFunction(info *checker.FuncInfo, params []*ast.Param, body *ast.Block) {
	syms := make([]*checker.Symbol, 0, len(params))
	for _, p := range params {
		sym := g.res.Defs[p]
		if sym == nil {
			g.bail("no symbol recorded for parameter '%s'", p.Name)
		}
		syms = append(syms, sym)
	}

	g.beginFunc(info.Name, syms, info.Type.Return)
	g.genStmts(body.Statements)
	g.endFunc()
}

// genMain synthesizes the entry function from top-level statements, in
// source order, skipping function definitions.
func (g *generator) genMain() {
	g.beginFunc(EntryName, nil, checker.TypeVoid)
	var stmts []ast.Statement
	for _, stmt := range g.prog.Statements {
		if _, ok := stmt.(*ast.FunctionDecl); ok {
			continue
		}
		stmts = append(stmts, stmt)
	}
	g.genStmts(stmts)
	g.endFunc()
}

// drainLambdas generates queued lambda bodies. A lambda body can itself
// contain lambdas, so the queue is drained to a fixed point.
func (g *generator) drainLambdas() {
	for len(g.lambdaQueue) > 0 {
		info := g.lambdaQueue[0]
		g.lambdaQueue = g.lambdaQueue[1:]
		g.genFunction(info, info.Lambda.Params, info.Lambda.Body)
	}
}

// --- Statements ---

func (g *generator) genStmts(stmts []ast.Statement) {
	for _, stmt := range stmts {
		if g.terminated() {
			return // unreachable code after return or break
		}
		g.genStmt(stmt)
	}
}

func (g *generator) genStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		g.genDecl(s)
	case *ast.AssignStmt:
		g.genAssign(s)
	case *ast.ExprStmt:
		g.genExpr(s.Expr)
	case *ast.ReturnStmt:
		if s.Value == nil {
			g.emit(&ir.Instr{Op: ir.OpRet})
			return
		}
		v := g.genExpr(s.Value)
		g.emit(&ir.Instr{Op: ir.OpRet, Args: []int{v}})
	case *ast.IfStmt:
		g.genIf(s)
	case *ast.WhileStmt:
		g.genWhile(s)
	case *ast.ForInStmt:
		g.genForIn(s)
	case *ast.BreakStmt:
		if len(g.loops) == 0 {
			g.bail("break outside of a loop survived checking")
		}
		g.emit(&ir.Instr{Op: ir.OpBr, Target: g.loops[len(g.loops)-1]})
	case *ast.Block:
		g.genStmts(s.Statements)
	case *ast.FunctionDecl:
		g.bail("nested function definition survived checking")
	}
}

func (g *generator) genDecl(s *ast.DeclStmt) {
	sym := g.res.Defs[s]
	if sym == nil {
		g.bail("no symbol recorded for variable '%s'", s.Name)
	}

	name := g.uniq(sym.Name)
	elem := irType(sym.Type)

	if sym.Storage == checker.StorageAddress {
		count := 1
		if sym.Type.Kind == checker.KindArray {
			elem = irType(sym.Type.Inner)
			count = sym.Type.Len
		}
		g.fn.Slots = append(g.fn.Slots, ir.Slot{Name: name, Elem: elem, Count: count})
		g.bindings[sym] = &binding{name: name, slot: true}

		if s.Value == nil {
			return
		}
		if sym.Type.Kind == checker.KindArray {
			g.genArrayInit(name, sym.Type, s.Value)
			return
		}
		v := g.genExpr(s.Value)
		addr := g.emit(&ir.Instr{Op: ir.OpSlotAddr, Sym: name, Type: ir.Ptr})
		g.emit(&ir.Instr{Op: ir.OpStore, Args: []int{addr, v}, Elem: elem})
		return
	}

	g.fn.Locals = append(g.fn.Locals, ir.Local{Name: name, Type: elem})
	g.bindings[sym] = &binding{name: name}
	if s.Value != nil {
		v := g.genExpr(s.Value)
		g.emit(&ir.Instr{Op: ir.OpLocalSet, Sym: name, Args: []int{v}})
	}
}

// genArrayInit fills a freshly declared array slot, either from a literal
// or by copying another array element by element.
func (g *generator) genArrayInit(slotName string, arrType *checker.Type, value ast.Expression) {
	elem := irType(arrType.Inner)

	if lit, ok := value.(*ast.ArrayLit); ok {
		for i, el := range lit.Elements {
			v := g.genExpr(el)
			base := g.emit(&ir.Instr{Op: ir.OpSlotAddr, Sym: slotName, Type: ir.Ptr})
			idx := g.emit(&ir.Instr{Op: ir.OpConst, IntVal: int64(i), Type: ir.I64})
			addr := g.emit(&ir.Instr{Op: ir.OpIndex, Args: []int{base, idx}, Elem: elem, Type: ir.Ptr})
			g.emit(&ir.Instr{Op: ir.OpStore, Args: []int{addr, v}, Elem: elem})
		}
		return
	}

	src := g.genExpr(value) // array expressions evaluate to their base address
	for i := 0; i < arrType.Len; i++ {
		idx := g.emit(&ir.Instr{Op: ir.OpConst, IntVal: int64(i), Type: ir.I64})
		srcAddr := g.emit(&ir.Instr{Op: ir.OpIndex, Args: []int{src, idx}, Elem: elem, Type: ir.Ptr})
		v := g.emit(&ir.Instr{Op: ir.OpLoad, Args: []int{srcAddr}, Type: elem})
		dstBase := g.emit(&ir.Instr{Op: ir.OpSlotAddr, Sym: slotName, Type: ir.Ptr})
		idx2 := g.emit(&ir.Instr{Op: ir.OpConst, IntVal: int64(i), Type: ir.I64})
		dstAddr := g.emit(&ir.Instr{Op: ir.OpIndex, Args: []int{dstBase, idx2}, Elem: elem, Type: ir.Ptr})
		g.emit(&ir.Instr{Op: ir.OpStore, Args: []int{dstAddr, v}, Elem: elem})
	}
}

func (g *generator) genAssign(s *ast.AssignStmt) {
	targetType := g.exprType(s.Target)

	// fast path: value-resident identifier targets use local.get/set
	if ident, ok := s.Target.(*ast.Identifier); ok {
		sym := g.res.Uses[ident]
		if sym == nil {
			g.bail("unresolved assignment target '%s'", ident.Name)
		}
		b := g.bindings[sym]
		if b == nil {
			g.bail("no storage for '%s'", ident.Name)
		}
		if !b.slot {
			g.genLocalAssign(s, b.name, targetType)
			return
		}
	}

	if targetType.Kind == checker.KindArray {
		// element-wise copy between address-backed arrays
		dst := g.genAddr(s.Target)
		src := g.genExpr(s.Value)
		elem := irType(targetType.Inner)
		for i := 0; i < targetType.Len; i++ {
			idx := g.emit(&ir.Instr{Op: ir.OpConst, IntVal: int64(i), Type: ir.I64})
			srcAddr := g.emit(&ir.Instr{Op: ir.OpIndex, Args: []int{src, idx}, Elem: elem, Type: ir.Ptr})
			v := g.emit(&ir.Instr{Op: ir.OpLoad, Args: []int{srcAddr}, Type: elem})
			idx2 := g.emit(&ir.Instr{Op: ir.OpConst, IntVal: int64(i), Type: ir.I64})
			dstAddr := g.emit(&ir.Instr{Op: ir.OpIndex, Args: []int{dst, idx2}, Elem: elem, Type: ir.Ptr})
			g.emit(&ir.Instr{Op: ir.OpStore, Args: []int{dstAddr, v}, Elem: elem})
		}
		return
	}

	elem := irType(targetType)
	addr := g.genAddr(s.Target)

	switch s.Op {
	case lexer.ASSIGN:
		v := g.genExpr(s.Value)
		g.emit(&ir.Instr{Op: ir.OpStore, Args: []int{addr, v}, Elem: elem})
	case lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN:
		old := g.emit(&ir.Instr{Op: ir.OpLoad, Args: []int{addr}, Type: elem})
		v := g.genExpr(s.Value)
		kind := ir.BinAdd
		if s.Op == lexer.MINUS_ASSIGN {
			kind = ir.BinSub
		}
		sum := g.emit(&ir.Instr{Op: ir.OpBin, Bin: kind, Args: []int{old, v}, Type: elem})
		g.emit(&ir.Instr{Op: ir.OpStore, Args: []int{addr, sum}, Elem: elem})
	case lexer.INC, lexer.DEC:
		old := g.emit(&ir.Instr{Op: ir.OpLoad, Args: []int{addr}, Type: elem})
		one := g.emit(&ir.Instr{Op: ir.OpConst, IntVal: 1, Type: elem})
		kind := ir.BinAdd
		if s.Op == lexer.DEC {
			kind = ir.BinSub
		}
		sum := g.emit(&ir.Instr{Op: ir.OpBin, Bin: kind, Args: []int{old, one}, Type: elem})
		g.emit(&ir.Instr{Op: ir.OpStore, Args: []int{addr, sum}, Elem: elem})
	}
}

// genLocalAssign handles assignment to a value-resident local.
func (g *generator) genLocalAssign(s *ast.AssignStmt, name string, targetType *checker.Type) {
	t := irType(targetType)
	switch s.Op {
	case lexer.ASSIGN:
		v := g.genExpr(s.Value)
		g.emit(&ir.Instr{Op: ir.OpLocalSet, Sym: name, Args: []int{v}})
	case lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN:
		old := g.emit(&ir.Instr{Op: ir.OpLocalGet, Sym: name, Type: t})
		v := g.genExpr(s.Value)
		kind := ir.BinAdd
		if s.Op == lexer.MINUS_ASSIGN {
			kind = ir.BinSub
		}
		sum := g.emit(&ir.Instr{Op: ir.OpBin, Bin: kind, Args: []int{old, v}, Type: t})
		g.emit(&ir.Instr{Op: ir.OpLocalSet, Sym: name, Args: []int{sum}})
	case lexer.INC, lexer.DEC:
		old := g.emit(&ir.Instr{Op: ir.OpLocalGet, Sym: name, Type: t})
		one := g.emit(&ir.Instr{Op: ir.OpConst, IntVal: 1, Type: t})
		kind := ir.BinAdd
		if s.Op == lexer.DEC {
			kind = ir.BinSub
		}
		sum := g.emit(&ir.Instr{Op: ir.OpBin, Bin: kind, Args: []int{old, one}, Type: t})
		g.emit(&ir.Instr{Op: ir.OpLocalSet, Sym: name, Args: []int{sum}})
	}
}

func (g *generator) genIf(s *ast.IfStmt) {
	seq := g.labelSeq
	g.labelSeq++
	thenLabel := fmt.Sprintf("if.then.%d", seq)
	elseLabel := fmt.Sprintf("if.else.%d", seq)
	mergeLabel := fmt.Sprintf("if.end.%d", seq)

	cond := g.genExpr(s.Condition)
	if s.Else != nil {
		g.emit(&ir.Instr{Op: ir.OpCondBr, Args: []int{cond}, Then: thenLabel, Else: elseLabel})
	} else {
		g.emit(&ir.Instr{Op: ir.OpCondBr, Args: []int{cond}, Then: thenLabel, Else: mergeLabel})
	}

	g.blk = g.fn.NewBlock(thenLabel)
	g.genStmts(s.Then.Statements)
	if !g.terminated() {
		g.emit(&ir.Instr{Op: ir.OpBr, Target: mergeLabel})
	}

	if s.Else != nil {
		g.blk = g.fn.NewBlock(elseLabel)
		g.genStmt(s.Else)
		if !g.terminated() {
			g.emit(&ir.Instr{Op: ir.OpBr, Target: mergeLabel})
		}
	}

	g.blk = g.fn.NewBlock(mergeLabel)
}

func (g *generator) genWhile(s *ast.WhileStmt) {
	seq := g.labelSeq
	g.labelSeq++
	header := fmt.Sprintf("while.head.%d", seq)
	body := fmt.Sprintf("while.body.%d", seq)
	exit := fmt.Sprintf("while.end.%d", seq)

	g.emit(&ir.Instr{Op: ir.OpBr, Target: header})

	g.blk = g.fn.NewBlock(header)
	cond := g.genExpr(s.Condition)
	g.emit(&ir.Instr{Op: ir.OpCondBr, Args: []int{cond}, Then: body, Else: exit})

	g.blk = g.fn.NewBlock(body)
	g.loops = append(g.loops, exit)
	g.genStmt(s.Body)
	g.loops = g.loops[:len(g.loops)-1]
	if !g.terminated() {
		g.emit(&ir.Instr{Op: ir.OpBr, Target: header})
	}

	g.blk = g.fn.NewBlock(exit)
}

// genForIn lowers `for i in bound` to a counted loop. The bound is
// evaluated once, before the first iteration.
func (g *generator) genForIn(s *ast.ForInStmt) {
	sym := g.res.Defs[s]
	if sym == nil {
		g.bail("no symbol recorded for loop variable '%s'", s.Variable)
	}
	t := irType(sym.Type)

	seq := g.labelSeq
	g.labelSeq++
	header := fmt.Sprintf("for.head.%d", seq)
	body := fmt.Sprintf("for.body.%d", seq)
	exit := fmt.Sprintf("for.end.%d", seq)

	varName := g.uniq(sym.Name)
	boundName := g.uniq("for.bound")
	g.fn.Locals = append(g.fn.Locals,
		ir.Local{Name: varName, Type: t},
		ir.Local{Name: boundName, Type: t})
	g.bindings[sym] = &binding{name: varName}

	bound := g.genExpr(s.Bound)
	g.emit(&ir.Instr{Op: ir.OpLocalSet, Sym: boundName, Args: []int{bound}})
	zero := g.emit(&ir.Instr{Op: ir.OpConst, IntVal: 0, Type: t})
	g.emit(&ir.Instr{Op: ir.OpLocalSet, Sym: varName, Args: []int{zero}})
	g.emit(&ir.Instr{Op: ir.OpBr, Target: header})

	g.blk = g.fn.NewBlock(header)
	cur := g.emit(&ir.Instr{Op: ir.OpLocalGet, Sym: varName, Type: t})
	limit := g.emit(&ir.Instr{Op: ir.OpLocalGet, Sym: boundName, Type: t})
	cond := g.emit(&ir.Instr{Op: ir.OpBin, Bin: ir.BinLt, Args: []int{cur, limit}, Type: ir.Bool})
	g.emit(&ir.Instr{Op: ir.OpCondBr, Args: []int{cond}, Then: body, Else: exit})

	g.blk = g.fn.NewBlock(body)
	g.loops = append(g.loops, exit)
	g.genStmt(s.Body)
	g.loops = g.loops[:len(g.loops)-1]
	if !g.terminated() {
		cur = g.emit(&ir.Instr{Op: ir.OpLocalGet, Sym: varName, Type: t})
		one := g.emit(&ir.Instr{Op: ir.OpConst, IntVal: 1, Type: t})
		next := g.emit(&ir.Instr{Op: ir.OpBin, Bin: ir.BinAdd, Args: []int{cur, one}, Type: t})
		g.emit(&ir.Instr{Op: ir.OpLocalSet, Sym: varName, Args: []int{next}})
		g.emit(&ir.Instr{Op: ir.OpBr, Target: header})
	}

	g.blk = g.fn.NewBlock(exit)
}

// --- Expressions ---

func (g *generator) genExpr(e ast.Expression) int {
	switch ex := e.(type) {
	case *ast.IntLit:
		t := g.exprType(e)
		v, err := strconv.ParseInt(ex.Value, 10, 64)
		if err != nil {
			g.bail("bad integer literal %q", ex.Value)
		}
		return g.emit(&ir.Instr{Op: ir.OpConst, IntVal: v, Type: irType(t)})

	case *ast.BoolLit:
		v := int64(0)
		if ex.Value {
			v = 1
		}
		return g.emit(&ir.Instr{Op: ir.OpConst, IntVal: v, Type: ir.Bool})

	case *ast.StringLit:
		idx := g.mod.Intern(ex.Value)
		return g.emit(&ir.Instr{Op: ir.OpStrConst, StrIdx: idx, Type: ir.Str})

	case *ast.Identifier:
		sym := g.res.Uses[ex]
		if sym == nil {
			g.bail("unresolved identifier '%s'", ex.Name)
		}
		if sym.Kind == checker.SymFunction {
			return g.emit(&ir.Instr{Op: ir.OpFuncConst, Sym: sym.Name, Type: ir.Fn})
		}
		return g.loadSymbol(sym)

	case *ast.BinaryExpr:
		return g.genBinary(ex)

	case *ast.UnaryExpr:
		return g.genUnary(ex)

	case *ast.CallExpr:
		return g.genCall(ex, nil, ex.Args)

	case *ast.MethodCallExpr:
		return g.genCall(ex, ex.Receiver, ex.Args)

	case *ast.BuiltinExpr:
		return g.genBuiltin(ex)

	case *ast.IndexExpr:
		addr := g.genIndexAddr(ex)
		t := irType(g.exprType(e))
		return g.emit(&ir.Instr{Op: ir.OpLoad, Args: []int{addr}, Type: t})

	case *ast.ArrayLit:
		return g.genArrayTemp(ex)

	case *ast.LambdaExpr:
		info := g.res.Lambdas[ex]
		if info == nil {
			g.bail("no signature recorded for lambda")
		}
		g.lambdaQueue = append(g.lambdaQueue, info)
		return g.emit(&ir.Instr{Op: ir.OpFuncConst, Sym: info.Name, Type: ir.Fn})
	}

	line, col := e.Pos()
	g.bail("unexpected expression at %d:%d", line, col)
	return -1
}

// loadSymbol produces the current value of a variable or parameter. Arrays
// evaluate to their base address.
func (g *generator) loadSymbol(sym *checker.Symbol) int {
	b := g.bindings[sym]
	if b == nil {
		g.bail("no storage for '%s'", sym.Name)
	}
	if !b.slot {
		return g.emit(&ir.Instr{Op: ir.OpLocalGet, Sym: b.name, Type: irType(sym.Type)})
	}
	addr := g.emit(&ir.Instr{Op: ir.OpSlotAddr, Sym: b.name, Type: ir.Ptr})
	if sym.Type.Kind == checker.KindArray {
		return addr
	}
	return g.emit(&ir.Instr{Op: ir.OpLoad, Args: []int{addr}, Type: irType(sym.Type)})
}

var binKinds = map[lexer.TokenType]ir.BinKind{
	lexer.PLUS:    ir.BinAdd,
	lexer.MINUS:   ir.BinSub,
	lexer.STAR:    ir.BinMul,
	lexer.SLASH:   ir.BinDiv,
	lexer.PERCENT: ir.BinRem,
	lexer.EQ:      ir.BinEq,
	lexer.NEQ:     ir.BinNe,
	lexer.LT:      ir.BinLt,
	lexer.GT:      ir.BinGt,
	lexer.LEQ:     ir.BinLe,
	lexer.GEQ:     ir.BinGe,
}

func (g *generator) genBinary(e *ast.BinaryExpr) int {
	kind, ok := binKinds[e.Op]
	if !ok {
		g.bail("unexpected binary operator %s", e.Op)
	}
	l := g.genExpr(e.Left)
	r := g.genExpr(e.Right)
	t := irType(g.exprType(e))
	return g.emit(&ir.Instr{Op: ir.OpBin, Bin: kind, Args: []int{l, r}, Type: t})
}

func (g *generator) genUnary(e *ast.UnaryExpr) int {
	switch e.Op {
	case lexer.MINUS:
		t := irType(g.exprType(e))
		if lit, ok := e.Operand.(*ast.IntLit); ok {
			// fold the sign into the constant; the most-negative value of a
			// width has no positive counterpart
			v, err := strconv.ParseInt("-"+lit.Value, 10, 64)
			if err != nil {
				g.bail("bad integer literal -%s", lit.Value)
			}
			return g.emit(&ir.Instr{Op: ir.OpConst, IntVal: v, Type: t})
		}
		v := g.genExpr(e.Operand)
		return g.emit(&ir.Instr{Op: ir.OpUn, Un: ir.UnNeg, Args: []int{v}, Type: t})
	case lexer.BANG:
		v := g.genExpr(e.Operand)
		return g.emit(&ir.Instr{Op: ir.OpUn, Un: ir.UnNot, Args: []int{v}, Type: ir.Bool})
	case lexer.STAR:
		addr := g.genExpr(e.Operand)
		t := irType(g.exprType(e))
		return g.emit(&ir.Instr{Op: ir.OpLoad, Args: []int{addr}, Type: t})
	case lexer.AMP:
		return g.genAddr(e.Operand)
	}
	g.bail("unexpected unary operator %s", e.Op)
	return -1
}

// genAddr produces the address of an lvalue.
func (g *generator) genAddr(e ast.Expression) int {
	switch ex := e.(type) {
	case *ast.Identifier:
		sym := g.res.Uses[ex]
		if sym == nil {
			g.bail("unresolved identifier '%s'", ex.Name)
		}
		b := g.bindings[sym]
		if b == nil || !b.slot {
			g.bail("'%s' is not address-backed", ex.Name)
		}
		return g.emit(&ir.Instr{Op: ir.OpSlotAddr, Sym: b.name, Type: ir.Ptr})
	case *ast.IndexExpr:
		return g.genIndexAddr(ex)
	case *ast.UnaryExpr:
		if ex.Op == lexer.STAR {
			return g.genExpr(ex.Operand) // address of *p is p's value
		}
	}
	line, col := e.Pos()
	g.bail("expression at %d:%d is not addressable", line, col)
	return -1
}

// genIndexAddr computes the element address of an array or pointer index.
func (g *generator) genIndexAddr(e *ast.IndexExpr) int {
	objType := g.exprType(e.Object)
	base := g.genExpr(e.Object) // arrays and pointers both yield an address
	idx := g.genExpr(e.Index)
	elem := irType(objType.Inner)
	return g.emit(&ir.Instr{Op: ir.OpIndex, Args: []int{base, idx}, Elem: elem, Type: ir.Ptr})
}

// genArrayTemp materializes an array literal into an anonymous slot and
// returns its base address.
func (g *generator) genArrayTemp(e *ast.ArrayLit) int {
	t := g.exprType(e)
	name := g.uniq(fmt.Sprintf("arr.%d", g.tempSeq))
	g.tempSeq++
	elem := irType(t.Inner)
	g.fn.Slots = append(g.fn.Slots, ir.Slot{Name: name, Elem: elem, Count: t.Len})
	g.genArrayInit(name, t, e)
	return g.emit(&ir.Instr{Op: ir.OpSlotAddr, Sym: name, Type: ir.Ptr})
}

// genCall lowers user calls, function-value calls, and the free-function
// builtins. recv is non-nil for method sugar and becomes the first argument.
func (g *generator) genCall(node ast.Expression, recv ast.Expression, args []ast.Expression) int {
	info := g.res.Calls[node]
	if info == nil {
		line, col := node.Pos()
		g.bail("unresolved call at %d:%d", line, col)
	}

	effective := args
	if recv != nil {
		effective = append([]ast.Expression{recv}, args...)
	}

	switch info.Kind {
	case checker.CallUser:
		vals := make([]int, len(effective))
		for i, a := range effective {
			vals[i] = g.genExpr(a)
		}
		ret := irType(info.Func.Type.Return)
		return g.emit(&ir.Instr{Op: ir.OpCall, Sym: info.Func.Name, Args: vals, Type: ret})

	case checker.CallFuncValue:
		callee := g.loadSymbol(info.Sym)
		vals := []int{callee}
		for _, a := range effective {
			vals = append(vals, g.genExpr(a))
		}
		ret := irType(info.Sym.Type.Return)
		return g.emit(&ir.Instr{Op: ir.OpCallIndirect, Args: vals, Type: ret})

	case checker.CallPrint:
		return g.genPrint(effective)

	case checker.CallConcat:
		l := g.genExpr(effective[0])
		r := g.genExpr(effective[1])
		return g.emit(&ir.Instr{Op: ir.OpConcat, Args: []int{l, r}, Type: ir.Str})

	case checker.CallLen:
		t := g.exprType(effective[0])
		if t.Kind == checker.KindArray {
			g.genExpr(effective[0]) // evaluate for effect
			return g.emit(&ir.Instr{Op: ir.OpConst, IntVal: int64(t.Len), Type: ir.I64})
		}
		v := g.genExpr(effective[0])
		return g.emit(&ir.Instr{Op: ir.OpStrLen, Args: []int{v}, Type: ir.I64})
	}

	g.bail("unexpected call kind %d", info.Kind)
	return -1
}

// genPrint builds the format string from the static argument types and
// emits one print instruction. Bool arguments are rendered through their
// string form.
func (g *generator) genPrint(args []ast.Expression) int {
	format := ""
	vals := make([]int, 0, len(args))

	for i, a := range args {
		if i > 0 {
			format += " "
		}
		t := g.exprType(a)
		v := g.genExpr(a)
		switch {
		case t.IsInt():
			format += "%d"
			vals = append(vals, v)
		case t.Kind == checker.KindBool:
			format += "%s"
			s := g.emit(&ir.Instr{Op: ir.OpBoolToStr, Args: []int{v}, Type: ir.Str})
			vals = append(vals, s)
		default:
			format += "%s"
			vals = append(vals, v)
		}
	}
	format += "\n"

	idx := g.mod.Intern(format)
	g.emit(&ir.Instr{Op: ir.OpPrint, StrIdx: idx, Args: vals})
	return -1
}

func (g *generator) genBuiltin(e *ast.BuiltinExpr) int {
	switch e.Kind {
	case ast.BuiltinTypeOf:
		// the receiver is not evaluated: the result is the static type name
		t := g.exprType(e.Receiver)
		idx := g.mod.Intern(t.String())
		return g.emit(&ir.Instr{Op: ir.OpStrConst, StrIdx: idx, Type: ir.Str})

	case ast.BuiltinToInt:
		v := g.genExpr(e.Receiver)
		from := irType(g.exprType(e.Receiver))
		to := ir.IntType(e.Width)
		if from == to {
			return v
		}
		return g.emit(&ir.Instr{Op: ir.OpConvert, Args: []int{v}, Type: to})

	case ast.BuiltinToStr:
		v := g.genExpr(e.Receiver)
		t := g.exprType(e.Receiver)
		if t.Kind == checker.KindBool {
			return g.emit(&ir.Instr{Op: ir.OpBoolToStr, Args: []int{v}, Type: ir.Str})
		}
		return g.emit(&ir.Instr{Op: ir.OpIntToStr, Args: []int{v}, Type: ir.Str})
	}

	g.bail("unexpected builtin kind %d", e.Kind)
	return -1
}
