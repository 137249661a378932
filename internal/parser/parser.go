package parser

import (
	"github.com/tpl-lang/tplc/internal/ast"
	"github.com/tpl-lang/tplc/internal/diagnostic"
	"github.com/tpl-lang/tplc/internal/lexer"
)

// New creates a new parser for the given source text
func New(source string) *Parser {
	l := lexer.New(source)
	tokens := l.Tokenize()
	return &Parser{
		tokens:   tokens,
		pos:      0,
		diags:    diagnostic.New(diagnostic.StageParse),
		lexDiags: l.Diagnostics(),
	}
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// LexerDiagnostics returns the diagnostics collected while tokenizing
func (p *Parser) LexerDiagnostics() *diagnostic.Diagnostics {
	return p.lexDiags
}

// Parse parses the token stream into a Program AST
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}

	for !p.check(lexer.EOF) {
		startPos := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.pos == startPos {
			p.advance() // ensure forward progress to avoid infinite loop
			p.synchronize()
		}
	}
	return prog
}

// parseStatement parses a single statement. Every statement is terminated
// by a semicolon, including the closing brace of if/while/for/define bodies.
func (p *Parser) parseStatement() ast.Statement {
	switch p.current().Type {
	case lexer.DEFINE:
		fn := p.parseFunctionDecl()
		p.expect(lexer.SEMICOLON)
		return fn
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.IF:
		stmt := p.parseIfStmt()
		p.expect(lexer.SEMICOLON)
		return stmt
	case lexer.WHILE:
		stmt := p.parseWhileStmt()
		p.expect(lexer.SEMICOLON)
		return stmt
	case lexer.FOR:
		stmt := p.parseForStmt()
		p.expect(lexer.SEMICOLON)
		return stmt
	case lexer.BREAK:
		tok := p.advance()
		p.expect(lexer.SEMICOLON)
		return &ast.BreakStmt{Line: tok.Line, Column: tok.Column}
	case lexer.ILLEGAL:
		// the lexer already reported it
		p.advance()
		return nil
	default:
		if lexer.IsTypeKeyword(p.current().Type) {
			return p.parseDeclStmt()
		}
		return p.parseExprStmtOrAssign()
	}
}

// parseDeclStmt parses: <type> <name> [= <expr>];
func (p *Parser) parseDeclStmt() ast.Statement {
	typeRef := p.parseTypeRef()
	name := p.expect(lexer.IDENT)

	var value ast.Expression
	if p.match(lexer.ASSIGN) {
		value = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON)

	return &ast.DeclStmt{
		Name:   name.Literal,
		Type:   typeRef,
		Value:  value,
		Line:   typeRef.Line,
		Column: typeRef.Column,
	}
}

// parseTypeRef parses a type reference: a base type name, `auto`, `fn<T>`,
// or a base followed by any mix of `*` and `[N]` suffixes.
func (p *Parser) parseTypeRef() *ast.TypeRef {
	tok := p.current()

	var ref *ast.TypeRef
	switch tok.Type {
	case lexer.AUTO:
		p.advance()
		ref = &ast.TypeRef{Kind: ast.TypeAuto, Line: tok.Line, Column: tok.Column}
	case lexer.FN:
		p.advance()
		p.expect(lexer.LT)
		ret := p.parseTypeRef()
		p.expect(lexer.GT)
		ref = &ast.TypeRef{Kind: ast.TypeFunc, Return: ret, Line: tok.Line, Column: tok.Column}
	case lexer.INT8_TYPE, lexer.INT16_TYPE, lexer.INT32_TYPE,
		lexer.INT64_TYPE, lexer.INT128_TYPE,
		lexer.BOOL_TYPE, lexer.STR_TYPE, lexer.VOID_TYPE:
		p.advance()
		ref = &ast.TypeRef{Kind: ast.TypeNamed, Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	default:
		p.diags.Errorf(diagnostic.UnexpectedToken, tok.Line, tok.Column,
			"expected a type, got %s", tok.Type)
		p.advance()
		return &ast.TypeRef{Kind: ast.TypeNamed, Name: "void", Line: tok.Line, Column: tok.Column}
	}

	// pointer and array suffixes nest arbitrarily: int32*, int32[3], int32*[4]
	for {
		if p.check(lexer.STAR) {
			star := p.advance()
			ref = &ast.TypeRef{Kind: ast.TypePointer, Inner: ref, Line: star.Line, Column: star.Column}
		} else if p.check(lexer.LBRACKET) {
			br := p.advance()
			lenTok := p.expect(lexer.INT_LIT)
			p.expect(lexer.RBRACKET)
			ref = &ast.TypeRef{Kind: ast.TypeArray, Inner: ref, Len: lenTok.Literal, Line: br.Line, Column: br.Column}
		} else {
			break
		}
	}
	return ref
}

// parseFunctionDecl parses: define <ret> <name>(<params>) { ... }
func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	tok := p.expect(lexer.DEFINE)
	retType := p.parseTypeRef()
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LPAREN)
	params := p.parseParamList()
	p.expect(lexer.RPAREN)
	body := p.parseBlock()

	return &ast.FunctionDecl{
		Name:       name.Literal,
		Params:     params,
		ReturnType: retType,
		Body:       body,
		Line:       tok.Line,
		Column:     tok.Column,
	}
}

// parseParamList parses a comma-separated list of `<type> <name>` pairs
func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	if p.check(lexer.RPAREN) {
		return params
	}

	for {
		typeRef := p.parseTypeRef()
		name := p.expect(lexer.IDENT)
		params = append(params, &ast.Param{
			Name:   name.Literal,
			Type:   typeRef,
			Line:   typeRef.Line,
			Column: typeRef.Column,
		})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return params
}

// parseBlock parses: { statement* }
func (p *Parser) parseBlock() *ast.Block {
	tok := p.expect(lexer.LBRACE)
	block := &ast.Block{Line: tok.Line, Column: tok.Column}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		startPos := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.pos == startPos {
			p.advance()
			p.synchronize()
		}
	}
	p.expect(lexer.RBRACE)
	return block
}

// parseReturnStmt parses: return [expr];
func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	tok := p.expect(lexer.RETURN)
	var value ast.Expression
	if !p.check(lexer.SEMICOLON) {
		value = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON)

	return &ast.ReturnStmt{
		Value:  value,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// parseIfStmt parses: if <expr> { ... } [else { ... } | else if ...]
// The trailing semicolon belongs to the caller.
func (p *Parser) parseIfStmt() *ast.IfStmt {
	tok := p.expect(lexer.IF)
	condition := p.parseExpression()
	then := p.parseBlock()

	var elseStmt ast.Statement
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			elseStmt = p.parseIfStmt()
		} else {
			elseStmt = p.parseBlock()
		}
	}

	return &ast.IfStmt{
		Condition: condition,
		Then:      then,
		Else:      elseStmt,
		Line:      tok.Line,
		Column:    tok.Column,
	}
}

// parseWhileStmt parses: while <expr> { ... }
func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	tok := p.expect(lexer.WHILE)
	condition := p.parseExpression()
	body := p.parseBlock()

	return &ast.WhileStmt{
		Condition: condition,
		Body:      body,
		Line:      tok.Line,
		Column:    tok.Column,
	}
}

// parseForStmt parses: for <variable> in <bound> { ... }
func (p *Parser) parseForStmt() *ast.ForInStmt {
	tok := p.expect(lexer.FOR)
	varName := p.expect(lexer.IDENT)
	p.expect(lexer.IN)
	bound := p.parseExpression()
	body := p.parseBlock()

	return &ast.ForInStmt{
		Variable: varName.Literal,
		Bound:    bound,
		Body:     body,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

// parseExprStmtOrAssign parses an expression statement or assignment
func (p *Parser) parseExprStmtOrAssign() ast.Statement {
	tok := p.current()
	expr := p.parseExpression()

	switch p.current().Type {
	case lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN:
		op := p.advance()
		value := p.parseExpression()
		p.expect(lexer.SEMICOLON)
		return &ast.AssignStmt{
			Target: expr,
			Op:     op.Type,
			Value:  value,
			Line:   tok.Line,
			Column: tok.Column,
		}
	case lexer.INC, lexer.DEC:
		op := p.advance()
		p.expect(lexer.SEMICOLON)
		return &ast.AssignStmt{
			Target: expr,
			Op:     op.Type,
			Line:   tok.Line,
			Column: tok.Column,
		}
	}

	p.expect(lexer.SEMICOLON)
	return &ast.ExprStmt{
		Expr:   expr,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// Expression parsing - precedence climbing

// Precedence levels (lowest to highest):
// 1. == != < > <= >=   (left-associative)
// 2. + -               (left-associative)
// 3. * / %             (left-associative)
// 4. unary (& * - !)
// 5. postfix (call, index, .name(...), .type(), .to_intN(), .to_str())

const (
	precNone    = 0
	precCompare = 1
	precAdd     = 2
	precMul     = 3
)

func tokenPrecedence(tt lexer.TokenType) int {
	switch tt {
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return precCompare
	case lexer.PLUS, lexer.MINUS:
		return precAdd
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return precMul
	default:
		return precNone
	}
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parsePrecedence(precCompare)
}

func (p *Parser) parsePrecedence(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		prec := tokenPrecedence(p.current().Type)
		if prec < minPrec {
			break
		}

		op := p.advance()
		right := p.parsePrecedence(prec + 1)
		left = &ast.BinaryExpr{
			Left:   left,
			Op:     op.Type,
			Right:  right,
			Line:   op.Line,
			Column: op.Column,
		}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.current().Type {
	case lexer.AMP, lexer.STAR, lexer.MINUS, lexer.BANG:
		op := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{
			Op:      op.Type,
			Operand: operand,
			Line:    op.Line,
			Column:  op.Column,
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	line, col := expr.Pos()

	for {
		if p.check(lexer.LBRACKET) {
			// Index access: expr[index]
			p.advance()
			index := p.parseExpression()
			p.expect(lexer.RBRACKET)
			expr = &ast.IndexExpr{
				Object: expr,
				Index:  index,
				Line:   line,
				Column: col,
			}
		} else if p.check(lexer.DOT) {
			p.advance()
			name := p.expect(lexer.IDENT)
			p.expect(lexer.LPAREN)

			// builtins with receiver-dependent result types get dedicated nodes
			if kind, width, ok := builtinFor(name.Literal); ok {
				p.expect(lexer.RPAREN)
				expr = &ast.BuiltinExpr{
					Receiver: expr,
					Kind:     kind,
					Width:    width,
					Line:     name.Line,
					Column:   name.Column,
				}
				continue
			}

			args := p.parseArgList()
			p.expect(lexer.RPAREN)
			expr = &ast.MethodCallExpr{
				Receiver: expr,
				Method:   name.Literal,
				Args:     args,
				Line:     name.Line,
				Column:   name.Column,
			}
		} else if p.check(lexer.LPAREN) {
			// function call - only valid if expr is an identifier
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				break
			}
			p.advance()
			args := p.parseArgList()
			p.expect(lexer.RPAREN)
			expr = &ast.CallExpr{
				Function: ident.Name,
				Args:     args,
				Line:     ident.Line,
				Column:   ident.Column,
			}
		} else {
			break
		}
	}

	return expr
}

// builtinFor maps a sugar method name to its builtin kind.
func builtinFor(name string) (ast.BuiltinKind, int, bool) {
	switch name {
	case "type":
		return ast.BuiltinTypeOf, 0, true
	case "to_str":
		return ast.BuiltinToStr, 0, true
	case "to_int8":
		return ast.BuiltinToInt, 8, true
	case "to_int16":
		return ast.BuiltinToInt, 16, true
	case "to_int32":
		return ast.BuiltinToInt, 32, true
	case "to_int64":
		return ast.BuiltinToInt, 64, true
	case "to_int128":
		return ast.BuiltinToInt, 128, true
	}
	return 0, 0, false
}

// parseArgList parses a comma-separated expression list (possibly empty)
func (p *Parser) parseArgList() []ast.Expression {
	var args []ast.Expression
	if p.check(lexer.RPAREN) {
		return args
	}
	for {
		args = append(args, p.parseExpression())
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()

	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		return &ast.IntLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.STRING_LIT:
		p.advance()
		return &ast.StringLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Line: tok.Line, Column: tok.Column}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Line: tok.Line, Column: tok.Column}
	case lexer.IDENT:
		p.advance()
		return &ast.Identifier{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN)
		return expr
	case lexer.LBRACKET:
		return p.parseArrayLit()
	case lexer.DEFINE:
		return p.parseLambda()
	default:
		if tok.Type == lexer.EOF {
			p.diags.Errorf(diagnostic.UnexpectedEOF, tok.Line, tok.Column,
				"expected an expression, got end of input")
		} else {
			p.diags.Errorf(diagnostic.UnexpectedToken, tok.Line, tok.Column,
				"expected an expression, got %s", tok.Type)
			p.advance()
		}
		return &ast.IntLit{Value: "0", Line: tok.Line, Column: tok.Column}
	}
}

// parseArrayLit parses: [expr, expr, ...]
func (p *Parser) parseArrayLit() *ast.ArrayLit {
	tok := p.expect(lexer.LBRACKET)
	lit := &ast.ArrayLit{Line: tok.Line, Column: tok.Column}

	if p.match(lexer.RBRACKET) {
		return lit
	}
	for {
		lit.Elements = append(lit.Elements, p.parseExpression())
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return lit
}

// parseLambda parses an anonymous function value:
// define <ret> (<params>) { ... }
func (p *Parser) parseLambda() *ast.LambdaExpr {
	tok := p.expect(lexer.DEFINE)
	retType := p.parseTypeRef()
	p.expect(lexer.LPAREN)
	params := p.parseParamList()
	p.expect(lexer.RPAREN)
	body := p.parseBlock()

	return &ast.LambdaExpr{
		Params:     params,
		ReturnType: retType,
		Body:       body,
		Line:       tok.Line,
		Column:     tok.Column,
	}
}
