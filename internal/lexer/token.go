package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT      // x, y, myVariable
	INT_LIT    // 123, 10_000
	STRING_LIT // "hello"

	// Type keywords
	INT8_TYPE
	INT16_TYPE
	INT32_TYPE
	INT64_TYPE
	INT128_TYPE
	BOOL_TYPE
	STR_TYPE
	VOID_TYPE
	AUTO
	FN

	// Keywords
	DEFINE
	RETURN
	IF
	ELSE
	WHILE
	FOR
	IN
	BREAK
	TRUE
	FALSE

	// Operators
	PLUS         // +
	MINUS        // -
	STAR         // * (multiply or deref, disambiguated by the parser)
	SLASH        // /
	PERCENT      // %
	ASSIGN       // =
	EQ           // ==
	NEQ          // !=
	LT           // < (also opens fn<T>)
	GT           // >
	LEQ          // <=
	GEQ          // >=
	PLUS_ASSIGN  // +=
	MINUS_ASSIGN // -=
	INC          // ++
	DEC          // --
	AMP          // &
	BANG         // !

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	SEMICOLON // ;
	DOT       // .
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case IDENT:
		return "IDENT"
	case INT_LIT:
		return "INT_LIT"
	case STRING_LIT:
		return "STRING_LIT"
	case INT8_TYPE:
		return "INT8"
	case INT16_TYPE:
		return "INT16"
	case INT32_TYPE:
		return "INT32"
	case INT64_TYPE:
		return "INT64"
	case INT128_TYPE:
		return "INT128"
	case BOOL_TYPE:
		return "BOOL"
	case STR_TYPE:
		return "STR"
	case VOID_TYPE:
		return "VOID"
	case AUTO:
		return "AUTO"
	case FN:
		return "FN"
	case DEFINE:
		return "DEFINE"
	case RETURN:
		return "RETURN"
	case IF:
		return "IF"
	case ELSE:
		return "ELSE"
	case WHILE:
		return "WHILE"
	case FOR:
		return "FOR"
	case IN:
		return "IN"
	case BREAK:
		return "BREAK"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case STAR:
		return "STAR"
	case SLASH:
		return "SLASH"
	case PERCENT:
		return "PERCENT"
	case ASSIGN:
		return "ASSIGN"
	case EQ:
		return "EQ"
	case NEQ:
		return "NEQ"
	case LT:
		return "LT"
	case GT:
		return "GT"
	case LEQ:
		return "LEQ"
	case GEQ:
		return "GEQ"
	case PLUS_ASSIGN:
		return "PLUS_ASSIGN"
	case MINUS_ASSIGN:
		return "MINUS_ASSIGN"
	case INC:
		return "INC"
	case DEC:
		return "DEC"
	case AMP:
		return "AMP"
	case BANG:
		return "BANG"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case COMMA:
		return "COMMA"
	case SEMICOLON:
		return "SEMICOLON"
	case DOT:
		return "DOT"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// keywords maps keyword strings to their token types
var keywords = map[string]TokenType{
	"int8":   INT8_TYPE,
	"int16":  INT16_TYPE,
	"int32":  INT32_TYPE,
	"int64":  INT64_TYPE,
	"int128": INT128_TYPE,
	"bool":   BOOL_TYPE,
	"str":    STR_TYPE,
	"void":   VOID_TYPE,
	"auto":   AUTO,
	"fn":     FN,
	"define": DEFINE,
	"return": RETURN,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"in":     IN,
	"break":  BREAK,
	"true":   TRUE,
	"false":  FALSE,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsTypeKeyword reports whether the token type starts a type reference.
func IsTypeKeyword(tt TokenType) bool {
	switch tt {
	case INT8_TYPE, INT16_TYPE, INT32_TYPE, INT64_TYPE, INT128_TYPE,
		BOOL_TYPE, STR_TYPE, VOID_TYPE, AUTO, FN:
		return true
	}
	return false
}
