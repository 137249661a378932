package lexer

import (
	"github.com/tpl-lang/tplc/internal/diagnostic"
)

// Lexer scans TPL source code and produces tokens
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number
	diags        *diagnostic.Diagnostics
}

// New creates a new Lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
		diags:  diagnostic.New(diagnostic.StageLex),
	}
	l.readChar()
	return l
}

// Diagnostics returns the lexer's diagnostics
func (l *Lexer) Diagnostics() *diagnostic.Diagnostics {
	return l.diags
}

// readChar reads the next character and advances the position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII code for NUL
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing the position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

// skipLineComment skips a single-line comment (//)
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a decimal integer literal. Underscores are permitted as
// digit separators (10_000) and stripped from the literal. A trailing
// identifier character makes the whole literal malformed.
func (l *Lexer) readNumber() (string, bool) {
	position := l.position
	digits := make([]byte, 0, 8)
	for isDigit(l.ch) || l.ch == '_' {
		if l.ch != '_' {
			digits = append(digits, l.ch)
		}
		l.readChar()
	}
	if isLetter(l.ch) {
		// consume the rest of the malformed literal so lexing can continue
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return l.input[position:l.position], false
	}
	return string(digits), true
}

// readString reads a string literal with escape handling.
// The opening quote has already been consumed. Returns the decoded contents
// and false if the string was broken by a newline or EOF; the current
// character is left on the break so the caller can decide whether lexing
// resumes.
func (l *Lexer) readString() (string, bool) {
	result := make([]byte, 0, 16)

	for {
		l.readChar()
		if l.ch == 0 || l.ch == '\n' {
			return string(result), false
		}
		if l.ch == '"' {
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 || l.ch == '\n' {
				return string(result), false
			}
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			default:
				// unknown escape, keep the backslash
				result = append(result, '\\', l.ch)
			}
		} else {
			result = append(result, l.ch)
		}
	}

	return string(result), true
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: EQ, Literal: "==", Line: tok.Line, Column: tok.Column}
		} else {
			tok = Token{Type: ASSIGN, Literal: "=", Line: tok.Line, Column: tok.Column}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: NEQ, Literal: "!=", Line: tok.Line, Column: tok.Column}
		} else {
			tok = Token{Type: BANG, Literal: "!", Line: tok.Line, Column: tok.Column}
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: LEQ, Literal: "<=", Line: tok.Line, Column: tok.Column}
		} else {
			tok = Token{Type: LT, Literal: "<", Line: tok.Line, Column: tok.Column}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: GEQ, Literal: ">=", Line: tok.Line, Column: tok.Column}
		} else {
			tok = Token{Type: GT, Literal: ">", Line: tok.Line, Column: tok.Column}
		}
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: PLUS_ASSIGN, Literal: "+=", Line: tok.Line, Column: tok.Column}
		} else if l.peekChar() == '+' {
			l.readChar()
			tok = Token{Type: INC, Literal: "++", Line: tok.Line, Column: tok.Column}
		} else {
			tok = Token{Type: PLUS, Literal: "+", Line: tok.Line, Column: tok.Column}
		}
	case '-':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: MINUS_ASSIGN, Literal: "-=", Line: tok.Line, Column: tok.Column}
		} else if l.peekChar() == '-' {
			l.readChar()
			tok = Token{Type: DEC, Literal: "--", Line: tok.Line, Column: tok.Column}
		} else {
			tok = Token{Type: MINUS, Literal: "-", Line: tok.Line, Column: tok.Column}
		}
	case '*':
		tok = Token{Type: STAR, Literal: "*", Line: tok.Line, Column: tok.Column}
	case '/':
		if l.peekChar() == '/' {
			l.skipLineComment()
			return l.NextToken()
		}
		tok = Token{Type: SLASH, Literal: "/", Line: tok.Line, Column: tok.Column}
	case '%':
		tok = Token{Type: PERCENT, Literal: "%", Line: tok.Line, Column: tok.Column}
	case '&':
		tok = Token{Type: AMP, Literal: "&", Line: tok.Line, Column: tok.Column}
	case '(':
		tok = Token{Type: LPAREN, Literal: "(", Line: tok.Line, Column: tok.Column}
	case ')':
		tok = Token{Type: RPAREN, Literal: ")", Line: tok.Line, Column: tok.Column}
	case '{':
		tok = Token{Type: LBRACE, Literal: "{", Line: tok.Line, Column: tok.Column}
	case '}':
		tok = Token{Type: RBRACE, Literal: "}", Line: tok.Line, Column: tok.Column}
	case '[':
		tok = Token{Type: LBRACKET, Literal: "[", Line: tok.Line, Column: tok.Column}
	case ']':
		tok = Token{Type: RBRACKET, Literal: "]", Line: tok.Line, Column: tok.Column}
	case ',':
		tok = Token{Type: COMMA, Literal: ",", Line: tok.Line, Column: tok.Column}
	case ';':
		tok = Token{Type: SEMICOLON, Literal: ";", Line: tok.Line, Column: tok.Column}
	case '.':
		tok = Token{Type: DOT, Literal: ".", Line: tok.Line, Column: tok.Column}
	case '"':
		str, ok := l.readString()
		if !ok {
			l.diags.Errorf(diagnostic.UnterminatedString, tok.Line, tok.Column,
				"string literal is not terminated")
			if l.ch == 0 {
				// nothing left to resynchronize against
				return Token{Type: EOF, Literal: "", Line: tok.Line, Column: tok.Column}
			}
			// broken by a newline: resume lexing on the next line
			return Token{Type: ILLEGAL, Literal: str, Line: tok.Line, Column: tok.Column}
		}
		tok = Token{Type: STRING_LIT, Literal: str, Line: tok.Line, Column: tok.Column}
	case 0:
		tok = Token{Type: EOF, Literal: "", Line: tok.Line, Column: tok.Column}
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			tokenType := LookupIdent(ident)
			return Token{Type: tokenType, Literal: ident, Line: tok.Line, Column: tok.Column}
		} else if isDigit(l.ch) {
			literal, ok := l.readNumber()
			if !ok {
				l.diags.Errorf(diagnostic.MalformedNumber, tok.Line, tok.Column,
					"malformed number literal %q", literal)
				return Token{Type: ILLEGAL, Literal: literal, Line: tok.Line, Column: tok.Column}
			}
			return Token{Type: INT_LIT, Literal: literal, Line: tok.Line, Column: tok.Column}
		}
		l.diags.Errorf(diagnostic.InvalidCharacter, tok.Line, tok.Column,
			"invalid character %q", string(l.ch))
		tok = Token{Type: ILLEGAL, Literal: string(l.ch), Line: tok.Line, Column: tok.Column}
	}

	l.readChar()
	return tok
}

// Tokenize returns all tokens from the input, terminated by EOF.
// Recoverable errors are recorded in Diagnostics and scanning continues.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens
}

// Helper functions

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
