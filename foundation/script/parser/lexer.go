// File: lexer.go
// Title: Lexical Analyzer (Tokenizer)
// Description: Converts one source line into a stream of typed tokens with
//              position information. Whitespace is discarded; characters
//              that start no token are skipped, or reported as illegal
//              tokens in strict mode.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial lexer implementation
// - 2025-03-02 v0.2.0: calcscript token set, operator runs, lexical gaps

package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	TokenNumber     // 42
	TokenIdentifier // x, print, total_1
	TokenOperator   // + - * / and any run of + - * / % ! = < > & |
	TokenParen      // ( ) { }
	TokenSemicolon  // ;
)

// Token represents a lexical token with position information
type Token struct {
	Type     TokenType // Token type
	Value    string    // Token text
	Position int       // Byte position in input
	Line     int       // Line number (1-based)
	Column   int       // Column number (1-based, in characters)
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s(%s)", t.Type, t.Value)
}

// Is reports whether the token has the given type and text
func (t Token) Is(tt TokenType, value string) bool {
	return t.Type == tt && t.Value == value
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenNumber:
		return "NUMBER"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenOperator:
		return "OPERATOR"
	case TokenParen:
		return "PAREN"
	case TokenSemicolon:
		return "SEMICOLON"
	default:
		return "UNKNOWN"
	}
}

// Gap is a character that matched no token pattern
type Gap struct {
	Char   rune
	Line   int
	Column int
}

// Lexer performs lexical analysis of calcscript source
type Lexer struct {
	input  string
	pos    int // byte offset of the next character
	line   int
	column int
	strict bool
	gaps   []Gap
}

// NewLexer creates a lexer positioned at line 1, column 1
func NewLexer(input string) *Lexer {
	return NewLexerAt(input, 1)
}

// NewLexerAt creates a lexer whose first character is on the given line
func NewLexerAt(input string, line int) *Lexer {
	return &Lexer{input: input, line: line, column: 1}
}

// SetStrict makes unmatched characters produce TokenIllegal instead of
// being skipped
func (l *Lexer) SetStrict(strict bool) {
	l.strict = strict
}

// Gaps returns the characters skipped so far
func (l *Lexer) Gaps() []Gap {
	return l.gaps
}

// NextToken returns the next token. At end of input it keeps returning
// TokenEOF.
func (l *Lexer) NextToken() Token {
	for l.pos < len(l.input) {
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		start := Token{Position: l.pos, Line: l.line, Column: l.column}

		switch {
		case isDigit(r):
			return l.readRun(start, TokenNumber, isDigit)

		case isIdentStart(r):
			return l.readRun(start, TokenIdentifier, isIdentPart)

		case isOperatorChar(r):
			return l.readRun(start, TokenOperator, isOperatorChar)

		case r == '(' || r == ')' || r == '{' || r == '}':
			l.advance()
			start.Type, start.Value = TokenParen, string(r)
			return start

		case r == ';':
			l.advance()
			start.Type, start.Value = TokenSemicolon, ";"
			return start

		case unicode.IsSpace(r):
			l.advance()

		default:
			l.advance()
			l.gaps = append(l.gaps, Gap{Char: r, Line: start.Line, Column: start.Column})
			if l.strict {
				start.Type, start.Value = TokenIllegal, string(r)
				return start
			}
		}
	}

	return Token{Type: TokenEOF, Position: l.pos, Line: l.line, Column: l.column}
}

// readRun consumes the longest run of characters accepted by match
func (l *Lexer) readRun(tok Token, tt TokenType, match func(rune) bool) Token {
	for l.pos < len(l.input) {
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		if !match(r) {
			break
		}
		l.advance()
	}
	tok.Type = tt
	tok.Value = l.input[tok.Position:l.pos]
	return tok
}

// advance moves past one character, tracking line and column
func (l *Lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.column = 1
		return
	}
	l.column++
}

// Tokenize converts source into tokens, discarding whitespace and
// skipping characters that start no token. The EOF token is not included.
func Tokenize(source string) ([]Token, error) {
	return tokenize(NewLexer(source))
}

// TokenizeStrict is like Tokenize but fails on the first unmatched
// character with a LEXICAL fault
func TokenizeStrict(source string) ([]Token, error) {
	l := NewLexer(source)
	l.SetStrict(true)
	return tokenize(l)
}

func tokenize(l *Lexer) ([]Token, error) {
	var tokens []Token
	for {
		tok := l.NextToken()
		switch tok.Type {
		case TokenEOF:
			return tokens, nil
		case TokenIllegal:
			return nil, lexicalFault(tok)
		}
		tokens = append(tokens, tok)
	}
}

func lexicalFault(tok Token) *mdwerror.Error {
	return mdwerror.Newf("unexpected character %q", tok.Value).
		WithCode(mdwerror.CodeLexical).
		WithOperation("lexer.NextToken").
		WithDetails(map[string]interface{}{
			"line":   tok.Line,
			"column": tok.Column,
			"token":  tok.Value,
		})
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isOperatorChar(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '%', '!', '=', '<', '>', '&', '|':
		return true
	}
	return false
}
