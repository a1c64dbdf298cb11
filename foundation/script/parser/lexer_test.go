// File: lexer_test.go
// Title: Lexer Unit Tests
// Description: Tests for token classification, operator runs, positions and
//              handling of unmatched characters.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial lexer test suite
// - 2025-03-02 v0.2.0: calcscript token set

package parser

import (
	"testing"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		types  []TokenType
		values []string
	}{
		{
			name:   "assignment",
			input:  "x = 5;",
			types:  []TokenType{TokenIdentifier, TokenOperator, TokenNumber, TokenSemicolon},
			values: []string{"x", "=", "5", ";"},
		},
		{
			name:   "print call",
			input:  "print((2 + 3) * 4);",
			types:  []TokenType{TokenIdentifier, TokenParen, TokenParen, TokenNumber, TokenOperator, TokenNumber, TokenParen, TokenOperator, TokenNumber, TokenParen, TokenSemicolon},
			values: []string{"print", "(", "(", "2", "+", "3", ")", "*", "4", ")", ";"},
		},
		{
			name:   "comparison operators are single tokens",
			input:  "a==b!=c<=d>=e",
			types:  []TokenType{TokenIdentifier, TokenOperator, TokenIdentifier, TokenOperator, TokenIdentifier, TokenOperator, TokenIdentifier, TokenOperator, TokenIdentifier},
			values: []string{"a", "==", "b", "!=", "c", "<=", "d", ">=", "e"},
		},
		{
			name:   "operator runs are greedy",
			input:  "1 +- 2",
			types:  []TokenType{TokenNumber, TokenOperator, TokenNumber},
			values: []string{"1", "+-", "2"},
		},
		{
			name:   "number then identifier",
			input:  "12ab_3",
			types:  []TokenType{TokenNumber, TokenIdentifier},
			values: []string{"12", "ab_3"},
		},
		{
			name:   "braces",
			input:  "{}",
			types:  []TokenType{TokenParen, TokenParen},
			values: []string{"{", "}"},
		},
		{
			name:   "unmatched characters are skipped",
			input:  "print(2#);",
			types:  []TokenType{TokenIdentifier, TokenParen, TokenNumber, TokenParen, TokenSemicolon},
			values: []string{"print", "(", "2", ")", ";"},
		},
		{
			name:   "whitespace only",
			input:  " \t\r\n ",
			types:  nil,
			values: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if len(tokens) != len(tt.types) {
				t.Fatalf("Tokenize() returned %d tokens %v, want %d", len(tokens), tokens, len(tt.types))
			}
			for i, tok := range tokens {
				if tok.Type != tt.types[i] {
					t.Errorf("token %d type = %v, want %v", i, tok.Type, tt.types[i])
				}
				if tok.Value != tt.values[i] {
					t.Errorf("token %d value = %q, want %q", i, tok.Value, tt.values[i])
				}
			}
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	l := NewLexer("x = 10\n  print(x)")

	want := []struct {
		value        string
		line, column int
	}{
		{"x", 1, 1},
		{"=", 1, 3},
		{"10", 1, 5},
		{"print", 2, 3},
		{"(", 2, 8},
		{"x", 2, 9},
		{")", 2, 10},
	}

	for _, w := range want {
		tok := l.NextToken()
		if tok.Value != w.value || tok.Line != w.line || tok.Column != w.column {
			t.Errorf("got %s at %d:%d, want %s at %d:%d", tok, tok.Line, tok.Column, w.value, w.line, w.column)
		}
	}

	if tok := l.NextToken(); tok.Type != TokenEOF {
		t.Errorf("expected EOF, got %s", tok)
	}
	if tok := l.NextToken(); tok.Type != TokenEOF {
		t.Errorf("EOF should repeat, got %s", tok)
	}
}

func TestLexer_Gaps(t *testing.T) {
	l := NewLexerAt("a é# b", 4)
	for l.NextToken().Type != TokenEOF {
	}

	gaps := l.Gaps()
	if len(gaps) != 2 {
		t.Fatalf("Gaps() = %v, want 2 entries", gaps)
	}
	if gaps[0].Char != 'é' || gaps[0].Line != 4 || gaps[0].Column != 3 {
		t.Errorf("first gap = %+v", gaps[0])
	}
	if gaps[1].Char != '#' || gaps[1].Column != 4 {
		t.Errorf("second gap = %+v", gaps[1])
	}
}

func TestTokenizeStrict(t *testing.T) {
	_, err := TokenizeStrict("print(2#);")
	if err == nil {
		t.Fatal("TokenizeStrict() should fail on '#'")
	}
	if !mdwerror.HasCode(err, mdwerror.CodeLexical) {
		t.Errorf("error code = %v, want LEXICAL", mdwerror.GetCode(err))
	}

	fault, _ := mdwerror.As(err)
	if col, _ := fault.Detail("column"); col != 8 {
		t.Errorf("column = %v, want 8", col)
	}

	if _, err := TokenizeStrict("x = 1 + 2;"); err != nil {
		t.Errorf("TokenizeStrict() on clean input error = %v", err)
	}
}
