// File: parser.go
// Title: Recursive Descent Parser
// Description: Converts the token stream of one source line into statement
//              ASTs using single-token lookahead recursive descent. Every
//              grammar violation is reported as a SYNTAX fault carrying the
//              line, column and offending token.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial parser implementation
// - 2025-03-02 v0.2.0: calcscript grammar, statement loop, nesting limit

package parser

import (
	"fmt"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	mdwlog "github.com/msto63/calcscript/foundation/core/log"
	mdwast "github.com/msto63/calcscript/foundation/script/ast"
)

const (
	// DefaultMaxInputLength bounds a single source line in bytes
	DefaultMaxInputLength = 64 * 1024
	// DefaultMaxDepth bounds parenthesis and sign nesting
	DefaultMaxDepth = 256
)

// additiveOps share one precedence level with the comparisons
var additiveOps = map[string]bool{
	"+": true, "-": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

var multiplicativeOps = map[string]bool{"*": true, "/": true}

// Parser implements recursive descent parsing for calcscript
type Parser struct {
	lexer    *Lexer
	current  Token // Current token
	previous Token // Previous token
	depth    int
	logger   *mdwlog.Logger
	options  Options
}

// Options configures parser behavior
type Options struct {
	Logger         *mdwlog.Logger
	MaxInputLength int
	MaxDepth       int
	StrictLexing   bool
}

// New creates a new parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	return &Parser{
		logger:  opts.Logger.WithField("component", "parser"),
		options: opts,
	}
}

// ParseProgram parses all statements of input, treating it as line 1
func (p *Parser) ParseProgram(input string) ([]mdwast.Stmt, error) {
	return p.ParseLine(input, 1)
}

// ParseLine parses every statement on one source line. Statements follow
// each other directly or separated by ';'; stray semicolons are skipped.
func (p *Parser) ParseLine(input string, line int) ([]mdwast.Stmt, error) {
	if len(input) > p.options.MaxInputLength {
		return nil, mdwerror.Newf("input exceeds maximum length: %d > %d",
			len(input), p.options.MaxInputLength).
			WithCode(mdwerror.CodeSyntax).
			WithOperation("parser.ParseLine").
			WithDetail("line", line)
	}

	p.reset(input, line)

	var stmts []mdwast.Stmt
	for {
		for p.current.Type == TokenSemicolon {
			p.advance()
		}
		if p.current.Type == TokenEOF {
			break
		}
		if p.current.Type == TokenIllegal {
			return nil, lexicalFault(p.current)
		}

		stmt, err := p.ParseStatement()
		if err != nil {
			p.logger.Debug("parse failed", mdwlog.Fields{
				"line":  line,
				"error": err.Error(),
			})
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	if gaps := p.lexer.Gaps(); len(gaps) > 0 && !p.options.StrictLexing {
		p.logger.Debug("skipped unmatched characters", mdwlog.Fields{
			"line":  line,
			"count": len(gaps),
		})
	}

	p.logger.Trace("line parsed", mdwlog.Fields{
		"line":       line,
		"statements": len(stmts),
	})
	return stmts, nil
}

// ParseStatement parses the statement starting at the current token.
// A leading 'print' selects the print form, any other leading identifier
// an assignment, and everything else a bare expression.
func (p *Parser) ParseStatement() (mdwast.Stmt, error) {
	if p.current.Type == TokenIdentifier {
		if p.current.Value == "print" {
			return p.parsePrint()
		}
		return p.parseAssignment()
	}

	pos := p.currentPosition()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSemicolon()
	return &mdwast.ExpressionStatement{Value: expr, Pos: pos}, nil
}

// parseAssignment parses IDENT '=' expression [';']
func (p *Parser) parseAssignment() (mdwast.Stmt, error) {
	pos := p.currentPosition()
	name := p.current.Value
	p.advance()

	if !p.current.Is(TokenOperator, "=") {
		return nil, p.parseError("parser.parseAssignment",
			fmt.Sprintf("invalid assignment: expected '=' after '%s'", name))
	}
	p.advance()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSemicolon()

	return &mdwast.Assignment{Name: name, Value: value, Pos: pos}, nil
}

// parsePrint parses 'print' '(' expression ')' [';']
func (p *Parser) parsePrint() (mdwast.Stmt, error) {
	pos := p.currentPosition()
	p.advance() // consume 'print'

	if !p.current.Is(TokenParen, "(") {
		return nil, p.parseError("parser.parsePrint", "invalid syntax for print: expected '('")
	}
	p.advance()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.current.Is(TokenParen, ")") {
		return nil, p.parseError("parser.parsePrint", "invalid syntax for print: expected ')'")
	}
	p.advance()
	p.skipSemicolon()

	return &mdwast.Print{Value: value, Pos: pos}, nil
}

// parseExpression parses term (additive-or-comparison term)*
func (p *Parser) parseExpression() (mdwast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TokenOperator && additiveOps[p.current.Value] {
		op := p.current.Value
		pos := p.currentPosition()
		p.advance()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = &mdwast.BinaryOp{Op: op, Left: left, Right: right, Pos: pos}
	}

	return left, nil
}

// parseTerm parses factor (('*'|'/') factor)*
func (p *Parser) parseTerm() (mdwast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TokenOperator && multiplicativeOps[p.current.Value] {
		op := p.current.Value
		pos := p.currentPosition()
		p.advance()

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}

		left = &mdwast.BinaryOp{Op: op, Left: left, Right: right, Pos: pos}
	}

	return left, nil
}

// parseFactor parses NUMBER | IDENT | '(' expression ')' | ('-'|'+') factor
func (p *Parser) parseFactor() (mdwast.Expr, error) {
	pos := p.currentPosition()

	switch {
	case p.current.Type == TokenNumber:
		lit := p.current.Value
		p.advance()
		return &mdwast.Number{Literal: lit, Pos: pos}, nil

	case p.current.Type == TokenIdentifier:
		name := p.current.Value
		p.advance()
		return &mdwast.Identifier{Name: name, Pos: pos}, nil

	case p.current.Is(TokenParen, "("):
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		p.advance()

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if !p.current.Is(TokenParen, ")") {
			return nil, p.parseError("parser.parseFactor", "expected ')' after expression")
		}
		p.advance()
		return expr, nil

	case p.current.Is(TokenOperator, "-") || p.current.Is(TokenOperator, "+"):
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		op := p.current.Value
		p.advance()

		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &mdwast.Unary{Op: op, Operand: operand, Pos: pos}, nil

	case p.current.Type == TokenEOF:
		return nil, p.parseError("parser.parseFactor", "invalid syntax: unexpected end of input")

	default:
		return nil, p.parseError("parser.parseFactor", "invalid syntax")
	}
}

// Utility methods

func (p *Parser) reset(input string, line int) {
	p.lexer = NewLexerAt(input, line)
	p.lexer.SetStrict(p.options.StrictLexing)
	p.depth = 0
	p.current = Token{}
	p.previous = Token{}
	p.advance()
}

// advance moves to the next token
func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.lexer.NextToken()
}

func (p *Parser) skipSemicolon() {
	if p.current.Type == TokenSemicolon {
		p.advance()
	}
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.options.MaxDepth {
		return p.parseError("parser.parseFactor",
			fmt.Sprintf("expression nested deeper than %d levels", p.options.MaxDepth))
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// currentPosition returns the current AST position
func (p *Parser) currentPosition() mdwast.Position {
	return mdwast.Position{
		Line:   p.current.Line,
		Column: p.current.Column,
		Offset: p.current.Position,
	}
}

// parseError creates a SYNTAX fault at the current token. An illegal
// token reports the LEXICAL fault instead.
func (p *Parser) parseError(operation, message string) error {
	if p.current.Type == TokenIllegal {
		return lexicalFault(p.current)
	}
	token := p.current.Value
	if p.current.Type == TokenEOF {
		token = "EOF"
	}
	return mdwerror.New(message).
		WithCode(mdwerror.CodeSyntax).
		WithOperation(operation).
		WithDetails(map[string]interface{}{
			"line":   p.current.Line,
			"column": p.current.Column,
			"token":  token,
		})
}
