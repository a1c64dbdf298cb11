// File: doc.go
// Title: Parser Package Documentation
// Description: Lexer and recursive descent parser for calcscript.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial parser implementation
// - 2025-03-02 v0.2.0: calcscript grammar

/*
Package parser turns calcscript source lines into statement ASTs.

Grammar, one precedence level per rule:

	statement   := assignment | print_stmt | expression
	assignment  := IDENT '=' expression [';']
	print_stmt  := 'print' '(' expression ')' [';']
	expression  := term ( ('+'|'-'|'=='|'!='|'<'|'>'|'<='|'>=') term )*
	term        := factor ( ('*'|'/') factor )*
	factor      := NUMBER | IDENT | '(' expression ')' | ('-'|'+') factor

Additive and comparison operators share one level and associate left, so
1 < 2 + 3 parses as ((1 < 2) + 3). A leading identifier always starts an
assignment unless it is print.

Operator characters are lexed greedily as one run: "==" is one token, and
so is "+-", which no grammar rule accepts. Characters that start no token
are skipped unless Options.StrictLexing is set, in which case they raise a
LEXICAL fault.

Usage:

	p := parser.New(parser.Options{})
	stmts, err := p.ParseLine("x = 5; print(x);", 1)
*/
package parser
