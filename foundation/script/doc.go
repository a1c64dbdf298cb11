// File: doc.go
// Title: calcscript Interpreter Package Documentation
// Description: Session driver and engine tying lexer, parser and evaluator
//              together.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial high-level engine implementation
// - 2025-03-02 v0.2.0: calcscript sessions

/*
Package script runs calcscript programs.

A program is a block of text. Each non-blank line holds one or more
statements; every line is tokenized, parsed and evaluated in order against
one Environment and one OutputBuffer that live for the whole session and
are thrown away afterwards. Only assignments and print statements are
evaluated. A bare expression such as 5 + 5 is parsed and then skipped.

The first fault stops the session. Output printed by earlier statements is
discarded and only the fault is returned:

	out, err := script.RunSession("x = 5; print(x);")
	// out == "5\n"

	_, err = script.RunSession("print(1)\nprint(y)")
	// err: variable 'y' is not defined, Describe(err) == "line 2: variable 'y' is not defined"

Engine adds options, logging and run statistics on top of RunSession and is
safe for concurrent use; every Run builds its own session state.
*/
package script
