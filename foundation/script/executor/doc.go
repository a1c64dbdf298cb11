// Package executor evaluates calcscript ASTs.
//
// Package: executor
// Title: Tree-Walking Evaluator
// Description: Evaluates statements and expressions against an Environment
//              of arbitrary precision integers, appending print output to an
//              OutputBuffer.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial executor implementation
// - 2025-03-02 v0.2.0: Arithmetic evaluator replaces service routing
//
// Division floors toward negative infinity, so -7 / 2 is -4 and 7 / -2 is
// -4. Only + - * / are evaluated; the comparison operators the parser
// accepts raise an OPERATOR fault.
package executor
