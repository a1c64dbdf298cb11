// File: doc.go
// Title: Abstract Syntax Tree Package Documentation
// Description: Node definitions and visitors for parsed calcscript
//              statements.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial AST implementation
// - 2025-03-02 v0.2.0: Statement and expression nodes for calcscript

/*
Package ast defines the Abstract Syntax Tree for calcscript statements.

A parsed statement is one of Assignment, Print or ExpressionStatement. Their
expressions are built from Number, Identifier, Unary and BinaryOp nodes. Each
node owns its children; the tree has no shared nodes and no back references.

Every node renders itself in a fully parenthesised form through String,
which makes precedence visible:

	stmt := &ast.Print{Value: &ast.BinaryOp{
		Op:    "+",
		Left:  &ast.Number{Literal: "2"},
		Right: &ast.BinaryOp{Op: "*", Left: &ast.Number{Literal: "3"}, Right: &ast.Number{Literal: "4"}},
	}}
	fmt.Println(stmt) // print((2 + (3 * 4)))

Traversal uses the Visitor interface. Embed BaseVisitor to walk the tree and
override only the methods of interest; TreeString and CollectIdentifiers are
ready-made visitors.
*/
package ast
