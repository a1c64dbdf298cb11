// File: nodes.go
// Title: AST Node Definitions
// Description: Defines the statement and expression nodes produced by the
//              parser, with source positions and string rendering.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial AST node definitions
// - 2025-03-02 v0.2.0: Arithmetic statement nodes

package ast

import "fmt"

// Node represents the base interface for all AST nodes
type Node interface {
	// String returns a fully parenthesised rendering of the node
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	// Position returns the source position of the node
	Position() Position
}

// Position represents a position in the source code
type Position struct {
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
	Offset int // Byte offset (0-based)
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Expr is a node that evaluates to an integer
type Expr interface {
	Node
	exprNode()
}

// Stmt is a node at the head of one parsed statement
type Stmt interface {
	Node
	stmtNode()
}

// Number is an integer literal kept in its source form
type Number struct {
	Literal string
	Pos     Position
}

// Identifier is a variable reference
type Identifier struct {
	Name string
	Pos  Position
}

// BinaryOp applies Op to Left and Right. The parser accepts comparison
// operators here; evaluation supports only + - * /.
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Position
}

// Unary applies a leading sign to its operand
type Unary struct {
	Op      string
	Operand Expr
	Pos     Position
}

// Assignment binds the value of Value to Name
type Assignment struct {
	Name  string
	Value Expr
	Pos   Position
}

// Print appends the value of Value to the session output
type Print struct {
	Value Expr
	Pos   Position
}

// ExpressionStatement is a bare expression at statement level
type ExpressionStatement struct {
	Value Expr
	Pos   Position
}

func (*Number) exprNode()     {}
func (*Identifier) exprNode() {}
func (*BinaryOp) exprNode()   {}
func (*Unary) exprNode()      {}

func (*Assignment) stmtNode()          {}
func (*Print) stmtNode()               {}
func (*ExpressionStatement) stmtNode() {}

func (n *Number) String() string     { return n.Literal }
func (n *Identifier) String() string { return n.Name }

func (n *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

func (n *Unary) String() string {
	return fmt.Sprintf("(%s%s)", n.Op, n.Operand)
}

func (n *Assignment) String() string {
	return fmt.Sprintf("%s = %s", n.Name, n.Value)
}

func (n *Print) String() string {
	return fmt.Sprintf("print(%s)", n.Value)
}

func (n *ExpressionStatement) String() string {
	return n.Value.String()
}

func (n *Number) Position() Position              { return n.Pos }
func (n *Identifier) Position() Position          { return n.Pos }
func (n *BinaryOp) Position() Position            { return n.Pos }
func (n *Unary) Position() Position               { return n.Pos }
func (n *Assignment) Position() Position          { return n.Pos }
func (n *Print) Position() Position               { return n.Pos }
func (n *ExpressionStatement) Position() Position { return n.Pos }

func (n *Number) Accept(v Visitor) interface{}              { return v.VisitNumber(n) }
func (n *Identifier) Accept(v Visitor) interface{}          { return v.VisitIdentifier(n) }
func (n *BinaryOp) Accept(v Visitor) interface{}            { return v.VisitBinaryOp(n) }
func (n *Unary) Accept(v Visitor) interface{}               { return v.VisitUnary(n) }
func (n *Assignment) Accept(v Visitor) interface{}          { return v.VisitAssignment(n) }
func (n *Print) Accept(v Visitor) interface{}               { return v.VisitPrint(n) }
func (n *ExpressionStatement) Accept(v Visitor) interface{} { return v.VisitExpressionStatement(n) }

// Kind returns the statement kind name used in logs and dumps
func Kind(stmt Stmt) string {
	switch stmt.(type) {
	case *Assignment:
		return "assignment"
	case *Print:
		return "print"
	case *ExpressionStatement:
		return "expression"
	default:
		return "unknown"
	}
}
