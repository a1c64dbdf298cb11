// File: visitor.go
// Title: AST Visitor Pattern Implementation
// Description: Visitor interface, a walking base visitor, an indented tree
//              printer and an identifier collector.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial visitor pattern implementation
// - 2025-03-02 v0.2.0: Visitors for calcscript nodes

package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Visitor interface for traversing AST nodes using the visitor pattern
type Visitor interface {
	// Expressions
	VisitNumber(n *Number) interface{}
	VisitIdentifier(n *Identifier) interface{}
	VisitBinaryOp(n *BinaryOp) interface{}
	VisitUnary(n *Unary) interface{}

	// Statements
	VisitAssignment(n *Assignment) interface{}
	VisitPrint(n *Print) interface{}
	VisitExpressionStatement(n *ExpressionStatement) interface{}
}

// BaseVisitor walks every child and returns nil.
// Embedding types that need the walk to reach their own overrides must set
// Self to themselves.
type BaseVisitor struct {
	Self Visitor
}

func (bv *BaseVisitor) self() Visitor {
	if bv.Self != nil {
		return bv.Self
	}
	return bv
}

func (bv *BaseVisitor) VisitNumber(n *Number) interface{}         { return nil }
func (bv *BaseVisitor) VisitIdentifier(n *Identifier) interface{} { return nil }

func (bv *BaseVisitor) VisitBinaryOp(n *BinaryOp) interface{} {
	n.Left.Accept(bv.self())
	n.Right.Accept(bv.self())
	return nil
}

func (bv *BaseVisitor) VisitUnary(n *Unary) interface{} {
	n.Operand.Accept(bv.self())
	return nil
}

func (bv *BaseVisitor) VisitAssignment(n *Assignment) interface{} {
	n.Value.Accept(bv.self())
	return nil
}

func (bv *BaseVisitor) VisitPrint(n *Print) interface{} {
	n.Value.Accept(bv.self())
	return nil
}

func (bv *BaseVisitor) VisitExpressionStatement(n *ExpressionStatement) interface{} {
	n.Value.Accept(bv.self())
	return nil
}

// treeVisitor renders a node as an indented tree, one node per line
type treeVisitor struct {
	sb    strings.Builder
	depth int
}

func (tv *treeVisitor) line(format string, args ...interface{}) {
	tv.sb.WriteString(strings.Repeat("  ", tv.depth))
	fmt.Fprintf(&tv.sb, format, args...)
	tv.sb.WriteByte('\n')
}

func (tv *treeVisitor) child(n Node) {
	tv.depth++
	n.Accept(tv)
	tv.depth--
}

func (tv *treeVisitor) VisitNumber(n *Number) interface{} {
	tv.line("Number %s", n.Literal)
	return nil
}

func (tv *treeVisitor) VisitIdentifier(n *Identifier) interface{} {
	tv.line("Identifier %s", n.Name)
	return nil
}

func (tv *treeVisitor) VisitBinaryOp(n *BinaryOp) interface{} {
	tv.line("BinaryOp %s", n.Op)
	tv.child(n.Left)
	tv.child(n.Right)
	return nil
}

func (tv *treeVisitor) VisitUnary(n *Unary) interface{} {
	tv.line("Unary %s", n.Op)
	tv.child(n.Operand)
	return nil
}

func (tv *treeVisitor) VisitAssignment(n *Assignment) interface{} {
	tv.line("Assignment %s", n.Name)
	tv.child(n.Value)
	return nil
}

func (tv *treeVisitor) VisitPrint(n *Print) interface{} {
	tv.line("Print")
	tv.child(n.Value)
	return nil
}

func (tv *treeVisitor) VisitExpressionStatement(n *ExpressionStatement) interface{} {
	tv.line("ExpressionStatement")
	tv.child(n.Value)
	return nil
}

// TreeString renders node as an indented tree
func TreeString(node Node) string {
	tv := &treeVisitor{}
	node.Accept(tv)
	return tv.sb.String()
}

// identifierCollector records every identifier read by an expression
type identifierCollector struct {
	BaseVisitor
	names map[string]struct{}
}

func (ic *identifierCollector) VisitIdentifier(n *Identifier) interface{} {
	ic.names[n.Name] = struct{}{}
	return nil
}

// CollectIdentifiers returns the sorted names a node reads. The target of an
// assignment is not a read.
func CollectIdentifiers(node Node) []string {
	ic := &identifierCollector{names: make(map[string]struct{})}
	ic.Self = ic
	node.Accept(ic)

	names := make([]string, 0, len(ic.names))
	for name := range ic.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
