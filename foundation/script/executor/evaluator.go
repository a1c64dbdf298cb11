// File: evaluator.go
// Title: Expression and Statement Evaluation
// Description: Recursive evaluation of AST nodes. Faults are returned as
//              structured errors with the NAME, OPERATOR or ARITHMETIC code
//              and the position of the failing node.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial executor implementation
// - 2025-03-02 v0.2.0: Arbitrary precision arithmetic with floor division

package executor

import (
	"fmt"
	"math/big"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	mdwast "github.com/msto63/calcscript/foundation/script/ast"
)

// Evaluate evaluates node against env. Print statements append to out and
// yield nil; every other node yields its integer value. Operands are always
// evaluated left then right.
func Evaluate(node mdwast.Node, env *Environment, out *OutputBuffer) (*big.Int, error) {
	switch n := node.(type) {
	case *mdwast.Number:
		v, ok := new(big.Int).SetString(n.Literal, 10)
		if !ok {
			return nil, fault(mdwerror.CodeSyntax, n.Pos, "invalid integer literal '%s'", n.Literal).
				WithDetail("token", n.Literal)
		}
		return v, nil

	case *mdwast.Identifier:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, fault(mdwerror.CodeName, n.Pos, "variable '%s' is not defined", n.Name).
				WithDetail("name", n.Name)
		}
		return v, nil

	case *mdwast.Assignment:
		v, err := Evaluate(n.Value, env, out)
		if err != nil {
			return nil, err
		}
		env.Set(n.Name, v)
		return v, nil

	case *mdwast.BinaryOp:
		left, err := Evaluate(n.Left, env, out)
		if err != nil {
			return nil, err
		}
		right, err := Evaluate(n.Right, env, out)
		if err != nil {
			return nil, err
		}
		return applyBinary(n, left, right)

	case *mdwast.Unary:
		v, err := Evaluate(n.Operand, env, out)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "-":
			return v.Neg(v), nil
		case "+":
			return v, nil
		}
		return nil, fault(mdwerror.CodeOperator, n.Pos, "unsupported operator: %s", n.Op).
			WithDetail("operator", n.Op)

	case *mdwast.Print:
		v, err := Evaluate(n.Value, env, out)
		if err != nil {
			return nil, err
		}
		out.WriteLine(v.String())
		return nil, nil

	case *mdwast.ExpressionStatement:
		return Evaluate(n.Value, env, out)

	default:
		return nil, mdwerror.Newf("cannot evaluate node of type %T", node).
			WithCode(mdwerror.CodeInternal).
			WithOperation("executor.Evaluate")
	}
}

func applyBinary(n *mdwast.BinaryOp, left, right *big.Int) (*big.Int, error) {
	switch n.Op {
	case "+":
		return left.Add(left, right), nil
	case "-":
		return left.Sub(left, right), nil
	case "*":
		return left.Mul(left, right), nil
	case "/":
		if right.Sign() == 0 {
			return nil, fault(mdwerror.CodeArithmetic, n.Pos, "division by zero")
		}
		return FloorDiv(left, right), nil
	}
	return nil, fault(mdwerror.CodeOperator, n.Pos, "unsupported operator: %s", n.Op).
		WithDetail("operator", n.Op)
}

// FloorDiv returns a / b rounded toward negative infinity. b must not be
// zero.
func FloorDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 && r.Sign() != b.Sign() {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

func fault(code mdwerror.Code, pos mdwast.Position, format string, args ...interface{}) *mdwerror.Error {
	return mdwerror.New(fmt.Sprintf(format, args...)).
		WithCode(code).
		WithOperation("executor.Evaluate").
		WithDetails(map[string]interface{}{
			"line":   pos.Line,
			"column": pos.Column,
		})
}
