package executor

import (
	"math/big"
	"testing"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	mdwast "github.com/msto63/calcscript/foundation/script/ast"
)

func num(s string) *mdwast.Number       { return &mdwast.Number{Literal: s} }
func ident(s string) *mdwast.Identifier { return &mdwast.Identifier{Name: s} }

func bin(op string, l, r mdwast.Expr) *mdwast.BinaryOp {
	return &mdwast.BinaryOp{Op: op, Left: l, Right: r}
}

func neg(e mdwast.Expr) *mdwast.Unary { return &mdwast.Unary{Op: "-", Operand: e} }

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{6, 3, 2},
		{-6, 3, -2},
		{0, 5, 0},
		{1, 3, 0},
		{-1, 3, -1},
	}

	for _, tt := range tests {
		got := FloorDiv(big.NewInt(tt.a), big.NewInt(tt.b))
		if got.Int64() != tt.want {
			t.Errorf("FloorDiv(%d, %d) = %s, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEvaluate_Expressions(t *testing.T) {
	tests := []struct {
		name string
		expr mdwast.Expr
		want string
	}{
		{"literal", num("42"), "42"},
		{"leading zeros", num("007"), "7"},
		{"addition", bin("+", num("2"), num("3")), "5"},
		{"subtraction below zero", bin("-", num("2"), num("3")), "-1"},
		{"multiplication", bin("*", num("6"), num("7")), "42"},
		{"floor division", bin("/", neg(num("7")), num("2")), "-4"},
		{"unary plus", &mdwast.Unary{Op: "+", Operand: num("3")}, "3"},
		{"double negation", neg(neg(num("3"))), "3"},
		{"big literal", bin("*", num("99999999999999999999"), num("10")), "999999999999999999990"},
		{"beyond int64", bin("*", num("9223372036854775807"), num("2")), "18446744073709551614"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, NewEnvironment(), &OutputBuffer{})
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Evaluate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluate_Statements(t *testing.T) {
	env := NewEnvironment()
	out := &OutputBuffer{}

	v, err := Evaluate(&mdwast.Assignment{Name: "a", Value: num("2")}, env, out)
	if err != nil || v.String() != "2" {
		t.Fatalf("assignment = %v, %v", v, err)
	}

	if _, err := Evaluate(&mdwast.Assignment{Name: "b", Value: bin("+", ident("a"), num("3"))}, env, out); err != nil {
		t.Fatalf("assignment error = %v", err)
	}

	v, err = Evaluate(&mdwast.Print{Value: ident("b")}, env, out)
	if err != nil {
		t.Fatalf("print error = %v", err)
	}
	if v != nil {
		t.Errorf("print yielded %v, want nil", v)
	}
	if out.String() != "5\n" || out.Lines() != 1 {
		t.Errorf("output = %q (%d lines), want \"5\\n\"", out.String(), out.Lines())
	}

	// Rebinding overwrites
	if _, err := Evaluate(&mdwast.Assignment{Name: "a", Value: num("10")}, env, out); err != nil {
		t.Fatal(err)
	}
	if got, _ := env.Get("a"); got.String() != "10" {
		t.Errorf("a = %s, want 10", got)
	}

	v, err = Evaluate(&mdwast.ExpressionStatement{Value: bin("*", ident("a"), ident("b"))}, env, out)
	if err != nil || v.String() != "50" {
		t.Errorf("expression statement = %v, %v", v, err)
	}
	if out.String() != "5\n" {
		t.Errorf("expression statement wrote output: %q", out.String())
	}
}

func TestEvaluate_Faults(t *testing.T) {
	tests := []struct {
		name    string
		node    mdwast.Node
		code    mdwerror.Code
		message string
	}{
		{"undefined variable", &mdwast.Print{Value: ident("y")}, mdwerror.CodeName, "variable 'y' is not defined"},
		{"equality", &mdwast.Print{Value: bin("==", num("1"), num("1"))}, mdwerror.CodeOperator, "unsupported operator: =="},
		{"less than", bin("<", num("1"), num("2")), mdwerror.CodeOperator, "unsupported operator: <"},
		{"division by zero", bin("/", num("1"), num("0")), mdwerror.CodeArithmetic, "division by zero"},
		{"division by computed zero", bin("/", num("1"), bin("-", num("2"), num("2"))), mdwerror.CodeArithmetic, "division by zero"},
		{"unsupported unary", &mdwast.Unary{Op: "!", Operand: num("1")}, mdwerror.CodeOperator, "unsupported operator: !"},
		{"left operand fails first", bin("+", ident("p"), ident("q")), mdwerror.CodeName, "variable 'p' is not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &OutputBuffer{}
			_, err := Evaluate(tt.node, NewEnvironment(), out)
			if err == nil {
				t.Fatal("Evaluate() should fail")
			}
			if !mdwerror.HasCode(err, tt.code) {
				t.Errorf("code = %v, want %v", mdwerror.GetCode(err), tt.code)
			}
			if err.Error() != tt.message {
				t.Errorf("message = %q, want %q", err.Error(), tt.message)
			}
			if out.String() != "" {
				t.Errorf("fault wrote output %q", out.String())
			}
		})
	}
}

func TestEvaluate_FaultPosition(t *testing.T) {
	node := &mdwast.Identifier{Name: "z", Pos: mdwast.Position{Line: 3, Column: 9}}
	_, err := Evaluate(node, NewEnvironment(), &OutputBuffer{})

	fault, ok := mdwerror.As(err)
	if !ok {
		t.Fatalf("expected structured fault, got %v", err)
	}
	if line, _ := fault.Detail("line"); line != 3 {
		t.Errorf("line = %v, want 3", line)
	}
	if col, _ := fault.Detail("column"); col != 9 {
		t.Errorf("column = %v, want 9", col)
	}
	if name, _ := fault.Detail("name"); name != "z" {
		t.Errorf("name = %v, want z", name)
	}
}

func TestEnvironment(t *testing.T) {
	env := NewEnvironment()
	v := big.NewInt(5)
	env.Set("x", v)

	v.SetInt64(99)
	got, ok := env.Get("x")
	if !ok || got.Int64() != 5 {
		t.Errorf("Set() must copy the value, got %v", got)
	}

	got.SetInt64(7)
	again, _ := env.Get("x")
	if again.Int64() != 5 {
		t.Error("Get() must return a copy")
	}

	env.Set("a", big.NewInt(-1))
	if names := env.Names(); len(names) != 2 || names[0] != "a" || names[1] != "x" {
		t.Errorf("Names() = %v", names)
	}
	if snap := env.Snapshot(); snap["a"] != "-1" || snap["x"] != "5" || env.Len() != 2 {
		t.Errorf("Snapshot() = %v", snap)
	}
	if _, ok := env.Get("missing"); ok {
		t.Error("Get() reported a missing name")
	}
}
