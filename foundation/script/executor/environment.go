// File: environment.go
// Title: Variable Environment and Output Buffer
// Description: Per-session variable bindings and the append-only output
//              accumulator.
// Author: msto63
// Version: v0.2.0
// Created: 2025-03-02
// Modified: 2025-03-02
//
// Change History:
// - 2025-03-02 v0.2.0: Initial implementation

package executor

import (
	"math/big"
	"sort"
	"strings"
)

// Environment maps variable names to integer values. It is not safe for
// concurrent use; every session creates its own.
type Environment struct {
	vars map[string]*big.Int
}

// NewEnvironment creates an empty environment
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]*big.Int)}
}

// Get returns a copy of the value bound to name
func (e *Environment) Get(name string) (*big.Int, bool) {
	v, ok := e.vars[name]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(v), true
}

// Set binds name to a copy of value, replacing any previous binding
func (e *Environment) Set(name string, value *big.Int) {
	e.vars[name] = new(big.Int).Set(value)
}

// Len returns the number of bound variables
func (e *Environment) Len() int {
	return len(e.vars)
}

// Snapshot returns the bindings rendered in base 10
func (e *Environment) Snapshot() map[string]string {
	snap := make(map[string]string, len(e.vars))
	for name, v := range e.vars {
		snap[name] = v.String()
	}
	return snap
}

// Names returns the bound names in sorted order
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputBuffer accumulates printed lines
type OutputBuffer struct {
	sb    strings.Builder
	lines int
}

// WriteLine appends s and a newline
func (o *OutputBuffer) WriteLine(s string) {
	o.sb.WriteString(s)
	o.sb.WriteByte('\n')
	o.lines++
}

// String returns everything written so far
func (o *OutputBuffer) String() string {
	return o.sb.String()
}

// Lines returns the number of lines written
func (o *OutputBuffer) Lines() int {
	return o.lines
}
