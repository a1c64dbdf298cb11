// File: session.go
// Title: Session Driver
// Description: Splits a program into source lines and runs their statements
//              against one shared environment and output buffer.
// Author: msto63
// Version: v0.2.0
// Created: 2025-03-02
// Modified: 2025-03-02
//
// Change History:
// - 2025-03-02 v0.2.0: Initial implementation

package script

import (
	"context"
	"fmt"
	"strings"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	mdwast "github.com/msto63/calcscript/foundation/script/ast"
	mdwexecutor "github.com/msto63/calcscript/foundation/script/executor"
	mdwparser "github.com/msto63/calcscript/foundation/script/parser"
)

// SourceLine is one non-blank line of a program
type SourceLine struct {
	Number int // 1-based line number in the program
	Text   string
}

// ParsedLine holds the statements parsed from one source line
type ParsedLine struct {
	SourceLine
	Statements []mdwast.Stmt
}

// SplitLines splits program on \n or \r\n and drops blank lines
func SplitLines(program string) []SourceLine {
	raw := strings.Split(program, "\n")
	lines := make([]SourceLine, 0, len(raw))
	for i, text := range raw {
		text = strings.TrimSuffix(text, "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, SourceLine{Number: i + 1, Text: text})
	}
	return lines
}

// RunSession runs program with default options and returns its output
func RunSession(program string) (string, error) {
	res, err := defaultEngine.Run(context.Background(), program)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// session is the mutable state of one run
type session struct {
	env    *mdwexecutor.Environment
	out    *mdwexecutor.OutputBuffer
	parser *mdwparser.Parser

	statements int
	executed   int
}

func newSession(p *mdwparser.Parser) *session {
	return &session{
		env:    mdwexecutor.NewEnvironment(),
		out:    &mdwexecutor.OutputBuffer{},
		parser: p,
	}
}

// runLine parses every statement on line and evaluates the assignments and
// prints among them
func (s *session) runLine(line SourceLine) error {
	stmts, err := s.parser.ParseLine(line.Text, line.Number)
	if err != nil {
		return decorate(err, line.Number)
	}

	for _, stmt := range stmts {
		s.statements++
		switch stmt.(type) {
		case *mdwast.Assignment, *mdwast.Print:
		default:
			continue
		}
		if _, err := mdwexecutor.Evaluate(stmt, s.env, s.out); err != nil {
			return decorate(err, line.Number)
		}
		s.executed++
	}
	return nil
}

// decorate makes sure a fault names the program line it happened on
func decorate(err error, line int) error {
	fault, ok := mdwerror.As(err)
	if !ok {
		return mdwerror.Wrap(err, "evaluation failed").
			WithCode(mdwerror.CodeInternal).
			WithDetail("line", line)
	}
	if _, has := fault.Detail("line"); !has {
		fault.WithDetail("line", line)
	}
	return fault
}

// FaultLine returns the 1-based program line a fault occurred on, or 0
func FaultLine(err error) int {
	fault, ok := mdwerror.As(err)
	if !ok {
		return 0
	}
	if v, ok := fault.Detail("line"); ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}

// Describe renders err for end users, prefixed with its line when known
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if line := FaultLine(err); line > 0 {
		return fmt.Sprintf("line %d: %s", line, err.Error())
	}
	return err.Error()
}
