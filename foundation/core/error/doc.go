// Package error provides structured error handling for calcscript.
//
// Package: error
// Title: Structured Errors and Faults
// Description: Every fault raised while lexing, parsing or evaluating a
//              program, and every platform error raised by configuration,
//              storage or the network services, is an *Error carrying a Code,
//              a Severity and key/value details.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2025-03-02 v0.2.0: Interpreter fault taxonomy
//
// Usage:
//
//	import mdwerror "github.com/msto63/calcscript/foundation/core/error"
//
//	err := mdwerror.New("variable 'y' is not defined").
//		WithCode(mdwerror.CodeName).
//		WithDetail("name", "y")
//
//	if mdwerror.HasCode(err, mdwerror.CodeName) {
//		// report to the user
//	}
package error
