package expr

import "fmt"

// CompileError reports a problem found while parsing or validating an
// expression. Position is the rune offset of the offending token for
// lexing and parsing errors, and 0 for errors found after parsing.
type CompileError struct {
	Position int
	Message  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("expr: compile error at %d: %s", e.Position, e.Message)
}

// EvalError reports a problem found while evaluating a compiled AST:
// a missing binding or record field, division or modulo by zero, a wrong
// argument count in a library call, or an exceeded time budget.
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("expr: eval error: %s", e.Message)
}
