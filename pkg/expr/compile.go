package expr

import "fmt"

// DefaultMaxNodes bounds the size of a single compiled expression. At a
// nominal ~24 bytes per AST node this keeps a compiled expression well
// under the ≤64 KiB per-compiled-expression memory budget; it is a coarse
// guard, not an exact accounting (see countNodes in ast.go).
const DefaultMaxNodes = 2048

// Compile parses src and validates it against allowedVars and the closed
// function whitelist, returning an immutable AST on success.
//
// allowedVars lists every identifier the expression may reference; any
// other identifier, or any call to a function outside the whitelist,
// produces a *CompileError. Lexing and parsing errors carry the offending
// token's rune offset; allow-list, whitelist and size rejections carry
// Position 0. This is
// the engine's entire sandbox: the grammar has no syntax for anything
// beyond arithmetic, comparison, boolean logic, conditionals, record field
// access, and whitelisted calls, so there is nothing further to check for
// at evaluation time beyond the time budget.
func Compile(src string, allowedVars []string) (*AST, error) {
	if len(src) == 0 {
		return nil, &CompileError{Position: 0, Message: "empty expression"}
	}

	root, err := parse(src)
	if err != nil {
		return nil, err
	}

	allow := make(map[string]struct{}, len(allowedVars))
	for _, v := range allowedVars {
		allow[v] = struct{}{}
	}

	if err := validate(root, allow); err != nil {
		return nil, err
	}

	count := countNodes(root)
	if count > DefaultMaxNodes {
		return nil, &CompileError{Position: 0, Message: fmt.Sprintf("expression too large: %d nodes exceeds limit %d", count, DefaultMaxNodes)}
	}

	return &AST{root: root, source: src, allowVars: allow, nodeCount: count}, nil
}

// validate walks the tree checking every identifier reference against the
// allow-list and every call against the function whitelist.
func validate(n node, allow map[string]struct{}) error {
	switch v := n.(type) {
	case numberNode, boolNode:
		return nil
	case identNode:
		if _, ok := allow[v.name]; !ok {
			return &CompileError{Position: 0, Message: "identifier not permitted: " + v.name}
		}
		return nil
	case fieldNode:
		return validate(v.base, allow)
	case unaryNode:
		return validate(v.expr, allow)
	case binaryNode:
		if err := validate(v.left, allow); err != nil {
			return err
		}
		return validate(v.right, allow)
	case condNode:
		if err := validate(v.cond, allow); err != nil {
			return err
		}
		if err := validate(v.then, allow); err != nil {
			return err
		}
		return validate(v.els, allow)
	case callNode:
		if !IsWhitelistedFunction(v.fn) {
			return &CompileError{Position: 0, Message: "function not permitted: " + v.fn}
		}
		for _, a := range v.args {
			if err := validate(a, allow); err != nil {
				return err
			}
		}
		return nil
	default:
		return &CompileError{Position: 0, Message: "unsupported expression node"}
	}
}
