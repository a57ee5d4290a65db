package logging

import (
	stderrs "errors"
	"fmt"
	"runtime"
	"strings"

	smerrors "github.com/Station-Manager/errors"
)

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - ops: operation identifiers for DetailedError links ("" if not available)
//   - root: the innermost error message
//   - rootOp: the innermost operation identifier if available
//
// The traversal prefers Station-Manager DetailedError.Cause() and then
// falls back to stdlib errors.Unwrap. It guards against excessive depth
// and repeated messages to avoid cycles.
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	const maxDepth = 50
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < maxDepth {
		visited++

		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil {
			chain = append(chain, dErr.Error())
			ops = append(ops, string(dErr.Op()))
			err = dErr.Cause()
			continue
		}

		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, "")
		err = stderrs.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	if len(ops) > 0 {
		rootOp = ops[len(ops)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	return strings.Join(chain, " -> ")
}

// formatException renders err as the exc_info text: the outermost error with
// its Go type, then one "caused by" line per link, tagged with the operation
// when the link carries one.
func formatException(err error) string {
	if err == nil {
		return emptyString
	}
	chain, ops, _, _ := buildErrorChain(err)
	if len(chain) == 0 {
		return emptyString
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%T: %s", err, chain[0])
	if ops[0] != emptyString {
		fmt.Fprintf(&b, " [%s]", ops[0])
	}
	for i := 1; i < len(chain); i++ {
		b.WriteString("\ncaused by: ")
		b.WriteString(chain[i])
		if ops[i] != emptyString {
			fmt.Fprintf(&b, " [%s]", ops[i])
		}
	}
	return b.String()
}

// callerInfo reports the file, line and short function name skip frames above
// its caller.
func callerInfo(skip int) (file string, line int, fn string) {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return unknown, 0, unknown
	}
	fn = unknown
	if f := runtime.FuncForPC(pc); f != nil {
		fn = shortFuncName(f.Name())
	}
	return file, line, fn
}

// shortFuncName strips the import path and package from a runtime function
// name: "github.com/x/pkg.(*T).Run.func1" becomes "(*T).Run.func1".
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
