package materializer

import (
	"fmt"
	"strings"
)

// paramReader emits the statements that declare p and fill it from one
// line of standard input.
type paramReader func(p Param) string

// renderer emits the statements that print the value held in expr.
type renderer func(sig *FunctionSignature, expr string) string

// dialect is a per-language harness generator. The parsing and rendering
// tables are closed: every Kind either has an entry or falls back to the
// KindUnsupported entry.
type dialect struct {
	readers   map[Kind]paramReader
	renderers map[Kind]renderer
	comment   string
	// call returns the invocation expression of the user's function.
	call func(sig *FunctionSignature, args []string) string
	// assign stores the invocation result in the variable resultVar.
	assign func(sig *FunctionSignature, call string) string
	// discard runs a void invocation.
	discard func(call string) string
	// wrap places the user code and main body into a complete program.
	wrap func(code, className, body string) string
}

const resultVar = "__result"

func (d *dialect) generate(sig *FunctionSignature, code, className string) string {
	var body strings.Builder
	args := make([]string, 0, len(sig.Params))
	for _, p := range sig.Params {
		read, ok := d.readers[p.Kind]
		if !ok {
			// left undeclared: the program fails to compile and is judged CE
			fmt.Fprintf(&body, "%s unsupported parameter type: %s %s\n", d.comment, p.Type, p.Name)
		} else {
			body.WriteString(read(p))
		}
		args = append(args, p.Name)
	}

	call := d.call(sig, args)
	if sig.ReturnKind == KindVoid {
		body.WriteString(d.discard(call))
	} else {
		body.WriteString(d.assign(sig, call))
		body.WriteString(d.render(sig.ReturnKind)(sig, resultVar))
	}
	return d.wrap(code, className, body.String())
}

func (d *dialect) render(k Kind) renderer {
	if r, ok := d.renderers[k]; ok {
		return r
	}
	return d.renderers[KindUnsupported]
}

func indent(s string, tabs int) string {
	prefix := strings.Repeat("    ", tabs)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
