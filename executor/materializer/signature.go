package materializer

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the normalized shape of a parameter or return type. It decides
// which input parser and which result renderer the harness uses.
type Kind int

const (
	KindUnsupported Kind = iota
	KindIntSequence
	KindInteger
	KindFloat
	KindString
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindIntSequence:
		return "int-sequence"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindVoid:
		return "void"
	default:
		return "unsupported"
	}
}

// Param is one typed parameter of a stub signature.
type Param struct {
	Type string
	Name string
	Kind Kind
}

// FunctionSignature is the parsed form of a stub's signature line.
type FunctionSignature struct {
	ReturnType string
	ReturnKind Kind
	Name       string
	Params     []Param
}

// SignatureParseError reports a stub that could not be turned into a fully
// typed signature. It is never downgraded to a verdict.
type SignatureParseError struct {
	Stub   string
	Reason string
}

func (e *SignatureParseError) Error() string {
	if e.Stub == "" {
		return "signature parse error: " + e.Reason
	}
	return fmt.Sprintf("signature parse error: %s (stub %q)", e.Reason, e.Stub)
}

var (
	signaturePattern = regexp.MustCompile(`^(.+?)\s*\b([A-Za-z_]\w*)\s*\((.*)\)$`)
	paramPattern     = regexp.MustCompile(`^(.+?)[\s&*]*\b([A-Za-z_]\w*)\s*(\[\s*\])?$`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

var sequenceTokens = []string{"vector", "[]", "List", "list<", "array", "Array"}

var integerTypes = map[string]bool{
	"int": true, "long": true, "long long": true, "short": true,
	"unsigned": true, "unsigned int": true, "unsigned long": true, "unsigned long long": true,
	"long int": true, "long long int": true, "size_t": true,
	"int32_t": true, "int64_t": true, "uint32_t": true, "uint64_t": true,
	"Integer": true, "Long": true, "Short": true, "byte": true, "Byte": true,
}

var floatTypes = map[string]bool{
	"double": true, "float": true, "long double": true, "Double": true, "Float": true,
}

var stringTypes = map[string]bool{
	"string": true, "std::string": true, "String": true,
}

// typeModifiers may precede a declaration in any order, e.g. "public static final".
var typeModifiers = []string{"public", "private", "protected", "static", "final", "const", "inline", "constexpr"}

// reserved words that can never be a parameter name; seeing one means the
// parameter had a type but no name.
var typeWords = map[string]bool{
	"int": true, "long": true, "short": true, "unsigned": true, "signed": true,
	"char": true, "double": true, "float": true, "bool": true, "boolean": true,
	"void": true, "auto": true, "string": true, "String": true,
}

// ParseSignature parses the first line of stub, up to the opening brace, as
//
//	returnType functionName(paramType1 paramName1, paramType2 paramName2, ...)
//
// It either returns a signature with every parameter typed and named or a
// *SignatureParseError.
func ParseSignature(stub string) (*FunctionSignature, error) {
	line := signatureLine(stub)
	if line == "" {
		return nil, &SignatureParseError{Stub: stub, Reason: "empty stub"}
	}
	m := signaturePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, &SignatureParseError{Stub: line, Reason: "signature does not match returnType name(params)"}
	}

	retType := cleanType(m[1])
	if retType == "" {
		return nil, &SignatureParseError{Stub: line, Reason: "missing return type"}
	}
	sig := &FunctionSignature{
		ReturnType: retType,
		ReturnKind: classify(retType),
		Name:       m[2],
	}

	parts, err := splitParams(m[3])
	if err != nil {
		return nil, &SignatureParseError{Stub: line, Reason: err.Error()}
	}
	for i, part := range parts {
		p, err := parseParam(part)
		if err != nil {
			return nil, &SignatureParseError{Stub: line, Reason: fmt.Sprintf("parameter %d: %v", i+1, err)}
		}
		sig.Params = append(sig.Params, p)
	}
	return sig, nil
}

func signatureLine(stub string) string {
	s := strings.TrimSpace(stub)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '{'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ";")
	return strings.TrimSpace(s)
}

// splitParams splits on commas that are not nested inside <>, () or [].
func splitParams(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q at offset %d", r, i)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in parameter list")
	}
	return append(parts, s[start:]), nil
}

func parseParam(raw string) (Param, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "const ")
	s = strings.TrimPrefix(s, "final ")
	if s == "" {
		return Param{}, fmt.Errorf("empty parameter")
	}
	m := paramPattern.FindStringSubmatch(s)
	if m == nil {
		return Param{}, fmt.Errorf("%q has no name", s)
	}
	typ, name := cleanType(m[1]), m[2]
	if typ == "" || typeWords[name] {
		return Param{}, fmt.Errorf("%q has no name", s)
	}
	if m[3] != "" {
		typ += "[]"
	}
	return Param{Type: typ, Name: name, Kind: classify(typ)}, nil
}

// cleanType drops qualifiers and reference/pointer markers and collapses
// inner whitespace.
func cleanType(t string) string {
	t = strings.TrimSpace(t)
	for stripped := true; stripped; {
		stripped = false
		for _, mod := range typeModifiers {
			if rest, ok := strings.CutPrefix(t, mod); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
				t, stripped = strings.TrimSpace(rest), true
			}
		}
	}
	t = strings.TrimRight(t, "&* \t")
	t = strings.TrimLeft(t, "&* \t")
	return spacePattern.ReplaceAllString(t, " ")
}

func classify(t string) Kind {
	for _, tok := range sequenceTokens {
		if strings.Contains(t, tok) {
			return KindIntSequence
		}
	}
	bare := strings.TrimPrefix(t, "std::")
	switch {
	case t == "void":
		return KindVoid
	case integerTypes[bare]:
		return KindInteger
	case floatTypes[bare]:
		return KindFloat
	case stringTypes[t] || stringTypes[bare]:
		return KindString
	}
	return KindUnsupported
}
