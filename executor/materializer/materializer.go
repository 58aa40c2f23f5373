// Package materializer turns a submission into the exact source text that
// is compiled: either the code itself or a harness around a function stub.
package materializer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/to404hanga/online_judge_engine/executor/config"
	"github.com/to404hanga/online_judge_engine/model"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

var dialects = map[model.Language]*dialect{
	model.LanguageCPP:  cppDialect,
	model.LanguageJava: javaDialect,
}

type Request struct {
	Language model.Language
	Code     string
	// Stubs holds the function signature stub per language. Nil means the
	// problem has no stubs and Code is taken as a program (or a legacy
	// C++ fragment).
	Stubs map[model.Language]string
	JobID string
}

// Program is a materialized source file ready to be written into a
// workspace.
type Program struct {
	Language  model.Language
	FileName  string
	ClassName string
	Source    string
	Signature *FunctionSignature // nil when no harness was generated
}

// Config returns the language table row of the program.
func (p *Program) Config() config.LanguageConfig {
	return config.LanguageConfigs[p.Language]
}

// Materialize builds the program for req. It never touches the filesystem.
func Materialize(req Request) (*Program, error) {
	cfg, ok := config.LanguageConfigs[req.Language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, req.Language)
	}
	if len(req.Stubs) == 0 {
		return materializeProgram(req, cfg), nil
	}

	stub, ok := req.Stubs[req.Language]
	if !ok || strings.TrimSpace(stub) == "" {
		return nil, &SignatureParseError{Reason: fmt.Sprintf("no stub for language %s", req.Language)}
	}
	d, ok := dialects[req.Language]
	if !ok {
		return nil, &SignatureParseError{Stub: signatureLine(stub), Reason: fmt.Sprintf("no harness generator for language %s", req.Language)}
	}
	sig, err := ParseSignature(stub)
	if err != nil {
		return nil, err
	}

	var className string
	if cfg.ClassDerived {
		className = ClassName(req.JobID)
	}
	return &Program{
		Language:  req.Language,
		FileName:  SourceFileName(cfg, className),
		ClassName: className,
		Source:    d.generate(sig, req.Code, className),
		Signature: sig,
	}, nil
}

func materializeProgram(req Request, cfg config.LanguageConfig) *Program {
	prog := &Program{Language: req.Language, Source: req.Code}
	if cfg.ClassDerived {
		prog.ClassName = defaultClassName
	}
	prog.FileName = SourceFileName(cfg, prog.ClassName)
	if req.Language == model.LanguageCPP && needsLegacyShim(req.Code) {
		prog.Source = legacyCPPSource(req.Code)
	}
	return prog
}
