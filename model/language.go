package model

import (
	"fmt"
	"strings"
)

// Language identifies the toolchain a submission is judged with.
type Language string

const (
	LanguageCPP    Language = "cpp"
	LanguageC      Language = "c"
	LanguageJava   Language = "java"
	LanguagePython Language = "python"
	LanguageGo     Language = "go"
)

var languageAliases = map[string]Language{
	"cpp":     LanguageCPP,
	"c++":     LanguageCPP,
	"cxx":     LanguageCPP,
	"c":       LanguageC,
	"java":    LanguageJava,
	"python":  LanguagePython,
	"python3": LanguagePython,
	"py":      LanguagePython,
	"go":      LanguageGo,
	"golang":  LanguageGo,
}

// ParseLanguage maps a user supplied language name onto a Language.
func ParseLanguage(s string) (Language, error) {
	lang, ok := languageAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported language: %q", s)
	}
	return lang, nil
}

func (l Language) String() string {
	return string(l)
}
