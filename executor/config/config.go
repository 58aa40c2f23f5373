package config

import (
	"strings"

	"github.com/to404hanga/online_judge_engine/model"
)

// LanguageConfig defines the commands and settings for a specific language.
//
// Commands are templates expanded per job:
//
//	{dir}   workspace directory as seen by the toolchain
//	{src}   source file path
//	{bin}   compiled binary path
//	{class} entry class name (class-derived languages only)
type LanguageConfig struct {
	ImageName    string
	Extension    string
	ClassDerived bool // 源文件名由类名决定, 如 Java
	BuildCommand []string
	RunCommand   []string
}

// Compiled reports whether the language has a separate build step.
func (c LanguageConfig) Compiled() bool {
	return len(c.BuildCommand) > 0
}

var LanguageConfigs = map[model.Language]LanguageConfig{
	model.LanguageCPP: {
		ImageName:    "judge-cpp:latest",
		Extension:    "cpp",
		BuildCommand: []string{"g++", "-std=c++17", "-O2", "-o", "{bin}", "{src}"},
		RunCommand:   []string{"{bin}"},
	},
	model.LanguageC: {
		ImageName:    "judge-c:latest",
		Extension:    "c",
		BuildCommand: []string{"gcc", "-std=c17", "-O2", "-o", "{bin}", "{src}", "-lm"},
		RunCommand:   []string{"{bin}"},
	},
	model.LanguageJava: {
		ImageName:    "judge-java:latest",
		Extension:    "java",
		ClassDerived: true,
		BuildCommand: []string{"javac", "-d", "{dir}", "{src}"},
		RunCommand:   []string{"java", "-cp", "{dir}", "{class}"},
	},
	model.LanguagePython: {
		ImageName:  "judge-python:latest",
		Extension:  "py",
		RunCommand: []string{"python3", "{src}"}, // Interpreted language
	},
	model.LanguageGo: {
		ImageName:    "judge-go:latest",
		Extension:    "go",
		BuildCommand: []string{"go", "build", "-o", "{bin}", "{src}"},
		RunCommand:   []string{"{bin}"},
	},
}

// Expand substitutes the job placeholders into a command template.
func Expand(cmd []string, dir, src, bin, class string) []string {
	r := strings.NewReplacer("{dir}", dir, "{src}", src, "{bin}", bin, "{class}", class)
	out := make([]string, len(cmd))
	for i, arg := range cmd {
		out[i] = r.Replace(arg)
	}
	return out
}
