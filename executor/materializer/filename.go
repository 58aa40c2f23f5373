package materializer

import (
	"regexp"

	"github.com/to404hanga/online_judge_engine/executor/config"
)

const defaultClassName = "Main"

var nonIdentifier = regexp.MustCompile(`[^A-Za-z0-9_]`)

// ClassName derives a valid class identifier from a job id, e.g.
// "3f2a-91" becomes "Class_3f2a_91".
func ClassName(jobID string) string {
	return "Class_" + nonIdentifier.ReplaceAllString(jobID, "_")
}

// SourceFileName returns the file name the source must be written under.
// Class-derived languages name the file after the entry class.
func SourceFileName(cfg config.LanguageConfig, className string) string {
	if cfg.ClassDerived && className != "" {
		return className + "." + cfg.Extension
	}
	return "main." + cfg.Extension
}
