package model

// TestCase is one input/expected-output pair of a problem. The engine only
// reads it.
type TestCase struct {
	Input          string `json:"input" yaml:"input"`
	ExpectedOutput string `json:"output" yaml:"output"`
	Sample         bool   `json:"sample" yaml:"sample"`
}
