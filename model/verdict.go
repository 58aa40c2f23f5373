package model

// Verdict is the terminal judgment of one submission.
type Verdict string

const (
	VerdictAccepted          Verdict = "Accepted"
	VerdictWrongAnswer       Verdict = "Wrong Answer"
	VerdictTimeLimitExceeded Verdict = "Time Limit Exceeded"
	VerdictCompilationError  Verdict = "Compilation Error"
	VerdictRuntimeError      Verdict = "Runtime Error"
)

func (v Verdict) String() string {
	return string(v)
}

// Accepted reports whether v is the only passing verdict.
func (v Verdict) Accepted() bool {
	return v == VerdictAccepted
}
