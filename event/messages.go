package event

import "github.com/to404hanga/online_judge_engine/model"

// Mode distinguishes a full judge from a single ad-hoc run.
type Mode string

const (
	ModeJudge Mode = "judge"
	ModeRun   Mode = "run"
)

// SubmissionEvent is published on the submission topic when a user submits
// or runs code. The dispatcher loads the rest from the database.
type SubmissionEvent struct {
	SubmissionID uint64 `json:"submissionId"`
	Mode         Mode   `json:"mode,omitempty"`
	Input        string `json:"input,omitempty"` // run mode only
}

// JudgeTaskMessage is the self-contained task pushed onto the judge stream.
type JudgeTaskMessage struct {
	SubmissionID uint64                    `json:"submissionId"`
	Mode         Mode                      `json:"mode"`
	Language     model.Language            `json:"language"`
	Code         string                    `json:"code"`
	Stubs        map[model.Language]string `json:"stubs,omitempty"`
	TestCases    []model.TestCase          `json:"testCases,omitempty"`
	Input        string                    `json:"input,omitempty"`
	TimeLimitMs  int64                     `json:"timeLimitMs"`
}

// JudgeResultMessage is published by the worker for every task it finishes,
// including tasks that ended in an error instead of a verdict.
type JudgeResultMessage struct {
	SubmissionID uint64        `json:"submissionId"`
	Mode         Mode          `json:"mode"`
	Verdict      model.Verdict `json:"verdict,omitempty"`
	Output       string        `json:"output,omitempty"`
	Stderr       string        `json:"stderr,omitempty"`
	FailedCase   int           `json:"failedCase"`
	PassedCases  int           `json:"passedCases"`
	TimeUsedMs   int64         `json:"timeUsedMs"`
	MemoryUsedKB int64         `json:"memoryUsedKB"`
	Error        string        `json:"error,omitempty"` // 非空表示判题失败, 没有 verdict
}
