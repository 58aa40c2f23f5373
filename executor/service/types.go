package service

import (
	"context"
	"time"

	"github.com/to404hanga/online_judge_engine/executor/materializer"
	"github.com/to404hanga/online_judge_engine/executor/workspace"
)

type Stage string

const (
	StageCompile Stage = "compile"
	StageRun     Stage = "run"
)

type ExitStatus int

const (
	ExitOK ExitStatus = iota
	ExitNonzero
	ExitKilled // 超时被强制终止
)

func (s ExitStatus) String() string {
	switch s {
	case ExitOK:
		return "ok"
	case ExitNonzero:
		return "nonzero"
	case ExitKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// Outcome is the observable result of one compile or run step.
type Outcome struct {
	Stage        Stage
	Stdout       string
	Stderr       string
	ExitStatus   ExitStatus
	ExitCode     int
	WallTime     time.Duration
	MemoryUsedKB int64 // 0 when the strategy cannot measure it
}

type CompileResult struct {
	Success      bool
	ErrorMessage string // Stderr from compiler
	OutputPath   string // Path to the compiled artifact
	WallTime     time.Duration
}

// Executor compiles and runs a materialized program inside a workspace.
// Compile failures and program misbehavior are reported in the results;
// a returned error always means the sandbox itself failed.
type Executor interface {
	Compile(ctx context.Context, ws *workspace.Workspace, prog *materializer.Program) (*CompileResult, error)
	Execute(ctx context.Context, ws *workspace.Workspace, prog *materializer.Program, input string, timeLimit time.Duration) (*Outcome, error)
	Close(ctx context.Context) error
}
