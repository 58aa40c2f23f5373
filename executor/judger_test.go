package executor

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/to404hanga/online_judge_engine/executor/materializer"
	"github.com/to404hanga/online_judge_engine/executor/service"
	"github.com/to404hanga/online_judge_engine/executor/sweeper"
	"github.com/to404hanga/online_judge_engine/executor/workspace"
	"github.com/to404hanga/online_judge_engine/model"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

// fakeExecutor answers Execute from a script keyed by input and records
// every call.
type fakeExecutor struct {
	mu         sync.Mutex
	compileOK  bool
	compileErr error
	outcomes   map[string]*service.Outcome
	executeErr error

	compiles   int
	executed   []string
	workspaces []string
}

func (f *fakeExecutor) Compile(ctx context.Context, ws *workspace.Workspace, prog *materializer.Program) (*service.CompileResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compiles++
	f.workspaces = append(f.workspaces, ws.Path)
	if f.compileErr != nil {
		return nil, f.compileErr
	}
	if _, err := os.Stat(ws.File(prog.FileName)); err != nil {
		return nil, err
	}
	if !f.compileOK {
		return &service.CompileResult{Success: false, ErrorMessage: "main.cpp:1: error: expected ';'"}, nil
	}
	return &service.CompileResult{Success: true, OutputPath: ws.File(workspace.BinaryFileName)}, nil
}

func (f *fakeExecutor) Execute(ctx context.Context, ws *workspace.Workspace, prog *materializer.Program, input string, timeLimit time.Duration) (*service.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, input)
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	if out, ok := f.outcomes[input]; ok {
		return out, nil
	}
	return &service.Outcome{Stage: service.StageRun, ExitStatus: service.ExitOK, Stdout: input}, nil
}

func (f *fakeExecutor) Close(ctx context.Context) error { return nil }

func newTestJudger(t *testing.T, f *fakeExecutor) (Judger, *workspace.Manager) {
	t.Helper()
	l := loggerv2.GetGlobalLogger()
	m, err := workspace.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return NewJudger(l, f, m, sweeper.New(l, m, time.Hour, time.Hour)), m
}

func assertNoWorkspaces(t *testing.T, m *workspace.Manager) {
	t.Helper()
	entries, err := os.ReadDir(m.Root())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("%d workspaces left behind", len(entries))
	}
}

func cases(pairs ...string) []model.TestCase {
	var tcs []model.TestCase
	for i := 0; i+1 < len(pairs); i += 2 {
		tcs = append(tcs, model.TestCase{Input: pairs[i], ExpectedOutput: pairs[i+1]})
	}
	return tcs
}

func judgeTask(tcs []model.TestCase) *JudgeTask {
	return &JudgeTask{
		SubmissionID: 1,
		Language:     model.LanguageCPP,
		Code:         "#include <iostream>\nint main() {}\n",
		TestCases:    tcs,
		TimeLimit:    time.Second,
	}
}

func TestJudgeVerdicts(t *testing.T) {
	killed := &service.Outcome{Stage: service.StageRun, ExitStatus: service.ExitKilled, WallTime: time.Second}
	crashed := &service.Outcome{Stage: service.StageRun, ExitStatus: service.ExitNonzero, ExitCode: 139, Stderr: "segfault"}
	wrong := &service.Outcome{Stage: service.StageRun, ExitStatus: service.ExitOK, Stdout: "42\n"}

	tests := []struct {
		name       string
		outcomes   map[string]*service.Outcome
		tcs        []model.TestCase
		want       model.Verdict
		failedCase int
		passed     int
		executed   int
	}{
		{
			name:       "all accepted",
			tcs:        cases("[1, 2]", "1,2", "3", "3"),
			want:       model.VerdictAccepted,
			failedCase: -1,
			passed:     2,
			executed:   2,
		},
		{
			name:       "wrong answer stops at first mismatch",
			outcomes:   map[string]*service.Outcome{"b": wrong},
			tcs:        cases("a", "a", "b", "b", "c", "c"),
			want:       model.VerdictWrongAnswer,
			failedCase: 1,
			passed:     1,
			executed:   2,
		},
		{
			name:       "killed is time limit exceeded",
			outcomes:   map[string]*service.Outcome{"a": killed},
			tcs:        cases("a", "a", "b", "b"),
			want:       model.VerdictTimeLimitExceeded,
			failedCase: 0,
			executed:   1,
		},
		{
			name:       "nonzero exit is runtime error",
			outcomes:   map[string]*service.Outcome{"c": crashed},
			tcs:        cases("a", "a", "b", "b", "c", "c"),
			want:       model.VerdictRuntimeError,
			failedCase: 2,
			passed:     2,
			executed:   3,
		},
		{
			name:       "first failure decides",
			outcomes:   map[string]*service.Outcome{"a": crashed, "b": killed},
			tcs:        cases("a", "a", "b", "b"),
			want:       model.VerdictRuntimeError,
			failedCase: 0,
			executed:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeExecutor{compileOK: true, outcomes: tt.outcomes}
			j, m := newTestJudger(t, f)

			res, err := j.Judge(context.Background(), judgeTask(tt.tcs))
			if err != nil {
				t.Fatalf("Judge: %v", err)
			}
			if res.Verdict != tt.want {
				t.Errorf("verdict = %s, want %s", res.Verdict, tt.want)
			}
			if res.FailedCase != tt.failedCase {
				t.Errorf("failed case = %d, want %d", res.FailedCase, tt.failedCase)
			}
			if res.PassedCases != tt.passed {
				t.Errorf("passed = %d, want %d", res.PassedCases, tt.passed)
			}
			if len(f.executed) != tt.executed {
				t.Errorf("executed %d cases, want %d", len(f.executed), tt.executed)
			}
			if f.compiles != 1 {
				t.Errorf("compiled %d times, want 1", f.compiles)
			}
			if res.LastOutcome == nil {
				t.Error("missing last outcome")
			}
			assertNoWorkspaces(t, m)
		})
	}
}

func TestJudgeCompilationError(t *testing.T) {
	f := &fakeExecutor{compileOK: false}
	j, m := newTestJudger(t, f)

	res, err := j.Judge(context.Background(), judgeTask(cases("1", "1")))
	if err != nil {
		t.Fatalf("Judge: %v", err)
	}
	if res.Verdict != model.VerdictCompilationError {
		t.Fatalf("verdict = %s", res.Verdict)
	}
	if len(f.executed) != 0 {
		t.Errorf("executed %d cases after a compile failure", len(f.executed))
	}
	if res.LastOutcome.Stage != service.StageCompile || !strings.Contains(res.LastOutcome.Stderr, "expected ';'") {
		t.Errorf("compile outcome = %+v", res.LastOutcome)
	}
	assertNoWorkspaces(t, m)
}

func TestJudgeSignatureErrorBeforeAnyWork(t *testing.T) {
	f := &fakeExecutor{compileOK: true}
	j, m := newTestJudger(t, f)

	task := judgeTask(cases("1", "1"))
	task.Stubs = map[model.Language]string{model.LanguageCPP: "class Solution {"}
	_, err := j.Judge(context.Background(), task)

	var spe *materializer.SignatureParseError
	if !errors.As(err, &spe) {
		t.Fatalf("err = %v, want *SignatureParseError", err)
	}
	if f.compiles != 0 || len(f.workspaces) != 0 {
		t.Errorf("compiler invoked for an unparseable stub")
	}
	assertNoWorkspaces(t, m)
}

func TestJudgeInvalidTask(t *testing.T) {
	f := &fakeExecutor{compileOK: true}
	j, _ := newTestJudger(t, f)

	for name, task := range map[string]*JudgeTask{
		"no cases":      judgeTask(nil),
		"bad language":  {Language: "brainfuck", TestCases: cases("1", "1"), TimeLimit: time.Second},
		"no time limit": {Language: model.LanguageCPP, TestCases: cases("1", "1")},
	} {
		if _, err := j.Judge(context.Background(), task); !errors.Is(err, ErrInvalidTask) {
			t.Errorf("%s: err = %v, want ErrInvalidTask", name, err)
		}
	}
	if f.compiles != 0 {
		t.Errorf("compiled an invalid task")
	}
}

func TestJudgeInfrastructureError(t *testing.T) {
	boom := errors.New("docker daemon gone")
	for name, f := range map[string]*fakeExecutor{
		"compile": {compileErr: boom},
		"execute": {compileOK: true, executeErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			j, m := newTestJudger(t, f)
			res, err := j.Judge(context.Background(), judgeTask(cases("1", "1")))
			var ie *InfrastructureError
			if !errors.As(err, &ie) || !errors.Is(err, boom) {
				t.Fatalf("err = %v, want InfrastructureError wrapping %v", err, boom)
			}
			if res != nil {
				t.Errorf("got a result alongside an infrastructure error: %+v", res)
			}
			assertNoWorkspaces(t, m)
		})
	}
}

func TestJudgeAggregatesMaxTimeAndMemory(t *testing.T) {
	f := &fakeExecutor{compileOK: true, outcomes: map[string]*service.Outcome{
		"a": {ExitStatus: service.ExitOK, Stdout: "a", WallTime: 30 * time.Millisecond, MemoryUsedKB: 900},
		"b": {ExitStatus: service.ExitOK, Stdout: "b", WallTime: 80 * time.Millisecond, MemoryUsedKB: 400},
	}}
	j, _ := newTestJudger(t, f)
	res, err := j.Judge(context.Background(), judgeTask(cases("a", "a", "b", "b")))
	if err != nil {
		t.Fatalf("Judge: %v", err)
	}
	if res.TimeUsed != 80*time.Millisecond || res.MemoryUsedKB != 900 {
		t.Errorf("time = %s memory = %d", res.TimeUsed, res.MemoryUsedKB)
	}
}

func TestRunReturnsOutcome(t *testing.T) {
	f := &fakeExecutor{compileOK: true}
	j, m := newTestJudger(t, f)

	out, err := j.Run(context.Background(), &RunTask{
		Language:  model.LanguageCPP,
		Code:      "#include <iostream>\nint main() {}\n",
		Input:     "7 8",
		TimeLimit: time.Second,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Stdout != "7 8" || out.Stage != service.StageRun {
		t.Errorf("outcome = %+v", out)
	}

	f.compileOK = false
	out, err = j.Run(context.Background(), &RunTask{Language: model.LanguageCPP, Code: "x", TimeLimit: time.Second})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Stage != service.StageCompile || out.ExitStatus != service.ExitNonzero {
		t.Errorf("compile failure outcome = %+v", out)
	}
	assertNoWorkspaces(t, m)
}
