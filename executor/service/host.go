package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/to404hanga/online_judge_engine/executor/config"
	"github.com/to404hanga/online_judge_engine/executor/materializer"
	"github.com/to404hanga/online_judge_engine/executor/workspace"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

// waitDelay bounds how long Wait keeps draining pipes after the process is
// gone. A child that left the process group can hold them open forever.
const waitDelay = 200 * time.Millisecond

// HostExecutor runs the toolchain directly on the worker host with
// os/exec. Isolation is limited to a private workspace, a process group
// and wall-clock limits.
type HostExecutor struct {
	log            loggerv2.Logger
	compileTimeout time.Duration
}

var _ Executor = (*HostExecutor)(nil)

func NewHostExecutor(log loggerv2.Logger, compileTimeoutSeconds int) *HostExecutor {
	if compileTimeoutSeconds <= 0 {
		compileTimeoutSeconds = 10
	}
	return &HostExecutor{
		log:            log,
		compileTimeout: time.Duration(compileTimeoutSeconds) * time.Second,
	}
}

func (e *HostExecutor) Compile(ctx context.Context, ws *workspace.Workspace, prog *materializer.Program) (*CompileResult, error) {
	cfg := prog.Config()
	src := ws.File(prog.FileName)
	if !cfg.Compiled() {
		return &CompileResult{Success: true, OutputPath: src}, nil
	}

	bin := ws.File(workspace.BinaryFileName)
	args := config.Expand(cfg.BuildCommand, ws.Path, src, bin, prog.ClassName)

	compileCtx, cancel := context.WithTimeout(ctx, e.compileTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(compileCtx, args[0], args[1:]...)
	cmd.Dir = ws.Path
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }

	startAt := time.Now()
	err := cmd.Run()
	elapsed := time.Since(startAt)

	if errors.Is(err, exec.ErrNotFound) {
		return nil, fmt.Errorf("compiler %s not available: %w", args[0], err)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("compile interrupted: %w", ctx.Err())
	}
	if compileCtx.Err() == context.DeadlineExceeded {
		e.log.WarnContext(ctx, "compile timed out", logger.String("workspace", ws.ID))
		return &CompileResult{
			Success:      false,
			ErrorMessage: fmt.Sprintf("compilation timed out after %s", e.compileTimeout),
			WallTime:     elapsed,
		}, nil
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("run compiler failed: %w", err)
	}
	// 编译器向 stderr 输出任何内容都视为编译失败
	if err != nil || stderr.Len() > 0 {
		msg := stderr.String()
		if msg == "" {
			msg = stdout.String()
		}
		return &CompileResult{Success: false, ErrorMessage: msg, WallTime: elapsed}, nil
	}

	out := bin
	if cfg.ClassDerived {
		out = ws.Path
	}
	return &CompileResult{Success: true, OutputPath: out, WallTime: elapsed}, nil
}

func (e *HostExecutor) Execute(ctx context.Context, ws *workspace.Workspace, prog *materializer.Program, input string, timeLimit time.Duration) (*Outcome, error) {
	if err := ws.WriteFile(workspace.InputFileName, []byte(input)); err != nil {
		return nil, err
	}
	stdin, err := os.Open(ws.File(workspace.InputFileName))
	if err != nil {
		return nil, fmt.Errorf("open input failed: %w", err)
	}
	defer stdin.Close()
	stdout, err := os.Create(ws.File(workspace.OutputFileName))
	if err != nil {
		return nil, fmt.Errorf("create output failed: %w", err)
	}
	defer stdout.Close()
	// stderr 也落盘, 不经过管道, 逃逸出进程组的子进程无法拖住 Wait
	stderr, err := os.Create(ws.File(workspace.ErrorFileName))
	if err != nil {
		return nil, fmt.Errorf("create stderr file failed: %w", err)
	}
	defer stderr.Close()

	cfg := prog.Config()
	args := config.Expand(cfg.RunCommand, ws.Path, ws.File(prog.FileName), ws.File(workspace.BinaryFileName), prog.ClassName)

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = ws.Path
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	var (
		killed atomic.Bool
		once   sync.Once
	)
	terminate := func() {
		once.Do(func() {
			killed.Store(true)
			if err := killProcessGroup(cmd); err != nil {
				e.log.WarnContext(ctx, "kill process group failed", logger.Error(err))
			}
		})
	}

	runCtx, cancel := context.WithTimeout(ctx, timeLimit)
	defer cancel()

	startAt := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start program failed: %w", err)
	}
	// 独立于 context 的第二道超时, 两者都汇聚到同一个 terminate
	timer := time.AfterFunc(timeLimit, terminate)
	defer timer.Stop()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-runCtx.Done():
		terminate()
		waitErr = <-done
	}
	elapsed := time.Since(startAt)

	if ctx.Err() != nil {
		return nil, fmt.Errorf("run interrupted: %w", ctx.Err())
	}

	outcome := &Outcome{
		Stage:        StageRun,
		WallTime:     elapsed,
		MemoryUsedKB: peakRSSKB(cmd),
	}
	var exitErr *exec.ExitError
	switch {
	case killed.Load():
		outcome.ExitStatus = ExitKilled
		outcome.ExitCode = -1
	case waitErr == nil:
		outcome.ExitStatus = ExitOK
	case errors.As(waitErr, &exitErr):
		outcome.ExitStatus = ExitNonzero
		outcome.ExitCode = exitErr.ExitCode()
	case errors.Is(waitErr, exec.ErrWaitDelay):
		// 主进程已正常退出, 只是有子进程还占着某个描述符
		outcome.ExitStatus = ExitOK
	default:
		return nil, fmt.Errorf("wait program failed: %w", waitErr)
	}

	if err := stdout.Sync(); err != nil {
		e.log.WarnContext(ctx, "sync output failed", logger.Error(err))
	}
	if outcome.Stdout, err = readOutput(ws.File(workspace.OutputFileName)); err != nil {
		return nil, err
	}
	if outcome.Stderr, err = readOutput(ws.File(workspace.ErrorFileName)); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (e *HostExecutor) Close(ctx context.Context) error {
	return nil
}
