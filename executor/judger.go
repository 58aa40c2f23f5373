package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	ojconfig "github.com/to404hanga/online_judge_engine/config"
	"github.com/to404hanga/online_judge_engine/executor/checker"
	"github.com/to404hanga/online_judge_engine/executor/config"
	"github.com/to404hanga/online_judge_engine/executor/materializer"
	"github.com/to404hanga/online_judge_engine/executor/service"
	"github.com/to404hanga/online_judge_engine/executor/sweeper"
	"github.com/to404hanga/online_judge_engine/executor/workspace"
	"github.com/to404hanga/online_judge_engine/model"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

// JudgeTask asks for a verdict over an ordered list of test cases.
type JudgeTask struct {
	SubmissionID uint64
	Language     model.Language
	Code         string
	Stubs        map[model.Language]string
	TestCases    []model.TestCase
	TimeLimit    time.Duration // per test case
}

// RunTask asks for the raw outcome of one execution against a caller
// supplied input. No verdict is produced.
type RunTask struct {
	SubmissionID uint64
	Language     model.Language
	Code         string
	Stubs        map[model.Language]string
	Input        string
	TimeLimit    time.Duration
}

type JudgeResult struct {
	Verdict     model.Verdict
	LastOutcome *service.Outcome
	// FailedCase is the index of the first failing test case, -1 if none.
	FailedCase   int
	PassedCases  int
	TimeUsed     time.Duration // max across executed cases
	MemoryUsedKB int64         // max across executed cases
}

type Judger interface {
	Run(ctx context.Context, task *RunTask) (*service.Outcome, error)
	Judge(ctx context.Context, task *JudgeTask) (*JudgeResult, error)
	Close(ctx context.Context) error
}

type judger struct {
	log      loggerv2.Logger
	executor service.Executor
	manager  *workspace.Manager
	sweeper  *sweeper.Sweeper
}

var _ Judger = (*judger)(nil)

func NewJudger(log loggerv2.Logger, executor service.Executor, manager *workspace.Manager, sweeper *sweeper.Sweeper) Judger {
	return &judger{
		log:      log,
		executor: executor,
		manager:  manager,
		sweeper:  sweeper,
	}
}

// NewExecutor builds the sandbox selected by cfg.Strategy. This is the only
// place the strategy is looked at.
func NewExecutor(log loggerv2.Logger, cfg ojconfig.JudgeConfig, manager *workspace.Manager) (service.Executor, error) {
	switch cfg.Strategy {
	case ojconfig.StrategyHost, "":
		return service.NewHostExecutor(log, cfg.CompileTimeoutSeconds), nil
	case ojconfig.StrategyDocker:
		return service.NewDockerExecutor(log, cfg, manager.Root())
	default:
		return nil, fmt.Errorf("unknown judge strategy %q", cfg.Strategy)
	}
}

func (j *judger) Judge(ctx context.Context, task *JudgeTask) (res *JudgeResult, err error) {
	if err := validate(task.Language, task.TimeLimit); err != nil {
		return nil, err
	}
	if len(task.TestCases) == 0 {
		return nil, fmt.Errorf("%w: no test cases", ErrInvalidTask)
	}

	ctx = loggerv2.ContextWithFields(ctx, logger.Uint64("submissionID", task.SubmissionID), logger.String("language", task.Language.String()))
	judgeInFlight.Inc()
	startAt := time.Now()
	defer func() {
		judgeInFlight.Dec()
		judgeDurationSeconds.WithLabelValues(task.Language.String()).Observe(time.Since(startAt).Seconds())
		j.observe(ctx, task.Language, res, err)
	}()

	sess, err := j.prepare(ctx, task.Language, task.Code, task.Stubs)
	if err != nil {
		return nil, err
	}
	defer sess.close(ctx)

	compiled, err := j.executor.Compile(ctx, sess.ws, sess.prog)
	if err != nil {
		return nil, infraErr("compile", err)
	}
	if !compiled.Success {
		return &JudgeResult{
			Verdict:     model.VerdictCompilationError,
			LastOutcome: compileOutcome(compiled),
			FailedCase:  -1,
		}, nil
	}

	res = &JudgeResult{FailedCase: -1}
	for i, tc := range task.TestCases {
		outcome, err := j.executor.Execute(ctx, sess.ws, sess.prog, tc.Input, task.TimeLimit)
		if err != nil {
			return nil, infraErr(fmt.Sprintf("execute case %d", i), err)
		}
		res.LastOutcome = outcome
		if outcome.WallTime > res.TimeUsed {
			res.TimeUsed = outcome.WallTime
		}
		if outcome.MemoryUsedKB > res.MemoryUsedKB {
			res.MemoryUsedKB = outcome.MemoryUsedKB
		}

		if verdict := classify(outcome, tc.ExpectedOutput); !verdict.Accepted() {
			res.Verdict = verdict
			res.FailedCase = i
			return res, nil
		}
		res.PassedCases++
	}
	res.Verdict = model.VerdictAccepted
	return res, nil
}

func (j *judger) Run(ctx context.Context, task *RunTask) (*service.Outcome, error) {
	if err := validate(task.Language, task.TimeLimit); err != nil {
		return nil, err
	}
	ctx = loggerv2.ContextWithFields(ctx, logger.Uint64("submissionID", task.SubmissionID), logger.String("language", task.Language.String()))

	sess, err := j.prepare(ctx, task.Language, task.Code, task.Stubs)
	if err != nil {
		return nil, err
	}
	defer sess.close(ctx)

	compiled, err := j.executor.Compile(ctx, sess.ws, sess.prog)
	if err != nil {
		return nil, infraErr("compile", err)
	}
	if !compiled.Success {
		return compileOutcome(compiled), nil
	}
	outcome, err := j.executor.Execute(ctx, sess.ws, sess.prog, task.Input, task.TimeLimit)
	if err != nil {
		return nil, infraErr("execute", err)
	}
	return outcome, nil
}

func (j *judger) Close(ctx context.Context) error {
	return j.executor.Close(ctx)
}

// session is one materialized program sitting in its own workspace.
type session struct {
	j    *judger
	ws   *workspace.Workspace
	prog *materializer.Program
}

// prepare materializes the source before anything touches the disk, so a
// bad stub never costs a workspace or a compiler run.
func (j *judger) prepare(ctx context.Context, lang model.Language, code string, stubs map[model.Language]string) (*session, error) {
	jobID := uuid.NewString()
	prog, err := materializer.Materialize(materializer.Request{
		Language: lang,
		Code:     code,
		Stubs:    stubs,
		JobID:    jobID,
	})
	if err != nil {
		if errors.Is(err, materializer.ErrUnsupportedLanguage) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
		return nil, err
	}

	ws, err := j.manager.CreateNamed(jobID)
	if err != nil {
		return nil, infraErr("create workspace", err)
	}
	sess := &session{j: j, ws: ws, prog: prog}
	if err := ws.WriteFile(prog.FileName, []byte(prog.Source)); err != nil {
		sess.close(ctx)
		return nil, infraErr("write source", err)
	}
	j.log.DebugContext(ctx, "workspace ready", logger.String("workspace", ws.ID), logger.String("file", prog.FileName))
	return sess, nil
}

func (s *session) close(ctx context.Context) {
	if err := s.j.sweeper.CleanupNow(s.ws.Path); err != nil {
		s.j.log.WarnContext(ctx, "cleanup workspace failed", logger.String("workspace", s.ws.ID), logger.Error(err))
	}
}

func (j *judger) observe(ctx context.Context, lang model.Language, res *JudgeResult, err error) {
	if err == nil {
		judgeVerdictTotal.WithLabelValues(lang.String(), res.Verdict.String()).Inc()
		j.log.InfoContext(ctx, "judge finished",
			logger.String("verdict", res.Verdict.String()),
			logger.Any("passedCases", res.PassedCases),
			logger.Any("failedCase", res.FailedCase))
		return
	}

	reason := "infrastructure"
	var spe *materializer.SignatureParseError
	switch {
	case errors.As(err, &spe):
		reason = "signature"
	case errors.Is(err, ErrInvalidTask):
		reason = "invalid_task"
	}
	judgeErrorTotal.WithLabelValues(lang.String(), reason).Inc()
	j.log.ErrorContext(ctx, "judge failed", logger.String("reason", reason), logger.Error(err))
}

func validate(lang model.Language, timeLimit time.Duration) error {
	if _, ok := config.LanguageConfigs[lang]; !ok {
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidTask, lang)
	}
	if timeLimit <= 0 {
		return fmt.Errorf("%w: time limit must be positive", ErrInvalidTask)
	}
	return nil
}

// classify maps the outcome of one test case to a verdict. Anything that is
// not Accepted stops the judge.
func classify(outcome *service.Outcome, expected string) model.Verdict {
	switch outcome.ExitStatus {
	case service.ExitKilled:
		return model.VerdictTimeLimitExceeded
	case service.ExitNonzero:
		return model.VerdictRuntimeError
	}
	if !checker.Equal(outcome.Stdout, expected) {
		return model.VerdictWrongAnswer
	}
	return model.VerdictAccepted
}

func compileOutcome(c *service.CompileResult) *service.Outcome {
	return &service.Outcome{
		Stage:      service.StageCompile,
		Stderr:     c.ErrorMessage,
		ExitStatus: service.ExitNonzero,
		ExitCode:   1,
		WallTime:   c.WallTime,
	}
}
