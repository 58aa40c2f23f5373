package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
	"github.com/to404hanga/online_judge_engine/constants"
	"github.com/to404hanga/online_judge_engine/consumer"
	"github.com/to404hanga/online_judge_engine/event"
	"github.com/to404hanga/online_judge_engine/model"
	"github.com/to404hanga/pkg404/cachex/lru"
	"github.com/to404hanga/pkg404/gotools/retry"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"gorm.io/gorm"
)

const (
	JudgerMasterSubmissionGroupID = "judger_master_group"

	problemKey = "problem:%d"
)

// SubmissionService turns submission events into self-contained judge tasks
// on the Redis stream.
type SubmissionService struct {
	log      loggerv2.Logger
	consumer consumer.Consumer
	rdb      redis.Cmdable
	db       *gorm.DB
	lru      *lru.Cache
}

var (
	_ consumer.Consumer = (*SubmissionService)(nil)
)

func NewSubmissionService(log loggerv2.Logger, cg sarama.ConsumerGroup, rdb redis.Cmdable, db *gorm.DB, lru *lru.Cache) *SubmissionService {
	s := &SubmissionService{
		log: log,
		rdb: rdb,
		lru: lru,
		db:  db,
	}
	handler := consumer.NewGroupHandler(s.handleSubmission, log)
	c := consumer.NewSaramaConsumer(cg, constants.SubmissionTopic, handler, log)
	s.consumer = c
	return s
}

func (s *SubmissionService) Start(ctx context.Context) error {
	return s.consumer.Start(ctx)
}

func (s *SubmissionService) handleSubmission(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt event.SubmissionEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("failed to unmarshal submission: %w", err)
	}
	ctx = loggerv2.ContextWithFields(ctx, logger.Uint64("submissionID", evt.SubmissionID))

	var submission model.Submission
	err := s.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ?", evt.SubmissionID).
		Select("id", "problem_id", "code", "language").
		First(&submission).Error
	if err != nil {
		return fmt.Errorf("failed to get submission: %w", err)
	}

	problem, err := s.getProblem(ctx, submission.ProblemID)
	if err != nil {
		return err
	}

	task, err := buildTask(&evt, &submission, problem)
	if err != nil {
		return err
	}

	err = retry.Do(ctx, func() error {
		return s.db.WithContext(ctx).Model(&model.Submission{}).
			Where("id = ?", submission.ID).
			Update("status", model.SubmissionStatusJudging).Error
	}, retry.WithBaseInterval(time.Second))
	if err != nil {
		return fmt.Errorf("failed to mark submission judging: %w", err)
	}

	if err = enqueue(ctx, s.rdb, task); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "judge task dispatched", logger.String("mode", string(task.Mode)), logger.Any("testCases", len(task.TestCases)))
	return nil
}

func (s *SubmissionService) getProblem(ctx context.Context, problemID uint64) (*model.Problem, error) {
	lruKey := fmt.Sprintf(problemKey, problemID)
	if problemAny, ok := s.lru.Get(lruKey); ok {
		if p, ok := problemAny.(*model.Problem); ok {
			return p, nil
		}
	}

	var problem model.Problem
	err := s.db.WithContext(ctx).Model(&model.Problem{}).
		Where("id = ?", problemID).
		Select("id", "time_limit", "memory_limit", "code_stubs", "test_cases").
		First(&problem).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}
	s.lru.Add(lruKey, &problem)
	return &problem, nil
}

// buildTask assembles the stream payload. A run without explicit input uses
// the problem's first test case.
func buildTask(evt *event.SubmissionEvent, submission *model.Submission, problem *model.Problem) (*event.JudgeTaskMessage, error) {
	mode := evt.Mode
	if mode == "" {
		mode = event.ModeJudge
	}
	task := &event.JudgeTaskMessage{
		SubmissionID: submission.ID,
		Mode:         mode,
		Language:     submission.Language,
		Code:         submission.Code,
		Stubs:        problem.CodeStubs,
		TimeLimitMs:  (time.Duration(problem.TimeLimit) * time.Second).Milliseconds(),
	}
	switch mode {
	case event.ModeJudge:
		task.TestCases = problem.TestCases
	case event.ModeRun:
		task.Input = evt.Input
		if task.Input == "" && len(problem.TestCases) > 0 {
			task.Input = problem.TestCases[0].Input
		}
	default:
		return nil, fmt.Errorf("unknown submission mode %q", mode)
	}
	return task, nil
}

func enqueue(ctx context.Context, rdb redis.Cmdable, task *event.JudgeTaskMessage) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal judge task: %w", err)
	}
	err = rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: constants.JudgeTaskKey,
		Values: map[string]any{
			"task": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add judge task to stream: %w", err)
	}
	return nil
}
