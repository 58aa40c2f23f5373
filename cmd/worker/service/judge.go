package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/to404hanga/online_judge_engine/constants"
	"github.com/to404hanga/online_judge_engine/event"
	"github.com/to404hanga/online_judge_engine/executor"
	"github.com/to404hanga/online_judge_engine/executor/materializer"
	"github.com/to404hanga/online_judge_engine/executor/sweeper"
	"github.com/to404hanga/pkg404/gotools/retry"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

const (
	groupName  = constants.JudgeTaskGroup
	taskField  = "task"
	claimBatch = 10
)

type JudgeService struct {
	log          loggerv2.Logger
	rdb          redis.Cmdable
	judger       executor.Judger
	sweeper      *sweeper.Sweeper
	producer     event.Producer
	consumerName string
	resultTopic  string
	claimIdle    time.Duration
	readBlock    time.Duration
	lastClaim    time.Time
}

func NewJudgeService(log loggerv2.Logger, rdb redis.Cmdable, judger executor.Judger, sw *sweeper.Sweeper, producer event.Producer,
	xAutoClaimTimeoutMinutes, readBlockSeconds int, resultTopic string) *JudgeService {
	hostname, err := os.Hostname()
	if err != nil {
		log.Error("failed to get hostname", logger.Error(err))
		panic(err)
	}
	if xAutoClaimTimeoutMinutes <= 0 {
		xAutoClaimTimeoutMinutes = 10
	}
	if readBlockSeconds <= 0 {
		readBlockSeconds = 1
	}
	if resultTopic == "" {
		resultTopic = constants.JudgeResultTopic
	}
	return &JudgeService{
		log:          log,
		rdb:          rdb,
		judger:       judger,
		sweeper:      sw,
		producer:     producer,
		consumerName: fmt.Sprintf("%s-%d", hostname, time.Now().UnixNano()),
		resultTopic:  resultTopic,
		claimIdle:    time.Duration(xAutoClaimTimeoutMinutes) * time.Minute,
		readBlock:    time.Duration(readBlockSeconds) * time.Second,
	}
}

func (s *JudgeService) Start(ctx context.Context) error {
	s.log.InfoContext(ctx, "Starting judger service",
		logger.String("group", groupName),
		logger.String("consumer", s.consumerName))

	err := s.rdb.XGroupCreateMkStream(ctx, constants.JudgeTaskKey, groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	go s.sweeper.Start(ctx)
	defer func() {
		if err := s.judger.Close(context.WithoutCancel(ctx)); err != nil {
			s.log.ErrorContext(ctx, "failed to close judger", logger.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if time.Since(s.lastClaim) >= s.claimIdle/2 {
			s.reclaim(ctx)
		}

		streamMsg, err := s.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    groupName,
			Consumer: s.consumerName,
			Streams:  []string{constants.JudgeTaskKey, ">"}, // > 表示只接收新消息
			Count:    1,                                     // 每次读取 1 条消息
			Block:    s.readBlock,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			s.log.ErrorContext(ctx, "failed to read stream message", logger.Error(err))
			time.Sleep(100 * time.Millisecond) // 出错稍作等待
			continue
		}

		for _, stream := range streamMsg {
			for _, msg := range stream.Messages {
				s.log.InfoContext(ctx, "Received message", logger.String("id", msg.ID))
				if err = s.processMessage(ctx, &msg); err != nil {
					s.log.ErrorContext(ctx, "failed to process message", logger.String("id", msg.ID), logger.Error(err))
				}
			}
		}
	}
}

// reclaim takes over messages another worker read but never acknowledged,
// typically because it crashed mid-judge.
func (s *JudgeService) reclaim(ctx context.Context) {
	s.lastClaim = time.Now()
	msgs, _, err := s.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   constants.JudgeTaskKey,
		Group:    groupName,
		MinIdle:  s.claimIdle,
		Start:    "0-0",
		Count:    claimBatch,
		Consumer: s.consumerName,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			s.log.WarnContext(ctx, "failed to auto claim pending messages", logger.Error(err))
		}
		return
	}
	for _, msg := range msgs {
		s.log.InfoContext(ctx, "Reclaimed message", logger.String("id", msg.ID))
		if err := s.processMessage(ctx, &msg); err != nil {
			s.log.ErrorContext(ctx, "failed to process reclaimed message", logger.String("id", msg.ID), logger.Error(err))
		}
	}
}

func (s *JudgeService) processMessage(ctx context.Context, msg *redis.XMessage) error {
	raw, ok := msg.Values[taskField].(string)
	if !ok {
		// 格式错误的消息无法重试成功, 直接确认
		s.ack(ctx, msg.ID)
		return fmt.Errorf("task field is missing or not a string")
	}

	var task event.JudgeTaskMessage
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		s.ack(ctx, msg.ID)
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}
	ctx = loggerv2.ContextWithFields(ctx, logger.Uint64("submissionID", task.SubmissionID))

	result, err := s.handleJudgeTask(ctx, &task)
	if err != nil {
		var ie *executor.InfrastructureError
		if errors.As(err, &ie) {
			// 不确认, 等待 XAutoClaim 重新投递
			return fmt.Errorf("failed to handle judge task: %w", err)
		}
		result = &event.JudgeResultMessage{
			SubmissionID: task.SubmissionID,
			Mode:         task.Mode,
			FailedCase:   -1,
			Error:        err.Error(),
		}
	}

	if err = s.publish(ctx, result); err != nil {
		return err
	}
	if err = s.ack(ctx, msg.ID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "Acked message", logger.String("id", msg.ID))
	return nil
}

func (s *JudgeService) handleJudgeTask(ctx context.Context, task *event.JudgeTaskMessage) (*event.JudgeResultMessage, error) {
	timeLimit := time.Duration(task.TimeLimitMs) * time.Millisecond

	if task.Mode == event.ModeRun {
		outcome, err := s.judger.Run(ctx, &executor.RunTask{
			SubmissionID: task.SubmissionID,
			Language:     task.Language,
			Code:         task.Code,
			Stubs:        task.Stubs,
			Input:        task.Input,
			TimeLimit:    timeLimit,
		})
		if err != nil {
			return nil, err
		}
		return &event.JudgeResultMessage{
			SubmissionID: task.SubmissionID,
			Mode:         event.ModeRun,
			Output:       outcome.Stdout,
			Stderr:       outcome.Stderr,
			FailedCase:   -1,
			TimeUsedMs:   outcome.WallTime.Milliseconds(),
			MemoryUsedKB: outcome.MemoryUsedKB,
		}, nil
	}

	res, err := s.judger.Judge(ctx, &executor.JudgeTask{
		SubmissionID: task.SubmissionID,
		Language:     task.Language,
		Code:         task.Code,
		Stubs:        task.Stubs,
		TestCases:    task.TestCases,
		TimeLimit:    timeLimit,
	})
	if err != nil {
		var spe *materializer.SignatureParseError
		if errors.As(err, &spe) {
			s.log.WarnContext(ctx, "stub could not be parsed", logger.String("reason", spe.Reason))
		}
		return nil, err
	}
	out := &event.JudgeResultMessage{
		SubmissionID: task.SubmissionID,
		Mode:         event.ModeJudge,
		Verdict:      res.Verdict,
		FailedCase:   res.FailedCase,
		PassedCases:  res.PassedCases,
		TimeUsedMs:   res.TimeUsed.Milliseconds(),
		MemoryUsedKB: res.MemoryUsedKB,
	}
	if res.LastOutcome != nil {
		out.Output = res.LastOutcome.Stdout
		out.Stderr = res.LastOutcome.Stderr
	}
	return out, nil
}

func (s *JudgeService) publish(ctx context.Context, result *event.JudgeResultMessage) error {
	if err := retry.Do(ctx, func() error {
		return event.PublishJSON(ctx, s.producer, s.resultTopic, result.SubmissionID, result)
	}, retry.WithBaseInterval(time.Second)); err != nil {
		return fmt.Errorf("failed to publish judge result: %w", err)
	}
	return nil
}

func (s *JudgeService) ack(ctx context.Context, id string) error {
	if err := retry.Do(ctx, func() error {
		return s.rdb.XAck(ctx, constants.JudgeTaskKey, groupName, id).Err()
	}); err != nil {
		return fmt.Errorf("failed to ack message: %w", err)
	}
	return nil
}
