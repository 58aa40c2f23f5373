package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/to404hanga/online_judge_engine/consumer"
	"github.com/to404hanga/online_judge_engine/event"
	"github.com/to404hanga/online_judge_engine/model"
	"github.com/to404hanga/pkg404/gotools/retry"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"gorm.io/gorm"
)

const (
	ResultCollectorGroupID = "result_collector_group"

	// text 列上限, 超出部分截断
	maxStoredTextBytes = 64 * 1024
)

// ResultCollectorService writes judge results back onto submissions.
type ResultCollectorService struct {
	log      loggerv2.Logger
	db       *gorm.DB
	consumer consumer.Consumer
}

func NewResultCollectorService(log loggerv2.Logger, cg sarama.ConsumerGroup, db *gorm.DB, topic string) *ResultCollectorService {
	s := &ResultCollectorService{
		log: log,
		db:  db,
	}
	handler := consumer.NewGroupHandler(s.handleResult, log)
	s.consumer = consumer.NewSaramaConsumer(cg, topic, handler, log)
	return s
}

func (s *ResultCollectorService) Start(ctx context.Context) error {
	return s.consumer.Start(ctx)
}

func (s *ResultCollectorService) handleResult(ctx context.Context, msg *sarama.ConsumerMessage) error {
	startAt := time.Now()
	collectorInFlight.Inc()
	defer collectorInFlight.Dec()

	var res event.JudgeResultMessage
	if err := json.Unmarshal(msg.Value, &res); err != nil {
		s.record(startAt, "failed", "decode")
		s.log.ErrorContext(ctx, "failed to unmarshal judge result", logger.Error(err))
		return fmt.Errorf("failed to unmarshal judge result: %w", err)
	}
	ctx = loggerv2.ContextWithFields(ctx, logger.Uint64("submissionID", res.SubmissionID))

	if err := s.store(ctx, &res); err != nil {
		s.record(startAt, "failed", "db_update")
		s.log.ErrorContext(ctx, "failed to store judge result", logger.Error(err))
		return err
	}

	reason := "ok"
	if res.Error != "" {
		reason = "judge_error"
	} else if res.Mode != event.ModeRun {
		collectorVerdictsTotal.WithLabelValues(res.Verdict.String()).Inc()
	}
	s.record(startAt, "stored", reason)
	s.log.InfoContext(ctx, "submission updated", logger.String("verdict", res.Verdict.String()), logger.String("mode", string(res.Mode)))
	return nil
}

// store 重试直到成功或 ctx 结束
func (s *ResultCollectorService) store(ctx context.Context, res *event.JudgeResultMessage) error {
	updates := submissionUpdates(res)
	err := retry.Do(ctx, func() error {
		return s.db.WithContext(ctx).
			Model(&model.Submission{}).
			Where("id = ?", res.SubmissionID).
			Updates(updates).Error
	}, retry.WithBaseInterval(time.Second))
	if err != nil {
		return fmt.Errorf("failed to update submission %d: %w", res.SubmissionID, err)
	}
	return nil
}

func (s *ResultCollectorService) record(startAt time.Time, outcome, reason string) {
	collectorResultsTotal.WithLabelValues(outcome, reason).Inc()
	collectorWriteSeconds.WithLabelValues(outcome).Observe(time.Since(startAt).Seconds())
}

// submissionUpdates maps a result onto submission columns. A result that
// carries an error has no verdict and marks the submission failed.
func submissionUpdates(res *event.JudgeResultMessage) map[string]any {
	if res.Error != "" {
		return map[string]any{
			"status": model.SubmissionStatusFailed,
			"stderr": truncate(res.Error),
		}
	}
	updates := map[string]any{
		"status":      model.SubmissionStatusFinished, // 防止重复判题
		"output":      truncate(res.Output),
		"stderr":      truncate(res.Stderr),
		"time_used":   res.TimeUsedMs,
		"memory_used": res.MemoryUsedKB,
	}
	if res.Mode != event.ModeRun {
		updates["verdict"] = res.Verdict
	}
	return updates
}

func truncate(s string) string {
	if len(s) <= maxStoredTextBytes {
		return s
	}
	return s[:maxStoredTextBytes]
}
