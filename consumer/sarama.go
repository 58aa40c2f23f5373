package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/IBM/sarama"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

const (
	minRejoinBackoff = time.Second
	maxRejoinBackoff = 30 * time.Second
)

// SaramaConsumer keeps a consumer group joined to one topic until ctx is
// done or the group is closed, and closes the group on the way out.
type SaramaConsumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler sarama.ConsumerGroupHandler
	log     loggerv2.Logger
}

func NewSaramaConsumer(group sarama.ConsumerGroup, topic string, handler sarama.ConsumerGroupHandler, log loggerv2.Logger) Consumer {
	return &SaramaConsumer{
		group:   group,
		topics:  []string{topic},
		handler: handler,
		log:     log,
	}
}

func (c *SaramaConsumer) Start(ctx context.Context) error {
	ctx = loggerv2.ContextWithFields(ctx, logger.String("topic", c.topics[0]))
	defer func() {
		if err := c.group.Close(); err != nil && !errors.Is(err, sarama.ErrClosedConsumerGroup) {
			c.log.WarnContext(ctx, "close consumer group failed", logger.Error(err))
		}
	}()

	c.log.InfoContext(ctx, "Consumer starting")
	backoff := minRejoinBackoff
	for {
		// Consume 在每次 rebalance 后返回, 需要循环重新加入
		err := c.group.Consume(ctx, c.topics, c.handler)
		switch {
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return err
		case err != nil:
			c.log.ErrorContext(ctx, "Error from consumer", logger.Error(err), logger.Any("backoff", backoff.String()))
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxRejoinBackoff)
		default:
			backoff = minRejoinBackoff
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
