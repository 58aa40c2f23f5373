package event

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

type SaramaProducer struct {
	producer sarama.SyncProducer
}

func NewSaramaProducer(producer sarama.SyncProducer) Producer {
	return &SaramaProducer{producer: producer}
}

func (s *SaramaProducer) Produce(ctx context.Context, msg *sarama.ProducerMessage) (int32, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		return 0, 0, fmt.Errorf("send message to %s failed: %w", msg.Topic, err)
	}
	return partition, offset, nil
}
