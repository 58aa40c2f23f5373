package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
)

// Producer publishes a message and reports where it was stored.
type Producer interface {
	Produce(ctx context.Context, msg *sarama.ProducerMessage) (int32, int64, error)
}

// NewJSONMessage encodes v as the value of a message keyed by submission id,
// so every event of one submission lands on the same partition.
func NewJSONMessage(topic string, submissionID uint64, v any) (*sarama.ProducerMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s message: %w", topic, err)
	}
	return &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(submissionID, 10)),
		Value: sarama.ByteEncoder(data),
	}, nil
}

// PublishJSON is NewJSONMessage followed by Produce.
func PublishJSON(ctx context.Context, p Producer, topic string, submissionID uint64, v any) error {
	msg, err := NewJSONMessage(topic, submissionID, v)
	if err != nil {
		return err
	}
	_, _, err = p.Produce(ctx, msg)
	return err
}
