package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/to404hanga/online_judge_engine/model"
)

func TestProduceJudgeResult(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mp := mocks.NewSyncProducer(t, cfg)
	defer mp.Close()

	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got JudgeResultMessage
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.SubmissionID != 7 || got.Verdict != model.VerdictAccepted {
			t.Errorf("unexpected message %+v", got)
		}
		return nil
	})

	msg, err := NewJSONMessage("oj_judge_result", 7, &JudgeResultMessage{
		SubmissionID: 7,
		Mode:         ModeJudge,
		Verdict:      model.VerdictAccepted,
		FailedCase:   -1,
		PassedCases:  3,
	})
	if err != nil {
		t.Fatalf("NewJSONMessage: %v", err)
	}
	key, _ := msg.Key.Encode()
	if string(key) != "7" {
		t.Errorf("key = %q", key)
	}

	p := NewSaramaProducer(mp)
	if _, _, err := p.Produce(context.Background(), msg); err != nil {
		t.Fatalf("Produce: %v", err)
	}
}

func TestProduceCanceledContext(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	defer mp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	msg, err := NewJSONMessage("t", 1, SubmissionEvent{SubmissionID: 1})
	if err != nil {
		t.Fatalf("NewJSONMessage: %v", err)
	}
	if _, _, err := NewSaramaProducer(mp).Produce(ctx, msg); err == nil {
		t.Fatal("expected error for a canceled context")
	}
}
