package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/to404hanga/online_judge_engine/constants"
	"github.com/to404hanga/online_judge_engine/event"
	"github.com/to404hanga/online_judge_engine/model"
)

var testProblem = &model.Problem{
	ID:        5,
	TimeLimit: 2,
	CodeStubs: map[model.Language]string{model.LanguageCPP: "int add(int a, int b) {"},
	TestCases: []model.TestCase{
		{Input: "1\n2\n", ExpectedOutput: "3"},
		{Input: "5\n5\n", ExpectedOutput: "10"},
	},
}

var testSubmission = &model.Submission{ID: 11, ProblemID: 5, Language: model.LanguageCPP, Code: "int add(int a, int b) { return a + b; }"}

func TestBuildTask(t *testing.T) {
	task, err := buildTask(&event.SubmissionEvent{SubmissionID: 11}, testSubmission, testProblem)
	if err != nil {
		t.Fatalf("buildTask: %v", err)
	}
	if task.Mode != event.ModeJudge || len(task.TestCases) != 2 || task.TimeLimitMs != 2000 {
		t.Errorf("judge task = %+v", task)
	}
	if task.Stubs[model.LanguageCPP] == "" {
		t.Error("stubs not carried over")
	}

	task, err = buildTask(&event.SubmissionEvent{SubmissionID: 11, Mode: event.ModeRun}, testSubmission, testProblem)
	if err != nil {
		t.Fatalf("buildTask: %v", err)
	}
	if task.Input != "1\n2\n" || len(task.TestCases) != 0 {
		t.Errorf("run task without input = %+v", task)
	}

	task, err = buildTask(&event.SubmissionEvent{SubmissionID: 11, Mode: event.ModeRun, Input: "7\n8\n"}, testSubmission, testProblem)
	if err != nil {
		t.Fatalf("buildTask: %v", err)
	}
	if task.Input != "7\n8\n" {
		t.Errorf("run task input = %q", task.Input)
	}

	if _, err := buildTask(&event.SubmissionEvent{Mode: "debug"}, testSubmission, testProblem); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestEnqueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	task, err := buildTask(&event.SubmissionEvent{SubmissionID: 11}, testSubmission, testProblem)
	if err != nil {
		t.Fatalf("buildTask: %v", err)
	}
	if err := enqueue(ctx, rdb, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	msgs, err := rdb.XRange(ctx, constants.JudgeTaskKey, "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("stream has %d messages", len(msgs))
	}
	raw, ok := msgs[0].Values["task"].(string)
	if !ok {
		t.Fatalf("task field = %T", msgs[0].Values["task"])
	}
	var got event.JudgeTaskMessage
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.SubmissionID != 11 || got.Language != model.LanguageCPP || len(got.TestCases) != 2 {
		t.Errorf("task = %+v", got)
	}
}
