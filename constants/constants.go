package constants

const (
	// JudgeTaskKey is the Redis stream the dispatcher feeds and workers read.
	JudgeTaskKey = "oj:judge:task"
	// JudgeTaskGroup is the consumer group shared by all workers.
	JudgeTaskGroup = "judger_group"

	SubmissionTopic  = "oj_submission"
	JudgeResultTopic = "oj_judge_result"
)
