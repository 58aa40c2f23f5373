package model

import "time"

// SubmissionStatus tracks where a submission is in the judge pipeline.
type SubmissionStatus int8

const (
	SubmissionStatusPending  SubmissionStatus = iota // 待判题 0
	SubmissionStatusJudging                          // 判题中 1
	SubmissionStatusFinished                         // 判题完成 2
	SubmissionStatusFailed                           // 无法判题 3
)

// Submission is the persisted row owned by the submission service. The judge
// side only selects the fields it needs and writes the verdict back.
type Submission struct {
	ID         uint64           `gorm:"primaryKey"`
	ProblemID  uint64           `gorm:"index"`
	UserID     uint64           `gorm:"index"`
	Language   Language         `gorm:"type:varchar(16)"`
	Code       string           `gorm:"type:mediumtext"`
	Status     SubmissionStatus `gorm:"type:tinyint"`
	Verdict    Verdict          `gorm:"type:varchar(32)"`
	Output     string           `gorm:"type:text"`
	Stderr     string           `gorm:"type:text"`
	TimeUsed   int64            // 毫秒
	MemoryUsed int64            // KB
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Problem holds the parts of a problem definition a judge request needs.
type Problem struct {
	ID          uint64              `gorm:"primaryKey"`
	TimeLimit   int                 // 秒
	MemoryLimit int                 // MB
	CodeStubs   map[Language]string `gorm:"serializer:json;type:text"`
	TestCases   []TestCase          `gorm:"serializer:json;type:mediumtext"`
}
