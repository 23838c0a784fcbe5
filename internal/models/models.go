package models

import "time"

// AnalysisCall is the audit record of one Submit. Questions and answers are never stored.
type AnalysisCall struct {
	CallID        string    `json:"call_id"`
	Source        string    `json:"source"`
	RawReference  string    `json:"raw_reference"`
	ReferenceKind string    `json:"reference_kind"`
	QuestionCount int       `json:"question_count"`
	AnswerCount   int       `json:"answer_count"`
	Status        string    `json:"status"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	StatusCode    int       `json:"status_code,omitempty"`
	ErrorDetail   string    `json:"error_detail,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	CallStatusOK     = "ok"
	CallStatusFailed = "failed"

	SourceAPI = "api"
	SourceJob = "job"
)
