package activities

type SubmitAnalysisInput struct {
	CallID            string   `json:"call_id"`
	DocumentReference string   `json:"document_reference"`
	Questions         []string `json:"questions"`
}

// SubmitAnalysisOutput carries typed pipeline failures as data so the workflow
// sees the error kind instead of an opaque activity error.
type SubmitAnalysisOutput struct {
	Answers       []string `json:"answers"`
	ReferenceKind string   `json:"reference_kind"`
	ErrorKind     string   `json:"error_kind,omitempty"`
	StatusCode    int      `json:"status_code,omitempty"`
	Message       string   `json:"message,omitempty"`
	DurationMS    int64    `json:"duration_ms"`
}

type LogAnalysisCallInput struct {
	CallID            string `json:"call_id"`
	Source            string `json:"source"`
	DocumentReference string `json:"document_reference"`
	ReferenceKind     string `json:"reference_kind"`
	QuestionCount     int    `json:"question_count"`
	AnswerCount       int    `json:"answer_count"`
	ErrorKind         string `json:"error_kind,omitempty"`
	StatusCode        int    `json:"status_code,omitempty"`
	Message           string `json:"message,omitempty"`
	DurationMS        int64  `json:"duration_ms"`
}
