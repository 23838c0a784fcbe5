package workflows

type AnalysisJobInput struct {
	JobID             string   `json:"job_id"`
	DocumentReference string   `json:"document_reference"`
	Questions         []string `json:"questions"`
	TimeoutSeconds    int      `json:"timeout_seconds"`
}

type AnalysisJobStatus struct {
	JobID         string   `json:"job_id"`
	State         string   `json:"state"`
	ReferenceKind string   `json:"reference_kind,omitempty"`
	Answers       []string `json:"answers"`
	ErrorKind     string   `json:"error_kind,omitempty"`
	StatusCode    int      `json:"status_code,omitempty"`
	Message       string   `json:"message,omitempty"`
}

const (
	JobStateRunning   = "running"
	JobStateCompleted = "completed"
	JobStateFailed    = "failed"
)
