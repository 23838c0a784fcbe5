package workflows

import (
	"time"

	"docqa/internal/activities"
	"docqa/internal/analysis"
	"docqa/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetJobStatus = "GetJobStatus"

const defaultJobTimeout = 5 * time.Minute

// DocumentAnalysisWorkflow runs one Submit as a background job. The submit activity
// gets a single attempt; retrying is the caller's decision.
func DocumentAnalysisWorkflow(ctx workflow.Context, input AnalysisJobInput) (AnalysisJobStatus, error) {
	status := AnalysisJobStatus{JobID: input.JobID, State: JobStateRunning}
	if err := workflow.SetQueryHandler(ctx, QueryGetJobStatus, func() (AnalysisJobStatus, error) {
		return status, nil
	}); err != nil {
		return status, err
	}

	timeout := defaultJobTimeout
	if input.TimeoutSeconds > 0 {
		timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	submitCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var out activities.SubmitAnalysisOutput
	err := workflow.ExecuteActivity(submitCtx, "SubmitAnalysisActivity", activities.SubmitAnalysisInput{
		CallID:            input.JobID,
		DocumentReference: input.DocumentReference,
		Questions:         input.Questions,
	}).Get(ctx, &out)
	if err != nil {
		out.ErrorKind = string(analysis.ErrorTransportFailure)
		out.Message = err.Error()
	}

	status.ReferenceKind = out.ReferenceKind
	if out.ErrorKind != "" {
		status.State = JobStateFailed
		status.ErrorKind = out.ErrorKind
		status.StatusCode = out.StatusCode
		status.Message = out.Message
	} else {
		status.State = JobStateCompleted
		status.Answers = out.Answers
		if status.Answers == nil {
			status.Answers = []string{}
		}
	}

	logCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	})
	if err := workflow.ExecuteActivity(logCtx, "LogAnalysisCallActivity", activities.LogAnalysisCallInput{
		CallID:            input.JobID,
		Source:            models.SourceJob,
		DocumentReference: input.DocumentReference,
		ReferenceKind:     out.ReferenceKind,
		QuestionCount:     len(input.Questions),
		AnswerCount:       len(out.Answers),
		ErrorKind:         out.ErrorKind,
		StatusCode:        out.StatusCode,
		Message:           out.Message,
		DurationMS:        out.DurationMS,
	}).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("audit log failed", "job_id", input.JobID, "error", err)
	}

	return status, nil
}
