package activities

import (
	"context"
	"errors"
	"time"

	"docqa/internal/analysis"
	"docqa/internal/models"
	"docqa/internal/reference"
	"docqa/internal/util"
)

const maxStoredDetail = 2000

type auditInserter interface {
	Insert(ctx context.Context, rec models.AnalysisCall) error
}

type submitter interface {
	Submit(ctx context.Context, documentReference string, questions []string) (analysis.Response, error)
}

type Activities struct {
	client     submitter
	normalizer reference.Normalizer
	audit      auditInserter
}

// New wires the activities. audit may be nil, in which case call logging is skipped.
func New(client *analysis.Client, normalizer reference.Normalizer, audit auditInserter) *Activities {
	return &Activities{client: client, normalizer: normalizer, audit: audit}
}

func (a *Activities) SubmitAnalysisActivity(ctx context.Context, in SubmitAnalysisInput) (SubmitAnalysisOutput, error) {
	out := SubmitAnalysisOutput{ReferenceKind: string(a.normalizer.Parse(in.DocumentReference).Kind)}
	start := time.Now()
	resp, err := a.client.Submit(ctx, in.DocumentReference, in.Questions)
	out.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		var aerr *analysis.Error
		if !errors.As(err, &aerr) {
			return out, err
		}
		out.ErrorKind = string(aerr.Kind)
		out.StatusCode = aerr.StatusCode
		out.Message = util.Snippet(aerr.Message, maxStoredDetail)
		return out, nil
	}
	out.Answers = resp.Answers
	return out, nil
}

func (a *Activities) LogAnalysisCallActivity(ctx context.Context, in LogAnalysisCallInput) error {
	if a.audit == nil {
		return nil
	}
	status := models.CallStatusOK
	if in.ErrorKind != "" {
		status = models.CallStatusFailed
	}
	return a.audit.Insert(ctx, models.AnalysisCall{
		CallID:        in.CallID,
		Source:        in.Source,
		RawReference:  util.SanitizeText(in.DocumentReference),
		ReferenceKind: in.ReferenceKind,
		QuestionCount: in.QuestionCount,
		AnswerCount:   in.AnswerCount,
		Status:        status,
		ErrorKind:     in.ErrorKind,
		StatusCode:    in.StatusCode,
		ErrorDetail:   util.Snippet(in.Message, maxStoredDetail),
		DurationMS:    in.DurationMS,
	})
}
