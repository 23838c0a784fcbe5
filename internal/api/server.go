package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"docqa/internal/analysis"
	"docqa/internal/config"
	"docqa/internal/models"
	"docqa/internal/reference"
	"docqa/internal/util"
	"docqa/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
)

const (
	maxRequestBody  = 1 << 20
	maxLoggedDetail = 500
	jobIDPrefix     = "analysis-"
)

// AuditStore persists call metadata. Questions and answers are never passed in.
type AuditStore interface {
	Insert(ctx context.Context, rec models.AnalysisCall) error
	ListRecent(ctx context.Context, limit int) ([]models.AnalysisCall, error)
}

// JobClient is the part of the Temporal client the job endpoints use.
type JobClient interface {
	ExecuteWorkflow(ctx context.Context, options tclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (tclient.WorkflowRun, error)
	QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (converter.EncodedValue, error)
}

type Server struct {
	cfg        config.Config
	client     *analysis.Client
	normalizer reference.Normalizer
	audit      AuditStore
	jobs       JobClient
}

var errInvalidShape = errors.New("Invalid request. 'documents' (string) and 'questions' (array) are required.")

type documentRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// NewServer builds the front door. audit and jobs are optional; nil disables
// call logging and the background job endpoints.
func NewServer(cfg config.Config, client *analysis.Client, audit AuditStore, jobs JobClient) *Server {
	return &Server{
		cfg:        cfg,
		client:     client,
		normalizer: cfg.Normalizer(),
		audit:      audit,
		jobs:       jobs,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/document", s.handleDocument)
	mux.HandleFunc("/api/document/inspect", s.handleInspect)
	mux.HandleFunc("/api/document/jobs", s.handleJobs)
	mux.HandleFunc("/api/document/jobs/", s.handleJobScoped)
	mux.HandleFunc("/api/calls", s.handleCalls)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "Method not allowed.", "")
		return
	}
	req, err := decodeDocumentRequest(w, r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	ref := s.normalizer.Parse(req.Documents)
	log.Printf("analysis call request_id=%s kind=%s questions=%d", requestID, ref.Kind, len(req.Questions))
	start := time.Now()
	resp, err := s.client.Submit(r.Context(), req.Documents, req.Questions)
	elapsed := time.Since(start)

	rec := models.AnalysisCall{
		CallID:        requestID,
		Source:        models.SourceAPI,
		RawReference:  req.Documents,
		ReferenceKind: string(ref.Kind),
		QuestionCount: len(req.Questions),
		AnswerCount:   len(resp.Answers),
		Status:        models.CallStatusOK,
		DurationMS:    elapsed.Milliseconds(),
	}
	if err != nil {
		status, apiErr := toAPIError(err)
		rec.Status = models.CallStatusFailed
		rec.ErrorKind = string(analysis.KindOf(err))
		var aerr *analysis.Error
		if errors.As(err, &aerr) {
			rec.StatusCode = aerr.StatusCode
			rec.ErrorDetail = util.Snippet(aerr.Message, 2000)
		}
		log.Printf("analysis call failed request_id=%s kind=%s status=%d detail=%q duration=%s",
			requestID, rec.ErrorKind, rec.StatusCode, util.Snippet(rec.ErrorDetail, maxLoggedDetail), elapsed)
		s.recordCall(r.Context(), rec)
		writeErr(w, status, apiErr.Message, apiErr.Kind)
		return
	}
	log.Printf("analysis call ok request_id=%s answers=%d duration=%s", requestID, len(resp.Answers), elapsed)
	s.recordCall(r.Context(), rec)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "Method not allowed.", "")
		return
	}
	var req struct {
		Documents string `json:"documents"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "Malformed JSON request body.", "")
		return
	}
	if strings.TrimSpace(req.Documents) == "" {
		writeErr(w, http.StatusBadRequest, "'documents' (string) is required.", "")
		return
	}
	ref := s.normalizer.Parse(req.Documents)
	writeJSON(w, http.StatusOK, map[string]any{
		"raw":        ref.Raw,
		"kind":       ref.Kind,
		"normalized": ref.Normalized,
		"acceptable": ref.Kind != reference.KindUnrecognized,
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "Method not allowed.", "")
		return
	}
	if s.jobs == nil {
		writeErr(w, http.StatusServiceUnavailable, "Background jobs are not enabled.", "")
		return
	}
	req, err := decodeDocumentRequest(w, r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if !s.normalizer.IsAcceptable(req.Documents) {
		status, apiErr := toAPIError(analysis.ErrInvalidReference)
		writeErr(w, status, apiErr.Message, apiErr.Kind)
		return
	}

	jobID := uuid.NewString()
	we, err := s.jobs.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    jobIDPrefix + jobID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, workflows.DocumentAnalysisWorkflow, workflows.AnalysisJobInput{
		JobID:             jobID,
		DocumentReference: req.Documents,
		Questions:         req.Questions,
		TimeoutSeconds:    int(s.cfg.JobTimeout() / time.Second),
	})
	if err != nil {
		log.Printf("start analysis job failed job_id=%s: %v", jobID, err)
		writeErr(w, http.StatusServiceUnavailable, "Could not start background job. Retry shortly.", "")
		return
	}
	log.Printf("analysis job started job_id=%s questions=%d", jobID, len(req.Questions))
	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": jobID, "workflow_id": we.GetID(), "run_id": we.GetRunID()})
}

func (s *Server) handleJobScoped(w http.ResponseWriter, r *http.Request) {
	jobID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/document/jobs/"), "/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeErr(w, http.StatusNotFound, "Requested resource was not found.", "")
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "Method not allowed.", "")
		return
	}
	if s.jobs == nil {
		writeErr(w, http.StatusServiceUnavailable, "Background jobs are not enabled.", "")
		return
	}
	resp, err := s.jobs.QueryWorkflow(r.Context(), jobIDPrefix+jobID, "", workflows.QueryGetJobStatus)
	if err != nil {
		writeErr(w, http.StatusNotFound, "Job not found.", "")
		return
	}
	var status workflows.AnalysisJobStatus
	if err := resp.Get(&status); err != nil {
		writeErr(w, http.StatusInternalServerError, "Could not read job status.", "")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleCalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "Method not allowed.", "")
		return
	}
	if s.audit == nil {
		writeErr(w, http.StatusServiceUnavailable, "Call audit is not enabled.", "")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	calls, err := s.audit.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("list analysis calls: %v", err)
		writeErr(w, http.StatusInternalServerError, "Internal server error. Please retry or check service logs.", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"calls": calls})
}

// recordCall is best effort and outlives a disconnected caller.
func (s *Server) recordCall(ctx context.Context, rec models.AnalysisCall) {
	if s.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	rec.RawReference = util.SanitizeText(rec.RawReference)
	if err := s.audit.Insert(ctx, rec); err != nil {
		log.Printf("audit insert failed call_id=%s: %v", rec.CallID, err)
	}
}

func decodeDocumentRequest(w http.ResponseWriter, r *http.Request) (documentRequest, error) {
	var req documentRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errInvalidShape
	}
	if strings.TrimSpace(req.Documents) == "" || len(req.Questions) == 0 {
		return req, errInvalidShape
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string, kind analysis.ErrorKind) {
	body := map[string]any{"error": msg}
	if kind != "" {
		body["kind"] = kind
	}
	writeJSON(w, code, body)
}

type apiError struct {
	Kind    analysis.ErrorKind
	Message string
}

// toAPIError keeps an invalid URL (4xx) apart from upstream trouble (5xx) so a
// caller retrying a flaky backend is not told the link is wrong.
func toAPIError(err error) (int, apiError) {
	kind := analysis.KindOf(err)
	switch kind {
	case analysis.ErrorInvalidReference:
		return http.StatusUnprocessableEntity, apiError{
			Kind:    kind,
			Message: "Unsupported document URL. Use a direct .pdf link or a Google Drive, Dropbox or OneDrive share link.",
		}
	case analysis.ErrorTransportFailure:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, apiError{Kind: kind, Message: "Analysis service timed out. Retry shortly."}
		}
		return http.StatusBadGateway, apiError{Kind: kind, Message: "Analysis service unreachable. Retry shortly."}
	case analysis.ErrorBackendFailure:
		var aerr *analysis.Error
		status := 0
		if errors.As(err, &aerr) {
			status = aerr.StatusCode
		}
		return http.StatusBadGateway, apiError{Kind: kind, Message: fmt.Sprintf("External API error: %d", status)}
	case analysis.ErrorMalformedResponse:
		return http.StatusBadGateway, apiError{Kind: kind, Message: "Analysis service returned an unexpected response."}
	default:
		return http.StatusInternalServerError, apiError{Message: "Internal server error during document analysis."}
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
