package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docqa/internal/reference"
)

type Mode string

const (
	ModeDirect Mode = "direct"
	ModeProxy  Mode = "proxy"
)

// ProbeQuestion is asked once when a document is first loaded.
const ProbeQuestion = "What is this document about?"

const maxErrorBody = 64 << 10

type Request struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

type Response struct {
	Answers []string `json:"answers"`
}

type Config struct {
	Endpoint   string
	Token      string
	Mode       Mode
	Timeout    time.Duration
	Normalizer reference.Normalizer
	HTTPClient *http.Client
}

// Client submits questions about one document to the analysis backend.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	endpoint   string
	token      string
	mode       Mode
	timeout    time.Duration
	normalizer reference.Normalizer
	client     *http.Client
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeDirect
	}
	return &Client{
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		token:      strings.TrimSpace(cfg.Token),
		mode:       mode,
		timeout:    cfg.Timeout,
		normalizer: cfg.Normalizer,
		client:     hc,
	}
}

func (c *Client) Mode() Mode {
	return c.mode
}

// Submit makes exactly one POST per call and never retries. Every failure is an *Error.
func (c *Client) Submit(ctx context.Context, documentReference string, questions []string) (Response, error) {
	if !c.normalizer.IsAcceptable(documentReference) {
		return Response{}, invalidReference(documentReference)
	}
	documents := c.normalizer.Normalize(documentReference)
	if c.mode == ModeProxy {
		// the proxy runs the same normalizer
		documents = documentReference
	}
	if questions == nil {
		questions = []string{}
	}
	payload, err := json.Marshal(Request{Documents: documents, Questions: questions})
	if err != nil {
		return Response{}, transportFailure(fmt.Errorf("encode request: %w", err))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, transportFailure(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, transportFailure(fmt.Errorf("analysis request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Response{}, backendFailure(resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, transportFailure(fmt.Errorf("read analysis response: %w", err))
	}
	return decodeResponse(body)
}

func (c *Client) Probe(ctx context.Context, documentReference string) (Response, error) {
	return c.Submit(ctx, documentReference, []string{ProbeQuestion})
}

// decodeResponse accepts a missing or null answers field as an empty answer set.
func decodeResponse(body []byte) (Response, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return Response{}, malformedResponse(fmt.Errorf("decode analysis response: %w", err))
	}
	if obj == nil {
		return Response{}, malformedResponse(errors.New("analysis response is not a json object"))
	}
	raw, ok := obj["answers"]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return Response{Answers: []string{}}, nil
	}
	var answers []string
	if err := json.Unmarshal(raw, &answers); err != nil {
		return Response{}, malformedResponse(fmt.Errorf("decode answers: %w", err))
	}
	if answers == nil {
		answers = []string{}
	}
	return Response{Answers: answers}, nil
}
