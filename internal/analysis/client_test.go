package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Method        string
	ContentType   string
	Accept        string
	Authorization string
	Body          Request
}

func newBackend(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, chan captured) {
	t.Helper()
	var calls atomic.Int32
	seen := make(chan captured, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		seen <- captured{
			Method:        r.Method,
			ContentType:   r.Header.Get("Content-Type"),
			Accept:        r.Header.Get("Accept"),
			Authorization: r.Header.Get("Authorization"),
			Body:          req,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, seen
}

func TestSubmit_InvalidReferenceMakesNoCall(t *testing.T) {
	srv, calls, _ := newBackend(t, http.StatusOK, `{"answers":["x"]}`)
	c := New(Config{Endpoint: srv.URL, Token: "tok"})

	_, err := c.Submit(context.Background(), "https://example.com/page.html", []string{"q"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidReference))
	assert.Equal(t, ErrorInvalidReference, KindOf(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubmit_SuccessPreservesOrder(t *testing.T) {
	srv, calls, seen := newBackend(t, http.StatusOK, `{"answers":["a","b"]}`)
	c := New(Config{Endpoint: srv.URL, Token: "secret-token"})

	resp, err := c.Submit(context.Background(), "https://example.com/policy.pdf", []string{"first?", "second?"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, resp.Answers)
	assert.Equal(t, int32(1), calls.Load())

	got := <-seen
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "application/json", got.ContentType)
	assert.Equal(t, "application/json", got.Accept)
	assert.Equal(t, "Bearer secret-token", got.Authorization)
	assert.Equal(t, "https://example.com/policy.pdf", got.Body.Documents)
	assert.Equal(t, []string{"first?", "second?"}, got.Body.Questions)
}

func TestSubmit_SendsNormalizedReference(t *testing.T) {
	srv, _, seen := newBackend(t, http.StatusOK, `{"answers":[]}`)
	c := New(Config{Endpoint: srv.URL})

	_, err := c.Submit(context.Background(), "https://drive.google.com/file/d/ABC123/view?usp=sharing", []string{"q"})
	require.NoError(t, err)

	got := <-seen
	assert.Equal(t, "https://drive.google.com/uc?export=download&id=ABC123", got.Body.Documents)
	assert.Empty(t, got.Authorization)
}

func TestSubmit_ProxyModeForwardsRawReference(t *testing.T) {
	srv, _, seen := newBackend(t, http.StatusOK, `{"answers":["ok"]}`)
	c := New(Config{Endpoint: srv.URL, Mode: ModeProxy})

	raw := "https://www.dropbox.com/s/xyz/file.pdf?dl=0"
	_, err := c.Submit(context.Background(), raw, []string{"q"})
	require.NoError(t, err)

	got := <-seen
	assert.Equal(t, raw, got.Body.Documents)
}

func TestSubmit_PassesEmptyQuestionsThrough(t *testing.T) {
	srv, _, seen := newBackend(t, http.StatusOK, `{"answers":["a","",""]}`)
	c := New(Config{Endpoint: srv.URL})

	resp, err := c.Submit(context.Background(), "https://example.com/a.pdf", []string{"q1", "", "q3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", ""}, resp.Answers)

	got := <-seen
	assert.Equal(t, []string{"q1", "", "q3"}, got.Body.Questions)
}

func TestSubmit_BackendFailure(t *testing.T) {
	srv, calls, _ := newBackend(t, http.StatusInternalServerError, `upstream exploded`)
	c := New(Config{Endpoint: srv.URL})

	_, err := c.Submit(context.Background(), "https://example.com/a.pdf", []string{"q"})

	require.Error(t, err)
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, ErrorBackendFailure, aerr.Kind)
	assert.Equal(t, http.StatusInternalServerError, aerr.StatusCode)
	assert.Equal(t, "upstream exploded", aerr.Message)
	assert.Equal(t, int32(1), calls.Load(), "no retry")
}

func TestSubmit_MissingAnswersIsEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"absent": `{"status":"done"}`,
		"null":   `{"answers":null}`,
		"empty":  `{"answers":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv, _, _ := newBackend(t, http.StatusOK, body)
			c := New(Config{Endpoint: srv.URL})

			resp, err := c.Submit(context.Background(), "https://example.com/a.pdf", []string{"q"})
			require.NoError(t, err)
			assert.NotNil(t, resp.Answers)
			assert.Empty(t, resp.Answers)
		})
	}
}

func TestSubmit_ShortAnswerListPassedThrough(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusOK, `{"answers":["only one"]}`)
	c := New(Config{Endpoint: srv.URL})

	resp, err := c.Submit(context.Background(), "https://example.com/a.pdf", []string{"q1", "q2", "q3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, resp.Answers)
}

func TestSubmit_MalformedResponse(t *testing.T) {
	for name, body := range map[string]string{
		"not json":         `<html>oops</html>`,
		"empty body":       ``,
		"json array":       `["a","b"]`,
		"json null":        `null`,
		"answers not list": `{"answers":"a"}`,
		"answers numbers":  `{"answers":[1,2]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv, _, _ := newBackend(t, http.StatusOK, body)
			c := New(Config{Endpoint: srv.URL})

			_, err := c.Submit(context.Background(), "https://example.com/a.pdf", []string{"q"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse), "got %v", err)
		})
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c := New(Config{Endpoint: endpoint})
	_, err := c.Submit(context.Background(), "https://example.com/a.pdf", []string{"q"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransportFailure))
	assert.NotEmpty(t, err.Error())
}

func TestSubmit_TimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Submit(context.Background(), "https://example.com/a.pdf", []string{"q"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransportFailure))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSubmit_CancelledContext(t *testing.T) {
	srv, calls, _ := newBackend(t, http.StatusOK, `{"answers":[]}`)
	c := New(Config{Endpoint: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Submit(ctx, "https://example.com/a.pdf", []string{"q"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransportFailure))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(0), calls.Load())
}

func TestProbe_AsksSingleQuestion(t *testing.T) {
	srv, _, seen := newBackend(t, http.StatusOK, `{"answers":["A policy document."]}`)
	c := New(Config{Endpoint: srv.URL})

	resp, err := c.Probe(context.Background(), "https://example.com/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"A policy document."}, resp.Answers)

	got := <-seen
	assert.Equal(t, []string{ProbeQuestion}, got.Body.Questions)
}

func TestNew_DefaultsToDirectMode(t *testing.T) {
	assert.Equal(t, ModeDirect, New(Config{}).Mode())
	assert.Equal(t, ModeProxy, New(Config{Mode: ModeProxy}).Mode())
}
