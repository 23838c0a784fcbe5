package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"docqa/internal/analysis"
	"docqa/internal/reference"
)

const defaultAnalysisEndpoint = "https://intelligent-doc-system-390083348949.us-central1.run.app/api/v1/hackrx/run"

var ErrMissingToken = errors.New("analysis token not configured: set DOCQA_ANALYSIS_TOKEN")

type Config struct {
	APIAddr             string
	AnalysisEndpoint    string
	AnalysisToken       string
	ClientMode          string
	ProxyEndpoint       string
	AnalysisTimeoutSecs int
	DriveDownloadURL    string
	DropboxContentHost  string
	PostgresURL         string
	TemporalAddress     string
	TemporalTaskQueue   string
	JobTimeoutSecs      int
}

func Load() Config {
	return Config{
		APIAddr:             getenv("DOCQA_API_ADDR", ":8080"),
		AnalysisEndpoint:    getenv("DOCQA_ANALYSIS_ENDPOINT", defaultAnalysisEndpoint),
		AnalysisToken:       getenv("DOCQA_ANALYSIS_TOKEN", os.Getenv("HACKRX_AUTH_TOKEN")),
		ClientMode:          strings.ToLower(getenv("DOCQA_CLIENT_MODE", string(analysis.ModeDirect))),
		ProxyEndpoint:       getenv("DOCQA_PROXY_ENDPOINT", "http://localhost:8080/api/document"),
		AnalysisTimeoutSecs: getenvInt("DOCQA_ANALYSIS_TIMEOUT_SECONDS", 120),
		DriveDownloadURL:    getenv("DOCQA_DRIVE_DOWNLOAD_URL", reference.DefaultDriveDownloadURL),
		DropboxContentHost:  getenv("DOCQA_DROPBOX_CONTENT_HOST", reference.DefaultDropboxContentHost),
		PostgresURL:         getenv("DOCQA_POSTGRES_URL", ""),
		TemporalAddress:     getenv("DOCQA_TEMPORAL_ADDRESS", ""),
		TemporalTaskQueue:   getenv("DOCQA_TEMPORAL_TASK_QUEUE", "docqa"),
		JobTimeoutSecs:      getenvInt("DOCQA_JOB_TIMEOUT_SECONDS", 300),
	}
}

// Validate checks what a server-side deployment needs before it starts.
// A missing token is reported as ErrMissingToken.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AnalysisToken) == "" {
		return ErrMissingToken
	}
	if strings.TrimSpace(c.AnalysisEndpoint) == "" {
		return fmt.Errorf("analysis endpoint not configured: set DOCQA_ANALYSIS_ENDPOINT")
	}
	if !strings.Contains(c.DriveDownloadURL, "{id}") {
		return fmt.Errorf("DOCQA_DRIVE_DOWNLOAD_URL must contain {id}: %q", c.DriveDownloadURL)
	}
	return nil
}

// ValidateClient checks the settings used by a CLI client in the configured mode.
func (c Config) ValidateClient() error {
	switch analysis.Mode(c.ClientMode) {
	case analysis.ModeDirect:
		return c.Validate()
	case analysis.ModeProxy:
		if strings.TrimSpace(c.ProxyEndpoint) == "" {
			return fmt.Errorf("proxy endpoint not configured: set DOCQA_PROXY_ENDPOINT")
		}
		return nil
	default:
		return fmt.Errorf("unsupported client mode %q: want direct or proxy", c.ClientMode)
	}
}

func (c Config) Normalizer() reference.Normalizer {
	return reference.Normalizer{
		DriveDownloadURL:   c.DriveDownloadURL,
		DropboxContentHost: c.DropboxContentHost,
	}
}

func (c Config) AnalysisTimeout() time.Duration {
	if c.AnalysisTimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.AnalysisTimeoutSecs) * time.Second
}

func (c Config) JobTimeout() time.Duration {
	if c.JobTimeoutSecs <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.JobTimeoutSecs) * time.Second
}

// DirectClientConfig targets the analysis backend. The HTTP front door always uses it.
func (c Config) DirectClientConfig() analysis.Config {
	return analysis.Config{
		Endpoint:   c.AnalysisEndpoint,
		Token:      c.AnalysisToken,
		Mode:       analysis.ModeDirect,
		Timeout:    c.AnalysisTimeout(),
		Normalizer: c.Normalizer(),
	}
}

// ClientConfig honours ClientMode; in proxy mode the token is only sent if set.
func (c Config) ClientConfig() analysis.Config {
	if analysis.Mode(c.ClientMode) != analysis.ModeProxy {
		return c.DirectClientConfig()
	}
	return analysis.Config{
		Endpoint:   c.ProxyEndpoint,
		Token:      c.AnalysisToken,
		Mode:       analysis.ModeProxy,
		Timeout:    c.AnalysisTimeout(),
		Normalizer: c.Normalizer(),
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
