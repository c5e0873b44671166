package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Exchange is the fixture written for one request/response pair.
type Exchange struct {
	Seq        uint64              `json:"seq"`
	Method     string              `json:"method"`
	Path       string              `json:"path"`
	Request    map[string][]string `json:"request_headers"`
	Status     int                 `json:"status,omitempty"`
	Response   map[string][]string `json:"response_headers,omitempty"`
	Body       json.RawMessage     `json:"body,omitempty"`
	BodyFile   string              `json:"body_file,omitempty"`
	Error      string              `json:"error,omitempty"`
	DurationMS int64               `json:"duration_ms"`
}

// Transport records every exchange passing through it into a session
// directory under Dir. Request bodies are not recorded.
type Transport struct {
	Base   http.RoundTripper
	Dir    string
	Logger zerolog.Logger

	sessionDir string
	seq        atomic.Uint64
}

// NewTransport returns a recording transport writing to dir/<timestamp>/.
func NewTransport(dir string, base http.RoundTripper, logger zerolog.Logger) (*Transport, error) {
	if base == nil {
		base = http.DefaultTransport
	}
	sessionDir := filepath.Join(dir, time.Now().Format("20060102-150405"))
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return nil, fmt.Errorf("capture: failed to create directory %s: %w", sessionDir, err)
	}
	return &Transport{Base: base, Dir: dir, Logger: logger, sessionDir: sessionDir}, nil
}

// SessionDir is where this transport writes its fixtures.
func (t *Transport) SessionDir() string { return t.sessionDir }

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ex := Exchange{
		Seq:     t.seq.Add(1),
		Method:  req.Method,
		Path:    req.URL.Path,
		Request: redact(req.Header),
	}
	start := time.Now()

	resp, err := t.Base.RoundTrip(req)
	ex.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		ex.Error = err.Error()
		t.write(ex, nil)
		return nil, err
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if readErr != nil {
		ex.Error = readErr.Error()
		resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), errReader{readErr}))
	}

	ex.Status = resp.StatusCode
	ex.Response = map[string][]string(resp.Header.Clone())
	t.write(ex, body)
	return resp, nil
}

func (t *Transport) write(ex Exchange, body []byte) {
	prefix := fmt.Sprintf("%04d-%s", ex.Seq, strings.ToLower(ex.Method))

	if len(body) > 0 {
		if json.Valid(body) {
			ex.Body = json.RawMessage(body)
		} else {
			ex.BodyFile = prefix + ".body"
			if err := os.WriteFile(filepath.Join(t.sessionDir, ex.BodyFile), body, 0o644); err != nil {
				t.Logger.Warn().Err(err).Str("file", ex.BodyFile).Msg("capture: failed to write body")
				ex.BodyFile = ""
			}
		}
	}

	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		t.Logger.Warn().Err(err).Msg("capture: failed to marshal exchange")
		return
	}
	path := filepath.Join(t.sessionDir, prefix+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Logger.Warn().Err(err).Str("file", path).Msg("capture: failed to write exchange")
		return
	}
	t.Logger.Debug().Str("file", path).Msg("capture: wrote exchange")
}

func redact(h http.Header) map[string][]string {
	out := map[string][]string(h.Clone())
	if _, ok := out["Authorization"]; ok {
		out["Authorization"] = []string{"[REDACTED]"}
	}
	return out
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
