package capture

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readExchange(t *testing.T, dir, name string) Exchange {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	var ex Exchange
	require.NoError(t, json.Unmarshal(data, &ex))
	return ex
}

func TestTransportRecordsExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/template" {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"success":true,"data":{"templateId":"abc"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF")
	}))
	defer server.Close()

	transport, err := NewTransport(t.TempDir(), nil, zerolog.Nop())
	require.NoError(t, err)
	client := &http.Client{Transport: transport}

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/template", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err := client.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"success":true,"data":{"templateId":"abc"}}`, string(body))

	resp, err = client.Get(server.URL + "/render/r1")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "%PDF", string(body))

	first := readExchange(t, transport.SessionDir(), "0001-post.json")
	assert.Equal(t, "/template", first.Path)
	assert.Equal(t, http.StatusOK, first.Status)
	assert.Equal(t, []string{"[REDACTED]"}, first.Request["Authorization"])
	assert.JSONEq(t, `{"success":true,"data":{"templateId":"abc"}}`, string(first.Body))

	second := readExchange(t, transport.SessionDir(), "0002-get.json")
	assert.Equal(t, "0002-get.body", second.BodyFile)
	blob, err := os.ReadFile(filepath.Join(transport.SessionDir(), second.BodyFile))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(blob))

	raw, err := os.ReadFile(filepath.Join(transport.SessionDir(), "0001-post.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTransportRecordsFailures(t *testing.T) {
	transport, err := NewTransport(t.TempDir(), failingTransport{}, zerolog.Nop())
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "http://carbone.invalid/status", nil)
	_, err = transport.RoundTrip(req)
	require.Error(t, err)

	ex := readExchange(t, transport.SessionDir(), "0001-get.json")
	assert.Equal(t, "connection refused", ex.Error)
	assert.Zero(t, ex.Status)
}
