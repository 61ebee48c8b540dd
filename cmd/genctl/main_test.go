package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/genproxy/models"
)

func fakeProxy(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ping":
			_ = json.NewEncoder(w).Encode(models.PingResponse{OK: true, TS: 0})
		case "/generate":
			var req models.GenerateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Missing prompt in request body"})
				return
			}
			_ = json.NewEncoder(w).Encode(models.NewGenerateResponse("echo: "+req.Prompt, req.Provider, "m1"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateCommand(t *testing.T) {
	srv := fakeProxy(t)

	t.Run("prompt from args", func(t *testing.T) {
		out, errOut, err := execute(t, "", "--url", srv.URL, "generate", "-p", "groq", "-v", "hello", "world")
		require.NoError(t, err)
		assert.Equal(t, "echo: hello world\n", out)
		assert.Contains(t, errOut, "provider=groq model=m1")
	})

	t.Run("prompt from stdin", func(t *testing.T) {
		out, _, err := execute(t, "from stdin", "--url", srv.URL, "generate")
		require.NoError(t, err)
		assert.Equal(t, "echo: from stdin\n", out)
	})

	t.Run("server error is returned", func(t *testing.T) {
		_, errOut, err := execute(t, "", "--url", srv.URL, "generate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Missing prompt in request body")
		assert.Contains(t, errOut, "Missing prompt in request body")
	})
}

func TestPingCommand(t *testing.T) {
	srv := fakeProxy(t)

	out, _, err := execute(t, "", "--url", srv.URL, "ping")
	require.NoError(t, err)
	assert.Equal(t, "ok=true ts=1970-01-01T00:00:00Z\n", out)

	_, _, err = execute(t, "", "--url", srv.URL, "ping", "extra")
	assert.Error(t, err)
}
