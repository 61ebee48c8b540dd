package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/genproxy/models"
)

func TestGuard_TryAcquire(t *testing.T) {
	g := NewGuard()

	release, ok := g.TryAcquire()
	require.True(t, ok)
	assert.True(t, g.Busy())

	_, ok = g.TryAcquire()
	assert.False(t, ok, "second acquire must fail while held")

	release()
	release()
	assert.False(t, g.Busy())

	release2, ok := g.TryAcquire()
	require.True(t, ok, "slot must be free after release")
	release2()
}

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req models.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Prompt)
		assert.Equal(t, "gemini", req.Provider)

		_ = json.NewEncoder(w).Encode(models.NewGenerateResponse("hi there", "gemini", "gemini-2.0-flash"))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", nil)
	resp, err := c.Generate(context.Background(), "hello", "gemini")
	require.NoError(t, err)

	assert.Equal(t, "hi there", resp.Text())
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
	assert.False(t, c.Pending())
}

func TestClient_GenerateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Missing prompt in request body"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Generate(context.Background(), "", "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Missing prompt in request body", apiErr.Message)

	// the failed call released the slot
	assert.False(t, c.Pending())
}

func TestClient_SecondCallWhilePendingFailsFast(t *testing.T) {
	var hits int32
	entered := make(chan struct{})
	unblock := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) > 1 {
			_ = json.NewEncoder(w).Encode(models.NewGenerateResponse("again", "groq", "llama"))
			return
		}
		close(entered)
		<-unblock
		_ = json.NewEncoder(w).Encode(models.NewGenerateResponse("done", "groq", "llama"))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), "first", "")
		firstDone <- err
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never reached the server")
	}

	_, err := c.Generate(context.Background(), "second", "")
	assert.ErrorIs(t, err, ErrPleaseWait)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second call must not reach the network")

	close(unblock)
	require.NoError(t, <-firstDone)

	// the slot is free again
	resp, err := c.Generate(context.Background(), "third", "")
	require.NoError(t, err)
	assert.Equal(t, "again", resp.Text())
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestClient_ReleasesOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, &http.Client{Timeout: time.Second})
	_, err := c.Generate(context.Background(), "hi", "")
	require.Error(t, err)
	assert.False(t, c.Pending())
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		_, _ = w.Write([]byte(`{"ok":true,"ts":1714564800000}`))
	}))
	defer srv.Close()

	ping, err := New(srv.URL, nil).Ping(context.Background())
	require.NoError(t, err)
	assert.True(t, ping.OK)
	assert.Equal(t, int64(1714564800000), ping.TS)
}
