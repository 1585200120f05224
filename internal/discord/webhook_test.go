package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_UsesWaitAndReturnsID(t *testing.T) {
	var gotQuery, gotMethod, gotPath string
	var gotMsg Message

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotMsg)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1234567890"}`))
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL+"/api/webhooks/1/token", time.Second)
	id, err := hook.Send(context.Background(), Message{Content: "hi", Embeds: []Embed{{Title: "t"}}})

	require.NoError(t, err)
	assert.Equal(t, "1234567890", id)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/webhooks/1/token", gotPath)
	assert.Equal(t, "wait=true", gotQuery)
	assert.Equal(t, "hi", gotMsg.Content)
}

func TestEdit_PatchesMessagePath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL+"/api/webhooks/1/token/", time.Second)
	err := hook.Edit(context.Background(), "42", Message{Embeds: []Embed{{Title: "t"}}})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/webhooks/1/token/messages/42", gotPath)
}

func TestEdit_ReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Unknown Message"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL, time.Second).Edit(context.Background(), "42", Message{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSend_RetriesAfterRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message":"You are being rate limited.","retry_after":0.01,"global":false}`))
			return
		}
		w.Write([]byte(`{"id":"99"}`))
	}))
	defer srv.Close()

	id, err := NewWebhook(srv.URL, time.Second).Send(context.Background(), Message{})
	require.NoError(t, err)
	assert.Equal(t, "99", id)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0.01")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL, time.Second)
	hook.MaxRetries = 1
	_, err := hook.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestNewWithoutURLIsNoop(t *testing.T) {
	gw := New("", time.Second)
	id, err := gw.Send(context.Background(), Message{})
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, gw.Edit(context.Background(), "1", Message{}))
}
