package line

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mikey/kopi-bell/internal/core"
	"github.com/mikey/kopi-bell/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(endpoint string, timeout time.Duration) *Client {
	logger := zap.NewNop()
	c := NewClient("secret-token", endpoint, timeout, logger, utils.NewTextProcessor(logger))
	c.newRetryKey = func() string { return "123e4567-e89b-12d3-a456-426614174000" }
	return c
}

func TestBroadcastSendsRequest(t *testing.T) {
	var (
		gotAuth     string
		gotType     string
		gotRetryKey string
		gotMethod   string
		gotBody     broadcastRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotRetryKey = r.Header.Get("X-Line-Retry-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, time.Second)
	err := client.Broadcast(context.Background(), "LIVE 開始！")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json; charset=utf-8", gotType)
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", gotRetryKey)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "text", gotBody.Messages[0].Type)
	assert.Equal(t, "LIVE 開始！", gotBody.Messages[0].Text)
}

func TestBroadcastNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, time.Second)
	err := client.Broadcast(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBroadcast)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "boom")
}

func TestBroadcastUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, time.Second).Broadcast(context.Background(), "hello")
	assert.ErrorIs(t, err, core.ErrBroadcast)
	assert.Contains(t, err.Error(), "status 401")
}

func TestBroadcastTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := newTestClient(srv.URL, 50*time.Millisecond).Broadcast(context.Background(), "hello")
	assert.ErrorIs(t, err, core.ErrBroadcast)
}

func TestBroadcastTruncatesLongText(t *testing.T) {
	var got broadcastRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	long := make([]rune, maxTextRunes+10)
	for i := range long {
		long[i] = 'あ'
	}

	require.NoError(t, newTestClient(srv.URL, time.Second).Broadcast(context.Background(), string(long)))
	require.Len(t, got.Messages, 1)
	assert.Len(t, []rune(got.Messages[0].Text), maxTextRunes)
}

func TestNewClientDefaultsEndpoint(t *testing.T) {
	c := NewClient("t", "", time.Second, zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))
	assert.Equal(t, DefaultEndpoint, c.endpoint)
}
