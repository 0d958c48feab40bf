package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", opts...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("localhost:3000")
	assert.Error(t, err)
	_, err = New("ftp://example.com")
	assert.Error(t, err)

	c, err := New("http://example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api", c.BaseURL())
}

func TestGetUnwrapsDataEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/todos", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":1,"title":"X","completed":false}]}`))
	})

	resp, err := c.Get(context.Background(), "/todos")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `[{"id":1,"title":"X","completed":false}]`, string(resp.Data))
}

func TestGetAcceptsBareBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"title":"X","completed":false}`))
	})

	resp, err := c.Get(context.Background(), "/todos/1")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "X", out["title"])
}

func TestPostSendsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"Walk dog","completed":false}`, string(body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"abc","title":"Walk dog","completed":false}}`))
	})

	resp, err := c.Post(context.Background(), "/todos", map[string]any{"title": "Walk dog", "completed": false})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
}

func TestDeleteNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := c.Delete(context.Background(), "/todos/1")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.Error(t, resp.Decode(&struct{}{}))
}

func TestNon2xxIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})

	_, err := c.Put(context.Background(), "/todos/1", map[string]any{"id": 1})
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.Status)
	assert.Equal(t, http.MethodPut, te.Method)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, "PUT /todos/1: HTTP 500", err.Error())
	assert.True(t, IsTransportError(err))
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/todos")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.Status)
}

func TestTimeoutOption(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))

	_, err := c.Get(context.Background(), "/todos")
	assert.True(t, IsTransportError(err))
}
