package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linkedin-publisher/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveCallback(l *CallbackListener, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	l.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestCallbackListener_StrayPathsAreIgnored(t *testing.T) {
	l := NewCallbackListener(0)

	assert.Equal(t, http.StatusNotFound, serveCallback(l, "/favicon.ico").Code)
	assert.Equal(t, http.StatusNotFound, serveCallback(l, "/other?code=x&state=y").Code)
	assert.Equal(t, http.StatusBadRequest, serveCallback(l, "/callback").Code)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := l.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallbackListener_FirstCallbackWins(t *testing.T) {
	l := NewCallbackListener(0)

	first := serveCallback(l, "/callback?code=c1&state=s1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "Authorization received")

	second := serveCallback(l, "/callback?code=c2&state=s2")
	assert.Equal(t, http.StatusConflict, second.Code)

	res, err := l.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.CallbackResult{Code: "c1", State: "s1"}, *res)
}

func TestCallbackListener_ErrorCallbackIsDelivered(t *testing.T) {
	l := NewCallbackListener(0)

	w := serveCallback(l, "/callback?error=user_cancelled_login&error_description=The+member+declined&state=s")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization failed")
	assert.Contains(t, w.Body.String(), "The member declined")

	res, err := l.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user_cancelled_login", res.Error)
	assert.Equal(t, "The member declined", res.ErrorDescription)
}

func TestCallbackListener_StartServesOnLoopback(t *testing.T) {
	l := NewCallbackListener(0)
	port, err := l.Start(context.Background())
	require.NoError(t, err)
	defer l.Close()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/callback?code=abc&state=st", port))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	res, err := l.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Code)
	assert.NoError(t, l.Close())
}

func TestCallbackListener_StopsAcceptingAfterClose(t *testing.T) {
	l := NewCallbackListener(0)
	port, err := l.Start(context.Background())
	require.NoError(t, err)
	target := fmt.Sprintf("http://127.0.0.1:%d/callback?code=abc&state=st", port)

	resp, err := http.Get(target)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = l.Wait(context.Background())
	require.NoError(t, err)
	require.NoError(t, l.Close())

	client := &http.Client{Timeout: time.Second}
	_, err = client.Get(target)
	require.Error(t, err)
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr), "expected a connection error, got %v", err)
	assert.NoError(t, l.Close())
}

func TestCallbackListener_BindFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	l := NewCallbackListener(busy.Addr().(*net.TCPAddr).Port)
	_, err = l.Start(context.Background())
	require.ErrorIs(t, err, model.ErrListenerBind)
}
