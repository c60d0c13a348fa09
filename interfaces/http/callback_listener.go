package http

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"
	"linkedin-publisher/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	CallbackPath    = "/callback"
	loopbackHost    = "127.0.0.1"
	shutdownTimeout = 2 * time.Second
)

const (
	successPage = `<!DOCTYPE html><html><head><title>LinkedIn authorization</title></head><body style="font-family:sans-serif;text-align:center;padding:48px"><h1>Authorization received</h1><p>You can close this window and return to the terminal.</p></body></html>`
	failurePage = `<!DOCTYPE html><html><head><title>LinkedIn authorization</title></head><body style="font-family:sans-serif;text-align:center;padding:48px"><h1>Authorization failed</h1><p>%s</p><p>Return to the terminal for details.</p></body></html>`
)

// CallbackListener is a short-lived loopback server that accepts exactly one
// OAuth redirect. Requests to any other path get a 404 and are otherwise ignored.
type CallbackListener struct {
	port   int
	engine *gin.Engine
	srv    *http.Server
	group  *errgroup.Group

	results   chan model.CallbackResult
	serveErr  chan error
	deliver   sync.Once
	closeOnce sync.Once
}

var _ repository.ICallbackListener = (*CallbackListener)(nil)

// NewCallbackListener prepares a listener for the given port; 0 picks a free one.
func NewCallbackListener(port int) *CallbackListener {
	gin.SetMode(gin.ReleaseMode)
	l := &CallbackListener{
		port:     port,
		results:  make(chan model.CallbackResult, 1),
		serveErr: make(chan error, 1),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET(CallbackPath, l.handleCallback)
	engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found")
	})
	l.engine = engine
	return l
}

// Handler exposes the routing for in-process use.
func (l *CallbackListener) Handler() http.Handler { return l.engine }

func (l *CallbackListener) handleCallback(c *gin.Context) {
	res := model.CallbackResult{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	}
	if res.Code == "" && res.Error == "" {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(fmt.Sprintf(failurePage, "Missing authorization code.")))
		return
	}

	delivered := false
	l.deliver.Do(func() {
		l.results <- res
		delivered = true
	})
	if !delivered {
		c.String(http.StatusConflict, "authorization callback already received")
		return
	}

	if res.Error != "" {
		logger.GetLogger().WithField("error", res.Error).Warn("authorization callback carried an error")
		msg := res.Error
		if res.ErrorDescription != "" {
			msg += ": " + res.ErrorDescription
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(failurePage, html.EscapeString(msg))))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(successPage))
}

// Start binds 127.0.0.1 and serves in the background.
func (l *CallbackListener) Start(ctx context.Context) (int, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(loopbackHost, strconv.Itoa(l.port)))
	if err != nil {
		return 0, fmt.Errorf("%w: port %d: %v", model.ErrListenerBind, l.port, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	l.srv = &http.Server{
		Handler:           l.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	l.group = new(errgroup.Group)
	l.group.Go(func() error {
		err := l.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		l.serveErr <- err
		return err
	})

	logger.GetLogger().WithField("port", port).Debug("callback listener started")
	return port, nil
}

// Wait returns the first well-formed callback.
func (l *CallbackListener) Wait(ctx context.Context) (*model.CallbackResult, error) {
	select {
	case res := <-l.results:
		return &res, nil
	case err := <-l.serveErr:
		return nil, fmt.Errorf("callback listener stopped: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *CallbackListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.srv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = l.srv.Shutdown(ctx)
		if werr := l.group.Wait(); err == nil {
			err = werr
		}
	})
	return err
}
