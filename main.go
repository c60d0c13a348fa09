package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkedin-publisher/domain/repository"
	"linkedin-publisher/infrastructure/browser"
	"linkedin-publisher/infrastructure/clients/linkedin"
	"linkedin-publisher/infrastructure/configuration"
	"linkedin-publisher/infrastructure/logger"
	"linkedin-publisher/infrastructure/persistence"
	httpHandler "linkedin-publisher/interfaces/http"
	"linkedin-publisher/server"
	"linkedin-publisher/usecase"

	"golang.org/x/sync/errgroup"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
		os.Exit(exitFailure)
	}
}

func main() {
	defer recoverPanic()

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out io.Writer) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return exitUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage(os.Stderr)
		return exitUsage
	}

	cfg, err := configuration.LoadConfig()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Config load failed")
		writeFailure(out, err)
		return exitFailure
	}
	logger.SetFormat(cfg.Logger.Format)

	li, err := configuration.GetLinkedInConfig(cfg)
	if err != nil {
		writeFailure(out, err)
		return exitFailure
	}

	a := newApp(cfg, li, out)
	defer a.close()

	err = cmd.run(ctx, a, args[1:])
	var ue usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ue):
		fmt.Fprintf(os.Stderr, "%s: %s\n", args[0], ue.msg)
		return exitUsage
	default:
		logger.GetLogger().WithField("command", args[0]).WithField("error", err).Error("Command failed")
		writeFailure(out, err)
		return exitFailure
	}
}

// app holds the wiring shared by every subcommand.
type app struct {
	cfg         configuration.Config
	li          *configuration.LinkedInConfig
	out         io.Writer
	credentials *persistence.CredentialFileRepository
	clients     repository.ILinkedInFactory
	db          *sql.DB
}

func newApp(cfg configuration.Config, li *configuration.LinkedInConfig, out io.Writer) *app {
	return &app{
		cfg:         cfg,
		li:          li,
		out:         out,
		credentials: persistence.NewCredentialFileRepository(li.CredentialsPath),
		clients: linkedin.NewFactory(linkedin.Config{
			BaseURL:     li.APIBaseURL,
			UserInfoURL: li.UserInfoURL,
			APIVersion:  li.APIVersion,
			Timeout:     li.RequestTimeout,
		}),
	}
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// history opens the optional publish history store. A nil interface is
// returned when no database is configured or it cannot be reached.
func (a *app) history() repository.IPublishHistory {
	psql := a.cfg.Database.Psql
	if !psql.Enabled() {
		return nil
	}
	if a.db == nil {
		db, err := persistence.NewPostgreSQLDB(psql)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Publish history unavailable - continuing without it")
			return nil
		}
		if err := persistence.EnsureHistorySchema(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring publish history schema")
			_ = db.Close()
			return nil
		}
		a.db = db
	}
	return persistence.NewPublishHistoryRepository(a.db)
}

func (a *app) authUsecase() usecase.IAuthUsecase {
	li := a.li
	return usecase.NewAuthUsecase(usecase.AuthDeps{
		Provider: func(clientID, clientSecret string) repository.IOAuthProvider {
			return linkedin.NewOAuthClient(linkedin.OAuthConfig{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				AuthURL:      li.AuthURL,
				TokenURL:     li.TokenURL,
				UserInfoURL:  li.UserInfoURL,
				Scopes:       li.Scopes,
				Timeout:      li.RequestTimeout,
			})
		},
		Listener: func() repository.ICallbackListener {
			return httpHandler.NewCallbackListener(li.CallbackPort)
		},
		Credentials: a.credentials,
		Browser:     browser.System{},
		Timeout:     li.CallbackTimeout,
		Scopes:      li.Scopes,
		OnAuthURL: func(authURL string) {
			fmt.Fprintf(os.Stderr, "Opening browser for authorization. If it does not open, visit:\n%s\n", authURL)
		},
	})
}

func (a *app) statusUsecase() usecase.IStatusUsecase {
	return usecase.NewStatusUsecase(a.credentials, a.clients)
}

func (a *app) publishUsecase(history repository.IPublishHistory) usecase.IPublishUsecase {
	return usecase.NewPublishUsecase(a.credentials, a.clients, history, usecase.PublishOptions{
		TruncationThreshold: a.li.TruncationThreshold,
		OnUpload: func(i, total int, path string) {
			fmt.Fprintf(os.Stderr, "Uploading image %d/%d: %s\n", i, total, path)
		},
	})
}

func (a *app) commentUsecase() usecase.ICommentUsecase {
	return usecase.NewCommentUsecase(a.credentials, a.clients)
}

// serve runs the local bridge API until ctx is cancelled.
func (a *app) serve(ctx context.Context, host string, port int) error {
	if a.cfg.App.SecretKey == "" {
		return errors.New("app.secretKey (or SECRET_KEY) must be set to serve the bridge API")
	}
	history := a.history()
	router := server.InitiateRouter(
		httpHandler.NewHealthHandler(history != nil),
		httpHandler.NewLinkedInHandler(a.statusUsecase(), a.publishUsecase(history), a.commentUsecase()),
		a.cfg.App.SecretKey,
		a.cfg.App.AllowOrigins,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.GetLogger().WithField("addr", httpServer.Addr).Info("Starting bridge API")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.GetLogger().Info("Bridge API shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
