package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/config"
	"github.com/fentz26/n3dash/internal/dashboard"
	"github.com/fentz26/n3dash/internal/notify"
	"github.com/fentz26/n3dash/internal/reference"
	"github.com/fentz26/n3dash/internal/session"
	"github.com/fentz26/n3dash/internal/store"
	"github.com/fentz26/n3dash/internal/workitems"
)

// app is everything one command invocation needs.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	client *api.Client
	db     *store.Store
	dash   *dashboard.Dashboard

	logFile io.Closer
}

// openApp wires the client, local store and stores, and restores any
// persisted login. Outcome messages go to pub.
func openApp(ctx context.Context, pub notify.Publisher) (*app, error) {
	cfg := appCfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	log, logFile, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := store.New(cfg.Storage.Path)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("open local store: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log),
	)

	sess := session.New(client, pub,
		session.WithPersister(db),
		session.WithLogger(log),
	)
	items := workitems.New(client, pub, workitems.WithLogger(log))
	ref := reference.New(client,
		reference.WithCache(db, func() string {
			if u := sess.User(); u != nil {
				return u.UserID
			}
			return ""
		}),
		reference.WithLogger(log),
	)

	if _, err := sess.Restore(ctx); err != nil {
		log.Warn("restore session failed", "error", err)
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		client: client,
		db:     db,
		dash: dashboard.New(sess, items, ref, dashboard.Options{
			PrefetchProjects: cfg.Dashboard.PrefetchProjects,
			TodayLimit:       cfg.Dashboard.TodayLimit,
			FallbackLimit:    cfg.Dashboard.FallbackLimit,
			Logger:           log,
		}),
		logFile: logFile,
	}
	return a, nil
}

// requireSession fails with a hint when no login is active.
func (a *app) requireSession() error {
	if !a.dash.Session.Authenticated() {
		return fmt.Errorf("%w: run 'n3dash login' first", dashboard.ErrNotAuthenticated)
	}
	return nil
}

func (a *app) Close() error {
	err := a.db.Close()
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}

// newLogger builds the JSON logger described by cfg. Logs go to cfg.Path
// when set so they never interleave with command output.
func newLogger(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Path == "" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), f, nil
}

// printer shows toasts on a writer as they happen.
type printer struct {
	w io.Writer
}

func (p printer) Notify(message string, kind notify.Kind) {
	prefix := "•"
	switch kind {
	case notify.KindSuccess:
		prefix = "✓"
	case notify.KindError:
		prefix = "✗"
	}
	fmt.Fprintf(p.w, "%s %s\n", prefix, message)
}
