// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"os"

	"github.com/pdiddy/sporeid/internal/classifier"
	"github.com/pdiddy/sporeid/internal/history"
	"github.com/pdiddy/sporeid/internal/logging"
	"github.com/pdiddy/sporeid/internal/metrics"
	"github.com/pdiddy/sporeid/internal/secrets"
	"github.com/pdiddy/sporeid/internal/session"
	"github.com/pdiddy/sporeid/pkg/types"
)

// app holds the collaborators built from configuration for one command.
type app struct {
	cfg     types.Config
	logger  *slog.Logger
	client  *classifier.Client
	store   history.Store
	metrics *metrics.Metrics
	svc     *session.Service
}

// newApp wires logger, client, history store, metrics and session from
// the loaded configuration. Callers must call close.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	if cfg.Server.APIToken == "" {
		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return nil, err
		}
		cfg.Server.APIToken = s[secrets.APIToken]
		if len(s) > 0 {
			logger.Debug("loaded secrets", "keys", secrets.Keys(s))
		}
	}

	client, err := classifier.New(cfg.Server, classifier.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		client.Close()
		return nil, err
	}

	m, err := metrics.New(nil)
	if err != nil {
		store.Close()
		client.Close()
		return nil, err
	}

	svc, err := session.New(session.Config{
		Client:  client,
		Photo:   classifier.NewRandomClassifier(nil),
		Store:   store,
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		store.Close()
		client.Close()
		return nil, err
	}

	logger.Debug("configuration loaded",
		"server", client.Config().BaseURL,
		"history_backend", cfg.History.Backend,
		"history_path", cfg.History.Path)

	return &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		store:   store,
		metrics: m,
		svc:     svc,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing history", "error", err)
	}
	a.client.Close()
}
