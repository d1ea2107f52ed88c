// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session ties the prediction client, the photo fallback and the
// history store together and applies the recording rules: a manual
// classification is recorded only on success and only when history is
// durable; a photo classification is always recorded.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pdiddy/sporeid/internal/history"
	"github.com/pdiddy/sporeid/internal/logging"
	"github.com/pdiddy/sporeid/internal/metrics"
	"github.com/pdiddy/sporeid/pkg/types"
)

// Classifier is the part of classifier.Client the service needs.
type Classifier interface {
	Classify(ctx context.Context, in types.MeasurementInput) types.ClassificationResult
	IsAvailable(ctx context.Context) bool
	Families(ctx context.Context) ([]string, error)
}

// PhotoClassifier produces a label and confidence without measurements.
type PhotoClassifier interface {
	Classify() (string, float64)
}

// Config holds the collaborators of a Service. Client, Photo and Store
// are required.
type Config struct {
	Client  Classifier
	Photo   PhotoClassifier
	Store   history.Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

// Service is safe for concurrent use if its collaborators are.
type Service struct {
	client  Classifier
	photo   PhotoClassifier
	store   history.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New returns a Service over cfg.
func New(cfg Config) (*Service, error) {
	if cfg.Client == nil || cfg.Photo == nil || cfg.Store == nil {
		return nil, errors.New("session needs a client, a photo classifier and a history store")
	}
	s := &Service{
		client:  cfg.Client,
		photo:   cfg.Photo,
		store:   cfg.Store,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// ClassifyMeasurements sends in to the server and returns the result
// unchanged. A failure to record the result is logged and does not
// alter what is returned.
func (s *Service) ClassifyMeasurements(ctx context.Context, in types.MeasurementInput) types.ClassificationResult {
	start := time.Now()
	res := s.client.Classify(ctx, in)
	elapsed := time.Since(start)

	switch r := res.(type) {
	case types.Success:
		s.recordClassification(metrics.OutcomeSuccess, elapsed)
		if s.store.Durable() {
			s.appendHistory(ctx, types.NewHistoryRecord(r.Family, r.Confidence, s.now()))
		}
	case types.Failure:
		s.recordClassification(string(r.Kind), elapsed)
	}
	return res
}

// CapturePhoto classifies a photo with the fallback classifier and
// records the outcome.
func (s *Service) CapturePhoto(ctx context.Context) (types.HistoryRecord, error) {
	label, conf := s.photo.Classify()
	s.recordClassification(metrics.OutcomeFallback, 0)

	rec, err := s.store.Append(ctx, types.NewHistoryRecord(label, conf, s.now()))
	s.recordHistoryOp(metrics.OpAppend, err)
	if err != nil {
		return types.HistoryRecord{}, err
	}
	return rec, nil
}

// History returns all records, most recent first.
func (s *Service) History(ctx context.Context) ([]types.HistoryRecord, error) {
	return s.store.List(ctx)
}

// ClearHistory removes every record.
func (s *Service) ClearHistory(ctx context.Context) error {
	err := s.store.Clear(ctx)
	s.recordHistoryOp(metrics.OpClear, err)
	return err
}

// Available probes the server and records the probe.
func (s *Service) Available(ctx context.Context) bool {
	start := time.Now()
	up := s.client.IsAvailable(ctx)
	if s.metrics != nil {
		s.metrics.RecordHealthProbe(up, time.Since(start))
	}
	return up
}

// Families returns the server's family catalog.
func (s *Service) Families(ctx context.Context) ([]string, error) {
	return s.client.Families(ctx)
}

// HistoryDurable reports whether records survive a restart.
func (s *Service) HistoryDurable() bool { return s.store.Durable() }

func (s *Service) appendHistory(ctx context.Context, rec types.HistoryRecord) {
	_, err := s.store.Append(ctx, rec)
	s.recordHistoryOp(metrics.OpAppend, err)
	if err != nil {
		s.logger.Warn("recording classification", "label", rec.Label, "error", err)
	}
}

func (s *Service) recordClassification(outcome string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordClassification(outcome, d)
	}
}

func (s *Service) recordHistoryOp(op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordHistoryOp(op, err)
	}
}
