package ingest

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	v1 "github.com/tally-lab/island-tally/internal/api/v1"
	"github.com/tally-lab/island-tally/internal/core/classify"
	"github.com/tally-lab/island-tally/internal/feed"
	"github.com/tally-lab/island-tally/internal/metrics"
	"github.com/tally-lab/island-tally/internal/register"
	"github.com/tally-lab/island-tally/internal/store"
)

// ErrorKind identifies why a submission was rejected.
type ErrorKind string

const (
	KindMalformedInput      ErrorKind = "malformed_input"
	KindMissingDistrictCode ErrorKind = "missing_district_code"
	KindUnclassifiableLevel ErrorKind = "unclassifiable_level"
)

// Error is the rejection reported back to the submitting caller. Rejected
// documents never mutate the store and never trigger a broadcast.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Accepted is what a successful submission returns: the merged district
// record plus the exact snapshot that was broadcast to observers.
type Accepted struct {
	Level    classify.Level
	Record   *v1.DistrictRecord
	Snapshot v1.Snapshot
}

// Service is the ingestion engine: classify → validate → upsert → publish.
type Service struct {
	// mu serializes upsert+publish so every broadcast snapshot reflects a
	// fully merged state. Classification and validation run outside it.
	mu sync.Mutex

	store            *store.DistrictStore
	hub              *feed.Hub
	register         *register.Register
	metrics          *metrics.Metrics
	maxBodySizeBytes int
}

func NewService(st *store.DistrictStore, hub *feed.Hub, reg *register.Register, m *metrics.Metrics, maxBodySizeMB int) *Service {
	if st == nil {
		panic("ingest: store must not be nil")
	}
	if hub == nil {
		panic("ingest: hub must not be nil")
	}
	if reg == nil {
		reg = register.Empty()
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            st,
		hub:              hub,
		register:         reg,
		metrics:          m,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// Submit merges one result document into the store. On success every
// currently attached observer has the returned snapshot queued before Submit
// returns. On rejection the store is untouched and no broadcast happens.
func (s *Service) Submit(ctx context.Context, doc *v1.ResultDocument) (*Accepted, error) {
	if doc == nil {
		return nil, s.reject(KindMalformedInput, "document is empty")
	}

	level := classify.Classify(doc)
	if level == classify.Unknown {
		return nil, s.reject(KindUnclassifiableLevel,
			"unable to determine result level; expected ELECTORAL-DISTRICT, POLLING-DIVISION or POSTAL-VOTE")
	}
	if strings.TrimSpace(doc.EDCode) == "" {
		return nil, s.reject(KindMissingDistrictCode, "ed_code is required")
	}
	if level == classify.PollingDivision && strings.TrimSpace(doc.PDCode) == "" {
		return nil, s.reject(KindMalformedInput, "pd_code is required for polling division results")
	}
	if err := doc.Validate(); err != nil {
		return nil, s.reject(KindMalformedInput, err.Error())
	}

	if doc.Name() == "" {
		doc.EDName = s.register.Name(doc.EDCode)
	}

	s.mu.Lock()
	rec := s.store.Upsert(level, doc)
	snap := s.store.Snapshot()
	s.hub.Publish(snap)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ResultsIngested.WithLabelValues(string(level)).Inc()
	}
	slog.Info("Result ingested",
		"level", level,
		"ed_code", doc.EDCode,
		"pd_code", doc.PDCode,
		"district_name", rec.DistrictName,
		"observers", s.hub.Observers())

	return &Accepted{Level: level, Record: rec, Snapshot: snap}, nil
}

func (s *Service) reject(kind ErrorKind, msg string) *Error {
	if s.metrics != nil {
		s.metrics.ResultsRejected.WithLabelValues(string(kind)).Inc()
	}
	slog.Warn("Result rejected", "reason", kind, "error", msg)
	return &Error{Kind: kind, Message: msg}
}
