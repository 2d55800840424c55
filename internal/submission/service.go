// internal/submission/service.go

// Package submission runs a project submission end to end: optional CSV
// ingest, risk estimate, record creation and the best-effort follow-ups.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chronocost/internal/common/logger"
	"chronocost/internal/common/metrics"
	"chronocost/internal/common/observability"
	"chronocost/internal/docstore"
	"chronocost/internal/historical"
	"chronocost/internal/models"
	"chronocost/internal/risk"
)

var (
	ErrSubmissionFailed = errors.New("Failed to submit project")
	ErrProjectNotFound  = errors.New("PROJECT_NOT_FOUND")
)

// Outcomes recorded in metrics.
const (
	OutcomeCreated    = "created"
	OutcomeRejected   = "rejected"
	OutcomeInProgress = "in_progress"
	OutcomeFailed     = "failed"
)

// Locker serializes submissions per user.
type Locker interface {
	Acquire(ctx context.Context, userID string) (func(), error)
}

// Indexer mirrors a stored document for search.
type Indexer interface {
	Index(ctx context.Context, doc *docstore.Document) error
}

// Notifier announces a stored project.
type Notifier interface {
	ProjectSubmitted(ctx context.Context, event models.ProjectSubmittedEvent) ([]models.Notification, error)
}

type Config struct {
	DatabaseID         string
	ProjectsCollection string
}

// Request is one submit of the intake form.
type Request struct {
	UserID string
	Form   models.FormInput
	CSV    *models.Attachment
}

// Result carries the new record's id and where to view it.
type Result struct {
	ProjectID string
	Location  string
	CreatedAt time.Time
	Record    models.ProjectRecord
}

type Service struct {
	cfg       Config
	store     docstore.Store
	estimator *risk.Estimator
	locker    Locker
	indexer   Indexer
	notifier  Notifier
	obs       *observability.Observability
	log       logger.Logger
	newID     func() string
}

// Option wires an optional collaborator.
type Option func(*Service)

func WithLocker(l Locker) Option { return func(s *Service) { s.locker = l } }

func WithIndexer(i Indexer) Option { return func(s *Service) { s.indexer = i } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithObservability(o *observability.Observability) Option {
	return func(s *Service) { s.obs = o }
}

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

func NewService(cfg Config, store docstore.Store, estimator *risk.Estimator, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		store:     store,
		estimator: estimator,
		log:       log.WithFields(map[string]interface{}{"component": "submission"}),
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProjectLocation is the detail view path for a project id.
func ProjectLocation(id string) string {
	return "/projects/" + id
}

// Submit processes one form submission. Errors are ErrSubmissionInProgress,
// historical.ErrInvalidFileType, or ErrSubmissionFailed wrapping the cause.
func (s *Service) Submit(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := s.log.WithFields(map[string]interface{}{"userId": req.UserID})

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, ErrSubmissionInProgress) {
				s.record(ctx, OutcomeInProgress, start)
				return nil, err
			}
			log.Error("Failed to acquire submission guard", map[string]interface{}{"error": err.Error()})
			s.record(ctx, OutcomeFailed, start)
			return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
		defer release()
	}

	var rows []historical.Row
	if req.CSV != nil {
		parsed, err := historical.IngestReader(req.CSV.ContentType, bytes.NewReader(req.CSV.Content))
		if err != nil {
			if errors.Is(err, historical.ErrInvalidFileType) {
				s.record(ctx, OutcomeRejected, start)
				return nil, err
			}
			log.Error("Failed to read historical data", map[string]interface{}{"error": err.Error()})
			s.record(ctx, OutcomeFailed, start)
			return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
		rows = parsed
	}

	estimate := s.estimator.Estimate(risk.Input{ProjectType: req.Form.ProjectType, Terrain: req.Form.Terrain}, rows)

	var summary *historical.Summary
	if len(rows) > 0 {
		sum, err := historical.Summarize(rows)
		if err != nil {
			s.record(ctx, OutcomeFailed, start)
			return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
		summary = &sum
	}

	record := models.NewProjectRecord(req.UserID, req.Form, estimate.Score, string(estimate.Method), summary)

	id := s.newID()
	doc, err := s.store.CreateDocument(ctx, s.cfg.DatabaseID, s.cfg.ProjectsCollection, id, record)
	if err != nil {
		log.Error("Failed to submit project", map[string]interface{}{
			"projectId": id,
			"error":     err.Error(),
		})
		s.record(ctx, OutcomeFailed, start)
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	s.followUp(ctx, doc, record)

	metrics.RiskScores.WithLabelValues(string(estimate.Method)).Observe(estimate.Score)
	s.obs.RecordRiskScore(ctx, estimate.Score, string(estimate.Method))
	s.record(ctx, OutcomeCreated, start)

	log.Info("Project submitted", map[string]interface{}{
		"projectId":  doc.ID,
		"riskScore":  estimate.Score,
		"riskMethod": string(estimate.Method),
		"rows":       len(rows),
	})

	return &Result{
		ProjectID: doc.ID,
		Location:  ProjectLocation(doc.ID),
		CreatedAt: doc.CreatedAt,
		Record:    record,
	}, nil
}

// followUp indexes and announces a stored record. Neither step can fail
// the submission.
func (s *Service) followUp(ctx context.Context, doc *docstore.Document, record models.ProjectRecord) {
	if s.indexer != nil {
		if err := s.indexer.Index(ctx, doc); err != nil {
			metrics.SideEffectFailures.WithLabelValues("index").Inc()
			s.log.Warn("Failed to index project", map[string]interface{}{"projectId": doc.ID, "error": err.Error()})
		}
	}
	if s.notifier != nil {
		_, err := s.notifier.ProjectSubmitted(ctx, models.ProjectSubmittedEvent{
			ProjectID:   doc.ID,
			UserID:      record.UserID,
			ProjectName: record.ProjectName,
			ProjectType: record.ProjectType,
			RiskScore:   record.RiskScore,
			SubmittedAt: doc.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			metrics.SideEffectFailures.WithLabelValues("notify").Inc()
			s.log.Warn("Failed to notify project submission", map[string]interface{}{"projectId": doc.ID, "error": err.Error()})
		}
	}
}

// Get returns a stored project owned by userID. Projects of other users
// are reported as not found.
func (s *Service) Get(ctx context.Context, userID, projectID string) (*models.Project, error) {
	doc, err := s.store.GetDocument(ctx, s.cfg.DatabaseID, s.cfg.ProjectsCollection, projectID)
	if err != nil {
		if errors.Is(err, docstore.ErrDocumentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		return nil, err
	}

	var record models.ProjectRecord
	if err := json.Unmarshal(doc.Data, &record); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", projectID, err)
	}
	if record.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}

	return &models.Project{
		ID:            doc.ID,
		CreatedAt:     doc.CreatedAt.Format(time.RFC3339),
		ProjectRecord: record,
	}, nil
}

func (s *Service) record(ctx context.Context, outcome string, start time.Time) {
	elapsed := time.Since(start)
	metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	metrics.SubmissionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	s.obs.RecordSubmission(ctx, outcome, elapsed)
}
