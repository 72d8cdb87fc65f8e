package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aerotrace-systems/aerotrace/internal/integrity"
	"github.com/aerotrace-systems/aerotrace/internal/models"
	"github.com/aerotrace-systems/aerotrace/internal/repository"
	"github.com/aerotrace-systems/aerotrace/internal/trace"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Service handles component ingestion, integrity scans, trace reports and
// exception review.
type Service struct {
	repo   repository.Repository
	engine *integrity.Engine
	clock  integrity.Clock
}

// NewService creates a new service instance.
func NewService(repo repository.Repository, engine *integrity.Engine, clock integrity.Clock) *Service {
	if clock == nil {
		clock = integrity.RealClock()
	}
	return &Service{repo: repo, engine: engine, clock: clock}
}

// IngestComponent registers a component with the history that arrived with
// it. Ids and event sequence numbers are assigned here; dates and counters
// are stored as given, since inconsistencies are the integrity engine's
// job to report, not ingestion's to reject.
func (s *Service) IngestComponent(ctx context.Context, req *models.IngestComponentRequest) (*models.Component, error) {
	if req.PartNumber == "" || req.SerialNumber == "" {
		return nil, fmt.Errorf("%w: part_number and serial_number are required", ErrInvalidRequest)
	}
	if req.ManufactureDate.IsZero() {
		return nil, fmt.Errorf("%w: manufacture_date is required", ErrInvalidRequest)
	}

	status := req.Status
	if status == "" {
		status = models.StatusServiceable
	}

	componentID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate component id: %w", err)
	}

	c := &models.Component{
		ID:              componentID.String(),
		PartNumber:      req.PartNumber,
		SerialNumber:    req.SerialNumber,
		Description:     req.Description,
		ManufactureDate: req.ManufactureDate,
		Status:          status,
		RetiredAt:       req.RetiredAt,
		CreatedAt:       s.clock.Now().UTC(),
	}

	events := make([]models.LifecycleEvent, len(req.Events))
	for i, e := range req.Events {
		eventID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate event id: %w", err)
		}
		e.ID = eventID.String()
		e.ComponentID = c.ID
		e.Sequence = i
		events[i] = e
	}

	docs := make([]models.Document, len(req.Documents))
	for i, d := range req.Documents {
		docID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate document id: %w", err)
		}
		d.ID = docID.String()
		d.ComponentID = c.ID
		if d.UploadedAt.IsZero() {
			d.UploadedAt = c.CreatedAt
		}
		docs[i] = d
	}

	if err := s.repo.CreateComponent(ctx, c, events, docs); err != nil {
		return nil, err
	}
	return c, nil
}

// GetSnapshot returns a component with its full history.
func (s *Service) GetSnapshot(ctx context.Context, componentID string) (*models.ComponentSnapshot, error) {
	return s.repo.LoadSnapshot(ctx, componentID)
}

// ListComponents returns every component.
func (s *Service) ListComponents(ctx context.Context) ([]*models.Component, error) {
	return s.repo.ListComponents(ctx)
}

// ScanComponent runs an integrity scan for one component.
func (s *Service) ScanComponent(ctx context.Context, componentID string) (*integrity.ScanResult, error) {
	return s.engine.ScanComponent(ctx, componentID)
}

// ScanFleet runs an integrity sweep over every component.
func (s *Service) ScanFleet(ctx context.Context) (*integrity.FleetScanResult, error) {
	return s.engine.ScanFleet(ctx)
}

// TraceReport computes the trace completeness report for one component.
func (s *Service) TraceReport(ctx context.Context, componentID string) (*trace.Report, error) {
	snap, err := s.repo.LoadSnapshot(ctx, componentID)
	if err != nil {
		return nil, err
	}

	var retiredAt *time.Time
	if snap.Component.Retired() {
		retiredAt = snap.Component.RetiredAt
	}

	report := trace.Calculate(trace.Input{
		ManufactureDate: snap.Component.ManufactureDate,
		Events:          snap.Events,
		Documents:       snap.Documents,
		RetiredAt:       retiredAt,
	}, s.clock.Now().UTC())
	return &report, nil
}

// ListExceptions returns all exceptions recorded for a component.
func (s *Service) ListExceptions(ctx context.Context, componentID string) ([]models.Exception, error) {
	return s.repo.ListExceptions(ctx, componentID)
}

// ReviewException applies a human-review status transition to an
// exception. Resolved and false-positive exceptions are terminal.
func (s *Service) ReviewException(ctx context.Context, id string, req *models.UpdateExceptionRequest) (*models.Exception, error) {
	switch req.Status {
	case models.ExceptionInvestigating, models.ExceptionResolved, models.ExceptionFalsePositive:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, req.Status)
	}

	current, err := s.repo.GetException(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.ValidStatusTransition(current.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, req.Status)
	}

	return s.repo.UpdateExceptionStatus(ctx, id, req)
}
