package integrity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/aerotrace-systems/aerotrace/internal/lock"
	"github.com/aerotrace-systems/aerotrace/internal/logging"
	"github.com/aerotrace-systems/aerotrace/internal/models"
	"github.com/aerotrace-systems/aerotrace/internal/notify"
	"github.com/aerotrace-systems/aerotrace/internal/repository"
)

// ScanSummary aggregates the exceptions on a component after a scan.
type ScanSummary struct {
	Total         int `json:"total"`
	Critical      int `json:"critical"`
	Warning       int `json:"warning"`
	Info          int `json:"info"`
	NewlyDetected int `json:"newly_detected"`
}

// ScanResult is the outcome of scanning one component: every exception on
// record (pre-existing plus newly persisted) and the summary counts.
type ScanResult struct {
	ComponentID string             `json:"component_id"`
	Exceptions  []models.Exception `json:"exceptions"`
	Summary     ScanSummary        `json:"summary"`
}

// EngineConfig wires the engine's collaborators. Zero-value fields get
// working defaults: real clock, in-process locking, no notifications.
type EngineConfig struct {
	Repo         repository.Repository
	Locker       lock.Locker
	Notifier     notify.Notifier
	Clock        Clock
	Logger       *logging.Logger
	FleetWorkers int
}

// Engine runs the integrity checks over component snapshots, deduplicates
// findings against recorded exceptions, and persists new ones.
type Engine struct {
	repo         repository.Repository
	locker       lock.Locker
	notifier     notify.Notifier
	clock        Clock
	logger       *logging.Logger
	fleetWorkers int
}

// NewEngine creates an engine from cfg. cfg.Repo is required.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		repo:         cfg.Repo,
		locker:       cfg.Locker,
		notifier:     cfg.Notifier,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		fleetWorkers: cfg.FleetWorkers,
	}
	if e.locker == nil {
		e.locker = lock.NewLocalLocker()
	}
	if e.notifier == nil {
		e.notifier = notify.Noop()
	}
	if e.clock == nil {
		e.clock = RealClock()
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	if e.fleetWorkers <= 0 {
		e.fleetWorkers = 4
	}
	return e
}

// ScanComponent loads the component's full history, runs every check,
// persists findings that are not already on record, and returns the current
// exception set with summary counts. Re-running against unchanged data
// reports zero newly detected exceptions.
//
// Exceptions are persisted one at a time: a failed write is logged and
// skipped so the remaining findings still land.
func (e *Engine) ScanComponent(ctx context.Context, componentID string) (*ScanResult, error) {
	// Concurrent scans of the same component would race the dedup read
	// below, so they are serialized per component id.
	unlock, err := e.locker.Acquire(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	defer unlock()

	snap, err := e.repo.LoadSnapshot(ctx, componentID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now().UTC()
	issues := runChecks(snap, now)

	// Index non-resolved recorded exceptions by dedup key. Resolved and
	// false-positive findings stay out so a recurrence is re-reported.
	seen := make(map[string]struct{}, len(snap.Exceptions))
	for _, ex := range snap.Exceptions {
		if ex.Status == models.ExceptionResolved || ex.Status == models.ExceptionFalsePositive {
			continue
		}
		fp, err := Fingerprint(ex.Evidence)
		if err != nil {
			e.logger.WarnContext(ctx, "skipping recorded exception with undecodable evidence",
				logging.ExceptionID(ex.ID), logging.Err(err))
			continue
		}
		seen[dedupKey(string(ex.Type), fp)] = struct{}{}
	}

	var detected []models.Exception
	for _, issue := range issues {
		raw, err := json.Marshal(issue.Evidence)
		if err != nil {
			e.logger.ErrorContext(ctx, "failed to serialize evidence",
				logging.ComponentID(componentID), logging.Err(err))
			continue
		}
		fp, err := Fingerprint(raw)
		if err != nil {
			e.logger.ErrorContext(ctx, "failed to fingerprint evidence",
				logging.ComponentID(componentID), logging.Err(err))
			continue
		}
		key := dedupKey(string(issue.Type), fp)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate exception id: %w", err)
		}
		ex := models.Exception{
			ID:          id.String(),
			ComponentID: componentID,
			Type:        issue.Type,
			Severity:    issue.Severity,
			Title:       issue.Title,
			Description: issue.Description,
			Evidence:    raw,
			Status:      models.ExceptionOpen,
			DetectedAt:  now,
		}
		if err := e.repo.CreateException(ctx, &ex); err != nil {
			e.logger.ErrorContext(ctx, "failed to persist exception",
				logging.ComponentID(componentID),
				logging.ExceptionType(string(issue.Type)), logging.Err(err))
			continue
		}
		detected = append(detected, ex)
		exceptionsDetectedTotal.WithLabelValues(string(ex.Severity)).Inc()
	}

	all := append(append([]models.Exception(nil), snap.Exceptions...), detected...)
	result := &ScanResult{
		ComponentID: componentID,
		Exceptions:  all,
		Summary:     summarize(all, len(detected)),
	}

	componentScansTotal.Inc()
	if len(detected) > 0 {
		e.logger.InfoContext(ctx, "integrity scan found new exceptions",
			logging.ComponentID(componentID),
			logging.Serial(snap.Component.SerialNumber),
			logging.Count(len(detected)))
		if err := e.notifier.ExceptionsDetected(ctx, &snap.Component, detected); err != nil {
			// Notification delivery never fails a scan.
			e.logger.WarnContext(ctx, "failed to publish exception notification",
				logging.ComponentID(componentID), logging.Err(err))
		}
	}

	return result, nil
}

func summarize(exceptions []models.Exception, newlyDetected int) ScanSummary {
	s := ScanSummary{Total: len(exceptions), NewlyDetected: newlyDetected}
	for _, ex := range exceptions {
		switch ex.Severity {
		case models.SeverityCritical:
			s.Critical++
		case models.SeverityWarning:
			s.Warning++
		case models.SeverityInfo:
			s.Info++
		}
	}
	return s
}
