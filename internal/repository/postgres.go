package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// CreateComponent inserts a component together with its initial events and
// documents in a single transaction.
func (r *PostgresRepository) CreateComponent(ctx context.Context, c *models.Component, events []models.LifecycleEvent, docs []models.Document) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO components (id, part_number, serial_number, description, manufacture_date, status, retired_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.PartNumber, c.SerialNumber, c.Description, c.ManufactureDate, c.Status, c.RetiredAt, c.CreatedAt)
	if err != nil {
		// Unique constraint violation (23505)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrComponentExists
		}
		return fmt.Errorf("failed to create component: %w", err)
	}

	for i := range events {
		if err := insertEvent(ctx, tx, &events[i]); err != nil {
			return err
		}
	}

	for i := range docs {
		d := &docs[i]
		_, err = tx.Exec(ctx, `
			INSERT INTO documents (id, component_id, doc_type, title, uri, uploaded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, d.ID, d.ComponentID, d.DocType, d.Title, d.URI, d.UploadedAt)
		if err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func insertEvent(ctx context.Context, tx pgx.Tx, e *models.LifecycleEvent) error {
	evidence, err := json.Marshal(e.Evidence)
	if err != nil {
		return fmt.Errorf("failed to marshal event evidence: %w", err)
	}
	documents, err := json.Marshal(e.Documents)
	if err != nil {
		return fmt.Errorf("failed to marshal event documents: %w", err)
	}
	parts, err := json.Marshal(e.PartsConsumed)
	if err != nil {
		return fmt.Errorf("failed to marshal parts consumed: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO lifecycle_events (
			id, component_id, event_type, event_date, sequence,
			facility_name, facility_type, facility_certificate,
			performer_name, performer_certification,
			flight_hours, cycles, aircraft, operator,
			work_order, cmm_reference, notes, record_hash,
			evidence, documents, parts_consumed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, e.ID, e.ComponentID, e.Type, e.EventDate, e.Sequence,
		e.Facility.Name, e.Facility.Type, e.Facility.CertificateNumber,
		e.Performer.Name, e.Performer.Certification,
		e.FlightHours, e.Cycles, e.Aircraft, e.Operator,
		e.WorkOrder, e.CMMReference, e.Notes, e.RecordHash,
		evidence, documents, parts)
	if err != nil {
		return fmt.Errorf("failed to create lifecycle event: %w", err)
	}
	return nil
}

// LoadSnapshot retrieves a component with its full history. Events come back
// sorted ascending by event date, ties broken by recorded sequence.
func (r *PostgresRepository) LoadSnapshot(ctx context.Context, componentID string) (*models.ComponentSnapshot, error) {
	snap := &models.ComponentSnapshot{}

	err := r.pool.QueryRow(ctx, `
		SELECT id, part_number, serial_number, description, manufacture_date, status, retired_at, created_at
		FROM components
		WHERE id = $1
	`, componentID).Scan(
		&snap.Component.ID, &snap.Component.PartNumber, &snap.Component.SerialNumber,
		&snap.Component.Description, &snap.Component.ManufactureDate, &snap.Component.Status,
		&snap.Component.RetiredAt, &snap.Component.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrComponentNotFound
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}

	events, err := r.loadEvents(ctx, componentID)
	if err != nil {
		return nil, err
	}
	snap.Events = events

	docs, err := r.loadDocuments(ctx, componentID)
	if err != nil {
		return nil, err
	}
	snap.Documents = docs

	exceptions, err := r.ListExceptions(ctx, componentID)
	if err != nil {
		return nil, err
	}
	snap.Exceptions = exceptions

	alerts, err := r.loadAlerts(ctx, componentID)
	if err != nil {
		return nil, err
	}
	snap.Alerts = alerts

	return snap, nil
}

func (r *PostgresRepository) loadEvents(ctx context.Context, componentID string) ([]models.LifecycleEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, component_id, event_type, event_date, sequence,
			facility_name, facility_type, facility_certificate,
			performer_name, performer_certification,
			flight_hours, cycles, aircraft, operator,
			work_order, cmm_reference, notes, record_hash,
			evidence, documents, parts_consumed
		FROM lifecycle_events
		WHERE component_id = $1
		ORDER BY event_date ASC, sequence ASC
	`, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.LifecycleEvent
	for rows.Next() {
		var e models.LifecycleEvent
		var evidence, documents, parts []byte
		err := rows.Scan(
			&e.ID, &e.ComponentID, &e.Type, &e.EventDate, &e.Sequence,
			&e.Facility.Name, &e.Facility.Type, &e.Facility.CertificateNumber,
			&e.Performer.Name, &e.Performer.Certification,
			&e.FlightHours, &e.Cycles, &e.Aircraft, &e.Operator,
			&e.WorkOrder, &e.CMMReference, &e.Notes, &e.RecordHash,
			&evidence, &documents, &parts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if len(evidence) > 0 {
			if err := json.Unmarshal(evidence, &e.Evidence); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event evidence: %w", err)
			}
		}
		if len(documents) > 0 {
			if err := json.Unmarshal(documents, &e.Documents); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event documents: %w", err)
			}
		}
		if len(parts) > 0 {
			if err := json.Unmarshal(parts, &e.PartsConsumed); err != nil {
				return nil, fmt.Errorf("failed to unmarshal parts consumed: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *PostgresRepository) loadDocuments(ctx context.Context, componentID string) ([]models.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, component_id, doc_type, title, uri, uploaded_at
		FROM documents
		WHERE component_id = $1
		ORDER BY uploaded_at ASC
	`, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.ComponentID, &d.DocType, &d.Title, &d.URI, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *PostgresRepository) loadAlerts(ctx context.Context, componentID string) ([]models.Alert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, component_id, title, severity, created_by, created_at
		FROM alerts
		WHERE component_id = $1
		ORDER BY created_at ASC
	`, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.ComponentID, &a.Title, &a.Severity, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// ListComponentIDs returns every component id, oldest first.
func (r *PostgresRepository) ListComponentIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM components ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list component ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan component id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListComponents returns every component, oldest first.
func (r *PostgresRepository) ListComponents(ctx context.Context) ([]*models.Component, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, part_number, serial_number, description, manufacture_date, status, retired_at, created_at
		FROM components
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	defer rows.Close()

	var components []*models.Component
	for rows.Next() {
		c := &models.Component{}
		err := rows.Scan(&c.ID, &c.PartNumber, &c.SerialNumber, &c.Description,
			&c.ManufactureDate, &c.Status, &c.RetiredAt, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

// CreateException persists a newly detected exception.
func (r *PostgresRepository) CreateException(ctx context.Context, e *models.Exception) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO exceptions (id, component_id, exception_type, severity, title, description, evidence, status, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.ComponentID, e.Type, e.Severity, e.Title, e.Description, []byte(e.Evidence), e.Status, e.DetectedAt)
	if err != nil {
		return fmt.Errorf("failed to create exception: %w", err)
	}
	return nil
}

// ListExceptions returns all exceptions for a component, oldest first.
func (r *PostgresRepository) ListExceptions(ctx context.Context, componentID string) ([]models.Exception, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, component_id, exception_type, severity, title, description, evidence, status,
			detected_at, resolved_by, resolved_at, resolution
		FROM exceptions
		WHERE component_id = $1
		ORDER BY detected_at ASC, id ASC
	`, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []models.Exception
	for rows.Next() {
		var e models.Exception
		var evidence []byte
		var resolution *string
		err := rows.Scan(&e.ID, &e.ComponentID, &e.Type, &e.Severity, &e.Title, &e.Description,
			&evidence, &e.Status, &e.DetectedAt, &e.ResolvedBy, &e.ResolvedAt, &resolution)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exception: %w", err)
		}
		e.Evidence = evidence
		if resolution != nil {
			e.Resolution = *resolution
		}
		exceptions = append(exceptions, e)
	}
	return exceptions, rows.Err()
}

// UpdateExceptionStatus applies a human-review status transition.
func (r *PostgresRepository) UpdateExceptionStatus(ctx context.Context, id string, req *models.UpdateExceptionRequest) (*models.Exception, error) {
	var resolvedBy *string
	var resolvedAt *time.Time
	var resolution *string

	if req.Status == models.ExceptionResolved || req.Status == models.ExceptionFalsePositive {
		now := time.Now().UTC()
		resolvedAt = &now
		if req.ResolvedBy != "" {
			resolvedBy = &req.ResolvedBy
		}
		if req.Resolution != "" {
			resolution = &req.Resolution
		}
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE exceptions
		SET status = $2, resolved_by = COALESCE($3, resolved_by),
			resolved_at = COALESCE($4, resolved_at),
			resolution = COALESCE($5, resolution)
		WHERE id = $1
	`, id, req.Status, resolvedBy, resolvedAt, resolution)
	if err != nil {
		return nil, fmt.Errorf("failed to update exception: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrExceptionNotFound
	}

	return r.GetException(ctx, id)
}

// GetException retrieves a single exception by id.
func (r *PostgresRepository) GetException(ctx context.Context, id string) (*models.Exception, error) {
	var e models.Exception
	var evidence []byte
	var resolution *string
	err := r.pool.QueryRow(ctx, `
		SELECT id, component_id, exception_type, severity, title, description, evidence, status,
			detected_at, resolved_by, resolved_at, resolution
		FROM exceptions
		WHERE id = $1
	`, id).Scan(&e.ID, &e.ComponentID, &e.Type, &e.Severity, &e.Title, &e.Description,
		&evidence, &e.Status, &e.DetectedAt, &e.ResolvedBy, &e.ResolvedAt, &resolution)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExceptionNotFound
		}
		return nil, fmt.Errorf("failed to get exception: %w", err)
	}
	e.Evidence = evidence
	if resolution != nil {
		e.Resolution = *resolution
	}
	return &e, nil
}

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
