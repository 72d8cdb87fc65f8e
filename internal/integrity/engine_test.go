package integrity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerotrace-systems/aerotrace/internal/models"
	"github.com/aerotrace-systems/aerotrace/internal/notify"
	"github.com/aerotrace-systems/aerotrace/internal/repository"
)

// mockRepository is a func-field mock of repository.Repository.
type mockRepository struct {
	createComponentFunc       func(ctx context.Context, c *models.Component, events []models.LifecycleEvent, docs []models.Document) error
	loadSnapshotFunc          func(ctx context.Context, componentID string) (*models.ComponentSnapshot, error)
	listComponentIDsFunc      func(ctx context.Context) ([]string, error)
	listComponentsFunc        func(ctx context.Context) ([]*models.Component, error)
	createExceptionFunc       func(ctx context.Context, e *models.Exception) error
	getExceptionFunc          func(ctx context.Context, id string) (*models.Exception, error)
	listExceptionsFunc        func(ctx context.Context, componentID string) ([]models.Exception, error)
	updateExceptionStatusFunc func(ctx context.Context, id string, req *models.UpdateExceptionRequest) (*models.Exception, error)
}

func (m *mockRepository) CreateComponent(ctx context.Context, c *models.Component, events []models.LifecycleEvent, docs []models.Document) error {
	if m.createComponentFunc != nil {
		return m.createComponentFunc(ctx, c, events, docs)
	}
	return nil
}

func (m *mockRepository) LoadSnapshot(ctx context.Context, componentID string) (*models.ComponentSnapshot, error) {
	if m.loadSnapshotFunc != nil {
		return m.loadSnapshotFunc(ctx, componentID)
	}
	return nil, repository.ErrComponentNotFound
}

func (m *mockRepository) ListComponentIDs(ctx context.Context) ([]string, error) {
	if m.listComponentIDsFunc != nil {
		return m.listComponentIDsFunc(ctx)
	}
	return nil, nil
}

func (m *mockRepository) ListComponents(ctx context.Context) ([]*models.Component, error) {
	if m.listComponentsFunc != nil {
		return m.listComponentsFunc(ctx)
	}
	return nil, nil
}

func (m *mockRepository) CreateException(ctx context.Context, e *models.Exception) error {
	if m.createExceptionFunc != nil {
		return m.createExceptionFunc(ctx, e)
	}
	return nil
}

func (m *mockRepository) GetException(ctx context.Context, id string) (*models.Exception, error) {
	if m.getExceptionFunc != nil {
		return m.getExceptionFunc(ctx, id)
	}
	return nil, repository.ErrExceptionNotFound
}

func (m *mockRepository) ListExceptions(ctx context.Context, componentID string) ([]models.Exception, error) {
	if m.listExceptionsFunc != nil {
		return m.listExceptionsFunc(ctx, componentID)
	}
	return nil, nil
}

func (m *mockRepository) UpdateExceptionStatus(ctx context.Context, id string, req *models.UpdateExceptionRequest) (*models.Exception, error) {
	if m.updateExceptionStatusFunc != nil {
		return m.updateExceptionStatusFunc(ctx, id, req)
	}
	return nil, repository.ErrExceptionNotFound
}

func (m *mockRepository) Close() error { return nil }

// seedComponent stores a component whose cycle counter regresses, which
// trips exactly one critical exception.
func seedComponent(t *testing.T, repo repository.Repository) string {
	t.Helper()

	c := models.Component{
		ID:              "comp-1",
		PartNumber:      "HPC-4410",
		SerialNumber:    "SN000123",
		ManufactureDate: baseDate,
		Status:          models.StatusServiceable,
	}
	events := []models.LifecycleEvent{
		{ID: "e1", ComponentID: c.ID, Type: models.EventManufacture, EventDate: day(0), Sequence: 0,
			Facility: certFacility(), Cycles: intPtr(100)},
		{ID: "e2", ComponentID: c.ID, Type: models.EventReceivingInspection, EventDate: day(10), Sequence: 1,
			Facility: certFacility(), Cycles: intPtr(90)},
	}
	docs := []models.Document{
		{ID: "doc-1", ComponentID: c.ID, DocType: models.DocTypeBirthCertificate, UploadedAt: day(0)},
	}
	require.NoError(t, repo.CreateComponent(context.Background(), &c, events, docs))
	return c.ID
}

func TestScanComponentDetectsAndPersists(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	id := seedComponent(t, repo)

	engine := NewEngine(EngineConfig{Repo: repo, Clock: FixedClock(day(20))})
	result, err := engine.ScanComponent(context.Background(), id)
	require.NoError(t, err)

	require.Equal(t, 1, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.NewlyDetected)
	assert.Equal(t, 1, result.Summary.Critical)

	ex := result.Exceptions[0]
	assert.Equal(t, models.ExceptionCycleDiscrepancy, ex.Type)
	assert.Equal(t, models.ExceptionOpen, ex.Status)
	assert.NotEmpty(t, ex.ID)
	assert.Equal(t, day(20), ex.DetectedAt)

	stored, err := repo.ListExceptions(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestScanComponentIsIdempotent(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	id := seedComponent(t, repo)

	engine := NewEngine(EngineConfig{Repo: repo, Clock: FixedClock(day(20))})

	first, err := engine.ScanComponent(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 1, first.Summary.NewlyDetected)

	second, err := engine.ScanComponent(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Summary.NewlyDetected)
	assert.Equal(t, 1, second.Summary.Total)

	// Still idempotent on a later day: evidence fingerprints must not
	// depend on when the scan runs.
	third, err := engine.ScanComponent(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, third.Summary.NewlyDetected)
}

func TestScanComponentResolvedExceptionsRecur(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	id := seedComponent(t, repo)

	engine := NewEngine(EngineConfig{Repo: repo, Clock: FixedClock(day(20))})

	first, err := engine.ScanComponent(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 1, first.Summary.NewlyDetected)

	// Resolving the exception without fixing the data means the next scan
	// reports it again.
	_, err = repo.UpdateExceptionStatus(context.Background(), first.Exceptions[0].ID, &models.UpdateExceptionRequest{
		Status:     models.ExceptionResolved,
		ResolvedBy: "inspector",
	})
	require.NoError(t, err)

	second, err := engine.ScanComponent(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Summary.NewlyDetected)
}

func TestScanComponentNotFound(t *testing.T) {
	engine := NewEngine(EngineConfig{Repo: repository.NewInMemoryRepository()})

	_, err := engine.ScanComponent(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrComponentNotFound)
}

func TestScanComponentPersistenceFailureSkipsFinding(t *testing.T) {
	// The seeded component trips two findings: a cycle regression and a
	// missing birth certificate. The first write fails; the second must
	// still land.
	snap := snapshot(
		models.LifecycleEvent{Type: models.EventManufacture, EventDate: day(0), Cycles: intPtr(100)},
		models.LifecycleEvent{Type: models.EventReceivingInspection, EventDate: day(10), Cycles: intPtr(90)},
	)

	writes := 0
	repo := &mockRepository{
		loadSnapshotFunc: func(ctx context.Context, componentID string) (*models.ComponentSnapshot, error) {
			return snap, nil
		},
		createExceptionFunc: func(ctx context.Context, e *models.Exception) error {
			writes++
			if writes == 1 {
				return errors.New("connection reset")
			}
			return nil
		},
	}

	engine := NewEngine(EngineConfig{Repo: repo, Clock: FixedClock(day(20))})
	result, err := engine.ScanComponent(context.Background(), "comp-1")
	require.NoError(t, err)

	assert.Equal(t, 2, writes)
	assert.Equal(t, 1, result.Summary.NewlyDetected)
}

// recordingNotifier captures published notifications.
type recordingNotifier struct {
	calls int
	last  []models.Exception
}

func (n *recordingNotifier) ExceptionsDetected(ctx context.Context, c *models.Component, exceptions []models.Exception) error {
	n.calls++
	n.last = exceptions
	return nil
}

func TestScanComponentNotifiesOnNewFindings(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	id := seedComponent(t, repo)

	notifier := &recordingNotifier{}
	engine := NewEngine(EngineConfig{Repo: repo, Clock: FixedClock(day(20)), Notifier: notifier})

	_, err := engine.ScanComponent(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 1, notifier.calls)
	assert.Len(t, notifier.last, 1)

	// No new findings, no notification.
	_, err = engine.ScanComponent(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.calls)
}

func TestScanComponentNotifierFailureDoesNotFailScan(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	id := seedComponent(t, repo)

	failing := notify.Multi{notifierFunc(func(ctx context.Context, c *models.Component, ex []models.Exception) error {
		return errors.New("nats unavailable")
	})}

	engine := NewEngine(EngineConfig{Repo: repo, Clock: FixedClock(day(20)), Notifier: failing})

	result, err := engine.ScanComponent(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.NewlyDetected)
}

type notifierFunc func(ctx context.Context, c *models.Component, exceptions []models.Exception) error

func (f notifierFunc) ExceptionsDetected(ctx context.Context, c *models.Component, exceptions []models.Exception) error {
	return f(ctx, c, exceptions)
}
