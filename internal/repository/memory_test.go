package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

var testDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testComponent(id string) (*models.Component, []models.LifecycleEvent, []models.Document) {
	c := &models.Component{
		ID:              id,
		PartNumber:      "HPC-4410",
		SerialNumber:    "SN-" + id,
		ManufactureDate: testDate,
		Status:          models.StatusServiceable,
		CreatedAt:       testDate,
	}
	events := []models.LifecycleEvent{
		{ID: id + "-e1", ComponentID: id, Type: models.EventManufacture, EventDate: testDate, Sequence: 0},
		{ID: id + "-e2", ComponentID: id, Type: models.EventInstall, EventDate: testDate.AddDate(0, 0, 10), Sequence: 1},
	}
	docs := []models.Document{
		{ID: id + "-d1", ComponentID: id, DocType: models.DocTypeBirthCertificate, UploadedAt: testDate},
	}
	return c, events, docs
}

func TestInMemoryCreateAndLoad(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	c, events, docs := testComponent("comp-1")
	require.NoError(t, repo.CreateComponent(ctx, c, events, docs))

	snap, err := repo.LoadSnapshot(ctx, "comp-1")
	require.NoError(t, err)
	assert.Equal(t, "HPC-4410", snap.Component.PartNumber)
	assert.Len(t, snap.Events, 2)
	assert.Len(t, snap.Documents, 1)
	assert.Empty(t, snap.Exceptions)
}

func TestInMemoryCreateDuplicate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	c, events, docs := testComponent("comp-1")
	require.NoError(t, repo.CreateComponent(ctx, c, events, docs))

	c2, events2, docs2 := testComponent("comp-1")
	assert.ErrorIs(t, repo.CreateComponent(ctx, c2, events2, docs2), ErrComponentExists)
}

func TestInMemoryLoadSnapshotSortsEvents(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	c := &models.Component{ID: "comp-1", PartNumber: "P", SerialNumber: "S", ManufactureDate: testDate}
	// Supplied out of date order.
	events := []models.LifecycleEvent{
		{ID: "e2", ComponentID: "comp-1", Type: models.EventRemove, EventDate: testDate.AddDate(0, 6, 0), Sequence: 0},
		{ID: "e1", ComponentID: "comp-1", Type: models.EventInstall, EventDate: testDate, Sequence: 1},
	}
	require.NoError(t, repo.CreateComponent(ctx, c, events, nil))

	snap, err := repo.LoadSnapshot(ctx, "comp-1")
	require.NoError(t, err)
	require.Len(t, snap.Events, 2)
	assert.Equal(t, "e1", snap.Events[0].ID)
	assert.Equal(t, "e2", snap.Events[1].ID)
}

func TestInMemoryLoadSnapshotNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.LoadSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrComponentNotFound)
}

func TestInMemoryListComponents(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, id := range []string{"comp-1", "comp-2", "comp-3"} {
		c, events, docs := testComponent(id)
		require.NoError(t, repo.CreateComponent(ctx, c, events, docs))
	}

	ids, err := repo.ListComponentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"comp-1", "comp-2", "comp-3"}, ids, "insertion order is preserved")

	components, err := repo.ListComponents(ctx)
	require.NoError(t, err)
	assert.Len(t, components, 3)
}

func TestInMemoryExceptions(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	c, events, docs := testComponent("comp-1")
	require.NoError(t, repo.CreateComponent(ctx, c, events, docs))

	ex := &models.Exception{
		ID:          "ex-1",
		ComponentID: "comp-1",
		Type:        models.ExceptionCycleDiscrepancy,
		Severity:    models.SeverityCritical,
		Title:       "Cycle counter decreased",
		Evidence:    []byte(`{"counter":"cycles"}`),
		Status:      models.ExceptionOpen,
		DetectedAt:  testDate,
	}
	require.NoError(t, repo.CreateException(ctx, ex))

	t.Run("create for missing component fails", func(t *testing.T) {
		bad := *ex
		bad.ID = "ex-2"
		bad.ComponentID = "missing"
		assert.ErrorIs(t, repo.CreateException(ctx, &bad), ErrComponentNotFound)
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetException(ctx, "ex-1")
		require.NoError(t, err)
		assert.Equal(t, models.ExceptionCycleDiscrepancy, got.Type)

		_, err = repo.GetException(ctx, "missing")
		assert.ErrorIs(t, err, ErrExceptionNotFound)
	})

	t.Run("list", func(t *testing.T) {
		list, err := repo.ListExceptions(ctx, "comp-1")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		snap, err := repo.LoadSnapshot(ctx, "comp-1")
		require.NoError(t, err)
		assert.Len(t, snap.Exceptions, 1, "snapshot carries recorded exceptions")
	})

	t.Run("update status", func(t *testing.T) {
		updated, err := repo.UpdateExceptionStatus(ctx, "ex-1", &models.UpdateExceptionRequest{
			Status:     models.ExceptionResolved,
			ResolvedBy: "inspector",
			Resolution: "verified against logbook",
		})
		require.NoError(t, err)
		assert.Equal(t, models.ExceptionResolved, updated.Status)
		require.NotNil(t, updated.ResolvedBy)
		assert.Equal(t, "inspector", *updated.ResolvedBy)
		assert.NotNil(t, updated.ResolvedAt)

		_, err = repo.UpdateExceptionStatus(ctx, "missing", &models.UpdateExceptionRequest{
			Status: models.ExceptionResolved,
		})
		assert.ErrorIs(t, err, ErrExceptionNotFound)
	})
}
