package seeder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

func TestFleetGeneratesRequestedCount(t *testing.T) {
	g := New(Config{Components: 10, AnomalyRate: 0, Seed: 1})
	fleet := g.Fleet()
	require.Len(t, fleet, 10)

	for _, req := range fleet {
		assert.NotEmpty(t, req.PartNumber)
		assert.NotEmpty(t, req.SerialNumber)
		assert.False(t, req.ManufactureDate.IsZero())
		assert.NotEmpty(t, req.Events)
		assert.Equal(t, models.EventManufacture, req.Events[0].Type)
		require.NotEmpty(t, req.Documents)
		assert.Equal(t, models.DocTypeBirthCertificate, req.Documents[0].DocType)
	}
}

func TestFleetIsDeterministicPerSeed(t *testing.T) {
	a := New(Config{Components: 5, AnomalyRate: 0.5, Seed: 42}).Fleet()
	b := New(Config{Components: 5, AnomalyRate: 0.5, Seed: 42}).Fleet()

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].PartNumber, b[i].PartNumber)
		assert.Equal(t, a[i].SerialNumber, b[i].SerialNumber)
		assert.Len(t, b[i].Events, len(a[i].Events))
	}
}

func TestComponentHistoryIsChronological(t *testing.T) {
	g := New(Config{Components: 1, AnomalyRate: 0, Seed: 7})
	req := g.Component()

	for i := 1; i < len(req.Events); i++ {
		assert.False(t, req.Events[i].EventDate.Before(req.Events[i-1].EventDate),
			"event %d predates event %d", i, i-1)
	}
}

func TestSaneHistoriesHaveMonotonicCounters(t *testing.T) {
	g := New(Config{Components: 20, AnomalyRate: 0, Seed: 3})

	for _, req := range g.Fleet() {
		lastCycles := -1
		for _, e := range req.Events {
			if e.Cycles == nil {
				continue
			}
			assert.GreaterOrEqual(t, *e.Cycles, lastCycles)
			lastCycles = *e.Cycles
		}
	}
}

func TestShopVisitsCarryReleaseCertificates(t *testing.T) {
	g := New(Config{Components: 1, AnomalyRate: 0, Seed: 11})
	req := g.Component()

	releases := 0
	for _, e := range req.Events {
		if e.Type != models.EventReleaseToService {
			continue
		}
		releases++
		require.NotEmpty(t, e.Documents)
		assert.Equal(t, models.DocTypeReleaseCertificate, e.Documents[0].DocType)
	}
	assert.Positive(t, releases)
}
