package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

func testExceptions(severity models.Severity) []models.Exception {
	return []models.Exception{{
		ID:          "ex-1",
		ComponentID: "comp-1",
		Type:        models.ExceptionCycleDiscrepancy,
		Severity:    severity,
		Title:       "Cycle counter decreased",
		Evidence:    []byte(`{"counter":"cycles"}`),
		Status:      models.ExceptionOpen,
	}}
}

func testComponent() *models.Component {
	return &models.Component{
		ID:           "comp-1",
		PartNumber:   "HPC-4410",
		SerialNumber: "SN000123",
	}
}

func TestWebhookPostsCriticalFindings(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "AeroTrace-Integrity/1.0", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, 5*time.Second)
	err := n.ExceptionsDetected(context.Background(), testComponent(), testExceptions(models.SeverityCritical))
	require.NoError(t, err)

	assert.Equal(t, "comp-1", received["component_id"])
	assert.Equal(t, "SN000123", received["serial_number"])
	assert.Len(t, received["exceptions"], 1)
}

func TestWebhookDropsNonCritical(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, 5*time.Second)
	err := n.ExceptionsDetected(context.Background(), testComponent(), testExceptions(models.SeverityWarning))
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestWebhookServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, 5*time.Second)
	err := n.ExceptionsDetected(context.Background(), testComponent(), testExceptions(models.SeverityCritical))
	assert.ErrorContains(t, err, "502")
}

func TestMultiDeliversToAll(t *testing.T) {
	var first, second int
	a := notifierFunc(func(ctx context.Context, c *models.Component, ex []models.Exception) error {
		first++
		return assert.AnError
	})
	b := notifierFunc(func(ctx context.Context, c *models.Component, ex []models.Exception) error {
		second++
		return nil
	})

	err := Multi{a, b}.ExceptionsDetected(context.Background(), testComponent(), testExceptions(models.SeverityCritical))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second, "failure of one notifier must not stop the others")
}

type notifierFunc func(ctx context.Context, c *models.Component, exceptions []models.Exception) error

func (f notifierFunc) ExceptionsDetected(ctx context.Context, c *models.Component, exceptions []models.Exception) error {
	return f(ctx, c, exceptions)
}
