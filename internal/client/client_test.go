package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/healthz", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).Health())
}

func TestHealthServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := New(srv.URL).Health()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestListComponents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/components", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"components": []models.Component{
				{ID: "c-1", PartNumber: "HPU-1000", SerialNumber: "SN000001"},
				{ID: "c-2", PartNumber: "FCU-2000", SerialNumber: "SN000002"},
			},
		})
	}))
	defer srv.Close()

	comps, err := New(srv.URL).ListComponents()
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, "HPU-1000", comps[0].PartNumber)
}

func TestIngestComponentSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.IngestComponentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "HPU-1000", req.PartNumber)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Component{
			ID:           "c-1",
			PartNumber:   req.PartNumber,
			SerialNumber: req.SerialNumber,
		})
	}))
	defer srv.Close()

	comp, err := New(srv.URL).IngestComponent(&models.IngestComponentRequest{
		PartNumber:   "HPU-1000",
		SerialNumber: "SN000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-1", comp.ID)
}

func TestGetSnapshotEscapesComponentID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/components/c%2F1", r.URL.RawPath)
		json.NewEncoder(w).Encode(models.ComponentSnapshot{
			Component: models.Component{ID: "c/1"},
		})
	}))
	defer srv.Close()

	snap, err := New(srv.URL).GetSnapshot("c/1")
	require.NoError(t, err)
	assert.Equal(t, "c/1", snap.Component.ID)
}

func TestScanComponentPostsToScanPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/components/c-1/scan", r.URL.Path)
		w.Write([]byte(`{"component_id":"c-1","summary":{"newly_detected":2}}`))
	}))
	defer srv.Close()

	result, err := New(srv.URL).ScanComponent("c-1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", result.ComponentID)
	assert.Equal(t, 2, result.Summary.NewlyDetected)
}

func TestUpdateException(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/exceptions/ex-1", r.URL.Path)

		var req models.UpdateExceptionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.ExceptionResolved, req.Status)

		json.NewEncoder(w).Encode(models.Exception{ID: "ex-1", Status: req.Status})
	}))
	defer srv.Close()

	ex, err := New(srv.URL).UpdateException("ex-1", &models.UpdateExceptionRequest{
		Status:     models.ExceptionResolved,
		ResolvedBy: "inspector",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExceptionResolved, ex.Status)
}

func TestErrorBodyIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"component not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetSnapshot("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "component not found")
}
