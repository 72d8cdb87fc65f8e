// Package client is the HTTP client for the AeroTrace integrity API,
// used by atctl.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aerotrace-systems/aerotrace/internal/integrity"
	"github.com/aerotrace-systems/aerotrace/internal/models"
	"github.com/aerotrace-systems/aerotrace/internal/trace"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.client.Do(req)
}

func (c *Client) decode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Health() error {
	resp, err := c.doRequest(http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	return c.decode(resp, nil)
}

func (c *Client) ListComponents() ([]models.Component, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/v1/components", nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Components []models.Component `json:"components"`
	}
	if err := c.decode(resp, &body); err != nil {
		return nil, err
	}
	return body.Components, nil
}

func (c *Client) IngestComponent(req *models.IngestComponentRequest) (*models.Component, error) {
	resp, err := c.doRequest(http.MethodPost, "/api/v1/components", req)
	if err != nil {
		return nil, err
	}
	var comp models.Component
	if err := c.decode(resp, &comp); err != nil {
		return nil, err
	}
	return &comp, nil
}

func (c *Client) GetSnapshot(componentID string) (*models.ComponentSnapshot, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/v1/components/"+url.PathEscape(componentID), nil)
	if err != nil {
		return nil, err
	}
	var snap models.ComponentSnapshot
	if err := c.decode(resp, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) ScanComponent(componentID string) (*integrity.ScanResult, error) {
	resp, err := c.doRequest(http.MethodPost, "/api/v1/components/"+url.PathEscape(componentID)+"/scan", nil)
	if err != nil {
		return nil, err
	}
	var result integrity.ScanResult
	if err := c.decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ScanFleet() (*integrity.FleetScanResult, error) {
	resp, err := c.doRequest(http.MethodPost, "/api/v1/fleet/scan", nil)
	if err != nil {
		return nil, err
	}
	var result integrity.FleetScanResult
	if err := c.decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) TraceReport(componentID string) (*trace.Report, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/v1/components/"+url.PathEscape(componentID)+"/trace", nil)
	if err != nil {
		return nil, err
	}
	var report trace.Report
	if err := c.decode(resp, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) ListExceptions(componentID string) ([]models.Exception, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/v1/components/"+url.PathEscape(componentID)+"/exceptions", nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Exceptions []models.Exception `json:"exceptions"`
	}
	if err := c.decode(resp, &body); err != nil {
		return nil, err
	}
	return body.Exceptions, nil
}

func (c *Client) UpdateException(exceptionID string, req *models.UpdateExceptionRequest) (*models.Exception, error) {
	resp, err := c.doRequest(http.MethodPatch, "/api/v1/exceptions/"+url.PathEscape(exceptionID), req)
	if err != nil {
		return nil, err
	}
	var ex models.Exception
	if err := c.decode(resp, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}
