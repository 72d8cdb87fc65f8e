package integrity

import (
	"context"
	"fmt"
	"sync"

	"github.com/aerotrace-systems/aerotrace/internal/logging"
	"github.com/aerotrace-systems/aerotrace/internal/models"
)

// ComponentFailure records a component whose scan failed during a fleet
// sweep. One bad component never aborts the sweep.
type ComponentFailure struct {
	ComponentID string `json:"component_id"`
	Error       string `json:"error"`
}

// FleetScanResult aggregates a sweep over every component.
type FleetScanResult struct {
	TotalComponents          int                     `json:"total_components"`
	ComponentsWithExceptions int                     `json:"components_with_exceptions"`
	TotalExceptions          int                     `json:"total_exceptions"`
	BySeverity               map[models.Severity]int `json:"by_severity"`
	Failures                 []ComponentFailure      `json:"failures,omitempty"`
}

type fleetOutcome struct {
	componentID string
	result      *ScanResult
	err         error
}

// ScanFleet scans every component with a pool of workers and aggregates the
// counts. Component scans are independent, so failures are collected per
// component and reported alongside the totals.
func (e *Engine) ScanFleet(ctx context.Context) (*FleetScanResult, error) {
	timer := startFleetTimer()
	defer timer.done()

	ids, err := e.repo.ListComponentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}

	jobs := make(chan string)
	outcomes := make(chan fleetOutcome)

	var wg sync.WaitGroup
	for w := 0; w < e.fleetWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				res, err := e.ScanComponent(ctx, id)
				outcomes <- fleetOutcome{componentID: id, result: res, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	result := &FleetScanResult{
		TotalComponents: len(ids),
		BySeverity:      make(map[models.Severity]int),
	}
	for out := range outcomes {
		if out.err != nil {
			e.logger.ErrorContext(ctx, "fleet scan: component scan failed",
				logging.ComponentID(out.componentID), logging.Err(out.err))
			result.Failures = append(result.Failures, ComponentFailure{
				ComponentID: out.componentID,
				Error:       out.err.Error(),
			})
			continue
		}
		if out.result.Summary.Total > 0 {
			result.ComponentsWithExceptions++
		}
		result.TotalExceptions += out.result.Summary.Total
		for _, ex := range out.result.Exceptions {
			result.BySeverity[ex.Severity]++
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
