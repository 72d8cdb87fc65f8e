// Package notify delivers newly detected integrity exceptions to
// downstream consumers. Delivery is best effort; a failed notification is
// logged by the caller and never fails a scan.
package notify

import (
	"context"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

// Notifier receives the batch of exceptions a single scan newly detected.
type Notifier interface {
	ExceptionsDetected(ctx context.Context, c *models.Component, exceptions []models.Exception) error
}

// Notification is the payload delivered for each scan that found something.
type Notification struct {
	ComponentID  string             `json:"component_id"`
	PartNumber   string             `json:"part_number"`
	SerialNumber string             `json:"serial_number"`
	Exceptions   []models.Exception `json:"exceptions"`
}

type noop struct{}

func (noop) ExceptionsDetected(context.Context, *models.Component, []models.Exception) error {
	return nil
}

// Noop returns a Notifier that discards everything.
func Noop() Notifier { return noop{} }

// Multi fans a notification out to several notifiers, returning the first
// error after all have been attempted.
type Multi []Notifier

func (m Multi) ExceptionsDetected(ctx context.Context, c *models.Component, exceptions []models.Exception) error {
	var first error
	for _, n := range m {
		if err := n.ExceptionsDetected(ctx, c, exceptions); err != nil && first == nil {
			first = err
		}
	}
	return first
}
