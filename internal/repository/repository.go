package repository

import (
	"context"
	"errors"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

var (
	ErrComponentNotFound = errors.New("component not found")
	ErrExceptionNotFound = errors.New("exception not found")
	ErrComponentExists   = errors.New("component already exists")
)

// Repository defines the interface for component history persistence.
// LoadSnapshot returns events sorted ascending by event date.
type Repository interface {
	// Component operations
	CreateComponent(ctx context.Context, c *models.Component, events []models.LifecycleEvent, docs []models.Document) error
	LoadSnapshot(ctx context.Context, componentID string) (*models.ComponentSnapshot, error)
	ListComponentIDs(ctx context.Context) ([]string, error)
	ListComponents(ctx context.Context) ([]*models.Component, error)

	// Exception operations
	CreateException(ctx context.Context, e *models.Exception) error
	GetException(ctx context.Context, id string) (*models.Exception, error)
	ListExceptions(ctx context.Context, componentID string) ([]models.Exception, error)
	UpdateExceptionStatus(ctx context.Context, id string, req *models.UpdateExceptionRequest) (*models.Exception, error)

	// Utility
	Close() error
}
