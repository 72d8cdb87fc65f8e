package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

// InMemoryRepository is a map-backed Repository used by tests and the seeder.
type InMemoryRepository struct {
	components map[string]*models.Component
	events     map[string][]models.LifecycleEvent
	documents  map[string][]models.Document
	exceptions map[string]*models.Exception
	alerts     map[string][]models.Alert
	order      []string // component insertion order
	mu         sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		components: make(map[string]*models.Component),
		events:     make(map[string][]models.LifecycleEvent),
		documents:  make(map[string][]models.Document),
		exceptions: make(map[string]*models.Exception),
		alerts:     make(map[string][]models.Alert),
	}
}

func (r *InMemoryRepository) CreateComponent(ctx context.Context, c *models.Component, events []models.LifecycleEvent, docs []models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[c.ID]; exists {
		return ErrComponentExists
	}

	cc := *c
	r.components[c.ID] = &cc
	r.events[c.ID] = append([]models.LifecycleEvent(nil), events...)
	r.documents[c.ID] = append([]models.Document(nil), docs...)
	r.order = append(r.order, c.ID)
	return nil
}

func (r *InMemoryRepository) LoadSnapshot(ctx context.Context, componentID string) (*models.ComponentSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.components[componentID]
	if !exists {
		return nil, ErrComponentNotFound
	}

	events := append([]models.LifecycleEvent(nil), r.events[componentID]...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventDate.Before(events[j].EventDate)
	})

	var exceptions []models.Exception
	for _, e := range r.exceptions {
		if e.ComponentID == componentID {
			exceptions = append(exceptions, *e)
		}
	}
	sort.Slice(exceptions, func(i, j int) bool {
		return exceptions[i].DetectedAt.Before(exceptions[j].DetectedAt)
	})

	return &models.ComponentSnapshot{
		Component:  *c,
		Events:     events,
		Documents:  append([]models.Document(nil), r.documents[componentID]...),
		Exceptions: exceptions,
		Alerts:     append([]models.Alert(nil), r.alerts[componentID]...),
	}, nil
}

func (r *InMemoryRepository) ListComponentIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...), nil
}

func (r *InMemoryRepository) ListComponents(ctx context.Context) ([]*models.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Component, 0, len(r.order))
	for _, id := range r.order {
		cc := *r.components[id]
		out = append(out, &cc)
	}
	return out, nil
}

func (r *InMemoryRepository) CreateException(ctx context.Context, e *models.Exception) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[e.ComponentID]; !exists {
		return ErrComponentNotFound
	}

	ee := *e
	r.exceptions[e.ID] = &ee
	return nil
}

func (r *InMemoryRepository) GetException(ctx context.Context, id string) (*models.Exception, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.exceptions[id]
	if !exists {
		return nil, ErrExceptionNotFound
	}
	ee := *e
	return &ee, nil
}

func (r *InMemoryRepository) ListExceptions(ctx context.Context, componentID string) ([]models.Exception, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.components[componentID]; !exists {
		return nil, ErrComponentNotFound
	}

	var out []models.Exception
	for _, e := range r.exceptions {
		if e.ComponentID == componentID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt.Before(out[j].DetectedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) UpdateExceptionStatus(ctx context.Context, id string, req *models.UpdateExceptionRequest) (*models.Exception, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.exceptions[id]
	if !exists {
		return nil, ErrExceptionNotFound
	}

	e.Status = req.Status
	if req.Status == models.ExceptionResolved || req.Status == models.ExceptionFalsePositive {
		now := time.Now().UTC()
		e.ResolvedAt = &now
		if req.ResolvedBy != "" {
			by := req.ResolvedBy
			e.ResolvedBy = &by
		}
		e.Resolution = req.Resolution
	}

	ee := *e
	return &ee, nil
}

// AddAlert attaches a manually curated alert to a component.
func (r *InMemoryRepository) AddAlert(a models.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[a.ComponentID] = append(r.alerts[a.ComponentID], a)
}

func (r *InMemoryRepository) Close() error {
	return nil
}
