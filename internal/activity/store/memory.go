package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"aims/internal/activity/models"
	"aims/pkg/platform/sentinel"
	"aims/pkg/requestcontext"
)

// Memory is an in-memory Gateway for tests and local development. It
// intentionally favors clarity over performance.
type Memory struct {
	mu            sync.RWMutex
	activities    map[uuid.UUID]models.Activity
	byIATIID      map[string]uuid.UUID
	scalars       map[uuid.UUID]map[string]string
	collections   map[uuid.UUID]map[string][]models.CollectionItem
	organizations map[string]models.Organization
}

// NewMemory constructs an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{
		activities:    make(map[uuid.UUID]models.Activity),
		byIATIID:      make(map[string]uuid.UUID),
		scalars:       make(map[uuid.UUID]map[string]string),
		collections:   make(map[uuid.UUID]map[string][]models.CollectionItem),
		organizations: make(map[string]models.Organization),
	}
}

func (m *Memory) ReadSnapshot(_ context.Context, activityID uuid.UUID) (*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	activity, ok := m.activities[activityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	snap := &models.Snapshot{
		Activity:    activity,
		Scalars:     make(map[string]string, len(m.scalars[activityID])),
		Collections: make(map[string][]models.CollectionItem, len(m.collections[activityID])),
	}
	for k, v := range m.scalars[activityID] {
		snap.Scalars[k] = v
	}
	for k, items := range m.collections[activityID] {
		snap.Collections[k] = append([]models.CollectionItem(nil), items...)
	}
	return snap.Clone(), nil
}

func (m *Memory) CreateActivity(ctx context.Context, activity *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.byIATIID[activity.IATIIdentifier]; taken {
		return sentinel.ErrConflict
	}
	if _, taken := m.activities[activity.ID]; taken {
		return sentinel.ErrConflict
	}
	stored := *activity
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = requestcontext.Now(ctx)
	}
	stored.UpdatedAt = stored.CreatedAt
	m.activities[stored.ID] = stored
	m.byIATIID[stored.IATIIdentifier] = stored.ID
	return nil
}

func (m *Memory) UpsertScalar(ctx context.Context, activityID uuid.UUID, fieldID, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	activity, ok := m.activities[activityID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if m.scalars[activityID] == nil {
		m.scalars[activityID] = make(map[string]string)
	}
	m.scalars[activityID][fieldID] = value
	activity.UpdatedAt = requestcontext.Now(ctx)
	m.activities[activityID] = activity
	return nil
}

func (m *Memory) ReplaceCollection(ctx context.Context, activityID uuid.UUID, fieldID string, items []models.CollectionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	activity, ok := m.activities[activityID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if m.collections[activityID] == nil {
		m.collections[activityID] = make(map[string][]models.CollectionItem)
	}
	stored := make([]models.CollectionItem, len(items))
	for i, item := range items {
		stored[i] = item
		if stored[i].ID == uuid.Nil {
			stored[i].ID = uuid.New()
		}
	}
	m.collections[activityID][fieldID] = stored
	activity.UpdatedAt = requestcontext.Now(ctx)
	m.activities[activityID] = activity
	return nil
}

func (m *Memory) FindOrganizationByRef(_ context.Context, ref string) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.organizations[strings.TrimSpace(ref)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := org
	return &found, nil
}

func (m *Memory) SaveOrganization(_ context.Context, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *org
	if stored.ID == uuid.Nil {
		if existing, ok := m.organizations[stored.Ref]; ok {
			stored.ID = existing.ID
		} else {
			stored.ID = uuid.New()
		}
	}
	m.organizations[stored.Ref] = stored
	return nil
}

func (m *Memory) FindActivityByIATIID(_ context.Context, iatiID string) (*models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byIATIID[iatiID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	activity := m.activities[id]
	return &activity, nil
}
