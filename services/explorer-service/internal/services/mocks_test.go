package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/edulearn/platform/services/explorer-service/internal/models"
)

var fixedNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

// mockDatasetRepository is an in-memory DatasetRepository
type mockDatasetRepository struct {
	datasets  map[string]*models.Dataset
	createErr error
}

func newMockDatasetRepository() *mockDatasetRepository {
	return &mockDatasetRepository{datasets: map[string]*models.Dataset{}}
}

func (m *mockDatasetRepository) Create(ctx context.Context, ds *models.Dataset) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *ds
	m.datasets[ds.ID] = &copied
	return nil
}

func (m *mockDatasetRepository) GetByID(ctx context.Context, id string) (*models.Dataset, error) {
	ds, ok := m.datasets[id]
	if !ok {
		return nil, fmt.Errorf("dataset not found")
	}
	copied := *ds
	return &copied, nil
}

func (m *mockDatasetRepository) List(ctx context.Context) ([]models.Dataset, error) {
	list := make([]models.Dataset, 0, len(m.datasets))
	for _, ds := range m.datasets {
		list = append(list, *ds)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].ID < list[b].ID })
	return list, nil
}

func (m *mockDatasetRepository) DeleteByID(ctx context.Context, id string) error {
	if _, ok := m.datasets[id]; !ok {
		return fmt.Errorf("dataset not found")
	}
	delete(m.datasets, id)
	return nil
}

// mockSessionRepository is an in-memory SessionRepository
type mockSessionRepository struct {
	sessions map[string]*models.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: map[string]*models.Session{}}
}

func (m *mockSessionRepository) Create(ctx context.Context, s *models.Session) error {
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *mockSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	copied := *s
	return &copied, nil
}
