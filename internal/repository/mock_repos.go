package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gamewatch/notifier/internal/domain"
)

// Hand-written, in-memory implementations of the repository interfaces used
// in unit tests. No mock-generation library needed.

// MockSourceRepository serves a fixed set of sources keyed by ID.
type MockSourceRepository struct {
	mu      sync.RWMutex
	sources map[string]*SourceWithOwner

	GetWithOwnerErr error
}

func NewMockSourceRepository() *MockSourceRepository {
	return &MockSourceRepository{sources: make(map[string]*SourceWithOwner)}
}

// Add registers a source together with its owning game and user.
func (m *MockSourceRepository) Add(s *domain.InfoSource, g *domain.Game, u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[s.ID] = &SourceWithOwner{Source: s, Game: g, User: u}
}

func (m *MockSourceRepository) GetWithOwner(_ context.Context, sourceID string) (*SourceWithOwner, error) {
	if m.GetWithOwnerErr != nil {
		return nil, m.GetWithOwnerErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	so, ok := m.sources[sourceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return so, nil
}

// MockNotificationRepository stores notifications in insertion order.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification

	CreateErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *n
	m.notifications = append(m.notifications, &clone)
	return nil
}

func (m *MockNotificationRepository) ExistsEquivalent(_ context.Context, sourceID string, t domain.NotificationType, payload json.RawMessage) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.notifications {
		if n.SourceID == sourceID && n.Type == t && domain.EquivalentPayloads(n.Payload, payload) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockNotificationRepository) ListBySource(_ context.Context, sourceID string) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if n.SourceID == sourceID {
			clone := *n
			result = append(result, &clone)
		}
	}
	return result, nil
}

// All returns every stored notification; test helper.
func (m *MockNotificationRepository) All() []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		clone := *n
		result = append(result, &clone)
	}
	return result
}

// MockJobRepository keeps job rows in a map.
type MockJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job

	CreateErr  error
	GetByIDErr error
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{jobs: make(map[string]*domain.Job)}
}

func (m *MockJobRepository) Create(_ context.Context, j *domain.Job) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *j
	m.jobs[j.ID] = &clone
	return nil
}

func (m *MockJobRepository) GetByID(_ context.Context, id string) (*domain.Job, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *j
	return &clone, nil
}

func (m *MockJobRepository) UpdateStatus(_ context.Context, id string, status domain.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Status = status
		j.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockJobRepository) MarkCompleted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Status = domain.JobStatusCompleted
		j.ErrorMessage = nil
		j.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockJobRepository) ScheduleRetry(_ context.Context, id string, attempts int, nextAttempt time.Time, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Status = domain.JobStatusFailed
		j.Attempts = attempts
		j.NextAttemptAt = &nextAttempt
		j.ErrorMessage = &errMsg
		j.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockJobRepository) MarkDeadLetter(_ context.Context, id string, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Status = domain.JobStatusDeadLetter
		j.NextAttemptAt = nil
		j.ErrorMessage = &errMsg
		j.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockJobRepository) FindDueRetries(_ context.Context) ([]*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now().UTC()
	var result []*domain.Job
	for _, j := range m.jobs {
		if j.Status == domain.JobStatusFailed && j.Attempts < j.MaxAttempts &&
			j.NextAttemptAt != nil && !j.NextAttemptAt.After(now) {
			clone := *j
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *MockJobRepository) FindStuckDispatch(_ context.Context, cutoff time.Time) ([]*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Job
	for _, j := range m.jobs {
		if (j.Status == domain.JobStatusPending || j.Status == domain.JobStatusQueued ||
			j.Status == domain.JobStatusProcessing) && j.UpdatedAt.Before(cutoff) {
			clone := *j
			result = append(result, &clone)
		}
	}
	return result, nil
}
