package services_test

import (
	"context"
	"sync"

	"github.com/yigit/studentdir/internal/app/models"
	"github.com/yigit/studentdir/internal/pkg/apperrors"
)

// memoryStore is an in-memory StudentStore with the same uniqueness and
// conditional-update guarantees as the Postgres repository.
type memoryStore struct {
	mu       sync.Mutex
	students map[string]*models.Student
	byMatric map[string]string

	countErr  error
	assignErr error
	// beforeAssign runs between CountMatriculated and AssignMatric when set
	beforeAssign func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		students: make(map[string]*models.Student),
		byMatric: make(map[string]string),
	}
}

func (m *memoryStore) Create(_ context.Context, username, passwordHash, name string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.students[username]; ok {
		return nil, apperrors.ErrDuplicateUsername
	}
	s := &models.Student{Username: username, PasswordHash: passwordHash, Name: name}
	m.students[username] = s
	copied := *s
	return &copied, nil
}

func (m *memoryStore) FindByUsername(_ context.Context, username string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.students[username]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memoryStore) FindByMatricNumber(_ context.Context, matricNumber string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	username, ok := m.byMatric[matricNumber]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *m.students[username]
	return &copied, nil
}

func (m *memoryStore) ListAll(_ context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		all = append(all, *s)
	}
	return all, nil
}

func (m *memoryStore) CountMatriculated(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.byMatric)), nil
}

func (m *memoryStore) AssignMatric(_ context.Context, username, matricNumber string) (*models.Student, error) {
	if m.beforeAssign != nil {
		m.beforeAssign()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.assignErr != nil {
		return nil, m.assignErr
	}
	s, ok := m.students[username]
	if !ok || s.MatricNumber != nil {
		return nil, apperrors.ErrAssignmentConflict
	}
	if _, taken := m.byMatric[matricNumber]; taken {
		return nil, apperrors.ErrAssignmentConflict
	}

	matric := matricNumber
	s.MatricNumber = &matric
	m.byMatric[matricNumber] = username
	copied := *s
	return &copied, nil
}

// seed inserts a student directly, bypassing hashing
func (m *memoryStore) seed(username, name string, matric *string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.students[username] = &models.Student{Username: username, Name: name, MatricNumber: matric}
	if matric != nil {
		m.byMatric[*matric] = username
	}
}

func strPtr(s string) *string {
	return &s
}
