package employee

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"timetrack/internal/model"
)

// MemoryStore keeps employees and departments in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	employees   map[string]model.Employee
	departments map[string]model.Department
	nextDeptID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees:   make(map[string]model.Employee),
		departments: make(map[string]model.Department),
	}
}

func (m *MemoryStore) Create(_ context.Context, e model.Employee) (model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[e.ID]; ok {
		return model.Employee{}, ErrIDTaken
	}
	if _, ok := m.byEmail(e.Email); ok {
		return model.Employee{}, ErrEmailTaken
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	m.employees[e.ID] = e
	return e, nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return model.Employee{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) FindByEmail(_ context.Context, email string) (model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byEmail(email)
	if !ok {
		return model.Employee{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) Update(_ context.Context, e model.Employee) (model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.employees[e.ID]
	if !ok {
		return model.Employee{}, ErrNotFound
	}
	if other, ok := m.byEmail(e.Email); ok && other.ID != e.ID {
		return model.Employee{}, ErrEmailTaken
	}
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	m.employees[e.ID] = e
	return e, nil
}

func (m *MemoryStore) SetPasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return ErrNotFound
	}
	e.PasswordHash = hash
	e.UpdatedAt = time.Now().UTC()
	m.employees[id] = e
	return nil
}

func (m *MemoryStore) List(_ context.Context, f Filter) ([]model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []model.Employee
	for _, e := range m.employees {
		if f.matches(e) {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *MemoryStore) CreateDepartment(_ context.Context, name string) (model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.departments[name]; ok {
		return model.Department{}, ErrDepartmentExists
	}
	m.nextDeptID++
	d := model.Department{ID: m.nextDeptID, Name: name, CreatedAt: time.Now().UTC()}
	m.departments[name] = d
	return d, nil
}

func (m *MemoryStore) FindDepartment(_ context.Context, name string) (model.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.departments[name]
	if !ok {
		return model.Department{}, ErrDepartmentNotFound
	}
	return d, nil
}

func (m *MemoryStore) ListDepartments(_ context.Context) ([]model.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]model.Department, 0, len(m.departments))
	for _, d := range m.departments {
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *MemoryStore) byEmail(email string) (model.Employee, bool) {
	for _, e := range m.employees {
		if strings.EqualFold(e.Email, email) {
			return e, true
		}
	}
	return model.Employee{}, false
}
