package timesheet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"timetrack/internal/model"
)

type dayKey struct {
	employeeID string
	date       time.Time
}

// MemoryStore keeps timesheets in process memory. Owners are resolved
// through dir on every read.
type MemoryStore struct {
	mu     sync.Mutex
	dir    Directory
	byID   map[string]model.Timesheet
	byDate map[dayKey]string
}

func NewMemoryStore(dir Directory) *MemoryStore {
	return &MemoryStore{
		dir:    dir,
		byID:   make(map[string]model.Timesheet),
		byDate: make(map[dayKey]string),
	}
}

func (m *MemoryStore) CreateOrResubmit(_ context.Context, ts model.Timesheet) (model.Timesheet, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	key := dayKey{ts.EmployeeID, model.Day(ts.Date)}
	if id, ok := m.byDate[key]; ok {
		cur := m.byID[id]
		if cur.Status != model.TimesheetRejected {
			return model.Timesheet{}, false, ErrDuplicateEntry
		}
		cur.ClockIn, cur.ClockOut = ts.ClockIn, ts.ClockOut
		cur.TotalHours = ts.TotalHours
		cur.Description = ts.Description
		cur.Status = model.TimesheetPending
		cur.UpdatedAt = now
		m.byID[id] = cur
		return cur, true, nil
	}

	if ts.ID == "" {
		ts.ID = uuid.NewString()
	}
	ts.Date = key.date
	ts.Status = model.TimesheetPending
	ts.CreatedAt, ts.UpdatedAt = now, now
	m.byID[ts.ID] = ts
	m.byDate[key] = ts.ID
	return ts, false, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (model.TimesheetEntry, error) {
	m.mu.Lock()
	ts, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return model.TimesheetEntry{}, ErrNotFound
	}
	return m.withOwner(ctx, ts)
}

func (m *MemoryStore) GetByDate(ctx context.Context, employeeID string, date time.Time) (model.TimesheetEntry, error) {
	m.mu.Lock()
	id, ok := m.byDate[dayKey{employeeID, model.Day(date)}]
	ts := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return model.TimesheetEntry{}, ErrNotFound
	}
	return m.withOwner(ctx, ts)
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(ts *model.Timesheet) error) (model.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts, ok := m.byID[id]
	if !ok {
		return model.Timesheet{}, ErrNotFound
	}
	if err := fn(&ts); err != nil {
		return model.Timesheet{}, err
	}
	ts.UpdatedAt = time.Now().UTC()
	m.byID[id] = ts
	return ts, nil
}

func (m *MemoryStore) SetStatusForEmployee(_ context.Context, employeeID string, status model.TimesheetStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	now := time.Now().UTC()
	for id, ts := range m.byID {
		if ts.EmployeeID != employeeID {
			continue
		}
		ts.Status = status
		ts.UpdatedAt = now
		m.byID[id] = ts
		n++
	}
	return n, nil
}

func (m *MemoryStore) List(ctx context.Context, q Query) ([]model.TimesheetEntry, error) {
	m.mu.Lock()
	var candidates []model.Timesheet
	for _, ts := range m.byID {
		if q.EmployeeID != "" && ts.EmployeeID != q.EmployeeID {
			continue
		}
		if q.Status != "" && ts.Status != q.Status {
			continue
		}
		candidates = append(candidates, ts)
	}
	m.mu.Unlock()

	res := make([]model.TimesheetEntry, 0, len(candidates))
	for _, ts := range candidates {
		e, err := m.withOwner(ctx, ts)
		if err != nil {
			return nil, err
		}
		if q.Department != "" && e.EmployeeDepartment != q.Department {
			continue
		}
		res = append(res, e)
	}
	sortEntries(res)
	return res, nil
}

func (m *MemoryStore) withOwner(ctx context.Context, ts model.Timesheet) (model.TimesheetEntry, error) {
	owner, err := m.dir.FindByID(ctx, ts.EmployeeID)
	if err != nil {
		return model.TimesheetEntry{}, err
	}
	return entryOf(ts, owner), nil
}

// sortEntries orders newest date first, then by employee.
func sortEntries(es []model.TimesheetEntry) {
	sort.Slice(es, func(i, j int) bool {
		if !es[i].Date.Equal(es[j].Date) {
			return es[i].Date.After(es[j].Date)
		}
		return es[i].EmployeeID < es[j].EmployeeID
	})
}
