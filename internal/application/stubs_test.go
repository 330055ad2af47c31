package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/makarovada/legal-time/internal/persistence"
)

// memoryStore is an in-memory implementation of every repository the
// services consume. Errors mirror the storage layer's sentinels.
type memoryStore struct {
	mu sync.Mutex

	employees  map[string]Employee
	clients    map[string]Client
	contracts  map[string]Contract
	matters    map[string]Matter
	activities map[string]ActivityType
	rates      []Rate
	entries    []TimeEntry

	defaultCreates int
	listEntriesErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		employees:  map[string]Employee{},
		clients:    map[string]Client{},
		contracts:  map[string]Contract{},
		matters:    map[string]Matter{},
		activities: map[string]ActivityType{},
	}
}

func (m *memoryStore) CreateEmployee(_ context.Context, e Employee) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.employees {
		if existing.Email == e.Email {
			return Employee{}, persistence.ErrDuplicate
		}
	}
	m.employees[e.ID] = e
	return e, nil
}

func (m *memoryStore) UpdateEmployee(_ context.Context, e Employee) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[e.ID]; !ok {
		return Employee{}, persistence.ErrNotFound
	}
	for id, existing := range m.employees {
		if id != e.ID && existing.Email == e.Email {
			return Employee{}, persistence.ErrDuplicate
		}
	}
	m.employees[e.ID] = e
	return e, nil
}

func (m *memoryStore) GetEmployee(_ context.Context, id string) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return Employee{}, persistence.ErrNotFound
	}
	return e, nil
}

func (m *memoryStore) GetEmployeeByEmail(_ context.Context, email string) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return Employee{}, persistence.ErrNotFound
}

func (m *memoryStore) ListEmployees(_ context.Context) ([]Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) DeleteEmployee(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, entry := range m.entries {
		if entry.EmployeeID == id {
			return persistence.ErrReferenced
		}
	}
	delete(m.employees, id)
	return nil
}

func (m *memoryStore) CreateClient(_ context.Context, c Client) (Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
	return c, nil
}

func (m *memoryStore) UpdateClient(_ context.Context, c Client) (Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; !ok {
		return Client{}, persistence.ErrNotFound
	}
	m.clients[c.ID] = c
	return c, nil
}

func (m *memoryStore) GetClient(_ context.Context, id string) (Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return Client{}, persistence.ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) ListClients(_ context.Context) ([]Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) DeleteClient(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, contract := range m.contracts {
		if contract.ClientID == id {
			return persistence.ErrReferenced
		}
	}
	delete(m.clients, id)
	return nil
}

func (m *memoryStore) CreateContract(_ context.Context, c Contract) (Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.contracts {
		if existing.Number == c.Number {
			return Contract{}, persistence.ErrDuplicate
		}
	}
	m.contracts[c.ID] = c
	return c, nil
}

func (m *memoryStore) UpdateContract(_ context.Context, c Contract) (Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[c.ID]; !ok {
		return Contract{}, persistence.ErrNotFound
	}
	m.contracts[c.ID] = c
	return c, nil
}

func (m *memoryStore) GetContract(_ context.Context, id string) (Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return Contract{}, persistence.ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) ListContracts(_ context.Context) ([]Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Contract, 0, len(m.contracts))
	for _, c := range m.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) CountContractsForClient(_ context.Context, clientID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.contracts {
		if c.ClientID == clientID {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) DeleteContract(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, entry := range m.entries {
		if matter, ok := m.matters[entry.MatterID]; ok && matter.ContractID == id {
			return persistence.ErrReferenced
		}
	}
	for matterID, matter := range m.matters {
		if matter.ContractID == id {
			delete(m.matters, matterID)
		}
	}
	delete(m.contracts, id)
	return nil
}

func (m *memoryStore) CreateMatter(_ context.Context, matter Matter) (Matter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.matters {
		if existing.Code == matter.Code {
			return Matter{}, persistence.ErrDuplicate
		}
	}
	m.matters[matter.ID] = matter
	return matter, nil
}

func (m *memoryStore) UpdateMatter(_ context.Context, matter Matter) (Matter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matters[matter.ID]; !ok {
		return Matter{}, persistence.ErrNotFound
	}
	m.matters[matter.ID] = matter
	return matter, nil
}

func (m *memoryStore) GetMatter(_ context.Context, id string) (Matter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matter, ok := m.matters[id]
	if !ok {
		return Matter{}, persistence.ErrNotFound
	}
	return matter, nil
}

func (m *memoryStore) ListMatters(_ context.Context) ([]Matter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Matter, 0, len(m.matters))
	for _, matter := range m.matters {
		out = append(out, matter)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) DeleteMatter(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matters[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, entry := range m.entries {
		if entry.MatterID == id {
			return persistence.ErrReferenced
		}
	}
	delete(m.matters, id)
	return nil
}

func (m *memoryStore) CreateActivityType(_ context.Context, a ActivityType) (ActivityType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.activities {
		if existing.Name == a.Name {
			return ActivityType{}, persistence.ErrDuplicate
		}
	}
	m.activities[a.ID] = a
	return a, nil
}

func (m *memoryStore) UpdateActivityType(_ context.Context, a ActivityType) (ActivityType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[a.ID]; !ok {
		return ActivityType{}, persistence.ErrNotFound
	}
	m.activities[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetActivityType(_ context.Context, id string) (ActivityType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[id]
	if !ok {
		return ActivityType{}, persistence.ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) ListActivityTypes(_ context.Context) ([]ActivityType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ActivityType, 0, len(m.activities))
	for _, a := range m.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) DeleteActivityType(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.activities, id)
	return nil
}

func sameScope(a, b Rate) bool {
	return equalPtr(a.EmployeeID, b.EmployeeID) && equalPtr(a.ContractID, b.ContractID)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *memoryStore) CreateRate(_ context.Context, r Rate) (Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rates {
		if sameScope(existing, r) {
			return Rate{}, persistence.ErrDuplicate
		}
	}
	m.rates = append(m.rates, r)
	return r, nil
}

func (m *memoryStore) UpdateRate(_ context.Context, r Rate) (Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.rates {
		if existing.ID == r.ID {
			m.rates[i] = r
			return r, nil
		}
	}
	return Rate{}, persistence.ErrNotFound
}

func (m *memoryStore) GetRate(_ context.Context, id string) (Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rates {
		if r.ID == id {
			return r, nil
		}
	}
	return Rate{}, persistence.ErrNotFound
}

func (m *memoryStore) ListRates(_ context.Context) ([]Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Rate(nil), m.rates...), nil
}

func (m *memoryStore) DeleteRate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.RateID != nil && *entry.RateID == id {
			return persistence.ErrReferenced
		}
	}
	for i, r := range m.rates {
		if r.ID == id {
			m.rates = append(m.rates[:i], m.rates[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (m *memoryStore) FindContractRate(_ context.Context, contractID string) (Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rates {
		if r.Scope() == RateScopeContract && *r.ContractID == contractID {
			return r, nil
		}
	}
	return Rate{}, persistence.ErrNotFound
}

func (m *memoryStore) FindEmployeeRate(_ context.Context, employeeID string) (Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rates {
		if r.Scope() == RateScopeEmployee && *r.EmployeeID == employeeID {
			return r, nil
		}
	}
	return Rate{}, persistence.ErrNotFound
}

func (m *memoryStore) GetOrCreateDefaultRate(_ context.Context, candidate Rate) (Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rates {
		if r.Scope() == RateScopeDefault {
			return r, nil
		}
	}
	m.defaultCreates++
	m.rates = append(m.rates, candidate)
	return candidate, nil
}

func (m *memoryStore) CreateTimeEntry(_ context.Context, e TimeEntry) (TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memoryStore) UpdateTimeEntry(_ context.Context, e TimeEntry) (TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.entries {
		if existing.ID == e.ID {
			e.EmployeeID = existing.EmployeeID
			m.entries[i] = e
			return e, nil
		}
	}
	return TimeEntry{}, persistence.ErrNotFound
}

func (m *memoryStore) GetTimeEntry(_ context.Context, id string) (TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return TimeEntry{}, persistence.ErrNotFound
}

func (m *memoryStore) ListTimeEntries(_ context.Context, q TimeEntryQuery) ([]TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listEntriesErr != nil {
		return nil, m.listEntriesErr
	}
	var out []TimeEntry
	for _, e := range m.entries {
		if q.EmployeeID != "" && e.EmployeeID != q.EmployeeID {
			continue
		}
		if q.Status != "" && e.Status != q.Status {
			continue
		}
		if q.StartDate != nil && e.Date.Before(*q.StartDate) {
			continue
		}
		if q.EndDate != nil && e.Date.After(*q.EndDate) {
			continue
		}
		if q.Unsynced && e.HasCalendarEvent() {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryStore) DeleteTimeEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (m *memoryStore) SetTimeEntryRate(_ context.Context, id string, rateID *string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries[i].RateID = rateID
			m.entries[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (m *memoryStore) SetCalendarEventID(_ context.Context, id string, eventID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries[i].CalendarEventID = eventID
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (m *memoryStore) Report(_ context.Context, q ReportQuery) ([]ReportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []ReportRow
	for _, e := range m.entries {
		if e.Status != StatusApproved {
			continue
		}
		if q.EmployeeID != "" && e.EmployeeID != q.EmployeeID {
			continue
		}
		matter := m.matters[e.MatterID]
		contract := m.contracts[matter.ContractID]
		row := ReportRow{
			EntryID:          e.ID,
			Date:             e.Date,
			EmployeeID:       e.EmployeeID,
			EmployeeName:     m.employees[e.EmployeeID].Name,
			ClientName:       m.clients[contract.ClientID].Name,
			ContractNumber:   contract.Number,
			MatterCode:       matter.Code,
			MatterName:       matter.Name,
			ActivityTypeName: m.activities[e.ActivityTypeID].Name,
			Hours:            e.Hours,
			Status:           e.Status,
			Description:      e.Description,
		}
		if e.RateID != nil {
			for _, r := range m.rates {
				if r.ID == *e.RateID {
					value := r.Value
					row.RateValue = &value
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *memoryStore) entry(id string) TimeEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e
		}
	}
	return TimeEntry{}
}

// sequence returns an id generator yielding prefix-1, prefix-2, ...
func sequence(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedNow() time.Time {
	return time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
}

// calendarStub records calls and fails on demand.
type calendarStub struct {
	mu      sync.Mutex
	pushes  int
	updates int
	deletes int
	err     error
	handle  string
}

var errCalendarDown = errors.New("calendar provider unavailable")

func (c *calendarStub) PushEvent(_ context.Context, _ Employee, entry TimeEntry, _ Matter, _ ActivityType) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushes++
	if c.err != nil {
		return "", c.err
	}
	if c.handle != "" {
		return c.handle, nil
	}
	return "evt-" + entry.ID, nil
}

func (c *calendarStub) UpdateEvent(_ context.Context, _ Employee, _ TimeEntry, _ Matter, _ ActivityType, handle string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates++
	if c.err != nil {
		return "", c.err
	}
	return handle, nil
}

func (c *calendarStub) DeleteEvent(_ context.Context, _ Employee, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	return c.err
}

// metricsStub counts observed outcomes.
type metricsStub struct {
	mu       sync.Mutex
	calendar map[string]int
	entries  map[string]int
}

func newMetricsStub() *metricsStub {
	return &metricsStub{calendar: map[string]int{}, entries: map[string]int{}}
}

func (m *metricsStub) ObserveTimeEntryOperation(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[operation+":"+outcome]++
}

func (m *metricsStub) ObserveCalendarSync(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calendar[operation+":"+outcome]++
}

func (m *metricsStub) ObserveRateRecalculation(int, int) {}
