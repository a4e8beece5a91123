// Package mock provides in-memory implementations of the database store
// interfaces for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/facematch"
)

// MockWorkerStore is an in-memory implementation of database.WorkerStore.
type MockWorkerStore struct {
	mu      sync.RWMutex
	workers map[int64]*database.Worker
	nextID  int64

	// Error injection
	FindError   error
	CreateError error
	UpdateError error
	DeleteError error
	ListError   error
}

// NewMockWorkerStore creates a new empty mock worker store.
func NewMockWorkerStore() *MockWorkerStore {
	return &MockWorkerStore{
		workers: make(map[int64]*database.Worker),
		nextID:  1,
	}
}

// AddWorker seeds the store with a worker, assigning the ID if zero.
func (m *MockWorkerStore) AddWorker(w database.Worker) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.ID == 0 {
		w.ID = m.nextID
	}
	if w.ID >= m.nextID {
		m.nextID = w.ID + 1
	}
	m.workers[w.ID] = &w
	return w.ID
}

func identityKey(name, surname, role string) [3]string {
	return [3]string{
		facematch.NormalizeIdentity(name),
		facematch.NormalizeIdentity(surname),
		facematch.NormalizeIdentity(role),
	}
}

// FindByIdentity resolves a worker by normalized identity fields.
func (m *MockWorkerStore) FindByIdentity(ctx context.Context, name, surname, role string) (*database.Worker, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := identityKey(name, surname, role)
	for _, w := range m.workers {
		if identityKey(w.Name, w.Surname, w.Role) == key {
			cp := *w
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

// Get retrieves a worker by ID.
func (m *MockWorkerStore) Get(ctx context.Context, id int64) (*database.Worker, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workers[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

// List returns workers newest first.
func (m *MockWorkerStore) List(ctx context.Context, limit int) ([]database.Worker, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.Worker
	for id := m.nextID - 1; id >= 1 && len(out) < limit; id-- {
		if w, ok := m.workers[id]; ok {
			out = append(out, *w)
		}
	}
	return out, nil
}

// Create inserts a new active worker.
func (m *MockWorkerStore) Create(ctx context.Context, name, surname, role string) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := identityKey(name, surname, role)
	for _, w := range m.workers {
		if identityKey(w.Name, w.Surname, w.Role) == key {
			return 0, database.ErrDuplicate
		}
	}
	id := m.nextID
	m.nextID++
	m.workers[id] = &database.Worker{
		ID: id, Name: name, Surname: surname, Role: role,
		Active: true, CreatedAt: time.Now(),
	}
	return id, nil
}

// SetActive toggles the active flag.
func (m *MockWorkerStore) SetActive(ctx context.Context, id int64, active bool) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok {
		return database.ErrNotFound
	}
	w.Active = active
	return nil
}

// SetReference replaces the worker's reference descriptor and image.
func (m *MockWorkerStore) SetReference(ctx context.Context, id int64, descriptor []float32, imagePath string) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok {
		return database.ErrNotFound
	}
	w.RefDescriptor = descriptor
	w.RefImagePath = imagePath
	return nil
}

// Delete removes the worker.
func (m *MockWorkerStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workers[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.workers, id)
	return nil
}

// ListEnrolled returns workers with a reference descriptor.
func (m *MockWorkerStore) ListEnrolled(ctx context.Context) ([]database.Worker, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.Worker
	for id := int64(1); id < m.nextID; id++ {
		if w, ok := m.workers[id]; ok && w.Enrolled() {
			out = append(out, *w)
		}
	}
	return out, nil
}

// MockEventStore is an in-memory implementation of database.EventStore.
type MockEventStore struct {
	mu     sync.RWMutex
	events []database.AttendanceEvent
	nextID int64

	// Error injection
	AppendError error
	QueryError  error
	DeleteError error
}

// NewMockEventStore creates a new empty mock event store.
func NewMockEventStore() *MockEventStore {
	return &MockEventStore{nextID: 1}
}

// Events returns a copy of all appended events in insertion order.
func (m *MockEventStore) Events() []database.AttendanceEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.AttendanceEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Append inserts an event.
func (m *MockEventStore) Append(ctx context.Context, event *database.AttendanceEvent) (int64, error) {
	if m.AppendError != nil {
		return 0, m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := *event
	e.ID = m.nextID
	m.nextID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.events = append(m.events, e)
	return e.ID, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// KindsOnDay returns kinds of the worker's OK events on the given day.
func (m *MockEventStore) KindsOnDay(ctx context.Context, workerID int64, day time.Time) ([]database.EventKind, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var kinds []database.EventKind
	for _, e := range m.events {
		if e.WorkerID != nil && *e.WorkerID == workerID &&
			e.Outcome == database.OutcomeOK && sameDay(e.CreatedAt, day) {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds, nil
}

// ListRecent returns the latest events, newest first.
func (m *MockEventStore) ListRecent(ctx context.Context, limit int) ([]database.AttendanceEvent, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.AttendanceEvent
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

// Delete removes an event by ID.
func (m *MockEventStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

// DaysPresent counts distinct days with an OK ENTRY event per worker.
func (m *MockEventStore) DaysPresent(ctx context.Context, from, to time.Time) (map[int64]int, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[int64]map[string]struct{})
	for _, e := range m.events {
		if e.WorkerID == nil || e.Outcome != database.OutcomeOK || e.Kind != database.KindEntry {
			continue
		}
		if e.CreatedAt.Before(from) || e.CreatedAt.After(to) {
			continue
		}
		day := e.CreatedAt.Format("2006-01-02")
		if seen[*e.WorkerID] == nil {
			seen[*e.WorkerID] = make(map[string]struct{})
		}
		seen[*e.WorkerID][day] = struct{}{}
	}
	out := make(map[int64]int, len(seen))
	for id, days := range seen {
		out[id] = len(days)
	}
	return out, nil
}

// DominantSites returns the most frequent OK ENTRY site per worker.
func (m *MockEventStore) DominantSites(ctx context.Context, from, to time.Time) (map[int64]string, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[int64]map[string]int)
	for _, e := range m.events {
		if e.WorkerID == nil || e.Outcome != database.OutcomeOK || e.Kind != database.KindEntry {
			continue
		}
		if e.CreatedAt.Before(from) || e.CreatedAt.After(to) {
			continue
		}
		if counts[*e.WorkerID] == nil {
			counts[*e.WorkerID] = make(map[string]int)
		}
		counts[*e.WorkerID][e.Site]++
	}
	out := make(map[int64]string, len(counts))
	for id, sites := range counts {
		best, bestCount := "", 0
		for site, n := range sites {
			if n > bestCount {
				best, bestCount = site, n
			}
		}
		out[id] = best
	}
	return out, nil
}

// MockAllowListStore is an in-memory implementation of database.AllowListStore.
type MockAllowListStore struct {
	mu     sync.RWMutex
	phones map[int64]string
	nextID int64

	// Error injection
	LookupError error
	AddError    error
	RemoveError error
}

// NewMockAllowListStore creates a new empty mock allow-list store.
func NewMockAllowListStore() *MockAllowListStore {
	return &MockAllowListStore{phones: make(map[int64]string), nextID: 1}
}

// AddPhone seeds the allow-list.
func (m *MockAllowListStore) AddPhone(phone string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phones[m.nextID] = phone
	m.nextID++
}

// IsAllowed checks a phone against the allow-list.
func (m *MockAllowListStore) IsAllowed(ctx context.Context, phone string) (bool, error) {
	if m.LookupError != nil {
		return false, m.LookupError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.phones {
		if p == phone {
			return true, nil
		}
	}
	return false, nil
}

// Add inserts a phone.
func (m *MockAllowListStore) Add(ctx context.Context, phone string) (int64, error) {
	if m.AddError != nil {
		return 0, m.AddError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.phones {
		if p == phone {
			return 0, database.ErrDuplicate
		}
	}
	id := m.nextID
	m.nextID++
	m.phones[id] = phone
	return id, nil
}

// List returns entries newest first.
func (m *MockAllowListStore) List(ctx context.Context, limit int) ([]database.AllowedPhone, error) {
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.AllowedPhone
	for id := m.nextID - 1; id >= 1 && len(out) < limit; id-- {
		if p, ok := m.phones[id]; ok {
			out = append(out, database.AllowedPhone{ID: id, Phone: p})
		}
	}
	return out, nil
}

// Remove deletes an entry.
func (m *MockAllowListStore) Remove(ctx context.Context, id int64) error {
	if m.RemoveError != nil {
		return m.RemoveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.phones[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.phones, id)
	return nil
}

// MockSubscriptionStore is an in-memory implementation of database.SubscriptionStore.
type MockSubscriptionStore struct {
	mu   sync.RWMutex
	subs map[int64]*database.Subscription

	// Error injection
	UpsertError error
	ListError   error
}

// NewMockSubscriptionStore creates a new empty mock subscription store.
func NewMockSubscriptionStore() *MockSubscriptionStore {
	return &MockSubscriptionStore{subs: make(map[int64]*database.Subscription)}
}

// Subscription returns the stored subscription for a chat, or nil.
func (m *MockSubscriptionStore) Subscription(chatID int64) *database.Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.subs[chatID]; ok {
		cp := *s
		return &cp
	}
	return nil
}

// Upsert creates or overwrites a subscription.
func (m *MockSubscriptionStore) Upsert(ctx context.Context, chatID int64, phone string, active bool) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[chatID] = &database.Subscription{
		ChatID: chatID, Phone: phone, Active: active, CreatedAt: time.Now(),
	}
	return nil
}

// ActiveChatIDs returns chat IDs of active subscriptions in ascending order.
func (m *MockSubscriptionStore) ActiveChatIDs(ctx context.Context) ([]int64, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []int64
	for id, s := range m.subs {
		if s.Active {
			ids = append(ids, id)
		}
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids, nil
}

// MockSalaryRuleStore is an in-memory implementation of database.SalaryRuleStore.
type MockSalaryRuleStore struct {
	mu     sync.RWMutex
	rules  map[int64]*database.SalaryRule
	nextID int64

	// Error injection
	UpsertError error
	ListError   error
}

// NewMockSalaryRuleStore creates a new empty mock salary rule store.
func NewMockSalaryRuleStore() *MockSalaryRuleStore {
	return &MockSalaryRuleStore{rules: make(map[int64]*database.SalaryRule), nextID: 1}
}

// Upsert creates or updates a rule keyed by lowercase (site, role).
func (m *MockSalaryRuleStore) Upsert(ctx context.Context, site, role string, dailyRate float64) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	site = facematch.NormalizeIdentity(site)
	role = facematch.NormalizeIdentity(role)
	for _, r := range m.rules {
		if r.Site == site && r.Role == role {
			r.DailyRate = dailyRate
			r.Active = true
			return nil
		}
	}
	id := m.nextID
	m.nextID++
	m.rules[id] = &database.SalaryRule{
		ID: id, Site: site, Role: role, DailyRate: dailyRate, Active: true,
	}
	return nil
}

// ListActive returns active rules in ID order.
func (m *MockSalaryRuleStore) ListActive(ctx context.Context) ([]database.SalaryRule, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.SalaryRule
	for id := int64(1); id < m.nextID; id++ {
		if r, ok := m.rules[id]; ok && r.Active {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Deactivate soft-deletes a rule.
func (m *MockSalaryRuleStore) Deactivate(ctx context.Context, id int64) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok {
		return database.ErrNotFound
	}
	r.Active = false
	return nil
}
