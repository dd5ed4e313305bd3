package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory fakes shared by the service tests. The fake ledger enforces the
// same booking rules as the real one (existence, duplicates, seat invariant)
// under a mutex, so the concurrency properties can be exercised without a
// database.

type fakeConferenceRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Conference
	nextID int
	err    error
	plans  []*query.Plan
}

func newFakeConferenceRepo() *fakeConferenceRepo {
	return &fakeConferenceRepo{byID: make(map[string]*domain.Conference), nextID: 1}
}

func (f *fakeConferenceRepo) add(c *domain.Conference) *domain.Conference {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		c.ID = fmt.Sprintf("conf-%d", f.nextID)
		f.nextID++
	}
	f.byID[c.ID] = c
	return c
}

func (f *fakeConferenceRepo) Create(ctx context.Context, c *domain.Conference) error {
	if f.err != nil {
		return f.err
	}
	f.add(c)
	return nil
}

func (f *fakeConferenceRepo) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeConferenceRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Conference{}
	for _, c := range f.byID {
		if c.OrganizerID == organizerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeConferenceRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Conference{}
	for _, id := range ids {
		if c, ok := f.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConferenceRepo) ListNearlySoldOut(ctx context.Context, maxSeats int) ([]*domain.Conference, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Conference{}
	for _, c := range f.byID {
		if c.SeatsAvailable > 0 && c.SeatsAvailable <= maxSeats {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeConferenceRepo) Query(ctx context.Context, plan *query.Plan) ([]*domain.Conference, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans = append(f.plans, plan)
	out := []*domain.Conference{}
	for _, c := range f.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeConferenceRepo) Update(ctx context.Context, c *domain.Conference) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[c.ID] = c
	return nil
}

type fakeProfileRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Profile
	err  error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: make(map[string]*domain.Profile)}
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; ok {
		return domain.ErrConflict
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Profile{}
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[p.ID] = p
	return nil
}

type fakeSessionRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Session
	nextID int
	err    error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byID: make(map[string]*domain.Session), nextID: 1}
}

func (f *fakeSessionRepo) add(s *domain.Session) *domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		s.ID = fmt.Sprintf("sess-%d", f.nextID)
		f.nextID++
	}
	f.byID[s.ID] = s
	return s
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if f.err != nil {
		return f.err
	}
	f.add(s)
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) sorted(match func(*domain.Session) bool) []*domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Session{}
	for _, s := range f.byID {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeSessionRepo) ListByConferenceID(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(func(s *domain.Session) bool { return s.ConferenceID == conferenceID }), nil
}

func (f *fakeSessionRepo) ListByConferenceIDAndType(ctx context.Context, conferenceID string, t domain.SessionType) ([]*domain.Session, error) {
	return f.sorted(func(s *domain.Session) bool { return s.ConferenceID == conferenceID && s.Type == t }), nil
}

func (f *fakeSessionRepo) ListBySpeaker(ctx context.Context, speaker string) ([]*domain.Session, error) {
	return f.sorted(func(s *domain.Session) bool {
		for _, sp := range s.Speakers {
			if sp == speaker {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeSessionRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Session{}
	for _, id := range ids {
		if s, ok := f.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListAll(ctx context.Context) ([]*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(func(*domain.Session) bool { return true }), nil
}

type fakeWishlistRepo struct {
	mu     sync.Mutex
	items  []*domain.WishlistItem
	nextID int
	err    error
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{nextID: 1}
}

func (f *fakeWishlistRepo) Create(ctx context.Context, item *domain.WishlistItem) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ProfileID == item.ProfileID && it.SessionID == item.SessionID {
			return domain.ErrConflict
		}
	}
	item.ID = fmt.Sprintf("wish-%d", f.nextID)
	f.nextID++
	f.items = append(f.items, item)
	return nil
}

func (f *fakeWishlistRepo) ExistsByProfileAndSession(ctx context.Context, profileID, sessionID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ProfileID == profileID && it.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWishlistRepo) ListByProfileAndConference(ctx context.Context, profileID, conferenceID string) ([]*domain.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.WishlistItem{}
	for _, it := range f.items {
		if it.ProfileID == profileID && it.ConferenceID == conferenceID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeWishlistRepo) ListAllSessionIDs(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	for _, it := range f.items {
		ids = append(ids, it.SessionID)
	}
	return ids, nil
}

// fakeLedger books seats against the conferences in a fakeConferenceRepo
// under one mutex, mirroring the transactional semantics of the SQL ledger.
type fakeLedger struct {
	mu    sync.Mutex
	confs *fakeConferenceRepo
	regs  map[string]map[string]bool // profileID -> conferenceID -> registered
}

func newFakeLedger(confs *fakeConferenceRepo) *fakeLedger {
	return &fakeLedger{confs: confs, regs: make(map[string]map[string]bool)}
}

func (l *fakeLedger) Register(ctx context.Context, profileID, conferenceID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.confs.mu.Lock()
	conf, ok := l.confs.byID[conferenceID]
	l.confs.mu.Unlock()
	if !ok {
		return false, domain.ErrNotFound
	}
	if l.regs[profileID][conferenceID] {
		return false, fmt.Errorf("%w: already registered for this conference", domain.ErrConflict)
	}
	if err := conf.ReserveSeat(); err != nil {
		return false, fmt.Errorf("%w: no seats available", domain.ErrConflict)
	}
	if l.regs[profileID] == nil {
		l.regs[profileID] = make(map[string]bool)
	}
	l.regs[profileID][conferenceID] = true
	return true, nil
}

func (l *fakeLedger) Unregister(ctx context.Context, profileID, conferenceID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.confs.mu.Lock()
	conf, ok := l.confs.byID[conferenceID]
	l.confs.mu.Unlock()
	if !ok {
		return false, domain.ErrNotFound
	}
	if !l.regs[profileID][conferenceID] {
		return false, nil
	}
	delete(l.regs[profileID], conferenceID)
	conf.ReleaseSeat()
	return true, nil
}

func (l *fakeLedger) ListConferenceIDs(ctx context.Context, profileID string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := []string{}
	for id := range l.regs[profileID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

type scheduledTask struct {
	name    string
	payload map[string]string
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
	err   error
}

func (s *fakeScheduler) Schedule(ctx context.Context, name string, payload map[string]string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, scheduledTask{name: name, payload: payload})
	return nil
}

func (s *fakeScheduler) scheduled() []scheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scheduledTask(nil), s.tasks...)
}
