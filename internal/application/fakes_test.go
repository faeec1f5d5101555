package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"rosterbot/internal/domain"
	"rosterbot/internal/domain/entities"
	"rosterbot/internal/infrastructure/database"
	"rosterbot/internal/infrastructure/suppression"
	"rosterbot/internal/ports/output"
	"rosterbot/pkg/logger"
	"rosterbot/pkg/tz"
)

const (
	organizerRole = "role-organizer"
	organizer     = "user-org"
)

var errBoom = errors.New("boom")

// memStore is an in-memory DocumentStore.
type memStore struct {
	mu       sync.Mutex
	docs     map[string][]byte
	counters map[string]uint
	saves    int
	failSave bool
	// hangSave makes Save wait for its context to end.
	hangSave bool
}

func newMemStore() *memStore {
	return &memStore{docs: map[string][]byte{}, counters: map[string]uint{}}
}

func (m *memStore) Load(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.docs[name]
	return b, ok, nil
}

func (m *memStore) Save(ctx context.Context, name string, body []byte) error {
	m.mu.Lock()
	if m.hangSave {
		m.mu.Unlock()
		<-ctx.Done()
		return ctx.Err()
	}
	defer m.mu.Unlock()
	if m.failSave {
		return errBoom
	}
	m.saves++
	m.docs[name] = append([]byte(nil), body...)
	return nil
}

func (m *memStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, name)
	return nil
}

func (m *memStore) List(_ context.Context, prefix string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string][]byte{}
	for k, v := range m.docs {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memStore) NextID(_ context.Context, counter string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[counter]++
	return m.counters[counter], nil
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// syncRunner runs Go tasks inline and holds After tasks until fire.
type syncRunner struct {
	mu      sync.Mutex
	delayed []func(ctx context.Context) error
}

func (r *syncRunner) Go(_ string, fn func(ctx context.Context) error) {
	_ = fn(context.Background())
}

func (r *syncRunner) After(_ time.Duration, _ string, fn func(ctx context.Context) error) {
	r.mu.Lock()
	r.delayed = append(r.delayed, fn)
	r.mu.Unlock()
}

func (r *syncRunner) fire() {
	r.mu.Lock()
	tasks := r.delayed
	r.delayed = nil
	r.mu.Unlock()
	for _, fn := range tasks {
		_ = fn(context.Background())
	}
}

// fakeMessenger records what the services ask of the platform.
type fakeMessenger struct {
	mu  sync.Mutex
	seq int

	roles   map[string][]string
	members map[string][]entities.Member

	seeded        []string
	removed       []string
	deleted       []string
	announced     []uint
	notified      [][]string
	threadMembers map[string]map[string]bool
	deletedThread []string
	eventRenders  int
	lineupRenders int
	lastView      entities.BoardView

	// addGate, when set, holds AddThreadMember until it is closed.
	addGate    chan struct{}
	addStarted chan struct{}

	removeErr error
	notifyErr error
	promptErr error
	threadErr error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		roles:         map[string][]string{organizer: {organizerRole}},
		members:       map[string][]entities.Member{},
		threadMembers: map[string]map[string]bool{},
	}
}

var _ output.Messenger = (*fakeMessenger)(nil)

func (f *fakeMessenger) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeMessenger) PostEventCard(context.Context, string, *entities.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next("msg"), nil
}

func (f *fakeMessenger) UpdateEventCard(context.Context, *entities.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventRenders++
	return nil
}

func (f *fakeMessenger) PostLineupCard(_ context.Context, _ *entities.Lineup, v entities.BoardView) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastView = v
	return f.next("board"), nil
}

func (f *fakeMessenger) UpdateLineupCard(_ context.Context, _ *entities.Lineup, v entities.BoardView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lineupRenders++
	f.lastView = v
	return nil
}

func (f *fakeMessenger) PromptArrival(context.Context, *entities.Event, string, []time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.promptErr != nil {
		return "", f.promptErr
	}
	return f.next("prompt"), nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, _ string, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeMessenger) AddReaction(_ context.Context, _, _, glyph string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeded = append(f.seeded, glyph)
	return nil
}

func (f *fakeMessenger) RemoveReaction(_ context.Context, _, messageID, glyph, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, messageID+":"+userID+":"+glyph)
	return nil
}

func (f *fakeMessenger) StartThread(context.Context, string, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.threadErr != nil {
		return "", f.threadErr
	}
	id := f.next("thread")
	f.threadMembers[id] = map[string]bool{}
	return id, nil
}

func (f *fakeMessenger) DeleteThread(_ context.Context, threadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedThread = append(f.deletedThread, threadID)
	return nil
}

func (f *fakeMessenger) AddThreadMember(_ context.Context, threadID, userID string) error {
	if f.addGate != nil {
		select {
		case f.addStarted <- struct{}{}:
		default:
		}
		<-f.addGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.threadMembers[threadID] == nil {
		return domain.NotFound("thread", errBoom)
	}
	f.threadMembers[threadID][userID] = true
	return nil
}

func (f *fakeMessenger) RemoveThreadMember(_ context.Context, threadID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.threadMembers[threadID] == nil {
		return domain.NotFound("thread", errBoom)
	}
	delete(f.threadMembers[threadID], userID)
	return nil
}

func (f *fakeMessenger) MemberRoles(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[userID], nil
}

func (f *fakeMessenger) RoleMembers(_ context.Context, roleID string) ([]entities.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[roleID], nil
}

func (f *fakeMessenger) AnnounceEvent(_ context.Context, ev *entities.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announced = append(f.announced, ev.ID)
	return nil
}

func (f *fakeMessenger) NotifyLineup(_ context.Context, _ *entities.Lineup, userIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notified = append(f.notified, append([]string(nil), userIDs...))
	return nil
}

func (f *fakeMessenger) grant(userID, roleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[userID] = append(f.roles[userID], roleID)
}

func (f *fakeMessenger) inThread(threadID, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.threadMembers[threadID][userID]
}

func (f *fakeMessenger) wasDeleted(messageID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.deleted {
		if id == messageID {
			return true
		}
	}
	return false
}

// harness wires the services over the real repositories and ledger.
type harness struct {
	t       *testing.T
	store   *memStore
	events  *database.EventRepository
	lineups *database.LineupRepository
	msg     *fakeMessenger
	runner  *syncRunner
	ledger  output.SuppressionLedger
	now     time.Time
	repo    []database.Option

	rsvp   *RSVPService
	event  *EventService
	lineup *LineupService
}

type harnessOption func(h *harness)

func withLedger(l output.SuppressionLedger) harnessOption {
	return func(h *harness) { h.ledger = l }
}

// withStoreTimeout bounds the repositories' store calls by d.
func withStoreTimeout(d time.Duration) harnessOption {
	return func(h *harness) { h.repo = append(h.repo, database.WithTimeout(d)) }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	ctx := context.Background()
	h := &harness{
		t:      t,
		store:  newMemStore(),
		msg:    newFakeMessenger(),
		runner: &syncRunner{},
		now:    time.Date(2025, 1, 1, 12, 0, 0, 0, tz.London),
	}
	mem := suppression.NewMemoryLedger(10*time.Second, 0)
	t.Cleanup(func() { _ = mem.Close() })
	h.ledger = mem
	for _, opt := range opts {
		opt(h)
	}

	var err error
	if h.events, err = database.NewEventRepository(ctx, h.store, h.repo...); err != nil {
		t.Fatalf("event repository: %v", err)
	}
	if h.lineups, err = database.NewLineupRepository(ctx, h.store, h.repo...); err != nil {
		t.Fatalf("lineup repository: %v", err)
	}

	o := Options{
		Log:    logger.Discard(),
		Runner: h.runner,
		Locks:  NewLocks(),
		Now:    func() time.Time { return h.now },
	}
	auth := NewAuthorizer(h.msg, organizerRole)
	threads := NewThreadSynchronizer(h.events, h.msg, o)
	h.lineup = NewLineupService(h.lineups, h.msg, auth, "chan-default", o)
	h.event = NewEventService(h.events, h.msg, auth, threads, h.lineup, "chan-default", o)
	h.rsvp = NewRSVPService(h.events, h.msg, h.ledger, threads, 5*time.Minute, o)
	return h
}

func (h *harness) createEvent(formation string) *entities.Event {
	h.t.Helper()
	ev, err := h.event.CreateEvent(context.Background(), inputEvent(formation))
	if err != nil {
		h.t.Fatalf("CreateEvent: %v", err)
	}
	return ev
}

func (h *harness) get(id uint) *entities.Event {
	h.t.Helper()
	ev, err := h.events.Get(context.Background(), id)
	if err != nil {
		h.t.Fatalf("Get(%d): %v", id, err)
	}
	return ev
}

func equal[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
