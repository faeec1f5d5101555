package application

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rosterbot/internal/domain"
	"rosterbot/internal/ports/output"
)

// Runner executes detached tasks. Failures are logged by the runner and
// never reach the caller.
type Runner interface {
	Go(name string, fn func(ctx context.Context) error)
	After(d time.Duration, name string, fn func(ctx context.Context) error)
}

// Locks serializes read-modify-persist blocks per entity key.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

func NewLocks() *Locks {
	return &Locks{locks: map[string]*keyLock{}}
}

// Lock acquires the lock for key and returns its release function.
func (l *Locks) Lock(key string) func() {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.Lock()
	return func() {
		kl.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func eventKey(id uint) string  { return "event:" + strconv.FormatUint(uint64(id), 10) }
func lineupKey(id uint) string { return "lineup:" + strconv.FormatUint(uint64(id), 10) }

func threadKey(eventID uint, userID string) string {
	return "thread:" + strconv.FormatUint(uint64(eventID), 10) + ":" + userID
}

// Authorizer checks the single elevated role that gates organizer actions.
type Authorizer struct {
	dir             output.Directory
	organizerRoleID string
}

func NewAuthorizer(dir output.Directory, organizerRoleID string) *Authorizer {
	return &Authorizer{dir: dir, organizerRoleID: organizerRoleID}
}

// HasRole reports whether userID holds roleID.
func (a *Authorizer) HasRole(ctx context.Context, userID, roleID string) (bool, error) {
	roles, err := a.dir.MemberRoles(ctx, userID)
	if err != nil {
		return false, domain.Transient("member roles", err)
	}
	return slices.Contains(roles, roleID), nil
}

// RequireOrganizer fails with domain.ErrNotOrganizer unless userID holds the
// organizer role. Lookup failures deny as well.
func (a *Authorizer) RequireOrganizer(ctx context.Context, userID string) error {
	ok, err := a.HasRole(ctx, userID, a.organizerRoleID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotOrganizer
	}
	return nil
}

type nopRecorder struct{}

func (nopRecorder) Reaction(string, string)   {}
func (nopRecorder) SuppressedEcho()           {}
func (nopRecorder) ThreadSync(string, string) {}
func (nopRecorder) StoreError(string)         {}
func (nopRecorder) LineupPings(int)           {}

// Options carries the collaborators shared by every service.
type Options struct {
	Log      *logrus.Logger
	Recorder output.Recorder
	Runner   Runner
	Locks    *Locks
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Locks == nil {
		o.Locks = NewLocks()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Runner == nil {
		o.Runner = goroutineRunner{log: o.Log.WithField("component", "runner")}
	}
	return o
}

// goroutineRunner is the fallback Runner: one goroutine per task, no bound.
type goroutineRunner struct {
	log *logrus.Entry
}

func (r goroutineRunner) Go(name string, fn func(ctx context.Context) error) {
	go func() {
		if err := fn(context.Background()); err != nil {
			r.log.WithField("task", name).WithError(err).Warn("task failed")
		}
	}()
}

func (r goroutineRunner) After(d time.Duration, name string, fn func(ctx context.Context) error) {
	time.AfterFunc(d, func() { r.Go(name, fn) })
}
