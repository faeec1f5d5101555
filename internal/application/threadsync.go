package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"rosterbot/internal/ports/output"
)

// ThreadSynchronizer keeps an event thread's members equal to the users who
// attend, maybe attend, or committed a late arrival. It is best-effort:
// platform errors are counted and logged, never returned to the RSVP flow.
type ThreadSynchronizer struct {
	events  output.EventRepository
	threads output.Threads
	runner  Runner
	locks   *Locks
	rec     output.Recorder
	log     *logrus.Entry
}

func NewThreadSynchronizer(events output.EventRepository, threads output.Threads, opts Options) *ThreadSynchronizer {
	opts = opts.withDefaults()
	return &ThreadSynchronizer{
		events:  events,
		threads: threads,
		runner:  opts.Runner,
		locks:   opts.Locks,
		rec:     opts.Recorder,
		log:     opts.Log.WithField("component", "thread_sync"),
	}
}

// Schedule queues a re-check of userID's membership. It never blocks.
func (t *ThreadSynchronizer) Schedule(eventID uint, userID string) {
	t.runner.Go("thread-sync", func(ctx context.Context) error {
		t.Sync(ctx, eventID, userID)
		return nil
	})
}

// ScheduleAll queues a re-check for every user the event knows about.
func (t *ThreadSynchronizer) ScheduleAll(ctx context.Context, eventID uint) {
	ev, err := t.events.Get(ctx, eventID)
	if err != nil {
		return
	}
	for _, userID := range ev.Users() {
		t.Schedule(eventID, userID)
	}
}

// Sync applies the membership predicate for userID from the event's
// current state. Vanished events or threads make it a no-op. Syncs of the
// same (event, user) run one at a time, so a slow add can never land after
// the remove that superseded it.
func (t *ThreadSynchronizer) Sync(ctx context.Context, eventID uint, userID string) {
	unlock := t.locks.Lock(threadKey(eventID, userID))
	defer unlock()

	ev, err := t.events.Get(ctx, eventID)
	if err != nil || ev.ThreadID == "" {
		return
	}
	action := "remove"
	if ev.ThreadEligible(userID) {
		action = "add"
		err = t.threads.AddThreadMember(ctx, ev.ThreadID, userID)
	} else {
		err = t.threads.RemoveThreadMember(ctx, ev.ThreadID, userID)
	}
	if err != nil {
		t.rec.ThreadSync(action, "failed")
		t.log.WithFields(logrus.Fields{
			"event_id": eventID,
			"user_id":  userID,
			"action":   action,
		}).WithError(err).Debug("thread membership update ignored")
		return
	}
	t.rec.ThreadSync(action, "ok")
}
