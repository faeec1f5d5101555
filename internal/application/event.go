package application

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"rosterbot/internal/domain"
	"rosterbot/internal/domain/entities"
	"rosterbot/internal/ports/input"
	"rosterbot/internal/ports/output"
)

var _ input.EventUseCase = (*EventService)(nil)

// lineupSpawner is the part of the lineup service the event flow needs.
type lineupSpawner interface {
	SpawnForEvent(ctx context.Context, ev *entities.Event, f entities.Formation) (*entities.Lineup, error)
	DeleteForEvent(ctx context.Context, eventID uint) error
}

type EventService struct {
	events         output.EventRepository
	msg            output.Messenger
	auth           *Authorizer
	threads        *ThreadSynchronizer
	lineups        lineupSpawner
	defaultChannel string
	locks          *Locks
	rec            output.Recorder
	log            *logrus.Entry
	now            func() time.Time
}

func NewEventService(
	events output.EventRepository,
	msg output.Messenger,
	auth *Authorizer,
	threads *ThreadSynchronizer,
	lineups lineupSpawner,
	defaultChannel string,
	opts Options,
) *EventService {
	opts = opts.withDefaults()
	return &EventService{
		events:         events,
		msg:            msg,
		auth:           auth,
		threads:        threads,
		lineups:        lineups,
		defaultChannel: defaultChannel,
		locks:          opts.Locks,
		rec:            opts.Recorder,
		log:            opts.Log.WithField("component", "event"),
		now:            opts.Now,
	}
}

func (s *EventService) validate(in input.CreateEvent) (channelID string, f *entities.Formation, err error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", nil, domain.ErrEmptyName
	}
	if in.ScheduledAt.IsZero() {
		return "", nil, domain.ErrInvalidDateTime
	}
	if !in.ScheduledAt.After(s.now()) {
		return "", nil, domain.ErrDateTimeInPast
	}
	if in.Formation != "" {
		found, ok := entities.LookupFormation(in.Formation)
		if !ok {
			return "", nil, domain.ErrUnknownFormation
		}
		f = &found
	}
	channelID = in.ChannelID
	if channelID == "" {
		channelID = s.defaultChannel
	}
	if channelID == "" {
		return "", nil, domain.ErrChannelRequired
	}
	return channelID, f, nil
}

// CreateEvent posts the event card, seeds the glyphs, opens the discussion
// thread and, when a formation is given, spawns a lineup inside it.
func (s *EventService) CreateEvent(ctx context.Context, in input.CreateEvent) (*entities.Event, error) {
	if err := s.auth.RequireOrganizer(ctx, in.CreatorID); err != nil {
		return nil, err
	}
	channelID, formation, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	id, err := s.events.NextID(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ev := entities.NewEvent(id, strings.TrimSpace(in.Name), strings.TrimSpace(in.Description), in.ScheduledAt, channelID, in.CreatorID)
	ev.RoleID = in.RoleID
	ev.StreamURL = strings.TrimSpace(in.StreamURL)
	ev.CreatedAt = now
	ev.UpdatedAt = now

	unlock := s.locks.Lock(eventKey(id))
	messageID, err := s.msg.PostEventCard(ctx, channelID, ev)
	if err != nil {
		unlock()
		return nil, domain.Transient("post event card", err)
	}
	ev.MessageID = messageID
	s.persist(ctx, ev)
	unlock()

	log := s.log.WithFields(logrus.Fields{"event_id": id, "message_id": messageID})

	var seedErr error
	for _, glyph := range entities.Glyphs {
		if err := s.msg.AddReaction(ctx, channelID, messageID, glyph); err != nil {
			seedErr = multierror.Append(seedErr, err)
		}
	}
	if seedErr != nil {
		log.WithError(seedErr).Warn("⚠️ some RSVP glyphs were not seeded")
	}

	threadID, err := s.msg.StartThread(ctx, channelID, messageID, ev.Name)
	if err != nil {
		log.WithError(err).Warn("⚠️ discussion thread not created")
	} else {
		unlock = s.locks.Lock(eventKey(id))
		if cur, getErr := s.events.Get(ctx, id); getErr == nil {
			cur.ThreadID = threadID
			cur.UpdatedAt = s.now()
			s.persist(ctx, cur)
			ev = cur
		}
		unlock()
		// Des réactions ont pu arriver avant la création du fil.
		s.threads.ScheduleAll(ctx, id)
	}

	if ev.RoleID != "" {
		if err := s.msg.AnnounceEvent(ctx, ev); err != nil {
			log.WithError(err).Warn("⚠️ role announcement failed")
		}
	}

	if formation != nil {
		if _, err := s.lineups.SpawnForEvent(ctx, ev, *formation); err != nil {
			log.WithError(err).Warn("⚠️ event lineup not created")
		}
	}

	log.WithField("name", ev.Name).Info("📅 event created")
	return ev, nil
}

func (s *EventService) CloseEvent(ctx context.Context, id uint, actorID string) (*entities.Event, error) {
	return s.setClosed(ctx, id, actorID, true)
}

func (s *EventService) OpenEvent(ctx context.Context, id uint, actorID string) (*entities.Event, error) {
	return s.setClosed(ctx, id, actorID, false)
}

// setClosed is idempotent: the card is re-rendered even when nothing changed.
func (s *EventService) setClosed(ctx context.Context, id uint, actorID string, closed bool) (*entities.Event, error) {
	if err := s.auth.RequireOrganizer(ctx, actorID); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(eventKey(id))
	defer unlock()

	ev, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.Closed != closed {
		ev.Closed = closed
		ev.UpdatedAt = s.now()
		s.persist(ctx, ev)
	}
	renderEventCard(ctx, s.msg, s.log, ev)
	return ev.Clone(), nil
}

// CancelEvent removes the event, its card, its thread and its lineups. Only
// the store deletion can fail the call; the cleanup is best-effort.
func (s *EventService) CancelEvent(ctx context.Context, id uint, actorID string) error {
	if err := s.auth.RequireOrganizer(ctx, actorID); err != nil {
		return err
	}
	unlock := s.locks.Lock(eventKey(id))
	ev, err := s.events.Get(ctx, id)
	if err != nil {
		unlock()
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		unlock()
		s.rec.StoreError("delete_event")
		return err
	}
	unlock()

	var cleanup error
	if err := s.msg.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil && domain.KindOf(err) != domain.KindNotFound {
		cleanup = multierror.Append(cleanup, err)
	}
	for _, promptID := range ev.PendingLate {
		if promptID == "" {
			continue
		}
		if err := s.msg.DeleteMessage(ctx, ev.ChannelID, promptID); err != nil && domain.KindOf(err) != domain.KindNotFound {
			cleanup = multierror.Append(cleanup, err)
		}
	}
	if err := s.lineups.DeleteForEvent(ctx, id); err != nil {
		cleanup = multierror.Append(cleanup, err)
	}
	if ev.ThreadID != "" {
		if err := s.msg.DeleteThread(ctx, ev.ThreadID); err != nil && domain.KindOf(err) != domain.KindNotFound {
			cleanup = multierror.Append(cleanup, err)
		}
	}
	log := s.log.WithField("event_id", id)
	if cleanup != nil {
		log.WithError(cleanup).Warn("⚠️ event cancelled with cleanup errors")
	} else {
		log.Info("🗑️ event cancelled")
	}
	return nil
}

func (s *EventService) Info(ctx context.Context, id uint) (*entities.Event, error) {
	return s.events.Get(ctx, id)
}

func (s *EventService) persist(ctx context.Context, ev *entities.Event) {
	if err := s.events.Save(ctx, ev); err != nil {
		s.rec.StoreError("save_event")
		s.log.WithField("event_id", ev.ID).WithError(err).Error("event not persisted")
	}
}
