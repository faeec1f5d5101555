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

var (
	_ input.LineupUseCase = (*LineupService)(nil)
	_ lineupSpawner       = (*LineupService)(nil)
)

// LineupService drives the lineup assignment board. Board operations take
// the caller's BoardView and return the next one; the lineup document only
// holds assignments.
type LineupService struct {
	lineups        output.LineupRepository
	msg            output.Messenger
	auth           *Authorizer
	defaultChannel string
	locks          *Locks
	rec            output.Recorder
	log            *logrus.Entry
	now            func() time.Time
}

func NewLineupService(
	lineups output.LineupRepository,
	msg output.Messenger,
	auth *Authorizer,
	defaultChannel string,
	opts Options,
) *LineupService {
	opts = opts.withDefaults()
	return &LineupService{
		lineups:        lineups,
		msg:            msg,
		auth:           auth,
		defaultChannel: defaultChannel,
		locks:          opts.Locks,
		rec:            opts.Recorder,
		log:            opts.Log.WithField("component", "lineup"),
		now:            opts.Now,
	}
}

func (s *LineupService) CreateLineup(ctx context.Context, in input.CreateLineup) (*entities.Lineup, error) {
	if err := s.auth.RequireOrganizer(ctx, in.CreatorID); err != nil {
		return nil, err
	}
	f, ok := entities.LookupFormation(in.Formation)
	if !ok {
		return nil, domain.ErrUnknownFormation
	}
	if in.ChannelID == "" {
		in.ChannelID = s.defaultChannel
	}
	if in.ChannelID == "" {
		return nil, domain.ErrChannelRequired
	}
	return s.create(ctx, in, f)
}

// SpawnForEvent creates the lineup attached to an event, inside its thread
// when it has one. The caller already passed the organizer check.
func (s *LineupService) SpawnForEvent(ctx context.Context, ev *entities.Event, f entities.Formation) (*entities.Lineup, error) {
	channelID := ev.ThreadID
	if channelID == "" {
		channelID = ev.ChannelID
	}
	return s.create(ctx, input.CreateLineup{
		Formation: f.Name,
		Title:     ev.Name,
		RoleID:    ev.RoleID,
		ChannelID: channelID,
		KickoffAt: ev.ScheduledAt,
		CreatorID: ev.CreatorID,
		EventID:   ev.ID,
	}, f)
}

func (s *LineupService) create(ctx context.Context, in input.CreateLineup, f entities.Formation) (*entities.Lineup, error) {
	id, err := s.lineups.NextID(ctx)
	if err != nil {
		return nil, err
	}
	l := entities.NewLineup(id, strings.TrimSpace(in.Title), f, in.ChannelID, in.CreatorID, s.now())
	l.RoleID = in.RoleID
	l.KickoffAt = in.KickoffAt
	l.EventID = in.EventID

	unlock := s.locks.Lock(lineupKey(id))
	defer unlock()

	messageID, err := s.msg.PostLineupCard(ctx, l, entities.NewBoardView())
	if err != nil {
		return nil, domain.Transient("post lineup card", err)
	}
	l.MessageID = messageID
	s.persist(ctx, l)

	s.log.WithFields(logrus.Fields{
		"lineup_id": id,
		"formation": f.Name,
		"event_id":  in.EventID,
	}).Info("📋 lineup created")
	return l.Clone(), nil
}

// EditLineup re-posts the board at the bottom of its channel.
func (s *LineupService) EditLineup(ctx context.Context, id uint, actorID string) (*entities.Lineup, error) {
	if err := s.auth.RequireOrganizer(ctx, actorID); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(lineupKey(id))
	defer unlock()

	l, err := s.lineups.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	messageID, err := s.msg.PostLineupCard(ctx, l, entities.NewBoardView())
	if err != nil {
		return nil, domain.Transient("post lineup card", err)
	}
	old := l.MessageID
	l.MessageID = messageID
	l.UpdatedAt = s.now()
	s.persist(ctx, l)

	if old != "" {
		if err := s.msg.DeleteMessage(ctx, l.ChannelID, old); err != nil && domain.KindOf(err) != domain.KindNotFound {
			s.log.WithField("lineup_id", id).WithError(err).Warn("previous lineup card not deleted")
		}
	}
	return l.Clone(), nil
}

func (s *LineupService) DeleteLineup(ctx context.Context, id uint, actorID string) error {
	if err := s.auth.RequireOrganizer(ctx, actorID); err != nil {
		return err
	}
	return s.delete(ctx, id)
}

// DeleteForEvent removes every lineup spawned by eventID.
func (s *LineupService) DeleteForEvent(ctx context.Context, eventID uint) error {
	var result error
	for _, l := range s.lineups.FindByEventID(ctx, eventID) {
		if err := s.delete(ctx, l.ID); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

func (s *LineupService) delete(ctx context.Context, id uint) error {
	unlock := s.locks.Lock(lineupKey(id))
	l, err := s.lineups.Get(ctx, id)
	if err != nil {
		unlock()
		return err
	}
	if err := s.lineups.Delete(ctx, id); err != nil {
		unlock()
		s.rec.StoreError("delete_lineup")
		return err
	}
	unlock()

	if err := s.msg.DeleteMessage(ctx, l.ChannelID, l.MessageID); err != nil && domain.KindOf(err) != domain.KindNotFound {
		s.log.WithField("lineup_id", id).WithError(err).Warn("lineup card not deleted")
	}
	s.log.WithField("lineup_id", id).Info("🗑️ lineup deleted")
	return nil
}

// boardStep computes the next view from the locked lineup. changed reports
// whether the lineup itself was mutated and must be persisted.
type boardStep func(ctx context.Context, l *entities.Lineup, v entities.BoardView) (next entities.BoardView, changed bool, err error)

// mutate runs one organizer-gated board operation as a single
// read-modify-persist-render block under the lineup lock.
func (s *LineupService) mutate(ctx context.Context, b input.Board, step boardStep) (entities.BoardView, error) {
	if err := s.auth.RequireOrganizer(ctx, b.ActorID); err != nil {
		return b.View, err
	}
	unlock := s.locks.Lock(lineupKey(b.LineupID))
	defer unlock()

	l, err := s.lineups.Get(ctx, b.LineupID)
	if err != nil {
		return b.View, err
	}
	next, changed, err := step(ctx, l, b.View)
	if err != nil {
		return b.View, err
	}
	if changed {
		l.UpdatedAt = s.now()
		s.persist(ctx, l)
	}
	s.render(ctx, l, next)
	return next, nil
}

func requirePicking(v entities.BoardView) error {
	if v.Mode == entities.BoardChangingFormation {
		return domain.ErrFormationChange
	}
	return nil
}

func (s *LineupService) FocusPosition(ctx context.Context, b input.Board, index int) (entities.BoardView, error) {
	return s.mutate(ctx, b, func(_ context.Context, l *entities.Lineup, v entities.BoardView) (entities.BoardView, bool, error) {
		if err := requirePicking(v); err != nil {
			return v, false, err
		}
		if index < 0 || index >= len(l.Positions) {
			return v, false, domain.ErrInvalidPosition
		}
		return v.WithFocus(index), false, nil
	})
}

func (s *LineupService) PlayerPage(ctx context.Context, b input.Board, page int) (entities.BoardView, error) {
	return s.mutate(ctx, b, func(ctx context.Context, l *entities.Lineup, v entities.BoardView) (entities.BoardView, bool, error) {
		if err := requirePicking(v); err != nil {
			return v, false, err
		}
		if !v.HasFocus() {
			return v, false, domain.ErrNoPositionSelected
		}
		if l.RoleID == "" {
			return v.WithPage(0, 0), false, nil
		}
		members, err := s.msg.RoleMembers(ctx, l.RoleID)
		if err != nil {
			return v, false, domain.Transient("role members", err)
		}
		return v.WithPage(page, len(members)), false, nil
	})
}

func (s *LineupService) AssignPlayer(ctx context.Context, b input.Board, userID string) (entities.BoardView, error) {
	// The role check needs a platform lookup, so it runs before the lock.
	current, err := s.lineups.Get(ctx, b.LineupID)
	if err != nil {
		return b.View, err
	}
	if current.RoleID != "" {
		ok, err := s.auth.HasRole(ctx, userID, current.RoleID)
		if err != nil {
			return b.View, err
		}
		if !ok {
			return b.View, domain.ErrNotAssignable
		}
	}
	return s.mutate(ctx, b, func(_ context.Context, l *entities.Lineup, v entities.BoardView) (entities.BoardView, bool, error) {
		if err := requirePicking(v); err != nil {
			return v, false, err
		}
		if !v.HasFocus() {
			return v, false, domain.ErrNoPositionSelected
		}
		if v.Focus >= len(l.Positions) {
			return v, false, domain.ErrInvalidPosition
		}
		changed := l.Assign(v.Focus, userID)
		return v.Assigned(), changed, nil
	})
}

func (s *LineupService) ClearSelected(ctx context.Context, b input.Board) (entities.BoardView, error) {
	return s.mutate(ctx, b, func(_ context.Context, l *entities.Lineup, v entities.BoardView) (entities.BoardView, bool, error) {
		if err := requirePicking(v); err != nil {
			return v, false, err
		}
		if !v.HasFocus() {
			return v, false, domain.ErrNoPositionSelected
		}
		if !l.Unassign(v.Focus) {
			return v, false, domain.ErrPositionEmpty
		}
		return v.Assigned(), true, nil
	})
}

func (s *LineupService) ClearAll(ctx context.Context, b input.Board) (entities.BoardView, error) {
	return s.mutate(ctx, b, func(_ context.Context, l *entities.Lineup, v entities.BoardView) (entities.BoardView, bool, error) {
		if err := requirePicking(v); err != nil {
			return v, false, err
		}
		if !l.ClearAssignments() {
			return v, false, domain.ErrNothingToClear
		}
		return v.Picking(), true, nil
	})
}

// BeginFormationChange clears every assignment on entry: positions are
// addressed by index, so no assignment may survive into the new shape.
func (s *LineupService) BeginFormationChange(ctx context.Context, b input.Board) (entities.BoardView, error) {
	return s.mutate(ctx, b, func(_ context.Context, l *entities.Lineup, v entities.BoardView) (entities.BoardView, bool, error) {
		if err := requirePicking(v); err != nil {
			return v, false, err
		}
		changed := l.ClearAssignments()
		return v.ChangingFormation(), changed, nil
	})
}

func (s *LineupService) ConfirmFormationChange(ctx context.Context, b input.Board, formation string) (entities.BoardView, error) {
	return s.mutate(ctx, b, func(_ context.Context, l *entities.Lineup, v entities.BoardView) (entities.BoardView, bool, error) {
		if v.Mode != entities.BoardChangingFormation {
			return v, false, domain.ErrNotChangingFormat
		}
		f, ok := entities.LookupFormation(formation)
		if !ok {
			return v, false, domain.ErrUnknownFormation
		}
		l.ChangeFormation(f)
		return v.Picking(), true, nil
	})
}

func (s *LineupService) CancelFormationChange(ctx context.Context, b input.Board) (entities.BoardView, error) {
	return s.mutate(ctx, b, func(_ context.Context, _ *entities.Lineup, v entities.BoardView) (entities.BoardView, bool, error) {
		if v.Mode != entities.BoardChangingFormation {
			return v, false, domain.ErrNotChangingFormat
		}
		return v.Picking(), false, nil
	})
}

// Finalize pings the assignees that were never notified and records them.
// A failed ping leaves them pending for the next finalize.
func (s *LineupService) Finalize(ctx context.Context, b input.Board) ([]string, entities.BoardView, error) {
	var pinged []string
	view, err := s.mutate(ctx, b, func(ctx context.Context, l *entities.Lineup, v entities.BoardView) (entities.BoardView, bool, error) {
		if err := requirePicking(v); err != nil {
			return v, false, err
		}
		pending := l.PendingNotifications()
		if len(pending) == 0 {
			l.FinishedOnce = true
			return v.Assigned(), true, nil
		}
		if err := s.msg.NotifyLineup(ctx, l, pending); err != nil {
			l.FinishedOnce = true
			s.log.WithField("lineup_id", l.ID).WithError(err).Warn("⚠️ lineup notification failed")
			return v.Assigned(), true, nil
		}
		l.MarkNotified(pending)
		pinged = pending
		s.rec.LineupPings(len(pending))
		return v.Assigned(), true, nil
	})
	if err != nil {
		return nil, view, err
	}
	return pinged, view, nil
}

func (s *LineupService) persist(ctx context.Context, l *entities.Lineup) {
	if err := s.lineups.Save(ctx, l); err != nil {
		s.rec.StoreError("save_lineup")
		s.log.WithField("lineup_id", l.ID).WithError(err).Error("lineup not persisted")
	}
}

func (s *LineupService) render(ctx context.Context, l *entities.Lineup, v entities.BoardView) {
	err := s.msg.UpdateLineupCard(ctx, l, v)
	switch {
	case err == nil:
	case domain.KindOf(err) == domain.KindNotFound:
		s.log.WithField("lineup_id", l.ID).Debug("lineup card gone, render skipped")
	default:
		s.log.WithField("lineup_id", l.ID).WithError(err).Warn("lineup card not updated")
	}
}
