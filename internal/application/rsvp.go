package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"rosterbot/internal/domain"
	"rosterbot/internal/domain/entities"
	"rosterbot/internal/ports/input"
	"rosterbot/internal/ports/output"
)

var _ input.RSVPUseCase = (*RSVPService)(nil)

// RSVPService turns reactions on event cards into attendance state. The four
// glyphs behave as momentary buttons: each accepted reaction is removed
// again by the bot, and that removal is recorded in the suppression ledger
// so its echo is not mistaken for the user un-reacting.
type RSVPService struct {
	events        output.EventRepository
	msg           output.Messenger
	ledger        output.SuppressionLedger
	threads       *ThreadSynchronizer
	runner        Runner
	locks         *Locks
	rec           output.Recorder
	log           *logrus.Entry
	now           func() time.Time
	promptTimeout time.Duration
}

func NewRSVPService(
	events output.EventRepository,
	msg output.Messenger,
	ledger output.SuppressionLedger,
	threads *ThreadSynchronizer,
	promptTimeout time.Duration,
	opts Options,
) *RSVPService {
	opts = opts.withDefaults()
	return &RSVPService{
		events:        events,
		msg:           msg,
		ledger:        ledger,
		threads:       threads,
		runner:        opts.Runner,
		locks:         opts.Locks,
		rec:           opts.Recorder,
		log:           opts.Log.WithField("component", "rsvp"),
		now:           opts.Now,
		promptTimeout: promptTimeout,
	}
}

func (s *RSVPService) HandleReactionAdd(ctx context.Context, r input.Reaction) error {
	ev, err := s.events.FindByMessageID(ctx, r.MessageID)
	if err != nil {
		return nil
	}
	cmd, ok := entities.ParseGlyph(r.Glyph)
	if !ok {
		s.rec.Reaction("other", "stripped")
		s.strip(ctx, r)
		return nil
	}
	if cmd == entities.CommandLate {
		return s.beginLate(ctx, ev.ID, r)
	}
	status, _ := cmd.Status()

	unlock := s.locks.Lock(eventKey(ev.ID))
	ev, err = s.events.Get(ctx, ev.ID)
	if err != nil {
		unlock()
		return nil
	}
	if ev.Closed {
		unlock()
		s.rec.Reaction(cmd.String(), "closed")
		s.strip(ctx, r)
		return nil
	}
	stalePrompt := ev.PendingLate[r.UserID]
	changed := ev.SetStatus(r.UserID, status, s.now())
	if changed {
		ev.UpdatedAt = s.now()
		s.persist(ctx, ev)
		s.render(ctx, ev)
	}
	unlock()

	s.strip(ctx, r)
	s.deletePrompt(ctx, ev.ChannelID, stalePrompt)
	if changed {
		s.rec.Reaction(cmd.String(), "applied")
		s.threads.Schedule(ev.ID, r.UserID)
	} else {
		s.rec.Reaction(cmd.String(), "unchanged")
	}
	return nil
}

func (s *RSVPService) beginLate(ctx context.Context, eventID uint, r input.Reaction) error {
	unlock := s.locks.Lock(eventKey(eventID))
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		unlock()
		return nil
	}
	if ev.Closed {
		unlock()
		s.rec.Reaction(entities.CommandLate.String(), "closed")
		s.strip(ctx, r)
		return nil
	}
	stalePrompt := ev.BeginLate(r.UserID)
	ev.UpdatedAt = s.now()
	s.persist(ctx, ev)
	s.render(ctx, ev)
	unlock()

	s.strip(ctx, r)
	s.deletePrompt(ctx, ev.ChannelID, stalePrompt)
	s.rec.Reaction(entities.CommandLate.String(), "prompted")
	s.threads.Schedule(ev.ID, r.UserID)

	promptID, err := s.msg.PromptArrival(ctx, ev, r.UserID, ev.ArrivalOptions())
	if err != nil {
		s.logEvent(ev.ID, r.UserID).WithError(err).Warn("arrival prompt not sent")
		return nil
	}

	unlock = s.locks.Lock(eventKey(eventID))
	attached := false
	if cur, err := s.events.Get(ctx, eventID); err == nil && cur.AttachPrompt(r.UserID, promptID) {
		s.persist(ctx, cur)
		attached = true
	}
	unlock()

	if !attached {
		// L'utilisateur a changé d'avis avant l'envoi du menu.
		s.deletePrompt(ctx, ev.ChannelID, promptID)
		return nil
	}
	s.runner.After(s.promptTimeout, "late-prompt-expiry", func(ctx context.Context) error {
		return s.expirePrompt(ctx, eventID, r.UserID, promptID)
	})
	return nil
}

// expirePrompt returns a user who never picked an arrival time to Unset.
func (s *RSVPService) expirePrompt(ctx context.Context, eventID uint, userID, promptID string) error {
	unlock := s.locks.Lock(eventKey(eventID))
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		unlock()
		return nil
	}
	current, pending := ev.PendingLate[userID]
	if !pending || current != promptID {
		unlock()
		return nil
	}
	ev.Clear(userID)
	ev.UpdatedAt = s.now()
	s.persist(ctx, ev)
	s.render(ctx, ev)
	unlock()

	s.deletePrompt(ctx, ev.ChannelID, promptID)
	s.threads.Schedule(eventID, userID)
	return nil
}

// ChooseArrival commits the arrival time picked from the prompt.
func (s *RSVPService) ChooseArrival(ctx context.Context, eventID uint, userID string, at time.Time) error {
	unlock := s.locks.Lock(eventKey(eventID))
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		unlock()
		return err
	}
	if ev.Closed {
		unlock()
		return domain.ErrEventClosed
	}
	if !ev.IsArrivalOption(at) {
		unlock()
		return domain.ErrInvalidArrival
	}
	promptID, pending := ev.PendingLate[userID]
	if !pending {
		unlock()
		return domain.ErrNotPendingArrival
	}
	ev.CommitLate(userID, at)
	ev.UpdatedAt = s.now()
	s.persist(ctx, ev)
	s.render(ctx, ev)
	unlock()

	s.deletePrompt(ctx, ev.ChannelID, promptID)
	s.rec.Reaction(entities.CommandLate.String(), "committed")
	s.threads.Schedule(eventID, userID)
	return nil
}

func (s *RSVPService) DismissPrompt(ctx context.Context, eventID uint, userID string) error {
	unlock := s.locks.Lock(eventKey(eventID))
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		unlock()
		return err
	}
	promptID, pending := ev.PendingLate[userID]
	if !pending {
		unlock()
		return domain.ErrNotPendingArrival
	}
	ev.Clear(userID)
	ev.UpdatedAt = s.now()
	s.persist(ctx, ev)
	s.render(ctx, ev)
	unlock()

	s.deletePrompt(ctx, ev.ChannelID, promptID)
	s.threads.Schedule(eventID, userID)
	return nil
}

func (s *RSVPService) HandleReactionRemove(ctx context.Context, r input.Reaction) error {
	ev, err := s.events.FindByMessageID(ctx, r.MessageID)
	if err != nil {
		return nil
	}
	suppressed, err := s.ledger.Consume(ctx, r.Key())
	if err != nil {
		// Sans ledger on ne sait pas distinguer l'écho : on conserve l'état.
		s.logEvent(ev.ID, r.UserID).WithError(err).Warn("suppression ledger unavailable, ignoring removal")
		suppressed = true
	}
	if suppressed {
		s.rec.SuppressedEcho()
		return nil
	}
	cmd, ok := entities.ParseGlyph(r.Glyph)
	if !ok {
		return nil
	}

	unlock := s.locks.Lock(eventKey(ev.ID))
	ev, err = s.events.Get(ctx, ev.ID)
	if err != nil || ev.Closed {
		unlock()
		return nil
	}
	changed, stalePrompt := ev.Clear(r.UserID)
	if changed {
		ev.UpdatedAt = s.now()
		s.persist(ctx, ev)
		s.render(ctx, ev)
	}
	unlock()

	s.deletePrompt(ctx, ev.ChannelID, stalePrompt)
	if changed {
		s.rec.Reaction(cmd.String(), "cleared")
		s.threads.Schedule(ev.ID, r.UserID)
	}
	return nil
}

// strip removes the triggering reaction, recording it first so the echo
// event is ignored. When the ledger cannot record it the reaction is left
// in place: a visible tally is better than a misread echo.
func (s *RSVPService) strip(ctx context.Context, r input.Reaction) {
	if err := s.ledger.Mark(ctx, r.Key()); err != nil {
		s.log.WithField("message_id", r.MessageID).WithError(err).Warn("suppression mark failed, reaction kept")
		return
	}
	if err := s.msg.RemoveReaction(ctx, r.ChannelID, r.MessageID, r.Glyph, r.UserID); err != nil {
		_, _ = s.ledger.Consume(ctx, r.Key())
		s.log.WithFields(logrus.Fields{
			"message_id": r.MessageID,
			"user_id":    r.UserID,
			"glyph":      r.Glyph,
		}).WithError(err).Warn("reaction removal failed")
	}
}

func (s *RSVPService) persist(ctx context.Context, ev *entities.Event) {
	if err := s.events.Save(ctx, ev); err != nil {
		s.rec.StoreError("save_event")
		s.log.WithField("event_id", ev.ID).WithError(err).Error("event not persisted")
	}
}

func (s *RSVPService) render(ctx context.Context, ev *entities.Event) {
	renderEventCard(ctx, s.msg, s.log, ev)
}

func (s *RSVPService) deletePrompt(ctx context.Context, channelID, promptID string) {
	if promptID == "" {
		return
	}
	if err := s.msg.DeleteMessage(ctx, channelID, promptID); err != nil && domain.KindOf(err) != domain.KindNotFound {
		s.log.WithField("message_id", promptID).WithError(err).Debug("arrival prompt not deleted")
	}
}

func (s *RSVPService) logEvent(eventID uint, userID string) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{"event_id": eventID, "user_id": userID})
}

// renderEventCard re-renders the card; a vanished message is not an error.
func renderEventCard(ctx context.Context, cards output.Cards, log *logrus.Entry, ev *entities.Event) {
	err := cards.UpdateEventCard(ctx, ev)
	switch {
	case err == nil:
	case domain.KindOf(err) == domain.KindNotFound:
		log.WithField("event_id", ev.ID).Debug("event card gone, render skipped")
	default:
		log.WithField("event_id", ev.ID).WithError(err).Warn("event card not updated")
	}
}
