package discord

import (
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"rosterbot/internal/ports/input"
	"rosterbot/internal/ports/output"
)

// Handler handles Discord gateway events using use cases.
type Handler struct {
	events  input.EventUseCase
	rsvp    input.RSVPUseCase
	lineups input.LineupUseCase
	tr      output.T
	locale  string
	guildID string
	log     *logrus.Entry
	now     func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(
	events input.EventUseCase,
	rsvp input.RSVPUseCase,
	lineups input.LineupUseCase,
	tr output.T,
	locale string,
	guildID string,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		events:  events,
		rsvp:    rsvp,
		lineups: lineups,
		tr:      tr,
		locale:  locale,
		guildID: guildID,
		log:     log.WithField("component", "handler"),
		now:     time.Now,
	}
}

func (h *Handler) translate(key string, data map[string]any) string {
	return h.tr.T(h.locale, key, data)
}

// recoverPanic keeps one malformed gateway event from taking the process down.
// Use as: defer h.recoverPanic("reaction_add").
func (h *Handler) recoverPanic(what string) {
	if r := recover(); r != nil {
		h.log.WithFields(logrus.Fields{
			"handler": what,
			"panic":   r,
			"stack":   string(debug.Stack()),
		}).Error("💥 handler panicked")
	}
}
