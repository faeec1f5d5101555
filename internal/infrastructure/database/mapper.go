package database

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"rosterbot/internal/domain/entities"
)

const (
	eventPrefix  = "event:"
	lineupPrefix = "lineup:"
)

func eventDocName(id uint) string  { return eventPrefix + strconv.FormatUint(uint64(id), 10) }
func lineupDocName(id uint) string { return lineupPrefix + strconv.FormatUint(uint64(id), 10) }

type responseDocument struct {
	Status      string    `json:"status"`
	RespondedAt time.Time `json:"responded_at"`
}

type eventDocument struct {
	ID           uint                        `json:"id"`
	Name         string                      `json:"name"`
	Description  string                      `json:"description"`
	ScheduledAt  time.Time                   `json:"scheduled_at"`
	ChannelID    string                      `json:"channel_id"`
	MessageID    string                      `json:"message_id"`
	ThreadID     string                      `json:"thread_id,omitempty"`
	CreatorID    string                      `json:"creator_id"`
	Closed       bool                        `json:"closed"`
	Attendance   map[string]responseDocument `json:"attendance"`
	LateArrivals map[string]time.Time        `json:"late_arrivals"`
	PendingLate  map[string]string           `json:"pending_late,omitempty"`
	RoleID       string                      `json:"role_id,omitempty"`
	StreamURL    string                      `json:"stream_url,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

type positionDocument struct {
	Code   string `json:"code"`
	UserID string `json:"user_id,omitempty"`
}

type lineupDocument struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	FormationName string             `json:"formation"`
	Positions     []positionDocument `json:"positions"`
	RoleID        string             `json:"role_id,omitempty"`
	ChannelID     string             `json:"channel_id"`
	MessageID     string             `json:"message_id"`
	CreatorID     string             `json:"creator_id"`
	EventID       uint               `json:"event_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	FinishedOnce  bool               `json:"finished_once"`
	NotifiedUsers []string           `json:"notified_users"`
	KickoffAt     *time.Time         `json:"kickoff_at,omitempty"`
}

func encodeEvent(e *entities.Event) ([]byte, error) {
	doc := eventDocument{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		ScheduledAt:  e.ScheduledAt,
		ChannelID:    e.ChannelID,
		MessageID:    e.MessageID,
		ThreadID:     e.ThreadID,
		CreatorID:    e.CreatorID,
		Closed:       e.Closed,
		Attendance:   make(map[string]responseDocument, len(e.Attendance)),
		LateArrivals: e.LateArrivals,
		PendingLate:  e.PendingLate,
		RoleID:       e.RoleID,
		StreamURL:    e.StreamURL,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	for id, r := range e.Attendance {
		doc.Attendance[id] = responseDocument{Status: string(r.Status), RespondedAt: r.RespondedAt}
	}
	if doc.LateArrivals == nil {
		doc.LateArrivals = map[string]time.Time{}
	}
	return json.Marshal(doc)
}

func decodeEvent(body []byte) (*entities.Event, error) {
	var doc eventDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	e := entities.NewEvent(doc.ID, doc.Name, doc.Description, doc.ScheduledAt, doc.ChannelID, doc.CreatorID)
	e.MessageID = doc.MessageID
	e.ThreadID = doc.ThreadID
	e.Closed = doc.Closed
	e.RoleID = doc.RoleID
	e.StreamURL = doc.StreamURL
	e.CreatedAt = doc.CreatedAt
	e.UpdatedAt = doc.UpdatedAt
	for id, r := range doc.Attendance {
		e.Attendance[id] = entities.Response{Status: entities.Status(r.Status), RespondedAt: r.RespondedAt}
	}
	for id, at := range doc.LateArrivals {
		e.LateArrivals[id] = at
	}
	for id, prompt := range doc.PendingLate {
		e.PendingLate[id] = prompt
	}
	return e, nil
}

func encodeLineup(l *entities.Lineup) ([]byte, error) {
	doc := lineupDocument{
		ID:            l.ID,
		Title:         l.Title,
		FormationName: l.FormationName,
		Positions:     make([]positionDocument, len(l.Positions)),
		RoleID:        l.RoleID,
		ChannelID:     l.ChannelID,
		MessageID:     l.MessageID,
		CreatorID:     l.CreatorID,
		EventID:       l.EventID,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
		FinishedOnce:  l.FinishedOnce,
		NotifiedUsers: l.Notified(),
	}
	for i, p := range l.Positions {
		doc.Positions[i] = positionDocument{Code: p.Code, UserID: p.UserID}
	}
	if !l.KickoffAt.IsZero() {
		k := l.KickoffAt
		doc.KickoffAt = &k
	}
	return json.Marshal(doc)
}

func decodeLineup(body []byte) (*entities.Lineup, error) {
	var doc lineupDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode lineup: %w", err)
	}
	l := &entities.Lineup{
		ID:            doc.ID,
		Title:         doc.Title,
		FormationName: doc.FormationName,
		Positions:     make([]entities.Position, len(doc.Positions)),
		RoleID:        doc.RoleID,
		ChannelID:     doc.ChannelID,
		MessageID:     doc.MessageID,
		CreatorID:     doc.CreatorID,
		EventID:       doc.EventID,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
		FinishedOnce:  doc.FinishedOnce,
		NotifiedUsers: make(map[string]struct{}, len(doc.NotifiedUsers)),
	}
	for i, p := range doc.Positions {
		l.Positions[i] = entities.Position{Code: p.Code, UserID: p.UserID}
	}
	for _, id := range doc.NotifiedUsers {
		l.NotifiedUsers[id] = struct{}{}
	}
	if doc.KickoffAt != nil {
		l.KickoffAt = *doc.KickoffAt
	}
	return l, nil
}

func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
