package database

import (
	"context"
	"fmt"
	"sync"

	"rosterbot/internal/domain"
	"rosterbot/internal/domain/entities"
	"rosterbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

// EventRepository caches every event in memory and writes whole documents
// through to the store. The cache is authoritative: a failed store write
// leaves the cached state in place for the next successful Save.
type EventRepository struct {
	store output.DocumentStore
	bound

	mu        sync.RWMutex
	byID      map[uint]*entities.Event
	byMessage map[string]uint
}

// NewEventRepository loads all event documents from store.
func NewEventRepository(ctx context.Context, store output.DocumentStore, opts ...Option) (*EventRepository, error) {
	r := &EventRepository{
		store:     store,
		bound:     newBound(opts),
		byID:      map[uint]*entities.Event{},
		byMessage: map[string]uint{},
	}
	lctx, cancel := r.call(ctx)
	defer cancel()
	docs, err := store.List(lctx, eventPrefix)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	for name, body := range docs {
		e, err := decodeEvent(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		r.index(e)
	}
	return r, nil
}

func (r *EventRepository) index(e *entities.Event) {
	if prev, ok := r.byID[e.ID]; ok && prev.MessageID != "" && prev.MessageID != e.MessageID {
		delete(r.byMessage, prev.MessageID)
	}
	r.byID[e.ID] = e
	if e.MessageID != "" {
		r.byMessage[e.MessageID] = e.ID
	}
}

func (r *EventRepository) NextID(ctx context.Context) (uint, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	id, err := r.store.NextID(ctx, "event")
	if err != nil {
		return 0, domain.Transient("next event id", err)
	}
	return id, nil
}

func (r *EventRepository) Get(_ context.Context, id uint) (*entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return e.Clone(), nil
}

func (r *EventRepository) FindByMessageID(_ context.Context, messageID string) (*entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byMessage[messageID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *EventRepository) All(_ context.Context) []*entities.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.Event, 0, len(r.byID))
	for _, id := range sortedIDs(r.byID) {
		out = append(out, r.byID[id].Clone())
	}
	return out
}

// Save updates the cache, then writes the whole document.
func (r *EventRepository) Save(ctx context.Context, e *entities.Event) error {
	snapshot := e.Clone()
	r.mu.Lock()
	r.index(snapshot)
	r.mu.Unlock()

	body, err := encodeEvent(snapshot)
	if err != nil {
		return fmt.Errorf("encode event %d: %w", e.ID, err)
	}
	ctx, cancel := r.call(ctx)
	defer cancel()
	if err := r.store.Save(ctx, eventDocName(e.ID), body); err != nil {
		return domain.Transient("save event", err)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	if e, ok := r.byID[id]; ok {
		delete(r.byMessage, e.MessageID)
		delete(r.byID, id)
	}
	r.mu.Unlock()

	ctx, cancel := r.call(ctx)
	defer cancel()
	if err := r.store.Delete(ctx, eventDocName(id)); err != nil {
		return domain.Transient("delete event", err)
	}
	return nil
}
