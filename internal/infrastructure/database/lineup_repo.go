package database

import (
	"context"
	"fmt"
	"sync"

	"rosterbot/internal/domain"
	"rosterbot/internal/domain/entities"
	"rosterbot/internal/ports/output"
)

var _ output.LineupRepository = (*LineupRepository)(nil)

// LineupRepository is the lineup counterpart of EventRepository.
type LineupRepository struct {
	store output.DocumentStore
	bound

	mu        sync.RWMutex
	byID      map[uint]*entities.Lineup
	byMessage map[string]uint
}

func NewLineupRepository(ctx context.Context, store output.DocumentStore, opts ...Option) (*LineupRepository, error) {
	r := &LineupRepository{
		store:     store,
		bound:     newBound(opts),
		byID:      map[uint]*entities.Lineup{},
		byMessage: map[string]uint{},
	}
	lctx, cancel := r.call(ctx)
	defer cancel()
	docs, err := store.List(lctx, lineupPrefix)
	if err != nil {
		return nil, fmt.Errorf("load lineups: %w", err)
	}
	for name, body := range docs {
		l, err := decodeLineup(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		r.index(l)
	}
	return r, nil
}

func (r *LineupRepository) index(l *entities.Lineup) {
	if prev, ok := r.byID[l.ID]; ok && prev.MessageID != l.MessageID {
		delete(r.byMessage, prev.MessageID)
	}
	r.byID[l.ID] = l
	if l.MessageID != "" {
		r.byMessage[l.MessageID] = l.ID
	}
}

func (r *LineupRepository) NextID(ctx context.Context) (uint, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	id, err := r.store.NextID(ctx, "lineup")
	if err != nil {
		return 0, domain.Transient("next lineup id", err)
	}
	return id, nil
}

func (r *LineupRepository) Get(_ context.Context, id uint) (*entities.Lineup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrLineupNotFound
	}
	return l.Clone(), nil
}

func (r *LineupRepository) FindByMessageID(_ context.Context, messageID string) (*entities.Lineup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byMessage[messageID]
	if !ok {
		return nil, domain.ErrLineupNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *LineupRepository) FindByEventID(_ context.Context, eventID uint) []*entities.Lineup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entities.Lineup
	for _, id := range sortedIDs(r.byID) {
		if l := r.byID[id]; eventID != 0 && l.EventID == eventID {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (r *LineupRepository) Save(ctx context.Context, l *entities.Lineup) error {
	snapshot := l.Clone()
	r.mu.Lock()
	r.index(snapshot)
	r.mu.Unlock()

	body, err := encodeLineup(snapshot)
	if err != nil {
		return fmt.Errorf("encode lineup %d: %w", l.ID, err)
	}
	ctx, cancel := r.call(ctx)
	defer cancel()
	if err := r.store.Save(ctx, lineupDocName(l.ID), body); err != nil {
		return domain.Transient("save lineup", err)
	}
	return nil
}

func (r *LineupRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	if l, ok := r.byID[id]; ok {
		delete(r.byMessage, l.MessageID)
		delete(r.byID, id)
	}
	r.mu.Unlock()

	ctx, cancel := r.call(ctx)
	defer cancel()
	if err := r.store.Delete(ctx, lineupDocName(id)); err != nil {
		return domain.Transient("delete lineup", err)
	}
	return nil
}
