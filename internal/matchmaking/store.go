package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/pitchside/internal/docstore"
)

const cacheTTL = 10 * time.Second

type cacheEntry struct {
	match   *Match
	fetched time.Time
}

type dedupeEntry struct {
	matchID string
	at      time.Time
}

// store is the match repository over a document store. It owns a short-lived
// read cache and the create deduplication table.
type store struct {
	db           docstore.Store
	dedupeWindow time.Duration
	now          func() time.Time

	mu      sync.RWMutex
	cache   map[string]cacheEntry
	created map[string]dedupeEntry
}

// NewStore creates a match repository. A create repeated by the same organizer
// with an identical payload within dedupeWindow returns the first match.
func NewStore(db docstore.Store, dedupeWindow time.Duration) Store {
	return &store{
		db:           db,
		dedupeWindow: dedupeWindow,
		now:          time.Now,
		cache:        make(map[string]cacheEntry),
		created:      make(map[string]dedupeEntry),
	}
}

func (s *store) Create(ctx context.Context, m *Match) (*Match, error) {
	key := dedupeKey(m)
	now := s.now()

	s.mu.RLock()
	prev, ok := s.created[key]
	s.mu.RUnlock()
	if ok && now.Sub(prev.at) <= s.dedupeWindow {
		existing, err := s.Get(ctx, prev.matchID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			log.Info("Duplicate match create suppressed", "matchID", existing.ID, "organizer", m.Organizer.ID)
			return existing, nil
		}
	}

	if err := s.Save(ctx, m); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.created[key] = dedupeEntry{matchID: m.ID, at: now}
	for k, e := range s.created {
		if now.Sub(e.at) > s.dedupeWindow {
			delete(s.created, k)
		}
	}
	s.mu.Unlock()
	return m.Clone(), nil
}

func (s *store) Get(ctx context.Context, id string) (*Match, error) {
	s.mu.RLock()
	entry, ok := s.cache[id]
	s.mu.RUnlock()
	if ok && s.now().Sub(entry.fetched) < cacheTTL {
		return entry.match.Clone(), nil
	}

	rec, err := s.db.Get(ctx, matchesCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if rec == nil {
		s.forget(id)
		return nil, nil
	}
	m, err := decodeMatch(rec)
	if err != nil {
		return nil, err
	}
	s.remember(m)
	return m.Clone(), nil
}

// Save writes the whole match. The cache only changes after the write
// succeeds.
func (s *store) Save(ctx context.Context, m *Match) error {
	rec, err := docstore.Encode(m)
	if err != nil {
		return err
	}
	if err := s.db.Put(ctx, matchesCollection, m.ID, rec); err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}
	s.remember(m.Clone())
	return nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	if err := s.db.Delete(ctx, matchesCollection, id); err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	s.forget(id)
	return nil
}

func (s *store) ListByStatus(ctx context.Context, statuses ...Status) ([]Match, error) {
	seen := make(map[Status]bool)
	var all []Match
	for _, st := range statuses {
		variants := []Status{st}
		if st.Normalize() == StatusCompleted {
			variants = []Status{StatusCompleted, StatusFinished}
		}
		for _, v := range variants {
			if seen[v] {
				continue
			}
			seen[v] = true
			matches, err := s.query(ctx, docstore.Where("status", docstore.OpEqual, string(v)))
			if err != nil {
				return nil, err
			}
			all = append(all, matches...)
		}
	}
	sortBySchedule(all)
	return all, nil
}

func (s *store) ListByPlayer(ctx context.Context, playerID string) ([]Match, error) {
	matches, err := s.query(ctx, docstore.Where("playerIds", docstore.OpArrayContains, playerID))
	if err != nil {
		return nil, err
	}
	sortBySchedule(matches)
	return matches, nil
}

func (s *store) ListByOrganizer(ctx context.Context, organizerID string) ([]Match, error) {
	matches, err := s.query(ctx, docstore.Where("organizer.id", docstore.OpEqual, organizerID))
	if err != nil {
		return nil, err
	}
	sortBySchedule(matches)
	return matches, nil
}

func (s *store) RecordSubmission(ctx context.Context, matchID, evaluatorID string, evals []SubmittedEvaluation) error {
	list := make([]any, 0, len(evals))
	for _, e := range evals {
		rec, err := docstore.Encode(e)
		if err != nil {
			return err
		}
		list = append(list, map[string]any(rec))
	}
	partial := docstore.Record{
		"submittedEvaluations": map[string]any{evaluatorID: list},
		"updatedAt":            s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.update(ctx, matchID, partial); err != nil {
		return fmt.Errorf("failed to record evaluations: %w", err)
	}
	return nil
}

func (s *store) MarkEvaluationsComplete(ctx context.Context, matchID string, at time.Time) error {
	stamp := at.UTC().Format(time.RFC3339Nano)
	partial := docstore.Record{
		"evaluationsComplete":    true,
		"evaluationsCompletedAt": stamp,
		"updatedAt":              stamp,
	}
	if err := s.update(ctx, matchID, partial); err != nil {
		return fmt.Errorf("failed to mark evaluations complete: %w", err)
	}
	return nil
}

func (s *store) update(ctx context.Context, matchID string, partial docstore.Record) error {
	if err := s.db.Update(ctx, matchesCollection, matchID, partial); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			s.forget(matchID)
			return ErrMatchNotFound
		}
		return err
	}
	// Partial writes are merged by the backend; reload on next read.
	s.forget(matchID)
	return nil
}

func (s *store) query(ctx context.Context, q docstore.Query) ([]Match, error) {
	recs, err := s.db.Query(ctx, matchesCollection, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	matches := make([]Match, 0, len(recs))
	for _, rec := range recs {
		m, err := decodeMatch(rec)
		if err != nil {
			log.Error("Skipping undecodable match", "error", err)
			continue
		}
		s.remember(m.Clone())
		matches = append(matches, *m)
	}
	return matches, nil
}

func (s *store) remember(m *Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[m.ID] = cacheEntry{match: m, fetched: s.now()}
}

func (s *store) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, id)
}

func decodeMatch(rec docstore.Record) (*Match, error) {
	var m Match
	if err := docstore.Decode(rec, &m); err != nil {
		return nil, fmt.Errorf("failed to decode match: %w", err)
	}
	m.Status = m.Status.Normalize()
	if m.RegisteredPlayers == nil {
		m.RegisteredPlayers = []RegisteredPlayer{}
	}
	if len(m.PlayerIDs) != len(m.RegisteredPlayers) {
		m.syncPlayerIDs()
	}
	return &m, nil
}

func dedupeKey(m *Match) string {
	return strings.Join([]string{
		m.Organizer.ID,
		strings.ToLower(m.Title),
		m.ScheduledAt.UTC().Format(time.RFC3339),
		strings.ToLower(m.Location),
		strconv.Itoa(m.MaxPlayers),
		m.Description,
	}, "\x00")
}

func sortBySchedule(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].ScheduledAt.Equal(matches[j].ScheduledAt) {
			return matches[i].ScheduledAt.Before(matches[j].ScheduledAt)
		}
		return matches[i].ID < matches[j].ID
	})
}
