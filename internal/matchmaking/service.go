package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mauv0809/pitchside/internal/identity"
	"github.com/mauv0809/pitchside/internal/metrics"
	"github.com/mauv0809/pitchside/internal/pubsub"
	"github.com/mauv0809/pitchside/internal/roster"
)

// Options wires a Service.
type Options struct {
	Store        Store
	Roster       roster.Store
	Identity     identity.Provider
	Metrics      metrics.Metrics
	PubSub       pubsub.PubSubClient
	Topic        string
	DefaultGroup string
}

// service runs the match lifecycle. Read-modify-write cycles are serialised
// within one process; separate processes can still race past the capacity
// check, as there is no conditional write on the store.
type service struct {
	store        Store
	roster       roster.Store
	identity     identity.Provider
	metrics      metrics.Metrics
	pubsub       pubsub.PubSubClient
	topic        string
	defaultGroup string
	validate     *validator.Validate
	now          func() time.Time
	newID        func() string

	mu sync.Mutex
}

func NewService(opts Options) Service {
	return &service{
		store:        opts.Store,
		roster:       opts.Roster,
		identity:     opts.Identity,
		metrics:      opts.Metrics,
		pubsub:       opts.PubSub,
		topic:        opts.Topic,
		defaultGroup: opts.DefaultGroup,
		validate:     validator.New(),
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Match, error) {
	actor := s.identity.CurrentIdentity(ctx)
	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	if in.MaxPlayers == 0 {
		in.MaxPlayers = DefaultMaxPlayers
	}
	if in.GroupID == "" {
		in.GroupID = s.defaultGroup
	}
	if err := s.validate.Struct(in); err != nil {
		log.Debug("Rejected match input", "error", err)
		return nil, fmt.Errorf("%w: %s", ErrInvalidMatch, err)
	}

	organizer := Organizer{ID: actor.ID, Name: actor.DisplayName, Email: actor.Email}
	m := NewMatch(s.newID(), in, organizer, s.now())
	created, err := s.store.Create(ctx, m)
	if err != nil {
		return nil, s.storeFailure("create match", err)
	}
	if created.ID == m.ID {
		s.metrics.IncMatchesCreated()
		log.Info("Created match", "matchID", created.ID, "title", created.Title, "organizer", organizer.ID)
	}
	return created, nil
}

func (s *service) Join(ctx context.Context, matchID string) (*Match, error) {
	actor := s.identity.CurrentIdentity(ctx)
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.IsRegistered(actor.ID) {
		log.Debug("Player already registered, treating join as success", "matchID", matchID, "playerID", actor.ID)
		return m, nil
	}

	// A rejected join creates no roster profile.
	if err := CheckJoin(m, actor.ID); err != nil {
		log.Debug("Join rejected", "matchID", matchID, "playerID", actor.ID, "error", err)
		return nil, err
	}

	group := m.GroupID
	if group == "" {
		group = s.defaultGroup
	}
	player, err := s.roster.EnsurePlayerForIdentity(ctx, *actor, group)
	if err != nil {
		return nil, s.storeFailure("load player profile", err)
	}

	next, tr, err := ApplyJoin(m, SnapshotPlayer(*player, true, s.now()), s.now())
	if errors.Is(err, ErrAlreadyRegistered) {
		return next, nil
	}
	if err != nil {
		log.Debug("Join rejected", "matchID", matchID, "playerID", player.ID, "error", err)
		return nil, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return nil, s.storeFailure("save match", err)
	}

	s.metrics.IncPlayersJoined()
	log.Info("Joined match", "matchID", matchID, "playerID", player.ID, "count", len(next.RegisteredPlayers), "status", next.Status)
	s.afterTransition(next, tr)
	return next, nil
}

func (s *service) Leave(ctx context.Context, matchID string) (*Match, error) {
	actor := s.identity.CurrentIdentity(ctx)
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	next, tr, err := ApplyLeave(m, actor.ID, s.now())
	if errors.Is(err, ErrNotRegistered) {
		return next, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return nil, s.storeFailure("save match", err)
	}
	log.Info("Left match", "matchID", matchID, "playerID", actor.ID, "from", tr.From, "to", tr.To)
	return next, nil
}

func (s *service) InviteGuests(ctx context.Context, matchID string, names []string) (*Match, error) {
	actor := s.identity.CurrentIdentity(ctx)
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	next, tr, err := ApplyInvite(m, names, s.newID, s.now())
	if err != nil {
		log.Debug("Invite rejected", "matchID", matchID, "error", err)
		return nil, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return nil, s.storeFailure("save match", err)
	}
	log.Info("Invited guests", "matchID", matchID, "by", actor.ID, "guests", len(next.RegisteredPlayers)-len(m.RegisteredPlayers))
	s.afterTransition(next, tr)
	return next, nil
}

func (s *service) Finalize(ctx context.Context, matchID string) (*Match, error) {
	actor := s.identity.CurrentIdentity(ctx)
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	next, tr, err := ApplyFinalize(m, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	if !tr.Finalized {
		return next, nil
	}
	if err := s.store.Save(ctx, next); err != nil {
		return nil, s.storeFailure("save match", err)
	}
	log.Info("Finalized match", "matchID", matchID, "by", actor.ID)
	s.afterTransition(next, tr)
	return next, nil
}

func (s *service) Delete(ctx context.Context, matchID string) error {
	actor := s.identity.CurrentIdentity(ctx)
	if actor == nil {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return err
	}
	if !m.IsOrganizer(actor.ID) {
		return ErrNotOrganizer
	}
	if err := s.store.Delete(ctx, matchID); err != nil {
		return s.storeFailure("delete match", err)
	}
	log.Info("Deleted match", "matchID", matchID, "by", actor.ID)
	s.publish(pubsub.EventMatchDeleted, m)
	return nil
}

// ListOpenMatches returns matches still taking sign-ups or waiting to be
// played, soonest first.
func (s *service) ListOpenMatches(ctx context.Context) ([]Match, error) {
	matches, err := s.store.ListByStatus(ctx, StatusOpen, StatusFull)
	if err != nil {
		return nil, s.storeFailure("list open matches", err)
	}
	return nonNil(matches), nil
}

// ListUserMatches returns matches the user plays in or organizes, most recent
// first.
func (s *service) ListUserMatches(ctx context.Context, userID string) ([]Match, error) {
	playing, err := s.store.ListByPlayer(ctx, userID)
	if err != nil {
		return nil, s.storeFailure("list user matches", err)
	}
	organizing, err := s.store.ListByOrganizer(ctx, userID)
	if err != nil {
		return nil, s.storeFailure("list user matches", err)
	}

	seen := make(map[string]bool, len(playing)+len(organizing))
	var all []Match
	for _, m := range append(playing, organizing...) {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		all = append(all, m)
	}
	sortBySchedule(all)
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return nonNil(all), nil
}

func (s *service) GetMatch(ctx context.Context, id string) (*Match, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeFailure("get match", err)
	}
	return m, nil
}

// GetTeams returns nil when the match is missing or teams were never generated.
func (s *service) GetTeams(ctx context.Context, matchID string) (*Teams, error) {
	m, err := s.GetMatch(ctx, matchID)
	if err != nil || m == nil {
		return nil, err
	}
	return m.Teams, nil
}

func (s *service) load(ctx context.Context, matchID string) (*Match, error) {
	m, err := s.store.Get(ctx, matchID)
	if err != nil {
		return nil, s.storeFailure("get match", err)
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

func (s *service) afterTransition(m *Match, tr Transition) {
	if tr.TeamsGenerated && m.Teams != nil {
		s.metrics.IncTeamsGenerated()
		s.metrics.ObserveBalanceDiff(float64(m.Teams.BalanceDiff))
		log.Info("Generated teams", "matchID", m.ID, "team1", len(m.Teams.Team1.Players), "team2", len(m.Teams.Team2.Players), "balanceDiff", m.Teams.BalanceDiff)
		s.publish(pubsub.EventTeamsGenerated, m)
	}
	if tr.Finalized {
		s.publish(pubsub.EventMatchFinalized, m)
	}
}

// publish is best effort; a lost event only costs a notification.
func (s *service) publish(t pubsub.EventType, m *Match) {
	if s.pubsub == nil || s.topic == "" {
		return
	}
	event := pubsub.MatchEvent{Type: t, MatchID: m.ID, Title: m.Title, OrganizerID: m.Organizer.ID, At: s.now()}
	if err := s.pubsub.SendMessage(s.topic, event); err != nil {
		log.Warn("Failed to publish match event", "type", t, "matchID", m.ID, "error", err)
	}
}

func (s *service) storeFailure(action string, err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		s.metrics.IncStoreErrors()
		log.Error("Storage failure", "action", action, "error", err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func nonNil(matches []Match) []Match {
	if matches == nil {
		return []Match{}
	}
	return matches
}
