package roster

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mauv0809/pitchside/internal/docstore"
	"github.com/mauv0809/pitchside/internal/identity"
	"github.com/mauv0809/pitchside/internal/storage"
)

type store struct {
	db       docstore.Store
	uploader storage.FileUploader
	validate *validator.Validate
	now      func() time.Time
	mu       sync.Mutex
}

// New creates a roster repository. uploader may be nil, in which case photos are
// kept inline as base64 data URLs.
func New(db docstore.Store, uploader storage.FileUploader) Store {
	return &store{
		db:       db,
		uploader: uploader,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *store) CreatePlayer(ctx context.Context, p Player) (*Player, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.NameKey = nameKey(p.Name)
	if p.Attributes == (Attributes{}) {
		p.Attributes = DefaultAttributes()
	}
	if p.Position == "" {
		p.Position = Midfielder
	}
	if err := s.validatePlayer(p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findDuplicate(ctx, p)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Debug("Player already exists, returning existing", "playerID", existing.ID, "name", existing.Name)
		return existing, nil
	}

	now := s.now()
	// Linked players use the auth-issued id so match registrations and
	// evaluations can refer to the identity directly.
	p.ID = p.UserID
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.OVR = ComputeOVR(p.Position, p.Attributes)
	p.CreatedAt = now
	p.UpdatedAt = now
	p.LastEvaluation = nil
	p.EvaluationHistory = nil
	if p.Photo, err = s.storePhoto(ctx, p.ID, p.Photo); err != nil {
		return nil, err
	}
	if err := s.put(ctx, p); err != nil {
		return nil, err
	}
	log.Info("Created player", "playerID", p.ID, "name", p.Name, "ovr", p.OVR)
	return &p, nil
}

func (s *store) GetPlayer(ctx context.Context, id string) (*Player, error) {
	rec, err := s.db.Get(ctx, playersCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	var p Player
	if err := docstore.Decode(rec, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *store) GetPlayerByUserID(ctx context.Context, userID string) (*Player, error) {
	if userID == "" {
		return nil, nil
	}
	return s.queryOne(ctx, docstore.Where("userId", docstore.OpEqual, userID))
}

// UpdatePlayer replaces the editable fields of an existing player. OVR is
// recomputed when attributes or position change; otherwise the given OVR is
// kept, clamped to [1,99].
func (s *store) UpdatePlayer(ctx context.Context, p Player) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.GetPlayer(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrPlayerNotFound
	}

	updated := *current
	if name := strings.TrimSpace(p.Name); name != "" {
		updated.Name = name
		updated.NameKey = nameKey(name)
	}
	if p.Position != "" {
		updated.Position = p.Position
	}
	if p.Attributes != (Attributes{}) {
		updated.Attributes = p.Attributes
	}
	if err := s.validatePlayer(updated); err != nil {
		return nil, err
	}
	if updated.Attributes != current.Attributes || updated.Position != current.Position {
		updated.OVR = ComputeOVR(updated.Position, updated.Attributes)
	} else if p.OVR != 0 {
		updated.OVR = ClampOVR(p.OVR)
	}
	if p.LastEvaluation != nil {
		updated.LastEvaluation = p.LastEvaluation
	}
	if p.Photo != "" && p.Photo != current.Photo {
		if updated.Photo, err = s.storePhoto(ctx, updated.ID, p.Photo); err != nil {
			return nil, err
		}
	}
	updated.UpdatedAt = s.now()

	if err := s.put(ctx, updated); err != nil {
		return nil, err
	}
	log.Debug("Updated player", "playerID", updated.ID, "ovr", updated.OVR)
	return &updated, nil
}

// UpdateRating writes a new OVR and records the evaluation that produced it.
// History entries for other matches are kept.
func (s *store) UpdateRating(ctx context.Context, id string, ovr int, record EvaluationRecord) error {
	rec, err := docstore.Encode(struct {
		OVR               int                         `json:"ovr"`
		LastEvaluation    EvaluationRecord            `json:"lastEvaluation"`
		EvaluationHistory map[string]EvaluationRecord `json:"evaluationHistory"`
		UpdatedAt         time.Time                   `json:"updatedAt"`
	}{ClampOVR(ovr), record, map[string]EvaluationRecord{record.MatchID: record}, s.now()})
	if err != nil {
		return err
	}
	if err := s.db.Update(ctx, playersCollection, id, rec); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to update player rating: %w", err)
	}
	return nil
}

func (s *store) DeletePlayer(ctx context.Context, id string) error {
	p, err := s.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPlayerNotFound
	}
	if err := s.db.Delete(ctx, playersCollection, id); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if s.uploader != nil && strings.HasPrefix(p.Photo, "http") {
		if err := s.uploader.Delete(ctx, photoKey(id)); err != nil {
			log.Warn("Failed to delete player photo", "playerID", id, "error", err)
		}
	}
	log.Info("Deleted player", "playerID", id)
	return nil
}

// ListPlayers returns a group's players, highest OVR first.
func (s *store) ListPlayers(ctx context.Context, groupID string) ([]Player, error) {
	recs, err := s.db.Query(ctx, playersCollection, docstore.Where("groupId", docstore.OpEqual, groupID))
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	players := make([]Player, 0, len(recs))
	for _, rec := range recs {
		var p Player
		if err := docstore.Decode(rec, &p); err != nil {
			log.Error("Skipping undecodable player", "error", err)
			continue
		}
		players = append(players, p)
	}
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].OVR != players[j].OVR {
			return players[i].OVR > players[j].OVR
		}
		return players[i].NameKey < players[j].NameKey
	})
	return players, nil
}

// EnsurePlayerForIdentity returns the player linked to the identity, creating
// a default profile the first time.
func (s *store) EnsurePlayerForIdentity(ctx context.Context, id identity.Identity, groupID string) (*Player, error) {
	existing, err := s.GetPlayerByUserID(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	name := id.DisplayName
	if name == "" {
		name = strings.Split(id.Email, "@")[0]
	}
	return s.CreatePlayer(ctx, Player{
		Name:       name,
		Position:   Midfielder,
		Attributes: DefaultAttributes(),
		UserID:     id.ID,
		GroupID:    groupID,
	})
}

func (s *store) validatePlayer(p Player) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPlayer, err)
	}
	if len(p.Photo) > MaxPhotoBytes {
		return ErrPhotoTooLarge
	}
	return nil
}

func (s *store) findDuplicate(ctx context.Context, p Player) (*Player, error) {
	if p.UserID != "" {
		return s.GetPlayerByUserID(ctx, p.UserID)
	}
	return s.queryOne(ctx, docstore.Query{Filters: []docstore.Filter{
		{Field: "groupId", Op: docstore.OpEqual, Value: p.GroupID},
		{Field: "nameKey", Op: docstore.OpEqual, Value: p.NameKey},
	}})
}

func (s *store) queryOne(ctx context.Context, q docstore.Query) (*Player, error) {
	q.Limit = 1
	recs, err := s.db.Query(ctx, playersCollection, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	var p Player
	if err := docstore.Decode(recs[0], &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *store) put(ctx context.Context, p Player) error {
	rec, err := docstore.Encode(p)
	if err != nil {
		return err
	}
	if err := s.db.Put(ctx, playersCollection, p.ID, rec); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

// storePhoto uploads a data URL photo when an uploader is configured and
// returns the value to keep on the player document.
func (s *store) storePhoto(ctx context.Context, playerID, photo string) (string, error) {
	if len(photo) > MaxPhotoBytes {
		return "", ErrPhotoTooLarge
	}
	if s.uploader == nil || !strings.HasPrefix(photo, "data:") {
		return photo, nil
	}
	contentType, data, err := parseDataURL(photo)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidPlayer, err)
	}
	res, err := s.uploader.Upload(ctx, photoKey(playerID), contentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return res.Location, nil
}

func parseDataURL(photo string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(photo, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, fmt.Errorf("photo must be a base64 data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode photo: %w", err)
	}
	return strings.TrimSuffix(header, ";base64"), data, nil
}

func photoKey(playerID string) string {
	return "players/" + playerID
}

func nameKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
