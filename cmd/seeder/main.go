package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/pitchside/internal/database"
	"github.com/mauv0809/pitchside/internal/docstore"
	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/roster"
)

const (
	numPlayers   = 10
	joinedPlayer = 8
)

var positions = []roster.Position{
	roster.Goalkeeper, roster.Defender, roster.Defender, roster.Defender,
	roster.Midfielder, roster.Midfielder, roster.Midfielder,
	roster.Forward, roster.Forward, roster.Forward,
}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	config := map[string]string{
		"DB_NAME":           "pitchside.db",
		"DEFAULT_GROUP":     "default",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()
	ctx := context.Background()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()
	docs := docstore.NewSQLStore(db)
	players := roster.New(docs, nil)
	group := cfg["DEFAULT_GROUP"]

	startTime := time.Now()
	seeded := make([]roster.Player, 0, numPlayers)
	for i := 0; i < numPlayers; i++ {
		p, err := players.CreatePlayer(ctx, roster.Player{
			Name:       fmt.Sprintf("Seeder Player %c", 'A'+i),
			GroupID:    group,
			Position:   positions[i],
			Attributes: randomAttributes(),
		})
		if err != nil {
			log.Fatalf("Failed to create player %d: %s", i, err)
		}
		seeded = append(seeded, *p)
	}
	log.Info("Ensured seed players exist.", "count", len(seeded))

	store := matchmaking.NewStore(docs, 0)
	seedMatch(ctx, store, "Seeded kickabout", seeded, joinedPlayer, group)
	// A full match shows generated teams and evaluation assignments.
	seedMatch(ctx, store, "Seeded five-a-side", seeded, numPlayers, group)

	log.Info("Successfully seeded the database.", "duration", time.Since(startTime))
}

func seedMatch(ctx context.Context, store matchmaking.Store, title string, players []roster.Player, joined int, group string) {
	now := time.Now().UTC()
	organizer := players[0]
	m := matchmaking.NewMatch(uuid.NewString(), matchmaking.CreateInput{
		Title:       title,
		ScheduledAt: now.Add(72 * time.Hour),
		Location:    "Seeded Pitch",
		MaxPlayers:  matchmaking.DefaultMaxPlayers,
		GroupID:     group,
	}, matchmaking.Organizer{ID: organizer.ID, Name: organizer.Name}, now)

	var err error
	for _, p := range players[:joined] {
		m, _, err = matchmaking.ApplyJoin(m, matchmaking.SnapshotPlayer(p, false, now), now)
		if err != nil {
			log.Fatalf("Failed to register %s: %s", p.Name, err)
		}
	}
	created, err := store.Create(ctx, m)
	if err != nil {
		log.Fatalf("Failed to create match: %s", err)
	}
	log.Info("Created match", "matchID", created.ID, "title", created.Title, "status", created.Status, "registered", len(created.RegisteredPlayers))
}

func randomAttributes() roster.Attributes {
	r := func() int { return 45 + rand.Intn(45) }
	return roster.Attributes{
		Pace:      r(),
		Shooting:  r(),
		Passing:   r(),
		Dribbling: r(),
		Defense:   r(),
		Physical:  r(),
	}
}
