package persist

import (
	"context"
	"fmt"
	"time"
)

// MatchResult is one player's telemetry for a finished session. Results
// are write-only: the simulation never reads them back.
type MatchResult struct {
	PlayerName  string
	WaveReached int
	Kills       int
	DamageDealt int
	DamageTaken int
	JoinedAt    time.Time
	LeftAt      time.Time
}

// MatchRepo records match results.
type MatchRepo struct {
	db *DB
}

func NewMatchRepo(db *DB) *MatchRepo {
	return &MatchRepo{db: db}
}

func (r *MatchRepo) Save(ctx context.Context, res MatchResult) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO match_results
			(player_name, wave_reached, kills, damage_dealt, damage_taken, joined_at, left_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.PlayerName, res.WaveReached, res.Kills,
		res.DamageDealt, res.DamageTaken, res.JoinedAt, res.LeftAt,
	)
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	return nil
}
