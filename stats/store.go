// Package stats persists game results in SQLite and answers high score,
// leaderboard and per-player aggregate queries.
package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// DefaultLeaderboardSize is the number of entries returned when no limit is given
const DefaultLeaderboardSize = 10

// GameStats aggregates one player's results for one game
type GameStats struct {
	Game          engine.GameID  `json:"game"`
	GamesPlayed   int            `json:"games_played"`
	HighScore     int            `json:"high_score"`
	TotalPlaytime int            `json:"total_playtime"`
	BestTime      *int           `json:"best_time,omitempty"`
	Counters      map[string]int `json:"counters"`
}

// PlayerStats aggregates a player's results across games
type PlayerStats struct {
	PlayerID      string        `json:"player_id"`
	TotalGames    int           `json:"total_games"`
	TotalPlaytime int           `json:"total_playtime"`
	FavoriteGame  engine.GameID `json:"favorite_game,omitempty"`
	Games         []GameStats   `json:"games"`
}

// LeaderboardEntry is one row of a per-game ranking
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	HighScore   int    `json:"high_score"`
	GamesPlayed int    `json:"games_played"`
}

// Record is a single stored result
type Record struct {
	ID              uuid.UUID      `json:"id"`
	PlayerID        string         `json:"player_id"`
	Game            engine.GameID  `json:"game"`
	Score           int            `json:"score"`
	DurationSeconds int            `json:"duration_seconds"`
	Counters        map[string]int `json:"counters"`
	CreatedAt       time.Time      `json:"created_at"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// Open opens/creates a SQLite database at dbPath and runs migrations.
func Open(dbPath string, log zerolog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&cache=shared", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes
	s := &Store{db: db, now: time.Now, log: log}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate stats database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL,
			game_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			counters TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_game_created ON results(game_id, created_at);`,

		`CREATE TABLE IF NOT EXISTS player_games (
			player_id TEXT NOT NULL,
			game_id TEXT NOT NULL,
			games_played INTEGER NOT NULL,
			high_score INTEGER NOT NULL,
			total_playtime INTEGER NOT NULL,
			best_time INTEGER,
			PRIMARY KEY(player_id, game_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_player_games_rank ON player_games(game_id, high_score DESC);`,

		`CREATE TABLE IF NOT EXISTS player_counters (
			player_id TEXT NOT NULL,
			game_id TEXT NOT NULL,
			name TEXT NOT NULL,
			total INTEGER NOT NULL,
			PRIMARY KEY(player_id, game_id, name)
		);`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Record stores a result and folds it into the player's aggregates. A
// won session (counter "won" = 1) also competes for best time.
func (s *Store) Record(ctx context.Context, playerID string, game engine.GameID, r engine.GameResult) (uuid.UUID, error) {
	id := uuid.New()
	counters, err := json.Marshal(r.Counters())
	if err != nil {
		return uuid.Nil, err
	}

	var bestTime sql.NullInt64
	if r.Counter("won") == 1 {
		bestTime = sql.NullInt64{Int64: int64(r.DurationSeconds()), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO results(id, player_id, game_id, score, duration_seconds, counters, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		id.String(), playerID, string(game), r.Score(), r.DurationSeconds(), string(counters), s.now().UTC().UnixMilli(),
	); err != nil {
		return uuid.Nil, fmt.Errorf("insert result: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO player_games(player_id, game_id, games_played, high_score, total_playtime, best_time)
		 VALUES(?, ?, 1, ?, ?, ?)
		 ON CONFLICT(player_id, game_id) DO UPDATE SET
			games_played = games_played + 1,
			high_score = MAX(high_score, excluded.high_score),
			total_playtime = total_playtime + excluded.total_playtime,
			best_time = CASE
				WHEN excluded.best_time IS NULL THEN best_time
				WHEN best_time IS NULL OR excluded.best_time < best_time THEN excluded.best_time
				ELSE best_time
			END`,
		playerID, string(game), r.Score(), r.DurationSeconds(), bestTime,
	); err != nil {
		return uuid.Nil, fmt.Errorf("update player stats: %w", err)
	}

	for _, name := range r.CounterNames() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO player_counters(player_id, game_id, name, total) VALUES(?, ?, ?, ?)
			 ON CONFLICT(player_id, game_id, name) DO UPDATE SET total = total + excluded.total`,
			playerID, string(game), name, r.Counter(name),
		); err != nil {
			return uuid.Nil, fmt.Errorf("update counter %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// SinkFor returns a StatsSink that records results for playerID
func (s *Store) SinkFor(playerID string) engine.StatsSink {
	return engine.SinkFunc(func(ctx context.Context, game engine.GameID, r engine.GameResult) error {
		id, err := s.Record(ctx, playerID, game, r)
		if err != nil {
			return err
		}
		s.log.Info().
			Str("result", id.String()).
			Str("player", playerID).
			Str("game", string(game)).
			Int("score", r.Score()).
			Msg("result recorded")
		return nil
	})
}

// HighScore returns the player's best score for game, zero if unplayed
func (s *Store) HighScore(ctx context.Context, playerID string, game engine.GameID) (int, error) {
	var hs int
	err := s.db.QueryRowContext(ctx,
		`SELECT high_score FROM player_games WHERE player_id = ? AND game_id = ?`,
		playerID, string(game),
	).Scan(&hs)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return hs, err
}

// Leaderboard returns the top players for game by high score
func (s *Store) Leaderboard(ctx context.Context, game engine.GameID, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, high_score, games_played FROM player_games
		 WHERE game_id = ?
		 ORDER BY high_score DESC, games_played ASC, player_id ASC
		 LIMIT ?`,
		string(game), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LeaderboardEntry{}
	for rows.Next() {
		e := LeaderboardEntry{Rank: len(out) + 1}
		if err := rows.Scan(&e.PlayerID, &e.HighScore, &e.GamesPlayed); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PlayerStats returns every game aggregate for a player. Favorite game
// is the one with the most playtime.
func (s *Store) PlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, games_played, high_score, total_playtime, best_time
		 FROM player_games WHERE player_id = ? ORDER BY game_id`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ps := &PlayerStats{PlayerID: playerID, Games: []GameStats{}}
	favoriteTime := -1
	for rows.Next() {
		var gs GameStats
		var game string
		var best sql.NullInt64
		if err := rows.Scan(&game, &gs.GamesPlayed, &gs.HighScore, &gs.TotalPlaytime, &best); err != nil {
			return nil, err
		}
		gs.Game = engine.GameID(game)
		if best.Valid {
			b := int(best.Int64)
			gs.BestTime = &b
		}
		ps.TotalGames += gs.GamesPlayed
		ps.TotalPlaytime += gs.TotalPlaytime
		if gs.TotalPlaytime > favoriteTime {
			favoriteTime = gs.TotalPlaytime
			ps.FavoriteGame = gs.Game
		}
		ps.Games = append(ps.Games, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range ps.Games {
		counters, err := s.counters(ctx, playerID, ps.Games[i].Game)
		if err != nil {
			return nil, err
		}
		ps.Games[i].Counters = counters
	}
	return ps, nil
}

func (s *Store) counters(ctx context.Context, playerID string, game engine.GameID) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, total FROM player_counters WHERE player_id = ? AND game_id = ?`,
		playerID, string(game),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var name string
		var total int
		if err := rows.Scan(&name, &total); err != nil {
			return nil, err
		}
		out[name] = total
	}
	return out, rows.Err()
}

// Results returns stored results oldest first. An empty game matches all.
func (s *Store) Results(ctx context.Context, game engine.GameID, since time.Time) ([]Record, error) {
	q := `SELECT id, player_id, game_id, score, duration_seconds, counters, created_at
		FROM results WHERE created_at >= ?`
	args := []any{since.UTC().UnixMilli()}
	if game != "" {
		q += ` AND game_id = ?`
		args = append(args, string(game))
	}
	q += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			id, g    string
			counters string
			created  int64
		)
		if err := rows.Scan(&id, &r.PlayerID, &g, &r.Score, &r.DurationSeconds, &counters, &created); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad result id %q: %w", id, err)
		}
		r.Game = engine.GameID(g)
		r.CreatedAt = time.UnixMilli(created).UTC()
		if err := json.Unmarshal([]byte(counters), &r.Counters); err != nil {
			return nil, fmt.Errorf("bad counters for %s: %w", id, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
