// internal/history/store.go
//
// Durable match history backed by SQLite through sqlx.
// Responsibilities:
//   - Record finished and aborted match results (with seed and restart generation).
//   - Bump per-user stats for decided matches inside the same transaction.
//   - Recent results for a user and the global leaderboard.
//
// Schema lives in assets/sql and is applied by the server at startup.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Result reasons.
const (
	ReasonWin     = "win"
	ReasonDraw    = "draw"
	ReasonAborted = "aborted"
)

// Result is one row of match_results.
type Result struct {
	ID          int64  `db:"id" json:"id"`
	MatchID     string `db:"match_id" json:"matchId"`
	Generation  int    `db:"generation" json:"generation"`
	Seed        int64  `db:"seed" json:"seed"`
	WhiteUser   string `db:"white_user" json:"whiteUser,omitempty"`
	BlueUser    string `db:"blue_user" json:"blueUser,omitempty"`
	Winner      string `db:"winner" json:"winner"` // "white" | "blue" | "" for draw/aborted
	Reason      string `db:"reason" json:"reason"`
	WhitePoints int    `db:"white_points" json:"whitePoints"`
	BluePoints  int    `db:"blue_points" json:"bluePoints"`
	FinishedAt  string `db:"finished_at" json:"finishedAt"`
}

// Decided reports whether the result counts toward player stats.
func (r Result) Decided() bool { return r.Reason == ReasonWin || r.Reason == ReasonDraw }

// LBRow is one leaderboard entry.
type LBRow struct {
	Username    string `db:"username" json:"username"`
	Wins        int    `db:"wins" json:"wins"`
	GamesPlayed int    `db:"games_played" json:"gamesPlayed"`
	Streak      int    `db:"streak" json:"streak"`
}

// Store wraps the database handle.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore wraps an open sqlite3 handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "sqlite3"), now: time.Now}
}

// RecordResult inserts r and, for decided matches, bumps stats of the
// registered players involved.
func (s *Store) RecordResult(ctx context.Context, r Result) error {
	if r.FinishedAt == "" {
		r.FinishedAt = s.now().UTC().Format(time.RFC3339)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO match_results
            (match_id, generation, seed, white_user, blue_user, winner, reason,
             white_points, blue_points, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatchID, r.Generation, r.Seed, nullable(r.WhiteUser), nullable(r.BlueUser),
		r.Winner, r.Reason, r.WhitePoints, r.BluePoints, r.FinishedAt,
	); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	if r.Decided() {
		for color, uid := range map[string]string{"white": r.WhiteUser, "blue": r.BlueUser} {
			if uid == "" {
				continue
			}
			if err := bumpStats(ctx, tx, uid, r.Winner == color); err != nil {
				return fmt.Errorf("bump stats %s: %w", uid, err)
			}
		}
	}
	return tx.Commit()
}

// Recent returns the latest results involving userID, newest first.
// Default limit is 50 if not specified.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []Result{}
	err := s.db.SelectContext(ctx, &out, `
        SELECT id, match_id, generation, seed,
               COALESCE(white_user, '') AS white_user, COALESCE(blue_user, '') AS blue_user,
               winner, reason, white_points, blue_points, finished_at
        FROM match_results
        WHERE white_user = ? OR blue_user = ?
        ORDER BY finished_at DESC, id DESC
        LIMIT ?`, userID, userID, limit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Leaderboard returns players with at least one decided match.
// Ordered by wins DESC, then games played ASC, then username.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	out := make([]LBRow, 0, limit)
	err := s.db.SelectContext(ctx, &out, `
        SELECT username, wins, games_played, streak
        FROM users
        WHERE games_played > 0
        ORDER BY wins DESC, games_played ASC, username ASC
        LIMIT ?`, limit)
	return out, err
}

// bumpStats increments games played; updates wins and streak based on result (within tx).
func bumpStats(ctx context.Context, tx *sqlx.Tx, userID string, won bool) error {
	var u struct {
		GamesPlayed int `db:"games_played"`
		Wins        int `db:"wins"`
		Streak      int `db:"streak"`
	}
	if err := tx.GetContext(ctx, &u, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID); err != nil {
		return err
	}
	u.GamesPlayed++
	if won {
		u.Wins++
		u.Streak++
	} else {
		u.Streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`,
		u.GamesPlayed, u.Wins, u.Streak, userID)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
