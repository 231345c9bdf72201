package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/unsentapp/unsent-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS stars (
	id               TEXT PRIMARY KEY,
	text             TEXT NOT NULL,
	emotion          TEXT NOT NULL,
	emotion_score    REAL NOT NULL DEFAULT 0,
	lat              REAL NOT NULL DEFAULT 0,
	lng              REAL NOT NULL DEFAULT 0,
	constellation_id TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_stars_created_at ON stars(created_at);
CREATE INDEX IF NOT EXISTS idx_stars_emotion ON stars(emotion);
CREATE INDEX IF NOT EXISTS idx_stars_constellation ON stars(constellation_id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateStar inserts a new star record.
func (s *SQLiteStore) CreateStar(ctx context.Context, star *store.Star) (*store.Star, error) {
	query := `
		INSERT INTO stars (id, text, emotion, emotion_score, lat, lng, constellation_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	createdAt := star.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		star.ID, star.Text, star.Emotion, star.EmotionScore, star.Lat, star.Lng,
		star.ConstellationID, createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert star: %w", err)
	}

	return s.GetStar(ctx, star.ID)
}

// GetStar retrieves a star by ID.
func (s *SQLiteStore) GetStar(ctx context.Context, id string) (*store.Star, error) {
	query := `
		SELECT id, text, emotion, emotion_score, lat, lng, constellation_id, created_at
		FROM stars
		WHERE id = ?
	`
	var star store.Star
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&star.ID, &star.Text, &star.Emotion, &star.EmotionScore,
		&star.Lat, &star.Lng, &star.ConstellationID, &star.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select star: %w", err)
	}
	return &star, nil
}

// ListStars returns all stars, newest first.
func (s *SQLiteStore) ListStars(ctx context.Context) ([]store.Star, error) {
	return s.queryStars(ctx, `
		SELECT id, text, emotion, emotion_score, lat, lng, constellation_id, created_at
		FROM stars
		ORDER BY created_at DESC
	`)
}

// ListStarsByEmotion returns all stars with the given emotion tag, newest first.
func (s *SQLiteStore) ListStarsByEmotion(ctx context.Context, emotion string) ([]store.Star, error) {
	return s.queryStars(ctx, `
		SELECT id, text, emotion, emotion_score, lat, lng, constellation_id, created_at
		FROM stars
		WHERE emotion = ?
		ORDER BY created_at DESC
	`, emotion)
}

// ListStarsByConstellation returns all stars in a constellation, newest first.
func (s *SQLiteStore) ListStarsByConstellation(ctx context.Context, constellationID string) ([]store.Star, error) {
	return s.queryStars(ctx, `
		SELECT id, text, emotion, emotion_score, lat, lng, constellation_id, created_at
		FROM stars
		WHERE constellation_id = ?
		ORDER BY created_at DESC
	`, constellationID)
}

func (s *SQLiteStore) queryStars(ctx context.Context, query string, args ...any) ([]store.Star, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select stars: %w", err)
	}
	defer rows.Close()

	var stars []store.Star
	for rows.Next() {
		var star store.Star
		if err := rows.Scan(
			&star.ID, &star.Text, &star.Emotion, &star.EmotionScore,
			&star.Lat, &star.Lng, &star.ConstellationID, &star.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan star: %w", err)
		}
		stars = append(stars, star)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stars: %w", err)
	}
	return stars, nil
}

// DeleteStarsBefore removes stars created before cutoff.
func (s *SQLiteStore) DeleteStarsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM stars WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stars: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
