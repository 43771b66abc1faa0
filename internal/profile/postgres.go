package profile

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresStore persists profiles in PostgreSQL. Counters are updated
// with upserts, so writes are durable immediately and Flush is a no-op.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(config DatabaseConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID int64) (*Profile, error) {
	query := `
		SELECT user_id, username, messages, roasts, first_seen
		FROM profiles
		WHERE user_id = $1`

	p := &Profile{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Username,
		&p.Messages,
		&p.Roasts,
		&p.FirstSeen,
	)
	if err == sql.ErrNoRows {
		return &Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying profile: %w", err)
	}

	return p, nil
}

func (s *PostgresStore) IncrementMessages(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO profiles (user_id, username, messages)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET messages = profiles.messages + 1,
		    username = EXCLUDED.username`

	if _, err := s.db.ExecContext(ctx, query, userID, username); err != nil {
		return fmt.Errorf("error incrementing messages: %w", err)
	}
	return nil
}

func (s *PostgresStore) IncrementRoasts(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO profiles (user_id, roasts)
		VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET roasts = profiles.roasts + 1`

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("error incrementing roasts: %w", err)
	}
	return nil
}

func (s *PostgresStore) Flush(ctx context.Context) error {
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
