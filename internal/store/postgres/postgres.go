package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/shake819/remind-api/internal/model"
	"github.com/shake819/remind-api/internal/store"
	apperrors "github.com/shake819/remind-api/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS reminder_events (
	id         UUID PRIMARY KEY,
	date       TEXT NOT NULL,
	message    TEXT NOT NULL,
	notified_7 BOOLEAN NOT NULL DEFAULT FALSE,
	notified_3 BOOLEAN NOT NULL DEFAULT FALSE,
	notified_0 BOOLEAN NOT NULL DEFAULT FALSE
)`

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// Store persists each event as a row. The whole set is replaced inside a
// transaction on commit, so the transaction is the atomicity boundary and no
// separate version token is needed.
type Store struct {
	db *sqlx.DB
}

func NewDB(cfg Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func New(db *sqlx.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	query := `
		SELECT id, date, message, notified_7, notified_3, notified_0
		FROM reminder_events
		ORDER BY date ASC
	`
	var events model.EventSet
	if err := s.db.SelectContext(ctx, &events, query); err != nil {
		return store.Snapshot{}, apperrors.StoreUnavailable(fmt.Errorf("failed to load events: %w", err))
	}
	return store.Snapshot{Events: events}, nil
}

func (s *Store) Commit(ctx context.Context, snap store.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_events`); err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to clear events: %w", err))
	}

	insert := `
		INSERT INTO reminder_events (id, date, message, notified_7, notified_3, notified_0)
		VALUES (:id, :date, :message, :notified_7, :notified_3, :notified_0)
	`
	for i := range snap.Events {
		if _, err := tx.NamedExecContext(ctx, insert, &snap.Events[i]); err != nil {
			return apperrors.StoreUnavailable(fmt.Errorf("failed to insert event: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}
