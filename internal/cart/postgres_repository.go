package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type snapshotRow struct {
	SessionID string    `db:"session_id"`
	Payload   string    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PostgresRepository keeps the latest cart of each session in cart_snapshots.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context, sessionID string) (Cart, error) {
	var row snapshotRow

	query := `SELECT session_id, payload, updated_at FROM cart_snapshots WHERE session_id = $1`
	if err := r.db.GetContext(ctx, &row, query, sessionKey(sessionID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("repository: failed to select cart snapshot")
		return Cart{}, &PersistenceError{Op: "load", Session: sessionID, Err: err}
	}

	return Decode([]byte(row.Payload))
}

func (r *PostgresRepository) Save(ctx context.Context, sessionID string, c Cart) error {
	data, err := Encode(c)
	if err != nil {
		return &PersistenceError{Op: "save", Session: sessionID, Err: err}
	}

	row := snapshotRow{
		SessionID: sessionKey(sessionID),
		Payload:   string(data),
		UpdatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO cart_snapshots (session_id, payload, updated_at)
		VALUES (:session_id, :payload, :updated_at)
		ON CONFLICT (session_id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("repository: failed to upsert cart snapshot")
		return &PersistenceError{Op: "save", Session: sessionID, Err: err}
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, sessionID string) error {
	query := `DELETE FROM cart_snapshots WHERE session_id = $1`
	if _, err := r.db.ExecContext(ctx, query, sessionKey(sessionID)); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("repository: failed to delete cart snapshot")
		return &PersistenceError{Op: "delete", Session: sessionID, Err: err}
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
