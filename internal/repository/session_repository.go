package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"bank-portal/internal/domain"
	"bank-portal/internal/errors"
)

type sessionRepository struct {
	store *Store
}

// NewSessionRepository stores client state as rows of the client_state table.
func NewSessionRepository(store *Store) domain.SessionStore {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Get(key string) (string, bool, error) {
	query := `SELECT value FROM client_state WHERE key = $1`

	var value string
	err := r.store.executor.QueryRow(query, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		r.store.logger.Error("Failed to read client state", "key", key, "error", err)
		return "", false, errors.NewAppError(errors.InternalError, "failed to read client state").Wrap(err)
	}

	return value, true, nil
}

// Set upserts all entries in one transaction.
func (r *sessionRepository) Set(entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	return r.store.WithTransaction(func(tx *Store) error {
		now := time.Now()
		for key, value := range entries {
			if _, err := tx.executor.Exec(query, key, value, now); err != nil {
				return r.wrapWriteError("failed to write client state", key, err)
			}
		}
		return nil
	})
}

func (r *sessionRepository) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := `DELETE FROM client_state WHERE key = ANY($1)`

	result, err := r.store.executor.Exec(query, pq.Array(keys))
	if err != nil {
		return r.wrapWriteError("failed to delete client state", "", err)
	}

	if rows, err := result.RowsAffected(); err == nil {
		r.store.logger.Info("Client state deleted", "keys", keys, "rows", rows)
	}
	return nil
}

func (r *sessionRepository) wrapWriteError(message, key string, err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		r.store.logger.Error(message, "key", key, "pq_code", string(pqErr.Code), "error", err)
		return errors.NewAppError(errors.InternalError, message).Wrap(err).WithDetails(pqErr.Code.Name() + ": " + pqErr.Message)
	}
	r.store.logger.Error(message, "key", key, "error", err)
	return errors.NewAppError(errors.InternalError, message).Wrap(err)
}
