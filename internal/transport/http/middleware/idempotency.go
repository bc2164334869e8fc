package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"paydesk/internal/platform/querier"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// IdempotencyStore replays the first response stored for a (user, key,
// endpoint) triple. Entries older than the TTL are treated as absent and may
// be reused with a different payload.
type IdempotencyStore struct {
	db  querier.Querier
	ttl time.Duration
	now func() time.Time
}

func NewIdempotencyStore(db querier.Querier, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{db: db, ttl: ttl, now: time.Now}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) usable() bool {
	return s != nil && s.db != nil
}

func (s *IdempotencyStore) cutoff() time.Time {
	return s.now().Add(-s.ttl)
}

// Check returns the stored response when the key was already used with the
// same payload, and ErrIdempotencyConflict when it was used with another.
func (s *IdempotencyStore) Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	if !s.usable() {
		return nil, false, nil
	}
	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
		SELECT request_hash, response_json
		FROM idempotency_keys
		WHERE user_id = $1 AND key = $2 AND endpoint = $3 AND created_at > $4
	`, userID, key, endpoint, s.cutoff()).Scan(&storedHash, &stored)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case storedHash != requestHash:
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

// Save records response under the key. An expired entry is replaced; a live
// entry with a different payload is a conflict.
func (s *IdempotencyStore) Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	if !s.usable() {
		return nil
	}
	tag, err := s.db.Exec(ctx, `
		INSERT INTO idempotency_keys (user_id, key, endpoint, request_hash, response_json)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, key, endpoint)
		DO UPDATE SET request_hash = EXCLUDED.request_hash,
			response_json = EXCLUDED.response_json,
			created_at = now()
		WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
			OR idempotency_keys.created_at <= $6
	`, userID, key, endpoint, requestHash, response, s.cutoff())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

// PurgeExpired deletes entries past the TTL and reports how many went.
func (s *IdempotencyStore) PurgeExpired(ctx context.Context) (int64, error) {
	if !s.usable() {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at <= $1`, s.cutoff())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
