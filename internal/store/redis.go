package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"loanlens-backend/internal/common/errors"
	"loanlens-backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// Optimistic transactions retry when another writer touches the same session
// between the WATCH and the EXEC.
const txMaxRetries = 5

// RedisStore keeps each session as one JSON document under session:<uuid>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client as a SessionStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Create assigns a fresh id and writes the session document.
func (s *RedisStore) Create(ctx context.Context, sess *models.Session) (string, error) {
	id := uuid.NewString()
	sess.ID = id

	data, err := json.Marshal(sess)
	if err != nil {
		return "", errors.NewInternalError(err)
	}
	if err := s.client.Set(ctx, sessionKey(id), data, 0).Err(); err != nil {
		return "", errors.NewDatabaseUnavailableError(err)
	}
	return id, nil
}

// Get loads a session document by id.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, errors.NewSessionNotFoundError(id)
		}
		return nil, errors.NewDatabaseUnavailableError(err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return &sess, nil
}

// ApplyPatch performs an optimistic read-modify-write of the session document.
// Field sets and message appends from one turn land in a single SET.
func (s *RedisStore) ApplyPatch(ctx context.Context, id string, patch Patch) (*models.Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	key := sessionKey(id)
	var updated *models.Session

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if stderrors.Is(err, redis.Nil) {
				return errors.NewSessionNotFoundError(id)
			}
			return err
		}

		var sess models.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return errors.NewInternalError(err)
		}

		patch.Apply(&sess, time.Now().UTC())

		out, err := json.Marshal(&sess)
		if err != nil {
			return errors.NewInternalError(err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			updated = &sess
		}
		return err
	}

	for i := 0; i < txMaxRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if stderrors.Is(err, redis.TxFailedErr) {
			continue
		}
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) {
			return nil, stdErr
		}
		return nil, errors.NewDatabaseUnavailableError(err)
	}
	return nil, errors.NewDatabaseUnavailableError(
		fmt.Errorf("session %s: patch not applied after %d attempts", id, txMaxRetries))
}

// AppendMessage appends a single transcript entry.
func (s *RedisStore) AppendMessage(ctx context.Context, id string, msg models.Message) error {
	_, err := s.ApplyPatch(ctx, id, Patch{Append: []models.Message{msg}})
	return err
}

// Ping tests store connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.NewDatabaseUnavailableError(err)
	}
	return nil
}
