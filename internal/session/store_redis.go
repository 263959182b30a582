package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/fichas/internal/platform/apperr"
	"github.com/taibuivan/fichas/internal/platform/constants"
)

// RedisRepository stores each session as a JSON value with a sliding TTL.
// Save is a WATCH/MULTI compare-and-set on the stored version.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func (repository *RedisRepository) Create(ctx context.Context, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return apperr.Internal(err)
	}

	created, err := repository.client.SetNX(ctx, key(state.ID), payload, repository.ttl).Result()
	if err != nil {
		return unavailable("create", err)
	}
	if !created {
		return apperr.Conflict("Session already exists")
	}
	return nil
}

func (repository *RedisRepository) Get(ctx context.Context, id string) (State, error) {
	return decode(repository.client.Get(ctx, key(id)))
}

func (repository *RedisRepository) Save(ctx context.Context, state State, expectedVersion int64) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return apperr.Internal(err)
	}

	sessionKey := key(state.ID)

	err = repository.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := decode(tx.Get(ctx, sessionKey))
		if err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return ErrStale
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, sessionKey, payload, repository.ttl)
			return nil
		})
		return err
	}, sessionKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return ErrStale
	case apperr.IsAppError(err):
		return err
	}
	return unavailable("save", err)
}

func (repository *RedisRepository) Delete(ctx context.Context, id string) error {
	deleted, err := repository.client.Del(ctx, key(id)).Result()
	if err != nil {
		return unavailable("delete", err)
	}
	if deleted == 0 {
		return apperr.NotFound("Session")
	}
	return nil
}

func key(id string) string {
	return constants.RedisPrefixSession + id
}

func decode(cmd *redis.StringCmd) (State, error) {
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, apperr.NotFound("Session")
	}
	if err != nil {
		return State{}, unavailable("get", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, apperr.Internal(fmt.Errorf("session: decode: %w", err))
	}
	return state, nil
}

func unavailable(action string, err error) error {
	return apperr.StoreUnavailable(fmt.Errorf("session: %s: %w", action, err))
}
