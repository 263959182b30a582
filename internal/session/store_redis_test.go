package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fichas/internal/platform/apperr"
	"github.com/taibuivan/fichas/internal/platform/constants"
	"github.com/taibuivan/fichas/internal/session"
)

func newRedisRepository(t *testing.T) (*session.RedisRepository, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewRedisRepository(client, time.Hour), server, client
}

/*
TestRedisRepository_Lifecycle creates, reads, saves and deletes one session.
*/
func TestRedisRepository_Lifecycle(t *testing.T) {
	repo, server, _ := newRedisRepository(t)
	ctx := context.Background()

	state := session.New("s1", 20)
	require.NoError(t, repo.Create(ctx, state))
	assert.Equal(t, time.Hour, server.TTL(constants.RedisPrefixSession+"s1"))

	stored, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, state.ID, stored.ID)
	assert.Equal(t, 20, stored.PageSize)
	assert.Zero(t, stored.Version)

	next := stored
	next.Page = 2
	next.Version = 1
	require.NoError(t, repo.Save(ctx, next, 0))

	stored, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Page)
	assert.Equal(t, int64(1), stored.Version)

	require.NoError(t, repo.Delete(ctx, "s1"))

	_, err = repo.Get(ctx, "s1")
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestRedisRepository_Errors maps each rejected call to its error code.
*/
func TestRedisRepository_Errors(t *testing.T) {
	repo, _, _ := newRedisRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, session.New("s1", 20)))

	tests := []struct {
		name string
		run  func() error
		code string
	}{
		{"duplicate_create", func() error { return repo.Create(ctx, session.New("s1", 20)) }, "CONFLICT"},
		{"get_missing", func() error { _, err := repo.Get(ctx, "s2"); return err }, "NOT_FOUND"},
		{"save_missing", func() error { return repo.Save(ctx, session.New("s2", 20), 0) }, "NOT_FOUND"},
		{"delete_missing", func() error { return repo.Delete(ctx, "s2") }, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := apperr.As(tt.run())
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

/*
TestRedisRepository_SaveStale rejects a save whose expected version is not
the stored one.
*/
func TestRedisRepository_SaveStale(t *testing.T) {
	repo, _, _ := newRedisRepository(t)
	ctx := context.Background()

	state := session.New("s1", 20)
	require.NoError(t, repo.Create(ctx, state))

	state.Version = 1
	require.NoError(t, repo.Save(ctx, state, 0))

	older := state
	older.Page = 3
	older.Version = 1
	err := repo.Save(ctx, older, 0)
	assert.ErrorIs(t, err, session.ErrStale)

	stored, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Page)
}

// interleavingHook rewrites key right after the first GET of it, so a
// transaction watching key fails at EXEC.
type interleavingHook struct {
	server *miniredis.Miniredis
	key    string
	fired  bool
}

func (hook *interleavingHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (hook *interleavingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (hook *interleavingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)

		args := cmd.Args()
		if !hook.fired && cmd.Name() == "get" && len(args) == 2 && args[1] == hook.key {
			hook.fired = true
			value, getErr := hook.server.Get(hook.key)
			if getErr == nil {
				_ = hook.server.Set(hook.key, value)
			}
		}
		return err
	}
}

/*
TestRedisRepository_SaveConcurrentWrite reports ErrStale when another writer
touches the session between the version check and the write.
*/
func TestRedisRepository_SaveConcurrentWrite(t *testing.T) {
	repo, server, client := newRedisRepository(t)
	ctx := context.Background()

	state := session.New("s1", 20)
	require.NoError(t, repo.Create(ctx, state))

	hook := &interleavingHook{server: server, key: constants.RedisPrefixSession + "s1"}
	client.AddHook(hook)

	next := state
	next.Page = 2
	next.Version = 1
	err := repo.Save(ctx, next, 0)

	require.True(t, hook.fired)
	assert.ErrorIs(t, err, session.ErrStale)

	stored, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Page)
	assert.Zero(t, stored.Version)
}

/*
TestService_FlowOverRedis runs the paging flow against the Redis repository.
*/
func TestService_FlowOverRedis(t *testing.T) {
	repo, _, _ := newRedisRepository(t)
	service := session.NewService(repo, newCatalog(t), 20, discardLogger())
	ctx := context.Background()

	view, err := service.Start(ctx, 0)
	require.NoError(t, err)
	id := view.Session.ID

	view, err = service.NextPage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Session.Page)
	assert.Equal(t, int64(1), view.Session.Version)

	stored, err := service.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Session.Page)

	require.NoError(t, service.End(ctx, id))
	_, err = service.View(ctx, id)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
