package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/buildestimate/internal/lock"
)

func TestRedis_Obtain(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	locker := lock.NewRedis(rdb)

	held, err := locker.Obtain(ctx, "conversion:abc", time.Minute)
	require.NoError(t, err)

	_, err = locker.Obtain(ctx, "conversion:abc", time.Minute)
	assert.ErrorIs(t, err, lock.ErrNotObtained)

	other, err := locker.Obtain(ctx, "conversion:def", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, held.Release(ctx))

	again, err := locker.Obtain(ctx, "conversion:abc", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, again.Release(ctx))
}

func TestNoop_Obtain(t *testing.T) {
	ctx := context.Background()

	l, err := lock.Noop{}.Obtain(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.NoError(t, l.Release(ctx))

	_, err = lock.Noop{}.Obtain(ctx, "k", time.Second)
	assert.NoError(t, err)
}
