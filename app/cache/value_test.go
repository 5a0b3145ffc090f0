package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/4ster-light/site/app/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedValue(t *testing.T) {
	c, repo, clock := newTestCache(t)
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (item, error) {
		calls++
		return item{ID: "me", Title: "profile"}, nil
	}

	got, err := Cached(ctx, c, "profile", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, item{ID: "me", Title: "profile"}, got)

	got, err = Cached(ctx, c, "profile", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, "me", got.ID)
	assert.Equal(t, 1, calls)

	entry, err := repo.GetEntry(ctx, database.Key{Namespace, "profile"})
	require.NoError(t, err)
	require.NotNil(t, entry)

	clock.Advance(time.Hour)
	_, err = Cached(ctx, c, "profile", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	require.NoError(t, c.Invalidate(ctx, "profile"))
	entry, err = repo.GetEntry(ctx, database.Key{Namespace, "profile"})
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCachedValueStoreFailure(t *testing.T) {
	repo := &failingRepository{
		EntryRepository: database.NewMemoryEntryRepository(0),
		failSet:         func(database.Key) bool { return true },
	}
	c := New(repo)

	got, err := Cached(context.Background(), c, "profile", time.Hour, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestCachedValueFetchError(t *testing.T) {
	c, _, _ := newTestCache(t)
	upstream := errors.New("boom")

	_, err := Cached(context.Background(), c, "profile", time.Hour, func(context.Context) (string, error) {
		return "", upstream
	})
	require.ErrorIs(t, err, upstream)
}

func TestCachedValueCallerCancelStillStores(t *testing.T) {
	c, repo, _ := newTestCache(t)
	release := make(chan struct{})
	started := make(chan struct{})

	fetch := func(ctx context.Context) (item, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return item{}, err
		}
		return item{ID: "me"}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := Cached(ctx, c, "profile", time.Hour, fetch)
		errc <- err
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
	close(release)

	require.Eventually(t, func() bool {
		entry, err := repo.GetEntry(context.Background(), database.Key{Namespace, "profile"})
		return err == nil && entry != nil
	}, 2*time.Second, time.Millisecond, "detached refresh should still store the value")
}
