package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// runContract exercises the behavior every Store adapter must share
func runContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SetBumpsVersion", func(t *testing.T) {
		s := newStore(t)

		v1, err := s.Set(ctx, "k", []byte(`"a"`))
		require.NoError(t, err)
		assert.Equal(t, int64(1), v1)

		v2, err := s.Set(ctx, "k", []byte(`"b"`))
		require.NoError(t, err)
		assert.Equal(t, int64(2), v2)

		e, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `"b"`, string(e.Value))
		assert.Equal(t, int64(2), e.Version)
		assert.False(t, e.UpdatedAt.IsZero())
	})

	t.Run("SetIfAbsent", func(t *testing.T) {
		s := newStore(t)

		e, inserted, err := s.SetIfAbsent(ctx, "k", []byte(`"first"`))
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, `"first"`, string(e.Value))
		assert.Equal(t, int64(1), e.Version)

		e, inserted, err = s.SetIfAbsent(ctx, "k", []byte(`"second"`))
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Equal(t, `"first"`, string(e.Value))
	})

	t.Run("CompareAndSwap", func(t *testing.T) {
		s := newStore(t)

		_, err := s.CompareAndSwap(ctx, "k", []byte(`1`), 1)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.Set(ctx, "k", []byte(`1`))
		require.NoError(t, err)

		v, err := s.CompareAndSwap(ctx, "k", []byte(`2`), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)

		_, err = s.CompareAndSwap(ctx, "k", []byte(`3`), 1)
		assert.ErrorIs(t, err, ErrVersionMismatch)

		e, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `2`, string(e.Value))
	})

	t.Run("GetByPrefix", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"user_profile:b", "user_profile:a", "userXprofile:c", "discoveries:a", "user_profile"} {
			_, err := s.Set(ctx, k, []byte(`{}`))
			require.NoError(t, err)
		}

		entries, err := s.GetByPrefix(ctx, "user_profile:")
		require.NoError(t, err)

		var keys []string
		for _, e := range entries {
			keys = append(keys, e.Key)
		}
		assert.Equal(t, []string{"user_profile:a", "user_profile:b"}, keys)

		none, err := s.GetByPrefix(ctx, "nothing:")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Set(ctx, "k", []byte(`1`))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "k"))
		_, err = s.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, s.Delete(ctx, "k"))
	})

	t.Run("UnicodeKeysAndValues", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Set(ctx, "discoveries:用户", []byte(`["森","炎"]`))
		require.NoError(t, err)

		e, err := s.Get(ctx, "discoveries:用户")
		require.NoError(t, err)
		assert.Equal(t, `["森","炎"]`, string(e.Value))
	})

	t.Run("ConcurrentSetIfAbsent", func(t *testing.T) {
		s := newStore(t)
		var wins atomic.Int32

		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < 20; i++ {
			value := []byte(strconv.Itoa(i))
			g.Go(func() error {
				_, inserted, err := s.SetIfAbsent(gctx, "race", value)
				if inserted {
					wins.Add(1)
				}
				return err
			})
		}
		require.NoError(t, g.Wait())
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("ConcurrentCompareAndSwapCounter", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Set(ctx, "counter", []byte("0"))
		require.NoError(t, err)

		const workers = 10
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					e, err := s.Get(ctx, "counter")
					if err != nil {
						errs <- err
						return
					}
					n, _ := strconv.Atoi(string(e.Value))
					_, err = s.CompareAndSwap(ctx, "counter", []byte(strconv.Itoa(n+1)), e.Version)
					if errors.Is(err, ErrVersionMismatch) {
						continue
					}
					if err != nil {
						errs <- err
					}
					return
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		e, err := s.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(workers), string(e.Value))
		assert.Equal(t, int64(workers+1), e.Version)
	})
}
