package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConcurrent(t *testing.T) {
	t.Run("Runs every item", func(t *testing.T) {
		var sum atomic.Int64
		err := Concurrent(context.Background(), []int{1, 2, 3, 4}, 2, func(_ context.Context, v int) error {
			sum.Add(int64(v))
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, int64(10), sum.Load())
	})

	t.Run("Limit", func(t *testing.T) {
		var running, peak atomic.Int32
		err := Concurrent(context.Background(), make([]struct{}, 16), 3, func(context.Context, struct{}) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			return nil
		})
		require.NoError(t, err)
		require.LessOrEqual(t, peak.Load(), int32(3))
	})

	t.Run("First error cancels", func(t *testing.T) {
		boom := errors.New("boom")
		err := Concurrent(context.Background(), []int{0, 1}, 0, func(ctx context.Context, v int) error {
			if v == 0 {
				return boom
			}
			<-ctx.Done()
			return ctx.Err()
		})
		require.ErrorIs(t, err, boom)
	})
}

func TestMap(t *testing.T) {
	out, err := Map(context.Background(), []int{3, 1, 2}, 0, func(_ context.Context, v int) (int, error) {
		return v * v, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{9, 1, 4}, out)

	boom := errors.New("boom")
	out, err = Map(context.Background(), []int{1, 2}, 1, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	require.ErrorIs(t, err, boom)
	require.Nil(t, out)
}

func TestCollect(t *testing.T) {
	boom := errors.New("boom")
	res := Collect(context.Background(), []string{"a", "", "c"}, 2, func(_ context.Context, s string) (int, error) {
		if s == "" {
			return 0, boom
		}
		return len(s), nil
	})
	require.Len(t, res, 3)
	require.Equal(t, 1, res[0].Value)
	require.ErrorIs(t, res[1].Err, boom)
	require.NoError(t, res[2].Err)
}
