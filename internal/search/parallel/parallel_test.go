package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrder(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	out, err := Map(context.Background(), items, 8, func(_ context.Context, v int) (int, error) {
		// finish in reverse order
		time.Sleep(time.Duration(100-v) * time.Microsecond)
		return v * v, nil
	})
	require.NoError(t, err)

	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestMap_RespectsLimit(t *testing.T) {
	var inFlight, peak int32
	items := make([]int, 50)

	_, err := Map(context.Background(), items, 4, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
}

func TestMap_ErrorDiscardsResults(t *testing.T) {
	boom := errors.New("boom")

	out, err := Map(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}

func TestMap_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	out, err := Map(ctx, []int{1, 2, 3}, 2, func(_ context.Context, v int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return v, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestMap_Empty(t *testing.T) {
	out, err := Map(context.Background(), []string{}, 4, func(_ context.Context, s string) (string, error) {
		return s, nil
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}
