package worker

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
	p := New(4)
	in := []int{5, 4, 3, 2, 1}

	results := Map(context.Background(), p, in, func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10, nil
	})

	require.Len(t, results, len(in))
	for i, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, in[i]*10, r.Value)
	}
}

func TestMap_IsolatesFailures(t *testing.T) {
	p := New(2)
	boom := errors.New("boom")

	results := Map(context.Background(), p, []string{"ok", "bad", "panic", "ok"}, func(_ context.Context, s string) (string, error) {
		switch s {
		case "bad":
			return "", boom
		case "panic":
			panic("malformed payload")
		}
		return s, nil
	})

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.ErrorContains(t, results[2].Err, "malformed payload")
	assert.Equal(t, "ok", results[3].Value)
}

func TestMap_RespectsLimit(t *testing.T) {
	p := New(2)
	var running, peak atomic.Int32

	Map(context.Background(), p, make([]struct{}, 8), func(context.Context, struct{}) (struct{}, error) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestMap_CancelledContextSkipsPending(t *testing.T) {
	p := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := Map(ctx, p, []int{1, 2, 3}, func(context.Context, int) (int, error) {
		calls.Add(1)
		return 0, nil
	})

	assert.Equal(t, int32(0), calls.Load())
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestFuture_AwaitAbandon(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	f := Submit(p, func() (int, error) {
		<-release
		return 42, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	v, err := f.Await(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
	p.Wait()
}

func TestNew_DefaultLimit(t *testing.T) {
	assert.Positive(t, New(0).Limit())
}
