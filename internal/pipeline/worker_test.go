package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForEachVisitsEveryIndex(t *testing.T) {
	out := make([]int, 100)
	err := forEach(context.Background(), len(out), 7, func(_ context.Context, i int) error {
		out[i] = i * i
		return nil
	})
	assert.NoError(t, err)
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestForEachLimitsConcurrency(t *testing.T) {
	var active, peak int32
	err := forEach(context.Background(), 50, 3, func(_ context.Context, _ int) error {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&active, -1)
		return nil
	})
	assert.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestForEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := forEach(context.Background(), 10, 0, func(_ context.Context, i int) error {
		if i == 4 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEachPassesEachIndexOnce(t *testing.T) {
	seen := make([]int32, 64)
	err := forEach(context.Background(), len(seen), 16, func(_ context.Context, i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	assert.NoError(t, err)
	for i, v := range seen {
		assert.Equal(t, int32(1), v, "index %d", i)
	}
}
