package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	t.Run("RunsAndCollectsErrors", func(t *testing.T) {
		// Arrange
		m := NewManager(4)
		var n atomic.Int32
		boom := errors.New("boom")

		// Act
		require.NoError(t, m.Go(context.Background(), "ok", func(context.Context) error { n.Add(1); return nil }))
		require.NoError(t, m.Go(context.Background(), "fail", func(context.Context) error { n.Add(1); return boom }))
		err := m.Wait()

		// Assert
		assert.Equal(t, int32(2), n.Load())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("ClosedAfterWait", func(t *testing.T) {
		m := NewManager(1)
		require.NoError(t, m.Wait())

		err := m.Go(context.Background(), "late", func(context.Context) error { return nil })

		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("FullDropsTask", func(t *testing.T) {
		// Arrange
		m := NewManager(1)
		release := make(chan struct{})
		require.NoError(t, m.Go(context.Background(), "block", func(context.Context) error { <-release; return nil }))

		// Act
		err := m.Go(context.Background(), "extra", func(context.Context) error { return nil })
		close(release)

		// Assert
		assert.ErrorIs(t, err, ErrFull)
		assert.NoError(t, m.Wait())
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		m := NewManager(1)

		require.NoError(t, m.Go(context.Background(), "panic", func(context.Context) error { panic("x") }))

		assert.NoError(t, m.Wait())
	})

	t.Run("DetachSurvivesParentCancel", func(t *testing.T) {
		// Arrange
		m := NewManager(1)
		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		var canceled atomic.Bool

		// Act
		require.NoError(t, m.Detach(ctx, "detached", time.Second, func(c context.Context) error {
			<-started
			canceled.Store(c.Err() != nil)
			return nil
		}))
		cancel()
		close(started)
		require.NoError(t, m.Wait())

		// Assert
		assert.False(t, canceled.Load())
	})
}
