package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitSubscribed(t *testing.T, m *Memory, topic string, groups int) {
	t.Helper()
	require.Eventually(t, func() bool { return m.Groups(topic) == groups }, time.Second, 5*time.Millisecond)
}

func TestMemory_PublishConsume(t *testing.T) {
	t.Run("DeliversBodyAndHeaders", func(t *testing.T) {
		// Arrange
		m := NewMemory()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		got := make(chan Message, 1)
		go func() {
			_ = m.Consume(ctx, "otp", func(_ context.Context, msg Message) error {
				got <- msg
				return nil
			}, WithAutoAck(true))
		}()
		waitSubscribed(t, m, "otp", 1)

		// Act
		err := m.Publish(ctx, "otp", Outgoing{Body: []byte("hello"), Headers: map[string]string{"X-Correlation-ID": "c1"}})

		// Assert
		require.NoError(t, err)
		select {
		case msg := <-got:
			assert.Equal(t, []byte("hello"), msg.Body())
			assert.Equal(t, "c1", msg.Header("X-Correlation-ID"))
			assert.Equal(t, "otp", msg.Topic())
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	})

	t.Run("EveryGroupReceives", func(t *testing.T) {
		// Arrange
		m := NewMemory()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var count atomic.Int32
		for _, g := range []string{"a", "b"} {
			go func() {
				_ = m.Consume(ctx, "t", func(context.Context, Message) error {
					count.Add(1)
					return nil
				}, WithGroup(g))
			}()
		}
		waitSubscribed(t, m, "t", 2)

		// Act
		require.NoError(t, m.Publish(ctx, "t", Outgoing{Body: []byte("x")}))

		// Assert
		assert.Eventually(t, func() bool { return count.Load() == 2 }, time.Second, 5*time.Millisecond)
	})

	t.Run("ConsumeReturnsOnCancel", func(t *testing.T) {
		m := NewMemory()
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- m.Consume(ctx, "t", func(context.Context, Message) error { return nil }, WithConcurrency(3))
		}()
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("consume did not return")
		}
	})

	t.Run("Validation", func(t *testing.T) {
		m := NewMemory()
		ctx := context.Background()

		assert.ErrorIs(t, m.Publish(ctx, "", Outgoing{}), ErrTopicRequired)
		assert.ErrorIs(t, m.Consume(ctx, "", func(context.Context, Message) error { return nil }), ErrTopicRequired)
		assert.ErrorIs(t, m.Consume(ctx, "t", nil), ErrHandlerRequired)

		require.NoError(t, m.Close())
		assert.ErrorIs(t, m.Publish(ctx, "t", Outgoing{}), ErrClosed)
	})
}

type spyMessage struct {
	responder
	acks, nacks int
}

func (s *spyMessage) Body() []byte { return nil }
func (s *spyMessage) Header(string) string { return "" }
func (s *spyMessage) Topic() string { return "spy" }

func (s *spyMessage) Ack(context.Context) error {
	if s.claim() {
		s.acks++
	}
	return nil
}

func (s *spyMessage) Nack(context.Context) error {
	if s.claim() {
		s.nacks++
	}
	return nil
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		autoAck   bool
		handler   Handler
		wantErr   bool
		wantAcks  int
		wantNacks int
	}{
		{
			name:     "AutoAckOnSuccess",
			autoAck:  true,
			handler:  func(context.Context, Message) error { return nil },
			wantAcks: 1,
		},
		{
			name:      "AutoNackOnError",
			autoAck:   true,
			handler:   func(context.Context, Message) error { return errors.New("boom") },
			wantErr:   true,
			wantNacks: 1,
		},
		{
			name:      "PanicIsRecoveredAndNacked",
			autoAck:   true,
			handler:   func(context.Context, Message) error { panic("kaboom") },
			wantErr:   true,
			wantNacks: 1,
		},
		{
			name:    "NoAutoAck",
			handler: func(context.Context, Message) error { return nil },
		},
		{
			name:    "HandlerAlreadyResponded",
			autoAck: true,
			handler: func(ctx context.Context, msg Message) error {
				_ = msg.Nack(ctx)
				return nil
			},
			wantNacks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			msg := &spyMessage{}

			// Act
			err := dispatch(ctx, "test", msg, tt.handler, tt.autoAck)

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantAcks, msg.acks)
			assert.Equal(t, tt.wantNacks, msg.nacks)
		})
	}
}

func TestNewFromDriver(t *testing.T) {
	m, err := NewFromDriver(" memory ", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, m)

	_, err = NewFromDriver("pubsub", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver(DriverKafka, FactoryOptions{})
	assert.ErrorIs(t, err, ErrKafkaBrokersRequired)

	_, err = NewFromDriver(DriverNATS, FactoryOptions{})
	assert.ErrorIs(t, err, ErrNATSURLRequired)

	_, err = NewFromDriver(DriverNSQ, FactoryOptions{})
	assert.ErrorIs(t, err, ErrNSQAddrRequired)
}
