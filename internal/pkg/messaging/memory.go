package messaging

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process Messaging implementation. Each consumer group of a
// topic receives every message once; consumers in the same group compete.
// Nothing is persisted and messages published before any consumer exists are
// dropped.
type Memory struct {
	mu     sync.RWMutex
	groups map[string]map[string]chan *memoryMessage
	closed bool
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{groups: make(map[string]map[string]chan *memoryMessage)}
}

// Close stops accepting messages.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Publish fans msg out to every consumer group of topic.
func (m *Memory) Publish(ctx context.Context, topic string, msg Outgoing) error {
	if topic == "" {
		return ErrTopicRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	for _, ch := range m.groups[topic] {
		mm := &memoryMessage{topic: topic, body: msg.Body, headers: maps.Clone(msg.Headers)}
		select {
		case ch <- mm:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Consume receives topic messages for the group until ctx is done.
func (m *Memory) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	ch := m.subscribe(topic, co.group)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case mm := <-ch:
					_ = dispatch(ctx, "memory", mm, handler, co.autoAck)
				}
			}
		})
	}

	wg.Wait()
	return ctx.Err()
}

// Groups reports how many consumer groups are subscribed to topic.
func (m *Memory) Groups(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.groups[topic])
}

func (m *Memory) subscribe(topic, group string) chan *memoryMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.groups[topic] == nil {
		m.groups[topic] = make(map[string]chan *memoryMessage)
	}
	ch, ok := m.groups[topic][group]
	if !ok {
		ch = make(chan *memoryMessage, 64)
		m.groups[topic][group] = ch
	}

	return ch
}

type memoryMessage struct {
	responder
	topic   string
	body    []byte
	headers map[string]string
}

func (m *memoryMessage) Body() []byte { return m.body }
func (m *memoryMessage) Header(key string) string { return m.headers[key] }
func (m *memoryMessage) Topic() string { return m.topic }
func (m *memoryMessage) Ack(context.Context) error { m.claim(); return nil }
func (m *memoryMessage) Nack(context.Context) error { m.claim(); return nil }
