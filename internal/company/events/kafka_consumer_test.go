package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// scriptedReader hands out queued messages and then blocks until ctx ends.
type scriptedReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *scriptedReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func TestConsumerRun(t *testing.T) {
	reader := &scriptedReader{messages: []kafka.Message{
		{Key: []byte("r1"), Value: mustMarshal(Event{Type: RecordCreated, Record: &models.Record{ID: "r1"}})},
		{Key: []byte("bad"), Value: []byte("{not json")},
		{Key: []byte("r2"), Value: mustMarshal(Event{Type: RecordDeleted, Record: &models.Record{ID: "r2"}})},
	}}
	core, recorded := observer.New(zap.ErrorLevel)
	consumer := newConsumer(reader, zap.New(core))

	var mu sync.Mutex
	var got []Event
	consumer.RegisterHandler(func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return reader.commits() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, RecordCreated, got[0].Type)
	assert.Equal(t, "r2", got[1].Record.ID)
	assert.Equal(t, 1, recorded.FilterMessage("Failed to parse event").Len())
}

func TestConsumerHandlerErrorSkipsCommit(t *testing.T) {
	reader := &scriptedReader{messages: []kafka.Message{
		{Value: mustMarshal(Event{Type: RecordUpdated, Record: &models.Record{ID: "r1"}})},
	}}
	core, recorded := observer.New(zap.ErrorLevel)
	consumer := newConsumer(reader, zap.New(core))
	handled := make(chan struct{})
	consumer.RegisterHandler(func(context.Context, Event) error {
		defer close(handled)
		return errors.New("handler down")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Run(ctx)
		close(done)
	}()
	<-handled
	cancel()
	<-done

	assert.Zero(t, reader.commits())
	assert.Equal(t, 1, recorded.FilterMessage("Failed to handle event").Len())
}

func TestConsumerSkipsNewerVersion(t *testing.T) {
	reader := &scriptedReader{messages: []kafka.Message{
		{Value: mustMarshal(Event{Version: SchemaVersion + 1, Type: RecordCreated, Record: &models.Record{ID: "r1"}})},
	}}
	core, recorded := observer.New(zap.WarnLevel)
	consumer := newConsumer(reader, zap.New(core))
	var handled bool
	consumer.RegisterHandler(func(context.Context, Event) error {
		handled = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return reader.commits() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.False(t, handled)
	assert.Equal(t, 1, recorded.FilterMessage("Skipping event with unsupported version").Len())
}

func TestConsumerClose(t *testing.T) {
	reader := &scriptedReader{}
	newConsumer(reader, zaptest.NewLogger(t)).Close()
	assert.True(t, reader.closed)
}
