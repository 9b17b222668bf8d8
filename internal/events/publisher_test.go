package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/mybook/internal/model"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleEvent() model.PurchaseEvent {
	e := model.Entitlement{
		ID:         uuid.Must(uuid.NewV7()),
		UserID:     uuid.Must(uuid.NewV4()),
		BookID:     uuid.Must(uuid.NewV4()),
		Title:      "Dune",
		AuthorName: "Frank Herbert",
		Category:   "sf",
		ImageURL:   "https://img/dune.png",
		Point:      1000,
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	return model.NewPurchaseEvent(uuid.Must(uuid.NewV4()), e, time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC))
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Parallel()
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w, topic: DefaultTopic, log: zaptest.NewLogger(t)}
	ev := sampleEvent()

	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	require.Equal(t, ev.UserID.String(), string(msg.Key))
	require.Equal(t, ev.Timestamp, msg.Time)
	require.Equal(t, []kafka.Header{{Key: "event-type", Value: []byte(model.PurchaseEventType)}}, msg.Headers)
	require.Empty(t, msg.Topic, "topic is set on the writer")

	got, err := decodeEvent(msg.Value)
	require.NoError(t, err)
	require.Equal(t, ev, got)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	t.Parallel()
	boom := errors.New("leader not available")
	p := &KafkaPublisher{w: &fakeWriter{err: boom}, topic: "t", log: zaptest.NewLogger(t)}

	err := p.Publish(context.Background(), sampleEvent())
	require.ErrorIs(t, err, boom)
}

func TestKafkaPublisher_Close(t *testing.T) {
	t.Parallel()
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w, log: zap.NewNop()}
	require.NoError(t, p.Close())
	require.True(t, w.closed)
}

func TestNewKafkaPublisher_DefaultTopic(t *testing.T) {
	t.Parallel()
	p := NewKafkaPublisher([]string{"localhost:9092"}, "", zap.NewNop())
	require.Equal(t, DefaultTopic, p.topic)
	kw, ok := p.w.(*kafka.Writer)
	require.True(t, ok)
	require.Equal(t, 1, kw.MaxAttempts)
	require.Equal(t, kafka.RequireAll, kw.RequiredAcks)
	require.NoError(t, p.Close())
}

func TestEncode_WireFields(t *testing.T) {
	t.Parallel()
	ev := sampleEvent()
	b, err := Encode(ev)
	require.NoError(t, err)
	s := string(b)
	for _, k := range []string{`"eventType":"BookPurchased"`, `"userId":"` + ev.UserID.String() + `"`, `"point":1000`, `"authorName":"Frank Herbert"`} {
		require.Contains(t, s, k)
	}
}

func TestLogPublisher(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))
	ev := sampleEvent()

	require.NoError(t, p.Publish(context.Background(), ev))
	require.NoError(t, p.Close())
	entries := logs.FilterField(zap.String("entitlement_id", ev.ID.String())).All()
	require.Len(t, entries, 1)
}
