package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"StoryBoxAdmin/pkg/metrics"
	"StoryBoxAdmin/pkg/mocks"
	"StoryBoxAdmin/pkg/rabbitmq"
)

// recordingSink запоминает доставленные уведомления
type recordingSink struct {
	mu   sync.Mutex
	got  []Notification
	gate chan struct{}
}

func (s *recordingSink) Deliver(_ context.Context, n Notification) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return nil
}

func (s *recordingSink) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	texts := make([]string, len(s.got))
	for i, n := range s.got {
		texts[i] = n.Text
	}
	return texts
}

func TestQueue_PushListOrder(t *testing.T) {
	q := NewQueue(Options{})
	defer q.Close(context.Background())

	a := q.Push(KindSuccess, "Category deleted successfully")
	b := q.Push(KindError, "Failed to load categories")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	list := q.List()
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0])
	assert.Equal(t, b, list[1])
}

func TestQueue_Dismiss(t *testing.T) {
	q := NewQueue(Options{})
	defer q.Close(context.Background())

	a := q.Push(KindInfo, "a")
	b := q.Push(KindInfo, "b")

	assert.True(t, q.Dismiss(a.ID))
	assert.False(t, q.Dismiss(a.ID))
	assert.Equal(t, []Notification{b}, q.List())
}

func TestQueue_IndependentExpiry(t *testing.T) {
	q := NewQueue(Options{TTL: 60 * time.Millisecond})
	defer q.Close(context.Background())

	q.Push(KindInfo, "first")
	time.Sleep(30 * time.Millisecond)
	second := q.Push(KindInfo, "second")

	require.Eventually(t, func() bool {
		list := q.List()
		return len(list) == 1 && list[0].ID == second.ID
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool { return len(q.List()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestQueue_SinksReceiveInOrder(t *testing.T) {
	sink := &recordingSink{}
	q := NewQueue(Options{Sinks: []Sink{sink}})

	q.Push(KindSuccess, "one")
	q.Push(KindWarning, "two")
	q.Push(KindError, "three")

	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, []string{"one", "two", "three"}, sink.texts())
}

func TestQueue_OverflowDropsWithoutBlocking(t *testing.T) {
	sink := &recordingSink{gate: make(chan struct{})}
	log := mocks.NewPermissiveLogger()
	q := NewQueue(Options{Buffer: 1, Sinks: []Sink{sink}, Logger: log})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			q.Push(KindInfo, "n")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push blocked on a full buffer")
	}
	assert.Len(t, q.List(), 10)
	log.AssertCalled(t, "Warn", "буфер уведомлений переполнен, уведомление не доставлено", mock.Anything)

	close(sink.gate)
	require.NoError(t, q.Close(context.Background()))
	assert.Less(t, len(sink.texts()), 10)
}

func TestQueue_PushAfterClose(t *testing.T) {
	sink := &recordingSink{}
	q := NewQueue(Options{Sinks: []Sink{sink}})
	require.NoError(t, q.Close(context.Background()))
	require.NoError(t, q.Close(context.Background()))

	n := q.Push(KindInfo, "late")
	assert.NotEmpty(t, n.ID)
	assert.Empty(t, q.List())
	assert.Empty(t, sink.texts())
}

func TestQueue_CloseHonoursContext(t *testing.T) {
	sink := &recordingSink{gate: make(chan struct{})}
	q := NewQueue(Options{Sinks: []Sink{sink}})
	q.Push(KindInfo, "stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Close(ctx), context.DeadlineExceeded)
	close(sink.gate)
}

func TestQueue_SizeGauge(t *testing.T) {
	m := metrics.NewMetrics("notify-test")
	q := NewQueue(Options{Metrics: m})
	defer q.Close(context.Background())

	a := q.Push(KindInfo, "a")
	q.Push(KindInfo, "b")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueueSize.WithLabelValues(queueMetricName)))

	q.Dismiss(a.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueueSize.WithLabelValues(queueMetricName)))
}

func TestConsoleSink(t *testing.T) {
	var plain bytes.Buffer
	require.NoError(t, NewConsoleSink(&plain, false).Deliver(context.Background(), Notification{Kind: KindSuccess, Text: "Saved"}))
	assert.Equal(t, "✓ Saved\n", plain.String())

	var colored bytes.Buffer
	require.NoError(t, NewConsoleSink(&colored, true).Deliver(context.Background(), Notification{Kind: KindError, Text: "Failed"}))
	assert.Equal(t, colorRed+"✗ Failed"+colorReset+"\n", colored.String())
}

func TestBrokerSink(t *testing.T) {
	publisher := &mocks.MockPublisher{}
	n := Notification{ID: "n1", Kind: KindSuccess, Text: "Employee deleted successfully", CreatedAt: time.Unix(0, 0).UTC()}

	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	sink := NewBrokerSink(publisher, "admin@storybox")
	require.NoError(t, sink.Deliver(context.Background(), n))
	publisher.AssertNumberOfCalls(t, "Publish", 1)

	sent := publisher.Calls[0].Arguments.Get(1).(rabbitmq.Message)
	assert.Equal(t, "success", sent.Suffix)
	assert.Equal(t, "success", sent.Headers["kind"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(sent.Body, &body))
	assert.Equal(t, "n1", body["id"])
	assert.Equal(t, "success", body["kind"])
	assert.Equal(t, "admin@storybox", body["source"])
}

func TestBrokerSink_PublishError(t *testing.T) {
	publisher := &mocks.MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	log := mocks.NewPermissiveLogger()
	q := NewQueue(Options{Sinks: []Sink{NewBrokerSink(publisher, "")}, Logger: log})
	q.Push(KindError, "x")
	require.NoError(t, q.Close(context.Background()))

	publisher.AssertNumberOfCalls(t, "Publish", 1)
	log.AssertCalled(t, "Warn", "ошибка доставки уведомления", mock.Anything)
}
